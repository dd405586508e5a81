// Command expire_offers sweeps sent and negotiating offers past their expiry
// date. Run it from cron; each offer is expired in its own transaction.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hiring-pipeline/internal/config"
	"hiring-pipeline/internal/logger"
	"hiring-pipeline/internal/notify"
	"hiring-pipeline/internal/storage"
	"hiring-pipeline/internal/workflow"
)

var (
	cfgFile  string
	dryRun   bool
	limit    int
	jsonLogs bool
)

var rootCmd = &cobra.Command{
	Use:          "expire_offers",
	Short:        "Expire overdue offers and publish their triggers",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "a config file (default is hiring.yaml in current directory)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", true, "If true, do not persist updates; just print the overdue offers")
	rootCmd.Flags().IntVar(&limit, "limit", 200, "Max number of offers to process in one run")
	rootCmd.Flags().BoolVarP(&jsonLogs, "json", "j", false, "json format for logging")
}

func run(ctx context.Context) error {
	log, err := logger.New(jsonLogs, false)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync()

	cfg, err := config.Load(cfgFile, log)
	if err != nil {
		return err
	}
	if cfg.Store != config.StorePostgres {
		return fmt.Errorf("expire_offers needs the postgres store, got %q", cfg.Store)
	}

	log.Info("connecting to DB...")
	db, err := storage.NewDB(cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer db.Close()

	svc := workflow.New(db,
		workflow.WithLogger(log),
		workflow.WithOfferValidity(cfg.OfferValidity),
	)

	if dryRun {
		due, err := svc.PendingExpiry(ctx, limit)
		if err != nil {
			return err
		}
		for _, o := range due {
			log.Info("would expire offer",
				zap.String("tenant_id", o.TenantID),
				zap.String("offer_id", o.ID),
				zap.String("candidate_id", o.CandidateID),
				zap.String("status", string(o.Status)),
				zap.Timep("expiry_date", o.ExpiryDate),
			)
		}
		log.Info("dry run finished", zap.Int("due", len(due)), zap.Int("limit", limit))
		return nil
	}

	return sweep(ctx, log, svc, limit, func() (notify.Dispatcher, func(), error) {
		return connectDispatcher(log, cfg)
	})
}

type expirer interface {
	ExpireOffers(ctx context.Context, limit int) (workflow.ExpireResult, error)
}

// sweep connects the dispatcher first: once offers are expired their triggers
// must have somewhere to go.
func sweep(ctx context.Context, log *zap.Logger, svc expirer, limit int, connect func() (notify.Dispatcher, func(), error)) error {
	dispatcher, closeDispatcher, err := connect()
	if err != nil {
		return fmt.Errorf("connecting the trigger dispatcher: %w", err)
	}
	defer closeDispatcher()

	res, err := svc.ExpireOffers(ctx, limit)
	if err != nil {
		return err
	}

	dctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := dispatcher.Dispatch(dctx, res.Triggers); err != nil {
		log.Error("publishing expiry triggers", zap.Error(err))
	}

	log.Info("done",
		zap.Int("expired", len(res.Expired)),
		zap.Int("failed", res.Failed),
		zap.Strings("warnings", res.Warnings),
	)
	return nil
}

func connectDispatcher(log *zap.Logger, cfg *config.Config) (notify.Dispatcher, func(), error) {
	logged := notify.NewLogDispatcher(log)
	if !cfg.RabbitMQ.Enabled() {
		return logged, func() {}, nil
	}
	mq, err := notify.DialRabbitMQ(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.Queue, log)
	if err != nil {
		return nil, nil, err
	}
	return notify.Fanout{logged, mq}, func() {
		if err := mq.Close(); err != nil {
			log.Warn("closing rabbitmq", zap.Error(err))
		}
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
