package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "hiring-pipeline/docs" // Swagger docs
	"hiring-pipeline/internal/api"
	"hiring-pipeline/internal/assessment"
	"hiring-pipeline/internal/config"
	"hiring-pipeline/internal/llm"
	"hiring-pipeline/internal/notify"
	"hiring-pipeline/internal/resume"
	"hiring-pipeline/internal/storage"
	"hiring-pipeline/internal/storage/memstore"
	"hiring-pipeline/internal/workflow"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, cfg, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()
		return serve(cmd.Context(), log, cfg)
	},
}

// openStore connects the configured backend.
func openStore(ctx context.Context, log *zap.Logger, cfg *config.Config) (storage.Store, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using the in-memory store, data is lost on restart")
		return memstore.New(), nil
	}

	log.Info("connecting to database...")
	db, err := storage.NewDB(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("database connected successfully")
	return db, nil
}

func newScorer(ctx context.Context, log *zap.Logger, cfg *config.Config) (*assessment.Scorer, error) {
	opts := llm.Options{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.LLM.Timeout,
	}
	if cfg.LLM.Provider == string(llm.ProviderOllama) {
		opts.BaseURL = cfg.LLM.OllamaURL
	}
	svc, err := llm.NewService(ctx, opts, log)
	if err != nil {
		return nil, err
	}
	if !svc.Enabled() {
		log.Warn("no LLM provider configured, resume assessments will be degraded")
	}
	return assessment.NewScorer(svc, log,
		assessment.WithCache(assessment.NewCache(cfg.LLM.CacheTTL)),
		assessment.WithConcurrency(cfg.LLM.Concurrency),
	), nil
}

func newDispatcher(log *zap.Logger, cfg *config.Config) (notify.Dispatcher, func(), error) {
	logged := notify.NewLogDispatcher(log)
	if !cfg.RabbitMQ.Enabled() {
		return logged, func() {}, nil
	}
	mq, err := notify.DialRabbitMQ(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.Queue, log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := mq.Close(); err != nil {
			log.Warn("closing rabbitmq", zap.Error(err))
		}
	}
	return notify.Fanout{logged, mq}, closeFn, nil
}

func serve(ctx context.Context, log *zap.Logger, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openStore(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	scorer, err := newScorer(ctx, log, cfg)
	if err != nil {
		return err
	}

	dispatcher, closeDispatcher, err := newDispatcher(log, cfg)
	if err != nil {
		return err
	}
	defer closeDispatcher()

	svc := workflow.New(store,
		workflow.WithLogger(log),
		workflow.WithOfferValidity(cfg.OfferValidity),
		workflow.WithDefaultWeights(cfg.DefaultWeights),
		workflow.WithScorer(scorer),
	)
	apiSrv := api.NewAPI(svc, resume.NewParser(cfg.UploadsDir), dispatcher, log, api.Options{
		Workers:   cfg.Workers.Dispatch,
		QueueSize: cfg.Workers.QueueSize,
	})
	router := api.NewRouter(apiSrv, "")

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second, // resume uploads
		WriteTimeout: 15 * time.Minute, // LLM scoring of three assessment types
		IdleTimeout:  120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("server shutdown", zap.Error(err))
		}
		if err := apiSrv.Close(ctx); err != nil {
			log.Error("draining trigger queue", zap.Error(err))
		}
		close(idleConnsClosed)
	}()

	log.Info("API server listening", zap.String("port", cfg.Port), zap.String("version", version))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-idleConnsClosed
	return nil
}
