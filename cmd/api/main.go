package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hiring-pipeline/internal/config"
	"hiring-pipeline/internal/logger"
)

// @title Hiring Pipeline API
// @version 1.0
// @description Candidate scoring, interview consensus and offer lifecycle for multi-tenant hiring
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http

const app = "hiring-pipeline"

// Actual version can be specified in build command.
var version = "unknown"

var (
	// Used for flags.
	cfgFile   string
	storeKind string
	jsonLogs  bool
	debugLogs bool

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "hiring-pipeline scores candidates, aggregates interview feedback and runs offers",
		SilenceUsage: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("%s version: %s\n", app, version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hiring.yaml in current directory)")
	rootCmd.PersistentFlags().BoolVarP(&debugLogs, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "", "persistence backend: postgres or memory (overrides HIRING_STORE)")
	rootCmd.PersistentFlags().BoolVarP(&jsonLogs, "json", "j", false, "json format for logging")

	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

// setup builds the logger and loads the configuration shared by all commands.
func setup() (*zap.Logger, *config.Config, error) {
	log, err := logger.New(jsonLogs, debugLogs)
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}
	if storeKind != "" {
		// config reads the backend from the environment
		if err := os.Setenv("HIRING_STORE", storeKind); err != nil {
			return log, nil, err
		}
	}
	cfg, err := config.Load(cfgFile, log)
	if err != nil {
		return log, nil, fmt.Errorf("loading config: %w", err)
	}
	log.Debug("config loaded",
		zap.String("store", cfg.Store),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Bool("rabbitmq", cfg.RabbitMQ.Enabled()),
		zap.Duration("offer_validity", cfg.OfferValidity),
	)
	return log, cfg, nil
}

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
