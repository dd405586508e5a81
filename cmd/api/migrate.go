package main

import (
	"errors"

	"github.com/spf13/cobra"

	"hiring-pipeline/internal/config"
	"hiring-pipeline/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, cfg, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		if cfg.Store != config.StorePostgres {
			return errors.New("migrate needs the postgres store")
		}
		db, err := storage.NewDB(cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Migrate(cmd.Context())
	},
}
