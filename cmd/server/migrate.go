package main

import (
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/repository"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the postgres schema migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, appLogger, err := loadConfig()
		if err != nil {
			return err
		}

		dbCfg := cfg.Database
		dbCfg.Migrate = false
		pool, err := repository.OpenPostgres(cmd.Context(), dbCfg, appLogger)
		if err != nil {
			return err
		}
		defer pool.Close()

		return repository.Migrate(pool, appLogger)
	},
}
