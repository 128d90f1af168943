package main

import (
	"fmt"
	"os"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/config"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "batepapo",
	Short:         "Bate-papo UOL chat API",
	SilenceUsage:  true,
	SilenceErrors: true,
	// with no subcommand the server runs
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	var appLogger logger.Logger
	if cfg.Log.Format == "json" {
		appLogger = logger.NewJSON(cfg.Log.Level)
	} else {
		appLogger = logger.New(cfg.Log.Level)
	}
	return cfg, appLogger, nil
}
