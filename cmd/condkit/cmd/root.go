// Package cmd implements the condkit command tree.
package cmd

import (
	"fmt"

	"github.com/QuickFlo/condkit/internal/core/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	dbURL      string
)

var rootCmd = &cobra.Command{
	Use:   "condkit",
	Short: "condkit converts between visual condition trees and JSONLogic",
	Long: `condkit is the tooling side of the QuickForms condition editor: it
normalizes JSONLogic documents through the condition engine, inspects them as
editor rows, and manages named condition sets in a SQLite or PostgreSQL store.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves configuration with the --db-url flag taking precedence
// over environment and file values.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	return cfg, nil
}
