package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jgoulah/personadash/internal/config"
	"github.com/jgoulah/personadash/internal/database"
	"github.com/jgoulah/personadash/internal/dataset"
	"github.com/jgoulah/personadash/internal/logging"
	"github.com/jgoulah/personadash/internal/pipeline"
)

var (
	cfgFile string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "personadash",
	Short: "Classify households into energy personas and serve a dashboard",
	Long: `PersonaDash reads household energy consumption from CSV files, labels each
household Saver, Moderate or Overconsumer against the dataset mean, and serves
box plot, radar and table views of the result. Datasets can be stored in a local
SQLite database and summaries published to Home Assistant.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default is ./data.db)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getDBPath returns the database file path (local directory)
func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return "data.db"
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

// openDB opens the database connection
func openDB() (*database.DB, error) {
	path := getDBPath()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return database.New(path)
}

// newLogger builds the configured logger
func newLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	logger, closeFn, err := logging.New(cfg.Logging, cfg.Server.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, closeFn, nil
}

// classifyFile runs the pipeline over a CSV file with the named column profile
func classifyFile(ctx context.Context, cfg *config.Config, path, profile string) (*pipeline.Result, error) {
	cols, err := cfg.Profile(profile)
	if err != nil {
		return nil, err
	}
	return pipeline.Run(ctx, dataset.FileSource{Path: path}, pipeline.NewOptions(cfg, cols))
}
