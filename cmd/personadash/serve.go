package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/jgoulah/personadash/internal/config"
	"github.com/jgoulah/personadash/internal/dataset"
	"github.com/jgoulah/personadash/internal/pipeline"
	"github.com/jgoulah/personadash/internal/server"
)

var (
	serveData    string
	serveDataset string
	serveHost    string
	servePort    int
	serveNoLoad  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the persona dashboard",
	Long: `Starts the web dashboard. The data file (dashboard.data_file, data.csv by
default) or a stored dataset is classified once at startup and shown on the
front page; uploads are always available at /upload and are classified per
request. Use --no-autoload to start on the upload page instead.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveData, "data", "", "CSV file to auto-load (overrides dashboard.data_file)")
	serveCmd.Flags().StringVar(&serveDataset, "dataset", "", "Auto-load the newest stored dataset with this name instead of a file")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (overrides server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveNoLoad, "no-autoload", false, "Start without a dataset and wait for an upload")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveData != "" {
		cfg.Dashboard.DataFile = serveData
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()

	var src dataset.Source
	switch {
	case serveNoLoad:
	case serveDataset != "":
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		src = db.Source(serveDataset)
	case cfg.Dashboard.DataFile != "":
		src = dataset.FileSource{Path: cfg.Dashboard.DataFile}
	}

	current, err := autoLoad(ctx, cfg, logger, src)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := server.New(cfg, logger, current, reg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

// autoLoad classifies the startup source with the autoload profile. A nil
// source leaves the dashboard empty.
func autoLoad(ctx context.Context, cfg *config.Config, logger *slog.Logger, src dataset.Source) (*pipeline.Result, error) {
	if src == nil {
		return nil, nil
	}

	res, err := pipeline.Run(ctx, src, pipeline.NewOptions(cfg, cfg.AutoLoad))
	if err != nil {
		return nil, fmt.Errorf("auto-loading %s: %w", src.Name(), err)
	}
	logger.Info("dataset auto-loaded",
		slog.String("run_id", res.RunID),
		slog.String("source", res.Source),
		slog.String("kind", res.Kind),
		slog.Int("records", res.Summary.Records),
		slog.Float64("mean_consumption", res.Summary.MeanConsumption),
	)
	for _, note := range res.Notes {
		logger.Warn(note, slog.String("source", res.Source))
	}
	return res, nil
}
