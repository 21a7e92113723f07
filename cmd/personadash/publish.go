package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/personadash/internal/database"
	"github.com/jgoulah/personadash/internal/pipeline"
	"github.com/jgoulah/personadash/internal/publisher"
	"github.com/jgoulah/personadash/pkg/models"
)

var (
	publishFile    string
	publishProfile string
)

var publishCmd = &cobra.Command{
	Use:   "publish [dataset]",
	Short: "Publish a persona summary to Home Assistant",
	Long: `Classifies a stored dataset (or a CSV file with --file) and publishes the
persona summary over MQTT and/or the Home Assistant HTTP API, as configured.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishFile, "file", "", "Publish a CSV file instead of a stored dataset")
	publishCmd.Flags().StringVar(&publishProfile, "profile", "autoload", "Column profile (autoload or upload)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	if (len(args) == 0) == (publishFile == "") {
		return fmt.Errorf("give either a stored dataset name or --file")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	pub, err := publisher.New(cfg.MQTT, cfg.HomeAssistant)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	ctx := cmd.Context()

	if publishFile != "" {
		res, err := classifyFile(ctx, cfg, publishFile, publishProfile)
		if err != nil {
			return err
		}
		if err := pub.PublishSummary(ctx, res.Summary); err != nil {
			return fmt.Errorf("publishing summary: %w", err)
		}
		fmt.Printf("Published summary of %s (%d records)\n", publishFile, res.Summary.Records)
		return nil
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	cols, err := cfg.Profile(publishProfile)
	if err != nil {
		return err
	}

	name := args[0]
	info, res, err := publishDataset(ctx, db, pub, pipeline.NewOptions(cfg, cols), name)
	if err != nil {
		return err
	}

	fmt.Printf("Published summary of %q (id %d, %d records)\n", name, info.ID, res.Summary.Records)
	return nil
}

type summaryPublisher interface {
	PublishSummary(ctx context.Context, summary models.Summary) error
}

// publishDataset classifies the newest import stored under name, publishes its
// summary and marks that same import as published
func publishDataset(ctx context.Context, db *database.DB, pub summaryPublisher, opts pipeline.Options, name string) (*models.DatasetInfo, *pipeline.Result, error) {
	info, _, err := db.LatestDataset(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("loading dataset: %w", err)
	}
	if info == nil {
		return nil, nil, fmt.Errorf("no dataset named %q. Run 'personadash import' first", name)
	}

	res, err := pipeline.Run(ctx, db.ImportSource(info), opts)
	if err != nil {
		return nil, nil, err
	}

	if err := pub.PublishSummary(ctx, res.Summary); err != nil {
		return nil, nil, fmt.Errorf("publishing summary: %w", err)
	}
	if err := db.MarkPublished(ctx, info.ID); err != nil {
		return nil, nil, err
	}
	return info, res, nil
}
