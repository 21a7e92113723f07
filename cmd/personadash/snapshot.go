package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/personadash/internal/snapshot"
)

var (
	snapshotURL     string
	snapshotOutput  string
	snapshotWidth   int64
	snapshotTimeout time.Duration
	snapshotSettle  time.Duration
	snapshotVisible bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save a screenshot of a running dashboard",
	Long:  `Opens the dashboard in Chrome, waits for the charts to draw, and saves a full-page PNG.`,
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotURL, "url", "", "Dashboard URL (default is the configured listen address)")
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "dashboard.png", "Output file")
	snapshotCmd.Flags().Int64Var(&snapshotWidth, "width", 1280, "Viewport width in pixels")
	snapshotCmd.Flags().DurationVar(&snapshotTimeout, "timeout", 30*time.Second, "Give up after this long")
	snapshotCmd.Flags().DurationVar(&snapshotSettle, "settle", 2*time.Second, "Wait after the page loads for charts to draw")
	snapshotCmd.Flags().BoolVar(&snapshotVisible, "visible", false, "Show the browser window")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	url := snapshotURL
	if url == "" {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		host := cfg.Server.Host
		if host == "" || host == "0.0.0.0" {
			host = "localhost"
		}
		url = fmt.Sprintf("http://%s:%d/", host, cfg.Server.Port)
	}

	fmt.Printf("Capturing %s...\n", url)
	png, err := snapshot.Capture(cmd.Context(), snapshot.Options{
		URL:     url,
		Width:   snapshotWidth,
		Timeout: snapshotTimeout,
		Settle:  snapshotSettle,
		Visible: snapshotVisible,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(snapshotOutput, png, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", snapshotOutput, err)
	}

	fmt.Printf("Wrote %s\n", snapshotOutput)
	return nil
}
