package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/personadash/internal/export"
)

var (
	exportOutput  string
	exportProfile string
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the classified table to a spreadsheet",
	Long:  `Classifies a CSV file and writes an xlsx workbook with the households (including their persona) and the summary.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "personas.xlsx", "Output file")
	exportCmd.Flags().StringVar(&exportProfile, "profile", "autoload", "Column profile (autoload or upload)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	res, err := classifyFile(cmd.Context(), cfg, args[0], exportProfile)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, res); err != nil {
		return err
	}
	if err := os.WriteFile(exportOutput, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", exportOutput, err)
	}

	fmt.Printf("Wrote %d households to %s\n", res.Summary.Records, exportOutput)
	return nil
}
