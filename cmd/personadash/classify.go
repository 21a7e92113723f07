package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/personadash/internal/pipeline"
)

var (
	classifyProfile string
	classifyJSON    bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Classify a CSV file and print the persona summary",
	Long:  `Reads a CSV file, labels each household against the mean consumption, and prints the persona and cluster counts.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&classifyProfile, "profile", "autoload", "Column profile (autoload or upload)")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Print the summary as JSON")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	res, err := classifyFile(cmd.Context(), cfg, args[0], classifyProfile)
	if err != nil {
		return err
	}

	if classifyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Summary)
	}

	printSummary(res)
	return nil
}

func printSummary(res *pipeline.Result) {
	s := res.Summary
	fmt.Printf("\n%s (%s records)\n", s.Source, humanize.Comma(int64(s.Records)))
	fmt.Println("----------------------------------------")

	if !s.Classified {
		fmt.Printf("No %q column, households not classified\n", res.Columns.Consumption)
	} else {
		fmt.Printf("Mean Consumption: %.2f kWh\n\n", s.MeanConsumption)
		fmt.Printf("%-14s  %10s  %12s\n", "Persona", "Households", "Est. Cost")
		for _, c := range s.Personas {
			fmt.Printf("%-14s  %10d  %12s\n", c.Persona, c.Households, c.EstimatedCost)
		}
	}

	if len(s.Clusters) > 0 {
		fmt.Printf("\n%-14s  %10s\n", "Cluster", "Households")
		for _, c := range s.Clusters {
			fmt.Printf("%-14s  %10d\n", c.Cluster, c.Households)
		}
	}

	fmt.Println("----------------------------------------")
	fmt.Printf("Charts: %d\n", len(res.Charts))
	for _, note := range res.Notes {
		fmt.Printf("Note: %s\n", note)
	}
}
