package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/personadash/internal/aggregate"
	"github.com/jgoulah/personadash/internal/charts"
)

var (
	renderGroup   string
	renderOutput  string
	renderProfile string
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a consumption box plot to PNG",
	Long:  `Classifies a CSV file and draws consumption per persona (or per cluster) as a static PNG box plot.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderGroup, "group", "persona", "Group by persona or cluster")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "boxplot.png", "Output file")
	renderCmd.Flags().StringVar(&renderProfile, "profile", "autoload", "Column profile (autoload or upload)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	res, err := classifyFile(cmd.Context(), cfg, args[0], renderProfile)
	if err != nil {
		return err
	}

	var title string
	var groups []aggregate.Group
	switch renderGroup {
	case "persona":
		title, groups = "Consumption by Persona", res.PersonaGroups()
	case "cluster":
		title, groups = "Consumption by Cluster", res.ClusterGroups()
	default:
		return fmt.Errorf("unknown group: %s (available: persona, cluster)", renderGroup)
	}
	if len(groups) == 0 {
		return fmt.Errorf("%s lacks the columns needed to group by %s", args[0], renderGroup)
	}

	var buf bytes.Buffer
	if err := charts.WriteBoxPlotPNG(&buf, title, groups); err != nil {
		return err
	}
	if err := os.WriteFile(renderOutput, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", renderOutput, err)
	}

	fmt.Printf("Wrote %s (%d groups)\n", renderOutput, len(groups))
	return nil
}
