package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored datasets",
	Long:  `Displays every dataset imported into the database, newest first.`,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	datasets, err := db.ListDatasets(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing datasets: %w", err)
	}

	if len(datasets) == 0 {
		fmt.Println("No datasets found. Run 'personadash import <file>' first")
		return nil
	}

	fmt.Println("------------------------------------------------------------------------")
	fmt.Printf("%-4s  %-20s  %8s  %-16s  %-16s\n", "ID", "Name", "Rows", "Imported", "Published")
	fmt.Println("------------------------------------------------------------------------")

	var total int
	for _, d := range datasets {
		published := "never"
		if d.PublishedAt != nil {
			published = humanize.Time(*d.PublishedAt)
		}
		fmt.Printf("%-4d  %-20s  %8s  %-16s  %-16s\n",
			d.ID, d.Name, humanize.Comma(int64(d.Rows)), humanize.Time(d.CreatedAt), published)
		fmt.Printf("      columns: %s\n", strings.Join(d.Columns, ", "))
		total += d.Rows
	}

	fmt.Println("------------------------------------------------------------------------")
	fmt.Printf("Total: %s records in %d datasets\n", humanize.Comma(int64(total)), len(datasets))
	return nil
}
