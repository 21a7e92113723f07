package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jgoulah/personadash/internal/dataset"
)

var importName string

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Store a CSV file in the local database",
	Long:  `Parses a CSV file and stores its records in the SQLite database under a name, so it can be served or published later.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importName, "name", "", "Dataset name (default is the file name without extension)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	name := importName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	ds, err := dataset.FileSource{Path: path}.Load(cmd.Context())
	if err != nil {
		return err
	}
	if ds.Len() == 0 {
		return fmt.Errorf("%s contains no records", path)
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	id, err := db.InsertDataset(cmd.Context(), name, ds)
	if err != nil {
		return fmt.Errorf("storing dataset: %w", err)
	}

	fmt.Printf("Stored %d records from %s as %q (id %d)\n", ds.Len(), path, name, id)
	return nil
}
