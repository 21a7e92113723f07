// Package export writes a classified dataset to a spreadsheet workbook.
package export

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jgoulah/personadash/internal/pipeline"
)

const (
	HouseholdsSheet = "Households"
	SummarySheet    = "Summary"
)

// WriteXLSX writes the table (with its Persona column) and the summary to w
// as an xlsx workbook. Numeric cells are stored as numbers.
func WriteXLSX(w io.Writer, res *pipeline.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", HouseholdsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := writeTable(f, res, header); err != nil {
		return err
	}
	if err := writeSummary(f, res, header); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, res *pipeline.Result, header int) error {
	columns := res.Table.Columns()
	if err := f.SetSheetRow(HouseholdsSheet, "A1", &columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(HouseholdsSheet, "A1", last, header); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i := 0; i < res.Table.Len(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		row := cellValues(res.Table.Row(i))
		if err := f.SetSheetRow(HouseholdsSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	return f.SetPanes(HouseholdsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummary(f *excelize.File, res *pipeline.Result, header int) error {
	s := res.Summary
	rows := [][]any{
		{"Source", s.Source},
		{"Run ID", s.RunID},
		{"Generated", s.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Records", s.Records},
	}
	if s.Classified {
		rows = append(rows, []any{"Mean Consumption (kWh)", s.MeanConsumption})
	}

	if len(s.Personas) > 0 {
		rows = append(rows, []any{}, []any{"Persona", "Households", "Estimated Cost"})
		for _, c := range s.Personas {
			rows = append(rows, []any{string(c.Persona), c.Households, c.EstimatedCost})
		}
	}
	if len(s.Clusters) > 0 {
		rows = append(rows, []any{}, []any{"Cluster", "Households"})
		for _, c := range s.Clusters {
			rows = append(rows, []any{c.Cluster, c.Households})
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i, err)
		}
	}

	if err := f.SetColWidth(SummarySheet, "A", "A", 26); err != nil {
		return err
	}
	return f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", len(rows)), header)
}

// cellValues converts numeric-looking cells to float64 so spreadsheet
// formulas work on them
func cellValues(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		if v, err := strconv.ParseFloat(strings.TrimSpace(c), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[i] = v
			continue
		}
		out[i] = c
	}
	return out
}
