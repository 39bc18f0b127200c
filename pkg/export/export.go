// Package export writes flattened report tables to files
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/saturnines/ledger-core/pkg/report"
)

// DefaultSheet names the worksheet WriteXLSX fills
const DefaultSheet = "Report"

// Columns orders the keys of table: titles first, as given, then any other
// key found in the rows (the entity id columns) sorted by name.
func Columns(table []report.Row, titles []string) []string {
	seen := make(map[string]bool, len(titles))
	columns := make([]string, 0, len(titles))
	for _, t := range titles {
		if !seen[t] {
			seen[t] = true
			columns = append(columns, t)
		}
	}

	var extra []string
	for _, row := range table {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	slices.Sort(extra)
	return append(columns, extra...)
}

// WriteJSON writes table as one indented JSON array
func WriteJSON(w io.Writer, table []report.Row) error {
	if table == nil {
		table = []report.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(table)
}

// WriteJSONLines writes one JSON object per row
func WriteJSONLines(w io.Writer, table []report.Row) error {
	enc := json.NewEncoder(w)
	for i, row := range table {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

// WriteXLSX writes a workbook with a bold header row followed by one row per
// table row. Missing cells are left blank.
func WriteXLSX(w io.Writer, sheet string, columns []string, table []report.Row) error {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if len(columns) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, row := range table {
		for j, c := range columns {
			v, ok := row[c]
			if !ok || v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", i+1, err)
			}
		}
	}

	return f.Write(w)
}

// ReadXLSX reads back the first sheet of a workbook as rows of strings
func ReadXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}
