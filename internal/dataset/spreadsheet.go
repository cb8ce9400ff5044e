package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/constructo/internal/common"
	"github.com/Veraticus/constructo/internal/model"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet name used when writing spreadsheets.
const DefaultSheet = "Sheet1"

// ReadSpreadsheet parses the first sheet of an .xlsx file. The first row is
// the header; every following row becomes a data row, blank rows included.
// Short rows are padded and cells past the header are dropped.
func ReadSpreadsheet(path string) (*model.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, common.FormatError(path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.FormatError(path, fmt.Errorf("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, common.FormatError(path, err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, common.FormatError(path, fmt.Errorf("missing header row"))
	}

	table := model.NewTable(rows[0])
	for _, row := range rows[1:] {
		table.AppendRow(row)
	}

	return table, nil
}

// WriteSpreadsheet stores table as a single-sheet .xlsx file at path,
// creating the parent directory when needed.
func WriteSpreadsheet(table *model.Table, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := writeRow(f, 1, table.Columns()); err != nil {
		return err
	}
	for i := 0; i < table.Len(); i++ {
		if err := writeRow(f, i+2, table.Row(i)); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save spreadsheet %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", rowNum, err)
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(DefaultSheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}
