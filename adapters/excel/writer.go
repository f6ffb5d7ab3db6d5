package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"excelops/domain/table"
	"excelops/ports"
)

const maxSheetNameLen = 31

// Writer persists datasets as xlsx workbooks, or as CSV when the target
// path has a .csv extension (single sheet only).
type Writer struct{}

// NewWriter creates a tabular file writer
func NewWriter() *Writer {
	return &Writer{}
}

// Write saves sheets to path. Sheet names are sanitized for Excel; value
// cells keep their type (numbers stay numbers).
func (w *Writer) Write(path string, sheets []ports.NamedDataset) error {
	if len(sheets) == 0 {
		return fmt.Errorf("nothing to write")
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		if len(sheets) > 1 {
			return fmt.Errorf("CSV export supports a single sheet, got %d", len(sheets))
		}
		return writeCSV(path, sheets[0].Dataset)
	}
	return writeWorkbook(path, sheets)
}

func writeWorkbook(path string, sheets []ports.NamedDataset) error {
	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool, len(sheets))
	for i, sheet := range sheets {
		name := uniqueSheetName(SanitizeSheetName(sheet.Name), used)
		used[name] = true

		if i == 0 {
			// Rename the default sheet instead of leaving it empty
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("failed to add sheet %q: %w", name, err)
			}
		}
		if err := fillSheet(f, name, sheet.Dataset); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	log.Printf("[Writer] wrote %d sheets to %s", len(sheets), path)
	return nil
}

func fillSheet(f *excelize.File, name string, d *table.Dataset) error {
	header := make([]interface{}, len(d.Columns))
	for i, c := range d.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", name, err)
	}

	for i, row := range d.Rows {
		cells := make([]interface{}, len(d.Columns))
		for j, col := range d.Columns {
			cells[j] = cellValue(row.Get(col))
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d of %q: %w", i+2, name, err)
		}
		if err := f.SetSheetRow(name, axis, &cells); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+2, name, err)
		}
	}
	return nil
}

func cellValue(v table.Value) interface{} {
	switch v.Type {
	case table.ValueTypeNumeric:
		return v.Num
	case table.ValueTypeMissing:
		return nil
	default:
		return v.Str
	}
}

func writeCSV(path string, d *table.Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(d.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	record := make([]string, len(d.Columns))
	for _, row := range d.Rows {
		for j, col := range d.Columns {
			v := row.Get(col)
			if v.IsMissing() {
				record[j] = ""
			} else {
				record[j] = v.String()
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV file: %w", err)
	}
	log.Printf("[Writer] wrote %d rows to %s", d.NumRows(), path)
	return nil
}

// SanitizeSheetName strips the characters Excel forbids in sheet names and
// truncates to the 31-rune limit. An all-invalid name becomes "Sheet".
func SanitizeSheetName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "Sheet"
	}
	runes := []rune(out)
	if len(runes) > maxSheetNameLen {
		out = string(runes[:maxSheetNameLen])
	}
	return out
}

func uniqueSheetName(name string, used map[string]bool) string {
	if !used[name] {
		return name
	}
	for i := 2; ; i++ {
		suffix := fmt.Sprintf(" %d", i)
		base := name
		if runes := []rune(base); len(runes)+len(suffix) > maxSheetNameLen {
			base = string(runes[:maxSheetNameLen-len(suffix)])
		}
		candidate := base + suffix
		if !used[candidate] {
			return candidate
		}
	}
}
