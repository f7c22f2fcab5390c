// Package xlsx writes filtered crash records as an Excel workbook.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	// FileName is the suggested download name.
	FileName = "filtered_crash_data.xlsx"
	// SheetName is the single worksheet in the workbook.
	SheetName = "Filtered Data"
	// ContentType is the MIME type of the workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	defaultSheet = "Sheet1"
)

// Exporter implements pipeline.Exporter.
type Exporter struct{}

// NewExporter creates an XLSX exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Columns returns the exported column order: the source header followed by
// the derived year, unless the source already carries a year column.
func Columns(header []string) []string {
	cols := slices.Clone(header)
	if !slices.Contains(cols, domain.ColYear) {
		cols = append(cols, domain.ColYear)
	}
	return cols
}

// ExportRecords streams one header row plus one row per record to w.
func (e *Exporter) ExportRecords(ctx context.Context, w io.Writer, header []string, records []domain.CrashRecord) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	if err := f.SetSheetName(defaultSheet, SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	cols := Columns(header)
	if err := setRow(sw, 1, toCells(cols)); err != nil {
		return err
	}
	for i, rec := range records {
		if i%1000 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		row := make([]interface{}, len(cols))
		for j, col := range cols {
			if col == domain.ColYear {
				row[j] = rec.Year
				continue
			}
			row[j] = rec.Fields[col]
		}
		if err := setRow(sw, i+2, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(sw *excelize.StreamWriter, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
