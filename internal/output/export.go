package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// Exporter writes a report in one file format.
type Exporter interface {
	Export(w io.Writer, r *Report) error
	Extension() string
}

// ExporterFor returns the exporter for csv, xlsx or json.
func ExporterFor(format string) (Exporter, error) {
	switch format {
	case "csv":
		return CSVExporter{}, nil
	case "xlsx":
		return XLSXExporter{}, nil
	case "json":
		return JSONExporter{Indent: true}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// WriteFile exports r into dir under the standard file name and returns
// the path written.
func WriteFile(r *Report, format, dir string, now time.Time) (string, error) {
	exporter, err := ExporterFor(format)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, Filename(exporter.Extension(), now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := exporter.Export(f, r); err != nil {
		return "", err
	}
	return path, f.Close()
}

// CSVExporter writes a header line and one line per row.
type CSVExporter struct{}

func (CSVExporter) Extension() string {
	return "csv"
}

func (CSVExporter) Export(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range r.Rows {
		if err := cw.Write(row.Values()); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSXExporter writes a Products sheet and a Summary sheet.
type XLSXExporter struct{}

const (
	productsSheet = "Products"
	summarySheet  = "Summary"
)

func (XLSXExporter) Extension() string {
	return "xlsx"
}

func (XLSXExporter) Export(w io.Writer, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", productsSheet); err != nil {
		return fmt.Errorf("failed to name products sheet: %w", err)
	}
	if err := writeSheetRow(f, productsSheet, 1, Headers); err != nil {
		return err
	}
	for i, row := range r.Rows {
		if err := writeSheetRow(f, productsSheet, i+2, row.Values()); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeSheetRow(f, summarySheet, 1, []string{"Metric", "Value"}); err != nil {
		return err
	}
	for i, m := range r.Summary.Metrics() {
		if err := writeSheetRow(f, summarySheet, i+2, []string{m[0], m[1]}); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}

// JSONExporter writes the whole report document.
type JSONExporter struct {
	Indent bool
}

func (JSONExporter) Extension() string {
	return "json"
}

func (e JSONExporter) Export(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	if e.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
