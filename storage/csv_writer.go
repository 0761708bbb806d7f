package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"sdg-collector/models"
)

// CSVHeader is the header row of the flat export.
var CSVHeader = []string{"iso3", "name", "year", "indicator", "series_code", "value"}

// CSVWriter writes the document in long format, one row per
// (area, year, indicator) value.
type CSVWriter struct {
	path string
}

// NewCSVWriter returns a writer targeting path.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Write creates (or truncates) the CSV file and writes every value of doc.
// Intermediate directories are created automatically.
func (c *CSVWriter) Write(doc *models.OutputDocument, _ int) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", c.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, row := range FlattenDocument(doc) {
		if err := w.Write([]string{
			row.ISO3,
			row.Name,
			row.Year,
			row.Indicator,
			row.SeriesCode,
			strconv.FormatFloat(row.Value, 'f', -1, 64),
		}); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return f.Close()
}

// Close is a no-op; every Write opens and closes its own file.
func (c *CSVWriter) Close() error { return nil }

// FlatRow is one value of the document in long format.
type FlatRow struct {
	ISO3       string
	Name       string
	Year       string
	Indicator  string
	SeriesCode string
	Value      float64
}

// FlattenDocument lists every value in document order, years ascending and
// indicators in catalog order.
func FlattenDocument(doc *models.OutputDocument) []FlatRow {
	var rows []FlatRow
	for _, area := range doc.Areas() {
		years := make([]string, 0, len(area.YearBlock))
		for y := range area.YearBlock {
			years = append(years, y)
		}
		sort.Strings(years)

		for _, y := range years {
			block := area.YearBlock[y]
			labels := make([]string, 0, len(block))
			for l := range block {
				labels = append(labels, l)
			}
			models.SortLabels(labels)

			for _, l := range labels {
				series, _ := models.SeriesFor(l)
				rows = append(rows, FlatRow{
					ISO3:       area.ISO3,
					Name:       area.Name,
					Year:       y,
					Indicator:  l,
					SeriesCode: series.SeriesCode,
					Value:      block[l],
				})
			}
		}
	}
	return rows
}
