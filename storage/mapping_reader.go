package storage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"sdg-collector/apperr"
	"sdg-collector/models"
)

// Header names of the reference mapping file.
const (
	ColumnCode = "M49 Code"
	ColumnISO3 = "ISO-alpha3 Code"
	ColumnName = "Country or Area"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadMappingRows reads the semicolon-delimited reference file at path.
// Columns are located by header name. Rows shorter than the header yield
// empty fields. A missing file, a parse error or a missing column is a
// ConfigurationError.
func ReadMappingRows(path string) ([]models.RawMappingRow, error) {
	f, err := os.Open(path)
	if err != nil {
		reason := "open mapping file"
		if errors.Is(err, os.ErrNotExist) {
			reason = "file not found"
		}
		return nil, &apperr.ConfigurationError{Path: path, Reason: reason, Err: err}
	}
	defer f.Close()

	rows, err := parseMappingRows(f)
	if err != nil {
		return nil, &apperr.ConfigurationError{Path: path, Reason: "parse mapping file", Err: err}
	}
	return rows, nil
}

func parseMappingRows(r io.Reader) ([]models.RawMappingRow, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}
	var missing []string
	for _, col := range []string{ColumnCode, ColumnISO3, ColumnName} {
		if _, ok := index[col]; !ok {
			missing = append(missing, fmt.Sprintf("%q", col))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header is missing column(s) %s; check the header and the ';' delimiter",
			strings.Join(missing, ", "))
	}

	field := func(rec []string, col string) string {
		if i := index[col]; i < len(rec) {
			return rec[i]
		}
		return ""
	}

	var rows []models.RawMappingRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, models.RawMappingRow{
			Line: line,
			Code: field(rec, ColumnCode),
			ISO3: field(rec, ColumnISO3),
			Name: field(rec, ColumnName),
		})
	}
	return rows, nil
}
