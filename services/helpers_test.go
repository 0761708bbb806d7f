package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"sdg-collector/models"
	"sdg-collector/utils"
)

func newTestLogger() *utils.Logger { return utils.Discard() }

// fakeAPI serves canned areas and series values. Values are keyed by
// "series|area|year".
type fakeAPI struct {
	mu       sync.Mutex
	areas    []models.RemoteArea
	areasErr error
	values   map[string]float64
	queries  []string
	onQuery  func()
}

func valueKey(series string, area, year int) string {
	return fmt.Sprintf("%s|%d|%d", series, area, year)
}

func (f *fakeAPI) GeoAreas(context.Context) ([]models.RemoteArea, error) {
	return f.areas, f.areasErr
}

func (f *fakeAPI) SeriesValue(_ context.Context, series string, area, year int) (float64, bool) {
	f.mu.Lock()
	key := valueKey(series, area, year)
	f.queries = append(f.queries, key)
	hook := f.onQuery
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	v, ok := f.values[key]
	return v, ok
}

func area(code string, name string) models.RemoteArea {
	return models.RemoteArea{GeoAreaCode: json.RawMessage(code), GeoAreaName: name}
}

// fullValues returns a value for every catalog series of area in year,
// except the labels listed in skip.
func fullValues(areaCode, year int, skip ...string) map[string]float64 {
	out := make(map[string]float64)
	for i, s := range models.Catalog() {
		skipped := false
		for _, l := range skip {
			if s.Label() == l {
				skipped = true
			}
		}
		if !skipped {
			out[valueKey(s.SeriesCode, areaCode, year)] = float64(i) + 0.5
		}
	}
	return out
}

func writeMappingCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "UNSDMethodology.csv")
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const mappingHeader = "Global Code;Country or Area;M49 Code;ISO-alpha3 Code"

type countingProgress struct {
	steps    int
	finished bool
}

func (p *countingProgress) Add(n int) error { p.steps += n; return nil }
func (p *countingProgress) Finish() error  { p.finished = true; return nil }
