package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"sdg-collector/models"
)

func sampleDocument() *models.OutputDocument {
	doc := models.NewOutputDocument()
	doc.Add(models.NewAreaResult("AFG", "Afghanistan", 2020, map[string]float64{"SDG10": 2.5, "SDG1": 10}))
	doc.Add(models.NewAreaResult("CIV", "Côte d'Ivoire & co", 2020, map[string]float64{"SDG3": 0}))
	return doc
}

func TestJSONWriterCreatesDirsAndIndents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "sdg.json")
	w := NewJSONWriter(path)
	if err := w.Write(sampleDocument(), 2020); err != nil {
		t.Fatalf("Write: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(b)
	if !strings.HasPrefix(text, "{\n  \"AFG\": {\n    \"name\": \"Afghanistan\",") {
		t.Errorf("unexpected layout:\n%s", text)
	}
	if !strings.Contains(text, `"Côte d'Ivoire & co"`) {
		t.Errorf("expected unescaped UTF-8 and '&':\n%s", text)
	}
	if strings.Index(text, `"SDG1"`) > strings.Index(text, `"SDG10"`) {
		t.Errorf("SDG1 should precede SDG10:\n%s", text)
	}
}

func TestJSONWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdg.json")
	doc := sampleDocument()
	if err := NewJSONWriter(path).Write(doc, 2020); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if !reflect.DeepEqual(got.Areas(), doc.Areas()) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got.Areas(), doc.Areas())
	}
}

func TestJSONWriterOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdg.json")
	w := NewJSONWriter(path)
	if err := w.Write(sampleDocument(), 2020); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(models.NewOutputDocument(), 2020); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	if strings.TrimSpace(string(b)) != "{}" {
		t.Errorf("expected empty object, got %q", b)
	}
}

func TestCSVWriterFlatRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "flat.csv")
	if err := NewCSVWriter(path).Write(sampleDocument(), 2020); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		CSVHeader,
		{"AFG", "Afghanistan", "2020", "SDG1", "SI_COV_BENFTS", "10"},
		{"AFG", "Afghanistan", "2020", "SDG10", "SL_EMP_GTOTL", "2.5"},
		{"CIV", "Côte d'Ivoire & co", "2020", "SDG3", "SH_ACS_UNHC", "0"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records:\n got %v\nwant %v", records, want)
	}
}

func TestBuildInsertPlaceholders(t *testing.T) {
	rows := FlattenDocument(sampleDocument())
	query, args := buildInsert(rows, 2020)

	if len(args) != len(rows)*6 {
		t.Fatalf("args: got %d, want %d", len(args), len(rows)*6)
	}
	if !strings.Contains(query, "($1,$2,$3,$4,$5,$6),($7,$8,$9,$10,$11,$12),($13,$14,$15,$16,$17,$18)") {
		t.Errorf("unexpected placeholders:\n%s", query)
	}
	if args[2] != 2020 || args[3] != "SDG1" || args[5] != 10.0 {
		t.Errorf("first row args: got %v", args[:6])
	}
}

func TestRowsForYearFiltersOtherYears(t *testing.T) {
	doc := sampleDocument()
	r, _ := doc.Get("AFG")
	r.YearBlock["2019"] = map[string]float64{"SDG5": 1}
	doc.Add(r)

	for _, row := range rowsForYear(doc, 2020) {
		if row.Year != "2020" {
			t.Errorf("unexpected row for year %s", row.Year)
		}
	}
	if n := len(rowsForYear(doc, 2019)); n != 1 {
		t.Errorf("rows for 2019: got %d, want 1", n)
	}
}
