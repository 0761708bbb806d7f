package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RawMappingRow holds the untrimmed fields of one reference file row.
// Line is the 1-based line number in the file, header included.
type RawMappingRow struct {
	Line int
	Code string
	ISO3 string
	Name string
}

// AreaMapping is one usable row of the reference mapping file.
type AreaMapping struct {
	Code int
	ISO3 string
	Name string
}

// AreaMappings indexes mapping rows by numeric area code.
type AreaMappings map[int]AreaMapping

// RemoteArea is one entry of the API's GeoArea listing.
// The code is kept raw because the API may send it as a number or a string.
type RemoteArea struct {
	GeoAreaCode json.RawMessage `json:"geoAreaCode"`
	GeoAreaName string          `json:"geoAreaName,omitempty"`
}

// Code returns the area code as an integer. ok is false when the code is
// absent, null, fractional or not numeric.
func (a RemoteArea) Code() (code int, ok bool) {
	raw := bytes.TrimSpace(a.GeoAreaCode)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(text)
	}

	if n, err := strconv.Atoi(text); err == nil {
		return n, true
	}
	if raw[0] == '"' {
		return 0, false
	}

	// JSON numbers such as 4.0 are accepted when they are integral.
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// AreaResult is the collected data of one area, keyed by ISO3 in the output.
// YearBlock maps a year label to indicator label -> value.
type AreaResult struct {
	ISO3      string
	Name      string
	YearBlock map[string]map[string]float64
}

// NewAreaResult builds a result holding values for a single year.
func NewAreaResult(iso3, name string, year int, values map[string]float64) AreaResult {
	return AreaResult{
		ISO3:      iso3,
		Name:      name,
		YearBlock: map[string]map[string]float64{strconv.Itoa(year): values},
	}
}

// Values returns the indicator values recorded for year, or nil.
func (r AreaResult) Values(year int) map[string]float64 {
	return r.YearBlock[strconv.Itoa(year)]
}

// MarshalJSON writes {"name": ..., "<year>": {...}} with the name first and
// indicator labels in catalog order.
func (r AreaResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"name":`)
	if err := writeString(&buf, r.Name); err != nil {
		return nil, err
	}

	years := make([]string, 0, len(r.YearBlock))
	for y := range r.YearBlock {
		years = append(years, y)
	}
	sortStrings(years)

	for _, y := range years {
		buf.WriteByte(',')
		if err := writeString(&buf, y); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeIndicatorBlock(&buf, r.YearBlock[y]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the shape written by MarshalJSON. ISO3 is not part of
// the payload and is left untouched.
func (r *AreaResult) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	r.Name = ""
	r.YearBlock = make(map[string]map[string]float64, len(fields))
	for k, v := range fields {
		if k == "name" {
			if err := json.Unmarshal(v, &r.Name); err != nil {
				return err
			}
			continue
		}
		var block map[string]float64
		if err := json.Unmarshal(v, &block); err != nil {
			return err
		}
		r.YearBlock[k] = block
	}
	return nil
}

func writeIndicatorBlock(buf *bytes.Buffer, block map[string]float64) error {
	labels := make([]string, 0, len(block))
	for l := range block {
		labels = append(labels, l)
	}
	SortLabels(labels)

	buf.WriteByte('{')
	for i, l := range labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		val, err := json.Marshal(block[l])
		if err != nil {
			return err
		}
		if err := writeString(buf, l); err != nil {
			return err
		}
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return nil
}

// writeString appends s as a JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// OutputDocument accumulates AreaResults keyed by ISO3 in insertion order.
// Adding an ISO3 twice replaces the earlier result in place.
type OutputDocument struct {
	keys  []string
	areas map[string]AreaResult
}

// NewOutputDocument returns an empty document.
func NewOutputDocument() *OutputDocument {
	return &OutputDocument{areas: make(map[string]AreaResult)}
}

// Add stores r under r.ISO3.
func (d *OutputDocument) Add(r AreaResult) {
	if d.areas == nil {
		d.areas = make(map[string]AreaResult)
	}
	if _, exists := d.areas[r.ISO3]; !exists {
		d.keys = append(d.keys, r.ISO3)
	}
	d.areas[r.ISO3] = r
}

// Get returns the result stored for iso3.
func (d *OutputDocument) Get(iso3 string) (AreaResult, bool) {
	r, ok := d.areas[iso3]
	return r, ok
}

// Len returns the number of areas in the document.
func (d *OutputDocument) Len() int { return len(d.keys) }

// Keys returns the ISO3 keys in insertion order.
func (d *OutputDocument) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Areas returns the results in insertion order.
func (d *OutputDocument) Areas() []AreaResult {
	out := make([]AreaResult, 0, len(d.keys))
	for _, k := range d.keys {
		out = append(out, d.areas[k])
	}
	return out
}

func (d *OutputDocument) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		val, err := d.areas[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		if err := writeString(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the key order of the input.
func (d *OutputDocument) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("output document: expected object, got %v", tok)
	}

	d.keys = nil
	d.areas = make(map[string]AreaResult)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		iso3, _ := tok.(string)

		var r AreaResult
		if err := dec.Decode(&r); err != nil {
			return err
		}
		r.ISO3 = iso3
		d.Add(r)
	}
	_, err = dec.Token()
	return err
}
