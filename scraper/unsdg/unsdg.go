package unsdg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"sdg-collector/models"
)

// seriesResponse is the part of GET /Series/Data the collector reads.
type seriesResponse struct {
	Data []dataPoint `json:"data"`
}

type dataPoint struct {
	Value json.RawMessage `json:"value"`
}

// GeoAreaURL returns the area listing endpoint.
func (c *Client) GeoAreaURL() string {
	return c.baseURL + "/GeoArea/List"
}

// SeriesURL returns the query for one series, area and year.
func (c *Client) SeriesURL(seriesCode string, areaCode, year int) string {
	return fmt.Sprintf("%s/Series/Data?seriesCode=%s&areaCode=%d&timePeriod=%d",
		c.baseURL, url.QueryEscape(seriesCode), areaCode, year)
}

// GeoAreas fetches the full area listing using the area retry policy.
// Entries that are not objects are kept as areas without a code.
func (c *Client) GeoAreas(ctx context.Context) ([]models.RemoteArea, error) {
	raw, err := c.FetchJSON(ctx, c.GeoAreaURL(), c.areaPolicy)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode geo areas: %w", err)
	}

	c.logger.Info("[unsdg] Geo areas returned: %d (showing first %d)", len(items), min(3, len(items)))
	for _, item := range items[:min(3, len(items))] {
		var compact bytes.Buffer
		if err := json.Compact(&compact, item); err == nil {
			c.logger.Info("[unsdg]    %s", compact.String())
		}
	}

	areas := make([]models.RemoteArea, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &areas[i]); err != nil {
			c.logger.Debug("[unsdg] Geo area %d is not an object: %v", i, err)
			areas[i] = models.RemoteArea{}
		}
	}
	return areas, nil
}

// SeriesValue returns the first data point of seriesCode for areaCode in year.
// ok is false when the request failed, no data was reported or the value
// is empty or not numeric.
func (c *Client) SeriesValue(ctx context.Context, seriesCode string, areaCode, year int) (value float64, ok bool) {
	raw, err := c.FetchJSON(ctx, c.SeriesURL(seriesCode, areaCode, year), c.seriesPolicy)
	if err != nil {
		return 0, false
	}

	var resp seriesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, false
	}
	if len(resp.Data) == 0 {
		return 0, false
	}
	return ParseValue(resp.Data[0].Value)
}

// ParseValue coerces a data point value to a number. Numbers and numeric
// strings are accepted, zero included; null, empty strings, booleans and
// non-finite numbers are not.
func ParseValue(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	var text string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return 0, false
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(raw)
	default:
		return 0, false
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
