package services

import (
	"context"

	"sdg-collector/models"
	"sdg-collector/utils"
)

// SeriesSource answers single (series, area, year) queries.
type SeriesSource interface {
	SeriesValue(ctx context.Context, seriesCode string, areaCode, year int) (float64, bool)
}

// Progress receives one step per processed remote area.
type Progress interface {
	Add(n int) error
	Finish() error
}

type noProgress struct{}

func (noProgress) Add(int) error  { return nil }
func (noProgress) Finish() error { return nil }

// RunStats counts what happened to each remote area during Run.
type RunStats struct {
	RemoteAreas  int
	InvalidCodes int
	Unmapped     int
	Eligible     int
	WithData     int
}

// Collector fetches the catalog indicators for eligible areas.
type Collector struct {
	source  SeriesSource
	catalog []models.IndicatorSeries
	logger  *utils.Logger
}

// NewCollector creates a Collector over the full indicator catalog.
func NewCollector(source SeriesSource, logger *utils.Logger) *Collector {
	return &Collector{
		source:  source,
		catalog: models.Catalog(),
		logger:  logger,
	}
}

// Collect queries every catalog series for areaCode in year, in catalog
// order, and returns the values that could be read, keyed by label.
// Missing data is expected and not reported.
func (c *Collector) Collect(ctx context.Context, areaCode, year int) map[string]float64 {
	out := make(map[string]float64)
	for _, s := range c.catalog {
		if ctx.Err() != nil {
			break
		}
		if v, ok := c.source.SeriesValue(ctx, s.SeriesCode, areaCode, year); ok {
			out[s.Label()] = v
		}
	}
	return out
}

// Run walks the remote areas in order and adds a result to doc for every
// area that has an integer code, a mapping entry and at least one value.
// progress advances once per remote area whatever the outcome. The only
// error is ctx's; the area being collected at that moment is not added.
func (c *Collector) Run(
	ctx context.Context,
	areas []models.RemoteArea,
	mappings models.AreaMappings,
	year int,
	doc *models.OutputDocument,
	progress Progress,
) (RunStats, error) {
	if progress == nil {
		progress = noProgress{}
	}
	defer func() { _ = progress.Finish() }()

	stats := RunStats{RemoteAreas: len(areas)}
	for _, area := range areas {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		c.step(ctx, area, mappings, year, doc, &stats)
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		_ = progress.Add(1)
	}
	return stats, nil
}

func (c *Collector) step(
	ctx context.Context,
	area models.RemoteArea,
	mappings models.AreaMappings,
	year int,
	doc *models.OutputDocument,
	stats *RunStats,
) {
	code, ok := area.Code()
	if !ok {
		stats.InvalidCodes++
		return
	}
	m, ok := mappings[code]
	if !ok {
		stats.Unmapped++
		return
	}
	stats.Eligible++

	values := c.Collect(ctx, code, year)
	if ctx.Err() != nil {
		return
	}
	if len(values) == 0 {
		c.logger.Debug("[collector] %s (%d): no indicator values for %d", m.ISO3, code, year)
		return
	}

	stats.WithData++
	doc.Add(models.NewAreaResult(m.ISO3, m.Name, year, values))
	c.logger.Debug("[collector] %s (%d): %d/%d indicators", m.ISO3, code, len(values), len(c.catalog))
}
