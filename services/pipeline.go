package services

import (
	"context"
	"fmt"
	"io"

	"sdg-collector/apperr"
	"sdg-collector/config"
	"sdg-collector/models"
	"sdg-collector/storage"
	"sdg-collector/utils"
)

// API is the part of the SDG client the pipeline needs.
type API interface {
	SeriesSource
	GeoAreas(ctx context.Context) ([]models.RemoteArea, error)
}

// Result is what a completed run produced.
type Result struct {
	Document *models.OutputDocument
	Stats    RunStats
	Report   *models.CoverageReport
}

// Pipeline runs one collection: mapping, area listing, reconciliation,
// indicator collection and persistence.
type Pipeline struct {
	cfg    *config.Config
	api    API
	logger *utils.Logger

	output      *storage.JSONWriter
	sinks       []storage.DocumentWriter
	newProgress func(total int) Progress
	reportOut   io.Writer
}

// NewPipeline wires a pipeline that writes the document to cfg.OutputJSONPath.
func NewPipeline(cfg *config.Config, api API, logger *utils.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		api:    api,
		logger: logger,
		output: storage.NewJSONWriter(cfg.OutputJSONPath),
	}
}

// WithSinks adds secondary writers. Their failures are logged, not returned.
func (p *Pipeline) WithSinks(sinks ...storage.DocumentWriter) *Pipeline {
	p.sinks = append(p.sinks, sinks...)
	return p
}

// WithProgress sets the factory for the per-area progress indicator.
func (p *Pipeline) WithProgress(fn func(total int) Progress) *Pipeline {
	p.newProgress = fn
	return p
}

// WithReport prints the coverage report to w after a successful run.
func (p *Pipeline) WithReport(w io.Writer) *Pipeline {
	p.reportOut = w
	return p
}

// Run executes the collection. A ConfigurationError or ErrRemoteUnavailable
// is returned before anything is written; an empty result is not an error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	year := p.cfg.TargetYear

	p.logger.Info("[mapping] Reading mapping CSV: %s", p.cfg.MappingCSVPath)
	mappings, err := LoadAreaMappings(p.cfg.MappingCSVPath, p.logger)
	if err != nil {
		return nil, err
	}
	p.logger.Info("[mapping] Loaded %d mappings from CSV", len(mappings))

	p.logger.Info("[unsdg] Fetching geo areas ...")
	areas, err := p.api.GeoAreas(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", apperr.ErrRemoteUnavailable, err)
	}
	if len(areas) == 0 {
		return nil, fmt.Errorf("%w: listing is empty", apperr.ErrRemoteUnavailable)
	}
	p.logger.Info("[unsdg] Using all %d geo areas from API", len(areas))

	NewReconciler(p.logger).Reconcile(areas, mappings)

	p.logger.Info("[collector] Fetching SDG series per country for %d ...", year)
	var progress Progress
	if p.newProgress != nil {
		progress = p.newProgress(len(areas))
	}
	doc := models.NewOutputDocument()
	stats, err := NewCollector(p.api, p.logger).Run(ctx, areas, mappings, year, doc, progress)
	if err != nil {
		return nil, fmt.Errorf("collection interrupted: %w", err)
	}

	if err := p.output.Write(doc, year); err != nil {
		return nil, err
	}
	p.logger.Info("[writer] Done! %d countries saved to %s", doc.Len(), p.output.Path())
	if doc.Len() == 0 {
		p.logger.Warn("[writer] No data found, some series have limited coverage; try TARGET_YEAR = %d or %d", year-1, year+1)
	}

	for _, sink := range p.sinks {
		if err := sink.Write(doc, year); err != nil {
			p.logger.Error("[writer] Secondary sink failed: %v", err)
		}
	}

	cov := NewCoverageService(p.logger)
	report := cov.Generate(doc, year, stats)
	if p.reportOut != nil {
		cov.Print(p.reportOut, report)
	}

	return &Result{Document: doc, Stats: stats, Report: report}, nil
}
