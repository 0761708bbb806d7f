package services

import (
	"fmt"
	"io"
	"math"
	"strings"

	"sdg-collector/models"
	"sdg-collector/utils"
)

type CoverageService struct {
	logger *utils.Logger
}

func NewCoverageService(logger *utils.Logger) *CoverageService {
	return &CoverageService{logger: logger}
}

func (s *CoverageService) Generate(doc *models.OutputDocument, year int, stats RunStats) *models.CoverageReport {
	report := &models.CoverageReport{
		Year:          year,
		RemoteAreas:   stats.RemoteAreas,
		EligibleAreas: stats.Eligible,
		AreasWithData: doc.Len(),
	}

	for _, series := range models.Catalog() {
		cov := models.IndicatorCoverage{Series: series}
		var total float64

		for _, area := range doc.Areas() {
			v, ok := area.Values(year)[series.Label()]
			if !ok {
				continue
			}
			if cov.Areas == 0 || v < cov.Min {
				cov.Min = v
			}
			if cov.Areas == 0 || v > cov.Max {
				cov.Max = v
			}
			total += v
			cov.Areas++
		}

		if cov.Areas > 0 {
			cov.Average = round2(total / float64(cov.Areas))
			cov.Min = round2(cov.Min)
			cov.Max = round2(cov.Max)
		}
		report.Indicators = append(report.Indicators, cov)
	}

	return report
}

func (s *CoverageService) Print(w io.Writer, r *models.CoverageReport) {
	sep := strings.Repeat("═", 64)
	thin := strings.Repeat("─", 64)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  SDG COVERAGE — %d\033[0m\n", r.Year)
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Areas\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Returned by API   : \033[1m%d\033[0m\n", r.RemoteAreas)
	fmt.Fprintf(w, "  Mapped to ISO3    : \033[1m%d\033[0m\n", r.EligibleAreas)
	fmt.Fprintf(w, "  With any value    : \033[1m%d\033[0m\n", r.AreasWithData)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Indicators\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.AreasWithData == 0 {
		fmt.Fprintf(w, "  No indicator values collected\n")
	} else {
		for _, c := range r.Indicators {
			if c.Areas == 0 {
				fmt.Fprintf(w, "  %-6s %-18s %4d areas\n", c.Series.Label(), c.Series.SeriesCode, 0)
				continue
			}
			fmt.Fprintf(w, "  %-6s %-18s %4d areas  min %-10.2f max %-10.2f avg %.2f\n",
				c.Series.Label(), c.Series.SeriesCode, c.Areas, c.Min, c.Max, c.Average)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
