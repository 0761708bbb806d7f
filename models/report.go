package models

// IndicatorCoverage summarises one catalog series over the collected areas.
type IndicatorCoverage struct {
	Series  IndicatorSeries
	Areas   int
	Min     float64
	Max     float64
	Average float64
}

// CoverageReport holds the per-run statistics printed after collection.
type CoverageReport struct {
	Year          int
	RemoteAreas   int
	EligibleAreas int
	AreasWithData int
	Indicators    []IndicatorCoverage
}
