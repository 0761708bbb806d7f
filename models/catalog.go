package models

import (
	"sort"
	"strconv"
	"strings"
)

// IndicatorSeries ties a catalog key ("1".."17") to a remote series code.
type IndicatorSeries struct {
	Key        string
	SeriesCode string
}

// Label is the name used in the output document, e.g. "SDG4".
func (s IndicatorSeries) Label() string { return "SDG" + s.Key }

// One representative series per goal.
var catalog = []IndicatorSeries{
	{"1", "SI_COV_BENFTS"},
	{"2", "AG_LND_SUST_PRXTS"},
	{"3", "SH_ACS_UNHC"},
	{"4", "SE_TOT_CPLR"},
	{"5", "SG_GEN_PARL"},
	{"6", "SH_SAN_HNDWSH"},
	{"7", "EG_ACS_ELEC"},
	{"8", "FB_BNK_ACCSS"},
	{"9", "SL_TLF_MANF"},
	{"10", "SL_EMP_GTOTL"},
	{"11", "SP_TRN_PUBL"},
	{"12", "EN_MWT_RCYR"},
	{"13", "SG_DSR_SILS"},
	{"14", "ER_H2O_FWTL"},
	{"15", "AG_LND_FRST"},
	{"16", "VC_SNS_WALN_DRK"},
	{"17", "GR_G14_GDP"},
}

// Catalog returns the tracked indicators in key order.
func Catalog() []IndicatorSeries {
	out := make([]IndicatorSeries, len(catalog))
	copy(out, catalog)
	return out
}

// SeriesFor returns the catalog entry whose label is label.
func SeriesFor(label string) (IndicatorSeries, bool) {
	for _, s := range catalog {
		if s.Label() == label {
			return s, true
		}
	}
	return IndicatorSeries{}, false
}

// SortLabels orders indicator labels by goal number ("SDG2" before "SDG10").
// Labels without a numeric suffix sort last, alphabetically.
func SortLabels(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		ni, okI := labelNumber(labels[i])
		nj, okJ := labelNumber(labels[j])
		switch {
		case okI && okJ:
			return ni < nj
		case okI != okJ:
			return okI
		default:
			return labels[i] < labels[j]
		}
	})
}

func labelNumber(label string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(label, "SDG"))
	if err != nil || !strings.HasPrefix(label, "SDG") {
		return 0, false
	}
	return n, true
}

func sortStrings(s []string) { sort.Strings(s) }
