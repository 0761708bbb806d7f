package services

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"sdg-collector/models"
	"sdg-collector/utils"
)

// Cleaner turns raw reference rows into validated AreaMappings.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// CleanMappings keeps rows whose code is an integer and whose ISO3 code is
// exactly three characters after trimming. A later row with the same code
// replaces the earlier one.
func (c *Cleaner) CleanMappings(raw []models.RawMappingRow) models.AreaMappings {
	result := make(models.AreaMappings, len(raw))
	dropped := 0

	for _, r := range raw {
		code, err := strconv.Atoi(strings.TrimSpace(r.Code))
		if err != nil {
			c.logger.Debug("[cleaner] Line %d: code %q is not an integer, skipped", r.Line, r.Code)
			dropped++
			continue
		}

		iso3 := strings.TrimSpace(r.ISO3)
		if utf8.RuneCountInString(iso3) != 3 {
			c.logger.Debug("[cleaner] Line %d: ISO3 %q is not three characters, skipped", r.Line, r.ISO3)
			dropped++
			continue
		}

		if prev, dup := result[code]; dup {
			c.logger.Debug("[cleaner] Line %d: code %d overrides %s with %s", r.Line, code, prev.ISO3, iso3)
		}
		result[code] = models.AreaMapping{
			Code: code,
			ISO3: iso3,
			Name: strings.TrimSpace(r.Name),
		}
	}

	c.logger.Debug("[cleaner] Cleaned %d → %d mapping rows (dropped %d)", len(raw), len(result), dropped)
	return result
}
