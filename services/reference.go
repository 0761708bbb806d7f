package services

import (
	"sdg-collector/apperr"
	"sdg-collector/models"
	"sdg-collector/storage"
	"sdg-collector/utils"
)

// LoadAreaMappings reads and cleans the reference file at path.
// Zero usable rows is a ConfigurationError: it almost always means the
// header or delimiter is not what the reader expects.
func LoadAreaMappings(path string, logger *utils.Logger) (models.AreaMappings, error) {
	rows, err := storage.ReadMappingRows(path)
	if err != nil {
		return nil, err
	}

	mappings := NewCleaner(logger).CleanMappings(rows)
	if len(mappings) == 0 {
		return nil, apperr.Configf(path, "no mappings loaded, check CSV header and delimiter")
	}
	return mappings, nil
}
