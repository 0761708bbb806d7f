package storage

import "sdg-collector/models"

// DocumentWriter is the interface any output sink must satisfy.
type DocumentWriter interface {
	Write(doc *models.OutputDocument, year int) error
	Close() error
}
