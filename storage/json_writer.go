package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"sdg-collector/models"
)

// JSONWriter persists the output document as indented JSON.
// The file is only created when Write is called.
type JSONWriter struct {
	path string
}

// NewJSONWriter returns a writer targeting path.
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

// Path returns the destination file.
func (w *JSONWriter) Path() string { return w.path }

// Write replaces the file with doc. Intermediate directories are created
// automatically. Non-ASCII text is written as UTF-8, not escaped.
func (w *JSONWriter) Write(doc *models.OutputDocument, _ int) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("json: create output dir: %w", err)
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("json: create file %q: %w", w.path, err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		_ = f.Close()
		return fmt.Errorf("json: encode document: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("json: close file: %w", err)
	}
	return nil
}

// Close is a no-op; every Write opens and closes its own file.
func (w *JSONWriter) Close() error { return nil }

// ReadJSON loads a document written by JSONWriter.
func ReadJSON(path string) (*models.OutputDocument, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("json: read %q: %w", path, err)
	}
	doc := models.NewOutputDocument()
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, fmt.Errorf("json: decode %q: %w", path, err)
	}
	return doc, nil
}
