package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"airbnb-price-analyzer/models"
)

// JSONWriter writes the full report as indented JSON.
type JSONWriter struct {
	path string
}

func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

func (j *JSONWriter) Paths() []string { return []string{j.path} }

func (j *JSONWriter) Write(report models.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("json: marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return fmt.Errorf("json: create output dir: %w", err)
	}
	if err := os.WriteFile(j.path, data, 0644); err != nil {
		return fmt.Errorf("json: write %q: %w", j.path, err)
	}
	return nil
}
