package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"airbnb-price-analyzer/models"
)

// ErrUnknownFormat is returned by NewResultWriter for an unsupported format.
var ErrUnknownFormat = errors.New("storage: unknown output format")

// ResultWriter is the interface any export backend must satisfy.
type ResultWriter interface {
	Write(report models.Report) error
	// Paths lists the files the writer produces.
	Paths() []string
}

// NewResultWriter picks the exporter for format. "all" writes the JSON
// report at path and the CSV table next to it.
func NewResultWriter(format, path string) (ResultWriter, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONWriter(withExt(path, ".json")), nil
	case "csv":
		return NewCSVWriter(withExt(path, ".csv")), nil
	case "yaml", "yml":
		return NewYAMLWriter(withExt(path, ".yaml")), nil
	case "all", "":
		return multiWriter{NewJSONWriter(withExt(path, ".json")), NewCSVWriter(withExt(path, ".csv"))}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

type multiWriter []ResultWriter

func (m multiWriter) Write(report models.Report) error {
	var errs []error
	for _, w := range m {
		if err := w.Write(report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiWriter) Paths() []string {
	var out []string
	for _, w := range m {
		out = append(out, w.Paths()...)
	}
	return out
}

// withExt swaps any known export extension on path for ext.
func withExt(path, ext string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".csv", ".yaml", ".yml":
		path = strings.TrimSuffix(path, filepath.Ext(path))
	}
	return path + ext
}
