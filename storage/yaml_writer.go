package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"airbnb-price-analyzer/models"
)

// YAMLWriter writes the full report as YAML.
type YAMLWriter struct {
	path string
}

func NewYAMLWriter(path string) *YAMLWriter {
	return &YAMLWriter{path: path}
}

func (y *YAMLWriter) Paths() []string { return []string{y.path} }

func (y *YAMLWriter) Write(report models.Report) error {
	if err := os.MkdirAll(filepath.Dir(y.path), 0755); err != nil {
		return fmt.Errorf("yaml: create output dir: %w", err)
	}
	f, err := os.Create(y.path)
	if err != nil {
		return fmt.Errorf("yaml: create file %q: %w", y.path, err)
	}
	if err := EncodeYAML(f, report); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// EncodeYAML writes report to w with two-space indentation.
func EncodeYAML(w io.Writer, report models.Report) error {
	bw := bufio.NewWriter(w)
	encoder := yaml.NewEncoder(bw)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("yaml: encode report: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	return bw.Flush()
}
