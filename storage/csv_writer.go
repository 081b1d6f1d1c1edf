package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"airbnb-price-analyzer/models"
)

var csvHeader = []string{
	"City", "Average Nightly Price", "Median", "Min Nightly", "Max Nightly",
	"Q1", "Q3", "IQR", "Lower Boundary", "Upper Boundary",
	"Average Monthly Price", "Min Monthly", "Max Monthly",
	"Nightly Listings Found", "Monthly Listings Found",
	"Total Cost Average", "Total Cost Range", "Nights", "Status",
}

// CSVWriter writes one row per city.
type CSVWriter struct {
	path string
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

func (c *CSVWriter) Paths() []string { return []string{c.path} }

// Write creates (or truncates) the CSV file. Intermediate directories are
// created automatically.
func (c *CSVWriter) Write(report models.Report) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}
	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", c.path, err)
	}
	if err := EncodeCSV(f, report.Cities); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// EncodeCSV writes the header and city rows to w.
func EncodeCSV(w io.Writer, cities []models.CityStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, c := range cities {
		if err := cw.Write(csvRow(c)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(c models.CityStats) []string {
	status := "Success"
	if c.Failed() {
		status = "Failed"
	}
	costAvg, costRange, nights := "N/A", "N/A", "N/A"
	if tc := c.TotalCost; tc != nil {
		costAvg = num(tc.Average)
		costRange = num(tc.Min) + "-" + num(tc.Max)
		nights = strconv.Itoa(tc.Nights)
	}
	return []string{
		c.City,
		optional(c.AveragePrice), optional(c.Median),
		optional(c.MinPrice), optional(c.MaxPrice),
		optional(c.Q1), optional(c.Q3), optional(c.IQR),
		optional(c.LowerBoundary), optional(c.UpperBoundary),
		optional(c.AverageMonthlyPrice), optional(c.MinMonthlyPrice), optional(c.MaxMonthlyPrice),
		strconv.Itoa(c.ListingsFound), strconv.Itoa(c.MonthlyListingsFound),
		costAvg, costRange, nights,
		status,
	}
}

func optional(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return num(*v)
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
