package models

import "time"

// TotalCost projects the nightly statistics onto a specific stay length.
type TotalCost struct {
	Average float64 `json:"average" yaml:"average"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Nights  int     `json:"nights" yaml:"nights"`
}

// CityStats is the aggregation result for one city. Error is set exactly
// when AveragePrice is nil.
type CityStats struct {
	City string `json:"city" yaml:"city"`

	AveragePrice  *float64 `json:"averagePrice" yaml:"averagePrice"`
	MinPrice      *float64 `json:"minPrice" yaml:"minPrice"`
	MaxPrice      *float64 `json:"maxPrice" yaml:"maxPrice"`
	Median        *float64 `json:"median" yaml:"median"`
	Q1            *float64 `json:"q1" yaml:"q1"`
	Q3            *float64 `json:"q3" yaml:"q3"`
	IQR           *float64 `json:"iqr" yaml:"iqr"`
	LowerBoundary *float64 `json:"lowerBoundary" yaml:"lowerBoundary"`
	UpperBoundary *float64 `json:"upperBoundary" yaml:"upperBoundary"`
	ListingsFound int      `json:"listingsFound" yaml:"listingsFound"`
	TotalListings int      `json:"totalListings" yaml:"totalListings"`

	AverageMonthlyPrice       *float64 `json:"averageMonthlyPrice" yaml:"averageMonthlyPrice"`
	MinMonthlyPrice           *float64 `json:"minMonthlyPrice" yaml:"minMonthlyPrice"`
	MaxMonthlyPrice           *float64 `json:"maxMonthlyPrice" yaml:"maxMonthlyPrice"`
	MonthlyListingsFound      int      `json:"monthlyListingsFound" yaml:"monthlyListingsFound"`
	CalculatedMonthlyListings int      `json:"calculatedMonthlyListings" yaml:"calculatedMonthlyListings"`
	TotalMonthlyListings      int      `json:"totalMonthlyListings" yaml:"totalMonthlyListings"`
	HasExplicitPrices         bool     `json:"hasExplicitPrices" yaml:"hasExplicitPrices"`
	HasCalculatedPrices       bool     `json:"hasCalculatedPrices" yaml:"hasCalculatedPrices"`

	TotalCost *TotalCost `json:"totalCost" yaml:"totalCost"`
	Error     *string    `json:"error" yaml:"error"`
}

// Failed reports whether the city produced no usable nightly statistics.
func (s CityStats) Failed() bool { return s.Error != nil }

// FailedCity builds the stats record for a city that could not be processed.
func FailedCity(city, msg string) CityStats {
	return CityStats{City: city, Error: &msg}
}

// Summary counts the outcome of a run.
type Summary struct {
	TotalCities      int `json:"totalCities" yaml:"totalCities"`
	SuccessfulCities int `json:"successfulCities" yaml:"successfulCities"`
	FailedCities     int `json:"failedCities" yaml:"failedCities"`
}

// AnalysisResult is the outcome of one orchestration run, in input order.
type AnalysisResult struct {
	Cities  []CityStats `json:"cities" yaml:"cities"`
	Summary Summary     `json:"summary" yaml:"summary"`
}

// Summarize derives the summary counts from cities.
func Summarize(cities []CityStats) Summary {
	s := Summary{TotalCities: len(cities)}
	for _, c := range cities {
		if c.Failed() {
			s.FailedCities++
		} else {
			s.SuccessfulCities++
		}
	}
	return s
}

// Averages are the cross-city figures carried in file exports.
type Averages struct {
	OverallAveragePrice        *float64 `json:"overallAveragePrice" yaml:"overallAveragePrice"`
	OverallAverageMonthlyPrice *float64 `json:"overallAverageMonthlyPrice" yaml:"overallAverageMonthlyPrice"`
}

// Report is the document written by the JSON and YAML exporters.
type Report struct {
	Timestamp time.Time   `json:"timestamp" yaml:"timestamp"`
	Summary   Summary     `json:"summary" yaml:"summary"`
	Cities    []CityStats `json:"cities" yaml:"cities"`
	Averages  Averages    `json:"averages" yaml:"averages"`
}

// InsightReport holds the cross-city analytics shown after a run.
type InsightReport struct {
	SuccessfulCities []CityStats

	OverallAveragePrice float64
	OverallMedian       float64
	OverallQ1           float64
	OverallQ3           float64
	OverallIQR          float64

	MonthlyCities              []CityStats
	OverallAverageMonthlyPrice float64
	ExplicitOnlyCities         []string
	CalculatedOnlyCities       []string
	MixedCities                []string
	TotalExplicitListings      int
	TotalCalculatedListings    int
}
