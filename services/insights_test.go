package services

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"airbnb-price-analyzer/models"
)

func okCity(name string, avg, median float64, found int) models.CityStats {
	f := models.Float
	return models.CityStats{
		City: name, AveragePrice: f(avg), Median: f(median),
		MinPrice: f(avg - 20), MaxPrice: f(avg + 20),
		Q1: f(avg - 10), Q3: f(avg + 10), IQR: f(20),
		LowerBoundary: f(avg - 20), UpperBoundary: f(avg + 20),
		ListingsFound: found, TotalListings: found,
	}
}

func withMonthly(c models.CityStats, avg float64, explicit, calculated int) models.CityStats {
	c.AverageMonthlyPrice = models.Float(avg)
	c.MinMonthlyPrice = models.Float(avg)
	c.MaxMonthlyPrice = models.Float(avg)
	c.MonthlyListingsFound = explicit
	c.CalculatedMonthlyListings = calculated
	c.TotalMonthlyListings = explicit + calculated
	c.HasExplicitPrices = explicit > 0
	c.HasCalculatedPrices = calculated > 0
	return c
}

func sampleResult() models.AnalysisResult {
	cities := []models.CityStats{
		withMonthly(okCity("Lisbon", 100, 90, 2), 2400, 1, 0),
		withMonthly(okCity("Porto", 200, 210, 2), 3600, 0, 2),
		models.FailedCity("Faro", "navigation timeout"),
		withMonthly(okCity("Braga", 300, 300, 1), 4000, 1, 1),
	}
	return models.AnalysisResult{Cities: cities, Summary: models.Summarize(cities)}
}

func TestInsightNightlySummary(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(sampleResult())

	if len(r.SuccessfulCities) != 3 {
		t.Fatalf("SuccessfulCities: got %d, want 3", len(r.SuccessfulCities))
	}
	tests := []struct {
		name      string
		got, want float64
	}{
		{"OverallAveragePrice", r.OverallAveragePrice, 200},
		{"OverallMedian", r.OverallMedian, 200},
		{"OverallQ1", r.OverallQ1, 100},
		{"OverallQ3", r.OverallQ3, 200},
		{"OverallIQR", r.OverallIQR, 100},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %.2f, want %.2f", tt.name, tt.got, tt.want)
		}
	}
}

func TestInsightMonthlyCategories(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(sampleResult())

	if r.OverallAverageMonthlyPrice != 3333 {
		t.Errorf("OverallAverageMonthlyPrice: got %.2f, want 3333", r.OverallAverageMonthlyPrice)
	}
	if !reflect.DeepEqual(r.ExplicitOnlyCities, []string{"Lisbon"}) {
		t.Errorf("ExplicitOnlyCities: got %v", r.ExplicitOnlyCities)
	}
	if !reflect.DeepEqual(r.CalculatedOnlyCities, []string{"Porto"}) {
		t.Errorf("CalculatedOnlyCities: got %v", r.CalculatedOnlyCities)
	}
	if !reflect.DeepEqual(r.MixedCities, []string{"Braga"}) {
		t.Errorf("MixedCities: got %v", r.MixedCities)
	}
	if r.TotalExplicitListings != 2 || r.TotalCalculatedListings != 3 {
		t.Errorf("listing totals: got %d explicit, %d calculated", r.TotalExplicitListings, r.TotalCalculatedListings)
	}
}

func TestInsightAllFailed(t *testing.T) {
	cities := []models.CityStats{models.FailedCity("Faro", "No listings found")}
	res := models.AnalysisResult{Cities: cities, Summary: models.Summarize(cities)}
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(res)

	if len(r.SuccessfulCities) != 0 || r.OverallAveragePrice != 0 {
		t.Errorf("expected empty report, got %+v", r)
	}
	doc := svc.Document(res, r, fixedNow())
	if doc.Averages.OverallAveragePrice != nil || doc.Averages.OverallAverageMonthlyPrice != nil {
		t.Errorf("averages should be null without data: %+v", doc.Averages)
	}
}

func TestInsightDocument(t *testing.T) {
	res := sampleResult()
	svc := NewInsightService(newTestLogger())
	doc := svc.Document(res, svc.Generate(res), fixedNow())

	if !doc.Timestamp.Equal(fixedNow()) {
		t.Errorf("Timestamp: got %v", doc.Timestamp)
	}
	if doc.Summary.FailedCities != 1 || len(doc.Cities) != 4 {
		t.Errorf("unexpected document: %+v", doc.Summary)
	}
	if got := doc.Averages.OverallAveragePrice; got == nil || *got != 200 {
		t.Errorf("OverallAveragePrice: got %v", fmtPrice(got))
	}
	if got := doc.Averages.OverallAverageMonthlyPrice; got == nil || *got != 3333 {
		t.Errorf("OverallAverageMonthlyPrice: got %v", fmtPrice(got))
	}
}

func TestInsightPrint(t *testing.T) {
	res := sampleResult()
	res.Cities[0].TotalCost = &models.TotalCost{Average: 700, Min: 560, Max: 840, Nights: 7}
	svc := NewInsightService(newTestLogger())

	var buf bytes.Buffer
	svc.Print(&buf, res, svc.Generate(res))
	out := buf.String()

	for _, want := range []string{
		"AIRBNB PRICE ANALYSIS",
		"navigation timeout",
		"Stay (7 nights)",
		"1 explicit + 1 calculated (20% discount)",
		"Mixed (explicit + calculated)  : Braga",
		"Total monthly listings analyzed : 5 (2 explicit + 3 calculated)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestMoneyAndTruncate(t *testing.T) {
	if got := money(150); got != "150" {
		t.Errorf("money(150): got %q", got)
	}
	if got := money(1050.5); got != "1050.50" {
		t.Errorf("money(1050.5): got %q", got)
	}
	if got := truncate("São Miguel dos Milagres", 10); got != "São Mig..." {
		t.Errorf("truncate: got %q", got)
	}
}
