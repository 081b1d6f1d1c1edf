package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"airbnb-price-analyzer/models"
	"airbnb-price-analyzer/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes the cross-city summary. The overall quartiles treat
// every listing of a city as priced at that city's average.
func (s *InsightService) Generate(result models.AnalysisResult) *models.InsightReport {
	report := &models.InsightReport{}

	var sumAvg, sumMedian float64
	var weighted []float64
	for _, c := range result.Cities {
		if c.AveragePrice == nil {
			continue
		}
		report.SuccessfulCities = append(report.SuccessfulCities, c)
		sumAvg += *c.AveragePrice
		if c.Median != nil {
			sumMedian += *c.Median
		}
		for i := 0; i < c.ListingsFound; i++ {
			weighted = append(weighted, *c.AveragePrice)
		}
	}

	if n := len(report.SuccessfulCities); n > 0 {
		report.OverallAveragePrice = math.Round(sumAvg / float64(n))
		report.OverallMedian = math.Round(sumMedian / float64(n))
	}
	if len(weighted) > 0 {
		sort.Float64s(weighted)
		report.OverallQ1 = weighted[int(math.Floor(0.25*float64(len(weighted))))]
		report.OverallQ3 = weighted[int(math.Floor(0.75*float64(len(weighted))))]
		report.OverallIQR = report.OverallQ3 - report.OverallQ1
	}

	var sumMonthly float64
	for _, c := range result.Cities {
		if c.AverageMonthlyPrice == nil {
			continue
		}
		report.MonthlyCities = append(report.MonthlyCities, c)
		sumMonthly += *c.AverageMonthlyPrice
		report.TotalExplicitListings += c.MonthlyListingsFound
		report.TotalCalculatedListings += c.CalculatedMonthlyListings

		switch {
		case c.HasExplicitPrices && c.HasCalculatedPrices:
			report.MixedCities = append(report.MixedCities, c.City)
		case c.HasExplicitPrices:
			report.ExplicitOnlyCities = append(report.ExplicitOnlyCities, c.City)
		case c.HasCalculatedPrices:
			report.CalculatedOnlyCities = append(report.CalculatedOnlyCities, c.City)
		}
	}
	if n := len(report.MonthlyCities); n > 0 {
		report.OverallAverageMonthlyPrice = math.Round(sumMonthly / float64(n))
	}

	s.logger.Debug("[insights] %d successful cities, %d with monthly data",
		len(report.SuccessfulCities), len(report.MonthlyCities))
	return report
}

// Document builds the export document for result.
func (s *InsightService) Document(result models.AnalysisResult, r *models.InsightReport, now time.Time) models.Report {
	doc := models.Report{
		Timestamp: now,
		Summary:   result.Summary,
		Cities:    result.Cities,
	}
	if len(r.SuccessfulCities) > 0 {
		doc.Averages.OverallAveragePrice = models.Float(r.OverallAveragePrice)
	}
	if len(r.MonthlyCities) > 0 {
		doc.Averages.OverallAverageMonthlyPrice = models.Float(r.OverallAverageMonthlyPrice)
	}
	return doc
}

func (s *InsightService) Print(w io.Writer, result models.AnalysisResult, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 AIRBNB PRICE ANALYSIS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total cities analyzed  : \033[1m%d\033[0m\n", result.Summary.TotalCities)
	fmt.Fprintf(w, "  Successful extractions : \033[1m%d\033[0m\n", result.Summary.SuccessfulCities)
	fmt.Fprintf(w, "  Failed extractions     : \033[1m%d\033[0m\n", result.Summary.FailedCities)
	fmt.Fprintln(w)

	for _, c := range result.Cities {
		printCity(w, c, thin)
	}

	if len(r.SuccessfulCities) > 0 {
		fmt.Fprintf(w, "\033[1;33m  Nightly Rates Summary\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  Average across all cities : \033[1;32m$%s/night\033[0m\n", money(r.OverallAveragePrice))
		fmt.Fprintf(w, "  Median across all cities  : \033[1;32m$%s/night\033[0m\n", money(r.OverallMedian))
		fmt.Fprintf(w, "  Q1 / Q3 / IQR             : $%s / $%s / $%s\n",
			money(r.OverallQ1), money(r.OverallQ3), money(r.OverallIQR))
		fmt.Fprintln(w)
	}

	if len(r.MonthlyCities) > 0 {
		fmt.Fprintf(w, "\033[1;33m  Monthly Rates Summary\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  Average across cities with monthly data : \033[1;32m$%s/month\033[0m\n",
			money(r.OverallAverageMonthlyPrice))
		if len(r.ExplicitOnlyCities) > 0 {
			fmt.Fprintf(w, "  Explicit monthly pricing only : %s\n", strings.Join(r.ExplicitOnlyCities, ", "))
		}
		if len(r.CalculatedOnlyCities) > 0 {
			fmt.Fprintf(w, "  Calculated only (20%% discount) : %s\n", strings.Join(r.CalculatedOnlyCities, ", "))
		}
		if len(r.MixedCities) > 0 {
			fmt.Fprintf(w, "  Mixed (explicit + calculated)  : %s\n", strings.Join(r.MixedCities, ", "))
		}
		fmt.Fprintf(w, "  Total monthly listings analyzed : %d (%d explicit + %d calculated)\n",
			r.TotalExplicitListings+r.TotalCalculatedListings, r.TotalExplicitListings, r.TotalCalculatedListings)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func printCity(w io.Writer, c models.CityStats, thin string) {
	fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", truncate(c.City, 50))
	fmt.Fprintf(w, "  %s\n", thin)
	if c.Failed() {
		fmt.Fprintf(w, "  \033[1;31m%s\033[0m\n\n", *c.Error)
		return
	}

	fmt.Fprintf(w, "  Average  : \033[1;32m$%s/night\033[0m\n", money(*c.AveragePrice))
	fmt.Fprintf(w, "  Median   : $%s/night\n", money(*c.Median))
	fmt.Fprintf(w, "  Range    : $%s - $%s\n", money(*c.MinPrice), money(*c.MaxPrice))
	fmt.Fprintf(w, "  Q1 / Q3  : $%s / $%s (IQR $%s)\n", money(*c.Q1), money(*c.Q3), money(*c.IQR))
	fmt.Fprintf(w, "  Typical  : $%s - $%s/night\n", money(*c.LowerBoundary), money(*c.UpperBoundary))
	fmt.Fprintf(w, "  Listings : %d of %d\n", c.ListingsFound, c.TotalListings)

	if tc := c.TotalCost; tc != nil {
		fmt.Fprintf(w, "  Stay (%d nights) : avg \033[1m$%s\033[0m, range $%s - $%s\n",
			tc.Nights, money(tc.Average), money(tc.Min), money(tc.Max))
	}

	if c.AverageMonthlyPrice == nil {
		fmt.Fprintf(w, "  Monthly  : not available\n\n")
		return
	}
	fmt.Fprintf(w, "  Monthly  : $%s/month, range $%s - $%s\n",
		money(*c.AverageMonthlyPrice), money(*c.MinMonthlyPrice), money(*c.MaxMonthlyPrice))
	switch {
	case c.HasExplicitPrices && c.HasCalculatedPrices:
		fmt.Fprintf(w, "             %d explicit + %d calculated (20%% discount)\n",
			c.MonthlyListingsFound, c.CalculatedMonthlyListings)
	case c.HasExplicitPrices:
		fmt.Fprintf(w, "             %d explicit monthly prices\n", c.MonthlyListingsFound)
	default:
		fmt.Fprintf(w, "             calculated from nightly rates (30 days, 20%% discount)\n")
	}
	fmt.Fprintln(w)
}

// money renders whole amounts without decimals.
func money(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%.2f", f)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
