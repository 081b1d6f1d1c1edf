package services

import (
	"math"
	"sort"
	"time"

	"airbnb-price-analyzer/models"
	"airbnb-price-analyzer/utils"
)

const (
	// MonthlyDays and LongStayDiscount derive a monthly price from a nightly one.
	MonthlyDays      = 30
	LongStayDiscount = 0.2

	fenceFactor = 1.5

	errNoListings    = "No listings found"
	errNoValidPrices = "No valid prices found"
)

// Aggregator computes a city's price statistics from its parsed listings.
type Aggregator struct {
	logger *utils.Logger
	now    func() time.Time
}

// NewAggregator creates an Aggregator. now resolves month-mode stays; nil means time.Now.
func NewAggregator(logger *utils.Logger, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{logger: logger, now: now}
}

// Aggregate never fails for data reasons: missing data shows up as nil
// fields and an Error message.
func (a *Aggregator) Aggregate(city string, listings []models.ParsedListing, dc models.DateConfig) models.CityStats {
	stats := models.CityStats{City: city, TotalListings: len(listings)}

	var nightly []float64
	for _, l := range listings {
		if l.PricePerNight != nil {
			nightly = append(nightly, *l.PricePerNight)
		}
	}

	if len(nightly) == 0 {
		msg := errNoValidPrices
		if len(listings) == 0 {
			msg = errNoListings
		}
		stats.Error = &msg
		a.logger.Debug("[aggregator] %s: %s", city, msg)
		return stats
	}

	sort.Float64s(nightly)
	n := len(nightly)
	minP, maxP := nightly[0], nightly[n-1]
	avg := math.Round(mean(nightly))
	q1 := nightly[int(math.Floor(0.25*float64(n)))]
	median := nightly[int(math.Floor(0.5*float64(n)))]
	q3 := nightly[int(math.Floor(0.75*float64(n)))]
	iqr := q3 - q1

	stats.ListingsFound = n
	stats.AveragePrice = models.Float(avg)
	stats.MinPrice = models.Float(minP)
	stats.MaxPrice = models.Float(maxP)
	stats.Median = models.Float(median)
	stats.Q1 = models.Float(q1)
	stats.Q3 = models.Float(q3)
	stats.IQR = models.Float(iqr)
	stats.LowerBoundary = models.Float(math.Max(minP, q1-fenceFactor*iqr))
	stats.UpperBoundary = models.Float(math.Min(maxP, q3+fenceFactor*iqr))

	a.blendMonthly(&stats, listings)

	if dc.Mode() == models.DateModeSpecific {
		nights := dc.Nights(a.now())
		stats.TotalCost = &models.TotalCost{
			Average: math.Round(avg * float64(nights)),
			Min:     math.Round(minP * float64(nights)),
			Max:     math.Round(maxP * float64(nights)),
			Nights:  nights,
		}
	}

	return stats
}

// blendMonthly prefers an explicit monthly price and otherwise derives one
// from the nightly price with the long-stay discount.
func (a *Aggregator) blendMonthly(stats *models.CityStats, listings []models.ParsedListing) {
	var monthly []float64
	for _, l := range listings {
		switch {
		case l.PricePerMonth != nil:
			monthly = append(monthly, *l.PricePerMonth)
			stats.MonthlyListingsFound++
		case l.PricePerNight != nil:
			monthly = append(monthly, CalculatedMonthly(*l.PricePerNight))
			stats.CalculatedMonthlyListings++
		}
	}

	stats.TotalMonthlyListings = len(monthly)
	stats.HasExplicitPrices = stats.MonthlyListingsFound > 0
	stats.HasCalculatedPrices = stats.CalculatedMonthlyListings > 0
	if len(monthly) == 0 {
		return
	}

	minM, maxM := monthly[0], monthly[0]
	for _, m := range monthly[1:] {
		minM = math.Min(minM, m)
		maxM = math.Max(maxM, m)
	}
	stats.AverageMonthlyPrice = models.Float(math.Round(mean(monthly)))
	stats.MinMonthlyPrice = models.Float(minM)
	stats.MaxMonthlyPrice = models.Float(maxM)
}

// CalculatedMonthly derives a monthly price from a nightly one.
func CalculatedMonthly(nightly float64) float64 {
	return math.Round(nightly * MonthlyDays * (1 - LongStayDiscount))
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
