package services

import (
	"context"
	"fmt"
	"time"

	"airbnb-price-analyzer/models"
	"airbnb-price-analyzer/progress"
	"airbnb-price-analyzer/scraper"
	"airbnb-price-analyzer/utils"
)

// CityState is the processing stage of one city.
type CityState int

const (
	StatePending CityState = iota
	StateScraping
	StateExtracting
	StateAggregating
	StateDone
	StateFailed
)

func (s CityState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateScraping:
		return "scraping"
	case StateExtracting:
		return "extracting"
	case StateAggregating:
		return "aggregating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("CityState(%d)", int(s))
}

// OrchestratorOptions tunes a run. Concurrency below one means one city at
// a time; CityDelay is the pause before every city but the first.
type OrchestratorOptions struct {
	Concurrency int
	CityDelay   time.Duration
	Now         func() time.Time
}

// Orchestrator drives scraping, extraction and aggregation across cities.
type Orchestrator struct {
	provider    scraper.Provider
	extractor   *Extractor
	aggregator  *Aggregator
	logger      *utils.Logger
	concurrency int
	delay       time.Duration
	now         func() time.Time
}

// NewOrchestrator wires an Orchestrator.
func NewOrchestrator(provider scraper.Provider, extractor *Extractor, aggregator *Aggregator,
	opts OrchestratorOptions, logger *utils.Logger) *Orchestrator {
	o := &Orchestrator{
		provider:    provider,
		extractor:   extractor,
		aggregator:  aggregator,
		logger:      logger,
		concurrency: opts.Concurrency,
		delay:       opts.CityDelay,
		now:         opts.Now,
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Run processes every city and returns one CityStats per city in input
// order. A failing city is recorded and never aborts the others.
func (o *Orchestrator) Run(ctx context.Context, cities []string, dates models.DateConfigs, sink progress.Sink) models.AnalysisResult {
	if sink == nil {
		sink = progress.Discard
	}

	results := make([]models.CityStats, len(cities))
	pool := utils.NewWorkerPool(o.concurrency, o.delay)
	pool.OnWait(func(d time.Duration) {
		sink.Emit(fmt.Sprintf("Waiting %g seconds before next city...", d.Seconds()))
	})

	for i, city := range cities {
		pool.Submit(ctx, func(ctx context.Context) {
			results[i] = o.processCity(ctx, i, len(cities), city, dates, sink)
		})
	}
	pool.Wait()

	result := models.AnalysisResult{Cities: results, Summary: models.Summarize(results)}
	o.logger.Info("[orchestrator] Run complete: %d cities, %d successful, %d failed",
		result.Summary.TotalCities, result.Summary.SuccessfulCities, result.Summary.FailedCities)
	return result
}

func (o *Orchestrator) processCity(ctx context.Context, i, n int, city string, dates models.DateConfigs,
	sink progress.Sink) (stats models.CityStats) {
	sink.Emit(fmt.Sprintf("==== Processing %s (%d/%d) ====", city, i+1, n))
	state := StatePending

	advance := func(next CityState) {
		o.logger.Debug("[orchestrator] %s: %s -> %s", city, state, next)
		state = next
	}

	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Error("[orchestrator] %s: panic while %s: %v", city, state, rec)
			stats = models.FailedCity(city, fmt.Sprintf("unexpected failure while %s: %v", state, rec))
		}
		if stats.Failed() {
			advance(StateFailed)
			sink.Emit(fmt.Sprintf("%s: %s", city, *stats.Error))
			return
		}
		advance(StateDone)
		sink.Emit(fmt.Sprintf("%s: Found %d prices, Average: $%.0f/night", city, stats.ListingsFound, *stats.AveragePrice))
	}()

	if err := ctx.Err(); err != nil {
		return models.FailedCity(city, err.Error())
	}

	dc, ok := dates.For(i, city)
	if !ok {
		return models.FailedCity(city, "no date configuration for "+city)
	}
	dr := dc.Range(o.now())

	advance(StateScraping)
	sink.Emit(fmt.Sprintf("Searching listings for %s, %s...", city, dc.Describe(o.now())))
	raw, err := o.scrape(ctx, city, dr)
	if err != nil {
		o.logger.Warn("[orchestrator] %s: %v", city, err)
		return models.FailedCity(city, err.Error())
	}

	advance(StateExtracting)
	sink.Emit(fmt.Sprintf("Extracting %d listings from %s...", len(raw), city))
	listings := o.extractor.Extract(raw, models.ParseContext{StayNights: dr.Nights})

	advance(StateAggregating)
	sink.Emit(fmt.Sprintf("Analyzing %s data...", city))
	return o.aggregator.Aggregate(city, listings, dc)
}

// scrape owns the session for the duration of one search and always closes it.
func (o *Orchestrator) scrape(ctx context.Context, city string, dr models.DateRange) ([]models.RawListing, error) {
	session, err := o.provider.OpenSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			o.logger.Warn("[orchestrator] %s: closing session: %v", city, cerr)
		}
	}()

	return session.Search(ctx, city, dr)
}
