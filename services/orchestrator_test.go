package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"airbnb-price-analyzer/config"
	"airbnb-price-analyzer/models"
	"airbnb-price-analyzer/progress"
	"airbnb-price-analyzer/scraper"
)

// fakeProvider serves canned cards per city and records session lifecycles.
type fakeProvider struct {
	mu       sync.Mutex
	cards    map[string][]models.RawListing
	failures map[string]error
	panics   map[string]bool
	openErr  error
	opened   int
	closed   int
	ranges   map[string]models.DateRange
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		cards:    map[string][]models.RawListing{},
		failures: map[string]error{},
		panics:   map[string]bool{},
		ranges:   map[string]models.DateRange{},
	}
}

func (f *fakeProvider) OpenSession(context.Context) (scraper.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened++
	return &fakeSession{p: f}, nil
}

type fakeSession struct{ p *fakeProvider }

func (s *fakeSession) Search(_ context.Context, city string, dr models.DateRange) ([]models.RawListing, error) {
	s.p.mu.Lock()
	s.p.ranges[city] = dr
	cards, err, boom := s.p.cards[city], s.p.failures[city], s.p.panics[city]
	s.p.mu.Unlock()
	if boom {
		panic("browser crashed")
	}
	return cards, err
}

func (s *fakeSession) Close() error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	s.p.closed++
	return nil
}

func cards(texts ...string) []models.RawListing {
	out := make([]models.RawListing, 0, len(texts))
	for _, t := range texts {
		out = append(out, models.RawListing{RawText: t})
	}
	return out
}

func newTestOrchestrator(p scraper.Provider, delay time.Duration) *Orchestrator {
	logger := newTestLogger()
	extractor := NewExtractor(NewPriceParser(config.DefaultPriceBounds(), logger), 10, logger)
	return NewOrchestrator(p, extractor, NewAggregator(logger, fixedNow),
		OrchestratorOptions{CityDelay: delay, Now: fixedNow}, logger)
}

func TestRunIsolatesFailingCities(t *testing.T) {
	p := newFakeProvider()
	p.cards["Lisbon"] = cards("€100 per night", "€200 per night", "€150 per night")
	p.failures["Porto"] = errors.New("navigation timeout")
	p.panics["Faro"] = true
	p.cards["Braga"] = cards("nothing here", "still nothing")

	dc := mustSpecific(t, "2025-06-01", "2025-06-08")
	rec := &progress.Recorder{}
	res := newTestOrchestrator(p, 0).Run(context.Background(),
		[]string{"Lisbon", "Porto", "Faro", "Braga", "Evora"}, models.SameDates(dc), rec)

	if len(res.Cities) != 5 {
		t.Fatalf("cities: got %d, want 5", len(res.Cities))
	}
	wantOrder := []string{"Lisbon", "Porto", "Faro", "Braga", "Evora"}
	for i, c := range res.Cities {
		if c.City != wantOrder[i] {
			t.Errorf("city %d: got %q, want %q", i, c.City, wantOrder[i])
		}
	}

	lisbon := res.Cities[0]
	if lisbon.Error != nil || *lisbon.AveragePrice != 150 || lisbon.TotalCost.Average != 1050 {
		t.Errorf("Lisbon stats unexpected: %+v", lisbon)
	}
	if got := *res.Cities[1].Error; !strings.Contains(got, "navigation timeout") {
		t.Errorf("Porto error: got %q", got)
	}
	if got := *res.Cities[2].Error; !strings.Contains(got, "browser crashed") {
		t.Errorf("Faro error: got %q", got)
	}
	if got := *res.Cities[3].Error; got != "No valid prices found" {
		t.Errorf("Braga error: got %q", got)
	}
	if got := *res.Cities[4].Error; got != "No listings found" {
		t.Errorf("Evora error: got %q", got)
	}

	want := models.Summary{TotalCities: 5, SuccessfulCities: 1, FailedCities: 4}
	if res.Summary != want {
		t.Errorf("summary: got %+v, want %+v", res.Summary, want)
	}
	if p.opened != 5 || p.closed != 5 {
		t.Errorf("sessions: opened %d closed %d, want 5/5", p.opened, p.closed)
	}

	msgs := strings.Join(rec.Messages(), "\n")
	for _, want := range []string{
		"Processing Lisbon (1/5)",
		"Lisbon: Found 3 prices, Average: $150/night",
		"Porto: navigation timeout",
		"Braga: No valid prices found",
		"Evora: No listings found",
	} {
		if !strings.Contains(msgs, want) {
			t.Errorf("progress missing %q in:\n%s", want, msgs)
		}
	}
}

func TestRunReportsDelayBetweenCities(t *testing.T) {
	p := newFakeProvider()
	p.cards["A"] = cards("€80 per night")
	p.cards["B"] = cards("€90 per night")

	rec := &progress.Recorder{}
	start := time.Now()
	newTestOrchestrator(p, 20*time.Millisecond).Run(context.Background(),
		[]string{"A", "B", "C"}, models.SameDates(mustMonth(t, 6)), rec)

	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("run took %v, want at least two 20ms pauses", elapsed)
	}

	var waits int
	var order []string
	for _, m := range rec.Messages() {
		if strings.HasPrefix(m, "Waiting ") {
			waits++
		}
		if strings.HasPrefix(m, "==== Processing") || strings.HasPrefix(m, "Waiting") {
			order = append(order, m)
		}
	}
	if waits != 2 {
		t.Errorf("wait messages: got %d, want 2", waits)
	}
	if len(order) != 5 || !strings.HasPrefix(order[1], "Waiting 0.02 seconds") {
		t.Errorf("unexpected message order: %v", order)
	}
}

func TestRunDateConfigs(t *testing.T) {
	p := newFakeProvider()
	june := mustSpecific(t, "2025-06-01", "2025-06-04")
	july := mustMonth(t, 7)

	res := newTestOrchestrator(p, 0).Run(context.Background(), []string{"Lisbon", "Porto", "Faro"},
		models.DatesByCity(map[string]models.DateConfig{"Lisbon": june, "Porto": july}), nil)

	if p.ranges["Lisbon"].Nights != 3 {
		t.Errorf("Lisbon nights: got %d, want 3", p.ranges["Lisbon"].Nights)
	}
	if got := p.ranges["Porto"]; got.Nights != 31 || got.Checkin.Month() != time.July {
		t.Errorf("Porto range: got %+v, want July with 31 nights", got)
	}
	if res.Cities[2].Error == nil || !strings.Contains(*res.Cities[2].Error, "no date configuration") {
		t.Errorf("Faro should fail without dates, got %+v", res.Cities[2])
	}
	if _, searched := p.ranges["Faro"]; searched {
		t.Error("Faro should never reach the provider")
	}
}

func TestRunOpenSessionFailure(t *testing.T) {
	p := newFakeProvider()
	p.openErr = errors.New("chrome not found")

	res := newTestOrchestrator(p, 0).Run(context.Background(), []string{"Lisbon"},
		models.SameDates(mustMonth(t, 6)), nil)

	if got := *res.Cities[0].Error; got != "open session: chrome not found" {
		t.Errorf("error: got %q", got)
	}
	if res.Summary.FailedCities != 1 {
		t.Errorf("FailedCities: got %d, want 1", res.Summary.FailedCities)
	}
}

func TestRunCancelledContext(t *testing.T) {
	p := newFakeProvider()
	p.cards["Lisbon"] = cards("€80 per night")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestOrchestrator(p, 0).Run(ctx, []string{"Lisbon", "Porto"},
		models.SameDates(mustMonth(t, 6)), nil)

	if res.Summary.FailedCities != 2 {
		t.Errorf("FailedCities: got %d, want 2", res.Summary.FailedCities)
	}
	if p.opened != 0 {
		t.Errorf("no session should open after cancellation, opened %d", p.opened)
	}
}

func TestCityStateString(t *testing.T) {
	if StateAggregating.String() != "aggregating" || CityState(42).String() != "CityState(42)" {
		t.Errorf("unexpected CityState names")
	}
}
