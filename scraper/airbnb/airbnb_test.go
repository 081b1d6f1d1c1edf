package airbnb

import (
	"errors"
	"testing"
	"time"

	"airbnb-price-analyzer/config"
	"airbnb-price-analyzer/models"
	"airbnb-price-analyzer/utils"
)

func TestSearchURL(t *testing.T) {
	dr := models.DateRange{
		Checkin:  time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		Checkout: time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC),
		Nights:   7,
	}
	tests := []struct {
		base, city, want string
	}{
		{"https://www.airbnb.com", "Lisbon",
			"https://www.airbnb.com/s/Lisbon/homes?checkin=2025-06-01&checkout=2025-06-08&adults=1&room_types%5B%5D=Entire%20home%2Fapt"},
		{"https://www.airbnb.com/", " São Paulo ",
			"https://www.airbnb.com/s/S%C3%A3o%20Paulo/homes?checkin=2025-06-01&checkout=2025-06-08&adults=1&room_types%5B%5D=Entire%20home%2Fapt"},
	}
	for _, tt := range tests {
		if got := SearchURL(tt.base, tt.city, dr); got != tt.want {
			t.Errorf("SearchURL(%q):\n got %s\nwant %s", tt.city, got, tt.want)
		}
	}
}

const containerPage = `<html><body>
<div data-testid="card-container">
  <a href="/rooms/111?check_in=2025-06-01&amp;check_out=2025-06-08">
    <div data-testid="listing-card-title">Apartment in Lisbon</div>
  </a>
  <span>Loft · 1 bed</span>
  <span>€100 per night</span>
  <script>var tracking = 1;</script>
</div>
<div data-testid="card-container">
  <h3>Flat in Alfama</h3>
  <a href="https://www.airbnb.com/rooms/222">view</a>
  <span>€120</span>
</div>
<div data-testid="card-container">
  <a href="/rooms/111?check_in=2025-06-01&amp;check_out=2025-06-08">same listing again</a>
</div>
<div data-testid="card-container">
  <span>€95 night</span>
</div>
</body></html>`

func TestParseCardsContainers(t *testing.T) {
	cards, err := ParseCards(containerPage, "https://www.airbnb.com", 10)
	if err != nil {
		t.Fatalf("ParseCards: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("cards: got %d, want 3", len(cards))
	}

	first := cards[0]
	if first.Title != "Apartment in Lisbon" {
		t.Errorf("Title: got %q", first.Title)
	}
	if first.Link != "https://www.airbnb.com/rooms/111?check_in=2025-06-01&check_out=2025-06-08" {
		t.Errorf("Link: got %q", first.Link)
	}
	if want := "Apartment in Lisbon\nLoft · 1 bed\n€100 per night"; first.RawText != want {
		t.Errorf("RawText: got %q, want %q", first.RawText, want)
	}

	if cards[1].Title != "Flat in Alfama" || cards[1].Link != "https://www.airbnb.com/rooms/222" {
		t.Errorf("second card: got %+v", cards[1])
	}
	if cards[2].Link != "" || cards[2].RawText != "€95 night" {
		t.Errorf("linkless card: got %+v", cards[2])
	}
}

func TestParseCardsWidensTitles(t *testing.T) {
	page := `<html><body>
<section>
  <div><span data-testid="listing-card-title">Cabin</span></div>
  <div>Entire cabin with a long description · sleeps four · €90 night</div>
  <a href="/rooms/9">open</a>
</section>
</body></html>`

	cards, err := ParseCards(page, "https://www.airbnb.com", 10)
	if err != nil {
		t.Fatalf("ParseCards: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("cards: got %d, want 1", len(cards))
	}
	if cards[0].Title != "Cabin" || cards[0].Link != "https://www.airbnb.com/rooms/9" {
		t.Errorf("widened card: got %+v", cards[0])
	}
}

func TestParseCardsLimit(t *testing.T) {
	cards, err := ParseCards(containerPage, "https://www.airbnb.com", 1)
	if err != nil {
		t.Fatalf("ParseCards: %v", err)
	}
	if len(cards) != 1 {
		t.Errorf("cards: got %d, want 1", len(cards))
	}
}

func TestParseCardsEmptyPage(t *testing.T) {
	cards, err := ParseCards("<html><body><p>captcha</p></body></html>", "https://www.airbnb.com", 10)
	if err != nil || len(cards) != 0 {
		t.Errorf("got %d cards, err %v", len(cards), err)
	}
}

func TestNewProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	logger := utils.NewNopLogger()

	cfg.Fetcher = "static"
	p, err := NewProvider(cfg, logger)
	if err != nil {
		t.Fatalf("static: %v", err)
	}
	if _, ok := p.(*StaticProvider); !ok {
		t.Errorf("static: got %T", p)
	}

	cfg.Fetcher = "chrome"
	if p, _ := NewProvider(cfg, logger); p == nil {
		t.Error("chrome: got nil provider")
	}

	cfg.Fetcher = "lynx"
	if _, err := NewProvider(cfg, logger); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("lynx: got %v, want ErrInvalidConfig", err)
	}
}
