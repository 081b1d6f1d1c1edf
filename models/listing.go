package models

// RawListing holds the unprocessed text of one search-result card as handed
// over by the automation provider. It is discarded once parsed.
type RawListing struct {
	// Title is the structured title field when the provider found one.
	Title   string
	RawText string
	Link    string
}

// ParsedListing is a normalized listing with its extracted prices.
// A nil price means "not found", never zero.
type ParsedListing struct {
	Title         string   `json:"title" yaml:"title"`
	PricePerNight *float64 `json:"pricePerNight" yaml:"pricePerNight"`
	PricePerMonth *float64 `json:"pricePerMonth" yaml:"pricePerMonth"`
	Link          string   `json:"link" yaml:"link"`
}

// ParseContext carries what the price parser may know about the stay
// besides the card text itself.
type ParseContext struct {
	StayNights int
	URL        string
}

// ParsedPrice is the output of the price parser for a single card.
type ParsedPrice struct {
	PricePerNight *float64
	PricePerMonth *float64
	// NightlyRule names the rule that produced PricePerNight, empty if none did.
	NightlyRule string
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
