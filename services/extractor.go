package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"airbnb-price-analyzer/models"
	"airbnb-price-analyzer/utils"
)

const (
	// DefaultMaxListings bounds how many cards of a result page are parsed.
	DefaultMaxListings = 10

	linkNotFound = "Link not found"
)

// Extractor turns a city's raw cards into parsed listings.
type Extractor struct {
	parser      *PriceParser
	logger      *utils.Logger
	maxListings int
}

// NewExtractor creates an Extractor parsing at most maxListings cards.
func NewExtractor(parser *PriceParser, maxListings int, logger *utils.Logger) *Extractor {
	if maxListings < 1 {
		maxListings = DefaultMaxListings
	}
	return &Extractor{parser: parser, logger: logger, maxListings: maxListings}
}

// Extract parses the first maxListings cards. A card that fails to parse is
// replaced by a placeholder; it never fails the batch.
func (e *Extractor) Extract(raw []models.RawListing, pc models.ParseContext) []models.ParsedListing {
	if len(raw) > e.maxListings {
		raw = raw[:e.maxListings]
	}

	out := make([]models.ParsedListing, 0, len(raw))
	for i, r := range raw {
		out = append(out, e.extractOne(i+1, r, pc))
	}

	e.logger.Debug("[extractor] Parsed %d listings", len(out))
	return out
}

func (e *Extractor) extractOne(n int, r models.RawListing, pc models.ParseContext) (listing models.ParsedListing) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Warn("[extractor] Listing %d failed: %v", n, rec)
			listing = models.ParsedListing{Title: fmt.Sprintf("Error parsing listing %d", n), Link: "N/A"}
		}
	}()

	link := strings.TrimSpace(r.Link)
	// The listing link carries check-in/check-out for runs without a date range.
	if pc.URL == "" {
		pc.URL = link
	}
	price := e.parser.Parse(r.RawText, pc)

	if link == "" {
		link = linkNotFound
	}
	return models.ParsedListing{
		Title:         listingTitle(n, r),
		PricePerNight: price.PricePerNight,
		PricePerMonth: price.PricePerMonth,
		Link:          link,
	}
}

// listingTitle prefers the structured title, then the first card line that
// reads like "Room in Lisbon · 4.9", then a numbered placeholder.
func listingTitle(n int, r models.RawListing) string {
	if t := normaliseText(r.Title); t != "" {
		return t
	}
	for _, line := range strings.Split(r.RawText, "\n") {
		line = normaliseText(line)
		length := utf8.RuneCountInString(line)
		if length <= 5 || length >= 100 {
			continue
		}
		if first, _ := utf8.DecodeRuneInString(line); unicode.IsDigit(first) {
			continue
		}
		if strings.ContainsAny(line, "·⋅") {
			return line
		}
	}
	return fmt.Sprintf("Listing %d", n)
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
