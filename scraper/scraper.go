// Package scraper defines the contract between the analysis pipeline and the
// page-automation backends that produce raw listing cards.
package scraper

import (
	"context"

	"airbnb-price-analyzer/models"
)

// Provider opens automation sessions.
type Provider interface {
	OpenSession(ctx context.Context) (Session, error)
}

// Session is exclusively owned by one city's processing and must be closed
// when that city is done, whatever the outcome.
type Session interface {
	// Search returns the raw cards of the first result page for city.
	Search(ctx context.Context, city string, dates models.DateRange) ([]models.RawListing, error)
	Close() error
}
