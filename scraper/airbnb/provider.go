// Package airbnb fetches Airbnb search result pages and cuts them into raw
// listing cards.
package airbnb

import (
	"fmt"
	"time"

	"airbnb-price-analyzer/config"
	"airbnb-price-analyzer/scraper"
	"airbnb-price-analyzer/utils"
)

// Options configure both fetch backends.
type Options struct {
	BaseURL        string
	UserAgent      string
	AcceptLanguage string
	ChromeBin      string
	Headless       bool
	PageTimeout    time.Duration
	PageSettle     time.Duration
	MaxListings    int
	MaxRetries     int
	RetryBaseDelay time.Duration
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:        cfg.BaseURL,
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: cfg.AcceptLanguage,
		ChromeBin:      cfg.ChromeBin,
		Headless:       cfg.Headless,
		PageTimeout:    cfg.PageTimeout,
		PageSettle:     cfg.PageSettle,
		MaxListings:    cfg.MaxListingsPerCity,
		MaxRetries:     cfg.MaxRetries,
		RetryBaseDelay: cfg.RetryBaseDelay,
	}
}

// NewProvider returns the backend selected by cfg.Fetcher.
func NewProvider(cfg *config.Config, logger *utils.Logger) (scraper.Provider, error) {
	opts := OptionsFromConfig(cfg)
	switch cfg.Fetcher {
	case "chrome":
		return NewChromeProvider(opts, logger), nil
	case "static":
		return NewStaticProvider(opts, logger), nil
	}
	return nil, fmt.Errorf("%w: unknown fetcher %q", config.ErrInvalidConfig, cfg.Fetcher)
}

func (o Options) retry(logger *utils.Logger) *utils.RetryConfig {
	return &utils.RetryConfig{
		MaxAttempts: o.MaxRetries,
		BaseDelay:   o.RetryBaseDelay,
		Logger:      logger,
	}
}
