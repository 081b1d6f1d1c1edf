package airbnb

import (
	"context"
	"fmt"

	"github.com/gocolly/colly/v2"

	"airbnb-price-analyzer/models"
	"airbnb-price-analyzer/scraper"
	"airbnb-price-analyzer/utils"
)

// StaticProvider fetches result pages over plain HTTP without running any
// page scripts. It only sees server-rendered cards.
type StaticProvider struct {
	opts   Options
	logger *utils.Logger
}

func NewStaticProvider(opts Options, logger *utils.Logger) *StaticProvider {
	return &StaticProvider{opts: opts, logger: logger}
}

func (p *StaticProvider) OpenSession(context.Context) (scraper.Session, error) {
	return &staticSession{opts: p.opts, logger: p.logger, retry: p.opts.retry(p.logger)}, nil
}

type staticSession struct {
	opts   Options
	logger *utils.Logger
	retry  *utils.RetryConfig
}

func (s *staticSession) Search(ctx context.Context, city string, dr models.DateRange) ([]models.RawListing, error) {
	target := SearchURL(s.opts.BaseURL, city, dr)
	s.logger.Info("[static] %s: fetching %s", city, target)

	var html string
	err := s.retry.Do(ctx, "fetch "+city, func(ctx context.Context) error {
		var err error
		html, err = s.fetch(ctx, target)
		return err
	})
	if err != nil {
		return nil, err
	}

	cards, err := ParseCards(html, s.opts.BaseURL, s.opts.MaxListings)
	if err != nil {
		return nil, err
	}
	s.logger.Info("[static] %s: %d cards", city, len(cards))
	return cards, nil
}

func (s *staticSession) fetch(ctx context.Context, target string) (string, error) {
	c := colly.NewCollector(
		colly.UserAgent(s.opts.UserAgent),
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(s.opts.PageTimeout)

	if s.opts.AcceptLanguage != "" {
		c.OnRequest(func(r *colly.Request) {
			r.Headers.Set("Accept-Language", s.opts.AcceptLanguage)
		})
	}

	var body string
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
		s.logger.Debug("[static] %d, %d bytes", r.StatusCode, len(r.Body))
	})
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = fmt.Errorf("fetch %s (status %d): %w", target, status, err)
	})

	if err := c.Visit(target); err != nil {
		return "", fmt.Errorf("visit %s: %w", target, err)
	}
	if fetchErr != nil {
		return "", fetchErr
	}
	return body, nil
}

func (s *staticSession) Close() error { return nil }
