package services

import (
	"airbnb-price-analyzer/config"
	"airbnb-price-analyzer/models"
	"airbnb-price-analyzer/utils"
)

// PriceParser extracts a nightly and a monthly price from one card's text.
//
// Monthly amounts are read first and then blanked out, so their digits can
// never be picked up as a nightly rate. The nightly rate comes from the
// first rule in nightlyRules that produces an in-bounds value: a stay total
// divided by the stay length, an explicit per-night amount, a lone currency
// amount, and finally a bare number.
type PriceParser struct {
	bounds config.PriceBounds
	rules  []nightlyRule
	logger *utils.Logger
}

// NewPriceParser creates a PriceParser filtering with the given bounds.
func NewPriceParser(bounds config.PriceBounds, logger *utils.Logger) *PriceParser {
	return &PriceParser{bounds: bounds, rules: nightlyRules, logger: logger}
}

// Parse never fails: text it cannot read yields nil prices.
func (p *PriceParser) Parse(rawText string, pc models.ParseContext) models.ParsedPrice {
	var out models.ParsedPrice

	monthly, ok, text := p.monthlyPrice(rawText)
	if ok {
		out.PricePerMonth = models.Float(monthly)
	}

	for _, rule := range p.rules {
		if v, ok := rule.apply(p, text, pc); ok {
			out.PricePerNight = models.Float(v)
			out.NightlyRule = rule.name
			p.logger.Debug("[parser] nightly price %.0f via %s", v, rule.name)
			break
		}
	}
	return out
}
