package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// DateMode selects how a DateConfig resolves to a concrete stay.
type DateMode string

const (
	DateModeSpecific DateMode = "specific"
	DateModeMonth    DateMode = "month"
)

var (
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	ErrInvalidStay  = errors.New("checkout must be at least one night after checkin")
)

// DateConfig is either a specific checkin/checkout pair or a calendar month.
// Build it with NewSpecificDates, ParseSpecificDates or NewMonthDates; the
// zero value is not usable.
type DateConfig struct {
	mode     DateMode
	checkin  time.Time
	checkout time.Time
	month    time.Month
}

// DateRange is a DateConfig resolved against a reference time.
type DateRange struct {
	Checkin  time.Time
	Checkout time.Time
	Nights   int
}

// CheckinString returns the checkin date as YYYY-MM-DD.
func (r DateRange) CheckinString() string { return r.Checkin.Format(dateLayout) }

// CheckoutString returns the checkout date as YYYY-MM-DD.
func (r DateRange) CheckoutString() string { return r.Checkout.Format(dateLayout) }

// NewSpecificDates builds a specific-dates config. The stay must be at least one night.
func NewSpecificDates(checkin, checkout time.Time) (DateConfig, error) {
	dc := DateConfig{mode: DateModeSpecific, checkin: checkin, checkout: checkout}
	if nightsBetween(checkin, checkout) < 1 {
		return DateConfig{}, fmt.Errorf("%s to %s: %w",
			checkin.Format(dateLayout), checkout.Format(dateLayout), ErrInvalidStay)
	}
	return dc, nil
}

// ParseSpecificDates builds a specific-dates config from YYYY-MM-DD strings.
func ParseSpecificDates(checkin, checkout string) (DateConfig, error) {
	in, err := ParseDate(checkin)
	if err != nil {
		return DateConfig{}, err
	}
	out, err := ParseDate(checkout)
	if err != nil {
		return DateConfig{}, err
	}
	return NewSpecificDates(in, out)
}

// NewMonthDates builds a month-mode config for month 1..12.
func NewMonthDates(month int) (DateConfig, error) {
	if month < 1 || month > 12 {
		return DateConfig{}, fmt.Errorf("%d: %w", month, ErrInvalidMonth)
	}
	return DateConfig{mode: DateModeMonth, month: time.Month(month)}, nil
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

func (d DateConfig) Mode() DateMode { return d.mode }

// Month returns the configured month, or 0 in specific mode.
func (d DateConfig) Month() int { return int(d.month) }

// IsZero reports whether d was never initialized by a constructor.
func (d DateConfig) IsZero() bool { return d.mode == "" }

// Range resolves the config against now. Month mode picks the next future
// occurrence of the month; the current month rolls over to next year.
func (d DateConfig) Range(now time.Time) DateRange {
	if d.mode == DateModeSpecific {
		return DateRange{Checkin: d.checkin, Checkout: d.checkout, Nights: nightsBetween(d.checkin, d.checkout)}
	}

	year := now.Year()
	if d.month <= now.Month() {
		year++
	}
	checkin := time.Date(year, d.month, 1, 0, 0, 0, 0, time.UTC)
	checkout := checkin.AddDate(0, 1, 0)
	return DateRange{Checkin: checkin, Checkout: checkout, Nights: checkout.AddDate(0, 0, -1).Day()}
}

// Nights is the stay length: ceil of the day difference in specific mode,
// the number of days in the resolved month otherwise.
func (d DateConfig) Nights(now time.Time) int {
	return d.Range(now).Nights
}

// Describe renders the config for progress output and reports.
func (d DateConfig) Describe(now time.Time) string {
	r := d.Range(now)
	if d.mode == DateModeMonth {
		return fmt.Sprintf("%s %d (%d nights)", d.month, r.Checkin.Year(), r.Nights)
	}
	return fmt.Sprintf("%s to %s (%d nights)", r.CheckinString(), r.CheckoutString(), r.Nights)
}

func nightsBetween(checkin, checkout time.Time) int {
	return int(math.Ceil(checkout.Sub(checkin).Hours() / 24))
}

// DateConfigs maps each city of a run to its DateConfig. A run may use one
// shared config, one per position, or one per city name.
type DateConfigs struct {
	shared  *DateConfig
	byIndex []DateConfig
	byCity  map[string]DateConfig
}

// SameDates applies dc to every city.
func SameDates(dc DateConfig) DateConfigs {
	return DateConfigs{shared: &dc}
}

// DatesPerCity assigns configs by city position.
func DatesPerCity(dcs []DateConfig) DateConfigs {
	return DateConfigs{byIndex: dcs}
}

// DatesByCity assigns configs by city name.
func DatesByCity(dcs map[string]DateConfig) DateConfigs {
	return DateConfigs{byCity: dcs}
}

// For returns the config for the city at index i. The second result is false
// when no usable config exists for it.
func (c DateConfigs) For(i int, city string) (DateConfig, bool) {
	switch {
	case c.shared != nil:
		return *c.shared, !c.shared.IsZero()
	case c.byCity != nil:
		dc, ok := c.byCity[city]
		return dc, ok && !dc.IsZero()
	case i >= 0 && i < len(c.byIndex):
		return c.byIndex[i], !c.byIndex[i].IsZero()
	}
	return DateConfig{}, false
}
