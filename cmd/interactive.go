package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"airbnb-price-analyzer/models"
)

// errNoInput is returned when stdin closes before a prompt is answered.
var errNoInput = errors.New("interactive: input closed")

// prompter asks for date configurations on a line-based terminal. Invalid
// answers are re-asked until valid.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
	now func() time.Time
}

func newPrompter(in io.Reader, out io.Writer, now func() time.Time) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out, now: now}
}

// chooseDates runs the mode menu. month is used by mode 3.
func (p *prompter) chooseDates(cities []string, month int) (models.DateConfigs, error) {
	fmt.Fprintln(p.out, "\n==== DATE SELECTION MODE ====")
	fmt.Fprintln(p.out, "1. Same dates for all cities (enter start/end dates or number of months)")
	fmt.Fprintln(p.out, "2. Different dates per city (specify dates for each city individually)")
	fmt.Fprintln(p.out, "3. Use month parameter")

	mode, err := p.choice("Select mode (1, 2, or 3): ", "Please enter 1, 2, or 3", "1", "2", "3")
	if err != nil {
		return models.DateConfigs{}, err
	}

	switch mode {
	case "1":
		dc, err := p.sameDates()
		if err != nil {
			return models.DateConfigs{}, err
		}
		fmt.Fprintf(p.out, "\nUsing dates: %s for all cities\n", dc.Describe(p.now()))
		return models.SameDates(dc), nil
	case "2":
		dcs, err := p.datesPerCity(cities)
		if err != nil {
			return models.DateConfigs{}, err
		}
		fmt.Fprintln(p.out, "\nUsing different dates for each city")
		return models.DatesPerCity(dcs), nil
	}

	dc, err := models.NewMonthDates(month)
	if err != nil {
		return models.DateConfigs{}, err
	}
	return models.SameDates(dc), nil
}

func (p *prompter) sameDates() (models.DateConfig, error) {
	fmt.Fprintln(p.out, "\n==== DATES FOR ALL CITIES ====")
	fmt.Fprintln(p.out, "Choose date input method:")
	fmt.Fprintln(p.out, "1. Specify start and end dates (YYYY-MM-DD format)")
	fmt.Fprintln(p.out, "2. Specify start date and number of months")

	method, err := p.choice("Select method (1 or 2): ", "Please enter 1 or 2", "1", "2")
	if err != nil {
		return models.DateConfig{}, err
	}
	if method == "1" {
		return p.stay("Enter check-in date (YYYY-MM-DD): ", "Enter check-out date (YYYY-MM-DD): ", "")
	}

	checkin, err := p.checkin("Enter check-in date (YYYY-MM-DD): ", "")
	if err != nil {
		return models.DateConfig{}, err
	}
	for {
		answer, err := p.ask("Enter number of months (1-12): ")
		if err != nil {
			return models.DateConfig{}, err
		}
		if months, err := strconv.Atoi(answer); err == nil && months >= 1 && months <= 12 {
			return models.NewSpecificDates(checkin, checkin.AddDate(0, months, 0))
		}
		fmt.Fprintln(p.out, "Please enter a number between 1 and 12")
	}
}

func (p *prompter) datesPerCity(cities []string) ([]models.DateConfig, error) {
	fmt.Fprintln(p.out, "\n==== DATES PER CITY ====")
	dcs := make([]models.DateConfig, 0, len(cities))
	for _, city := range cities {
		fmt.Fprintf(p.out, "\nDates for %s:\n", city)
		dc, err := p.stay(
			fmt.Sprintf("  Check-in date for %s (YYYY-MM-DD): ", city),
			fmt.Sprintf("  Check-out date for %s (YYYY-MM-DD): ", city),
			"  ")
		if err != nil {
			return nil, err
		}
		dcs = append(dcs, dc)
	}
	return dcs, nil
}

func (p *prompter) stay(checkinPrompt, checkoutPrompt, indent string) (models.DateConfig, error) {
	checkin, err := p.checkin(checkinPrompt, indent)
	if err != nil {
		return models.DateConfig{}, err
	}
	for {
		answer, err := p.ask(checkoutPrompt)
		if err != nil {
			return models.DateConfig{}, err
		}
		if checkout, ok := p.validDate(answer); ok && checkout.After(checkin) {
			return models.NewSpecificDates(checkin, checkout)
		}
		fmt.Fprintln(p.out, indent+"Invalid date. Check-out must be after check-in date and use YYYY-MM-DD format.")
	}
}

func (p *prompter) checkin(prompt, indent string) (time.Time, error) {
	for {
		answer, err := p.ask(prompt)
		if err != nil {
			return time.Time{}, err
		}
		if d, ok := p.validDate(answer); ok {
			return d, nil
		}
		fmt.Fprintln(p.out, indent+"Invalid date. Please use YYYY-MM-DD format and ensure date is today or in the future.")
	}
}

// validDate accepts YYYY-MM-DD dates from today on.
func (p *prompter) validDate(s string) (time.Time, bool) {
	d, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, false
	}
	now := p.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d, !d.Before(today)
}

func (p *prompter) choice(prompt, retry string, options ...string) (string, error) {
	for {
		answer, err := p.ask(prompt)
		if err != nil {
			return "", err
		}
		for _, o := range options {
			if answer == o {
				return o, nil
			}
		}
		fmt.Fprintln(p.out, retry)
	}
}

func (p *prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("interactive: %w", err)
		}
		return "", errNoInput
	}
	return strings.TrimSpace(p.in.Text()), nil
}
