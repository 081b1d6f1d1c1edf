package services

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"airbnb-price-analyzer/models"
)

const (
	currency = `[€$£]`
	// amount accepts thousands-separated values ("1.234", "1,234") or plain digits.
	amount = `(\d{1,3}(?:[.,]\d{3})+|\d+)`
)

var (
	// monthlyRegexp matches one or two (original, discounted) amounts labelled as a monthly rate.
	monthlyRegexp = regexp.MustCompile(`(?i)` + currency + `\s*(\d{1,2}[.,]\d{3})(?:\s*` + currency + `\s*(\d{1,2}[.,]\d{3}))?\s*` +
		`(?:mensal|monthly|per\s+month|/\s*month|a\s+month|por\s+m[eê]s|/\s*m[eê]s)`)

	// totalRegexps are tried in order; the second group, when present, is a discounted total.
	totalRegexps = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total\s*:?\s*` + currency + `\s*` + amount),
		regexp.MustCompile(currency + `\s*` + amount + `\s*` + currency + `\s*` + amount),
		regexp.MustCompile(`(?i)` + currency + `\s*` + amount + `\s+(?:mostrar\s+detalhamento|show\s+price\s+breakdown)`),
		regexp.MustCompile(`(?i)` + currency + `\s*` + amount + `\s+(?:por|for)\s+\d{1,2}\s+(?:noites?|nights?)`),
	}

	stayNightsRegexps = []*regexp.Regexp{
		regexp.MustCompile(`(?i)por\s+(\d{1,2})\s+noites?`),
		regexp.MustCompile(`(?i)\b(\d{1,2})\s+nights?`),
		regexp.MustCompile(`(?i)\b(\d{1,2})\s+noites?`),
	}

	perNightRegexp = regexp.MustCompile(`(?i)` + currency + `\s*(\d{1,3})\s*` +
		`(?:por\s*noite|/\s*noite|per\s*night|/\s*night|night\b|noite\b)`)

	standaloneRegexp   = regexp.MustCompile(currency + `\s*(\d{2,3})\b`)
	followingAmount    = regexp.MustCompile(`^\s*` + currency)
	laterTotalKeywords = regexp.MustCompile(`Total|total|mensal|month`)

	bareNumberRegexp = regexp.MustCompile(`\b(\d{2,3})\b`)
	// bareContextRegexp marks text whose small numbers are dates or amounts, not rates.
	bareContextRegexp = regexp.MustCompile(`(?i)\b\d{1,2}\s*(?:de\s*mar|mar|march|april|abr|€|total)`)
	bareUnitRegexp    = regexp.MustCompile(`(?i)^\s*(?:reviews?|avalia|coment|nights|noites|guests|h[óo]spedes|km|m²)`)
	bareKeywordRegexp = regexp.MustCompile(`(?i)total|mensal|month|m[eê]s`)
)

// bareKeywordWindow is how many bytes either side of a bare number are
// checked for total or monthly labels.
const bareKeywordWindow = 12

// nightlyRule is one stage of the nightly cascade. It reports ok=false to
// fall through to the next stage.
type nightlyRule struct {
	name  string
	apply func(p *PriceParser, text string, pc models.ParseContext) (float64, bool)
}

var nightlyRules = []nightlyRule{
	{"total-price", (*PriceParser).totalPrice},
	{"per-night", (*PriceParser).perNightPrice},
	{"standalone-currency", (*PriceParser).standaloneCurrencyPrice},
	{"bare-number", (*PriceParser).bareNumberPrice},
}

// monthlyPrice returns the first monthly amount within bounds and the text
// with every monthly-looking span blanked out.
func (p *PriceParser) monthlyPrice(text string) (float64, bool, string) {
	matches := monthlyRegexp.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return 0, false, text
	}

	var (
		value float64
		found bool
	)
	masked := []byte(text)
	for _, m := range matches {
		for g := 1; g <= 2 && !found; g++ {
			if m[2*g] < 0 {
				continue
			}
			v := parseAmount(text[m[2*g]:m[2*g+1]])
			if inRange(v, p.bounds.MonthlyMin, p.bounds.MonthlyMax) {
				value, found = v, true
				p.logger.Debug("[parser] monthly price %q -> %.0f", text[m[0]:m[1]], v)
			}
		}
		for i := m[0]; i < m[1]; i++ {
			masked[i] = ' '
		}
	}
	return value, found, string(masked)
}

// totalPrice infers a nightly rate from a stay total.
func (p *PriceParser) totalPrice(text string, pc models.ParseContext) (float64, bool) {
	for _, re := range totalRegexps {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			total := parseAmount(m[1])
			if len(m) > 2 && m[2] != "" {
				total = math.Min(total, parseAmount(m[2]))
			}
			if !inRange(total, p.bounds.TotalMin, p.bounds.TotalMax) {
				continue
			}

			nights, source := p.stayNights(text, pc)
			if nights == 0 {
				nights, source = tierNights(total), "tier estimate"
			}
			nightly := math.Round(total / float64(nights))
			if inRange(nightly, p.bounds.NightlyMin, p.bounds.NightlyMax) {
				p.logger.Debug("[parser] total %.0f / %d nights (%s) = %.0f", total, nights, source, nightly)
				return nightly, true
			}
		}
	}
	return 0, false
}

// stayNights returns the first known stay length: the caller's, the one in the
// listing URL, then an explicit "N nights" phrase. Lengths outside
// 1..MaxStayNights are skipped. Zero means unknown.
func (p *PriceParser) stayNights(text string, pc models.ParseContext) (int, string) {
	if pc.StayNights >= 1 && pc.StayNights <= p.bounds.MaxStayNights {
		return pc.StayNights, "context"
	}
	if n := nightsFromURL(pc.URL); n >= 1 && n <= p.bounds.MaxStayNights {
		return n, "url"
	}
	for _, re := range stayNightsRegexps {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err == nil && n >= 1 && n <= p.bounds.MaxStayNights {
				return n, "text"
			}
		}
	}
	return 0, ""
}

func (p *PriceParser) perNightPrice(text string, _ models.ParseContext) (float64, bool) {
	for _, m := range perNightRegexp.FindAllStringSubmatch(text, -1) {
		v := parseAmount(m[1])
		if inRange(v, p.bounds.NightlyMin, p.bounds.NightlyMax) {
			return v, true
		}
	}
	return 0, false
}

// standaloneCurrencyPrice takes a lone 2-3 digit amount that is neither the
// first half of an amount pair nor followed on its line by a total or monthly label.
func (p *PriceParser) standaloneCurrencyPrice(text string, _ models.ParseContext) (float64, bool) {
	for _, m := range standaloneRegexp.FindAllStringSubmatchIndex(text, -1) {
		rest := text[m[1]:]
		if followingAmount.MatchString(rest) {
			continue
		}
		if laterTotalKeywords.MatchString(restOfLine(rest)) {
			continue
		}
		v := parseAmount(text[m[2]:m[3]])
		if inRange(v, p.bounds.NightlyMin, p.bounds.NightlyMax) {
			return v, true
		}
	}
	return 0, false
}

// bareNumberPrice is the last resort: a plain 2-3 digit number away from
// total or monthly labels, skipped entirely when the text carries dates or amounts.
func (p *PriceParser) bareNumberPrice(text string, _ models.ParseContext) (float64, bool) {
	if bareContextRegexp.MatchString(text) {
		return 0, false
	}
	lo := math.Max(p.bounds.FallbackMin, p.bounds.NightlyMin)
	hi := math.Min(p.bounds.FallbackMax, p.bounds.NightlyMax)
	for _, m := range bareNumberRegexp.FindAllStringSubmatchIndex(text, -1) {
		if partOfDecimal(text, m[0], m[1]) || bareUnitRegexp.MatchString(text[m[1]:]) {
			continue
		}
		if nearKeyword(text, m[0], m[1]) {
			continue
		}
		v := parseAmount(text[m[2]:m[3]])
		if inRange(v, lo, hi) {
			return v, true
		}
	}
	return 0, false
}

// nearKeyword reports whether a total or monthly label sits within
// bareKeywordWindow bytes of text[start:end].
func nearKeyword(text string, start, end int) bool {
	lo := max(start-bareKeywordWindow, 0)
	hi := min(end+bareKeywordWindow, len(text))
	return bareKeywordRegexp.MatchString(text[lo:start]) || bareKeywordRegexp.MatchString(text[end:hi])
}

func tierNights(total float64) int {
	switch {
	case total >= 2000:
		return 8
	case total <= 800:
		return 12
	}
	return 10
}

// nightsFromURL reads checkin/checkout (or check_in/check_out) query params.
func nightsFromURL(raw string) int {
	if raw == "" {
		return 0
	}
	u, err := url.Parse(raw)
	if err != nil {
		return 0
	}
	q := u.Query()
	in, out := q.Get("checkin"), q.Get("checkout")
	if in == "" || out == "" {
		in, out = q.Get("check_in"), q.Get("check_out")
	}
	if in == "" || out == "" {
		return 0
	}
	dc, err := models.ParseSpecificDates(in, out)
	if err != nil {
		return 0
	}
	return dc.Nights(time.Time{})
}

// partOfDecimal reports whether text[start:end] is glued to another number by
// a '.' or ',' separator, as in a rating "4.85".
func partOfDecimal(text string, start, end int) bool {
	if start >= 2 && (text[start-1] == '.' || text[start-1] == ',') && isDigit(text[start-2]) {
		return true
	}
	if end+1 < len(text) && (text[end] == '.' || text[end] == ',') && isDigit(text[end+1]) {
		return true
	}
	return false
}

func restOfLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func parseAmount(s string) float64 {
	s = strings.NewReplacer(".", "", ",", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
