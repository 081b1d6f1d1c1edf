package airbnb

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"airbnb-price-analyzer/models"
	"airbnb-price-analyzer/utils"
)

// ParseCards pulls up to limit listing cards out of a results page. Cards
// sharing a link are kept once.
func ParseCards(html, baseURL string, limit int) ([]models.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}
	base, _ := url.Parse(baseURL)
	seen := utils.NewURLSet()

	var out []models.RawListing
	for _, card := range findCards(doc) {
		if limit > 0 && len(out) >= limit {
			break
		}
		l := models.RawListing{
			Title:   cardTitle(card),
			RawText: blockText(card),
			Link:    cardLink(card, base),
		}
		if l.Link != "" && !seen.Add(l.Link) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func findCards(doc *goquery.Document) []*goquery.Selection {
	for _, sel := range cardSelectors {
		found := doc.Find(sel)
		if found.Length() == 0 {
			continue
		}
		cards := make([]*goquery.Selection, 0, found.Length())
		found.Each(func(_ int, s *goquery.Selection) {
			if sel == titleSelector {
				s = widen(s)
			}
			cards = append(cards, s)
		})
		return cards
	}
	return nil
}

// widen climbs from a title element to the first ancestor carrying enough
// text to hold the rest of the card.
func widen(title *goquery.Selection) *goquery.Selection {
	c := title.Parent()
	for i := 0; i < maxClimb && c.Length() > 0; i++ {
		if len(strings.TrimSpace(c.Text())) > minCardText {
			return c
		}
		c = c.Parent()
	}
	if p := title.Parent(); p.Length() > 0 {
		return p
	}
	return title
}

func cardTitle(card *goquery.Selection) string {
	t := card.Find(titleSelector).First()
	if t.Length() == 0 {
		t = card.Find(headingSelector).First()
	}
	return strings.TrimSpace(t.Text())
}

func cardLink(card *goquery.Selection, base *url.URL) string {
	a := card.Find(roomLinkSelector).First()
	if a.Length() == 0 {
		a = card.Find("a").First()
	}
	if a.Length() == 0 {
		a = card.Closest("a")
	}
	href, ok := a.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if !u.IsAbs() && base != nil {
		u = base.ResolveReference(u)
	}
	return u.String()
}

// blockText returns the card's text with one line per text node.
func blockText(s *goquery.Selection) string {
	var lines []string
	var walk func(*goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, c *goquery.Selection) {
			switch goquery.NodeName(c) {
			case "#text":
				if t := strings.TrimSpace(c.Text()); t != "" {
					lines = append(lines, t)
				}
			case "script", "style", "svg", "noscript":
			default:
				walk(c)
			}
		})
	}
	walk(s)
	return strings.Join(lines, "\n")
}
