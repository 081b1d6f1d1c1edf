package airbnb

import (
	"fmt"
	"net/url"
	"strings"

	"airbnb-price-analyzer/models"
)

// SearchURL builds the results page for an entire-home search in city.
func SearchURL(baseURL, city string, dr models.DateRange) string {
	return fmt.Sprintf("%s/s/%s/homes?checkin=%s&checkout=%s&adults=1&%s",
		strings.TrimRight(baseURL, "/"), url.PathEscape(strings.TrimSpace(city)),
		dr.CheckinString(), dr.CheckoutString(), roomTypeFilter)
}
