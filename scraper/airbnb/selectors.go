package airbnb

// Card containers, tried in order. The first selector that matches anything
// wins; the title selector is last because its matches must be widened to
// the surrounding card.
var cardSelectors = []string{
	`[data-testid="card-container"]`,
	`[itemprop="itemListElement"]`,
	`div[role="group"]`,
	titleSelector,
}

const (
	titleSelector    = `[data-testid="listing-card-title"]`
	headingSelector  = "h1, h2, h3, h4"
	roomLinkSelector = `a[href*="/rooms/"]`

	// A widened title container must carry at least this much text.
	minCardText = 50
	maxClimb    = 5

	roomTypeFilter = "room_types%5B%5D=Entire%20home%2Fapt"
)
