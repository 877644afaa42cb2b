package concurrency

import (
	"golang.org/x/sync/singleflight"

	"coinassist/internal/domain/models"
)

// FetchGroup collapses concurrent quote fetches for the same symbol into a
// single upstream call. Requests that arrive while a fetch is in flight wait
// for its result instead of issuing a duplicate call, keeping at most one
// outbound request per symbol at a time.
type FetchGroup struct {
	group singleflight.Group
}

// Fetch runs fn for the symbol unless an identical fetch is already in
// flight, in which case it waits for and shares that result
func (g *FetchGroup) Fetch(symbol string, fn func() (*models.PriceQuote, error)) (*models.PriceQuote, error) {
	value, err, _ := g.group.Do(symbol, func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.PriceQuote), nil
}
