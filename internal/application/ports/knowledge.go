package ports

import (
	"context"
	"time"

	"coinassist/internal/domain/models"
)

// KnowledgePort defines the interface for the coin knowledge store
type KnowledgePort interface {
	// Get returns the record for a symbol, or nil when the symbol is unknown
	Get(ctx context.Context, symbol string) (*models.CoinRecord, error)

	// IsPriceFresh reports whether the cached price for a symbol is younger
	// than ttl. A missing symbol or a never-fetched price is not fresh.
	IsPriceFresh(ctx context.Context, symbol string, ttl time.Duration) (bool, error)

	// UpdatePrice overwrites all price fields and the timestamp together.
	// Unknown symbols get a bare record holding only price data.
	UpdatePrice(ctx context.Context, symbol string, quote models.PriceQuote) error

	// Symbols lists every symbol currently known to the store
	Symbols(ctx context.Context) ([]string, error)

	// Close closes the store
	Close() error
}
