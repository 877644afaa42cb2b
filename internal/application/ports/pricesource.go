package ports

import (
	"context"

	"coinassist/internal/domain/models"
)

// PriceSourcePort defines the interface for external price sources
type PriceSourcePort interface {
	// FetchPrice returns the current quote for a symbol. Every failure mode
	// wraps models.ErrSourceUnavailable; there is no retry inside the adapter.
	FetchPrice(ctx context.Context, symbol string) (*models.PriceQuote, error)

	// Name returns the source name for logging
	Name() string
}
