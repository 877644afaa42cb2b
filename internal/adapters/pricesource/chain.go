package pricesource

import (
	"context"
	"fmt"
	"log/slog"

	"coinassist/internal/application/ports"
	"coinassist/internal/domain/models"
)

// Chain tries each source in order and returns the first successful quote.
// From the pipeline's perspective it is one fallback call: when every link
// fails the chain surfaces a single models.ErrSourceUnavailable.
type Chain struct {
	sources []ports.PriceSourcePort
	logger  *slog.Logger
}

// NewChain creates a chained price source
func NewChain(logger *slog.Logger, sources ...ports.PriceSourcePort) ports.PriceSourcePort {
	return &Chain{
		sources: sources,
		logger:  logger,
	}
}

// Name returns the source name
func (c *Chain) Name() string {
	return "live"
}

// FetchPrice fetches a quote from the first source that answers
func (c *Chain) FetchPrice(ctx context.Context, symbol string) (*models.PriceQuote, error) {
	for _, source := range c.sources {
		quote, err := source.FetchPrice(ctx, symbol)
		if err == nil {
			return quote, nil
		}
		c.logger.Warn("Price source failed, trying next",
			"source", source.Name(), "symbol", symbol, "error", err)
	}
	return nil, fmt.Errorf("all price sources failed for %s: %w", symbol, models.ErrSourceUnavailable)
}
