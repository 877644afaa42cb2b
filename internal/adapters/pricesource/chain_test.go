package pricesource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinassist/internal/domain/models"
)

type fakeSource struct {
	name  string
	quote *models.PriceQuote
	err   error
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchPrice(ctx context.Context, symbol string) (*models.PriceQuote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.quote, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func unavailable(source string) error {
	return fmt.Errorf("%s: down: %w", source, models.ErrSourceUnavailable)
}

func TestChainUsesFirstSuccessfulSource(t *testing.T) {
	quote := &models.PriceQuote{Symbol: "BTC", Price: 99000, FetchedAt: time.Now()}
	primary := &fakeSource{name: "primary", quote: quote}
	secondary := &fakeSource{name: "secondary", quote: quote}

	chain := NewChain(testLogger(), primary, secondary)

	got, err := chain.FetchPrice(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, quote, got)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, secondary.calls, "the chain stops at the first success")
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	quote := &models.PriceQuote{Symbol: "BTC", Price: 99000, FetchedAt: time.Now()}
	primary := &fakeSource{name: "primary", err: unavailable("primary")}
	secondary := &fakeSource{name: "secondary", quote: quote}

	chain := NewChain(testLogger(), primary, secondary)

	got, err := chain.FetchPrice(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, quote, got)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestChainSurfacesSingleFailure(t *testing.T) {
	primary := &fakeSource{name: "primary", err: unavailable("primary")}
	secondary := &fakeSource{name: "secondary", err: unavailable("secondary")}

	chain := NewChain(testLogger(), primary, secondary)

	_, err := chain.FetchPrice(context.Background(), "BTC")
	assert.ErrorIs(t, err, models.ErrSourceUnavailable)
}
