// Package knowledgetest holds the port-level contract every knowledge
// backend must satisfy. Backends wire their constructor into RunContract
// from their own test package.
package knowledgetest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinassist/internal/application/ports"
	"coinassist/internal/domain/models"
)

// Seed is the knowledge file used by the contract cases
const Seed = `{
  "metadata_version": "1.0",
  "coins": [
    {
      "coin": "Bitcoin",
      "symbol": "BTC",
      "description": "The first decentralized cryptocurrency.",
      "launch_year": 2009,
      "consensus": "Proof of Work",
      "chain_type": "Layer 1",
      "creator": "Satoshi Nakamoto",
      "max_supply": 21000000
    },
    {
      "coin": "Ethereum",
      "symbol": "ETH",
      "launch_year": 2015,
      "consensus": "Proof of Stake",
      "chain_type": "Layer 1",
      "creator": "Vitalik Buterin"
    }
  ]
}`

// WriteSeed writes the contract seed file into a temp dir and returns its path
func WriteSeed(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "coins.json")
	require.NoError(t, os.WriteFile(path, []byte(Seed), 0o644))
	return path
}

// Quote returns a full BTC quote stamped with the given fetch time
func Quote(fetchedAt time.Time) models.PriceQuote {
	return models.PriceQuote{
		Symbol:    "BTC",
		Price:     99000,
		MarketCap: 1.9e12,
		Change24h: 1.2,
		Volume24h: 3.1e10,
		FetchedAt: fetchedAt,
	}
}

// RunContract exercises the behavior shared by all knowledge backends:
// seed loading, case-insensitive lookup, the strict freshness window,
// atomic price updates and bare-record creation for unknown symbols.
// open must return a store freshly seeded with Seed.
func RunContract(t *testing.T, open func(t *testing.T) ports.KnowledgePort) {
	t.Run("SeedLoaded", func(t *testing.T) {
		store := open(t)
		defer store.Close()
		ctx := context.Background()

		record, err := store.Get(ctx, "BTC")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "Bitcoin", record.Name)
		require.NotNil(t, record.Metadata)
		assert.Equal(t, 2009, record.Metadata.LaunchYear)
		assert.Equal(t, "Satoshi Nakamoto", record.Metadata.Creator)
		assert.False(t, record.HasPrice(), "seed carries no price data")

		symbols, err := store.Symbols(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"BTC", "ETH"}, symbols)

		record, err = store.Get(ctx, "DOGE")
		require.NoError(t, err)
		assert.Nil(t, record, "unknown symbol is not an error")
	})

	t.Run("CaseInsensitiveGet", func(t *testing.T) {
		store := open(t)
		defer store.Close()

		record, err := store.Get(context.Background(), "btc")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "BTC", record.Symbol)
	})

	t.Run("FreshnessWindow", func(t *testing.T) {
		store := open(t)
		defer store.Close()
		ctx := context.Background()
		ttl := 5 * time.Minute

		// never fetched
		fresh, err := store.IsPriceFresh(ctx, "BTC", ttl)
		require.NoError(t, err)
		assert.False(t, fresh)

		// unknown symbol
		fresh, err = store.IsPriceFresh(ctx, "DOGE", ttl)
		require.NoError(t, err)
		assert.False(t, fresh)

		// fetched 4:59 ago
		require.NoError(t, store.UpdatePrice(ctx, "BTC", Quote(time.Now().Add(-(ttl-time.Second)))))
		fresh, err = store.IsPriceFresh(ctx, "BTC", ttl)
		require.NoError(t, err)
		assert.True(t, fresh)

		// fetched 5:01 ago
		require.NoError(t, store.UpdatePrice(ctx, "BTC", Quote(time.Now().Add(-(ttl+time.Second)))))
		fresh, err = store.IsPriceFresh(ctx, "BTC", ttl)
		require.NoError(t, err)
		assert.False(t, fresh)
	})

	// After any update either all four price fields and the timestamp
	// reflect the quote, or none do.
	t.Run("AtomicUpdate", func(t *testing.T) {
		store := open(t)
		defer store.Close()
		ctx := context.Background()

		fetchedAt := time.Now()
		require.NoError(t, store.UpdatePrice(ctx, "BTC", Quote(fetchedAt)))

		record, err := store.Get(ctx, "BTC")
		require.NoError(t, err)
		require.NotNil(t, record)
		require.True(t, record.HasPrice())
		assert.Equal(t, 99000.0, *record.LastPrice)
		assert.Equal(t, 1.9e12, *record.MarketCap)
		assert.Equal(t, 1.2, *record.Change24h)
		assert.Equal(t, 3.1e10, *record.Volume24h)
		assert.True(t, record.PriceTimestamp.Equal(fetchedAt))

		// metadata untouched by price updates
		require.NotNil(t, record.Metadata)
		assert.Equal(t, 2009, record.Metadata.LaunchYear)
	})

	t.Run("BareRecordForUnknownSymbol", func(t *testing.T) {
		store := open(t)
		defer store.Close()
		ctx := context.Background()

		quote := Quote(time.Now())
		quote.Symbol = "DOGE"
		quote.Name = "Dogecoin"
		require.NoError(t, store.UpdatePrice(ctx, "DOGE", quote))

		record, err := store.Get(ctx, "DOGE")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "Dogecoin", record.Name)
		assert.Nil(t, record.Metadata, "bare record holds only price data")
		assert.True(t, record.HasPrice())
	})
}
