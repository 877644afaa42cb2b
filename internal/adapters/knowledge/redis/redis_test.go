package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinassist/internal/adapters/knowledge/knowledgetest"
	"coinassist/internal/application/ports"
	"coinassist/internal/config"
)

func redisConfig(t *testing.T, srv *miniredis.Miniredis) config.RedisConfig {
	t.Helper()

	port, err := strconv.Atoi(srv.Port())
	require.NoError(t, err)
	return config.RedisConfig{Host: srv.Host(), Port: port}
}

func newTestStore(t *testing.T) ports.KnowledgePort {
	t.Helper()

	srv := miniredis.RunT(t)
	kb, err := New(redisConfig(t, srv), knowledgetest.WriteSeed(t))
	require.NoError(t, err)
	return kb
}

func TestPortContract(t *testing.T) {
	knowledgetest.RunContract(t, newTestStore)
}

// Seeding uses SetNX, so reconnecting against a populated instance must not
// clobber prices cached since the original seed.
func TestSeedPreservesCachedPrices(t *testing.T) {
	srv := miniredis.RunT(t)
	cfg := redisConfig(t, srv)
	seedPath := knowledgetest.WriteSeed(t)
	ctx := context.Background()

	kb, err := New(cfg, seedPath)
	require.NoError(t, err)

	fetchedAt := time.Now()
	require.NoError(t, kb.UpdatePrice(ctx, "BTC", knowledgetest.Quote(fetchedAt)))
	require.NoError(t, kb.Close())

	// restart: same instance, seeded again
	kb, err = New(cfg, seedPath)
	require.NoError(t, err)
	defer kb.Close()

	record, err := kb.Get(ctx, "BTC")
	require.NoError(t, err)
	require.NotNil(t, record)
	require.True(t, record.HasPrice())
	assert.Equal(t, 99000.0, *record.LastPrice)
	assert.True(t, record.PriceTimestamp.Equal(fetchedAt))

	// metadata from the seed is still there
	require.NotNil(t, record.Metadata)
	assert.Equal(t, 2009, record.Metadata.LaunchYear)
}
