package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinassist/internal/adapters/knowledge/knowledgetest"
	"coinassist/internal/application/ports"
)

func newTestStore(t *testing.T) ports.KnowledgePort {
	t.Helper()

	kb, err := New(knowledgetest.WriteSeed(t))
	require.NoError(t, err)
	return kb
}

func TestPortContract(t *testing.T) {
	knowledgetest.RunContract(t, newTestStore)
}

func TestGetReturnsCopy(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpdatePrice(ctx, "BTC", knowledgetest.Quote(time.Now())))

	record, err := store.Get(ctx, "BTC")
	require.NoError(t, err)
	*record.LastPrice = -1
	record.Name = "mutated"

	again, err := store.Get(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, 99000.0, *again.LastPrice)
	assert.Equal(t, "Bitcoin", again.Name)
}
