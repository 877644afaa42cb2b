package usecases

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	knowledgefile "coinassist/internal/adapters/knowledge/file"
	"coinassist/internal/application/ports"
	"coinassist/internal/detector"
	"coinassist/internal/domain/models"
	"coinassist/internal/formatter"
	"coinassist/internal/memory"
)

const testSeed = `{
  "metadata_version": "1.0",
  "coins": [
    {
      "coin": "Bitcoin",
      "symbol": "BTC",
      "description": "The first decentralized cryptocurrency.",
      "launch_year": 2009,
      "consensus": "Proof of Work",
      "chain_type": "Layer 1",
      "creator": "Satoshi Nakamoto"
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

var testCoins = map[string]string{
	"BTC":  "Bitcoin",
	"ETH":  "Ethereum",
	"DOGE": "Dogecoin",
}

// stubSource is a scripted price source for pipeline tests
type stubSource struct {
	mu       sync.Mutex
	err      error
	delay    time.Duration
	calls    int
	inFlight int
	maxSeen  int
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) FetchPrice(ctx context.Context, symbol string) (*models.PriceQuote, error) {
	s.mu.Lock()
	s.calls++
	s.inFlight++
	if s.inFlight > s.maxSeen {
		s.maxSeen = s.inFlight
	}
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	return &models.PriceQuote{
		Symbol:    symbol,
		Price:     99000,
		MarketCap: 1.9e12,
		Change24h: 1.2,
		Volume24h: 3.1e10,
		FetchedAt: time.Now(),
	}, nil
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestPipeline(t *testing.T, source *stubSource) *Pipeline {
	return newTestPipelineWithSim(t, source, nil)
}

func newTestPipelineWithSim(t *testing.T, live, sim ports.PriceSourcePort) *Pipeline {
	t.Helper()

	path := filepath.Join(t.TempDir(), "coins.json")
	require.NoError(t, os.WriteFile(path, []byte(testSeed), 0o644))

	kb, err := knowledgefile.New(path)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewPipeline(
		kb,
		memory.NewSessionStore(10),
		detector.New(testCoins),
		formatter.New(),
		live,
		sim,
		nil,
		5*time.Minute,
		models.SourceModeLive,
		log,
	)
}

func TestMetadataFromKnowledgeBase(t *testing.T) {
	source := &stubSource{}
	p := newTestPipeline(t, source)

	result, err := p.HandleMessage(context.Background(), "s1", "What is Bitcoin?")
	require.NoError(t, err)

	assert.Equal(t, models.SourceKnowledgeBase, result.Source)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, "BTC", result.Entity)
	assert.Equal(t, models.IntentMetadata, result.Intent)
	assert.Contains(t, result.Text, "Bitcoin")
	assert.Contains(t, result.Text, "2009")
	assert.Zero(t, source.callCount(), "metadata never hits the price source")
}

func TestPriceFallsBackToAPIThenServesCache(t *testing.T) {
	source := &stubSource{}
	p := newTestPipeline(t, source)
	ctx := context.Background()

	// no cache entry yet: live fetch
	result, err := p.HandleMessage(ctx, "s1", "What is the price of BTC?")
	require.NoError(t, err)
	assert.Equal(t, models.SourceExternalAPI, result.Source)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Equal(t, 1, source.callCount())

	// identical query within the freshness window: knowledge base hit
	result, err = p.HandleMessage(ctx, "s1", "What is the price of BTC?")
	require.NoError(t, err)
	assert.Equal(t, models.SourceKnowledgeBase, result.Source)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, 1, source.callCount(), "fresh cache must not trigger a second fetch")
}

func TestRejectionShortCircuitsLookup(t *testing.T) {
	source := &stubSource{}
	p := newTestPipeline(t, source)
	ctx := context.Background()

	// warm the cache so rejection clearly wins over available data
	_, err := p.HandleMessage(ctx, "s1", "What is the price of BTC?")
	require.NoError(t, err)

	result, err := p.HandleMessage(ctx, "s1", "Will Bitcoin reach $100k?")
	require.NoError(t, err)
	assert.Equal(t, models.SourceRejected, result.Source)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, models.InsufficientData, result.Text)
	assert.Equal(t, models.IntentRejected, result.Intent)
	assert.Equal(t, 1, source.callCount(), "rejected queries never reach a source")
}

func TestSourceUnavailableYieldsInsufficientData(t *testing.T) {
	source := &stubSource{err: fmt.Errorf("connection refused: %w", models.ErrSourceUnavailable)}
	p := newTestPipeline(t, source)

	result, err := p.HandleMessage(context.Background(), "s1", "What is the price of DOGE?")
	require.NoError(t, err)
	assert.Equal(t, models.SourceRejected, result.Source)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, models.InsufficientData, result.Text)
}

func TestMetadataMissIsNotRepairedByAPI(t *testing.T) {
	source := &stubSource{}
	p := newTestPipeline(t, source)

	// DOGE is a recognized entity but has no record in the knowledge store;
	// metadata lives only there, so the result is a refusal.
	result, err := p.HandleMessage(context.Background(), "s1", "What is Dogecoin?")
	require.NoError(t, err)
	assert.Equal(t, models.SourceRejected, result.Source)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, models.InsufficientData, result.Text)
	assert.Zero(t, source.callCount())
}

func TestPronounResolvesLastEntity(t *testing.T) {
	source := &stubSource{}
	p := newTestPipeline(t, source)
	ctx := context.Background()

	result, err := p.HandleMessage(ctx, "s1", "What is Ethereum?")
	require.NoError(t, err)
	assert.Equal(t, "ETH", result.Entity)

	result, err = p.HandleMessage(ctx, "s1", "What's its price?")
	require.NoError(t, err)
	assert.Equal(t, "ETH", result.Entity)
	assert.Equal(t, models.IntentPrice, result.Intent)
	assert.Equal(t, models.SourceExternalAPI, result.Source)
}

func TestPronounsDoNotLeakAcrossSessions(t *testing.T) {
	source := &stubSource{}
	p := newTestPipeline(t, source)
	ctx := context.Background()

	_, err := p.HandleMessage(ctx, "s1", "What is Ethereum?")
	require.NoError(t, err)

	result, err := p.HandleMessage(ctx, "s2", "What's its price?")
	require.NoError(t, err)
	assert.Equal(t, models.SourceRejected, result.Source)
	assert.Empty(t, result.Entity)
}

func TestResetIsolation(t *testing.T) {
	source := &stubSource{}
	p := newTestPipeline(t, source)
	ctx := context.Background()

	_, err := p.HandleMessage(ctx, "s1", "What is Ethereum?")
	require.NoError(t, err)

	p.ResetSession("s1")

	result, err := p.HandleMessage(ctx, "s1", "What's its price?")
	require.NoError(t, err)
	assert.Equal(t, models.SourceRejected, result.Source)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, models.InsufficientData, result.Text)
	assert.Empty(t, result.Entity, "reset must not leave a stale entity behind")
}

// A rejected turn that still names an entity keeps pronoun resolution
// working, while one without an entity does not disturb it.
func TestRejectedTurnEntityRecording(t *testing.T) {
	source := &stubSource{}
	p := newTestPipeline(t, source)
	ctx := context.Background()

	_, err := p.HandleMessage(ctx, "s1", "Will Bitcoin reach $100k?")
	require.NoError(t, err)

	result, err := p.HandleMessage(ctx, "s1", "What's its price?")
	require.NoError(t, err)
	assert.Equal(t, "BTC", result.Entity)
	assert.Equal(t, models.IntentPrice, result.Intent)
}

// Confidence is a fixed function of provenance: no other combination of
// source and confidence is producible.
func TestConfidenceMappingIsFixed(t *testing.T) {
	source := &stubSource{}
	p := newTestPipeline(t, source)
	ctx := context.Background()

	queries := []string{
		"What is Bitcoin?",
		"What is the price of BTC?",
		"What is the price of BTC?",
		"Will Bitcoin reach $100k?",
		"hello there",
		"What is Dogecoin?",
	}

	for _, query := range queries {
		result, err := p.HandleMessage(ctx, "s1", query)
		require.NoError(t, err)

		switch result.Source {
		case models.SourceKnowledgeBase:
			assert.Equal(t, 1.0, result.Confidence, "query %q", query)
		case models.SourceExternalAPI:
			assert.Equal(t, 0.9, result.Confidence, "query %q", query)
		case models.SourceRejected:
			assert.Equal(t, 0.0, result.Confidence, "query %q", query)
		default:
			t.Fatalf("unexpected source %q for query %q", result.Source, query)
		}
	}
}

func TestStaleCacheTriggersRefetch(t *testing.T) {
	source := &stubSource{}
	p := newTestPipeline(t, source)
	ctx := context.Background()

	// plant a stale quote directly in the knowledge store
	stale := models.PriceQuote{
		Symbol:    "BTC",
		Price:     90000,
		MarketCap: 1.8e12,
		Change24h: -0.5,
		Volume24h: 2.5e10,
		FetchedAt: time.Now().Add(-6 * time.Minute),
	}
	require.NoError(t, p.kb.UpdatePrice(ctx, "BTC", stale))

	result, err := p.HandleMessage(ctx, "s1", "What is the price of BTC?")
	require.NoError(t, err)
	assert.Equal(t, models.SourceExternalAPI, result.Source)
	assert.Equal(t, 1, source.callCount(), "stale cache must be refetched")
}

// The guarantee is at most one in-flight fetch per symbol: concurrent
// misses wait for the shared result instead of each calling upstream.
func TestConcurrentPriceQueriesShareOneFetch(t *testing.T) {
	source := &stubSource{delay: 30 * time.Millisecond}
	p := newTestPipeline(t, source)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sessionID := fmt.Sprintf("s%d", n)
			_, err := p.HandleMessage(ctx, sessionID, "What is the price of BTC?")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	source.mu.Lock()
	defer source.mu.Unlock()
	assert.Equal(t, 1, source.maxSeen, "fetches for one symbol must never overlap")
	assert.GreaterOrEqual(t, source.calls, 1)
}

// Switching modes changes which source serves the next cache miss.
func TestModeSwitchingRoutesFetches(t *testing.T) {
	live := &stubSource{}
	sim := &stubSource{}
	p := newTestPipelineWithSim(t, live, sim)
	ctx := context.Background()

	assert.Equal(t, models.SourceModeLive, p.GetMode())

	p.SetMode(models.SourceModeSim)
	assert.Equal(t, models.SourceModeSim, p.GetMode())

	result, err := p.HandleMessage(ctx, "s1", "What is the price of BTC?")
	require.NoError(t, err)
	assert.Equal(t, models.SourceExternalAPI, result.Source)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Equal(t, 1, sim.callCount(), "sim mode must route the miss to the sim source")
	assert.Zero(t, live.callCount())

	p.SetMode(models.SourceModeLive)

	// a different symbol so the warm BTC cache does not mask the routing
	_, err = p.HandleMessage(ctx, "s1", "What is the price of ETH?")
	require.NoError(t, err)
	assert.Equal(t, 1, live.callCount(), "live mode must route the miss to the live source")
	assert.Equal(t, 1, sim.callCount())
}

// A pipeline wired without a sim source stays on the live source whatever
// the mode says.
func TestSimModeWithoutSimSourceFallsBackToLive(t *testing.T) {
	live := &stubSource{}
	p := newTestPipelineWithSim(t, live, nil)

	p.SetMode(models.SourceModeSim)

	result, err := p.HandleMessage(context.Background(), "s1", "What is the price of BTC?")
	require.NoError(t, err)
	assert.Equal(t, models.SourceExternalAPI, result.Source)
	assert.Equal(t, 1, live.callCount())
}
