package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"coinassist/internal/adapters/knowledge"
	"coinassist/internal/application/ports"
	"coinassist/internal/config"
	"coinassist/internal/domain/models"
)

const keyPrefix = "kb:coin:"

// Adapter implements the KnowledgePort interface on Redis. Records are
// stored as JSON values keyed kb:coin:<SYMBOL> and seeded from the knowledge
// file at startup; seeding never clobbers a record that already exists, so
// cached prices survive restarts. Freshness is evaluated from the record's
// own timestamp rather than a Redis TTL to keep the freshness window exact.
type Adapter struct {
	client *redis.Client

	// locks serializes read-modify-write price updates per symbol
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Redis-backed knowledge store seeded from the knowledge file
func New(cfg config.RedisConfig, seedPath string) (ports.KnowledgePort, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	adapter := &Adapter{
		client: client,
		locks:  make(map[string]*sync.Mutex),
	}

	if err := adapter.seed(ctx, seedPath); err != nil {
		return nil, err
	}

	return adapter, nil
}

func (a *Adapter) seed(ctx context.Context, seedPath string) error {
	records, err := knowledge.LoadSeedFile(seedPath)
	if err != nil {
		return err
	}

	for symbol, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if err := a.client.SetNX(ctx, keyPrefix+symbol, data, 0).Err(); err != nil {
			return fmt.Errorf("failed to seed %s: %w", symbol, err)
		}
	}
	return nil
}

// Get returns the record for a symbol, or nil when unknown
func (a *Adapter) Get(ctx context.Context, symbol string) (*models.CoinRecord, error) {
	data, err := a.client.Get(ctx, keyPrefix+strings.ToUpper(symbol)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var record models.CoinRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// IsPriceFresh reports whether the cached price is younger than ttl
func (a *Adapter) IsPriceFresh(ctx context.Context, symbol string, ttl time.Duration) (bool, error) {
	record, err := a.Get(ctx, symbol)
	if err != nil {
		return false, err
	}
	if record == nil || record.PriceTimestamp == nil {
		return false, nil
	}
	return time.Since(*record.PriceTimestamp) < ttl, nil
}

// UpdatePrice overwrites all four price fields and the timestamp together.
// Updates for the same symbol are serialized so concurrent stale reads never
// interleave partial writes.
func (a *Adapter) UpdatePrice(ctx context.Context, symbol string, quote models.PriceQuote) error {
	symbol = strings.ToUpper(symbol)

	lock := a.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()

	record, err := a.Get(ctx, symbol)
	if err != nil {
		return err
	}
	if record == nil {
		record = &models.CoinRecord{
			Symbol: symbol,
			Name:   quote.Name,
		}
	}

	price := quote.Price
	marketCap := quote.MarketCap
	change := quote.Change24h
	volume := quote.Volume24h
	timestamp := quote.FetchedAt

	record.LastPrice = &price
	record.MarketCap = &marketCap
	record.Change24h = &change
	record.Volume24h = &volume
	record.PriceTimestamp = &timestamp

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return a.client.Set(ctx, keyPrefix+symbol, data, 0).Err()
}

// Symbols lists every symbol currently in the store, sorted
func (a *Adapter) Symbols(ctx context.Context) ([]string, error) {
	keys, err := a.client.Keys(ctx, keyPrefix+"*").Result()
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(keys))
	for _, key := range keys {
		symbols = append(symbols, strings.TrimPrefix(key, keyPrefix))
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Close closes the Redis connection
func (a *Adapter) Close() error {
	return a.client.Close()
}

func (a *Adapter) symbolLock(symbol string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	lock, ok := a.locks[symbol]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[symbol] = lock
	}
	return lock
}
