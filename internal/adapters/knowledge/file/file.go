package file

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"coinassist/internal/adapters/knowledge"
	"coinassist/internal/application/ports"
	"coinassist/internal/domain/models"
)

// Store implements the KnowledgePort interface with an in-memory table
// seeded from a JSON knowledge file. All price mutations go through
// UpdatePrice under the store lock, so the four price fields and the
// timestamp always change together.
type Store struct {
	mu      sync.RWMutex
	records map[string]*models.CoinRecord
}

// New creates a file-backed knowledge store
func New(path string) (ports.KnowledgePort, error) {
	records, err := knowledge.LoadSeedFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge store: %w", err)
	}

	return &Store{records: records}, nil
}

// NewEmpty creates a knowledge store with no initial records
func NewEmpty() *Store {
	return &Store{records: make(map[string]*models.CoinRecord)}
}

// Get returns a copy of the record for a symbol, or nil when unknown
func (s *Store) Get(ctx context.Context, symbol string) (*models.CoinRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[strings.ToUpper(symbol)]
	if !ok {
		return nil, nil
	}
	return cloneRecord(record), nil
}

// IsPriceFresh reports whether the cached price is younger than ttl.
// A missing symbol or a never-fetched price is not fresh, never an error.
func (s *Store) IsPriceFresh(ctx context.Context, symbol string, ttl time.Duration) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[strings.ToUpper(symbol)]
	if !ok || record.PriceTimestamp == nil {
		return false, nil
	}
	return time.Since(*record.PriceTimestamp) < ttl, nil
}

// UpdatePrice overwrites all four price fields and the timestamp together.
// Unknown symbols get a bare record so price data for a coin without static
// metadata is still usable.
func (s *Store) UpdatePrice(ctx context.Context, symbol string, quote models.PriceQuote) error {
	symbol = strings.ToUpper(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[symbol]
	if !ok {
		record = &models.CoinRecord{
			Symbol: symbol,
			Name:   quote.Name,
		}
		s.records[symbol] = record
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

	return nil
}

// Symbols lists every symbol currently in the store, sorted
func (s *Store) Symbols(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.records))
	for symbol := range s.records {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Close closes the store
func (s *Store) Close() error {
	return nil
}

// cloneRecord copies a record so callers never share pointers with the store
func cloneRecord(record *models.CoinRecord) *models.CoinRecord {
	out := &models.CoinRecord{
		Symbol: record.Symbol,
		Name:   record.Name,
	}
	if record.Metadata != nil {
		metadata := *record.Metadata
		out.Metadata = &metadata
	}
	out.LastPrice = cloneFloat(record.LastPrice)
	out.MarketCap = cloneFloat(record.MarketCap)
	out.Change24h = cloneFloat(record.Change24h)
	out.Volume24h = cloneFloat(record.Volume24h)
	if record.PriceTimestamp != nil {
		timestamp := *record.PriceTimestamp
		out.PriceTimestamp = &timestamp
	}
	return out
}

func cloneFloat(value *float64) *float64 {
	if value == nil {
		return nil
	}
	out := *value
	return &out
}
