package models

import "time"

// CoinMetadata holds the static facts for a coin. Loaded from the knowledge
// file at startup and never mutated by the pipeline.
type CoinMetadata struct {
	Description string   `json:"description,omitempty"`
	LaunchYear  int      `json:"launch_year,omitempty"`
	Creator     string   `json:"creator,omitempty"`
	Consensus   string   `json:"consensus,omitempty"`
	ChainType   string   `json:"chain_type,omitempty"`
	MaxSupply   *float64 `json:"max_supply,omitempty"`
}

// CoinRecord represents one known coin in the knowledge store.
// PriceTimestamp is non-nil exactly when all four price fields are non-nil:
// a price update writes all of them together or none at all.
type CoinRecord struct {
	Symbol         string        `json:"symbol"`
	Name           string        `json:"name"`
	Metadata       *CoinMetadata `json:"metadata,omitempty"`
	LastPrice      *float64      `json:"last_price,omitempty"`
	MarketCap      *float64      `json:"market_cap,omitempty"`
	Change24h      *float64      `json:"change_24h,omitempty"`
	Volume24h      *float64      `json:"volume_24h,omitempty"`
	PriceTimestamp *time.Time    `json:"price_timestamp,omitempty"`
}

// HasPrice reports whether the record carries cached price data.
func (r *CoinRecord) HasPrice() bool {
	return r != nil && r.PriceTimestamp != nil
}

// PriceQuote represents a successful fetch from an external price source.
type PriceQuote struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name,omitempty"`
	Price     float64   `json:"price"`
	MarketCap float64   `json:"market_cap"`
	Change24h float64   `json:"change_24h"`
	Volume24h float64   `json:"volume_24h"`
	FetchedAt time.Time `json:"fetched_at"`
}
