package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"coinassist/internal/application/ports"
	"coinassist/internal/config"
	"coinassist/internal/domain/models"
)

// coinIDs maps ticker symbols to CoinGecko coin ids
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"XRP":   "ripple",
	"DOT":   "polkadot",
	"MATIC": "matic-network",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
}

// Adapter implements the PriceSourcePort interface for the CoinGecko free
// API. Symbols without a known CoinGecko id count as unsupported and
// normalize to models.ErrSourceUnavailable like any other failure.
type Adapter struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a CoinGecko adapter
func New(cfg config.CoinGeckoConfig, logger *slog.Logger) ports.PriceSourcePort {
	return &Adapter{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Name returns the source name
func (a *Adapter) Name() string {
	return "coingecko"
}

type coinResponse struct {
	Name       string `json:"name"`
	MarketData struct {
		CurrentPrice struct {
			USD float64 `json:"usd"`
		} `json:"current_price"`
		MarketCap struct {
			USD float64 `json:"usd"`
		} `json:"market_cap"`
		PriceChange24h float64 `json:"price_change_percentage_24h"`
		TotalVolume    struct {
			USD float64 `json:"usd"`
		} `json:"total_volume"`
	} `json:"market_data"`
}

// FetchPrice fetches the current quote for a symbol
func (a *Adapter) FetchPrice(ctx context.Context, symbol string) (*models.PriceQuote, error) {
	symbol = strings.ToUpper(symbol)

	coinID, ok := coinIDs[symbol]
	if !ok {
		return nil, fmt.Errorf("coingecko: unsupported symbol %s: %w", symbol, models.ErrSourceUnavailable)
	}

	endpoint := fmt.Sprintf("%s/coins/%s?localization=false&tickers=false&community_data=false&developer_data=false",
		a.baseURL, coinID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("coingecko: %v: %w", err, models.ErrSourceUnavailable)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko: %v: %w", err, models.ErrSourceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko: status %d: %w", resp.StatusCode, models.ErrSourceUnavailable)
	}

	var body coinResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("coingecko: malformed response: %w", models.ErrSourceUnavailable)
	}

	return &models.PriceQuote{
		Symbol:    symbol,
		Name:      body.Name,
		Price:     body.MarketData.CurrentPrice.USD,
		MarketCap: body.MarketData.MarketCap.USD,
		Change24h: body.MarketData.PriceChange24h,
		Volume24h: body.MarketData.TotalVolume.USD,
		FetchedAt: time.Now(),
	}, nil
}
