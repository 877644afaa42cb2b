package freecrypto

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coinassist/internal/application/ports"
	"coinassist/internal/config"
	"coinassist/internal/domain/models"
)

// Adapter implements the PriceSourcePort interface for FreeCryptoAPI.
// Every failure mode is normalized to models.ErrSourceUnavailable; the
// adapter never retries.
type Adapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a FreeCryptoAPI adapter
func New(cfg config.FreeCryptoConfig, logger *slog.Logger) ports.PriceSourcePort {
	return &Adapter{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Name returns the source name
func (a *Adapter) Name() string {
	return "freecryptoapi"
}

type quoteResponse struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	MarketCap float64 `json:"market_cap"`
	Change24h float64 `json:"change_24h"`
	Volume24h float64 `json:"volume_24h"`
}

// FetchPrice fetches the current quote for a symbol
func (a *Adapter) FetchPrice(ctx context.Context, symbol string) (*models.PriceQuote, error) {
	endpoint := fmt.Sprintf("%s/getData?symbol=%s", a.baseURL, url.QueryEscape(strings.ToUpper(symbol)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("freecryptoapi: %v: %w", err, models.ErrSourceUnavailable)
	}
	req.Header.Set("X-API-KEY", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("freecryptoapi: %v: %w", err, models.ErrSourceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("freecryptoapi: status %d: %w", resp.StatusCode, models.ErrSourceUnavailable)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("freecryptoapi: malformed response: %w", models.ErrSourceUnavailable)
	}

	return &models.PriceQuote{
		Symbol:    strings.ToUpper(symbol),
		Name:      body.Name,
		Price:     body.Price,
		MarketCap: body.MarketCap,
		Change24h: body.Change24h,
		Volume24h: body.Volume24h,
		FetchedAt: time.Now(),
	}, nil
}
