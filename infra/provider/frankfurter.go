package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/kreso2/costwise/pkg/config"
	"github.com/kreso2/costwise/pkg/provider"
)

// FrankfurterProvider implements provider.ExchangeRate for the ECB-backed
// frankfurter.dev API. It needs no API key, which makes it a natural
// secondary source.
type FrankfurterProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// frankfurterResponse is the latest-rates response shape.
// Example: {"base":"EUR","date":"2006-01-02","rates":{"USD":1.09}}
type frankfurterResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// NewFrankfurterProvider creates a new frankfurter.dev provider using config.
func NewFrankfurterProvider(cfg config.FallbackRateAPI, logger *slog.Logger) *FrankfurterProvider {
	return &FrankfurterProvider{
		baseURL: cfg.APIURL,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: logger,
	}
}

// GetRates fetches the full rate table for the base currency.
func (p *FrankfurterProvider) GetRates(ctx context.Context, base string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/latest?base=%s", p.baseURL, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp frankfurterResponse
	if err = json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(apiResp.Rates) == 0 {
		return nil, fmt.Errorf("API returned empty rate table for base %s", base)
	}

	// The table never includes the base itself; add the identity entry so
	// lookups behave uniformly across providers.
	apiResp.Rates[base] = 1

	p.logger.Debug("fetched rate table",
		"provider", p.Name(),
		"base", base,
		"count", len(apiResp.Rates),
		"date", apiResp.Date,
	)
	return apiResp.Rates, nil
}

// Name returns the provider's name.
func (p *FrankfurterProvider) Name() string { return "frankfurter" }

var _ provider.ExchangeRate = (*FrankfurterProvider)(nil)
