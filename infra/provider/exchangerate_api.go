// Package provider contains HTTP implementations of the exchange-rate
// source contract. Two independently addressable sources with the same
// logical shape are provided: exchangerate-api.com (primary) and
// frankfurter.dev (fallback).
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kreso2/costwise/pkg/config"
	"github.com/kreso2/costwise/pkg/provider"
)

// ExchangeRateAPIProvider implements provider.ExchangeRate for the
// exchangerate-api.com v6 endpoint.
type ExchangeRateAPIProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// exchangeRateAPIResponse is the v6 response shape.
// See: https://www.exchangerate-api.com/docs/standard-requests
type exchangeRateAPIResponse struct {
	Result             string             `json:"result"`
	BaseCode           string             `json:"base_code"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	ConversionRates    map[string]float64 `json:"conversion_rates"`
	ErrorType          string             `json:"error-type,omitempty"`
}

// NewExchangeRateAPIProvider creates a new ExchangeRate API provider using config.
func NewExchangeRateAPIProvider(cfg config.ExchangeRateAPI, logger *slog.Logger) *ExchangeRateAPIProvider {
	return &ExchangeRateAPIProvider{
		apiKey:  cfg.APIKey,
		baseURL: cfg.APIURL,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: logger,
	}
}

// GetRates fetches the full rate table for the base currency.
func (p *ExchangeRateAPIProvider) GetRates(ctx context.Context, base string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", p.baseURL, p.apiKey, base)

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

	var apiResp exchangeRateAPIResponse
	if err = json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Result != "success" {
		return nil, fmt.Errorf("API returned result=%s error-type=%s", apiResp.Result, apiResp.ErrorType)
	}
	if len(apiResp.ConversionRates) == 0 {
		return nil, fmt.Errorf("API returned empty rate table for base %s", base)
	}

	p.logger.Debug("fetched rate table",
		"provider", p.Name(),
		"base", base,
		"count", len(apiResp.ConversionRates),
		"last_update", time.Unix(apiResp.TimeLastUpdateUnix, 0).UTC(),
	)
	return apiResp.ConversionRates, nil
}

// Name returns the provider's name.
func (p *ExchangeRateAPIProvider) Name() string { return "exchangerate-api" }

var _ provider.ExchangeRate = (*ExchangeRateAPIProvider)(nil)
