package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kreso2/costwise/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExchangeRateAPIProvider_GetRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-key/latest/USD", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"result": "success",
			"base_code": "USD",
			"time_last_update_unix": 1585267200,
			"conversion_rates": {"USD": 1, "EUR": 0.85, "GBP": 0.78}
		}`))
	}))
	defer server.Close()

	p := NewExchangeRateAPIProvider(config.ExchangeRateAPI{
		APIKey:      "test-key",
		APIURL:      server.URL,
		HTTPTimeout: 5 * time.Second,
	}, discardLogger())

	rates, err := p.GetRates(context.Background(), "USD")
	require.NoError(t, err)
	assert.InDelta(t, 0.85, rates["EUR"], 1e-9)
	assert.InDelta(t, 1.0, rates["USD"], 1e-9)
	assert.Len(t, rates, 3)
}

func TestExchangeRateAPIProvider_ErrorResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": "error", "error-type": "invalid-key"}`))
	}))
	defer server.Close()

	p := NewExchangeRateAPIProvider(config.ExchangeRateAPI{
		APIKey:      "bad-key",
		APIURL:      server.URL,
		HTTPTimeout: 5 * time.Second,
	}, discardLogger())

	_, err := p.GetRates(context.Background(), "USD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid-key")
}

func TestExchangeRateAPIProvider_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewExchangeRateAPIProvider(config.ExchangeRateAPI{
		APIKey:      "test-key",
		APIURL:      server.URL,
		HTTPTimeout: 5 * time.Second,
	}, discardLogger())

	_, err := p.GetRates(context.Background(), "USD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestFrankfurterProvider_GetRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "EUR", r.URL.Query().Get("base"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"EUR","date":"2025-08-29","rates":{"USD":1.09,"GBP":0.84}}`))
	}))
	defer server.Close()

	p := NewFrankfurterProvider(config.FallbackRateAPI{
		APIURL:      server.URL,
		HTTPTimeout: 5 * time.Second,
	}, discardLogger())

	rates, err := p.GetRates(context.Background(), "EUR")
	require.NoError(t, err)
	assert.InDelta(t, 1.09, rates["USD"], 1e-9)
	assert.InDelta(t, 1.0, rates["EUR"], 1e-9, "identity entry is added for the base")
}

func TestFrankfurterProvider_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	p := NewFrankfurterProvider(config.FallbackRateAPI{
		APIURL:      server.URL,
		HTTPTimeout: 5 * time.Second,
	}, discardLogger())

	_, err := p.GetRates(context.Background(), "EUR")
	require.Error(t, err)
}
