package currency_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kreso2/costwise/infra/cache"
	"github.com/kreso2/costwise/pkg/provider"
	"github.com/kreso2/costwise/pkg/service/exchange"
	currencyapi "github.com/kreso2/costwise/webapi/currency"
)

type staticProvider struct {
	tables map[string]map[string]float64
	err    error
}

func (p *staticProvider) GetRates(_ context.Context, base string) (map[string]float64, error) {
	if p.err != nil {
		return nil, p.err
	}
	table, ok := p.tables[base]
	if !ok {
		return nil, provider.ErrRateUnavailable
	}
	return table, nil
}

func (p *staticProvider) Name() string { return "static" }

func newTestApp(p provider.ExchangeRate) *fiber.App {
	svc := exchange.New([]provider.ExchangeRate{p}, cache.NewMemoryCache(), time.Minute, nil)
	app := fiber.New()
	currencyapi.Routes(app, svc)
	return app
}

func get(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestListCurrencies(t *testing.T) {
	app := newTestApp(&staticProvider{})

	status, body := get(t, app, "/api/currencies")
	require.Equal(t, fiber.StatusOK, status)

	codes := map[string]bool{}
	for _, item := range body["data"].([]any) {
		codes[item.(map[string]any)["code"].(string)] = true
	}
	assert.True(t, codes["USD"])
	assert.True(t, codes["EUR"])
}

func TestGetCurrency(t *testing.T) {
	app := newTestApp(&staticProvider{})

	status, body := get(t, app, "/api/currencies/usd")
	require.Equal(t, fiber.StatusOK, status)

	data := body["data"].(map[string]any)
	assert.Equal(t, "USD", data["code"])
	assert.Equal(t, "$", data["symbol"])
}

func TestGetCurrency_InvalidCode(t *testing.T) {
	app := newTestApp(&staticProvider{})

	status, _ := get(t, app, "/api/currencies/us")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGetCurrency_Unknown(t *testing.T) {
	app := newTestApp(&staticProvider{})

	status, _ := get(t, app, "/api/currencies/zzz")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestGetRate(t *testing.T) {
	app := newTestApp(&staticProvider{tables: map[string]map[string]float64{
		"EUR": {"USD": 1.1},
	}})

	status, body := get(t, app, "/api/rates/EUR/USD")
	require.Equal(t, fiber.StatusOK, status)

	data := body["data"].(map[string]any)
	assert.InDelta(t, 1.1, data["rate"].(float64), 1e-9)
	assert.Equal(t, exchange.SourceAPI, data["source"])
}

func TestGetRate_Identity(t *testing.T) {
	app := newTestApp(&staticProvider{})

	status, body := get(t, app, "/api/rates/USD/USD")
	require.Equal(t, fiber.StatusOK, status)

	data := body["data"].(map[string]any)
	assert.InDelta(t, 1, data["rate"].(float64), 1e-9)
	assert.Equal(t, exchange.SourceLocal, data["source"])
}

func TestGetRate_Unavailable(t *testing.T) {
	app := newTestApp(&staticProvider{err: provider.ErrRateUnavailable})

	status, _ := get(t, app, "/api/rates/EUR/USD")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestClearRateCache(t *testing.T) {
	app := newTestApp(&staticProvider{tables: map[string]map[string]float64{
		"EUR": {"USD": 1.1},
	}})

	status, _ := get(t, app, "/api/rates/EUR/USD")
	require.Equal(t, fiber.StatusOK, status)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/rates/cache", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
