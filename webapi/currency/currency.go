// Package currency exposes the currency metadata and exchange rate
// endpoints.
package currency

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kreso2/costwise/pkg/currency"
	"github.com/kreso2/costwise/pkg/service/exchange"
	"github.com/kreso2/costwise/webapi/common"
)

// CurrencyInfo is the wire form of a registered currency.
type CurrencyInfo struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// RateResponse is the wire form of a resolved exchange rate.
type RateResponse struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Rate      float64 `json:"rate"`
	Source    string  `json:"source"`
	Timestamp int64   `json:"timestamp"`
}

// Routes registers HTTP routes for currency and rate operations.
func Routes(app *fiber.App, exchangeSvc *exchange.Service) {
	currencies := app.Group("/api/currencies")
	currencies.Get("/", ListCurrencies())
	currencies.Get("/:code", GetCurrency())

	rates := app.Group("/api/rates")
	rates.Get("/:from/:to", GetRate(exchangeSvc))
	rates.Delete("/cache", ClearRateCache(exchangeSvc))
}

// ListCurrencies handles GET /api/currencies.
func ListCurrencies() fiber.Handler {
	return func(c *fiber.Ctx) error {
		codes := currency.ListSupported()
		infos := make([]CurrencyInfo, 0, len(codes))
		for _, code := range codes {
			meta, ok := currency.Get(code)
			if !ok {
				continue
			}
			infos = append(infos, CurrencyInfo{
				Code:     code.String(),
				Name:     meta.Name,
				Symbol:   meta.Symbol,
				Decimals: meta.Decimals,
			})
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currencies fetched", infos)
	}
}

// GetCurrency handles GET /api/currencies/:code.
func GetCurrency() fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := currency.Code(c.Params("code")).Normalize()
		if !code.IsValid() {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest,
				"Invalid currency code", "Currency code must be a 3-letter ISO 4217 code")
		}
		meta, ok := currency.Get(code)
		if !ok {
			return common.ErrorResponseJSON(c, fiber.StatusNotFound,
				"Currency not found", code.String())
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currency fetched", CurrencyInfo{
			Code:     code.String(),
			Name:     meta.Name,
			Symbol:   meta.Symbol,
			Decimals: meta.Decimals,
		})
	}
}

// GetRate handles GET /api/rates/:from/:to.
func GetRate(exchangeSvc *exchange.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from := currency.Code(c.Params("from")).Normalize()
		to := currency.Code(c.Params("to")).Normalize()
		if !from.IsValid() || !to.IsValid() {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest,
				"Invalid currency code", "Currency codes must be 3-letter ISO 4217 codes")
		}

		snap, err := exchangeSvc.GetRate(c.Context(), from.String(), to.String())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch rate", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rate fetched", RateResponse{
			From:      snap.From,
			To:        snap.To,
			Rate:      snap.Rate,
			Source:    snap.Source,
			Timestamp: snap.Timestamp.Unix(),
		})
	}
}

// ClearRateCache handles DELETE /api/rates/cache.
func ClearRateCache(exchangeSvc *exchange.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := exchangeSvc.ClearCache(); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to clear rate cache", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rate cache cleared", nil)
	}
}
