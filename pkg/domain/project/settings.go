package project

import (
	"errors"

	"github.com/kreso2/costwise/pkg/currency"
)

// DefaultMonthlyHoursStandard is the reference full-time-month hour count
// used when settings do not override it.
const DefaultMonthlyHoursStandard = 160.0

var (
	// ErrInvalidDuration is returned when a project duration below one
	// month reaches the aggregator.
	ErrInvalidDuration = errors.New("project duration must be at least one month")

	// ErrMissingRate is returned when a role's currency has no entry in the
	// supplied rate table. The caller decides the degradation policy; the
	// fold never substitutes 1:1 on its own.
	ErrMissingRate = errors.New("no conversion rate for role currency")
)

// Settings holds project-wide parameters.
type Settings struct {
	DurationMonths int `json:"durationMonths"`
	// MonthlyHoursStandard is a reference full-time-month hour count. It
	// feeds the advisor's over-allocation estimates, not the monthly
	// breakdown, which splits TotalHours across the duration.
	MonthlyHoursStandard float64 `json:"monthlyHoursStandard"`
	// TargetCurrency is the currency all aggregates are reported in.
	TargetCurrency currency.Code `json:"targetCurrency"`
	// ExchangeRateBaseCurrency records the base currency the project's
	// rates are expressed against; it defaults to TargetCurrency and is
	// informational. Rate lookups fetch per role-currency pair, so the
	// table base is always the role's own currency, never this field.
	ExchangeRateBaseCurrency currency.Code `json:"exchangeRateBaseCurrency"`
}

// Normalized returns a copy with defaults filled in and codes upper-cased.
func (s Settings) Normalized() Settings {
	out := s
	if out.MonthlyHoursStandard <= 0 {
		out.MonthlyHoursStandard = DefaultMonthlyHoursStandard
	}
	if out.TargetCurrency == "" {
		out.TargetCurrency = currency.DefaultCode
	}
	out.TargetCurrency = out.TargetCurrency.Normalize()
	if out.ExchangeRateBaseCurrency == "" {
		out.ExchangeRateBaseCurrency = out.TargetCurrency
	}
	out.ExchangeRateBaseCurrency = out.ExchangeRateBaseCurrency.Normalize()
	return out
}

// RateTable maps a currency code to the multiplicative factor into the
// project's target currency.
type RateTable map[currency.Code]float64

// RateFor returns the factor converting from the given currency into the
// target. Equal codes are always an identity without a table lookup.
func (t RateTable) RateFor(from, target currency.Code) (float64, bool) {
	if from.Equal(target) {
		return 1, true
	}
	rate, ok := t[from.Normalize()]
	return rate, ok
}
