// Package provider defines the contract external exchange-rate sources
// implement, plus the snapshot type the rest of the engine consumes.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRateUnavailable indicates no fresh, fallback, or cached rate could
	// be produced for a requested currency pair.
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// ErrCurrencyNotFound indicates the target currency was absent from a
	// successfully fetched rate table. It wraps ErrRateUnavailable so
	// callers matching the broader class still catch it.
	ErrCurrencyNotFound = fmt.Errorf("currency missing from rate table: %w", ErrRateUnavailable)
)

// Snapshot is a cached, timestamped conversion factor between two
// currencies: amountIn(To) = amountIn(From) × Rate.
type Snapshot struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Rate      float64   `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Fresh reports whether the snapshot is still within its time-to-live.
func (s *Snapshot) Fresh(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// ExchangeRate is implemented by external rate sources. A source returns
// the full rate table for a base currency in one call; extracting
// individual pairs is the service's job.
type ExchangeRate interface {
	// GetRates fetches the complete currency-code → rate mapping for the
	// given base currency.
	GetRates(ctx context.Context, base string) (map[string]float64, error)

	// Name identifies the source in logs and snapshot provenance.
	Name() string
}
