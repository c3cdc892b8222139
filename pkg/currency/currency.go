// Package currency provides currency codes, display metadata, and the pure
// conversion arithmetic used by the estimation engine.
//
// The package holds no rate knowledge: callers supply the exact rate to use,
// typically obtained from the exchange service.
package currency

import (
	"sort"
	"strings"
	"sync"
)

const (
	// DefaultCode is the fallback currency code.
	DefaultCode = Code("USD")
	// DefaultDecimals is the default number of decimal places for currencies.
	DefaultDecimals = 2
)

// Code is a 3-letter ISO 4217 currency code (e.g. "USD").
type Code string

// String returns the code as a string.
func (c Code) String() string { return string(c) }

// Normalize returns the code in canonical upper-case form.
func (c Code) Normalize() Code { return Code(strings.ToUpper(strings.TrimSpace(string(c)))) }

// Equal reports whether two codes refer to the same currency,
// ignoring case.
func (c Code) Equal(other Code) bool { return c.Normalize() == other.Normalize() }

// IsValid checks that the code is three ASCII letters.
func (c Code) IsValid() bool {
	n := c.Normalize()
	if len(n) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if n[i] < 'A' || n[i] > 'Z' {
			return false
		}
	}
	return true
}

// Meta holds display metadata for a currency.
type Meta struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// registry guards the currency metadata table. Registration happens at
// startup; reads dominate afterwards.
type registry struct {
	mu         sync.RWMutex
	currencies map[Code]Meta
}

func newRegistry() *registry {
	r := &registry{currencies: make(map[Code]Meta)}
	for code, meta := range map[Code]Meta{
		"USD": {Name: "US Dollar", Symbol: "$", Decimals: 2},
		"EUR": {Name: "Euro", Symbol: "€", Decimals: 2},
		"GBP": {Name: "Pound Sterling", Symbol: "£", Decimals: 2},
		"JPY": {Name: "Japanese Yen", Symbol: "¥", Decimals: 0},
		"CAD": {Name: "Canadian Dollar", Symbol: "C$", Decimals: 2},
		"AUD": {Name: "Australian Dollar", Symbol: "A$", Decimals: 2},
		"CHF": {Name: "Swiss Franc", Symbol: "CHF", Decimals: 2},
		"CNY": {Name: "Chinese Yuan", Symbol: "¥", Decimals: 2},
		"INR": {Name: "Indian Rupee", Symbol: "₹", Decimals: 2},
		"PLN": {Name: "Polish Zloty", Symbol: "zł", Decimals: 2},
		"BRL": {Name: "Brazilian Real", Symbol: "R$", Decimals: 2},
		"SEK": {Name: "Swedish Krona", Symbol: "kr", Decimals: 2},
	} {
		r.currencies[code] = meta
	}
	return r
}

func (r *registry) register(code Code, meta Meta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if meta.Decimals <= 0 && meta.Decimals != 0 {
		meta.Decimals = DefaultDecimals
	}
	r.currencies[code.Normalize()] = meta
}

func (r *registry) get(code Code) (Meta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.currencies[code.Normalize()]
	return meta, ok
}

func (r *registry) list() []Code {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]Code, 0, len(r.currencies))
	for code := range r.currencies {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

var defaultRegistry = newRegistry()

// Register adds or replaces a currency's display metadata.
func Register(code Code, meta Meta) { defaultRegistry.register(code, meta) }

// Get returns the display metadata for a currency code.
func Get(code Code) (Meta, bool) { return defaultRegistry.get(code) }

// IsSupported reports whether display metadata is registered for the code.
func IsSupported(code Code) bool {
	_, ok := defaultRegistry.get(code)
	return ok
}

// ListSupported returns all registered currency codes in sorted order.
func ListSupported() []Code { return defaultRegistry.list() }
