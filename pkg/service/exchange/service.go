// Package exchange supplies conversion rates between currency pairs, using
// time-bounded caching to limit external calls and degrading gracefully
// when sources fail: primary source, then fallback source, then stale
// cache, then a typed error.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/kreso2/costwise/pkg/cache"
	"github.com/kreso2/costwise/pkg/provider"
)

// DefaultCacheTTL is how long a fetched rate is considered fresh.
const DefaultCacheTTL = 5 * time.Minute

// Snapshot source tags.
const (
	SourceLocal    = "local"
	SourceAPI      = "api"
	SourceFallback = "fallback-api"
	SourceCache    = "cache"
)

// Service provides exchange rates with caching and ordered fallback
// sourcing. Concurrent lookups for different pairs are safe; cache writes
// are last-write-wins.
type Service struct {
	providers []provider.ExchangeRate
	cache     cache.ExchangeRateCache
	ttl       time.Duration
	logger    *slog.Logger
}

// New creates an exchange service. Providers are tried in order: the first
// is the primary source, the rest are fallbacks.
func New(providers []provider.ExchangeRate, rateCache cache.ExchangeRateCache, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		providers: providers,
		cache:     rateCache,
		ttl:       ttl,
		logger:    logger,
	}
}

func cacheKey(from, to string) string {
	return fmt.Sprintf("%s:%s", from, to)
}

func normalizePair(from, to string) (string, string) {
	return strings.ToUpper(strings.TrimSpace(from)), strings.ToUpper(strings.TrimSpace(to))
}

func identitySnapshot(from, to string) *provider.Snapshot {
	now := time.Now()
	return &provider.Snapshot{
		From:      from,
		To:        to,
		Rate:      1,
		Timestamp: now,
		Source:    SourceLocal,
		ExpiresAt: now.Add(24 * time.Hour),
	}
}

func sourceTag(providerIndex int) string {
	if providerIndex == 0 {
		return SourceAPI
	}
	return SourceFallback
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsNaN(rate) && !math.IsInf(rate, 0)
}

// GetRate returns the conversion rate from one currency to another.
//
// Equal codes short-circuit to an identity snapshot without any network
// call. A fresh cached snapshot is returned unchanged. Otherwise sources
// are tried in order; a success caches the full table. When every source
// fails, an expired cache entry is served as a last resort, tagged
// "cache"; with nothing cached the typed ErrRateUnavailable surfaces.
func (s *Service) GetRate(ctx context.Context, from, to string) (*provider.Snapshot, error) {
	from, to = normalizePair(from, to)
	if from == to {
		return identitySnapshot(from, to), nil
	}

	key := cacheKey(from, to)
	cached, err := s.cache.Get(key)
	if err != nil {
		s.logger.Warn("cache read failed", "key", key, "error", err)
	}
	if cached != nil && cached.Fresh(time.Now()) {
		s.logger.Debug("rate served from cache", "from", from, "to", to, "rate", cached.Rate)
		return cached, nil
	}

	snapshot, fetchErr := s.fetchPair(ctx, from, to)
	if fetchErr == nil {
		return snapshot, nil
	}

	// Stale cache is better than no rate at all, but only for source
	// failures; a table that simply lacks the currency is a hard error.
	if cached != nil && !errors.Is(fetchErr, provider.ErrCurrencyNotFound) {
		s.logger.Warn("all providers failed, serving stale cached rate",
			"from", from, "to", to, "age", time.Since(cached.Timestamp), "error", fetchErr)
		stale := *cached
		stale.Source = SourceCache
		return &stale, nil
	}

	return nil, fetchErr
}

// GetRates returns snapshots for multiple targets against one base,
// amortizing a single table fetch across the lookups. Targets absent from
// the fetched table are silently omitted; callers handle missing entries.
func (s *Service) GetRates(ctx context.Context, base string, targets []string) (map[string]*provider.Snapshot, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	results := make(map[string]*provider.Snapshot, len(targets))
	var missing []string

	for _, target := range targets {
		target = strings.ToUpper(strings.TrimSpace(target))
		if target == base {
			results[target] = identitySnapshot(base, target)
			continue
		}
		cached, err := s.cache.Get(cacheKey(base, target))
		if err == nil && cached != nil && cached.Fresh(time.Now()) {
			results[target] = cached
			continue
		}
		missing = append(missing, target)
	}

	if len(missing) == 0 {
		return results, nil
	}

	table, source, err := s.fetchTable(ctx, base)
	if err != nil {
		if len(results) > 0 {
			s.logger.Warn("table fetch failed, returning partial cached results",
				"base", base, "missing", missing, "error", err)
			return results, nil
		}
		return nil, err
	}

	s.cacheTable(base, table, source)
	for _, target := range missing {
		rate, ok := table[target]
		if !ok || !validRate(rate) {
			continue
		}
		snap, err := s.cache.Get(cacheKey(base, target))
		if err == nil && snap != nil {
			results[target] = snap
		}
	}
	return results, nil
}

// ClearCache drops every cached rate.
func (s *Service) ClearCache() error {
	return s.cache.Clear()
}

// fetchPair fetches a table for the base and extracts one pair, caching
// the whole table on success.
func (s *Service) fetchPair(ctx context.Context, from, to string) (*provider.Snapshot, error) {
	table, source, err := s.fetchTable(ctx, from)
	if err != nil {
		return nil, err
	}

	s.cacheTable(from, table, source)

	rate, ok := table[to]
	if !ok || !validRate(rate) {
		return nil, fmt.Errorf("%w: %s in table for base %s", provider.ErrCurrencyNotFound, to, from)
	}

	snapshot, cacheErr := s.cache.Get(cacheKey(from, to))
	if cacheErr != nil || snapshot == nil {
		// Cache write did not stick; serve the fetched value anyway.
		now := time.Now()
		snapshot = &provider.Snapshot{
			From:      from,
			To:        to,
			Rate:      rate,
			Timestamp: now,
			Source:    source,
			ExpiresAt: now.Add(s.ttl),
		}
	}
	return snapshot, nil
}

// fetchTable tries each provider in order and returns the first valid
// table along with the source tag for snapshots built from it.
func (s *Service) fetchTable(ctx context.Context, base string) (map[string]float64, string, error) {
	var lastErr error
	for i, p := range s.providers {
		table, err := p.GetRates(ctx, base)
		if err != nil {
			s.logger.Warn("rate source failed", "provider", p.Name(), "base", base, "error", err)
			lastErr = err
			continue
		}
		s.logger.Info("rate table fetched", "provider", p.Name(), "base", base, "count", len(table))
		return table, sourceTag(i), nil
	}
	if lastErr != nil {
		return nil, "", fmt.Errorf("%w: %v", provider.ErrRateUnavailable, lastErr)
	}
	return nil, "", provider.ErrRateUnavailable
}

func (s *Service) cacheTable(base string, table map[string]float64, source string) {
	now := time.Now()
	for target, rate := range table {
		if target == base || !validRate(rate) {
			continue
		}
		snap := &provider.Snapshot{
			From:      base,
			To:        target,
			Rate:      rate,
			Timestamp: now,
			Source:    source,
			ExpiresAt: now.Add(s.ttl),
		}
		if err := s.cache.Set(cacheKey(base, target), snap, s.ttl); err != nil {
			s.logger.Warn("failed to cache rate", "from", base, "to", target, "error", err)
		}
	}
}
