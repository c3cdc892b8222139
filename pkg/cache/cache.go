package cache

import (
	"time"

	"github.com/kreso2/costwise/pkg/provider"
)

// ExchangeRateCache defines the interface for caching exchange rate
// snapshots.
//
// Get returns entries even after their TTL has elapsed; staleness is judged
// by the caller via Snapshot.ExpiresAt. Expired entries stay servable as a
// last resort when every live source fails.
type ExchangeRateCache interface {
	Get(key string) (*provider.Snapshot, error)
	Set(key string, snapshot *provider.Snapshot, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}
