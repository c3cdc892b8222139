package exchange

import (
	"context"
	"time"

	"github.com/kreso2/costwise/pkg/provider"
)

// Outcome is the tagged result of a time-bounded rate lookup. Callers
// branch on the exact failure mode instead of catching a bare error:
// project creation, for instance, substitutes a 1:1 rate on TimedOut and
// Failed rather than blocking the user.
type Outcome struct {
	Snapshot *provider.Snapshot
	TimedOut bool
	Err      error
}

// OK reports whether the lookup produced a usable snapshot.
func (o Outcome) OK() bool { return o.Err == nil && !o.TimedOut && o.Snapshot != nil }

// GetRateWithTimeout races GetRate against the given timeout and returns a
// tagged outcome. The in-flight fetch is cancelled through the context when
// the deadline passes.
func (s *Service) GetRateWithTimeout(ctx context.Context, from, to string, timeout time.Duration) Outcome {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		snapshot *provider.Snapshot
		err      error
	}
	done := make(chan result, 1)
	go func() {
		snap, err := s.GetRate(ctx, from, to)
		done <- result{snapshot: snap, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return Outcome{TimedOut: true, Err: r.err}
			}
			return Outcome{Err: r.err}
		}
		return Outcome{Snapshot: r.snapshot}
	case <-ctx.Done():
		s.logger.Warn("rate lookup timed out", "from", from, "to", to, "timeout", timeout)
		return Outcome{TimedOut: true, Err: ctx.Err()}
	}
}
