// Package throttle paces outbound API requests to stay under the provider's
// unauthenticated rate limit. Unlike a limiter it never rejects a request,
// it only delays the caller.
package throttle

import "time"

// DefaultInterval keeps a run under the 20 calls/min unauthenticated limit.
const DefaultInterval = 3 * time.Second

// Throttler enforces a minimum interval between consecutive Wait calls.
// It is not safe for concurrent use; all fetching is strictly sequential.
type Throttler struct {
	interval time.Duration
	last     time.Time

	// Injectable for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a throttler with the given minimum interval. A non-positive
// interval falls back to DefaultInterval.
func New(interval time.Duration) *Throttler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Throttler{
		interval: interval,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Wait blocks until at least the configured interval has elapsed since the
// previous Wait returned. The very first call of a run returns immediately.
func (t *Throttler) Wait() {
	if !t.last.IsZero() {
		if remaining := t.interval - t.now().Sub(t.last); remaining > 0 {
			t.sleep(remaining)
		}
	}
	t.last = t.now()
}
