package notion

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinInterval spaces outbound requests for Notion's 3 requests per
// second integration quota (1s / 3 ≈ 334ms).
const DefaultMinInterval = 334 * time.Millisecond

// Pacer serializes outbound API calls so that consecutive dispatches are
// at least a minimum interval apart. One Pacer is shared per client
// lifetime; retries go through the same gate as first attempts. Waiters
// are served in FIFO call order.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a Pacer enforcing the given minimum interval between
// dispatches. A non-positive interval falls back to DefaultMinInterval.
func NewPacer(minInterval time.Duration) *Pacer {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Wait blocks until the caller may dispatch, or until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
