package submitter

import (
	"context"
	"time"
)

// SubmitDelay is the minimum gap enforced between consecutive Toggl create
// calls. Toggl rejects requests outright above its per-second ceiling, so the
// gap must sit between real submission attempts only, never after a
// duplicate skip.
const SubmitDelay = 1000 * time.Millisecond

// Pacer enforces the inter-submission delay.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedDelayPacer sleeps a fixed interval per Wait call.
type FixedDelayPacer struct {
	delay time.Duration
	sleep func(ctx context.Context, delay time.Duration) error
}

func NewFixedDelayPacer(delay time.Duration) *FixedDelayPacer {
	return &FixedDelayPacer{delay: delay, sleep: sleepContext}
}

func (p *FixedDelayPacer) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}
	return p.sleep(ctx, p.delay)
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
