package inscribe

import (
	"context"
	"fmt"
	"time"
)

// ResubmitPolicy controls how the engine paces retries of a nonce whose
// attempt failed or produced no receipt. Pause is called before every
// resubmission with the number of attempts already made; returning an error
// aborts the whole run.
type ResubmitPolicy interface {
	Pause(ctx context.Context, nonce uint64, attempts uint) error
}

// IndefiniteResubmit retries immediately and forever. This is the default
// policy: a nonce is only retired by a confirmed receipt.
type IndefiniteResubmit struct{}

func (IndefiniteResubmit) Pause(ctx context.Context, nonce uint64, attempts uint) error {
	return ctx.Err()
}

// BackoffResubmit doubles the pause after every failed attempt, up to Max.
type BackoffResubmit struct {
	Initial time.Duration
	Max     time.Duration
}

func (p BackoffResubmit) Pause(ctx context.Context, nonce uint64, attempts uint) error {
	delay := p.Initial
	for i := uint(1); i < attempts && delay < p.Max; i++ {
		delay *= 2
	}
	if delay > p.Max {
		delay = p.Max
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CappedResubmit gives up on a nonce after Limit attempts by failing the run.
type CappedResubmit struct {
	Limit uint
	Next  ResubmitPolicy
}

func (p CappedResubmit) Pause(ctx context.Context, nonce uint64, attempts uint) error {
	if attempts >= p.Limit {
		return fmt.Errorf("nonce %d has been attempted %d times, which is more than the limit %d", nonce, attempts, p.Limit)
	}
	if p.Next != nil {
		return p.Next.Pause(ctx, nonce, attempts)
	}
	return ctx.Err()
}
