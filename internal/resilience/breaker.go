package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrOpen is returned while the breaker rejects calls.
var ErrOpen = eris.New("resilience: backend circuit open")

// Breaker stops calling the backend after Threshold consecutive transient
// failures. After Cooldown one trial call is let through; its outcome closes or
// reopens the breaker.
type Breaker struct {
	Threshold int
	Cooldown  time.Duration

	mu       sync.Mutex
	failures int
	openedAt time.Time
	trial    bool
	now      func() time.Time
}

// NewBreaker creates a closed breaker. Non-positive values fall back to 5
// failures and 30s.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{Threshold: threshold, Cooldown: cooldown, now: time.Now}
}

// Allow returns ErrOpen while the breaker is open.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures < b.Threshold {
		return nil
	}
	if b.trial || b.now().Sub(b.openedAt) < b.Cooldown {
		return ErrOpen
	}
	b.trial = true
	return nil
}

// Release frees the trial slot without recording an outcome. Callers use it
// when their own context ended the call.
func (b *Breaker) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trial = false
}

// Record feeds a call outcome. Only transient errors count as failures.
// A cancelled call frees the trial slot and leaves the state untouched.
func (b *Breaker) Record(err error) {
	if errors.Is(err, context.Canceled) {
		b.Release()
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	wasTrial := b.trial
	b.trial = false

	if err == nil || !IsTransient(err) {
		if b.failures >= b.Threshold {
			zap.L().Info("backend circuit closed")
		}
		b.failures = 0
		return
	}

	b.failures++
	if b.failures >= b.Threshold {
		if !wasTrial && b.failures == b.Threshold {
			zap.L().Warn("backend circuit opened", zap.Int("failures", b.failures), zap.Error(err))
		}
		b.openedAt = b.now()
	}
}

// Open reports whether calls are currently rejected.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures >= b.Threshold && (b.trial || b.now().Sub(b.openedAt) < b.Cooldown)
}
