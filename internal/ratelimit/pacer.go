package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time for the pacer and the fetch loop so tests can run on
// a virtual timeline.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SystemClock returns the wall-clock implementation.
func SystemClock() Clock { return systemClock{} }

// Pacer enforces a minimum interval between successive calls. The first
// Wait returns immediately; each later Wait blocks until the interval since
// the previous one has elapsed.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	clock    Clock
	next     time.Time
}

type Config struct {
	Interval time.Duration
	Clock    Clock
}

func New(cfg Config) *Pacer {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	return &Pacer{
		interval: cfg.Interval,
		clock:    cfg.Clock,
	}
}

// Mark records a call issued outside Wait, so the next Wait blocks for the
// full interval relative to it.
func (p *Pacer) Mark() {
	p.mu.Lock()
	p.next = p.clock.Now().Add(p.interval)
	p.mu.Unlock()
}

func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := p.clock.Now()
	wait := p.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	p.next = now.Add(wait + p.interval)
	p.mu.Unlock()

	if wait == 0 {
		return ctx.Err()
	}
	return p.clock.Sleep(ctx, wait)
}
