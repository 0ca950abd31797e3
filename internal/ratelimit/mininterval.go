package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MinInterval enforces a minimum time between marked calls.
// Callers Wait before the guarded call and Mark once it has been attempted.
type MinInterval struct {
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// Wait blocks until Interval has elapsed since the last Mark, or ctx is done.
func (m *MinInterval) Wait(ctx context.Context) error {
	if m == nil || m.Interval <= 0 {
		return nil
	}
	m.mu.Lock()
	wait := time.Until(m.last.Add(m.Interval))
	m.mu.Unlock()
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Mark records a call at the current time.
func (m *MinInterval) Mark() { m.MarkAt(time.Now()) }

// MarkAt records a call at ts. It is used to seed the gate from persisted state.
func (m *MinInterval) MarkAt(ts time.Time) {
	if m == nil {
		return
	}
	m.mu.Lock()
	if ts.After(m.last) {
		m.last = ts
	}
	m.mu.Unlock()
}
