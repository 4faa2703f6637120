package auth

import (
	"sync"
	"time"
)

const (
	throttleMaxAttempts = 5
	throttleWindow      = 5 * time.Minute
	throttleBlock       = 15 * time.Minute
)

// Throttle is an in-memory brute-force guard for login attempts. Failures
// are counted per key (client address + email) inside a sliding window;
// exceeding the limit blocks the key temporarily.
type Throttle struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	blocked  map[string]time.Time
	now      func() time.Time
}

// NewThrottle creates a throttle with default limits.
func NewThrottle() *Throttle {
	return &Throttle{
		attempts: make(map[string][]time.Time),
		blocked:  make(map[string]time.Time),
		now:      time.Now,
	}
}

// Blocked reports whether the key is currently locked out.
func (t *Throttle) Blocked(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	until, ok := t.blocked[key]
	if !ok {
		return false
	}
	if t.now().After(until) {
		delete(t.blocked, key)
		delete(t.attempts, key)
		return false
	}
	return true
}

// Fail records a failed attempt for the key and blocks it once the window
// limit is exceeded.
func (t *Throttle) Fail(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	cutoff := now.Add(-throttleWindow)

	recent := t.attempts[key][:0]
	for _, at := range t.attempts[key] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}
	recent = append(recent, now)
	t.attempts[key] = recent

	if len(recent) >= throttleMaxAttempts {
		t.blocked[key] = now.Add(throttleBlock)
	}
}

// Reset clears the failure history for the key after a successful login.
func (t *Throttle) Reset(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, key)
	delete(t.blocked, key)
}
