package auth

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SignInThrottle limits failed sign-in attempts per email address
type SignInThrottle struct {
	mu       sync.Mutex
	limiters map[string]*throttleEntry
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewSignInThrottle allows perMinute failures per address with the given burst
func NewSignInThrottle(perMinute, burst int) *SignInThrottle {
	if perMinute <= 0 {
		perMinute = 5
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &SignInThrottle{
		limiters: make(map[string]*throttleEntry),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		idle:     30 * time.Minute,
	}
}

func (t *SignInThrottle) entry(email string) *throttleEntry {
	key := strings.ToLower(strings.TrimSpace(email))
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.limiters[key]
	if !ok {
		e = &throttleEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.limiters[key] = e
	}
	e.lastSeen = now
	return e
}

// Blocked reports whether the address has used up its failure budget
func (t *SignInThrottle) Blocked(email string) bool {
	return t.entry(email).limiter.Tokens() < 1
}

// Failure spends one token for email
func (t *SignInThrottle) Failure(email string) {
	t.entry(email).limiter.Allow()
}

// Sweep forgets addresses idle for longer than the idle window
func (t *SignInThrottle) Sweep() {
	cutoff := time.Now().Add(-t.idle)
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, e := range t.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(t.limiters, k)
		}
	}
}
