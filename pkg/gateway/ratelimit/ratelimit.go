// Package ratelimit provides a single-process, per-client limiter: a token
// bucket for request bursts plus a cap on concurrently open relay sessions.
package ratelimit

import (
	"sync"
	"time"
)

type Config struct {
	RPS   float64
	Burst int

	MaxConcurrentSessions int

	// Operational bounds for the in-memory map.
	MaxEntries int
	EntryTTL   time.Duration
}

type Limiter struct {
	cfg Config

	mu sync.Mutex
	m  map[string]*clientLimiter
}

type clientLimiter struct {
	mu sync.Mutex

	tb tokenBucket

	sessionSem chan struct{}

	lastSeen time.Time
}

type tokenBucket struct {
	tokens float64
	last   time.Time
}

func New(cfg Config) *Limiter {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10_000
	}
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = 30 * time.Minute
	}
	return &Limiter{
		cfg: cfg,
		m:   make(map[string]*clientLimiter),
	}
}

type Permit struct {
	release func()
}

func (p *Permit) Release() {
	if p == nil || p.release == nil {
		return
	}
	p.release()
	p.release = nil
}

type Decision struct {
	Allowed    bool
	RetryAfter int
	Permit     *Permit
}

// AllowRequest applies the token bucket to a plain HTTP request.
func (l *Limiter) AllowRequest(client string, now time.Time) Decision {
	if l == nil {
		return Decision{Allowed: true, Permit: &Permit{release: func() {}}}
	}
	if client == "" {
		client = "anonymous"
	}

	cl := l.getOrCreate(client, now)
	cl.touch(now)

	if l.cfg.RPS > 0 && l.cfg.Burst > 0 {
		ok, retryAfter := cl.allowToken(now, l.cfg.RPS, l.cfg.Burst)
		if !ok {
			return Decision{Allowed: false, RetryAfter: retryAfter}
		}
	}
	return Decision{Allowed: true, Permit: &Permit{release: func() {}}}
}

// AcquireSession reserves a concurrent relay-session slot for the client.
// The returned permit must be released when the session ends.
func (l *Limiter) AcquireSession(client string, now time.Time) Decision {
	if l == nil {
		return Decision{Allowed: true, Permit: &Permit{release: func() {}}}
	}
	if client == "" {
		client = "anonymous"
	}

	cl := l.getOrCreate(client, now)
	cl.touch(now)

	if l.cfg.MaxConcurrentSessions > 0 {
		select {
		case cl.sessionSem <- struct{}{}:
			return Decision{
				Allowed: true,
				Permit:  &Permit{release: func() { <-cl.sessionSem }},
			}
		default:
			return Decision{Allowed: false, RetryAfter: 1}
		}
	}

	return Decision{Allowed: true, Permit: &Permit{release: func() {}}}
}

func (l *Limiter) getOrCreate(client string, now time.Time) *clientLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cl, ok := l.m[client]; ok {
		return cl
	}

	if len(l.m) >= l.cfg.MaxEntries {
		l.evictLocked(now)
	}

	sem := l.cfg.MaxConcurrentSessions
	if sem <= 0 {
		sem = 1
	}
	cl := &clientLimiter{
		tb:         tokenBucket{tokens: float64(l.cfg.Burst), last: now},
		sessionSem: make(chan struct{}, sem),
		lastSeen:   now,
	}
	l.m[client] = cl
	return cl
}

// evictLocked drops entries idle past the TTL. Entries holding a session slot
// are never evicted.
func (l *Limiter) evictLocked(now time.Time) {
	for key, cl := range l.m {
		cl.mu.Lock()
		idle := now.Sub(cl.lastSeen) > l.cfg.EntryTTL
		busy := len(cl.sessionSem) > 0
		cl.mu.Unlock()
		if idle && !busy {
			delete(l.m, key)
		}
	}
}

func (cl *clientLimiter) touch(now time.Time) {
	cl.mu.Lock()
	cl.lastSeen = now
	cl.mu.Unlock()
}

func (cl *clientLimiter) allowToken(now time.Time, rps float64, burst int) (bool, int) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	elapsed := now.Sub(cl.tb.last).Seconds()
	if elapsed > 0 {
		cl.tb.tokens += elapsed * rps
		if cl.tb.tokens > float64(burst) {
			cl.tb.tokens = float64(burst)
		}
	}
	cl.tb.last = now

	if cl.tb.tokens >= 1 {
		cl.tb.tokens--
		return true, 0
	}

	deficit := 1 - cl.tb.tokens
	retryAfter := int(deficit/rps) + 1
	return false, retryAfter
}
