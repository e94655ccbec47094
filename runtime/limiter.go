package runtime

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultLimiterTTL = 10 * time.Minute
	limiterSweepEvery = time.Minute
)

type limiterEntry struct {
	l        *rate.Limiter
	lastSeen time.Time
}

// SenderLimiter keeps one token bucket per sender. Buckets idle for longer
// than the TTL are dropped. The TTL is never shorter than a full refill, so
// a dropped bucket is indistinguishable from a new one.
type SenderLimiter struct {
	mu        sync.Mutex
	m         map[string]*limiterEntry
	rps       float64
	burst     int
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewSenderLimiter(rps float64, burst int) *SenderLimiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	refill := time.Duration(float64(burst) / rps * float64(time.Second))
	return &SenderLimiter{
		m:     make(map[string]*limiterEntry),
		rps:   rps,
		burst: burst,
		ttl:   max(defaultLimiterTTL, refill),
		now:   time.Now,
	}
}

func (p *SenderLimiter) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	p.sweep(now)
	if e, ok := p.m[key]; ok {
		e.lastSeen = now
		return e.l
	}
	l := rate.NewLimiter(rate.Limit(p.rps), p.burst)
	p.m[key] = &limiterEntry{l: l, lastSeen: now}
	return l
}

// sweep runs at most once per limiterSweepEvery. Callers hold p.mu.
func (p *SenderLimiter) sweep(now time.Time) {
	if now.Sub(p.lastSweep) < limiterSweepEvery {
		return
	}
	p.lastSweep = now
	for key, e := range p.m {
		if now.Sub(e.lastSeen) > p.ttl {
			delete(p.m, key)
		}
	}
}

func (p *SenderLimiter) Allow(key string) bool {
	return p.get(key).Allow()
}

// Len returns the number of senders currently tracked.
func (p *SenderLimiter) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.m)
}
