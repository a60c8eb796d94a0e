package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// Write-heavy clients are mostly the email ingestion pipeline replaying
// candidates; 60 mutations a minute per address is far above any legitimate
// interactive use.
const (
	writeRequestLimit = 60
	writeWindow       = time.Minute
)

// rateLimiter counts mutating requests per client IP over a fixed window.
type rateLimiter struct {
	limit  int
	window time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor

	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	windowStart time.Time
	count       int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		limit:    limit,
		window:   window,
		visitors: make(map[string]*visitor),
		done:     make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// sweep drops visitors that have been idle for several windows, keeping the
// map bounded on long-running servers.
func (rl *rateLimiter) sweep() {
	ticker := time.NewTicker(5 * rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-10 * rl.window)
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if v.windowStart.Before(cutoff) {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow reports whether another mutating request from clientIP fits in the
// current window.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[clientIP]
	if !ok || now.Sub(v.windowStart) > rl.window {
		rl.visitors[clientIP] = &visitor{windowStart: now, count: 1}
		return true
	}

	v.count++
	if v.count > rl.limit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}
