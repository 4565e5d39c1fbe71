// Package ratelimit throttles FraudSight API clients with per-key
// token buckets. Authenticated clients are keyed by session, anonymous
// ones by IP, so a busy analyst behind a NAT does not starve others.
package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aberkane/fraudsight/internal/session"
)

// Config tunes the limiter.
type Config struct {
	// RequestsPerMinute is the sustained refill rate per key.
	RequestsPerMinute int
	// BurstSize caps how far a key can run ahead of the refill rate.
	BurstSize int
	// CleanupInterval controls how often idle buckets are evicted.
	CleanupInterval time.Duration
}

// DefaultConfig allows one request per second sustained with short
// bursts of ten.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		BurstSize:         10,
		CleanupInterval:   time.Minute,
	}
}

type bucket struct {
	tokens   float64
	refilled time.Time
}

// take refills the bucket for the elapsed time, then spends one token
// if available.
func (b *bucket) take(now time.Time, ratePerSecond, burst float64) bool {
	b.tokens += now.Sub(b.refilled).Seconds() * ratePerSecond
	if b.tokens > burst {
		b.tokens = burst
	}
	b.refilled = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Limiter holds one bucket per client key.
type Limiter struct {
	cfg     Config
	mu      sync.Mutex
	buckets map[string]*bucket
	stop    chan struct{}
}

// New builds a limiter and starts its eviction loop. Call Stop on
// shutdown.
func New(cfg Config) *Limiter {
	l := &Limiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	go l.evictIdle()
	return l
}

func (l *Limiter) evictIdle() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-2 * time.Minute)
			l.mu.Lock()
			for key, b := range l.buckets {
				if b.refilled.Before(cutoff) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}

// Stop ends the eviction loop.
func (l *Limiter) Stop() {
	close(l.stop)
}

// Allow reports whether key may make a request right now.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		l.buckets[key] = &bucket{
			tokens:   float64(l.cfg.BurstSize) - 1,
			refilled: now,
		}
		return true
	}
	return b.take(now, float64(l.cfg.RequestsPerMinute)/60.0, float64(l.cfg.BurstSize))
}

// Middleware rejects over-limit requests with 429. Logged-in clients
// get their own bucket instead of sharing the per-IP one; the key is a
// digest so the raw session token never sits in the limiter map.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if token, err := c.Cookie(session.CookieName); err == nil && token != "" {
			sum := sha256.Sum256([]byte(token))
			key = "sess:" + hex.EncodeToString(sum[:8])
		}

		if !l.Allow(key) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"message":     "Too many requests. Please slow down.",
				"retry_after": 1,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
