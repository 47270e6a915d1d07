package middleware

import (
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"habittracker/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const anonymousKey = "anonymous"

// RateLimitConfig sizes the limiters. Zero values take the defaults: a
// bucket of 100 tokens refilled at 25 per minute with up to 5 queued
// requests per user, and 5 requests per minute shared by anonymous callers.
// A negative QueueLimit disables queueing.
type RateLimitConfig struct {
	TokenLimit         int
	TokensPerMinute    int
	QueueLimit         int
	AnonymousPerMinute int

	// Identify returns the caller's user id, or "" for anonymous requests.
	Identify func(c *gin.Context) string
	// IdleAfter is how long an unused per-user limiter is kept.
	IdleAfter time.Duration
	Now       func() time.Time
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.TokenLimit <= 0 {
		c.TokenLimit = 100
	}
	if c.TokensPerMinute <= 0 {
		c.TokensPerMinute = 25
	}
	switch {
	case c.QueueLimit == 0:
		c.QueueLimit = 5
	case c.QueueLimit < 0:
		c.QueueLimit = 0
	}
	if c.AnonymousPerMinute <= 0 {
		c.AnonymousPerMinute = 5
	}
	if c.Identify == nil {
		c.Identify = func(c *gin.Context) string { return c.GetString(userIDKey) }
	}
	if c.IdleAfter <= 0 {
		c.IdleAfter = 10 * time.Minute
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type bucket struct {
	lim      *rate.Limiter
	queued   int
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per user plus a shared anonymous one.
type RateLimiter struct {
	cfg RateLimitConfig

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	cfg = cfg.withDefaults()
	return &RateLimiter{cfg: cfg, buckets: map[string]*bucket{}, lastSweep: cfg.Now()}
}

func (l *RateLimiter) newBucket(key string) *bucket {
	if key == anonymousKey {
		every := time.Minute / time.Duration(l.cfg.AnonymousPerMinute)
		return &bucket{lim: rate.NewLimiter(rate.Every(every), l.cfg.AnonymousPerMinute)}
	}
	every := time.Minute / time.Duration(l.cfg.TokensPerMinute)
	return &bucket{lim: rate.NewLimiter(rate.Every(every), l.cfg.TokenLimit)}
}

// reserve takes a token for key. It returns how long the caller must wait,
// or ok=false with the wait that would have been needed when the queue is
// full.
func (l *RateLimiter) reserve(key string, now time.Time) (*bucket, *rate.Reservation, time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	b, found := l.buckets[key]
	if !found {
		b = l.newBucket(key)
		l.buckets[key] = b
	}
	b.lastSeen = now

	r := b.lim.ReserveN(now, 1)
	if !r.OK() {
		return b, nil, time.Minute, false
	}
	delay := r.DelayFrom(now)
	if delay == 0 {
		return b, r, 0, true
	}
	queue := l.cfg.QueueLimit
	if key == anonymousKey {
		queue = 0
	}
	if b.queued >= queue {
		r.CancelAt(now)
		return b, nil, delay, false
	}
	b.queued++
	return b, r, delay, true
}

func (l *RateLimiter) dequeue(b *bucket) {
	l.mu.Lock()
	b.queued--
	l.mu.Unlock()
}

// sweep drops limiters of users that have been idle long enough for their
// bucket to refill. Callers hold l.mu.
func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < time.Minute {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if b.queued == 0 && now.Sub(b.lastSeen) > l.cfg.IdleAfter {
			delete(l.buckets, key)
		}
	}
}

// Handler rejects requests over the limit with 429 and Retry-After. Requests
// that fit in the queue wait for their token instead.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := l.cfg.Identify(c)
		if key == "" {
			key = anonymousKey
		} else {
			key = "user:" + key
		}

		now := l.cfg.Now()
		b, r, delay, ok := l.reserve(key, now)
		if !ok {
			tooManyRequests(c, key, delay)
			return
		}
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
				l.dequeue(b)
			case <-c.Request.Context().Done():
				timer.Stop()
				r.Cancel()
				l.dequeue(b)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

func tooManyRequests(c *gin.Context, key string, wait time.Duration) {
	secs := retryAfterSeconds(wait)
	utils.LogEvent(GetRequestID(c), "http", "rate_limited", fmt.Sprintf("key=%s retry_after=%d", key, secs))
	c.Header("Retry-After", fmt.Sprint(secs))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":      fmt.Sprintf("terlalu banyak permintaan, coba lagi dalam %d detik", secs),
		"request_id": GetRequestID(c),
	})
}
