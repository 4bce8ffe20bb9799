// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements a process-local token-bucket rate limiter keyed by
// client identity. Every cache miss on /search can spend geocoding quota, so
// the limiter sits in front of the API and protects the upstream provider.
//
// Probe endpoints (health, metrics) are listed as exempt so monitoring never
// competes with clients for tokens. Paths in LoopbackExempt are exempt only for
// direct loopback callers, which lets the resolver's proxy strategy call back
// into this server without spending a second token per search.
package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keyFunc selects the identity used to key a rate-limit bucket.
type keyFunc func(*gin.Context) string

// KeyByClientIP keys buckets by the client address Gin resolves, honoring the
// engine's trusted proxy settings.
func KeyByClientIP() keyFunc {
	return func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}
}

// RateLimitOptions configures NewRateLimiter.
type RateLimitOptions struct {
	RPS     float64       // tokens replenished per second
	Burst   int           // bucket size; values <= 0 become 1
	Key     keyFunc       // nil means KeyByClientIP
	Exempt  []string      // exact request paths that are never limited
	IdleTTL time.Duration // idle buckets older than this are evicted; 0 means 10m

	// LoopbackExempt lists paths that are not limited when the peer address is
	// loopback and the request carries no forwarding headers.
	LoopbackExempt []string
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per identity. Safe for concurrent use.
type RateLimiter struct {
	rps    rate.Limit
	burst  int
	keyFn  keyFunc
	exempt map[string]struct{}
	local  map[string]struct{}
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  uint64
}

// gcEvery is the number of lookups between idle-bucket sweeps.
const gcEvery = 5000

// NewRateLimiter builds a limiter from opts.
func NewRateLimiter(opts RateLimitOptions) *RateLimiter {
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Key == nil {
		opts.Key = KeyByClientIP()
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		rps:      rate.Limit(opts.RPS),
		burst:    opts.Burst,
		keyFn:    opts.Key,
		exempt:   pathSet(opts.Exempt),
		local:    pathSet(opts.LoopbackExempt),
		ttl:      opts.IdleTTL,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// limiterFor returns the bucket for key, creating it on first use. Idle
// buckets are swept before the lookup so a stale entry for key is replaced
// rather than refreshed.
func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= gcEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// Len reports how many buckets are currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

func (rl *RateLimiter) isExempt(c *gin.Context) bool {
	path := c.Request.URL.Path
	if _, ok := rl.exempt[path]; ok {
		return true
	}
	if _, ok := rl.local[path]; ok {
		return isDirectLoopback(c)
	}
	return false
}

// isDirectLoopback reports whether the TCP peer is loopback and nothing
// relayed the request. RemoteIP ignores X-Forwarded-For, and a relaying proxy
// on the same host adds one of the checked headers.
func isDirectLoopback(c *gin.Context) bool {
	for _, h := range []string{"X-Forwarded-For", "X-Real-IP", "Forwarded"} {
		if c.GetHeader(h) != "" {
			return false
		}
	}
	ip := net.ParseIP(c.RemoteIP())
	return ip != nil && ip.IsLoopback()
}

func pathSet(paths []string) map[string]struct{} {
	out := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		out[p] = struct{}{}
	}
	return out
}

// ErrCodeRateLimited is the envelope code of a denied request.
const ErrCodeRateLimited = "too_many_requests"

// Handler returns the Gin middleware. Denied requests get 429 with
// Retry-After: 1 and the standard error envelope:
//
//	{"request_id":"<uuid>","code":"too_many_requests","message":"rate limit exceeded"}
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.isExempt(c) {
			c.Next()
			return
		}
		if rl.limiterFor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}

		LoggerFrom(c).Warn().Str("client_ip", c.ClientIP()).Msg("rate limit exceeded")
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(HeaderRequestID),
			"code":       ErrCodeRateLimited,
			"message":    "rate limit exceeded",
		})
	}
}
