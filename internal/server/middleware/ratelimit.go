// file: internal/server/middleware/ratelimit.go
// version: 2.0.0
// guid: 1331705a-85cb-4158-92f5-5ce203d8a0e7

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// SessionHeader lets clients that share an address (a classroom behind NAT)
// get separate buckets.
const SessionHeader = "X-Session-ID"

// SessionsPerAddress scales the shared bucket every session from one address
// also draws from, so rotating the session header cannot lift the limit.
const SessionsPerAddress = 10

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter is a per-client token bucket limiter keyed by client IP, or
// by client IP and session header when a session is sent. Sessions from one
// IP also share a bucket SessionsPerAddress times larger.
type IPRateLimiter struct {
	mu             sync.Mutex
	entries        map[string]*limiterEntry
	requestsPerMin int
	burst          int
	idleTTL        time.Duration
	lastSweep      time.Time
	now            func() time.Time
}

func NewIPRateLimiter(requestsPerMinute int, burst int) *IPRateLimiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		entries:        make(map[string]*limiterEntry),
		requestsPerMin: requestsPerMinute,
		burst:          burst,
		idleTTL:        15 * time.Minute,
		now:            time.Now,
	}
}

func (r *IPRateLimiter) limiterFor(key string, scale int) *rate.Limiter {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastSweep) > r.idleTTL {
		for k, entry := range r.entries {
			if now.Sub(entry.lastSeen) > r.idleTTL {
				delete(r.entries, k)
			}
		}
		r.lastSweep = now
	}

	entry, ok := r.entries[key]
	if !ok {
		perSecond := float64(r.requestsPerMin*scale) / 60.0
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(perSecond), r.burst*scale)}
		r.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Len reports how many clients currently hold a bucket.
func (r *IPRateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// allow spends a token from the caller's own bucket and, for session
// callers, from the bucket shared by their address.
func (r *IPRateLimiter) allow(c *gin.Context) bool {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	session := c.GetHeader(SessionHeader)
	if session == "" {
		return r.limiterFor("ip:"+ip, 1).Allow()
	}
	if !r.limiterFor("ip:"+ip+"|session:"+session, 1).Allow() {
		return false
	}
	return r.limiterFor("addr:"+ip, SessionsPerAddress).Allow()
}

// Middleware returns a Gin middleware that enforces the configured limit.
func (r *IPRateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(60.0 / float64(r.requestsPerMin))))
	return func(c *gin.Context) {
		if !r.allow(c) {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":  "rate limit exceeded",
				"code":   "RATE_LIMITED",
				"status": http.StatusTooManyRequests,
			})
			return
		}
		c.Next()
	}
}
