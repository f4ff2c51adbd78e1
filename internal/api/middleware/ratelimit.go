package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Conceptual-Machines/magda-harmony/internal/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTimeout = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters hands out one token bucket per client key
type clientLimiters struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	lastGC  time.Time
}

func newClientLimiters(rps float64, burst int) *clientLimiters {
	if burst < 1 {
		burst = int(math.Max(1, math.Ceil(rps)))
	}
	return &clientLimiters{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(rps),
		burst:   burst,
		lastGC:  time.Now(),
	}
}

func (l *clientLimiters) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastGC) > limiterIdleTimeout {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > limiterIdleTimeout {
				delete(l.clients, k)
			}
		}
		l.lastGC = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// RateLimit limits each caller to rps requests per second with the given
// burst. Callers are keyed by gateway user ID when present, else client IP.
// rps <= 0 disables limiting.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiters := newClientLimiters(rps, burst)

	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID, ok := CallerID(c); ok && userID != "anonymous" {
			key = "user:" + userID
		}

		now := time.Now()
		if !limiters.get(key, now).AllowN(now, 1) {
			retryAfter := int(math.Ceil(1 / rps))
			logger.Warn("Rate limit exceeded", logger.Fields{
				"request_id": c.GetString("request_id"),
				"client":     key,
				"path":       c.Request.URL.Path,
			})
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded",
				"request_id": c.GetString("request_id"),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
