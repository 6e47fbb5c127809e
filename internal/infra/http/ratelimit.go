package http

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// rateLimited wraps the public verification handler with a fixed-window
// limit keyed by client IP. Limiter failures fail open unless
// RATE_LIMIT_FAIL_CLOSED is set.
func (s *Server) rateLimited(next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.rateLimiter == nil || s.rateLimitRequests <= 0 {
			next(c)
			return
		}
		key := "verify:" + c.ClientIP()
		decision, err := s.rateLimiter.Allow(c.Request.Context(), key, s.rateLimitRequests, s.rateLimitWindow)
		if err != nil {
			log.Printf("rate limiter error: %v", err)
			if s.rateLimitFailClosed {
				writeErrorCode(c, http.StatusServiceUnavailable, "RATE_LIMIT_UNAVAILABLE", "rate limiter unavailable")
				return
			}
			next(c)
			return
		}

		c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.ResetAt.IsZero() {
			c.Header("RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		}
		if !decision.Allowed {
			retryAfter := int(time.Until(decision.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many verification requests")
			return
		}
		next(c)
	}
}
