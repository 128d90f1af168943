package middleware

import (
	"math"
	"strconv"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/domain"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/service"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/errors"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

type RateLimitMiddleware struct {
	rateLimitService service.RateLimitService
	log              logger.Logger
}

// NewRateLimitMiddleware returns nil when rateLimitService is nil; Limit on
// a nil middleware is a pass-through.
func NewRateLimitMiddleware(rateLimitService service.RateLimitService, log logger.Logger) *RateLimitMiddleware {
	if rateLimitService == nil {
		return nil
	}
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		log:              log,
	}
}

// Limit counts requests per participant name, or per client IP when the
// request carries no User header.
func (m *RateLimitMiddleware) Limit() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		scope, key := domain.RateLimitScopeIP, c.ClientIP()
		if user := c.GetHeader(UserHeader); user != "" {
			scope, key = domain.RateLimitScopeUser, user
		}

		decision, err := m.rateLimitService.Allow(c.Request.Context(), scope, key)
		if err != nil {
			// redis trouble should not take the chat down
			m.log.Warn("Rate limit check failed, letting request through", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(math.Ceil(decision.ResetIn.Seconds()))))

		if !decision.Allowed {
			_ = c.Error(errors.ErrRateLimited)
			c.Abort()
			return
		}

		c.Next()
	}
}
