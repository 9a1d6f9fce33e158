package ratelimit

import (
	"context"
	"fmt"
	"strconv"

	"github.com/example/task-todo-api/config"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Middleware provides per-client-IP rate limiting for Fiber routes.
type Middleware struct {
	limiter Limiter
	limit   int
	client  *redis.Client
	logger  types.Logger
}

// New connects to Redis and creates the middleware. It fails when Redis
// cannot be reached at startup.
func New(ctx context.Context, cfg config.RateLimitConfig, logger types.Logger) (*Middleware, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	limiter := NewSlidingWindowLimiter(client, Config{
		RequestsPerWindow: cfg.Limit,
		WindowSize:        cfg.Window.Duration,
		KeyPrefix:         "todo:ratelimit:login:",
	})

	m := NewMiddleware(limiter, cfg.Limit, logger)
	m.client = client

	logger.Info("Rate limiting enabled",
		"redis", cfg.RedisAddr,
		"limit", cfg.Limit,
		"window", cfg.Window.String(),
	)
	return m, nil
}

// NewMiddleware wraps an existing limiter.
func NewMiddleware(limiter Limiter, limit int, logger types.Logger) *Middleware {
	return &Middleware{
		limiter: limiter,
		limit:   limit,
		logger:  logger,
	}
}

// IPRateLimit returns middleware that limits requests by client IP. Limiter
// failures let the request through.
func (m *Middleware) IPRateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if ip == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "forbidden",
				"message": "Unable to determine client IP address",
			})
		}

		result, err := m.limiter.Allow(c.UserContext(), ip)
		if err != nil {
			m.logger.Warn("Rate limit check failed, allowing request",
				"ip", ip,
				"error", err,
			)
			return c.Next()
		}

		setRateLimitHeaders(c, result, m.limit)

		if !result.Allowed {
			m.logger.Warn("Rate limit exceeded", "ip", ip, "path", c.Path())
			return sendRateLimitExceeded(c, result)
		}

		return c.Next()
	}
}

// Close releases the Redis connection if the middleware owns one.
func (m *Middleware) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(c *fiber.Ctx, result *Result, limit int) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

// sendRateLimitExceeded sends a 429 Too Many Requests response.
func sendRateLimitExceeded(c *fiber.Ctx, result *Result) error {
	retryAfter := int(result.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	c.Set("Retry-After", strconv.Itoa(retryAfter))

	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":       "too_many_requests",
		"message":     fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds.", retryAfter),
		"retry_after": retryAfter,
	})
}
