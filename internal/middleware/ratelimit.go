package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dumeirei/innflow-backend/internal/common/cache"
	"github.com/dumeirei/innflow-backend/internal/common/logger"
	"github.com/dumeirei/innflow-backend/internal/common/response"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	RedisClient *redis.Client
	Scope       string
	Limit       int
	Window      time.Duration
	KeyFunc     func(*gin.Context) string
}

// RateLimit 固定窗口限流，Redis 不可用时放行
func RateLimit(config *RateLimitConfig) gin.HandlerFunc {
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	return func(c *gin.Context) {
		if config.RedisClient == nil || config.Limit <= 0 {
			c.Next()
			return
		}

		key := cache.BuildKey(cache.KeyPrefixRateLimit, config.Scope, keyFunc(c))
		ctx := c.Request.Context()

		n, err := config.RedisClient.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("限流计数失败，放行请求", zap.Error(err))
			c.Next()
			return
		}
		if n == 1 {
			config.RedisClient.Expire(ctx, key, config.Window)
		}

		count := int(n)
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))

		if count > config.Limit {
			ttl, _ := config.RedisClient.TTL(ctx, key).Result()
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			response.TooManyRequests(c, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(config.Limit-count))
		c.Next()
	}
}

// PortalRateLimit 客人门户按 IP 限流
func PortalRateLimit(client *redis.Client, limit int) gin.HandlerFunc {
	return RateLimit(&RateLimitConfig{
		RedisClient: client,
		Scope:       "portal",
		Limit:       limit,
		Window:      time.Minute,
	})
}

// LoginRateLimit 登录接口按 IP 限流
func LoginRateLimit(client *redis.Client) gin.HandlerFunc {
	return RateLimit(&RateLimitConfig{
		RedisClient: client,
		Scope:       "login",
		Limit:       10,
		Window:      time.Minute,
	})
}
