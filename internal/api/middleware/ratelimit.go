package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/forum/config"
	"github.com/d60-Lab/forum/pkg/response"
)

// IPRateLimiter 每个客户端 IP 一个令牌桶
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(cfg config.BucketConfig) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: make(map[string]*visitor),
		limit:    rate.Limit(cfg.RPS),
		burst:    cfg.Burst,
		idle:     30 * time.Minute,
		now:      time.Now,
	}
}

// Allow 顺带清理长时间未出现的 IP
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.limiters[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = v
	}
	v.lastSeen = now
	if len(l.limiters) > 1024 {
		for k, other := range l.limiters {
			if now.Sub(other.lastSeen) > l.idle {
				delete(l.limiters, k)
			}
		}
	}
	return v.limiter.AllowN(now, 1)
}

// RateLimit 超出配额返回 429
func RateLimit(l *IPRateLimiter, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			response.TooManyRequests(c, msg)
			return
		}
		c.Next()
	}
}
