package middleware

import (
	"fmt"
	"math"
	"sync"
	"time"

	"recipe-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// pruneThreshold 用戶端數超過此值時清理閒置的令牌桶
const pruneThreshold = 1024

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64 // 每秒補充的令牌數
	lastTime time.Time
	now      func() time.Time
}

// NewRateLimiter 創建新的限流器，window 內最多 requests 次
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return newRateLimiterAt(requests, window, time.Now)
}

func newRateLimiterAt(requests int, window time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: now(),
		now:      now,
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastTime).Seconds()
	rl.lastTime = now

	// 補充令牌（保留小數，避免頻繁請求時永遠補不到）
	rl.tokens = math.Min(rl.capacity, rl.tokens+elapsed*rl.rate)

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// idleSince 最後一次請求距今多久
func (rl *RateLimiter) idleSince(now time.Time) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return now.Sub(rl.lastTime)
}

// ClientLimiters 每個用戶端各自一個令牌桶
type ClientLimiters struct {
	mu       sync.Mutex
	requests int
	window   time.Duration
	buckets  map[string]*RateLimiter
	now      func() time.Time
}

// NewClientLimiters 創建依用戶端分開計算的限流器
func NewClientLimiters(requests int, window time.Duration) *ClientLimiters {
	return &ClientLimiters{
		requests: requests,
		window:   window,
		buckets:  make(map[string]*RateLimiter),
		now:      time.Now,
	}
}

// Allow 檢查該用戶端是否還有令牌
func (l *ClientLimiters) Allow(client string) bool {
	l.mu.Lock()
	bucket, ok := l.buckets[client]
	if !ok {
		if len(l.buckets) >= pruneThreshold {
			l.prune()
		}
		bucket = newRateLimiterAt(l.requests, l.window, l.now)
		l.buckets[client] = bucket
	}
	l.mu.Unlock()

	return bucket.Allow()
}

// prune 閒置超過一個 window 的桶已補滿，刪除後重建結果相同
func (l *ClientLimiters) prune() {
	now := l.now()
	for client, bucket := range l.buckets {
		if bucket.idleSince(now) >= l.window {
			delete(l.buckets, client)
		}
	}
}

// Len 目前追蹤的用戶端數
func (l *ClientLimiters) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimit 限流中間件，以 ClientIP 區分用戶端
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return rateLimitWith(NewClientLimiters(requests, window))
}

func rateLimitWith(limiters *ClientLimiters) gin.HandlerFunc {
	retryAfter := fmt.Sprintf("%d", int(math.Ceil(limiters.window.Seconds())))

	return func(c *gin.Context) {
		if !limiters.Allow(c.ClientIP()) {
			common.LogWarn("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(common.ErrTooManyRequests.Status, common.ErrTooManyRequests.Response(false))
			return
		}

		c.Next()
	}
}
