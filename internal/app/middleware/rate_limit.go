/*
 * @Description: 频率限制中间件
 * @Author: 安知鱼
 * @Date: 2025-11-08 00:00:00
 * @LastEditTime: 2026-02-06 11:12:45
 * @LastEditors: 安知鱼
 */
package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/anzhiyu-c/anheyu-news/pkg/response"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// 清理过期限流器的时间间隔
	limiterCleanupInterval = 5 * time.Minute
	// 超过该时间未访问的限流器会被清理
	limiterIdleTimeout = 10 * time.Minute
)

// IPRateLimiter 为每个客户端IP维护一个令牌桶
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterInfo

	limit rate.Limit
	burst int

	done     chan struct{}
	stopOnce sync.Once
}

// limiterInfo 存储限流器及其最后访问时间
type limiterInfo struct {
	limiter      *rate.Limiter
	lastAccessed time.Time
}

// NewIPRateLimiter 创建IP限流器。requestsPerMinute 为每分钟允许的请求数，burst 为允许的突发请求数。
func NewIPRateLimiter(requestsPerMinute, burst int) *IPRateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}
	l := &IPRateLimiter{
		limiters: make(map[string]*limiterInfo),
		limit:    rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    burst,
		done:     make(chan struct{}),
	}

	go l.cleanupStaleEntries()

	return l
}

// Allow 判断该IP当前是否还有可用令牌
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	info, exists := l.limiters[ip]
	if !exists {
		info = &limiterInfo{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = info
	}
	info.lastAccessed = time.Now()
	l.mu.Unlock()

	return info.limiter.Allow()
}

// Stop 停止后台清理协程，可重复调用
func (l *IPRateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

func (l *IPRateLimiter) cleanupStaleEntries() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			for ip, info := range l.limiters {
				if time.Since(info.lastAccessed) > limiterIdleTimeout {
					delete(l.limiters, ip)
				}
			}
			l.mu.Unlock()
		case <-l.done:
			return
		}
	}
}

// getClientIP 获取客户端真实IP地址
func getClientIP(c *gin.Context) string {
	// 优先从 X-Real-IP 获取
	if clientIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); clientIP != "" {
		return clientIP
	}

	// X-Forwarded-For 格式为 client, proxy1, proxy2，取第一个
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		clientIP := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if ip, _, err := net.SplitHostPort(clientIP); err == nil {
			return ip
		}
		if clientIP != "" {
			return clientIP
		}
	}

	if ip, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return ip
	}
	return c.Request.RemoteAddr
}

// RateLimit 使用给定的限流器限制每个IP的请求频率
func RateLimit(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(getClientIP(c)) {
			response.Fail(c, http.StatusTooManyRequests, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}
		c.Next()
	}
}
