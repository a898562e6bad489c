/*
 * @Description: 按 Redis 可用性选择缓存实现
 * @Author: 安知鱼
 * @Date: 2026-02-04 17:08:22
 */
package utility

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// CacheKind 缓存实现的类别，启动日志中使用
type CacheKind string

const (
	CacheKindRedis  CacheKind = "redis"
	CacheKindMemory CacheKind = "memory"
)

// NewCacheServiceWithFallback client 为 nil 或 Ping 失败时退回进程内缓存
func NewCacheServiceWithFallback(ctx context.Context, client *redis.Client) CacheService {
	if client == nil {
		return NewMemoryCacheService()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[Cache] Redis 不可用，改用内存缓存: %v", err)
		return NewMemoryCacheService()
	}
	return NewCacheService(client)
}

// KindOf 返回 svc 背后的缓存类别
func KindOf(svc CacheService) CacheKind {
	if _, ok := svc.(*redisCacheService); ok {
		return CacheKindRedis
	}
	return CacheKindMemory
}
