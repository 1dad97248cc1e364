// Package cache 缓存层抽象接口
//
// 提供会话级临时状态的存取能力，当前由 Redis 实现。
package cache

import (
	"context"
	"time"
)

// SessionCache 会话缓存接口
//
// 登出时把令牌加入吊销名单，TTL 取令牌的剩余有效期；
// 认证中间件在解析令牌后检查吊销状态。
type SessionCache interface {
	RevokeToken(ctx context.Context, token string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, token string) (bool, error)
	Close() error
}
