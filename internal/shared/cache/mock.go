package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache 内存版 SessionCache 实现（用于测试与无 Redis 的本地开发）
type MemoryCache struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewMemoryCache 创建内存缓存实例
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{revoked: map[string]time.Time{}}
}

func (m *MemoryCache) RevokeToken(ctx context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[token] = time.Now().Add(ttl)
	return nil
}

func (m *MemoryCache) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.revoked[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(m.revoked, token)
		return false, nil
	}
	return true, nil
}

func (m *MemoryCache) Close() error { return nil }

var _ SessionCache = (*MemoryCache)(nil)
