package auth

import (
    "context"
    "sync"
    "time"

    "github.com/redis/go-redis/v9"
)

// MemoryCache is the in-process TokenCache used when Redis is not
// configured.
type MemoryCache struct {
    mu    sync.RWMutex
    items map[string]memoryItem
}

type memoryItem struct {
    token   string
    expires time.Time
}

func NewMemoryCache() *MemoryCache {
    return &MemoryCache{items: make(map[string]memoryItem)}
}

func (m *MemoryCache) Get(ctx context.Context, key string) (string, bool) {
    m.mu.RLock()
    it, ok := m.items[key]
    m.mu.RUnlock()
    if !ok || time.Now().After(it.expires) {
        return "", false
    }
    return it.token, true
}

func (m *MemoryCache) Set(ctx context.Context, key, token string, ttl time.Duration) {
    m.mu.Lock()
    m.items[key] = memoryItem{token: token, expires: time.Now().Add(ttl)}
    m.mu.Unlock()
}

// RedisCache shares carrier tokens across processes. Cache failures are
// treated as misses; the caller just fetches a fresh token.
type RedisCache struct {
    rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
    return &RedisCache{rdb: rdb}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
    val, err := r.rdb.Get(ctx, key).Result()
    if err != nil {
        return "", false
    }
    return val, true
}

func (r *RedisCache) Set(ctx context.Context, key, token string, ttl time.Duration) {
    _ = r.rdb.Set(ctx, key, token, ttl).Err()
}
