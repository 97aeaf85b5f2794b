package session

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV stores one flat string map per client id.
type KV interface {
	Get(ctx context.Context, id string) (map[string]string, error)
	// Set merges values into the client's map and refreshes its expiry.
	Set(ctx context.Context, id string, values map[string]string) error
	Delete(ctx context.Context, id string, keys ...string) error
}

type entry struct {
	values  map[string]string
	expires time.Time
}

// MemoryKV is a process-local KV. Entries expire ttl after their last Set.
type MemoryKV struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[string]*entry
	now  func() time.Time
}

func NewMemoryKV(ttl time.Duration) *MemoryKV {
	return &MemoryKV{ttl: ttl, data: make(map[string]*entry), now: time.Now}
}

func (m *MemoryKV) Get(_ context.Context, id string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[id]
	if !ok {
		return map[string]string{}, nil
	}
	if m.now().After(e.expires) {
		delete(m.data, id)
		return map[string]string{}, nil
	}
	return maps.Clone(e.values), nil
}

func (m *MemoryKV) Set(_ context.Context, id string, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[id]
	if !ok || m.now().After(e.expires) {
		e = &entry{values: make(map[string]string)}
		m.data[id] = e
	}
	maps.Copy(e.values, values)
	e.expires = m.now().Add(m.ttl)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, id string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.data[id]; ok {
		for _, k := range keys {
			delete(e.values, k)
		}
	}
	return nil
}

// RedisKV keeps each client's map in a hash at clinic:session:<id>.
type RedisKV struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisKV(rdb *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{rdb: rdb, ttl: ttl}
}

// OpenRedis parses a redis:// URL and pings the server.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func redisKey(id string) string { return "clinic:session:" + id }

func (r *RedisKV) Get(ctx context.Context, id string) (map[string]string, error) {
	return r.rdb.HGetAll(ctx, redisKey(id)).Result()
}

func (r *RedisKV) Set(ctx context.Context, id string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	key := redisKey(id)
	fields := make(map[string]any, len(values))
	for k, v := range values {
		fields[k] = v
	}
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, fields)
		p.Expire(ctx, key, r.ttl)
		return nil
	})
	return err
}

func (r *RedisKV) Delete(ctx context.Context, id string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.HDel(ctx, redisKey(id), keys...).Err()
}

var (
	_ KV = (*MemoryKV)(nil)
	_ KV = (*RedisKV)(nil)
)
