package qbclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"
	"github.com/zeebo/xxh3"
)

// cacheStore — бэкенд хранения кеша ответов.
type cacheStore interface {
	get(ctx context.Context, key string) ([]byte, bool)
	set(ctx context.Context, key string, val []byte, ttl time.Duration)
	clear(ctx context.Context)
	close() error
}

// responseCache — TTL-кеш GET-ответов платформы.
// Ключи — xxh3 от метода+URL+параметров, записи сжаты zstd.
// Это механизм нижнего уровня с истечением по времени; он не заменяет
// явную инвалидацию schema-кеша при DDL-операциях.
type responseCache struct {
	store cacheStore
	ttl   time.Duration
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

func newResponseCache(cfg CacheConfig) (*responseCache, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	var store cacheStore
	if cfg.Redis != nil {
		store = newRedisStore(cfg.Redis)
	} else {
		store = newMemoryStore()
	}

	return &responseCache{
		store: store,
		ttl:   time.Duration(cfg.TTL) * time.Second,
		enc:   enc,
		dec:   dec,
	}, nil
}

// cacheKey строит стабильный ключ запроса.
func cacheKey(method, url, params string) string {
	h := xxh3.HashString128(method + " " + url + "?" + params)
	return fmt.Sprintf("%016x%016x", h.Hi, h.Lo)
}

func (c *responseCache) get(ctx context.Context, key string) ([]byte, bool) {
	compressed, ok := c.store.get(ctx, key)
	if !ok {
		return nil, false
	}
	data, err := c.dec.DecodeAll(compressed, nil)
	if err != nil {
		// Повреждённая запись — считаем промахом
		return nil, false
	}
	return data, true
}

func (c *responseCache) set(ctx context.Context, key string, val []byte) {
	c.store.set(ctx, key, c.enc.EncodeAll(val, nil), c.ttl)
}

func (c *responseCache) clear(ctx context.Context) {
	c.store.clear(ctx)
}

func (c *responseCache) close() error {
	c.enc.Close()
	c.dec.Close()
	return c.store.close()
}

// --- In-memory store ---

type memoryEntry struct {
	val     []byte
	expires time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]memoryEntry)}
}

func (s *memoryStore) get(_ context.Context, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		delete(s.entries, key)
		return nil, false
	}
	return e.val, true
}

func (s *memoryStore) set(_ context.Context, key string, val []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{val: val, expires: time.Now().Add(ttl)}
}

func (s *memoryStore) clear(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]memoryEntry)
}

func (s *memoryStore) close() error { return nil }

// --- Redis store ---

// redisStore хранит кеш в Redis — полезно, когда несколько процессов
// работают с одним приложением и должны разделять метаданные.
type redisStore struct {
	client *redis.Client
	prefix string
}

func newRedisStore(cfg *RedisConfig) *redisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &redisStore{client: client, prefix: cfg.Prefix}
}

func (s *redisStore) key(key string) string {
	return s.prefix + ":" + key
}

func (s *redisStore) get(ctx context.Context, key string) ([]byte, bool) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (s *redisStore) set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	// Ошибка записи в кеш не фатальна — следующий запрос уйдёт в API
	_ = s.client.Set(ctx, s.key(key), val, ttl).Err()
}

func (s *redisStore) clear(ctx context.Context) {
	iter := s.client.Scan(ctx, 0, s.prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		_ = s.client.Del(ctx, iter.Val()).Err()
	}
}

func (s *redisStore) close() error { return s.client.Close() }
