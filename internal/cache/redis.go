package cache

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 200

// RedisStore keeps entries as plain string values under a namespace. A
// zero ttl keeps entries forever.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
	ttl       time.Duration
}

func NewRedisStore(rdb *redis.Client, namespace string, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, namespace: namespace, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return data, err
}

func (s *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	return s.rdb.Set(ctx, s.namespace+key, data, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.namespace+key).Err()
}

func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	match := globEscaper.Replace(s.namespace+prefix) + "*"
	var scanned []string
	iter := s.rdb.Scan(ctx, 0, match, scanBatch).Iterator()
	for iter.Next(ctx) {
		scanned = append(scanned, strings.TrimPrefix(iter.Val(), s.namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return uniqueSorted(scanned), nil
}

// uniqueSorted sorts keys and drops repeats. SCAN may return a key more
// than once while the keyspace is rehashing.
func uniqueSorted(keys []string) []string {
	sort.Strings(keys)
	out := keys[:0]
	for i, k := range keys {
		if i == 0 || k != keys[i-1] {
			out = append(out, k)
		}
	}
	return out
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
