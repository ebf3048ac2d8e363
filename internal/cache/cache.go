// Package cache keeps fetched catalog pages and extracted rows so an
// import can be replayed without touching the source sites.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMiss is returned by Get when the key has no entry.
var ErrMiss = errors.New("cache miss")

// Store is a flat key/value byte store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists every key starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Try returns the cached value for key, or calls fill on a miss and
// stores what it returns.
func Try(ctx context.Context, s Store, key string, fill func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	data, err := s.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrMiss) {
		return nil, err
	}

	data, err = fill(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Put(ctx, key, data); err != nil {
		return nil, err
	}
	return data, nil
}

// TryJSON is Try for values stored as JSON.
func TryJSON[T any](ctx context.Context, s Store, key string, fill func(ctx context.Context) (T, error)) (T, error) {
	var out T
	data, err := Try(ctx, s, key, func(ctx context.Context) ([]byte, error) {
		v, err := fill(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return out, nil
}
