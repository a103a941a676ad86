// Package db declares the key-value contracts used by the prediction cache.
package db

import (
	"context"
	"time"
)

// Store is the cache backend facade.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// MGet returns one entry per key; missing keys yield nil.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	// SetWithTTL stores value; ttl <= 0 means no expiry.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
