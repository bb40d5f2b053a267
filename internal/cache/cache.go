// Package cache holds short-lived upstream responses.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Cache stores opaque values for a limited time. Expired entries read as misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Backend enumerates supported cache stores.
type Backend string

const (
	BackendNone   Backend = "none"
	BackendMemory Backend = "memory"
	BackendBolt   Backend = "bolt"
	BackendRedis  Backend = "redis"
	BackendSQLite Backend = "sqlite"
)

// Valid reports whether b names a known backend.
func (b Backend) Valid() bool {
	switch b {
	case BackendNone, BackendMemory, BackendBolt, BackendRedis, BackendSQLite:
		return true
	}
	return false
}

// Config selects and configures a backend.
type Config struct {
	Backend       Backend
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open returns the cache for cfg.Backend. An empty backend means memory.
func Open(cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendNone:
		return Nop{}, nil
	case BackendBolt:
		b, err := OpenBolt(cfg.Path)
		if err != nil {
			return nil, err
		}
		return b, nil
	case BackendRedis:
		r, err := OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return r, nil
	case BackendSQLite:
		s, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Close() error                                             { return nil }

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process cache guarded by a mutex.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry), clock: time.Now}
}

// WithClock replaces the time source; used by tests.
func (m *Memory) WithClock(clock func() time.Time) *Memory {
	m.clock = clock
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.clock().Before(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: append([]byte(nil), value...), expires: m.clock().Add(ttl)}
	return nil
}

func (m *Memory) Close() error { return nil }
