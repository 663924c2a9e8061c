// Package cache stores compact item summaries. Items are immutable per id, so
// entries never need invalidation beyond their TTL.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a byte-oriented key/value cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Memory is an in-process cache.
type Memory struct {
	c *gocache.Cache
}

// NewMemory creates an in-process cache whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{c: gocache.New(ttl, 2*ttl)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.c.SetDefault(key, value)
	return nil
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte) error         { return nil }
