package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	_, ok, err := c.Get(ctx, "flight:F1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "flight:F1", []byte(`{"id":"F1"}`)))
	b, ok, err := c.Get(ctx, "flight:F1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":"F1"}`, string(b))
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Noop{}
	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
