package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(5 * time.Minute)
	m.now = func() time.Time { return now }

	m.Set(ctx, "item:1", []byte("a"))
	v, ok := m.Get(ctx, "item:1")
	require.True(t, ok)
	assert.Equal(t, []byte("a"), v)

	now = now.Add(5 * time.Minute)
	_, ok = m.Get(ctx, "item:1")
	assert.False(t, ok, "entry should expire after ttl")
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)
	m.Set(ctx, "k", []byte("v"))
	m.Delete(ctx, "k")
	_, ok := m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemory_AddKeepsLiveEntry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }

	assert.True(t, m.Add(ctx, "k", []byte("fresh")))
	assert.False(t, m.Add(ctx, "k", []byte("stale")))
	v, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("fresh"), v)

	now = now.Add(time.Minute)
	assert.True(t, m.Add(ctx, "k", []byte("next")))
}

func TestRedis_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	defer client.Close()

	r := NewRedis(client, "test:", time.Minute)
	r.Set(ctx, "k", []byte("v"))
	v, ok := r.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	assert.False(t, r.Add(ctx, "k", []byte("other")))

	r.Delete(ctx, "k")
	_, ok = r.Get(ctx, "k")
	assert.False(t, ok)
	assert.True(t, r.Add(ctx, "k", []byte("other")))
	r.Delete(ctx, "k")
}
