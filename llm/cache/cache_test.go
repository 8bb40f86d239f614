package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key("ollama", "llama3.1:8b", []byte(`{"q":"hi"}`))
	b := Key("ollama", "llama3.1:8b", []byte(`{"q":"hi"}`))
	assert.Equal(t, a, b)
	assert.Contains(t, a, "llm:cache:")
}

func TestKey_DistinguishesInputs(t *testing.T) {
	base := Key("ollama", "llama3.1:8b", []byte("payload"))
	assert.NotEqual(t, base, Key("openai", "llama3.1:8b", []byte("payload")))
	assert.NotEqual(t, base, Key("ollama", "other-model", []byte("payload")))
	assert.NotEqual(t, base, Key("ollama", "llama3.1:8b", []byte("different")))
}

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemory_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "k", "v", 10*time.Millisecond))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	time.Sleep(20 * time.Millisecond)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, m.Len())
}

func TestMemory_Overwrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "k", "first", 0))
	require.NoError(t, m.Set(ctx, "k", "second", 0))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisWithClient(client, nil), mr
}

func TestRedis_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t)

	_, err := r.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, r.Set(ctx, "k", "v", 0))
	got, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, r.Delete(ctx, "k"))
	_, err = r.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedis_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	require.NoError(t, r.Set(ctx, "k", "v", time.Minute))
	got, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	mr.FastForward(2 * time.Minute)
	_, err = r.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
