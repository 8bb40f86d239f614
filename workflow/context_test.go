package workflow

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtx_SetGet(t *testing.T) {
	c := NewCtxWith(nil)

	c.Set("topic", "raft")
	v, ok := c.Get("topic")
	require.True(t, ok)
	assert.Equal(t, "raft", v)

	c.Set("topic", "paxos")
	v, ok = c.Get("topic")
	require.True(t, ok)
	assert.Equal(t, "paxos", v)
}

func TestCtx_GetMissing(t *testing.T) {
	c := NewCtxWith(nil)

	v, ok := c.Get("absent")
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestCtx_Remove(t *testing.T) {
	c := NewCtxWith(nil)
	c.Set("token", "abc123")

	v, ok := c.Remove("token")
	require.True(t, ok)
	assert.Equal(t, "abc123", v)

	_, ok = c.Get("token")
	assert.False(t, ok)

	_, ok = c.Remove("token")
	assert.False(t, ok)
}

func TestCtx_LogAppendsInOrder(t *testing.T) {
	c := NewCtxWith(nil)
	c.Log("first")
	c.Log("second")
	c.Log("third")

	assert.Equal(t, []string{"first", "second", "third"}, c.Logs())
}

func TestCtx_LogsReturnsCopy(t *testing.T) {
	c := NewCtxWith(nil)
	c.Log("original")

	logs := c.Logs()
	logs[0] = "mutated"
	assert.Equal(t, []string{"original"}, c.Logs())
}

func TestCtx_ClearLogsKeepsStore(t *testing.T) {
	c := NewCtxWith(nil)
	c.Set("k", "v")
	c.Log("entry")

	c.ClearLogs()
	assert.Empty(t, c.Logs())

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestCtx_ClearRemovesEverything(t *testing.T) {
	c := NewCtxWith(nil)
	c.Set("k", "v")
	c.Log("entry")

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Logs())
}

func TestCtx_LLMPanicsWithoutClient(t *testing.T) {
	c := NewCtxWith(nil)
	assert.Panics(t, func() { c.LLM() })
}

func TestCtx_ConcurrentAccess(t *testing.T) {
	c := NewCtxWith(nil)
	const goroutines = 100
	const perGoroutine = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				key := fmt.Sprintf("g%d-i%d", g, i)
				c.Set(key, "v")
				c.Log(key)
				_, _ = c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, goroutines*perGoroutine, c.Len())
	assert.Len(t, c.Logs(), goroutines*perGoroutine)
}
