package workflow

import (
	"sync"

	"github.com/BaSui01/agentline/llm"
)

// Ctx is the shared execution context passed to every agent: a key/value
// store, an append-only event log, and a handle to the LLM client. One mutex
// guards both the store and the log, so concurrent branches sharing a Ctx
// never interleave into a corrupted entry.
//
// A Ctx outlives individual runs. State and log accumulate across repeated
// Runner.Run calls until explicitly cleared.
type Ctx struct {
	mu    sync.RWMutex
	store map[string]string
	log   []string
	llm   *llm.Client
}

// NewCtx creates a context whose LLM client is configured from the
// AGENTLINE_* environment variables.
func NewCtx() *Ctx {
	return NewCtxWith(llm.NewFromEnv())
}

// NewCtxWith creates a context around an explicit LLM client. Tests inject a
// client pointed at a stub server; client may be nil when no agent calls LLM.
func NewCtxWith(client *llm.Client) *Ctx {
	return &Ctx{
		store: make(map[string]string),
		llm:   client,
	}
}

// Set inserts or overwrites a key in the KV store.
func (c *Ctx) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
}

// Get looks up a key in the KV store.
func (c *Ctx) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.store[key]
	return v, ok
}

// Remove deletes a key from the KV store, returning its value if it existed.
func (c *Ctx) Remove(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if ok {
		delete(c.store, key)
	}
	return v, ok
}

// Log appends a message to the event log.
func (c *Ctx) Log(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = append(c.log, msg)
}

// Logs returns a snapshot of all log messages in append order.
func (c *Ctx) Logs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.log))
	copy(out, c.log)
	return out
}

// ClearLogs empties the event log, leaving the KV store intact.
func (c *Ctx) ClearLogs() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = nil
}

// Clear empties both the KV store and the event log.
func (c *Ctx) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]string)
	c.log = nil
}

// Len reports the number of keys in the KV store.
func (c *Ctx) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// LLM starts building a chat request against the context's LLM client.
// Panics if the Ctx was created without a client.
func (c *Ctx) LLM() *llm.Request {
	if c.llm == nil {
		panic("workflow: Ctx has no LLM client; use NewCtx or NewCtxWith")
	}
	return c.llm.Chat()
}

// Client returns the underlying LLM client, or nil.
func (c *Ctx) Client() *llm.Client {
	return c.llm
}
