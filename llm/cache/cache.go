// Package cache provides response caches for the LLM client: an in-process
// map with TTL eviction and a Redis-backed store for sharing across
// processes. Both satisfy the same small interface; the client treats a
// cache as optional.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores response text under request-derived keys.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key derives a cache key from the provider, model, and serialized request
// payload. The first 16 hash bytes keep keys short without meaningful
// collision risk.
func Key(provider, model string, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(provider))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write(payload)
	sum := h.Sum(nil)
	return "llm:cache:" + hex.EncodeToString(sum[:16])
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory is a mutex-guarded in-process cache. Entries expire lazily on Get.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

// Get returns the cached value or ErrCacheMiss.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", ErrCacheMiss
	}
	return entry.value, nil
}

// Set stores value under key. A zero ttl means no expiry.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete removes key if present.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, counting expired ones not yet
// evicted.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
