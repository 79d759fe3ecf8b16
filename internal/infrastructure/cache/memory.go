// Package cache provides an in-memory TTL implementation of the Cache port.
package cache

import (
	"sync"
	"time"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

type entry struct {
	value     any
	expiresAt time.Time
}

// Memory is a thread-safe in-memory cache with per-entry TTL. Expired
// entries are dropped lazily on read.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
}

// NewMemory creates a cache. defaultTTL applies when Set is called with a
// zero TTL.
func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
	}
}

// Get returns the cached value for key, or false if absent or expired.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if timeNow().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores a value with a time-to-live.
func (m *Memory) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	m.mu.Lock()
	m.entries[key] = entry{value: value, expiresAt: timeNow().Add(ttl)}
	m.mu.Unlock()
}

// Invalidate drops a key immediately.
func (m *Memory) Invalidate(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Len returns the number of live entries, counting expired ones not yet
// collected.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
