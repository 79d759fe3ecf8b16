package mocks

import "time"

// Cache is a mock implementation of ports.Cache. TTLs are ignored; entries
// live until invalidated.
type Cache struct {
	Values      map[string]any
	Invalidated []string
	SetCount    int
}

// NewCache creates a new mock Cache.
func NewCache() *Cache {
	return &Cache{Values: make(map[string]any)}
}

// Get returns the cached value for key.
func (m *Cache) Get(key string) (any, bool) {
	v, ok := m.Values[key]
	return v, ok
}

// Set stores a value.
func (m *Cache) Set(key string, value any, _ time.Duration) {
	m.SetCount++
	m.Values[key] = value
}

// Invalidate drops a key and records the call.
func (m *Cache) Invalidate(key string) {
	m.Invalidated = append(m.Invalidated, key)
	delete(m.Values, key)
}

// ChangeNotifier is a mock implementation of ports.ChangeNotifier.
type ChangeNotifier struct {
	Notified []string
}

// NewChangeNotifier creates a new mock ChangeNotifier.
func NewChangeNotifier() *ChangeNotifier {
	return &ChangeNotifier{}
}

// EventsChanged records the notification.
func (m *ChangeNotifier) EventsChanged(gymID string) {
	m.Notified = append(m.Notified, gymID)
}
