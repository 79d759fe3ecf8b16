package ports

import "time"

// Cache is an explicit read-cache port. The orchestrator invalidates keys
// after a successful apply; read paths may populate them. Cache state is
// never authoritative.
type Cache interface {
	// Get returns the cached value for key, or false if absent or expired.
	Get(key string) (any, bool)

	// Set stores a value with a time-to-live.
	Set(key string, value any, ttl time.Duration)

	// Invalidate drops a key immediately.
	Invalidate(key string)
}

// ChangeNotifier is told when a gym's events changed so that downstream
// consumers (UI layers, caches elsewhere) can refresh. Notification is
// best-effort.
type ChangeNotifier interface {
	EventsChanged(gymID string)
}
