package entities

import "time"

// SyncLogEntry records when a (gym, event type) unit was last checked. One
// row per unit, overwritten on each sync. A zero-result check is still a
// successful check and is recorded as such.
type SyncLogEntry struct {
	GymID        string    `json:"gym_id"`
	EventType    EventType `json:"event_type"`
	EventsFound  int       `json:"events_found"`
	NewCount     int       `json:"new_count"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}
