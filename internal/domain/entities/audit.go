package entities

import "time"

// ChangeAction identifies what a sync pass did to a record.
type ChangeAction string

const (
	ActionCreate ChangeAction = "CREATE"
	ActionUpdate ChangeAction = "UPDATE"
	ActionDelete ChangeAction = "DELETE"
)

// ChangeEntry is one row in the change history. Field-level entries are
// written for updates; create and delete entries cover the whole record.
type ChangeEntry struct {
	ID         int64        `json:"id"`
	EventID    string       `json:"event_id"`
	GymID      string       `json:"gym_id"`
	Action     ChangeAction `json:"action"`
	Field      string       `json:"field,omitempty"`
	OldValue   string       `json:"old_value,omitempty"`
	NewValue   string       `json:"new_value,omitempty"`
	EventTitle string       `json:"event_title"`
	EventDate  string       `json:"event_date"`
	Source     string       `json:"source"`
	ChangedAt  time.Time    `json:"changed_at"`
}
