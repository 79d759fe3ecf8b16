package entities

import "time"

// AcknowledgedPattern is a program-wide dismissal: any current or future
// event of the gym and type whose error message matches ErrorMessage is
// treated as dismissed without a per-event acknowledgment.
type AcknowledgedPattern struct {
	ID           string    `json:"id"`
	GymID        string    `json:"gym_id"`
	EventType    EventType `json:"event_type"`
	ErrorMessage string    `json:"error_message"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Matches reports whether the pattern covers the given event and message.
func (p *AcknowledgedPattern) Matches(gymID string, eventType EventType, message string) bool {
	return p.GymID == gymID && p.EventType == eventType && p.ErrorMessage == message
}
