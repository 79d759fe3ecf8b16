// Package entities contains core domain data structures.
package entities

import "time"

// EventType represents the program category of an event listing.
type EventType string

// Tracked program types. The portal occasionally introduces new ones;
// anything unrecognized is carried through as-is.
const (
	EventTypeClinic       EventType = "CLINIC"
	EventTypeKidsNightOut EventType = "KIDS_NIGHT_OUT"
	EventTypeOpenGym      EventType = "OPEN_GYM"
	EventTypeCamp         EventType = "CAMP"
	EventTypeSpecialEvent EventType = "SPECIAL_EVENT"
)

// DescriptionStatus classifies how much descriptive content a listing carries.
type DescriptionStatus string

const (
	DescriptionNone      DescriptionStatus = "none"
	DescriptionFlyerOnly DescriptionStatus = "flyer_only"
	DescriptionPresent   DescriptionStatus = "present"
)

// EventRecord is one persisted program listing. EventURL is the identity
// used for matching across syncs (unique per gym); ID is the store identity
// used for mutation. Dates are stored as YYYY-MM-DD strings because that is
// the only precision the source provides.
type EventRecord struct {
	ID                    string             `json:"id"`
	GymID                 string             `json:"gym_id"`
	Type                  EventType          `json:"type"`
	Title                 string             `json:"title"`
	Date                  string             `json:"date"`
	StartDate             string             `json:"start_date"`
	EndDate               string             `json:"end_date"`
	Time                  string             `json:"time"`
	Price                 *float64           `json:"price,omitempty"`
	AgeMin                *int               `json:"age_min,omitempty"`
	AgeMax                *int               `json:"age_max,omitempty"`
	Description           string             `json:"description,omitempty"`
	DescriptionStatus     DescriptionStatus  `json:"description_status"`
	HasFlyer              bool               `json:"has_flyer"`
	FlyerURL              string             `json:"flyer_url,omitempty"`
	EventURL              string             `json:"event_url"`
	ValidationErrors      []ValidationError  `json:"validation_errors,omitempty"`
	AcknowledgedErrors    []Acknowledgment   `json:"acknowledged_errors,omitempty"`
	VerifiedErrors        []VerifiedError    `json:"verified_errors,omitempty"`
	HasOpenings           bool               `json:"has_openings"`
	RegistrationStartDate string             `json:"registration_start_date,omitempty"`
	RegistrationEndDate   string             `json:"registration_end_date,omitempty"`
	DeletedAt             *time.Time         `json:"deleted_at,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

// IsDeleted reports whether the record is soft-deleted.
func (e *EventRecord) IsDeleted() bool {
	return e.DeletedAt != nil
}

// EffectiveStartDate returns the start date, falling back to the single-day
// date when the range fields were never populated.
func (e *EventRecord) EffectiveStartDate() string {
	if e.StartDate != "" {
		return e.StartDate
	}
	return e.Date
}

// EffectiveEndDate returns the end date, falling back through start date and
// the single-day date.
func (e *EventRecord) EffectiveEndDate() string {
	if e.EndDate != "" {
		return e.EndDate
	}
	return e.EffectiveStartDate()
}
