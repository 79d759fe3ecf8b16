package entities

import (
	"encoding/json"
	"time"
)

// ErrorCategory groups validation errors for review workflows.
type ErrorCategory string

const (
	// CategoryDataError marks errors where the detector found wrong
	// information already present (mismatches).
	CategoryDataError ErrorCategory = "data_error"
	// CategoryFormatting marks completeness problems (missing fields etc.).
	CategoryFormatting ErrorCategory = "formatting"
	// CategoryStatus marks informational registration-state errors.
	CategoryStatus ErrorCategory = "status"
)

// ValidationError is one machine-detected data-quality problem attached to a
// listing by the external content checker. Category, when set upstream,
// overrides taxonomy inference.
type ValidationError struct {
	Type     string        `json:"type"`
	Message  string        `json:"message"`
	Severity string        `json:"severity,omitempty"`
	Category ErrorCategory `json:"category,omitempty"`
}

// Acknowledgment records a reviewer dismissing a validation error on a
// single event. Uniqueness is by Message.
type Acknowledgment struct {
	Message     string    `json:"message"`
	Note        string    `json:"note,omitempty"`
	DismissedAt time.Time `json:"dismissed_at"`
	HasRule     bool      `json:"has_rule,omitempty"`
}

// UnmarshalJSON accepts both the current object shape and the legacy bare
// string form (early records stored just the message text). Legacy entries
// are normalized to the full struct on read and never written back as
// strings.
func (a *Acknowledgment) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Acknowledgment{Message: s}
		return nil
	}

	type alias Acknowledgment
	var full alias
	if err := json.Unmarshal(data, &full); err != nil {
		return err
	}
	*a = Acknowledgment(full)
	return nil
}

// Verdict is a human judgment on whether a validation error was a true or
// false positive.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
)

// IsValid reports whether v is a known verdict value.
func (v Verdict) IsValid() bool {
	return v == VerdictCorrect || v == VerdictIncorrect
}

// VerifiedError records a reviewer's verdict on one validation error. At
// most one live entry exists per Message per event; setting a new verdict
// replaces any prior entry.
type VerifiedError struct {
	Message    string        `json:"message"`
	VerifiedAt time.Time     `json:"verified_at"`
	Category   ErrorCategory `json:"category,omitempty"`
	Verdict    Verdict       `json:"verdict"`
	Note       string        `json:"note,omitempty"`
}
