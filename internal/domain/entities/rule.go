package entities

import "time"

// RuleType identifies what kind of value a gym rule allow-lists.
type RuleType string

const (
	RuleTypePrice          RuleType = "price"
	RuleTypeTime           RuleType = "time"
	RuleTypeProgramSynonym RuleType = "program_synonym"
)

// ValidRule is a permanent per-gym allow-list entry created from a dismissed
// error. It teaches future validation that Value is acceptable for the gym,
// e.g. a $20 price is a legitimate before-care add-on, not a mismatch.
type ValidRule struct {
	ID        string    `json:"id"`
	GymID     string    `json:"gym_id"`
	RuleType  RuleType  `json:"rule_type"`
	Value     string    `json:"value"`
	Label     string    `json:"label"`
	EventType EventType `json:"event_type"`
	CreatedAt time.Time `json:"created_at"`
}
