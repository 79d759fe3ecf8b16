package services

import "github.com/mkrall/gymsync/internal/domain/entities"

// dataErrorTypes are mismatch errors where the detector found wrong
// information already present on the listing.
var dataErrorTypes = map[string]struct{}{
	"year_mismatch":       {},
	"date_mismatch":       {},
	"time_mismatch":       {},
	"age_mismatch":        {},
	"day_mismatch":        {},
	"program_mismatch":    {},
	"skill_mismatch":      {},
	"price_mismatch":      {},
	"title_desc_mismatch": {},
	"camp_price_mismatch": {},
}

// statusErrorTypes are informational registration-state notices.
var statusErrorTypes = map[string]struct{}{
	"registration_closed":   {},
	"registration_not_open": {},
	"sold_out":              {},
}

// Categorize classifies a validation error. An explicit category set by the
// checker wins; otherwise classification falls back to a fixed membership
// table, with formatting as the catch-all for completeness errors.
func Categorize(err entities.ValidationError) entities.ErrorCategory {
	if err.Category != "" {
		return err.Category
	}
	if _, ok := dataErrorTypes[err.Type]; ok {
		return entities.CategoryDataError
	}
	if _, ok := statusErrorTypes[err.Type]; ok {
		return entities.CategoryStatus
	}
	return entities.CategoryFormatting
}

var errorLabels = map[string]string{
	"year_mismatch":            "Year Mismatch",
	"date_mismatch":            "Date Mismatch",
	"day_mismatch":             "Day Mismatch",
	"time_mismatch":            "Time Mismatch",
	"age_mismatch":             "Age Mismatch",
	"program_mismatch":         "Program Mismatch",
	"missing_program_in_title": "Missing Program in Title",
	"skill_mismatch":           "Skill Mismatch",
	"price_mismatch":           "Price Mismatch",
	"camp_price_mismatch":      "Camp Price Mismatch",
	"title_desc_mismatch":      "Title/Description Mismatch",
	"camp_type_not_offered":    "Camp Type Not Offered",
	"registration_closed":      "Registration Closed",
	"registration_not_open":    "Registration Not Open Yet",
	"sold_out":                 "Sold Out",
}

// Label returns the display name for an error type. Unknown types pass
// through unchanged so new checker vocabulary never breaks rendering.
func Label(errorType string) string {
	if label, ok := errorLabels[errorType]; ok {
		return label
	}
	return errorType
}

// ActiveErrors filters a record's validation errors down to those that still
// need attention: sold_out notices are dropped (informational only), as is
// anything dismissed per-event or by a program-wide pattern.
func ActiveErrors(rec *entities.EventRecord, patterns []entities.AcknowledgedPattern) []entities.ValidationError {
	var active []entities.ValidationError
	for _, verr := range rec.ValidationErrors {
		if verr.Type == "sold_out" {
			continue
		}
		if IsAcknowledged(rec, patterns, verr.Message) {
			continue
		}
		active = append(active, verr)
	}
	return active
}

// IsAcknowledged reports whether an error message is dismissed for a record.
// Program-wide patterns are checked before per-event acknowledgments.
func IsAcknowledged(rec *entities.EventRecord, patterns []entities.AcknowledgedPattern, message string) bool {
	for _, p := range patterns {
		if p.Matches(rec.GymID, rec.Type, message) {
			return true
		}
	}
	for _, ack := range rec.AcknowledgedErrors {
		if ack.Message == message {
			return true
		}
	}
	return false
}
