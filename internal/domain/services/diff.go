package services

import (
	"sort"
	"time"

	"github.com/mkrall/gymsync/internal/domain/entities"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// compareFields is the fixed field set used for change detection.
// acknowledged_errors is deliberately absent: a reviewer dismissing a
// warning must never re-flag the record as changed on the next sync.
var compareFields = []string{
	FieldTitle,
	FieldDate,
	FieldStartDate,
	FieldEndDate,
	FieldTime,
	FieldPrice,
	FieldType,
	FieldAgeMin,
	FieldAgeMax,
	FieldDescription,
	FieldHasFlyer,
	FieldFlyerURL,
	FieldDescriptionStatus,
	FieldValidationErrors,
}

// Compare diffs freshly scraped listings against the persisted store slice
// for one sync unit, partitioning every event URL into New, Changed, Deleted
// or Unchanged. It is deterministic, performs no I/O and does not mutate its
// inputs.
func Compare(incoming, existing []entities.EventRecord) entities.ComparisonResult {
	existingByURL := make(map[string]entities.EventRecord, len(existing))
	for _, e := range existing {
		existingByURL[e.EventURL] = e
	}
	incomingByURL := make(map[string]entities.EventRecord, len(incoming))
	for _, e := range incoming {
		incomingByURL[e.EventURL] = e
	}

	urls := make([]string, 0, len(existingByURL)+len(incomingByURL))
	for url := range existingByURL {
		urls = append(urls, url)
	}
	for url := range incomingByURL {
		if _, seen := existingByURL[url]; !seen {
			urls = append(urls, url)
		}
	}
	sort.Strings(urls)

	today := timeNow().Format("2006-01-02")

	var result entities.ComparisonResult
	for _, url := range urls {
		ex, haveExisting := existingByURL[url]
		in, haveIncoming := incomingByURL[url]

		switch {
		case haveIncoming && !haveExisting:
			result.New = append(result.New, in)

		case haveExisting && !haveIncoming:
			// Absence from a scrape is only evidence of cancellation for
			// events that have not started yet. The source lists upcoming
			// events only, so started and past events are silently ignored.
			// Records already soft-deleted stay out too: re-deleting them
			// would be a no-op, and counting them against the deletion guard
			// could pause a unit with no new deletions pending.
			if !ex.IsDeleted() && deletable(&ex, today) {
				result.Deleted = append(result.Deleted, ex)
			}

		default:
			changes := changedFields(&ex, &in)
			wasDeleted := ex.IsDeleted()
			if len(changes) > 0 || wasDeleted {
				result.Changed = append(result.Changed, entities.ChangedPair{
					Existing:   ex,
					Incoming:   in,
					Changes:    changes,
					WasDeleted: wasDeleted,
				})
			} else {
				result.Unchanged = append(result.Unchanged, ex)
			}
		}
	}

	return result
}

// deletable reports whether a record missing from a fresh scrape may be
// soft-deleted: its start date must be strictly after today and its end date
// on or after today.
func deletable(rec *entities.EventRecord, today string) bool {
	start, _ := normalizeDate(rec.EffectiveStartDate()).(string)
	if start == "" || start <= today {
		return false
	}
	end, _ := normalizeDate(rec.EffectiveEndDate()).(string)
	return end >= today
}

// changedFields compares the fixed field set through the normalizer and
// returns one FieldChange per differing field, normalized values included.
func changedFields(existing, incoming *entities.EventRecord) []entities.FieldChange {
	var changes []entities.FieldChange
	for _, field := range compareFields {
		oldVal := Normalize(field, fieldValue(existing, field))
		newVal := Normalize(field, fieldValue(incoming, field))
		if oldVal != newVal {
			changes = append(changes, entities.FieldChange{Field: field, Old: oldVal, New: newVal})
		}
	}
	return changes
}

// fieldValue extracts a raw comparison value from a record by field name.
func fieldValue(rec *entities.EventRecord, field string) any {
	switch field {
	case FieldTitle:
		return rec.Title
	case FieldDate:
		return rec.Date
	case FieldStartDate:
		return rec.StartDate
	case FieldEndDate:
		return rec.EndDate
	case FieldTime:
		return rec.Time
	case FieldPrice:
		return rec.Price
	case FieldType:
		return string(rec.Type)
	case FieldAgeMin:
		return rec.AgeMin
	case FieldAgeMax:
		return rec.AgeMax
	case FieldDescription:
		return rec.Description
	case FieldHasFlyer:
		return rec.HasFlyer
	case FieldFlyerURL:
		return rec.FlyerURL
	case FieldDescriptionStatus:
		return string(rec.DescriptionStatus)
	case FieldValidationErrors:
		return rec.ValidationErrors
	default:
		return nil
	}
}
