package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mkrall/gymsync/internal/domain/entities"
)

// Field names used in diff comparison and normalization. These mirror the
// store's column names so that change entries read naturally.
const (
	FieldTitle             = "title"
	FieldDate              = "date"
	FieldStartDate         = "start_date"
	FieldEndDate           = "end_date"
	FieldTime              = "time"
	FieldPrice             = "price"
	FieldType              = "type"
	FieldAgeMin            = "age_min"
	FieldAgeMax            = "age_max"
	FieldDescription       = "description"
	FieldHasFlyer          = "has_flyer"
	FieldFlyerURL          = "flyer_url"
	FieldDescriptionStatus = "description_status"
	FieldValidationErrors  = "validation_errors"
)

// Normalize canonicalizes a field value for comparison so representational
// differences (whitespace, "0" vs absent, ISO timestamp vs date-only) never
// register as a change. It is pure and total: unparseable input degrades to
// nil rather than panicking, because scraped data is adversarial.
//
// Normalized outputs are always nil, string, float64 or bool, so results
// compare correctly with ==.
func Normalize(field string, value any) any {
	switch field {
	case FieldPrice, FieldAgeMin, FieldAgeMax:
		return normalizeNumber(value)
	case FieldDate, FieldStartDate, FieldEndDate:
		return normalizeDate(value)
	case FieldTime:
		return normalizeFreeText(value)
	case FieldDescription:
		return normalizeLongText(value)
	case FieldValidationErrors:
		return normalizeErrorList(value)
	default:
		return normalizeDefault(value)
	}
}

// normalizeNumber parses numeric fields. NaN, zero, nil and empty string all
// normalize to nil: a zero price or age means "not set" in the source data.
func normalizeNumber(value any) any {
	var n float64
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case *float64:
		if v == nil {
			return nil
		}
		n = *v
	case *int:
		if v == nil {
			return nil
		}
		n = float64(*v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimPrefix(s, "$"), 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if math.IsNaN(n) || n == 0 {
		return nil
	}
	return n
}

// normalizeDate strips any time-of-day component, keeping YYYY-MM-DD.
func normalizeDate(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return v.Format("2006-01-02")
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		if i := strings.IndexAny(s, "T "); i > 0 {
			s = s[:i]
		}
		return s
	default:
		return nil
	}
}

// normalizeFreeText trims and collapses internal whitespace runs.
func normalizeFreeText(value any) any {
	s, ok := value.(string)
	if !ok {
		return normalizeDefault(value)
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return strings.Join(fields, " ")
}

// normalizeLongText trims; empty or whitespace-only text normalizes to nil.
func normalizeLongText(value any) any {
	s, ok := value.(string)
	if !ok {
		return normalizeDefault(value)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// normalizeErrorList canonicalizes a validation error list: empty is nil,
// otherwise entries are sorted by (type, message) and serialized so two
// lists with the same entries in different order compare equal.
func normalizeErrorList(value any) any {
	errs, ok := value.([]entities.ValidationError)
	if !ok || len(errs) == 0 {
		return nil
	}

	sorted := make([]entities.ValidationError, len(errs))
	copy(sorted, errs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		return sorted[i].Message < sorted[j].Message
	})

	var b strings.Builder
	for _, e := range sorted {
		fmt.Fprintf(&b, "%s\x1f%s\x1e", e.Type, e.Message)
	}
	return b.String()
}

// normalizeDefault trims strings, passes numbers and bools through, and
// normalizes empty values to nil.
func normalizeDefault(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		return s
	case float64:
		return v
	case int:
		return float64(v)
	case bool:
		return v
	default:
		return nil
	}
}
