package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkrall/gymsync/internal/domain/entities"
)

func TestNormalizeNumbers(t *testing.T) {
	price := 20.0
	zero := 0.0
	age := 5

	tests := []struct {
		name  string
		field string
		value any
		want  any
	}{
		{"float passes through", FieldPrice, 20.0, 20.0},
		{"pointer dereferenced", FieldPrice, &price, 20.0},
		{"dollar string parsed", FieldPrice, "$20", 20.0},
		{"plain string parsed", FieldPrice, "20.50", 20.5},
		{"zero is absent", FieldPrice, 0.0, nil},
		{"zero pointer is absent", FieldPrice, &zero, nil},
		{"nil pointer is absent", FieldPrice, (*float64)(nil), nil},
		{"empty string is absent", FieldPrice, "", nil},
		{"garbage is absent", FieldPrice, "call us", nil},
		{"int age", FieldAgeMin, 5, 5.0},
		{"int pointer age", FieldAgeMin, &age, 5.0},
		{"zero age is absent", FieldAgeMax, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.field, tt.value))
		})
	}
}

func TestNormalizeDates(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"date only unchanged", "2026-07-04", "2026-07-04"},
		{"iso timestamp stripped", "2026-07-04T00:00:00Z", "2026-07-04"},
		{"space separated stripped", "2026-07-04 10:00:00", "2026-07-04"},
		{"empty is absent", "", nil},
		{"whitespace is absent", "   ", nil},
		{"time value formatted", time.Date(2026, 7, 4, 15, 0, 0, 0, time.UTC), "2026-07-04"},
		{"zero time is absent", time.Time{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(FieldStartDate, tt.value))
		})
	}
}

func TestNormalizeFreeText(t *testing.T) {
	assert.Equal(t, "9:00 AM - 12:00 PM", Normalize(FieldTime, "  9:00 AM   -  12:00 PM "))
	assert.Nil(t, Normalize(FieldTime, "   "))
	assert.Equal(t, "Summer Camp", Normalize(FieldTitle, " Summer Camp "))
}

func TestNormalizeErrorListOrderInsensitive(t *testing.T) {
	a := []entities.ValidationError{
		{Type: "price_mismatch", Message: "price differs"},
		{Type: "age_mismatch", Message: "age differs"},
	}
	b := []entities.ValidationError{
		{Type: "age_mismatch", Message: "age differs"},
		{Type: "price_mismatch", Message: "price differs"},
	}

	assert.Equal(t, Normalize(FieldValidationErrors, a), Normalize(FieldValidationErrors, b))
	assert.Nil(t, Normalize(FieldValidationErrors, []entities.ValidationError{}))
	assert.Nil(t, Normalize(FieldValidationErrors, nil))
}

func TestNormalizeIsTotal(t *testing.T) {
	// Unparseable input degrades to nil, never panics.
	assert.NotPanics(t, func() {
		Normalize(FieldPrice, struct{}{})
		Normalize(FieldStartDate, 42)
		Normalize(FieldTitle, map[string]int{})
	})
}
