package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckDeletionSafety(t *testing.T) {
	cfg := DefaultGuardConfig()

	tests := []struct {
		name     string
		deleted  int
		existing int
		proceed  bool
	}{
		{"all six of six vanish", 6, 6, false},
		{"two of six vanish", 2, 6, true},
		{"exactly at absolute threshold", 5, 5, true},
		{"high count low ratio", 10, 100, true},
		{"high count high ratio", 10, 12, false},
		{"no deletions", 0, 50, true},
		{"empty store", 8, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := CheckDeletionSafety(cfg, tt.deleted, tt.existing)
			assert.Equal(t, tt.proceed, decision.Proceed)
			if !tt.proceed {
				assert.NotEmpty(t, decision.Reason)
			}
		})
	}
}

func TestCheckDeletionSafetyReasonCitesNumbers(t *testing.T) {
	decision := CheckDeletionSafety(DefaultGuardConfig(), 6, 6)

	assert.False(t, decision.Proceed)
	assert.Contains(t, decision.Reason, "6 of 6")
	assert.Contains(t, decision.Reason, "100%")
}

func TestCheckDeletionSafetyCustomThresholds(t *testing.T) {
	cfg := GuardConfig{MaxDeletions: 2, MaxDeletedRatio: 0.25}

	assert.False(t, CheckDeletionSafety(cfg, 3, 6).Proceed)
	assert.True(t, CheckDeletionSafety(cfg, 2, 6).Proceed)
}
