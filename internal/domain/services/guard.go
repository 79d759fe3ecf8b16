package services

import "fmt"

// GuardConfig holds the mass-deletion circuit breaker thresholds. Both
// conditions must hold for the guard to trip. Thresholds are configuration
// so operators can tune them per deployment.
type GuardConfig struct {
	// MaxDeletions is the absolute count above which the ratio check
	// applies.
	MaxDeletions int `yaml:"max_deletions"`
	// MaxDeletedRatio is the fraction of active records above which the
	// guard trips.
	MaxDeletedRatio float64 `yaml:"max_deleted_ratio"`
}

// DefaultGuardConfig returns the stock thresholds.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{MaxDeletions: 5, MaxDeletedRatio: 0.5}
}

// GuardDecision is the outcome of a deletion safety check.
type GuardDecision struct {
	Proceed bool
	Reason  string
}

// CheckDeletionSafety decides whether a unit's pending soft-deletions may be
// applied. A transient scrape failure (empty or truncated page) must never
// mass-delete legitimate future events, so when too many deletions are
// pending relative to the active record count the unit is paused for manual
// review instead.
func CheckDeletionSafety(cfg GuardConfig, deleted, existingActive int) GuardDecision {
	if deleted <= cfg.MaxDeletions || existingActive == 0 {
		return GuardDecision{Proceed: true}
	}

	ratio := float64(deleted) / float64(existingActive)
	if ratio <= cfg.MaxDeletedRatio {
		return GuardDecision{Proceed: true}
	}

	return GuardDecision{
		Proceed: false,
		Reason: fmt.Sprintf(
			"%d of %d active events (%.0f%%) would be deleted, above the %d/%.0f%% safety threshold; the scrape may be incomplete",
			deleted, existingActive, ratio*100, cfg.MaxDeletions, cfg.MaxDeletedRatio*100,
		),
	}
}
