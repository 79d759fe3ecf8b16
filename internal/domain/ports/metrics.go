package ports

import "github.com/mkrall/gymsync/internal/domain/entities"

// MetricsRecorder receives sync telemetry. Implementations must be safe to
// call from the orchestrator's single worker; a nil-safe no-op recorder is
// acceptable.
type MetricsRecorder interface {
	// RecordFetch counts one source request by outcome ("ok", "error",
	// "retry").
	RecordFetch(gymID string, status string)

	// RecordUnit records the outcome of one unit pass.
	RecordUnit(gymID string, eventType entities.EventType, state string, summary entities.ComparisonSummary)
}
