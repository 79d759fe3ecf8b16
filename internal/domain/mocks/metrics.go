package mocks

import "github.com/mkrall/gymsync/internal/domain/entities"

// MetricsRecorder is a mock implementation of ports.MetricsRecorder that
// counts calls by label.
type MetricsRecorder struct {
	Fetches map[string]int
	Units   map[string]int
}

// NewMetricsRecorder creates a new mock MetricsRecorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{
		Fetches: make(map[string]int),
		Units:   make(map[string]int),
	}
}

// RecordFetch counts one source request by outcome.
func (m *MetricsRecorder) RecordFetch(gymID string, status string) {
	m.Fetches[gymID+"/"+status]++
}

// RecordUnit records the outcome of one unit pass.
func (m *MetricsRecorder) RecordUnit(gymID string, eventType entities.EventType, state string, _ entities.ComparisonSummary) {
	m.Units[gymID+"/"+string(eventType)+"/"+state]++
}
