package mocks

import (
	"context"

	"github.com/mkrall/gymsync/internal/domain/entities"
)

// AuditSink is a mock implementation of ports.AuditSink that records
// entries in order.
type AuditSink struct {
	Entries []entities.ChangeEntry
	Err     error
}

// NewAuditSink creates a new mock AuditSink.
func NewAuditSink() *AuditSink {
	return &AuditSink{}
}

// LogChange appends one change entry.
func (m *AuditSink) LogChange(_ context.Context, entry entities.ChangeEntry) error {
	if m.Err != nil {
		return m.Err
	}
	entry.ID = int64(len(m.Entries) + 1)
	m.Entries = append(m.Entries, entry)
	return nil
}

// RecentChanges returns the most recent entries, newest first.
func (m *AuditSink) RecentChanges(_ context.Context, limit int) ([]entities.ChangeEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.newestFirst(limit, func(entities.ChangeEntry) bool { return true }), nil
}

// ChangesByEvent returns all entries for one record, newest first.
func (m *AuditSink) ChangesByEvent(_ context.Context, eventID string) ([]entities.ChangeEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.newestFirst(0, func(e entities.ChangeEntry) bool { return e.EventID == eventID }), nil
}

// ChangesByGym returns recent entries for one gym, newest first.
func (m *AuditSink) ChangesByGym(_ context.Context, gymID string, limit int) ([]entities.ChangeEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.newestFirst(limit, func(e entities.ChangeEntry) bool { return e.GymID == gymID }), nil
}

// ByAction returns the recorded entries with the given action, oldest first.
func (m *AuditSink) ByAction(action entities.ChangeAction) []entities.ChangeEntry {
	var result []entities.ChangeEntry
	for _, e := range m.Entries {
		if e.Action == action {
			result = append(result, e)
		}
	}
	return result
}

func (m *AuditSink) newestFirst(limit int, keep func(entities.ChangeEntry) bool) []entities.ChangeEntry {
	var result []entities.ChangeEntry
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if !keep(m.Entries[i]) {
			continue
		}
		result = append(result, m.Entries[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result
}
