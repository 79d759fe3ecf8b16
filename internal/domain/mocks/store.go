// Package mocks provides hand-written in-memory port implementations for
// tests.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mkrall/gymsync/internal/domain/entities"
	"github.com/mkrall/gymsync/internal/domain/ports"
)

// EventStore is a mock implementation of ports.EventStore backed by maps.
// Set Err to make every operation fail; set FailAcks to fail only the
// acknowledgment write (for partial-write tests). Like a real database
// driver, operations fail when the context is already cancelled.
type EventStore struct {
	Events   map[string]*entities.EventRecord
	Patterns map[string]*entities.AcknowledgedPattern
	Rules    map[string]*entities.ValidRule
	SyncLog  map[string]entities.SyncLogEntry

	Err      error
	FailAcks error

	nextID int
}

// NewEventStore creates a new mock EventStore.
func NewEventStore() *EventStore {
	return &EventStore{
		Events:   make(map[string]*entities.EventRecord),
		Patterns: make(map[string]*entities.AcknowledgedPattern),
		Rules:    make(map[string]*entities.ValidRule),
		SyncLog:  make(map[string]entities.SyncLogEntry),
	}
}

// Seed inserts a record directly, assigning an ID when missing.
func (m *EventStore) Seed(rec entities.EventRecord) *entities.EventRecord {
	if rec.ID == "" {
		rec.ID = m.newID()
	}
	m.Events[rec.ID] = &rec
	return &rec
}

func (m *EventStore) newID() string {
	m.nextID++
	return fmt.Sprintf("evt-%d", m.nextID)
}

func (m *EventStore) fail(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Err
}

// EnsureSchema creates the store schema if it doesn't exist.
func (m *EventStore) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the underlying connection.
func (m *EventStore) Close() error {
	return nil
}

// Find returns records matching the filter, ordered by date.
func (m *EventStore) Find(ctx context.Context, filter ports.EventFilter) ([]entities.EventRecord, error) {
	if err := m.fail(ctx); err != nil {
		return nil, err
	}
	var result []entities.EventRecord
	for _, rec := range m.Events {
		if filter.GymID != "" && rec.GymID != filter.GymID {
			continue
		}
		if filter.EventType != "" && rec.Type != filter.EventType {
			continue
		}
		if !filter.IncludeDeleted && rec.IsDeleted() {
			continue
		}
		result = append(result, *rec)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].EffectiveStartDate() != result[j].EffectiveStartDate() {
			return result[i].EffectiveStartDate() < result[j].EffectiveStartDate()
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// FindByID returns a single record, or nil if not found.
func (m *EventStore) FindByID(_ context.Context, id string) (*entities.EventRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	rec, ok := m.Events[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// FindByURL returns the record with the given event URL in a gym, including
// soft-deleted rows.
func (m *EventStore) FindByURL(_ context.Context, gymID, eventURL string) (*entities.EventRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, rec := range m.Events {
		if rec.GymID == gymID && rec.EventURL == eventURL {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

// InsertMany inserts new records, assigning store IDs.
func (m *EventStore) InsertMany(ctx context.Context, records []entities.EventRecord) ([]entities.EventRecord, error) {
	if err := m.fail(ctx); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	inserted := make([]entities.EventRecord, 0, len(records))
	for _, rec := range records {
		rec.ID = m.newID()
		rec.CreatedAt = now
		rec.UpdatedAt = now
		m.Events[rec.ID] = &rec
		inserted = append(inserted, rec)
	}
	return inserted, nil
}

// UpdateContent overwrites a record's listing content and validation fields,
// clearing any stale soft-delete mark.
func (m *EventStore) UpdateContent(ctx context.Context, id string, incoming entities.EventRecord) (*entities.EventRecord, error) {
	if err := m.fail(ctx); err != nil {
		return nil, err
	}
	rec, ok := m.Events[id]
	if !ok {
		return nil, fmt.Errorf("event %s not found", id)
	}
	incoming.ID = rec.ID
	incoming.AcknowledgedErrors = rec.AcknowledgedErrors
	incoming.VerifiedErrors = rec.VerifiedErrors
	incoming.CreatedAt = rec.CreatedAt
	incoming.UpdatedAt = time.Now().UTC()
	incoming.DeletedAt = nil
	m.Events[id] = &incoming
	cp := incoming
	return &cp, nil
}

// RefreshValidation rewrites only the validation, flyer and availability
// fields.
func (m *EventStore) RefreshValidation(ctx context.Context, id string, incoming entities.EventRecord) error {
	if err := m.fail(ctx); err != nil {
		return err
	}
	rec, ok := m.Events[id]
	if !ok {
		return fmt.Errorf("event %s not found", id)
	}
	rec.ValidationErrors = incoming.ValidationErrors
	rec.HasFlyer = incoming.HasFlyer
	rec.FlyerURL = incoming.FlyerURL
	rec.HasOpenings = incoming.HasOpenings
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

// SetAcknowledgedErrors replaces a record's acknowledgment list.
func (m *EventStore) SetAcknowledgedErrors(_ context.Context, id string, acks []entities.Acknowledgment) (*entities.EventRecord, error) {
	if m.FailAcks != nil {
		return nil, m.FailAcks
	}
	if m.Err != nil {
		return nil, m.Err
	}
	rec, ok := m.Events[id]
	if !ok {
		return nil, fmt.Errorf("event %s not found", id)
	}
	rec.AcknowledgedErrors = acks
	rec.UpdatedAt = time.Now().UTC()
	cp := *rec
	return &cp, nil
}

// SetVerifiedErrors replaces a record's verification list.
func (m *EventStore) SetVerifiedErrors(_ context.Context, id string, verified []entities.VerifiedError) (*entities.EventRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	rec, ok := m.Events[id]
	if !ok {
		return nil, fmt.Errorf("event %s not found", id)
	}
	rec.VerifiedErrors = verified
	rec.UpdatedAt = time.Now().UTC()
	cp := *rec
	return &cp, nil
}

// SoftDeleteByID marks a record deleted without removing it.
func (m *EventStore) SoftDeleteByID(ctx context.Context, id string) error {
	if err := m.fail(ctx); err != nil {
		return err
	}
	rec, ok := m.Events[id]
	if !ok {
		return fmt.Errorf("event %s not found", id)
	}
	now := time.Now().UTC()
	rec.DeletedAt = &now
	rec.UpdatedAt = now
	return nil
}

// Pattern methods.

// SavePattern stores a program-wide dismissal, assigning an ID.
func (m *EventStore) SavePattern(_ context.Context, pattern *entities.AcknowledgedPattern) error {
	if m.Err != nil {
		return m.Err
	}
	if pattern.ID == "" {
		pattern.ID = fmt.Sprintf("pat-%d", len(m.Patterns)+1)
	}
	cp := *pattern
	m.Patterns[pattern.ID] = &cp
	return nil
}

// ListPatterns returns patterns for a gym, or all when gymID is empty.
func (m *EventStore) ListPatterns(_ context.Context, gymID string) ([]entities.AcknowledgedPattern, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AcknowledgedPattern
	for _, p := range m.Patterns {
		if gymID == "" || p.GymID == gymID {
			result = append(result, *p)
		}
	}
	// Sort by ID for deterministic test results
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// DeletePattern removes a program-wide dismissal.
func (m *EventStore) DeletePattern(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Patterns, id)
	return nil
}

// Rule methods.

// SaveRule stores a gym rule, assigning an ID.
func (m *EventStore) SaveRule(_ context.Context, rule *entities.ValidRule) error {
	if m.Err != nil {
		return m.Err
	}
	if rule.ID == "" {
		rule.ID = fmt.Sprintf("rule-%d", len(m.Rules)+1)
	}
	cp := *rule
	m.Rules[rule.ID] = &cp
	return nil
}

// ListRules returns rules for a gym, or all when gymID is empty.
func (m *EventStore) ListRules(_ context.Context, gymID string) ([]entities.ValidRule, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.ValidRule
	for _, r := range m.Rules {
		if gymID == "" || r.GymID == gymID {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// DeleteRule removes a gym rule.
func (m *EventStore) DeleteRule(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Rules, id)
	return nil
}

// Sync log methods.

// UpsertSyncLog overwrites the sync-log row for the entry's unit.
func (m *EventStore) UpsertSyncLog(ctx context.Context, entry entities.SyncLogEntry) error {
	if err := m.fail(ctx); err != nil {
		return err
	}
	m.SyncLog[entry.GymID+"/"+string(entry.EventType)] = entry
	return nil
}

// ListSyncLog returns sync-log rows for a gym, or all when gymID is empty.
func (m *EventStore) ListSyncLog(_ context.Context, gymID string) ([]entities.SyncLogEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.SyncLogEntry
	for _, e := range m.SyncLog {
		if gymID == "" || e.GymID == gymID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastSyncedAt.After(result[j].LastSyncedAt)
	})
	return result, nil
}
