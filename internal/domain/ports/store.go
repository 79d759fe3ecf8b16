// Package ports defines the boundary interfaces the domain depends on.
package ports

import (
	"context"

	"github.com/mkrall/gymsync/internal/domain/entities"
)

// EventFilter narrows a store query. Zero values mean "any".
type EventFilter struct {
	GymID          string
	EventType      entities.EventType
	IncludeDeleted bool
}

// EventStore is the persisted record store. EventURL is the matching
// identity; ID is the mutation identity. Records are soft-deleted only --
// this subsystem never hard-deletes.
type EventStore interface {
	// EnsureSchema creates the store schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the underlying connection.
	Close() error

	// Event operations

	// Find returns records matching the filter, ordered by date.
	Find(ctx context.Context, filter EventFilter) ([]entities.EventRecord, error)

	// FindByID returns a single record, or nil if not found.
	FindByID(ctx context.Context, id string) (*entities.EventRecord, error)

	// FindByURL returns the record with the given event URL in a gym
	// (including soft-deleted rows), or nil if not found.
	FindByURL(ctx context.Context, gymID, eventURL string) (*entities.EventRecord, error)

	// InsertMany inserts new records, assigning store IDs, and returns them.
	InsertMany(ctx context.Context, records []entities.EventRecord) ([]entities.EventRecord, error)

	// UpdateContent overwrites a record's listing content and validation
	// fields with the incoming data, clearing any stale soft-delete mark.
	UpdateContent(ctx context.Context, id string, incoming entities.EventRecord) (*entities.EventRecord, error)

	// RefreshValidation rewrites only the validation, flyer and availability
	// fields. Used for content-unchanged records whose checker output moved.
	RefreshValidation(ctx context.Context, id string, incoming entities.EventRecord) error

	// SetAcknowledgedErrors replaces a record's acknowledgment list.
	SetAcknowledgedErrors(ctx context.Context, id string, acks []entities.Acknowledgment) (*entities.EventRecord, error)

	// SetVerifiedErrors replaces a record's verification list.
	SetVerifiedErrors(ctx context.Context, id string, verified []entities.VerifiedError) (*entities.EventRecord, error)

	// SoftDeleteByID marks a record deleted without removing it.
	SoftDeleteByID(ctx context.Context, id string) error

	// Pattern operations (program-wide dismissals)

	// SavePattern stores a program-wide dismissal, assigning an ID.
	SavePattern(ctx context.Context, pattern *entities.AcknowledgedPattern) error

	// ListPatterns returns patterns for a gym, or all when gymID is empty.
	ListPatterns(ctx context.Context, gymID string) ([]entities.AcknowledgedPattern, error)

	// DeletePattern removes a program-wide dismissal.
	DeletePattern(ctx context.Context, id string) error

	// Rule operations (permanent gym allow-list values)

	// SaveRule stores a gym rule, assigning an ID.
	SaveRule(ctx context.Context, rule *entities.ValidRule) error

	// ListRules returns rules for a gym, or all when gymID is empty.
	ListRules(ctx context.Context, gymID string) ([]entities.ValidRule, error)

	// DeleteRule removes a gym rule.
	DeleteRule(ctx context.Context, id string) error

	// Sync log operations

	// UpsertSyncLog overwrites the sync-log row for the entry's unit.
	UpsertSyncLog(ctx context.Context, entry entities.SyncLogEntry) error

	// ListSyncLog returns sync-log rows for a gym, or all when gymID is
	// empty, most recent first.
	ListSyncLog(ctx context.Context, gymID string) ([]entities.SyncLogEntry, error)
}
