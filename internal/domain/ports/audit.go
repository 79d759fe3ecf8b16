package ports

import (
	"context"

	"github.com/mkrall/gymsync/internal/domain/entities"
)

// AuditSink records change history. Writes are fire-and-forget from the
// orchestrator's point of view: a sink failure must never abort the main
// write path.
type AuditSink interface {
	// LogChange appends one change entry.
	LogChange(ctx context.Context, entry entities.ChangeEntry) error

	// RecentChanges returns the most recent entries, newest first.
	RecentChanges(ctx context.Context, limit int) ([]entities.ChangeEntry, error)

	// ChangesByEvent returns all entries for one record, newest first.
	ChangesByEvent(ctx context.Context, eventID string) ([]entities.ChangeEntry, error)

	// ChangesByGym returns recent entries for one gym, newest first.
	ChangesByGym(ctx context.Context, gymID string, limit int) ([]entities.ChangeEntry, error)
}
