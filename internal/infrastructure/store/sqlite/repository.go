// Package sqlite provides a SQLite implementation of the EventStore and
// AuditSink interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/mkrall/gymsync/internal/domain/entities"
	"github.com/mkrall/gymsync/internal/domain/ports"
	"github.com/mkrall/gymsync/internal/infrastructure/config"
)

// generateUUID returns a new UUID string.
func generateUUID() string {
	return uuid.New().String()
}

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.EventStore and ports.AuditSink using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Event records (one row per program listing)
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		gym_id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		date TEXT,
		start_date TEXT,
		end_date TEXT,
		time TEXT,
		price REAL,
		age_min INTEGER,
		age_max INTEGER,
		description TEXT,
		description_status TEXT,
		has_flyer INTEGER NOT NULL DEFAULT 0,
		flyer_url TEXT,
		event_url TEXT NOT NULL,
		validation_errors TEXT,
		acknowledged_errors TEXT,
		verified_errors TEXT,
		has_openings INTEGER NOT NULL DEFAULT 1,
		registration_start_date TEXT,
		registration_end_date TEXT,
		deleted_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(gym_id, event_url)
	);
	CREATE INDEX IF NOT EXISTS idx_events_gym ON events(gym_id);
	CREATE INDEX IF NOT EXISTS idx_events_gym_type ON events(gym_id, type);
	CREATE INDEX IF NOT EXISTS idx_events_deleted ON events(deleted_at);

	-- Program-wide dismissal patterns
	CREATE TABLE IF NOT EXISTS acknowledged_patterns (
		id TEXT PRIMARY KEY,
		gym_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		error_message TEXT NOT NULL,
		note TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(gym_id, event_type, error_message)
	);
	CREATE INDEX IF NOT EXISTS idx_patterns_gym ON acknowledged_patterns(gym_id);

	-- Permanent gym allow-list values
	CREATE TABLE IF NOT EXISTS gym_valid_values (
		id TEXT PRIMARY KEY,
		gym_id TEXT NOT NULL,
		rule_type TEXT NOT NULL,
		value TEXT NOT NULL,
		label TEXT,
		event_type TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_valid_values_gym ON gym_valid_values(gym_id);

	-- Per-unit sync log (one row per gym and event type)
	CREATE TABLE IF NOT EXISTS sync_log (
		gym_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		events_found INTEGER NOT NULL DEFAULT 0,
		new_count INTEGER NOT NULL DEFAULT 0,
		last_synced_at TIMESTAMP NOT NULL,
		PRIMARY KEY (gym_id, event_type)
	);

	-- Change history
	CREATE TABLE IF NOT EXISTS event_audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id TEXT NOT NULL,
		gym_id TEXT NOT NULL,
		action TEXT NOT NULL,
		field TEXT,
		old_value TEXT,
		new_value TEXT,
		event_title TEXT,
		event_date TEXT,
		source TEXT,
		changed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_event ON event_audit_log(event_id);
	CREATE INDEX IF NOT EXISTS idx_audit_gym ON event_audit_log(gym_id);
	CREATE INDEX IF NOT EXISTS idx_audit_changed ON event_audit_log(changed_at);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

const eventColumns = `id, gym_id, type, title, date, start_date, end_date, time,
	price, age_min, age_max, description, description_status, has_flyer,
	flyer_url, event_url, validation_errors, acknowledged_errors,
	verified_errors, has_openings, registration_start_date,
	registration_end_date, deleted_at, created_at, updated_at`

// Find returns records matching the filter, ordered by date.
func (r *Repository) Find(ctx context.Context, filter ports.EventFilter) ([]entities.EventRecord, error) {
	query := "SELECT " + eventColumns + " FROM events WHERE 1=1"
	var args []any
	if filter.GymID != "" {
		query += " AND gym_id = ?"
		args = append(args, filter.GymID)
	}
	if filter.EventType != "" {
		query += " AND type = ?"
		args = append(args, string(filter.EventType))
	}
	if !filter.IncludeDeleted {
		query += " AND deleted_at IS NULL"
	}
	query += " ORDER BY COALESCE(start_date, date), id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var result []entities.EventRecord
	for rows.Next() {
		rec, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

// FindByID returns a single record, or nil if not found.
func (r *Repository) FindByID(ctx context.Context, id string) (*entities.EventRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id)
	rec, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// FindByURL returns the record with the given event URL in a gym, including
// soft-deleted rows.
func (r *Repository) FindByURL(ctx context.Context, gymID, eventURL string) (*entities.EventRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE gym_id = ? AND event_url = ?",
		gymID, eventURL)
	rec, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// InsertMany inserts new records, assigning store IDs.
func (r *Repository) InsertMany(ctx context.Context, records []entities.EventRecord) ([]entities.EventRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := timeNow().UTC()
	inserted := make([]entities.EventRecord, 0, len(records))
	for _, rec := range records {
		rec.ID = generateUUID()
		rec.CreatedAt = now
		rec.UpdatedAt = now
		args, err := eventArgs(&rec)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("inserting event %s: %w", rec.EventURL, err)
		}
		inserted = append(inserted, rec)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing inserts: %w", err)
	}
	return inserted, nil
}

// UpdateContent overwrites a record's listing content and validation fields
// with the incoming data, clearing any stale soft-delete mark. Reviewer
// state (acknowledged and verified errors) is preserved.
func (r *Repository) UpdateContent(ctx context.Context, id string, incoming entities.EventRecord) (*entities.EventRecord, error) {
	validation, err := marshalJSON(incoming.ValidationErrors)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE events SET
			title = ?, date = ?, start_date = ?, end_date = ?, time = ?,
			price = ?, age_min = ?, age_max = ?, description = ?,
			description_status = ?, has_flyer = ?, flyer_url = ?,
			validation_errors = ?, has_openings = ?,
			registration_start_date = ?, registration_end_date = ?,
			deleted_at = NULL, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		incoming.Title,
		nullString(incoming.Date),
		nullString(incoming.StartDate),
		nullString(incoming.EndDate),
		nullString(incoming.Time),
		incoming.Price,
		incoming.AgeMin,
		incoming.AgeMax,
		nullString(incoming.Description),
		string(incoming.DescriptionStatus),
		incoming.HasFlyer,
		nullString(incoming.FlyerURL),
		validation,
		incoming.HasOpenings,
		nullString(incoming.RegistrationStartDate),
		nullString(incoming.RegistrationEndDate),
		timeNow().UTC(),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating event %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("event %s not found", id)
	}
	return r.FindByID(ctx, id)
}

// RefreshValidation rewrites only the validation, flyer and availability
// fields.
func (r *Repository) RefreshValidation(ctx context.Context, id string, incoming entities.EventRecord) error {
	validation, err := marshalJSON(incoming.ValidationErrors)
	if err != nil {
		return err
	}
	query := `
		UPDATE events SET
			validation_errors = ?, has_flyer = ?, flyer_url = ?,
			has_openings = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.ExecContext(ctx, query,
		validation,
		incoming.HasFlyer,
		nullString(incoming.FlyerURL),
		incoming.HasOpenings,
		timeNow().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("refreshing validation for event %s: %w", id, err)
	}
	return nil
}

// SetAcknowledgedErrors replaces a record's acknowledgment list.
func (r *Repository) SetAcknowledgedErrors(ctx context.Context, id string, acks []entities.Acknowledgment) (*entities.EventRecord, error) {
	data, err := marshalJSON(acks)
	if err != nil {
		return nil, err
	}
	if err := r.updateColumn(ctx, id, "acknowledged_errors", data); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// SetVerifiedErrors replaces a record's verification list.
func (r *Repository) SetVerifiedErrors(ctx context.Context, id string, verified []entities.VerifiedError) (*entities.EventRecord, error) {
	data, err := marshalJSON(verified)
	if err != nil {
		return nil, err
	}
	if err := r.updateColumn(ctx, id, "verified_errors", data); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *Repository) updateColumn(ctx context.Context, id, column string, value any) error {
	query := fmt.Sprintf("UPDATE events SET %s = ?, updated_at = ? WHERE id = ?", column)
	res, err := r.db.ExecContext(ctx, query, value, timeNow().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating %s for event %s: %w", column, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("event %s not found", id)
	}
	return nil
}

// SoftDeleteByID marks a record deleted without removing it.
func (r *Repository) SoftDeleteByID(ctx context.Context, id string) error {
	now := timeNow().UTC()
	res, err := r.db.ExecContext(ctx,
		"UPDATE events SET deleted_at = ?, updated_at = ? WHERE id = ?",
		now, now, id)
	if err != nil {
		return fmt.Errorf("soft-deleting event %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("event %s not found", id)
	}
	return nil
}

// Pattern methods.

// SavePattern stores a program-wide dismissal, assigning an ID.
func (r *Repository) SavePattern(ctx context.Context, pattern *entities.AcknowledgedPattern) error {
	if pattern.ID == "" {
		pattern.ID = generateUUID()
	}
	if pattern.CreatedAt.IsZero() {
		pattern.CreatedAt = timeNow().UTC()
	}
	query := `
		INSERT INTO acknowledged_patterns (id, gym_id, event_type, error_message, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(gym_id, event_type, error_message) DO UPDATE SET
			note = excluded.note
	`
	_, err := r.db.ExecContext(ctx, query,
		pattern.ID,
		pattern.GymID,
		string(pattern.EventType),
		pattern.ErrorMessage,
		nullString(pattern.Note),
		pattern.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving pattern: %w", err)
	}
	return nil
}

// ListPatterns returns patterns for a gym, or all when gymID is empty.
func (r *Repository) ListPatterns(ctx context.Context, gymID string) ([]entities.AcknowledgedPattern, error) {
	query := `
		SELECT id, gym_id, event_type, error_message, COALESCE(note, ''), created_at
		FROM acknowledged_patterns
	`
	var args []any
	if gymID != "" {
		query += " WHERE gym_id = ?"
		args = append(args, gymID)
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying patterns: %w", err)
	}
	defer rows.Close()

	var result []entities.AcknowledgedPattern
	for rows.Next() {
		var p entities.AcknowledgedPattern
		var eventType string
		if err := rows.Scan(&p.ID, &p.GymID, &eventType, &p.ErrorMessage, &p.Note, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning pattern: %w", err)
		}
		p.EventType = entities.EventType(eventType)
		result = append(result, p)
	}
	return result, rows.Err()
}

// DeletePattern removes a program-wide dismissal.
func (r *Repository) DeletePattern(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM acknowledged_patterns WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting pattern: %w", err)
	}
	return nil
}

// Rule methods.

// SaveRule stores a gym rule, assigning an ID.
func (r *Repository) SaveRule(ctx context.Context, rule *entities.ValidRule) error {
	if rule.ID == "" {
		rule.ID = generateUUID()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = timeNow().UTC()
	}
	query := `
		INSERT INTO gym_valid_values (id, gym_id, rule_type, value, label, event_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.GymID,
		string(rule.RuleType),
		rule.Value,
		nullString(rule.Label),
		string(rule.EventType),
		rule.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving rule: %w", err)
	}
	return nil
}

// ListRules returns rules for a gym, or all when gymID is empty.
func (r *Repository) ListRules(ctx context.Context, gymID string) ([]entities.ValidRule, error) {
	query := `
		SELECT id, gym_id, rule_type, value, COALESCE(label, ''), event_type, created_at
		FROM gym_valid_values
	`
	var args []any
	if gymID != "" {
		query += " WHERE gym_id = ?"
		args = append(args, gymID)
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer rows.Close()

	var result []entities.ValidRule
	for rows.Next() {
		var rule entities.ValidRule
		var ruleType, eventType string
		if err := rows.Scan(&rule.ID, &rule.GymID, &ruleType, &rule.Value, &rule.Label, &eventType, &rule.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		rule.RuleType = entities.RuleType(ruleType)
		rule.EventType = entities.EventType(eventType)
		result = append(result, rule)
	}
	return result, rows.Err()
}

// DeleteRule removes a gym rule.
func (r *Repository) DeleteRule(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM gym_valid_values WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}
	return nil
}

// Sync log methods.

// UpsertSyncLog overwrites the sync-log row for the entry's unit.
func (r *Repository) UpsertSyncLog(ctx context.Context, entry entities.SyncLogEntry) error {
	query := `
		INSERT INTO sync_log (gym_id, event_type, events_found, new_count, last_synced_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(gym_id, event_type) DO UPDATE SET
			events_found = excluded.events_found,
			new_count = excluded.new_count,
			last_synced_at = excluded.last_synced_at
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.GymID,
		string(entry.EventType),
		entry.EventsFound,
		entry.NewCount,
		entry.LastSyncedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting sync log: %w", err)
	}
	return nil
}

// ListSyncLog returns sync-log rows for a gym, or all when gymID is empty,
// most recent first.
func (r *Repository) ListSyncLog(ctx context.Context, gymID string) ([]entities.SyncLogEntry, error) {
	query := "SELECT gym_id, event_type, events_found, new_count, last_synced_at FROM sync_log"
	var args []any
	if gymID != "" {
		query += " WHERE gym_id = ?"
		args = append(args, gymID)
	}
	query += " ORDER BY last_synced_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sync log: %w", err)
	}
	defer rows.Close()

	var result []entities.SyncLogEntry
	for rows.Next() {
		var entry entities.SyncLogEntry
		var eventType string
		if err := rows.Scan(&entry.GymID, &eventType, &entry.EventsFound, &entry.NewCount, &entry.LastSyncedAt); err != nil {
			return nil, fmt.Errorf("scanning sync log: %w", err)
		}
		entry.EventType = entities.EventType(eventType)
		result = append(result, entry)
	}
	return result, rows.Err()
}

// Audit sink methods.

// LogChange appends one change entry.
func (r *Repository) LogChange(ctx context.Context, entry entities.ChangeEntry) error {
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = timeNow().UTC()
	}
	query := `
		INSERT INTO event_audit_log (event_id, gym_id, action, field, old_value, new_value, event_title, event_date, source, changed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.EventID,
		entry.GymID,
		string(entry.Action),
		nullString(entry.Field),
		nullString(entry.OldValue),
		nullString(entry.NewValue),
		entry.EventTitle,
		nullString(entry.EventDate),
		nullString(entry.Source),
		entry.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("logging change: %w", err)
	}
	return nil
}

// RecentChanges returns the most recent entries, newest first.
func (r *Repository) RecentChanges(ctx context.Context, limit int) ([]entities.ChangeEntry, error) {
	return r.queryChanges(ctx,
		auditSelect+" ORDER BY id DESC LIMIT ?", limit)
}

// ChangesByEvent returns all entries for one record, newest first.
func (r *Repository) ChangesByEvent(ctx context.Context, eventID string) ([]entities.ChangeEntry, error) {
	return r.queryChanges(ctx,
		auditSelect+" WHERE event_id = ? ORDER BY id DESC", eventID)
}

// ChangesByGym returns recent entries for one gym, newest first.
func (r *Repository) ChangesByGym(ctx context.Context, gymID string, limit int) ([]entities.ChangeEntry, error) {
	return r.queryChanges(ctx,
		auditSelect+" WHERE gym_id = ? ORDER BY id DESC LIMIT ?", gymID, limit)
}

const auditSelect = `
	SELECT id, event_id, gym_id, action, COALESCE(field, ''),
		COALESCE(old_value, ''), COALESCE(new_value, ''),
		COALESCE(event_title, ''), COALESCE(event_date, ''),
		COALESCE(source, ''), changed_at
	FROM event_audit_log
`

func (r *Repository) queryChanges(ctx context.Context, query string, args ...any) ([]entities.ChangeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var result []entities.ChangeEntry
	for rows.Next() {
		var entry entities.ChangeEntry
		var action string
		if err := rows.Scan(
			&entry.ID, &entry.EventID, &entry.GymID, &action, &entry.Field,
			&entry.OldValue, &entry.NewValue, &entry.EventTitle,
			&entry.EventDate, &entry.Source, &entry.ChangedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		entry.Action = entities.ChangeAction(action)
		result = append(result, entry)
	}
	return result, rows.Err()
}

// Scan helpers.

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*entities.EventRecord, error) {
	var rec entities.EventRecord
	var (
		eventType, descStatus               string
		date, startDate, endDate, eventTime sql.NullString
		description, flyerURL               sql.NullString
		regStart, regEnd                    sql.NullString
		price                               sql.NullFloat64
		ageMin, ageMax                      sql.NullInt64
		validation, acknowledged, verified  sql.NullString
		deletedAt                           sql.NullTime
	)

	err := row.Scan(
		&rec.ID, &rec.GymID, &eventType, &rec.Title,
		&date, &startDate, &endDate, &eventTime,
		&price, &ageMin, &ageMax,
		&description, &descStatus, &rec.HasFlyer,
		&flyerURL, &rec.EventURL,
		&validation, &acknowledged, &verified,
		&rec.HasOpenings, &regStart, &regEnd,
		&deletedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning event: %w", err)
	}

	rec.Type = entities.EventType(eventType)
	rec.DescriptionStatus = entities.DescriptionStatus(descStatus)
	rec.Date = date.String
	rec.StartDate = startDate.String
	rec.EndDate = endDate.String
	rec.Time = eventTime.String
	rec.Description = description.String
	rec.FlyerURL = flyerURL.String
	rec.RegistrationStartDate = regStart.String
	rec.RegistrationEndDate = regEnd.String
	if price.Valid {
		rec.Price = &price.Float64
	}
	if ageMin.Valid {
		v := int(ageMin.Int64)
		rec.AgeMin = &v
	}
	if ageMax.Valid {
		v := int(ageMax.Int64)
		rec.AgeMax = &v
	}
	if deletedAt.Valid {
		rec.DeletedAt = &deletedAt.Time
	}

	if err := unmarshalJSON(validation, &rec.ValidationErrors); err != nil {
		return nil, fmt.Errorf("decoding validation errors for %s: %w", rec.ID, err)
	}
	if err := unmarshalJSON(acknowledged, &rec.AcknowledgedErrors); err != nil {
		return nil, fmt.Errorf("decoding acknowledged errors for %s: %w", rec.ID, err)
	}
	if err := unmarshalJSON(verified, &rec.VerifiedErrors); err != nil {
		return nil, fmt.Errorf("decoding verified errors for %s: %w", rec.ID, err)
	}
	return &rec, nil
}

func eventArgs(rec *entities.EventRecord) ([]any, error) {
	validation, err := marshalJSON(rec.ValidationErrors)
	if err != nil {
		return nil, err
	}
	acknowledged, err := marshalJSON(rec.AcknowledgedErrors)
	if err != nil {
		return nil, err
	}
	verified, err := marshalJSON(rec.VerifiedErrors)
	if err != nil {
		return nil, err
	}
	return []any{
		rec.ID, rec.GymID, string(rec.Type), rec.Title,
		nullString(rec.Date), nullString(rec.StartDate), nullString(rec.EndDate), nullString(rec.Time),
		rec.Price, rec.AgeMin, rec.AgeMax,
		nullString(rec.Description), string(rec.DescriptionStatus), rec.HasFlyer,
		nullString(rec.FlyerURL), rec.EventURL,
		validation, acknowledged, verified,
		rec.HasOpenings, nullString(rec.RegistrationStartDate), nullString(rec.RegistrationEndDate),
		rec.DeletedAt, rec.CreatedAt, rec.UpdatedAt,
	}, nil
}

// marshalJSON encodes a slice column; empty slices are stored as NULL.
func marshalJSON[T any](v []T) (any, error) {
	if len(v) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding json column: %w", err)
	}
	return string(data), nil
}

func unmarshalJSON[T any](col sql.NullString, dest *[]T) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dest)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
