package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkrall/gymsync/internal/domain/entities"
	"github.com/mkrall/gymsync/internal/domain/ports"
)

// SyncConfig carries the orchestrator's tunables. All of them come from
// configuration rather than constants so operators can adjust per
// deployment.
type SyncConfig struct {
	// FetchTimeout bounds each source request, including the retry attempt.
	FetchTimeout time.Duration
	// RetryDelay is the pause before the single retry of a failed fetch.
	RetryDelay time.Duration
	// Guard holds the mass-deletion thresholds.
	Guard GuardConfig
	// PortalURLTemplate builds a public event URL from a gym's portal slug
	// and a listing ID, e.g. "https://portal.example.com/%s/event/%d".
	PortalURLTemplate string
	// GymSlugs maps gym IDs to their portal slugs.
	GymSlugs map[string]string
}

// Unit is one (gym, event type) pair processed as an atomic sync step.
type Unit struct {
	GymID     string
	EventType entities.EventType
}

func (u Unit) String() string {
	return u.GymID + "/" + string(u.EventType)
}

// UnitState is the terminal state of one unit pass.
type UnitState string

const (
	// UnitDone means the unit was fetched, diffed and applied.
	UnitDone UnitState = "done"
	// UnitPaused means the deletion guard vetoed the apply; nothing was
	// written and the unit needs manual review.
	UnitPaused UnitState = "paused"
	// UnitError means the fetch failed after the retry.
	UnitError UnitState = "error"
)

// UnitResult is the outcome of one unit pass.
type UnitResult struct {
	Unit        Unit
	State       UnitState
	Found       int
	Skipped     int
	Summary     entities.ComparisonSummary
	PauseReason string
	Err         error
}

// BatchResult aggregates a sequential run over many units.
type BatchResult struct {
	Units     []UnitResult
	Cancelled bool
	Totals    entities.ComparisonSummary
}

// SyncService drives the fetch, diff, guard, apply, log workflow.
type SyncService struct {
	store    ports.EventStore
	source   ports.ListingSource
	audit    ports.AuditSink
	cache    ports.Cache
	notifier ports.ChangeNotifier
	metrics  ports.MetricsRecorder
	logger   *zap.Logger
	cfg      SyncConfig
}

// NewSyncService creates a SyncService. Audit, cache, notifier and metrics
// may not be nil; use no-op implementations when a deployment doesn't need
// them.
func NewSyncService(
	store ports.EventStore,
	source ports.ListingSource,
	audit ports.AuditSink,
	cache ports.Cache,
	notifier ports.ChangeNotifier,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
	cfg SyncConfig,
) *SyncService {
	return &SyncService{
		store:    store,
		source:   source,
		audit:    audit,
		cache:    cache,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// SyncBatch processes units sequentially. Cancellation is observed between
// units only: the unit in flight always runs to a terminal state so the
// store is never left mid-apply.
func (s *SyncService) SyncBatch(ctx context.Context, units []Unit) BatchResult {
	var batch BatchResult
	for _, unit := range units {
		select {
		case <-ctx.Done():
			batch.Cancelled = true
			s.logger.Info("sync batch cancelled",
				zap.Int("completed", len(batch.Units)),
				zap.Int("remaining", len(units)-len(batch.Units)))
			return batch
		default:
		}

		result := s.SyncUnit(ctx, unit)
		batch.Units = append(batch.Units, result)
		batch.Totals.New += result.Summary.New
		batch.Totals.Changed += result.Summary.Changed
		batch.Totals.Deleted += result.Summary.Deleted
		batch.Totals.Unchanged += result.Summary.Unchanged
	}
	return batch
}

// SyncUnit runs one unit to a terminal state. Errors are reported in the
// result, not returned, so a batch can continue past failed units.
func (s *SyncService) SyncUnit(ctx context.Context, unit Unit) UnitResult {
	// A unit that started must reach a terminal state: a cancel arriving
	// mid-apply would otherwise leave the store half-written. Cancellation
	// is observed by SyncBatch between units; per-attempt fetch timeouts
	// still bound the unit's I/O.
	ctx = context.WithoutCancel(ctx)

	result := UnitResult{Unit: unit}

	listings, err := s.fetchWithRetry(ctx, unit)
	if err != nil {
		result.State = UnitError
		result.Err = fmt.Errorf("fetching %s: %w", unit, err)
		s.logger.Error("unit fetch failed", zap.String("unit", unit.String()), zap.Error(err))
		s.metrics.RecordUnit(unit.GymID, unit.EventType, string(UnitError), result.Summary)
		return result
	}
	result.Found = len(listings)

	incoming := make([]entities.EventRecord, 0, len(listings))
	for _, listing := range listings {
		rec, ok := s.recordFromListing(unit, listing)
		if !ok {
			result.Skipped++
			continue
		}
		incoming = append(incoming, rec)
	}
	if result.Skipped > 0 {
		s.logger.Warn("skipped malformed listings",
			zap.String("unit", unit.String()),
			zap.Int("skipped", result.Skipped))
	}

	existing, err := s.store.Find(ctx, ports.EventFilter{
		GymID:          unit.GymID,
		EventType:      unit.EventType,
		IncludeDeleted: true,
	})
	if err != nil {
		result.State = UnitError
		result.Err = fmt.Errorf("loading existing records for %s: %w", unit, err)
		s.metrics.RecordUnit(unit.GymID, unit.EventType, string(UnitError), result.Summary)
		return result
	}

	cmp := Compare(incoming, existing)
	result.Summary = cmp.Summary()

	activeCount := 0
	for _, rec := range existing {
		if !rec.IsDeleted() {
			activeCount++
		}
	}
	if decision := CheckDeletionSafety(s.cfg.Guard, len(cmp.Deleted), activeCount); !decision.Proceed {
		result.State = UnitPaused
		result.PauseReason = decision.Reason
		s.logger.Warn("unit paused by deletion guard",
			zap.String("unit", unit.String()),
			zap.String("reason", decision.Reason))
		s.metrics.RecordUnit(unit.GymID, unit.EventType, string(UnitPaused), result.Summary)
		return result
	}

	s.apply(ctx, unit, &cmp, incoming)

	entry := entities.SyncLogEntry{
		GymID:        unit.GymID,
		EventType:    unit.EventType,
		EventsFound:  len(incoming),
		NewCount:     len(cmp.New),
		LastSyncedAt: timeNow().UTC(),
	}
	if err := s.store.UpsertSyncLog(ctx, entry); err != nil {
		s.logger.Warn("sync log write failed", zap.String("unit", unit.String()), zap.Error(err))
	}

	s.cache.Invalidate("events")
	s.notifier.EventsChanged(unit.GymID)

	result.State = UnitDone
	s.logger.Info("unit synced",
		zap.String("unit", unit.String()),
		zap.Int("found", result.Found),
		zap.Int("new", result.Summary.New),
		zap.Int("changed", result.Summary.Changed),
		zap.Int("deleted", result.Summary.Deleted),
		zap.Int("unchanged", result.Summary.Unchanged))
	s.metrics.RecordUnit(unit.GymID, unit.EventType, string(UnitDone), result.Summary)
	return result
}

// fetchWithRetry requests listings with a per-attempt timeout and exactly
// one retry after a fixed delay.
func (s *SyncService) fetchWithRetry(ctx context.Context, unit Unit) ([]entities.RawListing, error) {
	listings, err := s.fetchOnce(ctx, unit)
	if err == nil {
		s.metrics.RecordFetch(unit.GymID, "ok")
		return listings, nil
	}
	s.metrics.RecordFetch(unit.GymID, "retry")
	s.logger.Warn("fetch failed, retrying",
		zap.String("unit", unit.String()),
		zap.Duration("delay", s.cfg.RetryDelay),
		zap.Error(err))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.cfg.RetryDelay):
	}

	listings, err = s.fetchOnce(ctx, unit)
	if err != nil {
		s.metrics.RecordFetch(unit.GymID, "error")
		return nil, err
	}
	s.metrics.RecordFetch(unit.GymID, "ok")
	return listings, nil
}

func (s *SyncService) fetchOnce(ctx context.Context, unit Unit) ([]entities.RawListing, error) {
	fetchCtx := ctx
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}
	return s.source.FetchListings(fetchCtx, unit.GymID, unit.EventType)
}

// recordFromListing converts one scraped listing into a candidate record.
// Listings without an ID or a title cannot be matched or displayed and are
// skipped.
func (s *SyncService) recordFromListing(unit Unit, listing entities.RawListing) (entities.EventRecord, bool) {
	if listing.ID <= 0 || strings.TrimSpace(listing.Name) == "" {
		return entities.EventRecord{}, false
	}

	rec := entities.EventRecord{
		GymID:                 unit.GymID,
		Type:                  unit.EventType,
		Title:                 strings.TrimSpace(listing.Name),
		Date:                  listing.Date,
		StartDate:             listing.StartDate,
		EndDate:               listing.EndDate,
		Time:                  listing.Time,
		Price:                 listing.Price,
		AgeMin:                listing.MinAge,
		AgeMax:                listing.MaxAge,
		Description:           listing.Description,
		DescriptionStatus:     listing.DescriptionStatus,
		HasFlyer:              listing.HasFlyer,
		FlyerURL:              listing.FlyerURL,
		EventURL:              s.eventURL(unit.GymID, listing.ID),
		ValidationErrors:      listing.ValidationErrors,
		HasOpenings:           true,
		RegistrationStartDate: listing.RegistrationStartDate,
		RegistrationEndDate:   listing.RegistrationEndDate,
	}
	if rec.Date == "" {
		rec.Date = listing.StartDate
	}
	if rec.Time == "" && len(listing.Schedule) > 0 {
		rec.Time = formatSchedule(listing.Schedule)
	}
	if listing.HasOpenings != nil {
		rec.HasOpenings = *listing.HasOpenings
	}
	if rec.DescriptionStatus == "" {
		switch {
		case strings.TrimSpace(rec.Description) != "":
			rec.DescriptionStatus = entities.DescriptionPresent
		case rec.HasFlyer:
			rec.DescriptionStatus = entities.DescriptionFlyerOnly
		default:
			rec.DescriptionStatus = entities.DescriptionNone
		}
	}
	return rec, true
}

// eventURL derives the public portal URL for a listing. A gym without a
// configured slug gets a clearly marked placeholder so the record still
// carries a stable identity.
func (s *SyncService) eventURL(gymID string, listingID int64) string {
	slug, ok := s.cfg.GymSlugs[gymID]
	if !ok || slug == "" {
		slug = "UNKNOWN-" + gymID
	}
	return fmt.Sprintf(s.cfg.PortalURLTemplate, slug, listingID)
}

// formatSchedule renders schedule blocks as "start - end" joined by commas.
func formatSchedule(blocks []entities.ScheduleBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch {
		case b.StartTime != "" && b.EndTime != "":
			parts = append(parts, b.StartTime+" - "+b.EndTime)
		case b.StartTime != "":
			parts = append(parts, b.StartTime)
		}
	}
	return strings.Join(parts, ", ")
}

// apply commits a comparison to the store. Per-record failures are logged
// and counted but never abort the rest of the apply: one bad row must not
// block an otherwise healthy unit.
func (s *SyncService) apply(ctx context.Context, unit Unit, cmp *entities.ComparisonResult, incoming []entities.EventRecord) {
	today := timeNow().Format("2006-01-02")

	if len(cmp.New) > 0 {
		inserted, err := s.store.InsertMany(ctx, cmp.New)
		if err != nil {
			s.logger.Warn("inserting new records failed",
				zap.String("unit", unit.String()),
				zap.Int("count", len(cmp.New)),
				zap.Error(err))
		} else {
			for _, rec := range inserted {
				s.logChange(ctx, entities.ChangeEntry{
					EventID:    rec.ID,
					GymID:      rec.GymID,
					Action:     entities.ActionCreate,
					EventTitle: rec.Title,
					EventDate:  rec.EffectiveStartDate(),
					Source:     "sync",
					ChangedAt:  timeNow().UTC(),
				})
			}
		}
	}

	for _, pair := range cmp.Changed {
		updated, err := s.store.UpdateContent(ctx, pair.Existing.ID, pair.Incoming)
		if err != nil {
			s.logger.Warn("updating record failed",
				zap.String("unit", unit.String()),
				zap.String("event_id", pair.Existing.ID),
				zap.Error(err))
			continue
		}
		for _, change := range pair.Changes {
			s.logChange(ctx, entities.ChangeEntry{
				EventID:    updated.ID,
				GymID:      updated.GymID,
				Action:     entities.ActionUpdate,
				Field:      change.Field,
				OldValue:   formatAuditValue(change.Old),
				NewValue:   formatAuditValue(change.New),
				EventTitle: updated.Title,
				EventDate:  updated.EffectiveStartDate(),
				Source:     "sync",
				ChangedAt:  timeNow().UTC(),
			})
		}
	}

	for _, rec := range cmp.Deleted {
		// Re-gate right before the write: the diff may be stale by the time
		// the apply runs across a midnight boundary.
		if !deletable(&rec, today) {
			continue
		}
		if err := s.store.SoftDeleteByID(ctx, rec.ID); err != nil {
			s.logger.Warn("soft-deleting record failed",
				zap.String("unit", unit.String()),
				zap.String("event_id", rec.ID),
				zap.Error(err))
			continue
		}
		s.logChange(ctx, entities.ChangeEntry{
			EventID:    rec.ID,
			GymID:      rec.GymID,
			Action:     entities.ActionDelete,
			EventTitle: rec.Title,
			EventDate:  rec.EffectiveStartDate(),
			Source:     "sync",
			ChangedAt:  timeNow().UTC(),
		})
	}

	// The checker's output and flyer state move independently of listing
	// content, so content-unchanged records still get those fields refreshed.
	incomingByURL := make(map[string]entities.EventRecord, len(incoming))
	for _, rec := range incoming {
		incomingByURL[rec.EventURL] = rec
	}
	for _, rec := range cmp.Unchanged {
		in, ok := incomingByURL[rec.EventURL]
		if !ok {
			continue
		}
		if err := s.store.RefreshValidation(ctx, rec.ID, in); err != nil {
			s.logger.Warn("refreshing validation failed",
				zap.String("unit", unit.String()),
				zap.String("event_id", rec.ID),
				zap.Error(err))
		}
	}
}

// logChange writes one audit entry, swallowing failures with a warning.
func (s *SyncService) logChange(ctx context.Context, entry entities.ChangeEntry) {
	if err := s.audit.LogChange(ctx, entry); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("event_id", entry.EventID),
			zap.String("action", string(entry.Action)),
			zap.Error(err))
	}
}

// formatAuditValue renders a normalized comparison value for the change log.
func formatAuditValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
