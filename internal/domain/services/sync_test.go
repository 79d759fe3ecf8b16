package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkrall/gymsync/internal/domain/entities"
	"github.com/mkrall/gymsync/internal/domain/mocks"
	"github.com/mkrall/gymsync/internal/domain/ports"
)

type syncFixture struct {
	svc      *SyncService
	store    *mocks.EventStore
	source   *mocks.ListingSource
	audit    *mocks.AuditSink
	cache    *mocks.Cache
	notifier *mocks.ChangeNotifier
	metrics  *mocks.MetricsRecorder
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{
		store:    mocks.NewEventStore(),
		source:   mocks.NewListingSource(),
		audit:    mocks.NewAuditSink(),
		cache:    mocks.NewCache(),
		notifier: mocks.NewChangeNotifier(),
		metrics:  mocks.NewMetricsRecorder(),
	}
	cfg := SyncConfig{
		FetchTimeout:      time.Second,
		RetryDelay:        time.Millisecond,
		Guard:             DefaultGuardConfig(),
		PortalURLTemplate: "https://portal.example.com/%s/event/%d",
		GymSlugs:          map[string]string{"gym-1": "sunnyvale"},
	}
	f.svc = NewSyncService(f.store, f.source, f.audit, f.cache, f.notifier, f.metrics, zap.NewNop(), cfg)
	return f
}

// seedCamp inserts a persisted record matching what listing(id, title) would
// produce after conversion, so a resync sees it as unchanged.
func (f *syncFixture) seedCamp(id int64, title string) *entities.EventRecord {
	return f.store.Seed(entities.EventRecord{
		GymID:             "gym-1",
		Type:              entities.EventTypeCamp,
		Title:             title,
		Date:              "2026-07-10",
		StartDate:         "2026-07-10",
		EndDate:           "2026-07-14",
		DescriptionStatus: entities.DescriptionNone,
		EventURL:          portalURL(id),
		HasOpenings:       true,
	})
}

func portalURL(id int64) string {
	return fmt.Sprintf("https://portal.example.com/sunnyvale/event/%d", id)
}

var campUnit = Unit{GymID: "gym-1", EventType: entities.EventTypeCamp}

func listing(id int64, name string) entities.RawListing {
	return entities.RawListing{
		ID:        id,
		Name:      name,
		StartDate: "2026-07-10",
		EndDate:   "2026-07-14",
	}
}

func TestSyncUnitInsertsNewRecords(t *testing.T) {
	fixedNow(t, "2026-06-15")
	f := newSyncFixture(t)
	f.source.SetListings("gym-1", entities.EventTypeCamp, []entities.RawListing{
		listing(101, "Summer Camp"),
		listing(102, "Ninja Week"),
	})

	result := f.svc.SyncUnit(context.Background(), campUnit)

	require.Equal(t, UnitDone, result.State)
	assert.Equal(t, 2, result.Found)
	assert.Equal(t, 2, result.Summary.New)
	assert.Len(t, f.store.Events, 2)

	created := f.audit.ByAction(entities.ActionCreate)
	assert.Len(t, created, 2)

	// Event URLs come from the portal slug template.
	rec, err := f.store.FindByURL(context.Background(), "gym-1", portalURL(101))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Summer Camp", rec.Title)
	assert.True(t, rec.HasOpenings)
	assert.Equal(t, entities.DescriptionNone, rec.DescriptionStatus)

	assert.Contains(t, f.cache.Invalidated, "events")
	assert.Equal(t, []string{"gym-1"}, f.notifier.Notified)
}

func TestSyncUnitMissingSlugUsesPlaceholder(t *testing.T) {
	fixedNow(t, "2026-06-15")
	f := newSyncFixture(t)
	unknown := Unit{GymID: "gym-9", EventType: entities.EventTypeCamp}
	f.source.SetListings("gym-9", entities.EventTypeCamp, []entities.RawListing{listing(7, "Camp")})

	result := f.svc.SyncUnit(context.Background(), unknown)

	require.Equal(t, UnitDone, result.State)
	rec, err := f.store.FindByURL(context.Background(), "gym-9", "https://portal.example.com/UNKNOWN-gym-9/event/7")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestSyncUnitUpdatesChangedRecords(t *testing.T) {
	fixedNow(t, "2026-06-15")
	f := newSyncFixture(t)
	seeded := f.seedCamp(101, "Summer Camp")

	price := 25.0
	in := listing(101, "Summer Camp")
	in.Price = &price
	f.source.SetListings("gym-1", entities.EventTypeCamp, []entities.RawListing{in})

	result := f.svc.SyncUnit(context.Background(), campUnit)

	require.Equal(t, UnitDone, result.State)
	assert.Equal(t, 1, result.Summary.Changed)

	rec, err := f.store.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.Price)
	assert.Equal(t, 25.0, *rec.Price)

	updates := f.audit.ByAction(entities.ActionUpdate)
	require.Len(t, updates, 1)
	assert.Equal(t, FieldPrice, updates[0].Field)
	assert.Equal(t, "", updates[0].OldValue)
	assert.Equal(t, "25", updates[0].NewValue)
}

func TestSyncUnitSoftDeletesMissingFutureEvents(t *testing.T) {
	fixedNow(t, "2026-06-15")
	f := newSyncFixture(t)
	future := f.store.Seed(entities.EventRecord{
		GymID:     "gym-1",
		Type:      entities.EventTypeCamp,
		Title:     "Cancelled Camp",
		StartDate: "2026-07-01",
		EndDate:   "2026-07-03",
		EventURL:  portalURL(200),
	})
	inProgress := f.store.Seed(entities.EventRecord{
		GymID:     "gym-1",
		Type:      entities.EventTypeCamp,
		Title:     "Running Camp",
		StartDate: "2026-06-10",
		EndDate:   "2026-06-20",
		EventURL:  portalURL(201),
	})
	// Enough surviving records to keep the guard quiet.
	var keep []entities.RawListing
	for i := int64(0); i < 10; i++ {
		f.seedCamp(300+i, "Filler")
		keep = append(keep, listing(300+i, "Filler"))
	}
	f.source.SetListings("gym-1", entities.EventTypeCamp, keep)

	result := f.svc.SyncUnit(context.Background(), campUnit)

	require.Equal(t, UnitDone, result.State)
	assert.Equal(t, 1, result.Summary.Deleted)

	deleted, err := f.store.FindByID(context.Background(), future.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted())

	running, err := f.store.FindByID(context.Background(), inProgress.ID)
	require.NoError(t, err)
	assert.False(t, running.IsDeleted())

	removals := f.audit.ByAction(entities.ActionDelete)
	require.Len(t, removals, 1)
	assert.Equal(t, future.ID, removals[0].EventID)
}

func TestSyncUnitGuardPausesWithoutWrites(t *testing.T) {
	fixedNow(t, "2026-06-15")
	f := newSyncFixture(t)
	for i := int64(0); i < 6; i++ {
		f.store.Seed(entities.EventRecord{
			GymID:     "gym-1",
			Type:      entities.EventTypeCamp,
			Title:     "Doomed",
			StartDate: "2026-07-01",
			EndDate:   "2026-07-03",
			EventURL:  portalURL(400 + i),
		})
	}
	// The scrape comes back empty, as a truncated page would.
	f.source.SetListings("gym-1", entities.EventTypeCamp, nil)

	result := f.svc.SyncUnit(context.Background(), campUnit)

	require.Equal(t, UnitPaused, result.State)
	assert.Contains(t, result.PauseReason, "6 of 6")

	// Zero writes: nothing deleted, no sync log, no notifications.
	for _, rec := range f.store.Events {
		assert.False(t, rec.IsDeleted())
	}
	assert.Empty(t, f.store.SyncLog)
	assert.Empty(t, f.audit.Entries)
	assert.Empty(t, f.notifier.Notified)
	assert.Equal(t, 1, f.metrics.Units["gym-1/CAMP/paused"])
}

func TestSyncUnitRetriesOnceThenSucceeds(t *testing.T) {
	fixedNow(t, "2026-06-15")
	f := newSyncFixture(t)
	f.source.FailErr = errors.New("connection reset")
	f.source.FailuresLeft = 1
	f.source.SetListings("gym-1", entities.EventTypeCamp, []entities.RawListing{listing(101, "Camp")})

	result := f.svc.SyncUnit(context.Background(), campUnit)

	require.Equal(t, UnitDone, result.State)
	assert.Equal(t, 2, f.source.Calls)
	assert.Equal(t, 1, f.metrics.Fetches["gym-1/retry"])
	assert.Equal(t, 1, f.metrics.Fetches["gym-1/ok"])
}

func TestSyncUnitFailsAfterSecondFetchError(t *testing.T) {
	fixedNow(t, "2026-06-15")
	f := newSyncFixture(t)
	f.source.Err = errors.New("portal down")

	result := f.svc.SyncUnit(context.Background(), campUnit)

	require.Equal(t, UnitError, result.State)
	require.Error(t, result.Err)
	assert.Equal(t, 2, f.source.Calls)
	assert.Empty(t, f.store.SyncLog)
	assert.Equal(t, 1, f.metrics.Fetches["gym-1/error"])
}

func TestSyncUnitZeroResultsStillLogged(t *testing.T) {
	fixedNow(t, "2026-06-15")
	f := newSyncFixture(t)
	f.source.SetListings("gym-1", entities.EventTypeCamp, nil)

	result := f.svc.SyncUnit(context.Background(), campUnit)

	require.Equal(t, UnitDone, result.State)
	entries, err := f.store.ListSyncLog(context.Background(), "gym-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Zero(t, entries[0].EventsFound)
}

func TestSyncUnitSkipsMalformedListings(t *testing.T) {
	fixedNow(t, "2026-06-15")
	f := newSyncFixture(t)
	f.source.SetListings("gym-1", entities.EventTypeCamp, []entities.RawListing{
		listing(101, "Good Camp"),
		{ID: 0, Name: "No ID"},
		{ID: 103, Name: "   "},
	})

	result := f.svc.SyncUnit(context.Background(), campUnit)

	require.Equal(t, UnitDone, result.State)
	assert.Equal(t, 3, result.Found)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 1, result.Summary.New)
}

func TestSyncUnitRefreshesValidationOnUnchanged(t *testing.T) {
	fixedNow(t, "2026-06-15")
	f := newSyncFixture(t)
	seeded := f.seedCamp(101, "Summer Camp")

	in := listing(101, "Summer Camp")
	soldOut := false
	in.HasOpenings = &soldOut
	f.source.SetListings("gym-1", entities.EventTypeCamp, []entities.RawListing{in})

	result := f.svc.SyncUnit(context.Background(), campUnit)

	// Availability is not part of change detection but is refreshed anyway.
	require.Equal(t, UnitDone, result.State)
	assert.Equal(t, 1, result.Summary.Unchanged)

	rec, err := f.store.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.False(t, rec.HasOpenings)
}

func TestSyncUnitAuditFailureDoesNotAbort(t *testing.T) {
	fixedNow(t, "2026-06-15")
	f := newSyncFixture(t)
	f.audit.Err = errors.New("audit table locked")
	f.source.SetListings("gym-1", entities.EventTypeCamp, []entities.RawListing{listing(101, "Camp")})

	result := f.svc.SyncUnit(context.Background(), campUnit)

	require.Equal(t, UnitDone, result.State)
	assert.Len(t, f.store.Events, 1)
}

func TestSyncBatchCancelledBetweenUnits(t *testing.T) {
	fixedNow(t, "2026-06-15")
	f := newSyncFixture(t)
	f.source.SetListings("gym-1", entities.EventTypeCamp, []entities.RawListing{listing(101, "Camp")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := f.svc.SyncBatch(ctx, []Unit{
		campUnit,
		{GymID: "gym-1", EventType: entities.EventTypeClinic},
	})

	assert.True(t, batch.Cancelled)
	assert.Empty(t, batch.Units)
}

func TestSyncBatchCancelMidUnitFinishesUnit(t *testing.T) {
	fixedNow(t, "2026-06-15")
	f := newSyncFixture(t)
	f.source.SetListings("gym-1", entities.EventTypeCamp, []entities.RawListing{listing(101, "Camp")})

	ctx, cancel := context.WithCancel(context.Background())
	f.source.OnFetch = cancel

	batch := f.svc.SyncBatch(ctx, []Unit{
		campUnit,
		{GymID: "gym-1", EventType: entities.EventTypeClinic},
	})

	// The cancel landed while the first unit was fetching: that unit still
	// runs to completion with its apply committed, and the stop takes
	// effect before the next unit starts.
	assert.True(t, batch.Cancelled)
	require.Len(t, batch.Units, 1)
	assert.Equal(t, UnitDone, batch.Units[0].State)
	require.NoError(t, batch.Units[0].Err)
	assert.Len(t, f.store.Events, 1)
	assert.Len(t, f.store.SyncLog, 1)
}

func TestSyncBatchAggregatesTotals(t *testing.T) {
	fixedNow(t, "2026-06-15")
	f := newSyncFixture(t)
	f.source.SetListings("gym-1", entities.EventTypeCamp, []entities.RawListing{listing(101, "Camp")})
	f.source.SetListings("gym-1", entities.EventTypeClinic, []entities.RawListing{listing(201, "Clinic"), listing(202, "Clinic B")})

	batch := f.svc.SyncBatch(context.Background(), []Unit{
		campUnit,
		{GymID: "gym-1", EventType: entities.EventTypeClinic},
	})

	assert.False(t, batch.Cancelled)
	require.Len(t, batch.Units, 2)
	assert.Equal(t, 3, batch.Totals.New)
}

// Interface conformance for the mocks used here.
var (
	_ ports.EventStore      = (*mocks.EventStore)(nil)
	_ ports.ListingSource   = (*mocks.ListingSource)(nil)
	_ ports.AuditSink       = (*mocks.AuditSink)(nil)
	_ ports.Cache           = (*mocks.Cache)(nil)
	_ ports.ChangeNotifier  = (*mocks.ChangeNotifier)(nil)
	_ ports.MetricsRecorder = (*mocks.MetricsRecorder)(nil)
)
