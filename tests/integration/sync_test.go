package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkrall/gymsync/internal/domain/entities"
	"github.com/mkrall/gymsync/internal/domain/mocks"
	"github.com/mkrall/gymsync/internal/domain/ports"
	"github.com/mkrall/gymsync/internal/domain/services"
	"github.com/mkrall/gymsync/internal/infrastructure/config"
	"github.com/mkrall/gymsync/internal/infrastructure/store/sqlite"
)

// syncWorld wires a SyncService to a real SQLite store with a mock feed.
type syncWorld struct {
	repo    *sqlite.Repository
	source  *mocks.ListingSource
	cache   *mocks.Cache
	service *services.SyncService
}

func newSyncWorld(t *testing.T) *syncWorld {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "gymsync.db")
	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.EnsureSchema(context.Background()))

	source := mocks.NewListingSource()
	cache := mocks.NewCache()
	service := services.NewSyncService(
		repo, source, repo, cache, mocks.NewChangeNotifier(), mocks.NewMetricsRecorder(),
		zap.NewNop(), services.SyncConfig{
			FetchTimeout:      time.Second,
			RetryDelay:        time.Millisecond,
			Guard:             services.DefaultGuardConfig(),
			PortalURLTemplate: "https://portal.example.com/%s/camp-details/%d",
			GymSlugs:          map[string]string{"gym-1": "sunnyvale"},
		})

	return &syncWorld{repo: repo, source: source, cache: cache, service: service}
}

func futureDate(months int) string {
	return time.Now().AddDate(0, months, 0).Format("2006-01-02")
}

func listing(id int64, name string, price float64) entities.RawListing {
	return entities.RawListing{
		ID:        id,
		Name:      name,
		StartDate: futureDate(1),
		EndDate:   futureDate(2),
		Price:     &price,
	}
}

func TestSyncLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	w := newSyncWorld(t)
	unit := services.Unit{GymID: "gym-1", EventType: entities.EventTypeCamp}

	// First pass: everything is new.
	w.source.SetListings("gym-1", entities.EventTypeCamp, []entities.RawListing{
		listing(101, "Ninja Camp", 150),
		listing(102, "Gymnastics Camp", 175),
	})
	result := w.service.SyncUnit(ctx, unit)
	require.NoError(t, result.Err)
	assert.Equal(t, services.UnitDone, result.State)
	assert.Equal(t, 2, result.Summary.New)

	events, err := w.repo.Find(ctx, ports.EventFilter{GymID: "gym-1"})
	require.NoError(t, err)
	require.Len(t, events, 2)
	urls := []string{events[0].EventURL, events[1].EventURL}
	assert.Contains(t, urls, "https://portal.example.com/sunnyvale/camp-details/101")
	assert.Contains(t, urls, "https://portal.example.com/sunnyvale/camp-details/102")

	// Second pass: 101 changes price, 102 disappears, 103 shows up.
	w.source.SetListings("gym-1", entities.EventTypeCamp, []entities.RawListing{
		listing(101, "Ninja Camp", 165),
		listing(103, "Parkour Camp", 150),
	})
	result = w.service.SyncUnit(ctx, unit)
	require.NoError(t, result.Err)
	assert.Equal(t, entities.ComparisonSummary{New: 1, Changed: 1, Deleted: 1}, result.Summary)

	all, err := w.repo.Find(ctx, ports.EventFilter{GymID: "gym-1", IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, all, 3)
	byURL := make(map[string]entities.EventRecord, len(all))
	for _, e := range all {
		byURL[e.EventURL] = e
	}
	changed := byURL["https://portal.example.com/sunnyvale/camp-details/101"]
	require.NotNil(t, changed.Price)
	assert.Equal(t, 165.0, *changed.Price)
	gone := byURL["https://portal.example.com/sunnyvale/camp-details/102"]
	assert.True(t, gone.IsDeleted())
	added := byURL["https://portal.example.com/sunnyvale/camp-details/103"]
	assert.False(t, added.IsDeleted())

	// Third pass: 102 comes back and is restored in place. Restoration
	// counts as a change even though no field differs.
	w.source.SetListings("gym-1", entities.EventTypeCamp, []entities.RawListing{
		listing(101, "Ninja Camp", 165),
		listing(102, "Gymnastics Camp", 175),
		listing(103, "Parkour Camp", 150),
	})
	result = w.service.SyncUnit(ctx, unit)
	require.NoError(t, result.Err)
	assert.Equal(t, 1, result.Summary.Changed)

	active, err := w.repo.Find(ctx, ports.EventFilter{GymID: "gym-1"})
	require.NoError(t, err)
	assert.Len(t, active, 3)

	// The audit trail covers the whole lifecycle.
	changes, err := w.repo.RecentChanges(ctx, 100)
	require.NoError(t, err)
	var creates, updates, deletes int
	for _, entry := range changes {
		switch entry.Action {
		case entities.ActionCreate:
			creates++
		case entities.ActionUpdate:
			updates++
		case entities.ActionDelete:
			deletes++
		}
	}
	assert.Equal(t, 3, creates)
	assert.Equal(t, 1, updates)
	assert.Equal(t, 1, deletes)

	log, err := w.repo.ListSyncLog(ctx, "gym-1")
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, 3, log[0].EventsFound)

	assert.Contains(t, w.cache.Invalidated, "events")
}

func TestSyncGuardPausesOnEmptyFeed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	w := newSyncWorld(t)
	unit := services.Unit{GymID: "gym-1", EventType: entities.EventTypeCamp}

	var feed []entities.RawListing
	for i := int64(1); i <= 10; i++ {
		feed = append(feed, listing(i, "Summer Camp", 100))
	}
	w.source.SetListings("gym-1", entities.EventTypeCamp, feed)
	require.NoError(t, w.service.SyncUnit(ctx, unit).Err)

	// An empty feed would delete all ten future events at once.
	w.source.SetListings("gym-1", entities.EventTypeCamp, nil)
	result := w.service.SyncUnit(ctx, unit)
	require.NoError(t, result.Err)
	assert.Equal(t, services.UnitPaused, result.State)
	assert.Contains(t, result.PauseReason, "10 of 10")

	active, err := w.repo.Find(ctx, ports.EventFilter{GymID: "gym-1"})
	require.NoError(t, err)
	assert.Len(t, active, 10, "paused unit must not delete anything")

	log, err := w.repo.ListSyncLog(ctx, "gym-1")
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, 10, log[0].EventsFound, "paused unit must not touch the sync log")
}
