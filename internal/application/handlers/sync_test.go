package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkrall/gymsync/internal/domain/entities"
	"github.com/mkrall/gymsync/internal/domain/mocks"
	"github.com/mkrall/gymsync/internal/domain/services"
)

func newSyncHandler(t *testing.T, source *mocks.ListingSource) (*SyncHandler, *mocks.EventStore) {
	t.Helper()
	store := mocks.NewEventStore()
	cfg := services.SyncConfig{
		FetchTimeout:      time.Second,
		RetryDelay:        time.Millisecond,
		Guard:             services.DefaultGuardConfig(),
		PortalURLTemplate: "https://portal.example.com/%s/event/%d",
		GymSlugs:          map[string]string{"gym-1": "a", "gym-2": "b"},
	}
	svc := services.NewSyncService(
		store, source, mocks.NewAuditSink(), mocks.NewCache(),
		mocks.NewChangeNotifier(), mocks.NewMetricsRecorder(), zap.NewNop(), cfg,
	)
	types := []entities.EventType{entities.EventTypeCamp, entities.EventTypeClinic}
	return NewSyncHandler(svc, []string{"gym-2", "gym-1"}, types), store
}

func TestHandleAllCoversEveryUnit(t *testing.T) {
	source := mocks.NewListingSource()
	source.SetListings("gym-1", entities.EventTypeCamp, []entities.RawListing{
		{ID: 1, Name: "Camp", StartDate: "2099-07-01"},
	})
	h, store := newSyncHandler(t, source)

	batch := h.HandleAll(context.Background())

	// 2 gyms x 2 types, gyms in sorted order.
	require.Len(t, batch.Units, 4)
	assert.Equal(t, "gym-1", batch.Units[0].Unit.GymID)
	assert.Equal(t, 1, batch.Totals.New)
	assert.Len(t, store.Events, 1)
	assert.Equal(t, 4, source.Calls)
}

func TestHandleGymScopesUnits(t *testing.T) {
	source := mocks.NewListingSource()
	h, _ := newSyncHandler(t, source)

	batch := h.HandleGym(context.Background(), "gym-2")

	require.Len(t, batch.Units, 2)
	for _, unit := range batch.Units {
		assert.Equal(t, "gym-2", unit.Unit.GymID)
	}
}

func TestHandleUnit(t *testing.T) {
	source := mocks.NewListingSource()
	source.SetListings("gym-1", entities.EventTypeClinic, []entities.RawListing{
		{ID: 9, Name: "Clinic", StartDate: "2099-07-01"},
	})
	h, _ := newSyncHandler(t, source)

	result := h.HandleUnit(context.Background(), "gym-1", entities.EventTypeClinic)

	assert.Equal(t, services.UnitDone, result.State)
	assert.Equal(t, 1, result.Summary.New)
}
