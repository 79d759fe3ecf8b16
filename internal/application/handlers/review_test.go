package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkrall/gymsync/internal/domain/entities"
	"github.com/mkrall/gymsync/internal/domain/mocks"
	"github.com/mkrall/gymsync/internal/domain/services"
)

func newReviewHandler(t *testing.T) (*ReviewHandler, *mocks.EventStore, *mocks.AuditSink) {
	t.Helper()
	store := mocks.NewEventStore()
	audit := mocks.NewAuditSink()
	svc := services.NewReviewService(store, zap.NewNop())
	return NewReviewHandler(svc, store, audit), store, audit
}

func TestEventsWithIssues(t *testing.T) {
	h, store, _ := newReviewHandler(t)
	ctx := context.Background()

	// Clean event: not listed.
	store.Seed(entities.EventRecord{
		GymID:             "gym-1",
		Title:             "Clean Camp",
		DescriptionStatus: entities.DescriptionPresent,
	})
	// Only a sold_out notice: not listed either.
	store.Seed(entities.EventRecord{
		GymID:             "gym-1",
		Title:             "Popular Camp",
		DescriptionStatus: entities.DescriptionPresent,
		ValidationErrors: []entities.ValidationError{
			{Type: "sold_out", Message: "event is sold out"},
		},
	})
	// Real issues.
	store.Seed(entities.EventRecord{
		GymID:             "gym-1",
		Type:              entities.EventTypeCamp,
		Title:             "Messy Camp",
		DescriptionStatus: entities.DescriptionFlyerOnly,
		ValidationErrors: []entities.ValidationError{
			{Type: "price_mismatch", Message: "price differs"},
			{Type: "missing_age_in_title", Message: "no age range"},
			{Type: "registration_closed", Message: "registration closed"},
			{Type: "sold_out", Message: "event is sold out"},
		},
		AcknowledgedErrors: []entities.Acknowledgment{{Message: "no age range"}},
	})

	issues, err := h.EventsWithIssues(ctx, "gym-1")
	require.NoError(t, err)
	require.Len(t, issues, 1)

	got := issues[0]
	assert.Equal(t, "Messy Camp", got.Event.Title)
	assert.Equal(t, 3, got.TotalErrors)
	assert.Len(t, got.DataErrors, 1)
	assert.Len(t, got.FormattingErrors, 1)
	assert.Len(t, got.StatusErrors, 1)
	assert.Len(t, got.ActiveErrors, 2)
	assert.Len(t, got.DismissedErrors, 1)
	assert.True(t, got.HasDescriptionIssue)
}

func TestEventsWithIssuesHonorsPatterns(t *testing.T) {
	h, store, _ := newReviewHandler(t)
	ctx := context.Background()

	store.Seed(entities.EventRecord{
		GymID:             "gym-1",
		Type:              entities.EventTypeClinic,
		Title:             "Clinic",
		DescriptionStatus: entities.DescriptionPresent,
		ValidationErrors: []entities.ValidationError{
			{Type: "time_mismatch", Message: "known portal quirk"},
		},
	})
	require.NoError(t, store.SavePattern(ctx, &entities.AcknowledgedPattern{
		GymID:        "gym-1",
		EventType:    entities.EventTypeClinic,
		ErrorMessage: "known portal quirk",
	}))

	issues, err := h.EventsWithIssues(ctx, "gym-1")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Empty(t, issues[0].ActiveErrors)
	assert.Len(t, issues[0].DismissedErrors, 1)
}

func TestDismissProgramWideThroughHandler(t *testing.T) {
	h, store, _ := newReviewHandler(t)
	ctx := context.Background()

	rec := store.Seed(entities.EventRecord{
		GymID: "gym-1",
		Type:  entities.EventTypeCamp,
		Title: "Camp",
	})

	require.NoError(t, h.Dismiss(ctx, rec.ID, "recurring quirk", "portal bug", true))

	patterns, err := h.ListPatterns(ctx, "gym-1")
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, entities.EventTypeCamp, patterns[0].EventType)
}

func TestCreateRuleLooksUpErrorByMessage(t *testing.T) {
	h, store, _ := newReviewHandler(t)
	ctx := context.Background()

	rec := store.Seed(entities.EventRecord{
		GymID: "gym-1",
		Type:  entities.EventTypeCamp,
		Title: "Camp",
		ValidationErrors: []entities.ValidationError{
			{Type: "camp_price_mismatch", Message: "description says $15 but listing says $20"},
		},
	})

	rule, err := h.CreateRule(ctx, rec.ID, "description says $15 but listing says $20", "sibling discount", services.OriginAuditReview)
	require.NoError(t, err)
	assert.Equal(t, "15", rule.Value)

	_, err = h.CreateRule(ctx, rec.ID, "no such error", "x", services.OriginAuditReview)
	assert.Error(t, err)
}

func TestAccuracyThroughHandler(t *testing.T) {
	h, store, _ := newReviewHandler(t)

	store.Seed(entities.EventRecord{
		GymID: "gym-1",
		VerifiedErrors: []entities.VerifiedError{
			{Message: "a", Verdict: entities.VerdictCorrect},
			{Message: "b", Verdict: entities.VerdictIncorrect},
		},
	})

	stats, err := h.Accuracy(context.Background(), "gym-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 50, stats.Pct)
}
