package handlers

import (
	"context"
	"fmt"

	"github.com/mkrall/gymsync/internal/domain/entities"
	"github.com/mkrall/gymsync/internal/domain/ports"
	"github.com/mkrall/gymsync/internal/domain/services"
)

// EventIssues is one event annotated with its issue breakdown for review
// listings.
type EventIssues struct {
	Event entities.EventRecord

	DataErrors       []entities.ValidationError
	FormattingErrors []entities.ValidationError
	StatusErrors     []entities.ValidationError

	ActiveErrors    []entities.ValidationError
	DismissedErrors []entities.ValidationError

	TotalErrors         int
	HasDescriptionIssue bool
}

// ReviewHandler serves the review surfaces: issue listings, dismissals,
// rules, verdicts and change history.
type ReviewHandler struct {
	reviewService *services.ReviewService
	store         ports.EventStore
	audit         ports.AuditSink
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviewService *services.ReviewService, store ports.EventStore, audit ports.AuditSink) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		store:         store,
		audit:         audit,
	}
}

// EventsWithIssues returns the gym's current events that need attention:
// those with at least one non-informational validation error or with missing
// description content. Events whose only notice is sold_out are excluded.
func (h *ReviewHandler) EventsWithIssues(ctx context.Context, gymID string) ([]EventIssues, error) {
	events, err := h.store.Find(ctx, ports.EventFilter{GymID: gymID})
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	patterns, err := h.store.ListPatterns(ctx, gymID)
	if err != nil {
		return nil, fmt.Errorf("loading dismissal patterns: %w", err)
	}

	var result []EventIssues
	for _, event := range events {
		issues := buildIssues(event, patterns)
		if issues.TotalErrors == 0 && !issues.HasDescriptionIssue {
			continue
		}
		result = append(result, issues)
	}
	return result, nil
}

func buildIssues(event entities.EventRecord, patterns []entities.AcknowledgedPattern) EventIssues {
	issues := EventIssues{Event: event}

	for _, verr := range event.ValidationErrors {
		if verr.Type == "sold_out" {
			continue
		}
		issues.TotalErrors++

		switch services.Categorize(verr) {
		case entities.CategoryDataError:
			issues.DataErrors = append(issues.DataErrors, verr)
		case entities.CategoryStatus:
			issues.StatusErrors = append(issues.StatusErrors, verr)
		default:
			issues.FormattingErrors = append(issues.FormattingErrors, verr)
		}

		if services.IsAcknowledged(&event, patterns, verr.Message) {
			issues.DismissedErrors = append(issues.DismissedErrors, verr)
		} else {
			issues.ActiveErrors = append(issues.ActiveErrors, verr)
		}
	}

	issues.HasDescriptionIssue = event.DescriptionStatus == entities.DescriptionNone ||
		event.DescriptionStatus == entities.DescriptionFlyerOnly
	return issues
}

// Accuracy computes verification accuracy over a gym's events, or over all
// events when gymID is empty.
func (h *ReviewHandler) Accuracy(ctx context.Context, gymID string) (services.AccuracyStats, error) {
	events, err := h.store.Find(ctx, ports.EventFilter{GymID: gymID, IncludeDeleted: true})
	if err != nil {
		return services.AccuracyStats{}, fmt.Errorf("loading events: %w", err)
	}
	return services.ComputeAccuracyStats(events), nil
}

// Dismiss dismisses an error at event or program scope.
func (h *ReviewHandler) Dismiss(ctx context.Context, eventID, message, note string, programWide bool) error {
	if !programWide {
		_, err := h.reviewService.DismissEvent(ctx, eventID, message, note)
		return err
	}
	rec, err := h.store.FindByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("loading event %s: %w", eventID, err)
	}
	if rec == nil {
		return fmt.Errorf("event %s not found", eventID)
	}
	_, err = h.reviewService.DismissProgram(ctx, rec.GymID, rec.Type, message, note)
	return err
}

// UndoDismiss removes a per-event dismissal.
func (h *ReviewHandler) UndoDismiss(ctx context.Context, eventID, message string) error {
	_, err := h.reviewService.UndoDismissEvent(ctx, eventID, message)
	return err
}

// CreateRule promotes a dismissed error into a permanent gym rule. The
// error is looked up on the event by message.
func (h *ReviewHandler) CreateRule(ctx context.Context, eventID, message, label string, origin services.RuleOrigin) (*entities.ValidRule, error) {
	rec, err := h.store.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("loading event %s: %w", eventID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("event %s not found", eventID)
	}
	for _, verr := range rec.ValidationErrors {
		if verr.Message == message {
			return h.reviewService.CreateRule(ctx, eventID, verr, label, origin)
		}
	}
	return nil, fmt.Errorf("event %s has no error %q", eventID, message)
}

// SetVerdict records or clears a verification verdict.
func (h *ReviewHandler) SetVerdict(ctx context.Context, eventID, message string, verdict entities.Verdict, note string) error {
	_, err := h.reviewService.SetVerdict(ctx, eventID, message, verdict, note)
	return err
}

// ListRules returns gym rules, all gyms when gymID is empty.
func (h *ReviewHandler) ListRules(ctx context.Context, gymID string) ([]entities.ValidRule, error) {
	return h.reviewService.ListRules(ctx, gymID)
}

// DeleteRule removes a gym rule.
func (h *ReviewHandler) DeleteRule(ctx context.Context, id string) error {
	return h.reviewService.DeleteRule(ctx, id)
}

// ListPatterns returns program-wide dismissals.
func (h *ReviewHandler) ListPatterns(ctx context.Context, gymID string) ([]entities.AcknowledgedPattern, error) {
	return h.reviewService.ListPatterns(ctx, gymID)
}

// DeletePattern removes a program-wide dismissal.
func (h *ReviewHandler) DeletePattern(ctx context.Context, id string) error {
	return h.reviewService.DeletePattern(ctx, id)
}

// RecentChanges returns the latest change-history entries.
func (h *ReviewHandler) RecentChanges(ctx context.Context, limit int) ([]entities.ChangeEntry, error) {
	return h.audit.RecentChanges(ctx, limit)
}

// ChangesByEvent returns the change history for one event.
func (h *ReviewHandler) ChangesByEvent(ctx context.Context, eventID string) ([]entities.ChangeEntry, error) {
	return h.audit.ChangesByEvent(ctx, eventID)
}

// ChangesByGym returns recent change-history entries for one gym.
func (h *ReviewHandler) ChangesByGym(ctx context.Context, gymID string, limit int) ([]entities.ChangeEntry, error) {
	return h.audit.ChangesByGym(ctx, gymID, limit)
}

// SyncHistory returns sync-log rows, all gyms when gymID is empty.
func (h *ReviewHandler) SyncHistory(ctx context.Context, gymID string) ([]entities.SyncLogEntry, error) {
	return h.store.ListSyncLog(ctx, gymID)
}
