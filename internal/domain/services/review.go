package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/mkrall/gymsync/internal/domain/entities"
	"github.com/mkrall/gymsync/internal/domain/ports"
)

// RuleOrigin identifies which review surface asked to create a rule. The
// bulk table views offer rule creation for fewer error types than the audit
// review screen does.
type RuleOrigin int

const (
	OriginAuditReview RuleOrigin = iota
	OriginTableView
)

// ruleEligibleTypes maps origin to the error types a rule can be derived
// from. The table-view set omits the program-name types.
var ruleEligibleTypes = map[RuleOrigin]map[string]struct{}{
	OriginAuditReview: {
		"camp_price_mismatch":      {},
		"event_price_mismatch":     {},
		"time_mismatch":            {},
		"program_mismatch":         {},
		"missing_program_in_title": {},
	},
	OriginTableView: {
		"camp_price_mismatch":  {},
		"event_price_mismatch": {},
		"time_mismatch":        {},
	},
}

var (
	rulePriceRe = regexp.MustCompile(`\$(\d+(?:\.\d{2})?)`)
	ruleTimeRe  = regexp.MustCompile(`(?i)(?:description|title) says (\d{1,2}(?::\d{2})?\s*(?:am|pm|a|p))`)
)

// PartialWriteError reports a rule that was persisted while the follow-up
// acknowledgment write failed. The rule is live; the caller should surface
// the dangling dismissal rather than retry, because retrying could duplicate
// the rule.
type PartialWriteError struct {
	Rule *entities.ValidRule
	Err  error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("rule %s saved but acknowledgment write failed: %v", e.Rule.ID, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// AccuracyStats aggregates verification verdicts across a set of events.
// Pct is meaningless when Total is zero.
type AccuracyStats struct {
	Total     int
	Verified  int
	Incorrect int
	Pct       int
}

// ReviewService owns the exception lifecycle: per-event dismissals,
// program-wide dismissal patterns, permanent gym rules and verification
// verdicts.
type ReviewService struct {
	store  ports.EventStore
	logger *zap.Logger
}

// NewReviewService creates a ReviewService.
func NewReviewService(store ports.EventStore, logger *zap.Logger) *ReviewService {
	return &ReviewService{store: store, logger: logger}
}

// DismissEvent appends an acknowledgment for one error message on one event.
// Idempotent: if the message is already acknowledged the record is returned
// unchanged.
func (s *ReviewService) DismissEvent(ctx context.Context, eventID, message, note string) (*entities.EventRecord, error) {
	return s.dismissEvent(ctx, eventID, message, note, false)
}

func (s *ReviewService) dismissEvent(ctx context.Context, eventID, message, note string, hasRule bool) (*entities.EventRecord, error) {
	rec, err := s.store.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("loading event %s: %w", eventID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("event %s not found", eventID)
	}

	for _, ack := range rec.AcknowledgedErrors {
		if ack.Message == message {
			return rec, nil
		}
	}

	acks := append(append([]entities.Acknowledgment{}, rec.AcknowledgedErrors...), entities.Acknowledgment{
		Message:     message,
		Note:        note,
		DismissedAt: timeNow().UTC(),
		HasRule:     hasRule,
	})

	updated, err := s.store.SetAcknowledgedErrors(ctx, eventID, acks)
	if err != nil {
		return nil, fmt.Errorf("saving acknowledgment for event %s: %w", eventID, err)
	}
	s.logger.Info("dismissed error",
		zap.String("event_id", eventID),
		zap.String("message", message))
	return updated, nil
}

// UndoDismissEvent removes the acknowledgment for a message from an event.
// Removing a message that was never acknowledged is a no-op.
func (s *ReviewService) UndoDismissEvent(ctx context.Context, eventID, message string) (*entities.EventRecord, error) {
	rec, err := s.store.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("loading event %s: %w", eventID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("event %s not found", eventID)
	}

	kept := make([]entities.Acknowledgment, 0, len(rec.AcknowledgedErrors))
	for _, ack := range rec.AcknowledgedErrors {
		if ack.Message != message {
			kept = append(kept, ack)
		}
	}
	if len(kept) == len(rec.AcknowledgedErrors) {
		return rec, nil
	}

	updated, err := s.store.SetAcknowledgedErrors(ctx, eventID, kept)
	if err != nil {
		return nil, fmt.Errorf("removing acknowledgment for event %s: %w", eventID, err)
	}
	return updated, nil
}

// DismissProgram creates a program-wide dismissal pattern covering every
// current and future event of the gym and type carrying the message.
func (s *ReviewService) DismissProgram(ctx context.Context, gymID string, eventType entities.EventType, message, note string) (*entities.AcknowledgedPattern, error) {
	pattern := &entities.AcknowledgedPattern{
		GymID:        gymID,
		EventType:    eventType,
		ErrorMessage: message,
		Note:         note,
		CreatedAt:    timeNow().UTC(),
	}
	if err := s.store.SavePattern(ctx, pattern); err != nil {
		return nil, fmt.Errorf("saving dismissal pattern: %w", err)
	}
	s.logger.Info("dismissed error program-wide",
		zap.String("gym_id", gymID),
		zap.String("event_type", string(eventType)),
		zap.String("message", message))
	return pattern, nil
}

// DeletePattern removes a program-wide dismissal.
func (s *ReviewService) DeletePattern(ctx context.Context, id string) error {
	if err := s.store.DeletePattern(ctx, id); err != nil {
		return fmt.Errorf("deleting pattern %s: %w", id, err)
	}
	return nil
}

// ListPatterns returns program-wide dismissals for a gym, or all when gymID
// is empty.
func (s *ReviewService) ListPatterns(ctx context.Context, gymID string) ([]entities.AcknowledgedPattern, error) {
	return s.store.ListPatterns(ctx, gymID)
}

// CanCreateRule reports whether a rule can be derived from an error type
// when requested from the given surface.
func CanCreateRule(errorType string, origin RuleOrigin) bool {
	_, ok := ruleEligibleTypes[origin][errorType]
	return ok
}

// extractRule derives the rule type and allow-listed value from an error.
// Returns false when the message doesn't carry an extractable value.
func extractRule(verr entities.ValidationError, event *entities.EventRecord) (entities.RuleType, string, bool) {
	switch verr.Type {
	case "camp_price_mismatch", "event_price_mismatch":
		m := rulePriceRe.FindStringSubmatch(verr.Message)
		if m == nil {
			return "", "", false
		}
		return entities.RuleTypePrice, m[1], true
	case "time_mismatch":
		m := ruleTimeRe.FindStringSubmatch(verr.Message)
		if m == nil {
			return "", "", false
		}
		return entities.RuleTypeTime, strings.TrimSpace(m[1]), true
	case "program_mismatch", "missing_program_in_title":
		if event.Title == "" {
			return "", "", false
		}
		return entities.RuleTypeProgramSynonym, strings.ToLower(event.Title), true
	default:
		return "", "", false
	}
}

// CreateRule turns a dismissed error into a permanent gym allow-list entry
// and acknowledges the error on the event. An empty label defaults to the
// error type's display label. The rule write and the
// acknowledgment write are separate; when the rule lands but the
// acknowledgment fails, the rule is kept and a PartialWriteError is
// returned so the caller can surface the inconsistency. It is never
// retried automatically.
func (s *ReviewService) CreateRule(ctx context.Context, eventID string, verr entities.ValidationError, label string, origin RuleOrigin) (*entities.ValidRule, error) {
	if !CanCreateRule(verr.Type, origin) {
		return nil, fmt.Errorf("error type %q does not support rule creation", verr.Type)
	}

	rec, err := s.store.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("loading event %s: %w", eventID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("event %s not found", eventID)
	}

	ruleType, value, ok := extractRule(verr, rec)
	if !ok {
		return nil, fmt.Errorf("no rule value extractable from %q message", verr.Type)
	}

	if label == "" {
		label = Label(verr.Type)
	}

	rule := &entities.ValidRule{
		GymID:     rec.GymID,
		RuleType:  ruleType,
		Value:     value,
		Label:     label,
		EventType: rec.Type,
		CreatedAt: timeNow().UTC(),
	}
	if err := s.store.SaveRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("saving rule: %w", err)
	}

	if _, err := s.dismissEvent(ctx, eventID, verr.Message, "rule: "+label, true); err != nil {
		s.logger.Warn("rule saved but acknowledgment failed",
			zap.String("rule_id", rule.ID),
			zap.String("event_id", eventID),
			zap.Error(err))
		return rule, &PartialWriteError{Rule: rule, Err: err}
	}

	s.logger.Info("created rule",
		zap.String("rule_id", rule.ID),
		zap.String("gym_id", rec.GymID),
		zap.String("rule_type", string(ruleType)),
		zap.String("value", value))
	return rule, nil
}

// ListRules returns gym rules for a gym, or all when gymID is empty.
func (s *ReviewService) ListRules(ctx context.Context, gymID string) ([]entities.ValidRule, error) {
	return s.store.ListRules(ctx, gymID)
}

// DeleteRule removes a gym rule.
func (s *ReviewService) DeleteRule(ctx context.Context, id string) error {
	if err := s.store.DeleteRule(ctx, id); err != nil {
		return fmt.Errorf("deleting rule %s: %w", id, err)
	}
	return nil
}

// SetVerdict records a human judgment on one error message. A prior verdict
// for the same message is replaced, never duplicated. An empty verdict
// clears the entry.
func (s *ReviewService) SetVerdict(ctx context.Context, eventID, message string, verdict entities.Verdict, note string) (*entities.EventRecord, error) {
	if verdict != "" && !verdict.IsValid() {
		return nil, fmt.Errorf("invalid verdict %q", verdict)
	}

	rec, err := s.store.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("loading event %s: %w", eventID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("event %s not found", eventID)
	}

	kept := make([]entities.VerifiedError, 0, len(rec.VerifiedErrors)+1)
	for _, v := range rec.VerifiedErrors {
		if v.Message != message {
			kept = append(kept, v)
		}
	}
	if verdict != "" {
		var category entities.ErrorCategory
		for _, verr := range rec.ValidationErrors {
			if verr.Message == message {
				category = Categorize(verr)
				break
			}
		}
		kept = append(kept, entities.VerifiedError{
			Message:    message,
			VerifiedAt: timeNow().UTC(),
			Category:   category,
			Verdict:    verdict,
			Note:       note,
		})
	}

	updated, err := s.store.SetVerifiedErrors(ctx, eventID, kept)
	if err != nil {
		return nil, fmt.Errorf("saving verdict for event %s: %w", eventID, err)
	}
	return updated, nil
}

// ComputeAccuracyStats aggregates verdicts across events. Only explicit
// verification verdicts count; dismissals just mean "handled" and carry no
// accuracy signal. Entries predating the verdict field count as correct.
func ComputeAccuracyStats(events []entities.EventRecord) AccuracyStats {
	var stats AccuracyStats
	for _, event := range events {
		for _, v := range event.VerifiedErrors {
			if v.Verdict == entities.VerdictIncorrect {
				stats.Incorrect++
			} else {
				stats.Verified++
			}
		}
	}
	stats.Total = stats.Verified + stats.Incorrect
	if stats.Total > 0 {
		stats.Pct = int(math.Round(100 * float64(stats.Verified) / float64(stats.Total)))
	}
	return stats
}
