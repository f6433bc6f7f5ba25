package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/meeting-service/internal/persistence"
	"github.com/example/meeting-service/internal/recurrence"
)

// RecurrenceService manages structured recurrence rules. A rule referenced by
// materialized meetings is frozen except for extending its end condition, and
// cannot be deleted.
type RecurrenceService struct {
	recurrences persistence.RecurrenceRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRecurrenceService wires dependencies for recurrence rule operations.
func NewRecurrenceService(recurrences persistence.RecurrenceRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RecurrenceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RecurrenceService{
		recurrences: recurrences,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RecurrenceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RecurrenceService", operation, attrs...)
}

// CreateRecurrence validates and persists a new recurrence rule.
func (s *RecurrenceService) CreateRecurrence(ctx context.Context, params CreateRecurrenceParams) (rule Recurrence, err error) {
	if s == nil {
		err = fmt.Errorf("RecurrenceService is nil")
		return
	}
	if s.recurrences == nil {
		err = fmt.Errorf("recurrence repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateRecurrence",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create recurrence", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("recurrence_id", rule.ID).InfoContext(ctx, "recurrence created")
	}()

	input := params.Input
	if vErr := validateRecurrenceInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	record := persistence.RecurrenceRule{
		ID:        s.idGenerator(),
		Title:     strings.TrimSpace(input.Title),
		Frequency: input.Frequency,
		Interval:  input.Interval,
		Weekday:   input.Weekday,
		MonthWeek: input.MonthWeek,
		EndsOn:    input.EndsOn,
		EndAfter:  input.EndAfter,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if err = s.recurrences.CreateRecurrence(ctx, record); err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	rule = toRecurrence(record)
	return
}

// ImportRecurrence converts a legacy RRULE string into a structured rule and
// persists it. Only the structured form is stored.
func (s *RecurrenceService) ImportRecurrence(ctx context.Context, params ImportRecurrenceParams) (rule Recurrence, err error) {
	if s == nil {
		err = fmt.Errorf("RecurrenceService is nil")
		return
	}
	if s.recurrences == nil {
		err = fmt.Errorf("recurrence repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ImportRecurrence",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to import recurrence", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("recurrence_id", rule.ID).InfoContext(ctx, "recurrence imported")
	}()

	parsed, parseErr := recurrence.ParseRRule(params.RRule, params.DTStart)
	if parseErr != nil {
		vErr := &ValidationError{}
		vErr.add("rrule", parseErr.Error())
		err = vErr
		return
	}

	input := RecurrenceInput{
		Title:     params.Title,
		Frequency: parsed.Frequency.String(),
		Interval:  parsed.Interval,
		Weekday:   parsed.Weekday,
		MonthWeek: parsed.MonthWeek,
		EndsOn:    parsed.EndsOn,
		EndAfter:  parsed.EndAfter,
	}
	return s.CreateRecurrence(ctx, CreateRecurrenceParams{Principal: params.Principal, Input: input})
}

// GetRecurrence loads a single rule by id.
func (s *RecurrenceService) GetRecurrence(ctx context.Context, id string) (Recurrence, error) {
	if s == nil || s.recurrences == nil {
		return Recurrence{}, fmt.Errorf("recurrence repository not configured")
	}
	record, err := s.recurrences.GetRecurrence(ctx, id)
	if err != nil {
		return Recurrence{}, mapMeetingRepoError(err)
	}
	return toRecurrence(record), nil
}

// ListRecurrences enumerates all stored rules.
func (s *RecurrenceService) ListRecurrences(ctx context.Context) ([]Recurrence, error) {
	if s == nil || s.recurrences == nil {
		return nil, fmt.Errorf("recurrence repository not configured")
	}
	records, err := s.recurrences.ListRecurrences(ctx)
	if err != nil {
		return nil, mapMeetingRepoError(err)
	}
	rules := make([]Recurrence, 0, len(records))
	for _, record := range records {
		rules = append(rules, toRecurrence(record))
	}
	return rules, nil
}

// UpdateRecurrence applies validation and the referenced-rule freeze before
// updating persistence state. Once meetings reference a rule, only its end
// condition may be extended.
func (s *RecurrenceService) UpdateRecurrence(ctx context.Context, params UpdateRecurrenceParams) (rule Recurrence, err error) {
	if s == nil {
		err = fmt.Errorf("RecurrenceService is nil")
		return
	}
	if s.recurrences == nil {
		err = fmt.Errorf("recurrence repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRecurrence",
		"principal_id", params.Principal.UserID,
		"recurrence_id", params.RecurrenceID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update recurrence", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "recurrence updated")
	}()

	existing, err := s.recurrences.GetRecurrence(ctx, params.RecurrenceID)
	if err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	input := params.Input
	if vErr := validateRecurrenceInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	referenced, err := s.ruleReferenced(ctx, params.RecurrenceID)
	if err != nil {
		return
	}
	if referenced && !onlyEndConditionExtended(existing, input) {
		err = ErrRuleInUse
		return
	}

	updated := existing
	updated.Title = strings.TrimSpace(input.Title)
	updated.Frequency = input.Frequency
	updated.Interval = input.Interval
	updated.Weekday = input.Weekday
	updated.MonthWeek = input.MonthWeek
	updated.EndsOn = input.EndsOn
	updated.EndAfter = input.EndAfter
	updated.UpdatedAt = s.now()

	if err = s.recurrences.UpdateRecurrence(ctx, updated); err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	rule = toRecurrence(updated)
	return
}

// DeleteRecurrence removes an unreferenced rule. A rule with materialized
// meetings cannot be deleted.
func (s *RecurrenceService) DeleteRecurrence(ctx context.Context, principal Principal, recurrenceID string) (err error) {
	if s == nil || s.recurrences == nil {
		return fmt.Errorf("recurrence repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteRecurrence",
		"principal_id", principal.UserID,
		"recurrence_id", recurrenceID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete recurrence", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "recurrence deleted")
	}()

	referenced, err := s.ruleReferenced(ctx, recurrenceID)
	if err != nil {
		return
	}
	if referenced {
		err = ErrRuleInUse
		return
	}

	if err = s.recurrences.DeleteRecurrence(ctx, recurrenceID); err != nil {
		err = mapMeetingRepoError(err)
		// A racing materializer can reference the rule between the count and
		// the delete; the foreign key reports that as the same conflict.
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			err = ErrRuleInUse
		}
	}
	return
}

func (s *RecurrenceService) ruleReferenced(ctx context.Context, recurrenceID string) (bool, error) {
	count, err := s.recurrences.CountMeetingsForRecurrence(ctx, recurrenceID)
	if err != nil {
		return false, mapMeetingRepoError(err)
	}
	return count > 0, nil
}

// onlyEndConditionExtended reports whether the input leaves every structural
// field untouched and only pushes the end condition further out.
func onlyEndConditionExtended(existing persistence.RecurrenceRule, input RecurrenceInput) bool {
	if strings.TrimSpace(input.Title) != existing.Title {
		return false
	}
	if input.Frequency != existing.Frequency || input.Interval != existing.Interval {
		return false
	}
	if !weekdayEqual(input.Weekday, existing.Weekday) || !intPtrEqual(input.MonthWeek, existing.MonthWeek) {
		return false
	}

	switch {
	case existing.EndAfter == 0 && input.EndAfter > 0:
		// Bounding a previously count-unbounded rule shrinks the series.
		return false
	case input.EndAfter > 0 && input.EndAfter < existing.EndAfter:
		return false
	}

	switch {
	case existing.EndsOn == nil && input.EndsOn == nil:
	case existing.EndsOn == nil && input.EndsOn != nil:
		// Bounding a previously open-ended rule shrinks the series.
		return false
	case existing.EndsOn != nil && input.EndsOn == nil:
	case input.EndsOn.Before(*existing.EndsOn):
		return false
	}

	return true
}

func validateRecurrenceInput(input RecurrenceInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}

	frequency, err := recurrence.ParseFrequency(input.Frequency)
	if err != nil {
		vErr.add("frequency", "must be one of daily, weekly, monthly")
		return vErr
	}

	rule := recurrence.Rule{
		Frequency: frequency,
		Interval:  input.Interval,
		Weekday:   input.Weekday,
		MonthWeek: input.MonthWeek,
		EndsOn:    input.EndsOn,
		EndAfter:  input.EndAfter,
	}
	if err := recurrence.Validate(rule); err != nil {
		switch {
		case errors.Is(err, recurrence.ErrInvalidInterval):
			vErr.add("interval", "must be positive")
		case errors.Is(err, recurrence.ErrInvalidAnchor):
			vErr.add("month_week", "requires a weekday and a week between 1 and 5")
		default:
			vErr.add("recurrence", err.Error())
		}
	}

	if input.EndAfter < 0 {
		vErr.add("end_after", "must not be negative")
	}

	return vErr
}

func weekdayEqual(a, b *time.Weekday) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func toRecurrence(record persistence.RecurrenceRule) Recurrence {
	return Recurrence{
		ID:        record.ID,
		Title:     record.Title,
		Frequency: record.Frequency,
		Interval:  record.Interval,
		Weekday:   record.Weekday,
		MonthWeek: record.MonthWeek,
		EndsOn:    record.EndsOn,
		EndAfter:  record.EndAfter,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
