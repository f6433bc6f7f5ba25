package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/meeting-service/internal/conflict"
	"github.com/example/meeting-service/internal/notify"
	"github.com/example/meeting-service/internal/persistence"
	"github.com/example/meeting-service/internal/recurrence"
)

// MeetingService orchestrates meeting lifecycle operations: creation,
// recurring-series materialization, completion with task rollover, and
// next-occurrence resolution.
type MeetingService struct {
	meetings    persistence.MeetingRepository
	tasks       persistence.TaskRepository
	recurrences persistence.RecurrenceRepository
	users       persistence.UserRepository
	engine      *recurrence.Engine
	notifier    notify.Notifier
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewMeetingService wires dependencies for meeting operations.
func NewMeetingService(
	meetings persistence.MeetingRepository,
	tasks persistence.TaskRepository,
	recurrences persistence.RecurrenceRepository,
	users persistence.UserRepository,
	engine *recurrence.Engine,
	notifier notify.Notifier,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *MeetingService {
	if engine == nil {
		engine = recurrence.NewEngine(nil)
	}
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MeetingService{
		meetings:    meetings,
		tasks:       tasks,
		recurrences: recurrences,
		users:       users,
		engine:      engine,
		notifier:    notifier,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *MeetingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MeetingService", operation, attrs...)
}

// CreateMeeting validates input and persists a standalone meeting.
func (s *MeetingService) CreateMeeting(ctx context.Context, params CreateMeetingParams) (meeting Meeting, err error) {
	if s == nil {
		err = fmt.Errorf("MeetingService is nil")
		return
	}
	if s.meetings == nil {
		err = fmt.Errorf("meeting repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateMeeting",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("meeting_id", meeting.ID).InfoContext(ctx, "meeting created")
	}()

	input := params.Input

	vErr := &ValidationError{}
	validateMeetingCore(input, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureAttendeesExist(ctx, input.AttendeeIDs); err != nil {
		return
	}

	createdAt := s.now()
	record := persistence.Meeting{
		ID:              s.idGenerator(),
		Title:           strings.TrimSpace(input.Title),
		Start:           input.Start,
		End:             input.End,
		DurationMinutes: durationMinutes(input.Start, input.End),
		Location:        strings.TrimSpace(input.Location),
		Notes:           input.Notes,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}

	s.warnDoubleBookings(ctx, logger, record, params.Principal, input.AttendeeIDs)

	if err = s.meetings.CreateMeeting(ctx, record); err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	if err = s.registerAttendees(ctx, record.ID, params.Principal, input.AttendeeIDs, createdAt); err != nil {
		return
	}

	meeting = toMeeting(record)
	s.publish(ctx, logger, notify.EventMeetingCreated, meetingEventPayload(meeting))
	return
}

// GetMeeting loads a single meeting by id.
func (s *MeetingService) GetMeeting(ctx context.Context, id string) (Meeting, error) {
	if s == nil || s.meetings == nil {
		return Meeting{}, fmt.Errorf("meeting repository not configured")
	}
	record, err := s.meetings.GetMeeting(ctx, id)
	if err != nil {
		return Meeting{}, mapMeetingRepoError(err)
	}
	return toMeeting(record), nil
}

// UpdateMeeting applies validation before updating persistence state. Moving
// the start of a recurrence-linked meeting counts as a reschedule.
func (s *MeetingService) UpdateMeeting(ctx context.Context, params UpdateMeetingParams) (meeting Meeting, err error) {
	if s == nil {
		err = fmt.Errorf("MeetingService is nil")
		return
	}
	if s.meetings == nil {
		err = fmt.Errorf("meeting repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateMeeting",
		"principal_id", params.Principal.UserID,
		"meeting_id", params.MeetingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "meeting updated")
	}()

	existing, err := s.meetings.GetMeeting(ctx, params.MeetingID)
	if err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	input := params.Input

	vErr := &ValidationError{}
	validateMeetingCore(input, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Title = strings.TrimSpace(input.Title)
	updated.Start = input.Start
	updated.End = input.End
	updated.DurationMinutes = durationMinutes(input.Start, input.End)
	updated.Location = strings.TrimSpace(input.Location)
	updated.Notes = input.Notes
	updated.UpdatedAt = s.now()

	if existing.RecurrenceID != nil && !existing.Start.Equal(input.Start) {
		updated.NumReschedules = existing.NumReschedules + 1
	}

	if err = s.meetings.UpdateMeeting(ctx, updated); err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	meeting = toMeeting(updated)
	return
}

// DeleteMeeting removes a meeting. Attendee and task association rows cascade;
// the tasks themselves survive.
func (s *MeetingService) DeleteMeeting(ctx context.Context, principal Principal, meetingID string) (err error) {
	if s == nil || s.meetings == nil {
		return fmt.Errorf("meeting repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteMeeting",
		"principal_id", principal.UserID,
		"meeting_id", meetingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "meeting deleted")
	}()

	if err = s.meetings.DeleteMeeting(ctx, meetingID); err != nil {
		err = mapMeetingRepoError(err)
	}
	return
}

// ListMeetings enumerates meetings matching the supplied filters, ordered by
// start time with the id as tie breaker.
func (s *MeetingService) ListMeetings(ctx context.Context, params ListMeetingsParams) ([]Meeting, error) {
	if s == nil || s.meetings == nil {
		return nil, fmt.Errorf("meeting repository not configured")
	}

	records, err := s.meetings.ListMeetings(ctx, persistence.MeetingFilter{
		RecurrenceID: params.RecurrenceID,
		StartsAfter:  params.StartsAfter,
		Completed:    params.Completed,
		Skip:         params.Skip,
		Limit:        params.Limit,
	})
	if err != nil {
		return nil, mapMeetingRepoError(err)
	}
	return toMeetings(records), nil
}

// ListMeetingsForUser enumerates meetings the given user attends.
func (s *MeetingService) ListMeetingsForUser(ctx context.Context, userID string) ([]Meeting, error) {
	if s == nil || s.meetings == nil {
		return nil, fmt.Errorf("meeting repository not configured")
	}
	records, err := s.meetings.ListMeetingsForUser(ctx, userID)
	if err != nil {
		return nil, mapMeetingRepoError(err)
	}
	return toMeetings(records), nil
}

// AddAttendees registers additional users as meeting attendees.
func (s *MeetingService) AddAttendees(ctx context.Context, params AddAttendeesParams) (err error) {
	if s == nil || s.meetings == nil {
		return fmt.Errorf("meeting repository not configured")
	}

	logger := s.loggerWith(ctx, "AddAttendees",
		"principal_id", params.Principal.UserID,
		"meeting_id", params.MeetingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add attendees", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "attendees added")
	}()

	ids := uniqueStrings(params.UserIDs)
	if len(ids) == 0 {
		vErr := &ValidationError{}
		vErr.add("user_ids", "at least one user id is required")
		err = vErr
		return
	}

	if err = s.ensureAttendeesExist(ctx, ids); err != nil {
		return
	}

	createdAt := s.now()
	attendees := make([]persistence.Attendee, 0, len(ids))
	for _, id := range ids {
		attendees = append(attendees, persistence.Attendee{
			MeetingID: params.MeetingID,
			UserID:    id,
			CreatedAt: createdAt,
		})
	}

	if err = s.meetings.AddAttendees(ctx, params.MeetingID, attendees); err != nil {
		err = mapMeetingRepoError(err)
	}
	return
}

// ListAttendees enumerates the attendees registered for a meeting.
func (s *MeetingService) ListAttendees(ctx context.Context, meetingID string) ([]Attendee, error) {
	if s == nil || s.meetings == nil {
		return nil, fmt.Errorf("meeting repository not configured")
	}
	records, err := s.meetings.ListAttendees(ctx, meetingID)
	if err != nil {
		return nil, mapMeetingRepoError(err)
	}
	attendees := make([]Attendee, 0, len(records))
	for _, record := range records {
		attendees = append(attendees, Attendee{
			MeetingID:   record.MeetingID,
			UserID:      record.UserID,
			IsScheduler: record.IsScheduler,
		})
	}
	return attendees, nil
}

// CreateRecurring expands a recurrence rule against a template meeting and
// materializes one meeting per occurrence. Dates already materialized for the
// recurrence are skipped, so replaying the same request is idempotent. A
// failure partway through leaves earlier meetings in place and is reported
// alongside the partial result.
func (s *MeetingService) CreateRecurring(ctx context.Context, params CreateRecurringParams) (result CreateRecurringResult, err error) {
	if s == nil {
		err = fmt.Errorf("MeetingService is nil")
		return
	}
	if s.meetings == nil || s.recurrences == nil {
		err = fmt.Errorf("meeting repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateRecurring",
		"principal_id", params.Principal.UserID,
		"recurrence_id", params.RecurrenceID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to materialize recurring meetings",
				"error", err, "error_kind", ErrorKind(err),
				"created", len(result.Created), "skipped", result.Skipped)
			return
		}
		logger.InfoContext(ctx, "recurring meetings materialized",
			"created", len(result.Created), "skipped", result.Skipped)
	}()

	rule, err := s.recurrences.GetRecurrence(ctx, params.RecurrenceID)
	if err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	template := params.Template
	vErr := &ValidationError{}
	validateMeetingCore(template, vErr)
	maxCount := params.MaxCount
	if maxCount <= 0 {
		maxCount = defaultMaterializeCap
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureAttendeesExist(ctx, template.AttendeeIDs); err != nil {
		return
	}

	engineRule, convErr := toEngineRule(rule)
	if convErr != nil {
		vErr.add("recurrence", convErr.Error())
		err = vErr
		return
	}

	occurrences, expandErr := s.engine.Expand(engineRule, template.Start, template.End.Sub(template.Start), maxCount)
	if expandErr != nil {
		vErr.add("recurrence", expandErr.Error())
		err = vErr
		return
	}

	recurrenceID := rule.ID
	for _, occurrence := range occurrences {
		exists, checkErr := s.meetings.OccurrenceExists(ctx, recurrenceID, occurrence.Start)
		if checkErr != nil {
			err = fmt.Errorf("materialization stopped at %s: %w", occurrence.Start.Format(time.RFC3339), mapMeetingRepoError(checkErr))
			return
		}
		if exists {
			result.Skipped++
			continue
		}

		createdAt := s.now()
		record := persistence.Meeting{
			ID:              s.idGenerator(),
			RecurrenceID:    &recurrenceID,
			Title:           strings.TrimSpace(template.Title),
			Start:           occurrence.Start,
			End:             occurrence.End,
			DurationMinutes: durationMinutes(occurrence.Start, occurrence.End),
			Location:        strings.TrimSpace(template.Location),
			Notes:           template.Notes,
			CreatedAt:       createdAt,
			UpdatedAt:       createdAt,
		}

		if createErr := s.meetings.CreateMeeting(ctx, record); createErr != nil {
			// A concurrent materializer can win the race between the
			// existence check and the insert; the unique occurrence index
			// reports that as a duplicate, which simply means the date is
			// already covered.
			if errors.Is(createErr, persistence.ErrDuplicate) {
				result.Skipped++
				continue
			}
			err = fmt.Errorf("materialization stopped at %s: %w", occurrence.Start.Format(time.RFC3339), mapMeetingRepoError(createErr))
			return
		}

		if attErr := s.registerAttendees(ctx, record.ID, params.Principal, template.AttendeeIDs, createdAt); attErr != nil {
			err = fmt.Errorf("materialization stopped at %s: %w", occurrence.Start.Format(time.RFC3339), attErr)
			return
		}

		meeting := toMeeting(record)
		result.Created = append(result.Created, meeting)
		s.publish(ctx, logger, notify.EventMeetingCreated, meetingEventPayload(meeting))
	}

	return
}

// Complete marks a meeting completed and rolls its unfinished tasks forward to
// the next occurrence of the same recurrence. The storage layer performs the
// completion as a compare-and-set, so exactly one of two concurrent calls
// succeeds; the other observes ErrAlreadyCompleted.
func (s *MeetingService) Complete(ctx context.Context, principal Principal, meetingID string) (result CompleteResult, err error) {
	if s == nil {
		err = fmt.Errorf("MeetingService is nil")
		return
	}
	if s.meetings == nil || s.tasks == nil {
		err = fmt.Errorf("meeting repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Complete",
		"principal_id", principal.UserID,
		"meeting_id", meetingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to complete meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "meeting completed", "rolled_tasks", result.RolledTasks)
	}()

	existing, err := s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	completedAt := s.now()
	if err = s.meetings.MarkCompleted(ctx, meetingID, completedAt); err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	existing.Completed = true
	existing.CompletedAt = &completedAt
	existing.UpdatedAt = completedAt
	result.Meeting = toMeeting(existing)

	successor, found, err := s.findSuccessor(ctx, existing)
	if err != nil {
		return
	}
	if found {
		successorMeeting := toMeeting(successor)
		result.Successor = &successorMeeting

		var moved int
		moved, err = s.rolloverTasks(ctx, meetingID, successor.ID, completedAt)
		if err != nil {
			return
		}
		result.RolledTasks = moved
	}

	s.publish(ctx, logger, notify.EventMeetingCompleted, meetingEventPayload(result.Meeting))
	if result.RolledTasks > 0 && result.Successor != nil {
		s.publish(ctx, logger, notify.EventTasksRolledOver, map[string]any{
			"from_meeting_id": meetingID,
			"to_meeting_id":   result.Successor.ID,
			"task_count":      result.RolledTasks,
		})
	}
	return
}

// NextMeeting resolves the meeting that follows the given one. For a
// recurrence member it is the earliest later occurrence of the same
// recurrence; for a standalone meeting it is the earliest meeting starting
// after this one ends.
func (s *MeetingService) NextMeeting(ctx context.Context, meetingID string) (Meeting, error) {
	if s == nil || s.meetings == nil {
		return Meeting{}, fmt.Errorf("meeting repository not configured")
	}

	existing, err := s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return Meeting{}, mapMeetingRepoError(err)
	}

	filter := persistence.MeetingFilter{Limit: 1}
	if existing.RecurrenceID != nil {
		filter.RecurrenceID = existing.RecurrenceID
		start := existing.Start
		filter.StartsAfter = &start
	} else {
		end := existing.End
		filter.StartsAfter = &end
	}

	candidates, err := s.meetings.ListMeetings(ctx, filter)
	if err != nil {
		return Meeting{}, mapMeetingRepoError(err)
	}
	if len(candidates) == 0 {
		return Meeting{}, ErrNoUpcomingMeeting
	}
	return toMeeting(candidates[0]), nil
}

// findSuccessor locates the next incomplete occurrence of the meeting's
// recurrence, if any.
func (s *MeetingService) findSuccessor(ctx context.Context, meeting persistence.Meeting) (persistence.Meeting, bool, error) {
	if meeting.RecurrenceID == nil {
		return persistence.Meeting{}, false, nil
	}

	start := meeting.Start
	completed := false
	candidates, err := s.meetings.ListMeetings(ctx, persistence.MeetingFilter{
		RecurrenceID: meeting.RecurrenceID,
		StartsAfter:  &start,
		Completed:    &completed,
		Limit:        1,
	})
	if err != nil {
		return persistence.Meeting{}, false, mapMeetingRepoError(err)
	}
	if len(candidates) == 0 {
		return persistence.Meeting{}, false, nil
	}
	return candidates[0], true, nil
}

// rolloverTasks re-points every incomplete task of the completed meeting to
// its successor. The move is a single storage transaction: all listed tasks
// move or none do. Completed tasks stay on the historical meeting.
func (s *MeetingService) rolloverTasks(ctx context.Context, fromMeetingID, toMeetingID string, at time.Time) (int, error) {
	attached, err := s.tasks.ListTasksForMeeting(ctx, fromMeetingID)
	if err != nil {
		return 0, mapMeetingRepoError(err)
	}

	taskIDs := make([]string, 0, len(attached))
	for _, task := range attached {
		if task.Completed {
			continue
		}
		taskIDs = append(taskIDs, task.ID)
	}
	if len(taskIDs) == 0 {
		return 0, nil
	}

	if err := s.tasks.MoveTaskAssociations(ctx, fromMeetingID, toMeetingID, taskIDs, at); err != nil {
		return 0, mapMeetingRepoError(err)
	}
	return len(taskIDs), nil
}

// warnDoubleBookings flags attendees who already have an overlapping meeting
// on their calendar. Double-booking is allowed, so conflicts only produce a
// warning log and never fail the operation.
func (s *MeetingService) warnDoubleBookings(ctx context.Context, logger *slog.Logger, candidate persistence.Meeting, principal Principal, attendeeIDs []string) {
	ids := uniqueStrings(append([]string{principal.UserID}, attendeeIDs...))
	if len(ids) == 0 {
		return
	}

	var existing []conflict.Booking
	for _, userID := range ids {
		meetings, err := s.meetings.ListMeetingsForUser(ctx, userID)
		if err != nil {
			logger.WarnContext(ctx, "double-booking check skipped", "user_id", userID, "error", err)
			return
		}
		for _, meeting := range meetings {
			if meeting.Completed {
				continue
			}
			existing = append(existing, conflict.Booking{
				MeetingID:   meeting.ID,
				AttendeeIDs: []string{userID},
				Start:       meeting.Start,
				End:         meeting.End,
			})
		}
	}

	conflicts := conflict.Detect(existing, conflict.Booking{
		MeetingID:   candidate.ID,
		AttendeeIDs: ids,
		Start:       candidate.Start,
		End:         candidate.End,
	})
	for _, c := range conflicts {
		logger.WarnContext(ctx, "attendee double-booked",
			"user_id", c.UserID, "overlapping_meeting_id", c.MeetingID)
	}
}

func (s *MeetingService) ensureAttendeesExist(ctx context.Context, ids []string) error {
	if s.users == nil {
		return nil
	}
	ids = uniqueStrings(ids)
	if len(ids) == 0 {
		return nil
	}
	missing, err := s.users.MissingUserIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("attendees", fmt.Sprintf("unknown user ids: %s", strings.Join(missing, ", ")))
	return vErr
}

// registerAttendees records the requested attendees plus the acting principal
// as the scheduler.
func (s *MeetingService) registerAttendees(ctx context.Context, meetingID string, principal Principal, attendeeIDs []string, at time.Time) error {
	attendees := make([]persistence.Attendee, 0, len(attendeeIDs)+1)
	if principal.UserID != "" {
		attendees = append(attendees, persistence.Attendee{
			MeetingID:   meetingID,
			UserID:      principal.UserID,
			IsScheduler: true,
			CreatedAt:   at,
		})
	}
	for _, id := range uniqueStrings(attendeeIDs) {
		if id == principal.UserID {
			continue
		}
		attendees = append(attendees, persistence.Attendee{
			MeetingID: meetingID,
			UserID:    id,
			CreatedAt: at,
		})
	}
	if len(attendees) == 0 {
		return nil
	}
	if err := s.meetings.AddAttendees(ctx, meetingID, attendees); err != nil {
		return mapMeetingRepoError(err)
	}
	return nil
}

// publish sends a notification without affecting the operation outcome.
func (s *MeetingService) publish(ctx context.Context, logger *slog.Logger, event string, payload any) {
	if err := s.notifier.Publish(ctx, event, payload); err != nil {
		logger.WarnContext(ctx, "notification publish failed", "event", event, "error", err)
	}
}

// defaultMaterializeCap bounds expansion of open-ended rules when the caller
// does not supply a cap.
const defaultMaterializeCap = 52

func meetingEventPayload(meeting Meeting) map[string]any {
	payload := map[string]any{
		"meeting_id": meeting.ID,
		"title":      meeting.Title,
		"start":      meeting.Start.UTC().Format(time.RFC3339),
		"end":        meeting.End.UTC().Format(time.RFC3339),
	}
	if meeting.RecurrenceID != nil {
		payload["recurrence_id"] = *meeting.RecurrenceID
	}
	return payload
}

func validateMeetingCore(input MeetingInput, vErr *ValidationError) {
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}

	if input.Start.IsZero() {
		vErr.add("start", "start is required")
	}
	if input.End.IsZero() {
		vErr.add("end", "end is required")
	}
	if !input.Start.IsZero() && !input.End.IsZero() && !input.Start.Before(input.End) {
		vErr.add("time", "start must be before end")
	}
}

func toEngineRule(rule persistence.RecurrenceRule) (recurrence.Rule, error) {
	frequency, err := recurrence.ParseFrequency(rule.Frequency)
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("unsupported frequency %q", rule.Frequency)
	}
	return recurrence.Rule{
		ID:        rule.ID,
		Title:     rule.Title,
		Frequency: frequency,
		Interval:  rule.Interval,
		Weekday:   rule.Weekday,
		MonthWeek: rule.MonthWeek,
		EndsOn:    rule.EndsOn,
		EndAfter:  rule.EndAfter,
	}, nil
}

func durationMinutes(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}

func toMeeting(record persistence.Meeting) Meeting {
	return Meeting{
		ID:              record.ID,
		RecurrenceID:    record.RecurrenceID,
		Title:           record.Title,
		Start:           record.Start,
		End:             record.End,
		DurationMinutes: record.DurationMinutes,
		Location:        record.Location,
		Notes:           record.Notes,
		NumReschedules:  record.NumReschedules,
		ReminderSent:    record.ReminderSent,
		Completed:       record.Completed,
		CompletedAt:     record.CompletedAt,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}

func toMeetings(records []persistence.Meeting) []Meeting {
	meetings := make([]Meeting, 0, len(records))
	for _, record := range records {
		meetings = append(meetings, toMeeting(record))
	}
	return meetings
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}

func mapMeetingRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConflict):
		return ErrAlreadyCompleted
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add("time", "start must be before end")
		return vErr
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		vErr := &ValidationError{}
		vErr.add("references", "related records are missing")
		return vErr
	}
	return err
}
