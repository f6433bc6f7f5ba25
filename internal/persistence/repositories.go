package persistence

import "context"
import "time"

// UserRepository exposes directory operations for attendee identities.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
	MissingUserIDs(ctx context.Context, ids []string) ([]string, error)
}

// MeetingFilter narrows meeting queries. Results are always ordered by start
// time ascending with the record ID as tie breaker, which is what gives the
// next-occurrence resolution its deterministic ordering.
type MeetingFilter struct {
	RecurrenceID *string
	StartsAfter  *time.Time
	Completed    *bool
	Skip         int
	Limit        int
}

// MeetingRepository stores meetings and their attendee associations.
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, meeting Meeting) error
	GetMeeting(ctx context.Context, id string) (Meeting, error)
	UpdateMeeting(ctx context.Context, meeting Meeting) error
	DeleteMeeting(ctx context.Context, id string) error
	ListMeetings(ctx context.Context, filter MeetingFilter) ([]Meeting, error)
	ListMeetingsForUser(ctx context.Context, userID string) ([]Meeting, error)

	// OccurrenceExists reports whether a meeting for the recurrence already
	// starts at the given instant. Used by batch materialization to stay
	// idempotent; the schema additionally enforces UNIQUE(recurrence_id,
	// start_time) so a racing insert surfaces as ErrDuplicate.
	OccurrenceExists(ctx context.Context, recurrenceID string, start time.Time) (bool, error)

	// MarkCompleted flips the completed flag with compare-and-set semantics:
	// ErrNotFound when the meeting does not exist, ErrConflict when it is
	// already completed.
	MarkCompleted(ctx context.Context, id string, at time.Time) error

	// MarkReminderSent flips the reminder flag; ErrConflict when already set.
	MarkReminderSent(ctx context.Context, id string) error

	// ListDueReminders returns incomplete meetings starting within [from, to)
	// whose reminder has not been sent yet, ordered by start time.
	ListDueReminders(ctx context.Context, from, to time.Time) ([]Meeting, error)

	AddAttendees(ctx context.Context, meetingID string, attendees []Attendee) error
	ListAttendees(ctx context.Context, meetingID string) ([]Attendee, error)
}

// TaskFilter narrows task queries.
type TaskFilter struct {
	AssigneeID *string
	Completed  *bool
	Skip       int
	Limit      int
}

// TaskRepository stores tasks and their meeting associations.
type TaskRepository interface {
	CreateTask(ctx context.Context, task Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	UpdateTask(ctx context.Context, task Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)

	AttachTask(ctx context.Context, association MeetingTask) error
	DetachTask(ctx context.Context, meetingID, taskID string) error
	ListTasksForMeeting(ctx context.Context, meetingID string) ([]Task, error)

	// MoveTaskAssociations re-points the given task associations from one
	// meeting to another within a single transaction: either every listed
	// association is moved or none are.
	MoveTaskAssociations(ctx context.Context, fromMeetingID, toMeetingID string, taskIDs []string, at time.Time) error
}

// RecurrenceRepository stores structured recurrence rules.
type RecurrenceRepository interface {
	CreateRecurrence(ctx context.Context, rule RecurrenceRule) error
	GetRecurrence(ctx context.Context, id string) (RecurrenceRule, error)
	UpdateRecurrence(ctx context.Context, rule RecurrenceRule) error
	DeleteRecurrence(ctx context.Context, id string) error
	ListRecurrences(ctx context.Context) ([]RecurrenceRule, error)

	// CountMeetingsForRecurrence backs the referenced-rule guards: a
	// referenced rule cannot be deleted and only its end condition may change.
	CountMeetingsForRecurrence(ctx context.Context, id string) (int, error)
}
