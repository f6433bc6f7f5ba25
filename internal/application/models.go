package application

import "time"

// Principal identifies the user invoking a service method. Identity is
// delegated to the edge; services treat it as trusted metadata.
type Principal struct {
	UserID string
	Email  string
}

// RecurrenceInput captures caller provided recurrence rule fields.
type RecurrenceInput struct {
	Title     string
	Frequency string
	Interval  int
	Weekday   *time.Weekday
	MonthWeek *int
	EndsOn    *time.Time
	EndAfter  int
}

// Recurrence represents a persisted recurrence rule.
type Recurrence struct {
	ID        string
	Title     string
	Frequency string
	Interval  int
	Weekday   *time.Weekday
	MonthWeek *int
	EndsOn    *time.Time
	EndAfter  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateRecurrenceParams wraps the data required to create a recurrence rule.
type CreateRecurrenceParams struct {
	Principal Principal
	Input     RecurrenceInput
}

// UpdateRecurrenceParams wraps the data required to update a recurrence rule.
type UpdateRecurrenceParams struct {
	Principal    Principal
	RecurrenceID string
	Input        RecurrenceInput
}

// ImportRecurrenceParams wraps a legacy RRULE string to convert and persist.
type ImportRecurrenceParams struct {
	Principal Principal
	Title     string
	RRule     string
	DTStart   time.Time
}

// MeetingInput captures caller provided meeting fields.
type MeetingInput struct {
	Title       string
	Start       time.Time
	End         time.Time
	Location    string
	Notes       string
	AttendeeIDs []string
}

// Meeting represents a persisted meeting occurrence.
type Meeting struct {
	ID              string
	RecurrenceID    *string
	Title           string
	Start           time.Time
	End             time.Time
	DurationMinutes int
	Location        string
	Notes           string
	NumReschedules  int
	ReminderSent    bool
	Completed       bool
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Attendee links a user to a meeting.
type Attendee struct {
	MeetingID   string
	UserID      string
	IsScheduler bool
}

// CreateMeetingParams wraps the data required to create a standalone meeting.
type CreateMeetingParams struct {
	Principal Principal
	Input     MeetingInput
}

// UpdateMeetingParams wraps the data required to update an existing meeting.
type UpdateMeetingParams struct {
	Principal Principal
	MeetingID string
	Input     MeetingInput
}

// CreateRecurringParams wraps the data required to materialize a recurring series.
type CreateRecurringParams struct {
	Principal    Principal
	RecurrenceID string
	Template     MeetingInput
	MaxCount     int
}

// CreateRecurringResult reports the outcome of a batch materialization.
type CreateRecurringResult struct {
	Created []Meeting
	Skipped int
}

// CompleteResult reports the outcome of completing a meeting.
type CompleteResult struct {
	Meeting     Meeting
	Successor   *Meeting
	RolledTasks int
}

// ListMeetingsParams wraps filters for meeting listings.
type ListMeetingsParams struct {
	Principal    Principal
	RecurrenceID *string
	StartsAfter  *time.Time
	Completed    *bool
	Skip         int
	Limit        int
}

// AddAttendeesParams wraps the data required to register meeting attendees.
type AddAttendeesParams struct {
	Principal Principal
	MeetingID string
	UserIDs   []string
}

// TaskInput captures caller provided task fields.
type TaskInput struct {
	AssigneeID  *string
	Title       string
	Description string
	DueDate     *time.Time
}

// Task represents a persisted action item.
type Task struct {
	ID          string
	AssigneeID  *string
	Title       string
	Description string
	DueDate     *time.Time
	Completed   bool
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateTaskParams wraps the data required to create a task.
type CreateTaskParams struct {
	Principal Principal
	Input     TaskInput
	MeetingID *string
}

// UpdateTaskParams wraps the data required to update a task.
type UpdateTaskParams struct {
	Principal Principal
	TaskID    string
	Input     TaskInput
}

// ListTasksParams wraps filters for task listings.
type ListTasksParams struct {
	Principal  Principal
	AssigneeID *string
	Completed  *bool
	Skip       int
	Limit      int
}

// UserInput captures caller provided directory attributes.
type UserInput struct {
	Email       string
	DisplayName string
}

// User represents a directory entry used for attendee identity.
type User struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateUserParams wraps the data required to register a directory user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}
