package persistence

import "time"

// User represents an attendee identity known to the meeting service. Identity
// issuance lives in a separate service; this record is a directory entry only.
type User struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecurrenceRule represents a structured recurrence configuration stored for a
// meeting series.
type RecurrenceRule struct {
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

// Meeting represents a calendar entry stored in persistence. RecurrenceID is
// nil for standalone meetings. DurationMinutes is redundant with Start/End and
// kept in sync by the application layer.
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

// Task represents an action item. Tasks outlive individual meetings; a meeting
// deletion removes only the association rows, never the task.
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

// MeetingTask links a task to a meeting. The association has its own identity
// and timestamp because rollover rewrites individual rows.
type MeetingTask struct {
	ID        string
	MeetingID string
	TaskID    string
	CreatedAt time.Time
}

// Attendee links a user identity to a meeting. At most one attendee per
// meeting carries the scheduler flag.
type Attendee struct {
	MeetingID   string
	UserID      string
	IsScheduler bool
	CreatedAt   time.Time
}
