package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/meeting-service/internal/application"
	"github.com/example/meeting-service/internal/persistence"
)

var (
	userCounter       uint64
	meetingCounter    uint64
	taskCounter       uint64
	recurrenceCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic directory record that can be
// materialised for application or persistence tests.
type UserFixture struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:          id,
		Email:       fmt.Sprintf("%s@example.com", id),
		DisplayName: fmt.Sprintf("User %03d", idx),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserDisplayName overrides the generated display name.
func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, Email: f.Email}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input returns the fixture as an application.UserInput.
func (f UserFixture) Input() application.UserInput {
	return application.UserInput{
		Email:       f.Email,
		DisplayName: f.DisplayName,
	}
}

// ---------------------------- Meeting fixtures ---------------------------

// MeetingFixture represents a deterministic meeting record.
type MeetingFixture struct {
	ID             string
	RecurrenceID   *string
	Title          string
	Start          time.Time
	End            time.Time
	Location       string
	Notes          string
	NumReschedules int
	ReminderSent   bool
	Completed      bool
	CompletedAt    *time.Time
	AttendeeIDs    []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MeetingOption configures the generated meeting fixture.
type MeetingOption func(*MeetingFixture)

// NewMeetingFixture returns a deterministic meeting fixture with optional
// overrides. Each fixture starts one hour after the previous one.
func NewMeetingFixture(opts ...MeetingOption) MeetingFixture {
	idx := atomic.AddUint64(&meetingCounter, 1)
	id := fmt.Sprintf("meeting-%03d", idx)
	start := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := MeetingFixture{
		ID:        id,
		Title:     fmt.Sprintf("Meeting %03d", idx),
		Start:     start,
		End:       start.Add(time.Hour),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithMeetingID overrides the meeting ID.
func WithMeetingID(id string) MeetingOption {
	return func(f *MeetingFixture) {
		f.ID = id
	}
}

// WithMeetingRecurrenceID attaches the meeting to a recurrence rule.
func WithMeetingRecurrenceID(id string) MeetingOption {
	return func(f *MeetingFixture) {
		value := id
		f.RecurrenceID = &value
	}
}

// WithMeetingTitle overrides the title.
func WithMeetingTitle(title string) MeetingOption {
	return func(f *MeetingFixture) {
		f.Title = title
	}
}

// WithMeetingStartEnd sets the start and end times.
func WithMeetingStartEnd(start, end time.Time) MeetingOption {
	return func(f *MeetingFixture) {
		f.Start = start
		f.End = end
	}
}

// WithMeetingLocation sets the location.
func WithMeetingLocation(location string) MeetingOption {
	return func(f *MeetingFixture) {
		f.Location = location
	}
}

// WithMeetingNotes sets the notes field.
func WithMeetingNotes(notes string) MeetingOption {
	return func(f *MeetingFixture) {
		f.Notes = notes
	}
}

// WithMeetingAttendees sets the attendee user IDs.
func WithMeetingAttendees(userIDs ...string) MeetingOption {
	return func(f *MeetingFixture) {
		f.AttendeeIDs = append([]string(nil), userIDs...)
	}
}

// WithMeetingCompleted marks the fixture completed at the given instant.
func WithMeetingCompleted(at time.Time) MeetingOption {
	return func(f *MeetingFixture) {
		completedAt := at
		f.Completed = true
		f.CompletedAt = &completedAt
	}
}

// WithMeetingReminderSent sets the reminder flag.
func WithMeetingReminderSent(sent bool) MeetingOption {
	return func(f *MeetingFixture) {
		f.ReminderSent = sent
	}
}

// WithMeetingTimestamps sets both created and updated timestamps.
func WithMeetingTimestamps(created, updated time.Time) MeetingOption {
	return func(f *MeetingFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Meeting value.
func (f MeetingFixture) Application() application.Meeting {
	return application.Meeting{
		ID:              f.ID,
		RecurrenceID:    copyStringPtr(f.RecurrenceID),
		Title:           f.Title,
		Start:           f.Start,
		End:             f.End,
		DurationMinutes: int(f.End.Sub(f.Start) / time.Minute),
		Location:        f.Location,
		Notes:           f.Notes,
		NumReschedules:  f.NumReschedules,
		ReminderSent:    f.ReminderSent,
		Completed:       f.Completed,
		CompletedAt:     copyTimePtr(f.CompletedAt),
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Meeting value.
func (f MeetingFixture) Persistence() persistence.Meeting {
	return persistence.Meeting{
		ID:              f.ID,
		RecurrenceID:    copyStringPtr(f.RecurrenceID),
		Title:           f.Title,
		Start:           f.Start,
		End:             f.End,
		DurationMinutes: int(f.End.Sub(f.Start) / time.Minute),
		Location:        f.Location,
		Notes:           f.Notes,
		NumReschedules:  f.NumReschedules,
		ReminderSent:    f.ReminderSent,
		Completed:       f.Completed,
		CompletedAt:     copyTimePtr(f.CompletedAt),
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// Input returns the fixture as an application.MeetingInput.
func (f MeetingFixture) Input() application.MeetingInput {
	return application.MeetingInput{
		Title:       f.Title,
		Start:       f.Start,
		End:         f.End,
		Location:    f.Location,
		Notes:       f.Notes,
		AttendeeIDs: append([]string(nil), f.AttendeeIDs...),
	}
}

// ------------------------------ Task fixtures ----------------------------

// TaskFixture represents a deterministic action item record.
type TaskFixture struct {
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

// TaskOption configures the generated task fixture.
type TaskOption func(*TaskFixture)

// NewTaskFixture returns a deterministic task fixture with optional overrides.
func NewTaskFixture(opts ...TaskOption) TaskFixture {
	idx := atomic.AddUint64(&taskCounter, 1)
	id := fmt.Sprintf("task-%03d", idx)
	fixture := TaskFixture{
		ID:        id,
		Title:     fmt.Sprintf("Task %03d", idx),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTaskID overrides the task ID.
func WithTaskID(id string) TaskOption {
	return func(f *TaskFixture) {
		f.ID = id
	}
}

// WithTaskAssignee sets the assignee user ID.
func WithTaskAssignee(userID string) TaskOption {
	return func(f *TaskFixture) {
		value := userID
		f.AssigneeID = &value
	}
}

// WithTaskTitle overrides the title.
func WithTaskTitle(title string) TaskOption {
	return func(f *TaskFixture) {
		f.Title = title
	}
}

// WithTaskDescription sets the description.
func WithTaskDescription(description string) TaskOption {
	return func(f *TaskFixture) {
		f.Description = description
	}
}

// WithTaskDueDate sets the optional due date.
func WithTaskDueDate(t time.Time) TaskOption {
	return func(f *TaskFixture) {
		due := t
		f.DueDate = &due
	}
}

// WithTaskCompleted marks the fixture completed at the given instant.
func WithTaskCompleted(at time.Time) TaskOption {
	return func(f *TaskFixture) {
		completedAt := at
		f.Completed = true
		f.CompletedAt = &completedAt
	}
}

// WithTaskTimestamps sets both created and updated timestamps.
func WithTaskTimestamps(created, updated time.Time) TaskOption {
	return func(f *TaskFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Task value.
func (f TaskFixture) Application() application.Task {
	return application.Task{
		ID:          f.ID,
		AssigneeID:  copyStringPtr(f.AssigneeID),
		Title:       f.Title,
		Description: f.Description,
		DueDate:     copyTimePtr(f.DueDate),
		Completed:   f.Completed,
		CompletedAt: copyTimePtr(f.CompletedAt),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Task value.
func (f TaskFixture) Persistence() persistence.Task {
	return persistence.Task{
		ID:          f.ID,
		AssigneeID:  copyStringPtr(f.AssigneeID),
		Title:       f.Title,
		Description: f.Description,
		DueDate:     copyTimePtr(f.DueDate),
		Completed:   f.Completed,
		CompletedAt: copyTimePtr(f.CompletedAt),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input returns the fixture as an application.TaskInput.
func (f TaskFixture) Input() application.TaskInput {
	return application.TaskInput{
		AssigneeID:  copyStringPtr(f.AssigneeID),
		Title:       f.Title,
		Description: f.Description,
		DueDate:     copyTimePtr(f.DueDate),
	}
}

// --------------------------- Recurrence fixtures -------------------------

// RecurrenceFixture represents a deterministic recurrence rule.
type RecurrenceFixture struct {
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

// RecurrenceOption configures the generated recurrence fixture.
type RecurrenceOption func(*RecurrenceFixture)

// NewRecurrenceFixture returns a deterministic weekly recurrence fixture with
// optional overrides.
func NewRecurrenceFixture(opts ...RecurrenceOption) RecurrenceFixture {
	idx := atomic.AddUint64(&recurrenceCounter, 1)
	id := fmt.Sprintf("recurrence-%03d", idx)
	weekday := time.Monday
	fixture := RecurrenceFixture{
		ID:        id,
		Title:     fmt.Sprintf("Recurrence %03d", idx),
		Frequency: "weekly",
		Interval:  1,
		Weekday:   &weekday,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRecurrenceID overrides the recurrence ID.
func WithRecurrenceID(id string) RecurrenceOption {
	return func(f *RecurrenceFixture) {
		f.ID = id
	}
}

// WithRecurrenceTitle overrides the title.
func WithRecurrenceTitle(title string) RecurrenceOption {
	return func(f *RecurrenceFixture) {
		f.Title = title
	}
}

// WithRecurrenceFrequency sets the frequency and interval.
func WithRecurrenceFrequency(frequency string, interval int) RecurrenceOption {
	return func(f *RecurrenceFixture) {
		f.Frequency = frequency
		f.Interval = interval
	}
}

// WithRecurrenceWeekday sets the weekday anchor.
func WithRecurrenceWeekday(day time.Weekday) RecurrenceOption {
	return func(f *RecurrenceFixture) {
		value := day
		f.Weekday = &value
	}
}

// WithRecurrenceMonthWeek sets the ordinal week anchor for monthly rules.
func WithRecurrenceMonthWeek(week int) RecurrenceOption {
	return func(f *RecurrenceFixture) {
		value := week
		f.MonthWeek = &value
	}
}

// WithRecurrenceEndsOn sets the optional end date.
func WithRecurrenceEndsOn(t time.Time) RecurrenceOption {
	return func(f *RecurrenceFixture) {
		end := t
		f.EndsOn = &end
	}
}

// WithRecurrenceEndAfter sets the occurrence count bound.
func WithRecurrenceEndAfter(count int) RecurrenceOption {
	return func(f *RecurrenceFixture) {
		f.EndAfter = count
	}
}

// WithRecurrenceTimestamps sets both created and updated timestamps.
func WithRecurrenceTimestamps(created, updated time.Time) RecurrenceOption {
	return func(f *RecurrenceFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Recurrence value.
func (f RecurrenceFixture) Application() application.Recurrence {
	return application.Recurrence{
		ID:        f.ID,
		Title:     f.Title,
		Frequency: f.Frequency,
		Interval:  f.Interval,
		Weekday:   copyWeekdayPtr(f.Weekday),
		MonthWeek: copyIntPtr(f.MonthWeek),
		EndsOn:    copyTimePtr(f.EndsOn),
		EndAfter:  f.EndAfter,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.RecurrenceRule value.
func (f RecurrenceFixture) Persistence() persistence.RecurrenceRule {
	return persistence.RecurrenceRule{
		ID:        f.ID,
		Title:     f.Title,
		Frequency: f.Frequency,
		Interval:  f.Interval,
		Weekday:   copyWeekdayPtr(f.Weekday),
		MonthWeek: copyIntPtr(f.MonthWeek),
		EndsOn:    copyTimePtr(f.EndsOn),
		EndAfter:  f.EndAfter,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.RecurrenceInput.
func (f RecurrenceFixture) Input() application.RecurrenceInput {
	return application.RecurrenceInput{
		Title:     f.Title,
		Frequency: f.Frequency,
		Interval:  f.Interval,
		Weekday:   copyWeekdayPtr(f.Weekday),
		MonthWeek: copyIntPtr(f.MonthWeek),
		EndsOn:    copyTimePtr(f.EndsOn),
		EndAfter:  f.EndAfter,
	}
}

// helpers to deep copy optional fields.

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copyTimePtr(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copyIntPtr(src *int) *int {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copyWeekdayPtr(src *time.Weekday) *time.Weekday {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
