// Package notify publishes domain events emitted by the meeting service.
//
// Delivery is fire-and-forget with at-least-once semantics: publishers never
// block an operation on subscriber acknowledgement, and callers treat publish
// failures as log-worthy rather than fatal.
package notify

import "context"

// Event names emitted by the application services.
const (
	EventMeetingCreated   = "meeting.created"
	EventMeetingCompleted = "meeting.completed"
	EventMeetingReminder  = "meeting.reminder"
	EventTasksRolledOver  = "tasks.rolled_over"
)

// Notifier publishes a named event with a JSON-serializable payload.
type Notifier interface {
	Publish(ctx context.Context, event string, payload any) error
}

// NopNotifier discards every event. Used when no broker is configured and in
// tests that do not inspect notifications.
type NopNotifier struct{}

// Publish implements Notifier.
func (NopNotifier) Publish(context.Context, string, any) error {
	return nil
}
