package http

import (
	"context"

	"github.com/example/meeting-service/internal/application"
)

type contextKey string

const (
	principalContextKey    contextKey = "principal"
	meetingIDContextKey    contextKey = "meeting_id"
	taskIDContextKey       contextKey = "task_id"
	recurrenceIDContextKey contextKey = "recurrence_id"
	userIDContextKey       contextKey = "user_id"
)

// ContextWithPrincipal returns a derived context containing the acting principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the acting principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithMeetingID injects the meeting identifier resolved from the request path.
func ContextWithMeetingID(ctx context.Context, meetingID string) context.Context {
	return context.WithValue(ctx, meetingIDContextKey, meetingID)
}

// MeetingIDFromContext extracts a meeting identifier previously associated with the context.
func MeetingIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(meetingIDContextKey).(string)
	return id, ok
}

// ContextWithTaskID injects the task identifier resolved from the request path.
func ContextWithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, taskIDContextKey, taskID)
}

// TaskIDFromContext extracts a task identifier previously associated with the context.
func TaskIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(taskIDContextKey).(string)
	return id, ok
}

// ContextWithRecurrenceID injects the recurrence identifier resolved from the request path.
func ContextWithRecurrenceID(ctx context.Context, recurrenceID string) context.Context {
	return context.WithValue(ctx, recurrenceIDContextKey, recurrenceID)
}

// RecurrenceIDFromContext extracts a recurrence identifier previously associated with the context.
func RecurrenceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(recurrenceIDContextKey).(string)
	return id, ok
}

// ContextWithUserID injects the user identifier resolved from the request path.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext extracts a user identifier previously associated with the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok
}
