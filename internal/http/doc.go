// Package http provides HTTP handlers and middleware for the meeting API.
//
// The router exposes the following endpoints:
//   - GET /meetings, POST /meetings: meeting listing and creation exchanging
//     the `meetingDTO` payload defined in meeting_handler.go.
//   - POST /meetings/recurring: materializes a meeting series from a stored
//     recurrence rule and a template meeting. Replaying the request skips
//     dates that already exist.
//   - GET /meetings/{id}, PUT /meetings/{id}, DELETE /meetings/{id}: single
//     meeting operations.
//   - POST /meetings/{id}/complete: marks the meeting completed and rolls its
//     unfinished tasks to the next occurrence. A second call returns 409.
//   - GET /meetings/{id}/next: resolves the meeting that follows this one.
//   - GET /meetings/{id}/attendees, POST /meetings/{id}/attendees: attendee
//     listing and registration.
//   - GET /meetings/{id}/tasks: tasks attached to a meeting.
//   - GET /tasks, POST /tasks, GET/PUT/DELETE /tasks/{id},
//     POST /tasks/{id}/complete: task management.
//   - GET /recurrences, POST /recurrences, POST /recurrences/import,
//     GET/PUT/DELETE /recurrences/{id}: recurrence rule management. The
//     import endpoint converts a legacy RRULE string into the structured form.
//   - GET /users, POST /users, GET/DELETE /users/{id},
//     GET /users/{id}/meetings: attendee directory.
//
// Identity is delegated: RequireIdentity reads the caller from the X-User-ID
// and X-User-Email headers. There is no credential handling in this service.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
