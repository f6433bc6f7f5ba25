package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/meeting-service/internal/persistence"
)

const meetingColumns = `id, recurrence_id, title, start_time, end_time, duration_minutes,
	location, notes, num_reschedules, reminder_sent, completed, completed_at, created_at, updated_at`

// MeetingRepository implements persistence.MeetingRepository using SQLite.
type MeetingRepository struct {
	pool *ConnectionPool
}

// NewMeetingRepository creates a new SQLite meeting repository.
func NewMeetingRepository(pool *ConnectionPool) *MeetingRepository {
	return &MeetingRepository{pool: pool}
}

// CreateMeeting inserts a new meeting.
func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	if meeting.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if !meeting.End.After(meeting.Start) {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if meeting.CreatedAt.IsZero() {
		meeting.CreatedAt = now
	}
	meeting.UpdatedAt = now

	query := `
		INSERT INTO meetings (` + meetingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.pool.db.ExecContext(ctx, query,
		meeting.ID,
		nullString(meeting.RecurrenceID),
		meeting.Title,
		formatTime(meeting.Start),
		formatTime(meeting.End),
		meeting.DurationMinutes,
		meeting.Location,
		meeting.Notes,
		meeting.NumReschedules,
		boolToInt(meeting.ReminderSent),
		boolToInt(meeting.Completed),
		nullTime(meeting.CompletedAt),
		formatTime(meeting.CreatedAt),
		formatTime(meeting.UpdatedAt),
	)
	return mapError(err)
}

// GetMeeting retrieves a meeting by ID.
func (r *MeetingRepository) GetMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	if id == "" {
		return persistence.Meeting{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx,
		"SELECT "+meetingColumns+" FROM meetings WHERE id = ?", id)

	meeting, err := scanMeeting(row)
	if err != nil {
		return persistence.Meeting{}, err
	}
	return meeting, nil
}

// UpdateMeeting updates an existing meeting.
func (r *MeetingRepository) UpdateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	if meeting.ID == "" {
		return persistence.ErrNotFound
	}
	if !meeting.End.After(meeting.Start) {
		return persistence.ErrConstraintViolation
	}

	meeting.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE meetings
		SET recurrence_id = ?, title = ?, start_time = ?, end_time = ?, duration_minutes = ?,
			location = ?, notes = ?, num_reschedules = ?, reminder_sent = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.pool.db.ExecContext(ctx, query,
		nullString(meeting.RecurrenceID),
		meeting.Title,
		formatTime(meeting.Start),
		formatTime(meeting.End),
		meeting.DurationMinutes,
		meeting.Location,
		meeting.Notes,
		meeting.NumReschedules,
		boolToInt(meeting.ReminderSent),
		formatTime(meeting.UpdatedAt),
		meeting.ID,
	)
	if err != nil {
		return mapError(err)
	}

	return requireRowAffected(result)
}

// DeleteMeeting removes a meeting. Attendee and task-association rows cascade;
// tasks themselves are untouched.
func (r *MeetingRepository) DeleteMeeting(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM meetings WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

// ListMeetings lists meetings matching the filter, ordered by start time then
// ID ascending.
func (r *MeetingRepository) ListMeetings(ctx context.Context, filter persistence.MeetingFilter) ([]persistence.Meeting, error) {
	query, args := buildMeetingListQuery(filter)

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	return collectMeetings(rows)
}

// ListMeetingsForUser lists meetings the given user attends, ordered by start
// time then ID ascending.
func (r *MeetingRepository) ListMeetingsForUser(ctx context.Context, userID string) ([]persistence.Meeting, error) {
	query := `
		SELECT m.id, m.recurrence_id, m.title, m.start_time, m.end_time, m.duration_minutes,
			m.location, m.notes, m.num_reschedules, m.reminder_sent, m.completed, m.completed_at,
			m.created_at, m.updated_at
		FROM meetings m
		JOIN meeting_attendees a ON a.meeting_id = m.id
		WHERE a.user_id = ?
		ORDER BY m.start_time ASC, m.id ASC
	`

	rows, err := r.pool.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	return collectMeetings(rows)
}

// OccurrenceExists reports whether the recurrence already has a meeting at the
// given start instant.
func (r *MeetingRepository) OccurrenceExists(ctx context.Context, recurrenceID string, start time.Time) (bool, error) {
	var count int
	err := r.pool.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM meetings WHERE recurrence_id = ? AND start_time = ?",
		recurrenceID, formatTime(start),
	).Scan(&count)
	if err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

// MarkCompleted flips the completed flag with compare-and-set semantics so two
// concurrent completions cannot both succeed.
func (r *MeetingRepository) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE meetings SET completed = 1, completed_at = ?, updated_at = ? WHERE id = ? AND completed = 0",
		formatTime(at), formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Distinguish a missing meeting from one that lost the race.
	if _, err := r.GetMeeting(ctx, id); err != nil {
		return err
	}
	return persistence.ErrConflict
}

// MarkReminderSent flips the reminder flag with the same compare-and-set shape
// as MarkCompleted.
func (r *MeetingRepository) MarkReminderSent(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE meetings SET reminder_sent = 1, updated_at = ? WHERE id = ? AND reminder_sent = 0",
		formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	if _, err := r.GetMeeting(ctx, id); err != nil {
		return err
	}
	return persistence.ErrConflict
}

// ListDueReminders returns incomplete meetings starting within [from, to)
// whose reminder flag is still unset.
func (r *MeetingRepository) ListDueReminders(ctx context.Context, from, to time.Time) ([]persistence.Meeting, error) {
	query := "SELECT " + meetingColumns + ` FROM meetings
		WHERE reminder_sent = 0 AND completed = 0 AND start_time >= ? AND start_time < ?
		ORDER BY start_time ASC, id ASC`

	rows, err := r.pool.db.QueryContext(ctx, query, formatTime(from), formatTime(to))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	return collectMeetings(rows)
}

// AddAttendees attaches users to a meeting. Existing rows are left untouched
// so repeated invitations are harmless.
func (r *MeetingRepository) AddAttendees(ctx context.Context, meetingID string, attendees []persistence.Attendee) error {
	if meetingID == "" {
		return persistence.ErrNotFound
	}
	if len(attendees) == 0 {
		return nil
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow("SELECT COUNT(*) FROM meetings WHERE id = ?", meetingID).Scan(&exists); err != nil {
			return mapError(err)
		}
		if exists == 0 {
			return persistence.ErrNotFound
		}

		now := time.Now().UTC()
		for _, attendee := range attendees {
			if strings.TrimSpace(attendee.UserID) == "" {
				continue
			}
			createdAt := attendee.CreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}
			_, err := tx.Exec(`
				INSERT INTO meeting_attendees (meeting_id, user_id, is_scheduler, created_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT (meeting_id, user_id) DO NOTHING
			`, meetingID, attendee.UserID, boolToInt(attendee.IsScheduler), formatTime(createdAt))
			if err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

// ListAttendees returns the attendee rows of a meeting ordered by user ID.
func (r *MeetingRepository) ListAttendees(ctx context.Context, meetingID string) ([]persistence.Attendee, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT meeting_id, user_id, is_scheduler, created_at
		FROM meeting_attendees
		WHERE meeting_id = ?
		ORDER BY user_id ASC
	`, meetingID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var attendees []persistence.Attendee
	for rows.Next() {
		var attendee persistence.Attendee
		var isScheduler int
		var createdAt string
		if err := rows.Scan(&attendee.MeetingID, &attendee.UserID, &isScheduler, &createdAt); err != nil {
			return nil, mapError(err)
		}
		attendee.IsScheduler = isScheduler != 0
		if attendee.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		attendees = append(attendees, attendee)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return attendees, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (persistence.Meeting, error) {
	var meeting persistence.Meeting
	var recurrenceID, completedAt sql.NullString
	var startStr, endStr, createdStr, updatedStr string
	var reminderSent, completed int

	err := row.Scan(
		&meeting.ID,
		&recurrenceID,
		&meeting.Title,
		&startStr,
		&endStr,
		&meeting.DurationMinutes,
		&meeting.Location,
		&meeting.Notes,
		&meeting.NumReschedules,
		&reminderSent,
		&completed,
		&completedAt,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Meeting{}, persistence.ErrNotFound
		}
		return persistence.Meeting{}, mapError(err)
	}

	meeting.RecurrenceID = stringPtr(recurrenceID)
	meeting.ReminderSent = reminderSent != 0
	meeting.Completed = completed != 0

	if meeting.Start, err = parseTime(startStr, "start_time"); err != nil {
		return persistence.Meeting{}, err
	}
	if meeting.End, err = parseTime(endStr, "end_time"); err != nil {
		return persistence.Meeting{}, err
	}
	if meeting.CompletedAt, err = timePtr(completedAt, "completed_at"); err != nil {
		return persistence.Meeting{}, err
	}
	if meeting.CreatedAt, err = parseTime(createdStr, "created_at"); err != nil {
		return persistence.Meeting{}, err
	}
	if meeting.UpdatedAt, err = parseTime(updatedStr, "updated_at"); err != nil {
		return persistence.Meeting{}, err
	}

	return meeting, nil
}

func collectMeetings(rows *sql.Rows) ([]persistence.Meeting, error) {
	var meetings []persistence.Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return meetings, nil
}

func buildMeetingListQuery(filter persistence.MeetingFilter) (string, []any) {
	query := "SELECT " + meetingColumns + " FROM meetings"

	var conditions []string
	var args []any

	if filter.RecurrenceID != nil {
		conditions = append(conditions, "recurrence_id = ?")
		args = append(args, *filter.RecurrenceID)
	}
	if filter.StartsAfter != nil {
		conditions = append(conditions, "start_time > ?")
		args = append(args, formatTime(*filter.StartsAfter))
	}
	if filter.Completed != nil {
		conditions = append(conditions, "completed = ?")
		args = append(args, boolToInt(*filter.Completed))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY start_time ASC, id ASC"

	if filter.Limit > 0 || filter.Skip > 0 {
		limit := filter.Limit
		if limit <= 0 {
			// SQLite requires a LIMIT clause before OFFSET; -1 means unbounded.
			limit = -1
		}
		query += " LIMIT ?"
		args = append(args, limit)
		if filter.Skip > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Skip)
		}
	}

	return query, args
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
