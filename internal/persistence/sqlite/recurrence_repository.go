package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/meeting-service/internal/persistence"
)

const recurrenceColumns = `id, title, frequency, interval_value, week_day, month_week, ends_on, end_after, created_at, updated_at`

// RecurrenceRepository implements persistence.RecurrenceRepository using SQLite.
type RecurrenceRepository struct {
	pool *ConnectionPool
}

// NewRecurrenceRepository creates a new SQLite recurrence repository.
func NewRecurrenceRepository(pool *ConnectionPool) *RecurrenceRepository {
	return &RecurrenceRepository{pool: pool}
}

// CreateRecurrence inserts a new recurrence rule.
func (r *RecurrenceRepository) CreateRecurrence(ctx context.Context, rule persistence.RecurrenceRule) error {
	if rule.ID == "" || rule.Frequency == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO recurrences (`+recurrenceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rule.ID,
		rule.Title,
		rule.Frequency,
		rule.Interval,
		nullWeekday(rule.Weekday),
		nullInt(rule.MonthWeek),
		nullTime(rule.EndsOn),
		rule.EndAfter,
		formatTime(rule.CreatedAt),
		formatTime(rule.UpdatedAt),
	)
	return mapError(err)
}

// GetRecurrence retrieves a recurrence rule by ID.
func (r *RecurrenceRepository) GetRecurrence(ctx context.Context, id string) (persistence.RecurrenceRule, error) {
	if id == "" {
		return persistence.RecurrenceRule{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx,
		"SELECT "+recurrenceColumns+" FROM recurrences WHERE id = ?", id)
	return scanRecurrence(row)
}

// UpdateRecurrence updates an existing rule. Immutability of referenced rules
// is an application-level decision; the repository stores what it is given.
func (r *RecurrenceRepository) UpdateRecurrence(ctx context.Context, rule persistence.RecurrenceRule) error {
	if rule.ID == "" {
		return persistence.ErrNotFound
	}

	rule.UpdatedAt = time.Now().UTC()

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE recurrences
		SET title = ?, frequency = ?, interval_value = ?, week_day = ?, month_week = ?,
			ends_on = ?, end_after = ?, updated_at = ?
		WHERE id = ?
	`,
		rule.Title,
		rule.Frequency,
		rule.Interval,
		nullWeekday(rule.Weekday),
		nullInt(rule.MonthWeek),
		nullTime(rule.EndsOn),
		rule.EndAfter,
		formatTime(rule.UpdatedAt),
		rule.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

// DeleteRecurrence removes a rule. Meetings referencing the rule make the
// delete fail with a foreign key violation.
func (r *RecurrenceRepository) DeleteRecurrence(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM recurrences WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

// ListRecurrences returns all rules ordered by creation time then ID.
func (r *RecurrenceRepository) ListRecurrences(ctx context.Context) ([]persistence.RecurrenceRule, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT "+recurrenceColumns+" FROM recurrences ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rules []persistence.RecurrenceRule
	for rows.Next() {
		rule, err := scanRecurrence(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return rules, nil
}

// CountMeetingsForRecurrence returns the number of meetings referencing a rule.
func (r *RecurrenceRepository) CountMeetingsForRecurrence(ctx context.Context, id string) (int, error) {
	var count int
	err := r.pool.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM meetings WHERE recurrence_id = ?", id,
	).Scan(&count)
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

func nullWeekday(day *time.Weekday) sql.NullInt64 {
	if day == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*day), Valid: true}
}

func scanRecurrence(row rowScanner) (persistence.RecurrenceRule, error) {
	var rule persistence.RecurrenceRule
	var weekday, monthWeek sql.NullInt64
	var endsOn sql.NullString
	var createdStr, updatedStr string

	err := row.Scan(
		&rule.ID,
		&rule.Title,
		&rule.Frequency,
		&rule.Interval,
		&weekday,
		&monthWeek,
		&endsOn,
		&rule.EndAfter,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.RecurrenceRule{}, persistence.ErrNotFound
		}
		return persistence.RecurrenceRule{}, mapError(err)
	}

	if weekday.Valid {
		day := time.Weekday(weekday.Int64)
		rule.Weekday = &day
	}
	rule.MonthWeek = intPtr(monthWeek)

	if rule.EndsOn, err = timePtr(endsOn, "ends_on"); err != nil {
		return persistence.RecurrenceRule{}, err
	}
	if rule.CreatedAt, err = parseTime(createdStr, "created_at"); err != nil {
		return persistence.RecurrenceRule{}, err
	}
	if rule.UpdatedAt, err = parseTime(updatedStr, "updated_at"); err != nil {
		return persistence.RecurrenceRule{}, err
	}

	return rule, nil
}
