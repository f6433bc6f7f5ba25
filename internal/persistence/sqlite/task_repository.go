package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/example/meeting-service/internal/persistence"
)

const taskColumns = `id, assignee_id, title, description, due_date, completed, completed_at, created_at, updated_at`

// TaskRepository implements persistence.TaskRepository using SQLite.
type TaskRepository struct {
	pool *ConnectionPool
}

// NewTaskRepository creates a new SQLite task repository.
func NewTaskRepository(pool *ConnectionPool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// CreateTask inserts a new task.
func (r *TaskRepository) CreateTask(ctx context.Context, task persistence.Task) error {
	if task.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.ID,
		nullString(task.AssigneeID),
		task.Title,
		task.Description,
		nullTime(task.DueDate),
		boolToInt(task.Completed),
		nullTime(task.CompletedAt),
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
	)
	return mapError(err)
}

// GetTask retrieves a task by ID.
func (r *TaskRepository) GetTask(ctx context.Context, id string) (persistence.Task, error) {
	if id == "" {
		return persistence.Task{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	return scanTask(row)
}

// UpdateTask updates an existing task.
func (r *TaskRepository) UpdateTask(ctx context.Context, task persistence.Task) error {
	if task.ID == "" {
		return persistence.ErrNotFound
	}

	task.UpdatedAt = time.Now().UTC()

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE tasks
		SET assignee_id = ?, title = ?, description = ?, due_date = ?,
			completed = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`,
		nullString(task.AssigneeID),
		task.Title,
		task.Description,
		nullTime(task.DueDate),
		boolToInt(task.Completed),
		nullTime(task.CompletedAt),
		formatTime(task.UpdatedAt),
		task.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

// DeleteTask removes a task and, through cascade, its meeting associations.
func (r *TaskRepository) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

// ListTasks lists tasks matching the filter ordered by creation time then ID.
func (r *TaskRepository) ListTasks(ctx context.Context, filter persistence.TaskFilter) ([]persistence.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"

	var conditions []string
	var args []any

	if filter.AssigneeID != nil {
		conditions = append(conditions, "assignee_id = ?")
		args = append(args, *filter.AssigneeID)
	}
	if filter.Completed != nil {
		conditions = append(conditions, "completed = ?")
		args = append(args, boolToInt(*filter.Completed))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Skip > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Skip)
		}
	}

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// AttachTask links a task to a meeting.
func (r *TaskRepository) AttachTask(ctx context.Context, association persistence.MeetingTask) error {
	if association.ID == "" || association.MeetingID == "" || association.TaskID == "" {
		return persistence.ErrConstraintViolation
	}

	createdAt := association.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO meeting_tasks (id, meeting_id, task_id, created_at)
		VALUES (?, ?, ?, ?)
	`, association.ID, association.MeetingID, association.TaskID, formatTime(createdAt))
	return mapError(err)
}

// DetachTask removes the association between a meeting and a task.
func (r *TaskRepository) DetachTask(ctx context.Context, meetingID, taskID string) error {
	result, err := r.pool.db.ExecContext(ctx,
		"DELETE FROM meeting_tasks WHERE meeting_id = ? AND task_id = ?",
		meetingID, taskID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

// ListTasksForMeeting returns tasks attached to the meeting ordered by the
// association timestamp.
func (r *TaskRepository) ListTasksForMeeting(ctx context.Context, meetingID string) ([]persistence.Task, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT t.id, t.assignee_id, t.title, t.description, t.due_date,
			t.completed, t.completed_at, t.created_at, t.updated_at
		FROM tasks t
		JOIN meeting_tasks mt ON mt.task_id = t.id
		WHERE mt.meeting_id = ?
		ORDER BY mt.created_at ASC, t.id ASC
	`, meetingID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// MoveTaskAssociations re-points the listed task associations from one meeting
// to another inside a single transaction. A missing association aborts the
// whole move so rollover never leaves tasks split across occurrences.
func (r *TaskRepository) MoveTaskAssociations(ctx context.Context, fromMeetingID, toMeetingID string, taskIDs []string, at time.Time) error {
	if len(taskIDs) == 0 {
		return nil
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, taskID := range taskIDs {
			var existing int
			err := tx.QueryRow(`
				SELECT COUNT(*) FROM meeting_tasks
				WHERE meeting_id = ? AND task_id = ?
			`, toMeetingID, taskID).Scan(&existing)
			if err != nil {
				return mapError(err)
			}

			// Already attached to the target: re-pointing would collide with
			// the unique (meeting_id, task_id) pair, so drop the source row.
			var result sql.Result
			if existing > 0 {
				result, err = tx.Exec(`
					DELETE FROM meeting_tasks
					WHERE meeting_id = ? AND task_id = ?
				`, fromMeetingID, taskID)
			} else {
				result, err = tx.Exec(`
					UPDATE meeting_tasks
					SET meeting_id = ?, created_at = ?
					WHERE meeting_id = ? AND task_id = ?
				`, toMeetingID, formatTime(at), fromMeetingID, taskID)
			}
			if err != nil {
				return mapError(err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				return persistence.ErrNotFound
			}
		}
		return nil
	})
}

func scanTask(row rowScanner) (persistence.Task, error) {
	var task persistence.Task
	var assigneeID, dueDate, completedAt sql.NullString
	var completed int
	var createdStr, updatedStr string

	err := row.Scan(
		&task.ID,
		&assigneeID,
		&task.Title,
		&task.Description,
		&dueDate,
		&completed,
		&completedAt,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Task{}, persistence.ErrNotFound
		}
		return persistence.Task{}, mapError(err)
	}

	task.AssigneeID = stringPtr(assigneeID)
	task.Completed = completed != 0

	if task.DueDate, err = timePtr(dueDate, "due_date"); err != nil {
		return persistence.Task{}, err
	}
	if task.CompletedAt, err = timePtr(completedAt, "completed_at"); err != nil {
		return persistence.Task{}, err
	}
	if task.CreatedAt, err = parseTime(createdStr, "created_at"); err != nil {
		return persistence.Task{}, err
	}
	if task.UpdatedAt, err = parseTime(updatedStr, "updated_at"); err != nil {
		return persistence.Task{}, err
	}

	return task, nil
}

func collectTasks(rows *sql.Rows) ([]persistence.Task, error) {
	var tasks []persistence.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return tasks, nil
}
