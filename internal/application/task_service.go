package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/meeting-service/internal/persistence"
)

// TaskService orchestrates validation and persistence for action items and
// their meeting associations.
type TaskService struct {
	tasks       persistence.TaskRepository
	meetings    persistence.MeetingRepository
	users       persistence.UserRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTaskService wires dependencies for task operations.
func NewTaskService(tasks persistence.TaskRepository, meetings persistence.MeetingRepository, users persistence.UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TaskService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TaskService{
		tasks:       tasks,
		meetings:    meetings,
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *TaskService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TaskService", operation, attrs...)
}

// CreateTask validates input and persists a new task, optionally attaching it
// to a meeting in the same call.
func (s *TaskService) CreateTask(ctx context.Context, params CreateTaskParams) (task Task, err error) {
	if s == nil {
		err = fmt.Errorf("TaskService is nil")
		return
	}
	if s.tasks == nil {
		err = fmt.Errorf("task repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateTask",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create task", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("task_id", task.ID).InfoContext(ctx, "task created")
	}()

	input := params.Input

	vErr := &ValidationError{}
	validateTaskCore(input, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureAssigneeExists(ctx, input.AssigneeID); err != nil {
		return
	}

	if params.MeetingID != nil {
		if _, err = s.meetings.GetMeeting(ctx, *params.MeetingID); err != nil {
			err = mapMeetingRepoError(err)
			return
		}
	}

	createdAt := s.now()
	record := persistence.Task{
		ID:          s.idGenerator(),
		AssigneeID:  input.AssigneeID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		DueDate:     input.DueDate,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	if err = s.tasks.CreateTask(ctx, record); err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	if params.MeetingID != nil {
		association := persistence.MeetingTask{
			ID:        s.idGenerator(),
			MeetingID: *params.MeetingID,
			TaskID:    record.ID,
			CreatedAt: createdAt,
		}
		if err = s.tasks.AttachTask(ctx, association); err != nil {
			err = mapMeetingRepoError(err)
			return
		}
	}

	task = toTask(record)
	return
}

// GetTask loads a single task by id.
func (s *TaskService) GetTask(ctx context.Context, id string) (Task, error) {
	if s == nil || s.tasks == nil {
		return Task{}, fmt.Errorf("task repository not configured")
	}
	record, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return Task{}, mapMeetingRepoError(err)
	}
	return toTask(record), nil
}

// UpdateTask applies validation before updating persistence state.
func (s *TaskService) UpdateTask(ctx context.Context, params UpdateTaskParams) (task Task, err error) {
	if s == nil {
		err = fmt.Errorf("TaskService is nil")
		return
	}
	if s.tasks == nil {
		err = fmt.Errorf("task repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateTask",
		"principal_id", params.Principal.UserID,
		"task_id", params.TaskID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update task", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "task updated")
	}()

	existing, err := s.tasks.GetTask(ctx, params.TaskID)
	if err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	input := params.Input

	vErr := &ValidationError{}
	validateTaskCore(input, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureAssigneeExists(ctx, input.AssigneeID); err != nil {
		return
	}

	updated := existing
	updated.AssigneeID = input.AssigneeID
	updated.Title = strings.TrimSpace(input.Title)
	updated.Description = input.Description
	updated.DueDate = input.DueDate
	updated.UpdatedAt = s.now()

	if err = s.tasks.UpdateTask(ctx, updated); err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	task = toTask(updated)
	return
}

// CompleteTask marks a task done. Completing an already completed task is a
// conflict, never a silent success.
func (s *TaskService) CompleteTask(ctx context.Context, principal Principal, taskID string) (task Task, err error) {
	if s == nil || s.tasks == nil {
		err = fmt.Errorf("task repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CompleteTask",
		"principal_id", principal.UserID,
		"task_id", taskID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to complete task", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "task completed")
	}()

	existing, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		err = mapMeetingRepoError(err)
		return
	}
	if existing.Completed {
		err = ErrAlreadyCompleted
		return
	}

	completedAt := s.now()
	updated := existing
	updated.Completed = true
	updated.CompletedAt = &completedAt
	updated.UpdatedAt = completedAt

	if err = s.tasks.UpdateTask(ctx, updated); err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	task = toTask(updated)
	return
}

// DeleteTask removes a task and its meeting associations.
func (s *TaskService) DeleteTask(ctx context.Context, principal Principal, taskID string) (err error) {
	if s == nil || s.tasks == nil {
		return fmt.Errorf("task repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteTask",
		"principal_id", principal.UserID,
		"task_id", taskID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete task", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "task deleted")
	}()

	if err = s.tasks.DeleteTask(ctx, taskID); err != nil {
		err = mapMeetingRepoError(err)
	}
	return
}

// ListTasks enumerates tasks matching the supplied filters.
func (s *TaskService) ListTasks(ctx context.Context, params ListTasksParams) ([]Task, error) {
	if s == nil || s.tasks == nil {
		return nil, fmt.Errorf("task repository not configured")
	}
	records, err := s.tasks.ListTasks(ctx, persistence.TaskFilter{
		AssigneeID: params.AssigneeID,
		Completed:  params.Completed,
		Skip:       params.Skip,
		Limit:      params.Limit,
	})
	if err != nil {
		return nil, mapMeetingRepoError(err)
	}
	return toTasks(records), nil
}

// ListTasksForMeeting enumerates the tasks attached to a meeting.
func (s *TaskService) ListTasksForMeeting(ctx context.Context, meetingID string) ([]Task, error) {
	if s == nil || s.tasks == nil {
		return nil, fmt.Errorf("task repository not configured")
	}
	records, err := s.tasks.ListTasksForMeeting(ctx, meetingID)
	if err != nil {
		return nil, mapMeetingRepoError(err)
	}
	return toTasks(records), nil
}

// AttachTask associates an existing task with a meeting.
func (s *TaskService) AttachTask(ctx context.Context, principal Principal, meetingID, taskID string) (err error) {
	if s == nil || s.tasks == nil || s.meetings == nil {
		return fmt.Errorf("task repository not configured")
	}

	logger := s.loggerWith(ctx, "AttachTask",
		"principal_id", principal.UserID,
		"meeting_id", meetingID,
		"task_id", taskID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to attach task", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "task attached")
	}()

	if _, err = s.meetings.GetMeeting(ctx, meetingID); err != nil {
		err = mapMeetingRepoError(err)
		return
	}
	if _, err = s.tasks.GetTask(ctx, taskID); err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	association := persistence.MeetingTask{
		ID:        s.idGenerator(),
		MeetingID: meetingID,
		TaskID:    taskID,
		CreatedAt: s.now(),
	}
	if err = s.tasks.AttachTask(ctx, association); err != nil {
		err = mapMeetingRepoError(err)
	}
	return
}

// DetachTask removes the association between a task and a meeting. The task
// itself is untouched.
func (s *TaskService) DetachTask(ctx context.Context, principal Principal, meetingID, taskID string) (err error) {
	if s == nil || s.tasks == nil {
		return fmt.Errorf("task repository not configured")
	}

	logger := s.loggerWith(ctx, "DetachTask",
		"principal_id", principal.UserID,
		"meeting_id", meetingID,
		"task_id", taskID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to detach task", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "task detached")
	}()

	if err = s.tasks.DetachTask(ctx, meetingID, taskID); err != nil {
		err = mapMeetingRepoError(err)
	}
	return
}

func (s *TaskService) ensureAssigneeExists(ctx context.Context, assigneeID *string) error {
	if assigneeID == nil || s.users == nil {
		return nil
	}
	missing, err := s.users.MissingUserIDs(ctx, []string{*assigneeID})
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("assignee_id", "assignee does not exist")
	return vErr
}

func validateTaskCore(input TaskInput, vErr *ValidationError) {
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
}

func toTask(record persistence.Task) Task {
	return Task{
		ID:          record.ID,
		AssigneeID:  record.AssigneeID,
		Title:       record.Title,
		Description: record.Description,
		DueDate:     record.DueDate,
		Completed:   record.Completed,
		CompletedAt: record.CompletedAt,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func toTasks(records []persistence.Task) []Task {
	tasks := make([]Task, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, toTask(record))
	}
	return tasks
}
