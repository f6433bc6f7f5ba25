package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/meeting-service/internal/application"
)

type taskService interface {
	CreateTask(ctx context.Context, params application.CreateTaskParams) (application.Task, error)
	GetTask(ctx context.Context, id string) (application.Task, error)
	UpdateTask(ctx context.Context, params application.UpdateTaskParams) (application.Task, error)
	CompleteTask(ctx context.Context, principal application.Principal, taskID string) (application.Task, error)
	DeleteTask(ctx context.Context, principal application.Principal, taskID string) error
	ListTasks(ctx context.Context, params application.ListTasksParams) ([]application.Task, error)
	ListTasksForMeeting(ctx context.Context, meetingID string) ([]application.Task, error)
	AttachTask(ctx context.Context, principal application.Principal, meetingID, taskID string) error
	DetachTask(ctx context.Context, principal application.Principal, meetingID, taskID string) error
}

type TaskHandler struct {
	service   taskService
	responder responder
}

func NewTaskHandler(service taskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{service: service, responder: newResponder(logger)}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	task, err := h.service.CreateTask(r.Context(), application.CreateTaskParams{
		Principal: principal,
		Input:     req.toInput(),
		MeetingID: normalizeOptionalID(req.MeetingID),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, taskResponse{Task: toTaskDTO(task)})
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	taskID, ok := TaskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(taskID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTaskID)
		return
	}

	task, err := h.service.GetTask(r.Context(), taskID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, taskResponse{Task: toTaskDTO(task)})
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	taskID, ok := TaskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(taskID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTaskID)
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	task, err := h.service.UpdateTask(r.Context(), application.UpdateTaskParams{
		Principal: principal,
		TaskID:    taskID,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, taskResponse{Task: toTaskDTO(task)})
}

// Complete marks a task done. A repeat call returns 409.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	taskID, ok := TaskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(taskID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTaskID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	task, err := h.service.CompleteTask(r.Context(), principal, taskID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, taskResponse{Task: toTaskDTO(task)})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	taskID, ok := TaskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(taskID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTaskID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteTask(r.Context(), principal, taskID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	params := buildTaskListParams(r.URL.Query(), principal)

	tasks, err := h.service.ListTasks(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTasksResponse{Tasks: toTaskDTOs(tasks)})
}

// ListForMeeting enumerates the tasks attached to a meeting.
func (h *TaskHandler) ListForMeeting(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	tasks, err := h.service.ListTasksForMeeting(r.Context(), meetingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTasksResponse{Tasks: toTaskDTOs(tasks)})
}

// Attach associates an existing task with a meeting.
func (h *TaskHandler) Attach(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}
	taskID, ok := TaskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(taskID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTaskID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.AttachTask(r.Context(), principal, meetingID, taskID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Detach removes a task's association with a meeting. The task survives.
func (h *TaskHandler) Detach(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}
	taskID, ok := TaskIDFromContext(r.Context())
	if !ok || strings.TrimSpace(taskID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTaskID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DetachTask(r.Context(), principal, meetingID, taskID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type taskRequest struct {
	AssigneeID  *string `json:"assignee_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     string  `json:"due_date"`
	MeetingID   *string `json:"meeting_id"`
}

func (r taskRequest) toInput() application.TaskInput {
	input := application.TaskInput{
		AssigneeID:  normalizeOptionalID(r.AssigneeID),
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
	}
	if ts := parseTime(r.DueDate); !ts.IsZero() {
		input.DueDate = &ts
	}
	return input
}

func normalizeOptionalID(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type taskResponse struct {
	Task taskDTO `json:"task"`
}

type listTasksResponse struct {
	Tasks []taskDTO `json:"tasks"`
}

type taskDTO struct {
	ID          string  `json:"id"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completed_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toTaskDTO(task application.Task) taskDTO {
	dto := taskDTO{
		ID:          task.ID,
		AssigneeID:  task.AssigneeID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if task.DueDate != nil {
		due := task.DueDate.UTC().Format(time.RFC3339)
		dto.DueDate = &due
	}
	if task.CompletedAt != nil {
		completedAt := task.CompletedAt.UTC().Format(time.RFC3339)
		dto.CompletedAt = &completedAt
	}
	return dto
}

func toTaskDTOs(tasks []application.Task) []taskDTO {
	if len(tasks) == 0 {
		return nil
	}
	out := make([]taskDTO, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskDTO(task))
	}
	return out
}

func buildTaskListParams(values url.Values, principal application.Principal) application.ListTasksParams {
	params := application.ListTasksParams{Principal: principal}

	if assigneeID := strings.TrimSpace(values.Get("assignee_id")); assigneeID != "" {
		params.AssigneeID = &assigneeID
	}

	if completed := strings.TrimSpace(values.Get("completed")); completed != "" {
		if parsed, err := strconv.ParseBool(completed); err == nil {
			params.Completed = &parsed
		}
	}

	params.Skip = parseNonNegativeInt(values.Get("skip"))
	params.Limit = parseNonNegativeInt(values.Get("limit"))

	return params
}
