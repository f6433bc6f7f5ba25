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

type meetingService interface {
	CreateMeeting(ctx context.Context, params application.CreateMeetingParams) (application.Meeting, error)
	GetMeeting(ctx context.Context, id string) (application.Meeting, error)
	UpdateMeeting(ctx context.Context, params application.UpdateMeetingParams) (application.Meeting, error)
	DeleteMeeting(ctx context.Context, principal application.Principal, meetingID string) error
	ListMeetings(ctx context.Context, params application.ListMeetingsParams) ([]application.Meeting, error)
	CreateRecurring(ctx context.Context, params application.CreateRecurringParams) (application.CreateRecurringResult, error)
	Complete(ctx context.Context, principal application.Principal, meetingID string) (application.CompleteResult, error)
	NextMeeting(ctx context.Context, meetingID string) (application.Meeting, error)
	AddAttendees(ctx context.Context, params application.AddAttendeesParams) error
	ListAttendees(ctx context.Context, meetingID string) ([]application.Attendee, error)
}

type MeetingHandler struct {
	service   meetingService
	responder responder
}

func NewMeetingHandler(service meetingService, logger *slog.Logger) *MeetingHandler {
	return &MeetingHandler{service: service, responder: newResponder(logger)}
}

func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	meeting, err := h.service.CreateMeeting(r.Context(), application.CreateMeetingParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	meeting, err := h.service.GetMeeting(r.Context(), meetingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	meeting, err := h.service.UpdateMeeting(r.Context(), application.UpdateMeetingParams{
		Principal: principal,
		MeetingID: meetingID,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteMeeting(r.Context(), principal, meetingID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	params := buildMeetingListParams(r.URL.Query(), principal)

	meetings, err := h.service.ListMeetings(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listMeetingsResponse{Meetings: toMeetingDTOs(meetings)})
}

// CreateRecurring materializes a meeting series from a stored rule and a
// template meeting.
func (h *MeetingHandler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req recurringMeetingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	result, err := h.service.CreateRecurring(r.Context(), application.CreateRecurringParams{
		Principal:    principal,
		RecurrenceID: strings.TrimSpace(req.RecurrenceID),
		Template:     req.Template.toInput(),
		MaxCount:     req.MaxCount,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, recurringMeetingsResponse{
		Meetings: toMeetingDTOs(result.Created),
		Skipped:  result.Skipped,
	})
}

// Complete marks the meeting done and rolls unfinished tasks forward.
func (h *MeetingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	result, err := h.service.Complete(r.Context(), principal, meetingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := completeMeetingResponse{
		Meeting:     toMeetingDTO(result.Meeting),
		RolledTasks: result.RolledTasks,
	}
	if result.Successor != nil {
		successor := toMeetingDTO(*result.Successor)
		response.Successor = &successor
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

// Next resolves the meeting following this one.
func (h *MeetingHandler) Next(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	meeting, err := h.service.NextMeeting(r.Context(), meetingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

func (h *MeetingHandler) AddAttendees(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	var req attendeesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	err := h.service.AddAttendees(r.Context(), application.AddAttendeesParams{
		Principal: principal,
		MeetingID: meetingID,
		UserIDs:   req.UserIDs,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *MeetingHandler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	attendees, err := h.service.ListAttendees(r.Context(), meetingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAttendeesResponse{Attendees: toAttendeeDTOs(attendees)})
}

type meetingRequest struct {
	Title       string   `json:"title"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Location    string   `json:"location"`
	Notes       string   `json:"notes"`
	AttendeeIDs []string `json:"attendee_ids"`
}

func (r meetingRequest) toInput() application.MeetingInput {
	return application.MeetingInput{
		Title:       strings.TrimSpace(r.Title),
		Start:       parseTime(r.Start),
		End:         parseTime(r.End),
		Location:    strings.TrimSpace(r.Location),
		Notes:       r.Notes,
		AttendeeIDs: append([]string(nil), r.AttendeeIDs...),
	}
}

type recurringMeetingsRequest struct {
	RecurrenceID string         `json:"recurrence_id"`
	Template     meetingRequest `json:"template"`
	MaxCount     int            `json:"max_count"`
}

type attendeesRequest struct {
	UserIDs []string `json:"user_ids"`
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}

type meetingResponse struct {
	Meeting meetingDTO `json:"meeting"`
}

type listMeetingsResponse struct {
	Meetings []meetingDTO `json:"meetings"`
}

type recurringMeetingsResponse struct {
	Meetings []meetingDTO `json:"meetings"`
	Skipped  int          `json:"skipped"`
}

type completeMeetingResponse struct {
	Meeting     meetingDTO  `json:"meeting"`
	Successor   *meetingDTO `json:"successor,omitempty"`
	RolledTasks int         `json:"rolled_tasks"`
}

type listAttendeesResponse struct {
	Attendees []attendeeDTO `json:"attendees"`
}

type meetingDTO struct {
	ID              string  `json:"id"`
	RecurrenceID    *string `json:"recurrence_id,omitempty"`
	Title           string  `json:"title"`
	Start           string  `json:"start"`
	End             string  `json:"end"`
	DurationMinutes int     `json:"duration_minutes"`
	Location        string  `json:"location,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	NumReschedules  int     `json:"num_reschedules"`
	ReminderSent    bool    `json:"reminder_sent"`
	Completed       bool    `json:"completed"`
	CompletedAt     *string `json:"completed_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type attendeeDTO struct {
	MeetingID   string `json:"meeting_id"`
	UserID      string `json:"user_id"`
	IsScheduler bool   `json:"is_scheduler"`
}

func toMeetingDTO(meeting application.Meeting) meetingDTO {
	dto := meetingDTO{
		ID:              meeting.ID,
		RecurrenceID:    meeting.RecurrenceID,
		Title:           meeting.Title,
		Start:           meeting.Start.UTC().Format(time.RFC3339),
		End:             meeting.End.UTC().Format(time.RFC3339),
		DurationMinutes: meeting.DurationMinutes,
		Location:        meeting.Location,
		Notes:           meeting.Notes,
		NumReschedules:  meeting.NumReschedules,
		ReminderSent:    meeting.ReminderSent,
		Completed:       meeting.Completed,
		CreatedAt:       meeting.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       meeting.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if meeting.CompletedAt != nil {
		completedAt := meeting.CompletedAt.UTC().Format(time.RFC3339)
		dto.CompletedAt = &completedAt
	}
	return dto
}

func toMeetingDTOs(meetings []application.Meeting) []meetingDTO {
	if len(meetings) == 0 {
		return nil
	}
	out := make([]meetingDTO, 0, len(meetings))
	for _, meeting := range meetings {
		out = append(out, toMeetingDTO(meeting))
	}
	return out
}

func toAttendeeDTOs(attendees []application.Attendee) []attendeeDTO {
	if len(attendees) == 0 {
		return nil
	}
	out := make([]attendeeDTO, 0, len(attendees))
	for _, attendee := range attendees {
		out = append(out, attendeeDTO{
			MeetingID:   attendee.MeetingID,
			UserID:      attendee.UserID,
			IsScheduler: attendee.IsScheduler,
		})
	}
	return out
}

func buildMeetingListParams(values url.Values, principal application.Principal) application.ListMeetingsParams {
	params := application.ListMeetingsParams{Principal: principal}

	if recurrenceID := strings.TrimSpace(values.Get("recurrence_id")); recurrenceID != "" {
		params.RecurrenceID = &recurrenceID
	}

	if after := strings.TrimSpace(values.Get("starts_after")); after != "" {
		if ts := parseTime(after); !ts.IsZero() {
			params.StartsAfter = &ts
		}
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

func parseNonNegativeInt(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}
