package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/meeting-service/internal/application"
)

type recurrenceService interface {
	CreateRecurrence(ctx context.Context, params application.CreateRecurrenceParams) (application.Recurrence, error)
	ImportRecurrence(ctx context.Context, params application.ImportRecurrenceParams) (application.Recurrence, error)
	GetRecurrence(ctx context.Context, id string) (application.Recurrence, error)
	UpdateRecurrence(ctx context.Context, params application.UpdateRecurrenceParams) (application.Recurrence, error)
	DeleteRecurrence(ctx context.Context, principal application.Principal, recurrenceID string) error
	ListRecurrences(ctx context.Context) ([]application.Recurrence, error)
}

type RecurrenceHandler struct {
	service   recurrenceService
	responder responder
}

func NewRecurrenceHandler(service recurrenceService, logger *slog.Logger) *RecurrenceHandler {
	return &RecurrenceHandler{service: service, responder: newResponder(logger)}
}

func (h *RecurrenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req recurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	rule, err := h.service.CreateRecurrence(r.Context(), application.CreateRecurrenceParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, recurrenceResponse{Recurrence: toRecurrenceDTO(rule)})
}

// Import converts a legacy RRULE string into a structured rule.
func (h *RecurrenceHandler) Import(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req importRecurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	rule, err := h.service.ImportRecurrence(r.Context(), application.ImportRecurrenceParams{
		Principal: principal,
		Title:     strings.TrimSpace(req.Title),
		RRule:     strings.TrimSpace(req.RRule),
		DTStart:   parseTime(req.DTStart),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, recurrenceResponse{Recurrence: toRecurrenceDTO(rule)})
}

func (h *RecurrenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	recurrenceID, ok := RecurrenceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(recurrenceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecurrenceID)
		return
	}

	rule, err := h.service.GetRecurrence(r.Context(), recurrenceID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, recurrenceResponse{Recurrence: toRecurrenceDTO(rule)})
}

func (h *RecurrenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	recurrenceID, ok := RecurrenceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(recurrenceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecurrenceID)
		return
	}

	var req recurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	rule, err := h.service.UpdateRecurrence(r.Context(), application.UpdateRecurrenceParams{
		Principal:    principal,
		RecurrenceID: recurrenceID,
		Input:        req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, recurrenceResponse{Recurrence: toRecurrenceDTO(rule)})
}

func (h *RecurrenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	recurrenceID, ok := RecurrenceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(recurrenceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecurrenceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteRecurrence(r.Context(), principal, recurrenceID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RecurrenceHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rules, err := h.service.ListRecurrences(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]recurrenceDTO, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toRecurrenceDTO(rule))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRecurrencesResponse{Recurrences: out})
}

type recurrenceRequest struct {
	Title     string `json:"title"`
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval"`
	Weekday   *int   `json:"week_day"`
	MonthWeek *int   `json:"month_week"`
	EndsOn    string `json:"end_recurrence"`
	EndAfter  int    `json:"end_after"`
}

func (r recurrenceRequest) toInput() application.RecurrenceInput {
	input := application.RecurrenceInput{
		Title:     strings.TrimSpace(r.Title),
		Frequency: strings.ToLower(strings.TrimSpace(r.Frequency)),
		Interval:  r.Interval,
		MonthWeek: r.MonthWeek,
		EndAfter:  r.EndAfter,
	}
	if r.Weekday != nil {
		weekday := time.Weekday(*r.Weekday % 7)
		input.Weekday = &weekday
	}
	if ts := parseTime(r.EndsOn); !ts.IsZero() {
		input.EndsOn = &ts
	}
	return input
}

type importRecurrenceRequest struct {
	Title   string `json:"title"`
	RRule   string `json:"rrule"`
	DTStart string `json:"dtstart"`
}

type recurrenceResponse struct {
	Recurrence recurrenceDTO `json:"recurrence"`
}

type listRecurrencesResponse struct {
	Recurrences []recurrenceDTO `json:"recurrences"`
}

type recurrenceDTO struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Frequency string  `json:"frequency"`
	Interval  int     `json:"interval"`
	Weekday   *int    `json:"week_day,omitempty"`
	MonthWeek *int    `json:"month_week,omitempty"`
	EndsOn    *string `json:"end_recurrence,omitempty"`
	EndAfter  int     `json:"end_after,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func toRecurrenceDTO(rule application.Recurrence) recurrenceDTO {
	dto := recurrenceDTO{
		ID:        rule.ID,
		Title:     rule.Title,
		Frequency: rule.Frequency,
		Interval:  rule.Interval,
		MonthWeek: rule.MonthWeek,
		EndAfter:  rule.EndAfter,
		CreatedAt: rule.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: rule.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if rule.Weekday != nil {
		weekday := int(*rule.Weekday)
		dto.Weekday = &weekday
	}
	if rule.EndsOn != nil {
		endsOn := rule.EndsOn.UTC().Format(time.RFC3339)
		dto.EndsOn = &endsOn
	}
	return dto
}
