package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/dentalbooking/backend/internal/application/services"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/dentalbooking/backend/pkg/errors"
)

// maxDoctorWait bounds how long a PATCH with ?wait=true blocks for the
// doctor list of a newly selected department.
const maxDoctorWait = 5 * time.Second

// BookingSubmitter submits a complete booking form
type BookingSubmitter interface {
	SubmitBooking(ctx context.Context, facilityID string, form entities.BookingForm) (*entities.BookingResult, error)
}

// BookingSessions opens and looks up booking sessions
type BookingSessions interface {
	Open(ctx context.Context, facilityID string) (*services.BookingSession, error)
	Get(id string) (*services.BookingSession, error)
	Close(id string) error
}

// BookingHandler handles booking submissions and booking sessions
type BookingHandler struct {
	submitter BookingSubmitter
	sessions  BookingSessions
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(submitter BookingSubmitter, sessions BookingSessions) *BookingHandler {
	return &BookingHandler{
		submitter: submitter,
		sessions:  sessions,
	}
}

type bookingResponse struct {
	*entities.BookingResult
	Title           string `json:"title"`
	PendingApproval bool   `json:"pendingApproval"`
}

func newBookingResponse(result *entities.BookingResult) bookingResponse {
	return bookingResponse{
		BookingResult:   result,
		Title:           result.Title(),
		PendingApproval: result.PendingApproval(),
	}
}

// CreateBooking handles POST /api/facilities/{id}/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var form entities.BookingForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.submitter.SubmitBooking(r.Context(), r.PathValue("id"), form)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newBookingResponse(result))
}

type openSessionRequest struct {
	FacilityID string `json:"facilityId"`
}

// OpenSession handles POST /api/booking-sessions
func (h *BookingHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.FacilityID) == "" {
		respondWithAppError(w, r, apperrors.NewValidationError("facilityId is required",
			apperrors.FieldError{Field: "facilityId", Message: "facilityId is required"}))
		return
	}

	session, err := h.sessions.Open(r.Context(), req.FacilityID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, session.Snapshot())
}

// GetSession handles GET /api/booking-sessions/{id}
func (h *BookingHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session.Snapshot())
}

type updateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// UpdateField handles PATCH /api/booking-sessions/{id}. With ?wait=true a
// department change blocks until its doctor list is applied.
func (h *BookingHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var req updateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	done, err := session.SetField(entities.FormField(req.Field), req.Value)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		timer := time.NewTimer(maxDoctorWait)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
		case <-r.Context().Done():
			return
		}
	}
	respondWithJSON(w, http.StatusOK, session.Snapshot())
}

// SubmitSession handles POST /api/booking-sessions/{id}/submit
func (h *BookingHandler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := session.Submit(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newBookingResponse(result))
}

// CloseSession handles DELETE /api/booking-sessions/{id}
func (h *BookingHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
