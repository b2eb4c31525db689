package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/dentalbooking/backend/internal/application/services"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/dentalbooking/backend/pkg/errors"
)

// ClientIDHeader identifies a browser for remembered locations
const ClientIDHeader = "X-Client-ID"

// ActionHome tells the client to offer a way back to the facility list
const ActionHome = "home"

// FacilityResolver resolves facility details
type FacilityResolver interface {
	Resolve(ctx context.Context, id string) (*services.FacilityResolution, error)
	FeaturedDoctors(facility *entities.Facility) []entities.Doctor
}

// FacilityLister pages the facility listing
type FacilityLister interface {
	List(ctx context.Context, query services.ListingQuery) (*services.FacilityPage, error)
}

// FacilityHandler handles facility-related HTTP requests
type FacilityHandler struct {
	resolver     FacilityResolver
	lister       FacilityLister
	availability services.AvailabilitySource
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(resolver FacilityResolver, lister FacilityLister, availability services.AvailabilitySource) *FacilityHandler {
	return &FacilityHandler{
		resolver:     resolver,
		lister:       lister,
		availability: availability,
	}
}

type facilityDetailsResponse struct {
	Facility *entities.Facility      `json:"facility"`
	Source   services.FacilitySource `json:"source"`
	Doctors  []entities.Doctor       `json:"doctors"`
	Notices  []entities.Notice       `json:"notices,omitempty"`
}

// GetFacility handles GET /api/facilities/{id}
func (h *FacilityHandler) GetFacility(w http.ResponseWriter, r *http.Request) {
	resolution, err := h.resolver.Resolve(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, facilityDetailsResponse{
		Facility: resolution.Facility,
		Source:   resolution.Source,
		Doctors:  h.resolver.FeaturedDoctors(resolution.Facility),
		Notices:  resolution.Notices,
	})
}

// ListFacilities handles GET /api/facilities
func (h *FacilityHandler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := services.ListingQuery{
		ClientID: r.Header.Get(ClientIDHeader),
		Search:   q.Get("q"),
		Type:     q.Get("type"),
		Location: q.Get("location"),
	}

	var fields []apperrors.FieldError
	if lat, lng := q.Get("lat"), q.Get("lng"); lat != "" || lng != "" {
		point, err := parseCoordinates(lat, lng)
		if err != nil {
			fields = append(fields, apperrors.FieldError{Field: "lat,lng", Message: err.Error()})
		} else {
			query.Coordinates = point
		}
	}
	for name, target := range map[string]*int{"radius": &query.RadiusKm, "limit": &query.Limit, "offset": &query.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			fields = append(fields, apperrors.FieldError{Field: name, Message: name + " must be a non-negative integer"})
			continue
		}
		*target = value
	}
	if len(fields) > 0 {
		respondWithAppError(w, r, apperrors.NewValidationError("invalid query parameters", fields...))
		return
	}

	page, err := h.lister.List(r.Context(), query)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

// ListDepartments handles GET /api/facilities/{id}/departments
func (h *FacilityHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	facilityID := strings.TrimSpace(r.PathValue("id"))
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}
	respondWithJSON(w, http.StatusOK, h.availability.ListDepartments(r.Context(), facilityID))
}

// ListDoctors handles GET /api/facilities/{id}/doctors?department=
func (h *FacilityHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	facilityID := strings.TrimSpace(r.PathValue("id"))
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}
	respondWithJSON(w, http.StatusOK, h.availability.ListDoctors(r.Context(), facilityID, r.URL.Query().Get("department")))
}

func parseCoordinates(rawLat, rawLng string) (*entities.Coordinates, error) {
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return nil, errInvalidCoordinates
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		return nil, errInvalidCoordinates
	}
	point := entities.Coordinates{Latitude: lat, Longitude: lng}
	if !point.Valid() {
		return nil, errInvalidCoordinates
	}
	return &point, nil
}

var errInvalidCoordinates = errors.New("lat and lng must be valid coordinates")

type errorResponse struct {
	Error  string                 `json:"error"`
	Type   apperrors.ErrorType    `json:"type,omitempty"`
	Fields []apperrors.FieldError `json:"fields,omitempty"`
	Action string                 `json:"action,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps an AppError onto an HTTP status
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("unhandled error")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := errorResponse{Error: appErr.Message, Type: appErr.Type, Fields: appErr.Fields}
	status := http.StatusInternalServerError
	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		status = http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		status = http.StatusNotFound
		response.Action = ActionHome
	case apperrors.ErrorTypeConflict:
		status = http.StatusConflict
	case apperrors.ErrorTypeUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.ErrorTypeExternal:
		status = http.StatusBadGateway
	case apperrors.ErrorTypeUnavailable:
		status = http.StatusServiceUnavailable
	default:
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("internal error")
		response.Error = "internal server error"
	}
	respondWithJSON(w, status, response)
}
