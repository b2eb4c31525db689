package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/dentalbooking/backend/internal/api/handlers"
	"github.com/zatekoja/dentalbooking/backend/internal/application/services"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/dentalbooking/backend/pkg/errors"
)

// serve routes a single request through a mux so path values are populated
func serve(pattern string, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestFacilityHandler_GetFacility_ReturnsDetails(t *testing.T) {
	resolver := new(MockFacilityResolver)
	handler := handlers.NewFacilityHandler(resolver, new(MockFacilityLister), new(MockAvailability))

	facility := &entities.Facility{ID: "1", Name: "Downtown Dental Hospital", Type: entities.FacilityTypeHospital}
	doctors := []entities.Doctor{{ID: "d1", Name: "Dr. Sarah Johnson", Specialization: "General Dentistry"}}
	resolver.On("Resolve", mock.Anything, "1").Return(&services.FacilityResolution{
		Facility: facility,
		Source:   services.FacilitySourceCatalog,
	}, nil)
	resolver.On("FeaturedDoctors", facility).Return(doctors)

	rec := serve("GET /api/facilities/{id}", handler.GetFacility, httptest.NewRequest(http.MethodGet, "/api/facilities/1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Facility entities.Facility `json:"facility"`
		Source   string            `json:"source"`
		Doctors  []entities.Doctor `json:"doctors"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Downtown Dental Hospital", body.Facility.Name)
	assert.Equal(t, "catalog", body.Source)
	assert.Len(t, body.Doctors, 1)
	resolver.AssertExpectations(t)
}

func TestFacilityHandler_GetFacility_NotFoundOffersHome(t *testing.T) {
	resolver := new(MockFacilityResolver)
	handler := handlers.NewFacilityHandler(resolver, new(MockFacilityLister), new(MockAvailability))
	resolver.On("Resolve", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError(services.MsgFacilityNotFound))

	rec := serve("GET /api/facilities/{id}", handler.GetFacility, httptest.NewRequest(http.MethodGet, "/api/facilities/missing", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, services.MsgFacilityNotFound, body["error"])
	assert.Equal(t, handlers.ActionHome, body["action"])
}

func TestFacilityHandler_GetFacility_PlaceholderCarriesNotice(t *testing.T) {
	resolver := new(MockFacilityResolver)
	handler := handlers.NewFacilityHandler(resolver, new(MockFacilityLister), new(MockAvailability))

	placeholder := entities.NewPlaceholderFacility("remote-9")
	resolver.On("Resolve", mock.Anything, "remote-9").Return(&services.FacilityResolution{
		Facility: placeholder,
		Source:   services.FacilitySourcePlaceholder,
		Notices:  []entities.Notice{{Level: entities.NoticeWarning, Message: services.MsgFacilityDetailsUnavailable}},
	}, nil)
	resolver.On("FeaturedDoctors", placeholder).Return([]entities.Doctor{})

	rec := serve("GET /api/facilities/{id}", handler.GetFacility, httptest.NewRequest(http.MethodGet, "/api/facilities/remote-9", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), services.MsgFacilityDetailsUnavailable)
	assert.Contains(t, rec.Body.String(), `"placeholder":true`)
}

func TestFacilityHandler_ListFacilities_ParsesQuery(t *testing.T) {
	lister := new(MockFacilityLister)
	handler := handlers.NewFacilityHandler(new(MockFacilityResolver), lister, new(MockAvailability))

	lister.On("List", mock.Anything, mock.MatchedBy(func(q services.ListingQuery) bool {
		return q.Coordinates != nil &&
			q.Coordinates.Latitude == 40.7 &&
			q.Coordinates.Longitude == -74 &&
			q.RadiusKm == 10 &&
			q.Search == "implants" &&
			q.Type == "hospital" &&
			q.Location == "East Side" &&
			q.Limit == 6 &&
			q.Offset == 6 &&
			q.ClientID == "browser-1"
	})).Return(&services.FacilityPage{Facilities: []*entities.Facility{}, Limit: 6, Offset: 6}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/facilities?lat=40.7&lng=-74&radius=10&q=implants&type=hospital&location=East+Side&limit=6&offset=6", nil)
	req.Header.Set(handlers.ClientIDHeader, "browser-1")
	rec := serve("GET /api/facilities", handler.ListFacilities, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	lister.AssertExpectations(t)
}

func TestFacilityHandler_ListFacilities_RejectsHalfCoordinates(t *testing.T) {
	lister := new(MockFacilityLister)
	handler := handlers.NewFacilityHandler(new(MockFacilityResolver), lister, new(MockAvailability))

	rec := serve("GET /api/facilities", handler.ListFacilities, httptest.NewRequest(http.MethodGet, "/api/facilities?lat=40.7", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "lat,lng")
	lister.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestFacilityHandler_ListFacilities_RejectsBadPaging(t *testing.T) {
	handler := handlers.NewFacilityHandler(new(MockFacilityResolver), new(MockFacilityLister), new(MockAvailability))

	rec := serve("GET /api/facilities", handler.ListFacilities, httptest.NewRequest(http.MethodGet, "/api/facilities?offset=-1", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "offset must be a non-negative integer")
}

func TestFacilityHandler_ListFacilities_UnexpectedErrorIsHidden(t *testing.T) {
	lister := new(MockFacilityLister)
	handler := handlers.NewFacilityHandler(new(MockFacilityResolver), lister, new(MockAvailability))
	lister.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: refused"))

	rec := serve("GET /api/facilities", handler.ListFacilities, httptest.NewRequest(http.MethodGet, "/api/facilities", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "refused")
}

func TestFacilityHandler_ListDepartments(t *testing.T) {
	availability := new(MockAvailability)
	handler := handlers.NewFacilityHandler(new(MockFacilityResolver), new(MockFacilityLister), availability)
	availability.On("ListDepartments", mock.Anything, "remote-1").Return(&services.DepartmentListing{
		Departments: []string{},
		Options:     []string{entities.DefaultDepartment},
		Degraded:    true,
	})

	rec := serve("GET /api/facilities/{id}/departments", handler.ListDepartments,
		httptest.NewRequest(http.MethodGet, "/api/facilities/remote-1/departments", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body services.DepartmentListing
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []string{entities.DefaultDepartment}, body.Options)
	assert.True(t, body.Degraded)
}

func TestFacilityHandler_ListDoctors_PassesDepartment(t *testing.T) {
	availability := new(MockAvailability)
	handler := handlers.NewFacilityHandler(new(MockFacilityResolver), new(MockFacilityLister), availability)
	availability.On("ListDoctors", mock.Anything, "remote-1", "Orthodontics").Return(&services.DoctorListing{
		Department: "Orthodontics",
		Doctors:    []entities.Doctor{{ID: "doc-1", Name: "Dr. Lee"}},
	})

	rec := serve("GET /api/facilities/{id}/doctors", handler.ListDoctors,
		httptest.NewRequest(http.MethodGet, "/api/facilities/remote-1/doctors?department=Orthodontics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dr. Lee")
	availability.AssertExpectations(t)
}
