package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/dentalbooking/backend/internal/api/handlers"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/dentalbooking/backend/pkg/errors"
)

func locationRequest(method, body, clientID string) *http.Request {
	req := httptest.NewRequest(method, "/api/location", bytes.NewBufferString(body))
	if clientID != "" {
		req.Header.Set(handlers.ClientIDHeader, clientID)
	}
	return req
}

func TestLocationHandler_RequiresClientID(t *testing.T) {
	store := new(MockLocationStore)
	handler := handlers.NewLocationHandler(store)

	rec := httptest.NewRecorder()
	handler.GetLocation(rec, locationRequest(http.MethodGet, "", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), handlers.ClientIDHeader)
	store.AssertNotCalled(t, "Recall", mock.Anything, mock.Anything)
}

func TestLocationHandler_PutThenGet(t *testing.T) {
	store := new(MockLocationStore)
	handler := handlers.NewLocationHandler(store)
	point := entities.Coordinates{Latitude: 40.7128, Longitude: -74.006}

	store.On("Remember", mock.Anything, "browser-1", point).Return(nil)
	store.On("Recall", mock.Anything, "browser-1").Return(&point, nil)

	rec := httptest.NewRecorder()
	handler.PutLocation(rec, locationRequest(http.MethodPut, `{"lat":40.7128,"lng":-74.006}`, "browser-1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.GetLocation(rec, locationRequest(http.MethodGet, "", "browser-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lat":40.7128,"lng":-74.006}`, rec.Body.String())
	store.AssertExpectations(t)
}

func TestLocationHandler_GetUnknownIsNotFound(t *testing.T) {
	store := new(MockLocationStore)
	handler := handlers.NewLocationHandler(store)
	store.On("Recall", mock.Anything, "browser-2").Return(nil, nil)

	rec := httptest.NewRecorder()
	handler.GetLocation(rec, locationRequest(http.MethodGet, "", "browser-2"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLocationHandler_PutInvalidCoordinates(t *testing.T) {
	store := new(MockLocationStore)
	handler := handlers.NewLocationHandler(store)
	store.On("Remember", mock.Anything, "browser-1", mock.Anything).Return(apperrors.NewValidationError("invalid coordinates"))

	rec := httptest.NewRecorder()
	handler.PutLocation(rec, locationRequest(http.MethodPut, `{"lat":123,"lng":0}`, "browser-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLocationHandler_Delete(t *testing.T) {
	store := new(MockLocationStore)
	handler := handlers.NewLocationHandler(store)
	store.On("Forget", mock.Anything, "browser-1").Return(nil)

	rec := httptest.NewRecorder()
	handler.DeleteLocation(rec, locationRequest(http.MethodDelete, "", "browser-1"))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	store.AssertExpectations(t)
}
