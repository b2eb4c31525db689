package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/dentalbooking/backend/internal/application/services"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/clients/clinicapi"
)

// patientServiceFake records every call made to a fake patient service
type patientServiceFake struct {
	mu       sync.Mutex
	paths    []string
	register map[string]any
	booking  map[string]any
}

func (f *patientServiceFake) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /patient/register/{facilityID}", func(w http.ResponseWriter, r *http.Request) {
		f.record(t, r, &f.register)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"p123","name":"Ana Silva"}}`))
	})
	mux.HandleFunc("POST /appointment/public/book/{facilityID}", func(w http.ResponseWriter, r *http.Request) {
		f.record(t, r, &f.booking)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Appointment requested","data":{"status":"pending_approval","_id":"a-9"}}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.record(t, r, nil)
		http.NotFound(w, r)
	})
	return mux
}

func (f *patientServiceFake) record(t *testing.T, r *http.Request, into *map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	if into != nil {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(into))
	}
}

func TestBookingOrchestrator_AgainstPatientService(t *testing.T) {
	fake := &patientServiceFake{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	patientService := clinicapi.NewPatientServiceClient(server.URL, clinicapi.Options{Timeout: 2 * time.Second})
	beforeAppointment := func() time.Time { return time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC) }
	orchestrator := services.NewBookingOrchestrator(patientService, patientService, services.WithClock(beforeAppointment))

	form := validForm()
	form.Department = "General Dentistry"
	form.Doctor = "d1"
	form.AppointmentDate = "2025-12-01"
	form.AppointmentTime = "10:00"

	result, err := orchestrator.SubmitBooking(context.Background(), "clinic-7", form)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /patient/register/clinic-7",
		"POST /appointment/public/book/clinic-7",
	}, fake.paths)

	assert.Equal(t, "patient", fake.register["userRole"])
	assert.Equal(t, "clinic-7", fake.register["userId"])
	assert.Equal(t, "Ana Silva", fake.register["name"])
	assert.Equal(t, float64(34), fake.register["age"])

	assert.Equal(t, map[string]any{
		"patientId":       "p123",
		"userRole":        "patient",
		"department":      "General Dentistry",
		"appointmentDate": "2025-12-01",
		"appointmentTime": "10:00",
		"doctorId":        "d1",
	}, fake.booking)

	assert.Equal(t, "p123", result.PatientID)
	assert.False(t, result.ReusedPatient)
	assert.Equal(t, "pending_approval", result.Status)
	assert.Equal(t, "Appointment requested", result.Message)
	assert.Equal(t, entities.Notice{Level: entities.NoticeSuccess, Message: "Appointment requested"}, result.Notices[0])
}
