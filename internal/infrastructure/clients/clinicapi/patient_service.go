package clinicapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
)

const patientServiceName = "patient-service"

// PatientServiceClient registers patients and books appointments
type PatientServiceClient struct {
	*client
}

var (
	_ providers.PatientRegistry   = (*PatientServiceClient)(nil)
	_ providers.AppointmentBooker = (*PatientServiceClient)(nil)
)

// NewPatientServiceClient creates a client for baseURL, e.g.
// http://localhost:8002/api/v1/patient-service
func NewPatientServiceClient(baseURL string, opts Options) *PatientServiceClient {
	return &PatientServiceClient{client: newClient(patientServiceName, baseURL, opts)}
}

// RegisterPatient implements POST /patient/register/{facilityId}
func (c *PatientServiceClient) RegisterPatient(ctx context.Context, facilityID string, registration entities.PatientRegistration) (string, error) {
	endpoint, err := c.endpoint("/patient/register/"+url.PathEscape(facilityID), nil)
	if err != nil {
		return "", err
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, "register patient", http.MethodPost, endpoint, registration, &raw); err != nil {
		return "", err
	}
	return decodePatientID(raw), nil
}

// SearchPatients implements GET /patient/search?clinicId=&email=
func (c *PatientServiceClient) SearchPatients(ctx context.Context, facilityID, email string) ([]entities.Patient, error) {
	query := url.Values{}
	query.Set("clinicId", facilityID)
	query.Set("email", email)

	endpoint, err := c.endpoint("/patient/search", query)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, "search patients", http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, err
	}
	return decodePatients(raw), nil
}

// BookAppointment implements POST /appointment/public/book/{facilityId}
func (c *PatientServiceClient) BookAppointment(ctx context.Context, facilityID string, request entities.AppointmentRequest) (*entities.AppointmentConfirmation, error) {
	endpoint, err := c.endpoint("/appointment/public/book/"+url.PathEscape(facilityID), nil)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, "book appointment", http.MethodPost, endpoint, request, &raw); err != nil {
		return nil, err
	}
	return decodeConfirmation(raw), nil
}
