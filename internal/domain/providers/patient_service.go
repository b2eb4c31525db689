package providers

import (
	"context"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
)

// PatientRegistry registers and looks up patients of a clinic
type PatientRegistry interface {
	// RegisterPatient creates a patient record and returns its id. An empty
	// id with a nil error means the service accepted the request but did not
	// report an id.
	RegisterPatient(ctx context.Context, facilityID string, registration entities.PatientRegistration) (string, error)

	// SearchPatients finds existing patients of a clinic by email
	SearchPatients(ctx context.Context, facilityID, email string) ([]entities.Patient, error)
}

// AppointmentBooker books appointment slots for registered patients
type AppointmentBooker interface {
	BookAppointment(ctx context.Context, facilityID string, request entities.AppointmentRequest) (*entities.AppointmentConfirmation, error)
}
