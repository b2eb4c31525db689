package providers

import (
	"context"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
)

// DoctorRecord is a doctor as reported by the clinic service, before any
// department filtering or display defaults are applied
type DoctorRecord struct {
	ID              string
	Name            string
	Specializations []string
	Experience      string
	Rating          *float64
	Image           string
	Windows         []entities.AvailabilityWindow
}

// AvailabilityProvider exposes departments and doctor availability of a clinic
type AvailabilityProvider interface {
	// ListDepartments returns the department names of a clinic
	ListDepartments(ctx context.Context, facilityID string) ([]string, error)

	// ListDoctorAvailability returns doctors the clinic service associates with a department
	ListDoctorAvailability(ctx context.Context, facilityID, department string) ([]DoctorRecord, error)
}
