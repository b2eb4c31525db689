package providers

import (
	"context"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
)

// ClinicDirectory resolves clinics registered with the platform
type ClinicDirectory interface {
	// ViewClinic fetches a single clinic and normalizes it into a Facility
	ViewClinic(ctx context.Context, facilityID string) (*entities.Facility, error)

	// NearbyClinics lists clinics within radiusKm of the given point
	NearbyClinics(ctx context.Context, point entities.Coordinates, radiusKm int) ([]*entities.Facility, error)
}
