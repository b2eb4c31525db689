package repositories

import (
	"context"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
)

// FacilityCatalog is the immutable set of facilities and doctors known
// without a network call
type FacilityCatalog interface {
	// Get looks a facility up by exact id
	Get(id string) (*entities.Facility, bool)

	// List returns all catalog facilities in catalog order
	List() []*entities.Facility

	// DoctorsForServices returns roster doctors whose department is one of services
	DoctorsForServices(services []string) []entities.Doctor
}

// FacilitySearchQuery narrows a catalog search
type FacilitySearchQuery struct {
	Text         string
	FacilityType string
	Limit        int
}

// FacilitySearchRepository is a full-text index over the catalog (e.g. Typesense)
type FacilitySearchRepository interface {
	// Index upserts the given facilities into the index
	Index(ctx context.Context, facilities []*entities.Facility) error

	// Search returns the ids of matching facilities, best match first
	Search(ctx context.Context, query FacilitySearchQuery) ([]string, error)
}
