package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/repositories"
)

//go:embed data/facilities.json
var facilitiesJSON []byte

//go:embed data/doctors.json
var doctorsJSON []byte

type catalogDoctor struct {
	entities.Doctor
	Department string `json:"department"`
}

// StaticCatalog serves the built-in facilities and doctor roster. It is
// loaded once and never mutated; lookups hand out copies.
type StaticCatalog struct {
	facilities []*entities.Facility
	byID       map[string]*entities.Facility
	doctors    []catalogDoctor
}

// NewStaticCatalog loads the embedded catalog
func NewStaticCatalog() (*StaticCatalog, error) {
	return newStaticCatalog(facilitiesJSON, doctorsJSON)
}

// MustStaticCatalog is NewStaticCatalog for callers that cannot run
// without a catalog
func MustStaticCatalog() *StaticCatalog {
	c, err := NewStaticCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

func newStaticCatalog(facilityData, doctorData []byte) (*StaticCatalog, error) {
	var facilities []*entities.Facility
	if err := json.Unmarshal(facilityData, &facilities); err != nil {
		return nil, fmt.Errorf("failed to decode facility catalog: %w", err)
	}

	var doctors []catalogDoctor
	if err := json.Unmarshal(doctorData, &doctors); err != nil {
		return nil, fmt.Errorf("failed to decode doctor roster: %w", err)
	}

	byID := make(map[string]*entities.Facility, len(facilities))
	for _, f := range facilities {
		if f.ID == "" {
			return nil, fmt.Errorf("catalog facility %q has no id", f.Name)
		}
		if _, dup := byID[f.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog facility id %q", f.ID)
		}
		if f.Image == "" {
			f.Image = entities.DefaultImage(f.Type)
		}
		byID[f.ID] = f
	}

	for i := range doctors {
		doctors[i].Specialization = doctors[i].Department
		doctors[i].Specializations = []string{doctors[i].Department}
	}

	return &StaticCatalog{
		facilities: facilities,
		byID:       byID,
		doctors:    doctors,
	}, nil
}

var _ repositories.FacilityCatalog = (*StaticCatalog)(nil)

// Get looks a facility up by exact id
func (c *StaticCatalog) Get(id string) (*entities.Facility, bool) {
	f, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return cloneFacility(f), true
}

// List returns all facilities in catalog order
func (c *StaticCatalog) List() []*entities.Facility {
	out := make([]*entities.Facility, len(c.facilities))
	for i, f := range c.facilities {
		out[i] = cloneFacility(f)
	}
	return out
}

// DoctorsForServices returns roster doctors whose department is one of services
func (c *StaticCatalog) DoctorsForServices(services []string) []entities.Doctor {
	wanted := make(map[string]struct{}, len(services))
	for _, s := range services {
		wanted[strings.ToLower(s)] = struct{}{}
	}

	var out []entities.Doctor
	for _, d := range c.doctors {
		if _, ok := wanted[strings.ToLower(d.Department)]; ok {
			out = append(out, cloneDoctor(d.Doctor))
		}
	}
	return out
}

func cloneFacility(f *entities.Facility) *entities.Facility {
	cp := *f
	cp.Services = append([]string(nil), f.Services...)
	if f.DistanceKm != nil {
		d := *f.DistanceKm
		cp.DistanceKm = &d
	}
	return &cp
}

func cloneDoctor(d entities.Doctor) entities.Doctor {
	d.Specializations = append([]string(nil), d.Specializations...)
	d.Availability.Days = append([]string(nil), d.Availability.Days...)
	d.Availability.TimeSlots = append([]string(nil), d.Availability.TimeSlots...)
	return d
}
