package services

import (
	"context"
	"strings"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/observability"
)

// DepartmentListing is the department picker content of a facility.
// Options falls back to the default department when Departments is empty.
type DepartmentListing struct {
	Departments []string `json:"departments"`
	Options     []string `json:"options"`
	Degraded    bool     `json:"degraded,omitempty"`
}

// DoctorListing holds the doctors bookable in one department
type DoctorListing struct {
	Department string            `json:"department"`
	Doctors    []entities.Doctor `json:"doctors"`
	Degraded   bool              `json:"degraded,omitempty"`
}

// AvailabilityLoader loads departments and doctors of a facility. Failures
// degrade to empty lists and are only logged.
type AvailabilityLoader struct {
	provider providers.AvailabilityProvider
}

// NewAvailabilityLoader creates a new availability loader
func NewAvailabilityLoader(provider providers.AvailabilityProvider) *AvailabilityLoader {
	return &AvailabilityLoader{provider: provider}
}

// ListDepartments returns the facility's departments
func (l *AvailabilityLoader) ListDepartments(ctx context.Context, facilityID string) *DepartmentListing {
	ctx, span := observability.StartSpan(ctx, "AvailabilityLoader.ListDepartments")
	defer span.End()

	departments, err := l.provider.ListDepartments(ctx, facilityID)
	if err != nil {
		observability.RecordError(span, err)
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("facility_id", facilityID).Msg("failed to load departments")
		return &DepartmentListing{
			Departments: []string{},
			Options:     entities.DepartmentChoices(nil),
			Degraded:    true,
		}
	}
	if departments == nil {
		departments = []string{}
	}

	return &DepartmentListing{
		Departments: departments,
		Options:     entities.DepartmentChoices(departments),
	}
}

// ListDoctors returns doctors whose specializations include department.
// An empty department short-circuits without a remote call.
func (l *AvailabilityLoader) ListDoctors(ctx context.Context, facilityID, department string) *DoctorListing {
	department = strings.TrimSpace(department)
	listing := &DoctorListing{Department: department, Doctors: []entities.Doctor{}}
	if department == "" {
		return listing
	}

	ctx, span := observability.StartSpan(ctx, "AvailabilityLoader.ListDoctors")
	defer span.End()

	records, err := l.provider.ListDoctorAvailability(ctx, facilityID, department)
	if err != nil {
		observability.RecordError(span, err)
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("facility_id", facilityID).
			Str("department", department).
			Msg("failed to load doctors")
		listing.Degraded = true
		return listing
	}

	for _, record := range records {
		doctor := doctorFromRecord(record, department)
		if !doctor.HasSpecialization(department) {
			continue
		}
		listing.Doctors = append(listing.Doctors, doctor)
	}
	return listing
}

func doctorFromRecord(record providers.DoctorRecord, department string) entities.Doctor {
	doctor := entities.Doctor{
		ID:              record.ID,
		Name:            strings.TrimSpace(record.Name),
		Specializations: record.Specializations,
		Experience:      strings.TrimSpace(record.Experience),
		Rating:          entities.DefaultDoctorRating,
		Image:           record.Image,
		Availability:    entities.AvailabilityFromWindows(record.Windows),
	}
	if doctor.Name == "" {
		doctor.Name = entities.UnnamedDoctor
	}
	if doctor.Experience == "" {
		doctor.Experience = entities.DefaultDoctorExperience
	}
	if record.Rating != nil {
		doctor.Rating = *record.Rating
	}
	if len(record.Specializations) > 0 {
		doctor.Specialization = strings.Join(record.Specializations, ", ")
	} else {
		doctor.Specialization = department
	}
	return doctor
}
