package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/repositories"
)

// Mocks

type MockClinicDirectory struct {
	mock.Mock
}

func (m *MockClinicDirectory) ViewClinic(ctx context.Context, facilityID string) (*entities.Facility, error) {
	args := m.Called(ctx, facilityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Facility), args.Error(1)
}

func (m *MockClinicDirectory) NearbyClinics(ctx context.Context, point entities.Coordinates, radiusKm int) ([]*entities.Facility, error) {
	args := m.Called(ctx, point, radiusKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Facility), args.Error(1)
}

type MockAvailabilityProvider struct {
	mock.Mock
}

func (m *MockAvailabilityProvider) ListDepartments(ctx context.Context, facilityID string) ([]string, error) {
	args := m.Called(ctx, facilityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAvailabilityProvider) ListDoctorAvailability(ctx context.Context, facilityID, department string) ([]providers.DoctorRecord, error) {
	args := m.Called(ctx, facilityID, department)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]providers.DoctorRecord), args.Error(1)
}

type MockPatientRegistry struct {
	mock.Mock
}

func (m *MockPatientRegistry) RegisterPatient(ctx context.Context, facilityID string, registration entities.PatientRegistration) (string, error) {
	args := m.Called(ctx, facilityID, registration)
	return args.String(0), args.Error(1)
}

func (m *MockPatientRegistry) SearchPatients(ctx context.Context, facilityID, email string) ([]entities.Patient, error) {
	args := m.Called(ctx, facilityID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Patient), args.Error(1)
}

type MockAppointmentBooker struct {
	mock.Mock
}

func (m *MockAppointmentBooker) BookAppointment(ctx context.Context, facilityID string, request entities.AppointmentRequest) (*entities.AppointmentConfirmation, error) {
	args := m.Called(ctx, facilityID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AppointmentConfirmation), args.Error(1)
}

type MockBookingAuditRepository struct {
	mock.Mock
}

func (m *MockBookingAuditRepository) Record(ctx context.Context, attempt *entities.BookingAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockBookingAuditRepository) ListByFacility(ctx context.Context, facilityID string, limit int) ([]*entities.BookingAttempt, error) {
	args := m.Called(ctx, facilityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BookingAttempt), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, channel string, event *entities.BookingEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	return nil
}

type MockFacilitySearch struct {
	mock.Mock
}

func (m *MockFacilitySearch) Index(ctx context.Context, facilities []*entities.Facility) error {
	args := m.Called(ctx, facilities)
	return args.Error(0)
}

func (m *MockFacilitySearch) Search(ctx context.Context, query repositories.FacilitySearchQuery) ([]string, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// Fixtures

var fixedNow = time.Date(2026, 10, 17, 15, 4, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func validForm() entities.BookingForm {
	return entities.BookingForm{
		FirstName:       "Ana",
		LastName:        "Silva",
		Email:           "ana@example.com",
		Phone:           "9876543210",
		Age:             "34",
		Gender:          entities.GenderFemale,
		Department:      "Orthodontics",
		Doctor:          "doc-1",
		AppointmentDate: "2026-10-20",
		AppointmentTime: "09:00 - 12:00",
	}
}

func floatPtr(v float64) *float64 { return &v }
