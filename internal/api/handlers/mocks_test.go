package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/dentalbooking/backend/internal/application/services"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
)

type MockFacilityResolver struct {
	mock.Mock
}

func (m *MockFacilityResolver) Resolve(ctx context.Context, id string) (*services.FacilityResolution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.FacilityResolution), args.Error(1)
}

func (m *MockFacilityResolver) FeaturedDoctors(facility *entities.Facility) []entities.Doctor {
	args := m.Called(facility)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]entities.Doctor)
}

type MockFacilityLister struct {
	mock.Mock
}

func (m *MockFacilityLister) List(ctx context.Context, query services.ListingQuery) (*services.FacilityPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.FacilityPage), args.Error(1)
}

type MockAvailability struct {
	mock.Mock
}

func (m *MockAvailability) ListDepartments(ctx context.Context, facilityID string) *services.DepartmentListing {
	args := m.Called(ctx, facilityID)
	return args.Get(0).(*services.DepartmentListing)
}

func (m *MockAvailability) ListDoctors(ctx context.Context, facilityID, department string) *services.DoctorListing {
	args := m.Called(ctx, facilityID, department)
	return args.Get(0).(*services.DoctorListing)
}

type MockBookingSubmitter struct {
	mock.Mock
}

func (m *MockBookingSubmitter) SubmitBooking(ctx context.Context, facilityID string, form entities.BookingForm) (*entities.BookingResult, error) {
	args := m.Called(ctx, facilityID, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BookingResult), args.Error(1)
}

type MockLocationStore struct {
	mock.Mock
}

func (m *MockLocationStore) Remember(ctx context.Context, clientID string, point entities.Coordinates) error {
	return m.Called(ctx, clientID, point).Error(0)
}

func (m *MockLocationStore) Recall(ctx context.Context, clientID string) (*entities.Coordinates, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Coordinates), args.Error(1)
}

func (m *MockLocationStore) Forget(ctx context.Context, clientID string) error {
	return m.Called(ctx, clientID).Error(0)
}
