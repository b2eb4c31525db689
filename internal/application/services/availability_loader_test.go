package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/dentalbooking/backend/internal/application/services"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
)

func TestAvailabilityLoader_ListDepartments(t *testing.T) {
	t.Run("returns remote departments", func(t *testing.T) {
		provider := new(MockAvailabilityProvider)
		provider.On("ListDepartments", mock.Anything, "c1").Return([]string{"Orthodontics", "Endodontics"}, nil)

		listing := services.NewAvailabilityLoader(provider).ListDepartments(context.Background(), "c1")

		assert.Equal(t, []string{"Orthodontics", "Endodontics"}, listing.Departments)
		assert.Equal(t, []string{"Orthodontics", "Endodontics"}, listing.Options)
		assert.False(t, listing.Degraded)
	})

	t.Run("empty list offers the default department", func(t *testing.T) {
		provider := new(MockAvailabilityProvider)
		provider.On("ListDepartments", mock.Anything, "c1").Return([]string{}, nil)

		listing := services.NewAvailabilityLoader(provider).ListDepartments(context.Background(), "c1")

		assert.Empty(t, listing.Departments)
		assert.Equal(t, []string{entities.DefaultDepartment}, listing.Options)
	})

	t.Run("failure degrades silently", func(t *testing.T) {
		provider := new(MockAvailabilityProvider)
		provider.On("ListDepartments", mock.Anything, "c1").Return(nil, errors.New("boom"))

		listing := services.NewAvailabilityLoader(provider).ListDepartments(context.Background(), "c1")

		assert.Empty(t, listing.Departments)
		assert.True(t, listing.Degraded)
	})
}

func TestAvailabilityLoader_ListDoctors(t *testing.T) {
	t.Run("empty department makes no call", func(t *testing.T) {
		provider := new(MockAvailabilityProvider)

		listing := services.NewAvailabilityLoader(provider).ListDoctors(context.Background(), "c1", " ")

		assert.Empty(t, listing.Doctors)
		provider.AssertNotCalled(t, "ListDoctorAvailability", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("filters by specialization and applies defaults", func(t *testing.T) {
		provider := new(MockAvailabilityProvider)
		provider.On("ListDoctorAvailability", mock.Anything, "c1", "Orthodontics").Return([]providers.DoctorRecord{
			{
				ID:              "doc-1",
				Name:            "Dr. Rao",
				Specializations: []string{"orthodontics", "Endodontics"},
				Experience:      "12 years",
				Rating:          floatPtr(4.9),
				Windows: []entities.AvailabilityWindow{
					{Day: "Monday", StartTime: "09:00", EndTime: "12:00", Active: true},
					{Day: "Tuesday", StartTime: "14:00", EndTime: "17:00", Active: false},
				},
			},
			{ID: "doc-2", Specializations: []string{"Orthodontics"}},
			{ID: "doc-3", Name: "Dr. Wrong", Specializations: []string{"Periodontics"}},
		}, nil)

		listing := services.NewAvailabilityLoader(provider).ListDoctors(context.Background(), "c1", "Orthodontics")

		assert.Len(t, listing.Doctors, 2)

		rao := listing.Doctors[0]
		assert.Equal(t, "orthodontics, Endodontics", rao.Specialization)
		assert.Equal(t, 4.9, rao.Rating)
		assert.Equal(t, []string{"Monday"}, rao.Availability.Days)
		assert.Equal(t, []string{"09:00 - 12:00"}, rao.Availability.TimeSlots)

		unnamed := listing.Doctors[1]
		assert.Equal(t, entities.UnnamedDoctor, unnamed.Name)
		assert.Equal(t, entities.DefaultDoctorExperience, unnamed.Experience)
		assert.Equal(t, entities.DefaultDoctorRating, unnamed.Rating)
		assert.Empty(t, unnamed.Availability.Days)
	})

	t.Run("failure degrades to empty", func(t *testing.T) {
		provider := new(MockAvailabilityProvider)
		provider.On("ListDoctorAvailability", mock.Anything, "c1", "Orthodontics").Return(nil, errors.New("timeout"))

		listing := services.NewAvailabilityLoader(provider).ListDoctors(context.Background(), "c1", "Orthodontics")

		assert.Empty(t, listing.Doctors)
		assert.True(t, listing.Degraded)
	})
}
