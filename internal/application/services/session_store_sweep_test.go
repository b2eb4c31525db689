package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
)

type staticLookup struct{}

func (staticLookup) Resolve(ctx context.Context, id string) (*FacilityResolution, error) {
	return &FacilityResolution{Facility: &entities.Facility{ID: id}, Source: FacilitySourceCatalog}, nil
}

type emptyAvailability struct{}

func (emptyAvailability) ListDepartments(ctx context.Context, facilityID string) *DepartmentListing {
	return &DepartmentListing{Departments: []string{}, Options: entities.DepartmentChoices(nil)}
}

func (emptyAvailability) ListDoctors(ctx context.Context, facilityID, department string) *DoctorListing {
	return &DoctorListing{Department: department, Doctors: []entities.Doctor{}}
}

func TestSessionStore_SweepExpiresIdleSessions(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	store := NewSessionStore(staticLookup{}, emptyAvailability{}, nil, 30*time.Minute)
	store.now = func() time.Time { return now }

	idle, err := store.Open(context.Background(), "1")
	require.NoError(t, err)
	active, err := store.Open(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, []string{entities.DefaultDepartment}, idle.Snapshot().Departments)

	now = now.Add(20 * time.Minute)
	_, err = store.Get(active.ID())
	require.NoError(t, err)

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(idle.ID())
	assert.Error(t, err)
	_, err = store.Get(active.ID())
	assert.NoError(t, err)
}

func TestSessionStore_SweepDisabledWithoutTTL(t *testing.T) {
	store := NewSessionStore(staticLookup{}, emptyAvailability{}, nil, 0)
	_, err := store.Open(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, 0, store.Sweep())
	assert.Equal(t, 1, store.Len())
}
