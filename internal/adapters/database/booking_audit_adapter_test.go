package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/dentalbooking/backend/pkg/errors"
)

func setupMockDB(t *testing.T) (*BookingAuditAdapter, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return NewBookingAuditAdapter(postgres.NewFromDB(mockDB)), mock
}

func TestBookingAuditAdapter_Record(t *testing.T) {
	adapter, mock := setupMockDB(t)

	mock.ExpectExec(`INSERT INTO "booking_attempts"`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	attempt := &entities.BookingAttempt{
		FacilityID:      "1",
		PatientEmail:    "ana@example.com",
		Department:      "Orthodontics",
		DoctorID:        "d1",
		AppointmentDate: "2026-11-02",
		AppointmentTime: "09:00 - 12:00",
		Outcome:         entities.BookingOutcomeConfirmed,
	}
	err := adapter.Record(context.Background(), attempt)

	require.NoError(t, err)
	assert.NotEmpty(t, attempt.ID)
	assert.False(t, attempt.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingAuditAdapter_RecordError(t *testing.T) {
	adapter, mock := setupMockDB(t)

	mock.ExpectExec(`INSERT INTO "booking_attempts"`).
		WillReturnError(errors.New("connection reset"))

	err := adapter.Record(context.Background(), &entities.BookingAttempt{FacilityID: "1"})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
}

func TestBookingAuditAdapter_ListByFacility(t *testing.T) {
	adapter, mock := setupMockDB(t)
	created := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "facility_id", "patient_id", "patient_email", "department", "doctor_id",
		"appointment_date", "appointment_time", "outcome", "reused_patient",
		"failure_type", "message", "created_at",
	}).
		AddRow("a1", "1", "p1", "ana@example.com", "Orthodontics", "d1", "2026-11-02", "09:00 - 12:00", "pending_approval", true, nil, "Awaiting approval", created).
		AddRow("a2", "1", nil, "bo@example.com", "Orthodontics", "d1", "2026-11-03", "09:00 - 12:00", "failed", false, "EXTERNAL_ERROR", "Server error: 500", created.Add(-time.Hour))

	mock.ExpectQuery(`SELECT .* FROM "booking_attempts" WHERE \("facility_id" = '1'\) ORDER BY "created_at" DESC LIMIT 5`).
		WillReturnRows(rows)

	attempts, err := adapter.ListByFacility(context.Background(), "1", 5)

	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, entities.BookingOutcomePendingApproval, attempts[0].Outcome)
	assert.True(t, attempts[0].ReusedPatient)
	assert.Equal(t, "", attempts[1].PatientID)
	assert.Equal(t, "EXTERNAL_ERROR", attempts[1].FailureType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingAuditAdapter_EnsureSchema(t *testing.T) {
	adapter, mock := setupMockDB(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS booking_attempts`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, adapter.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
