package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/repositories"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/dentalbooking/backend/pkg/errors"
)

const bookingAttemptsTable = "booking_attempts"

const bookingAttemptsSchema = `CREATE TABLE IF NOT EXISTS booking_attempts (
	id TEXT PRIMARY KEY,
	facility_id TEXT NOT NULL,
	patient_id TEXT,
	patient_email TEXT NOT NULL,
	department TEXT NOT NULL,
	doctor_id TEXT NOT NULL,
	appointment_date TEXT NOT NULL,
	appointment_time TEXT NOT NULL,
	outcome TEXT NOT NULL,
	reused_patient BOOLEAN NOT NULL DEFAULT FALSE,
	failure_type TEXT,
	message TEXT,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_booking_attempts_facility ON booking_attempts (facility_id, created_at DESC);`

var bookingAttemptColumns = []interface{}{
	"id", "facility_id", "patient_id", "patient_email", "department", "doctor_id",
	"appointment_date", "appointment_time", "outcome", "reused_patient",
	"failure_type", "message", "created_at",
}

// BookingAuditAdapter stores booking attempts in Postgres
type BookingAuditAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookingAuditAdapter creates a new booking audit adapter
func NewBookingAuditAdapter(client *postgres.Client) *BookingAuditAdapter {
	return &BookingAuditAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var _ repositories.BookingAuditRepository = (*BookingAuditAdapter)(nil)

// EnsureSchema creates the audit table when missing
func (a *BookingAuditAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.client.DB().ExecContext(ctx, bookingAttemptsSchema); err != nil {
		return apperrors.NewInternalError("failed to create booking_attempts table", err)
	}
	return nil
}

// Record inserts one attempt, filling ID and CreatedAt when unset
func (a *BookingAuditAdapter) Record(ctx context.Context, attempt *entities.BookingAttempt) error {
	if attempt == nil {
		return apperrors.NewInternalError("booking attempt is nil", fmt.Errorf("booking attempt is nil"))
	}
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	record := goqu.Record{
		"id":               attempt.ID,
		"facility_id":      attempt.FacilityID,
		"patient_id":       sql.NullString{String: attempt.PatientID, Valid: attempt.PatientID != ""},
		"patient_email":    attempt.PatientEmail,
		"department":       attempt.Department,
		"doctor_id":        attempt.DoctorID,
		"appointment_date": attempt.AppointmentDate,
		"appointment_time": attempt.AppointmentTime,
		"outcome":          string(attempt.Outcome),
		"reused_patient":   attempt.ReusedPatient,
		"failure_type":     sql.NullString{String: attempt.FailureType, Valid: attempt.FailureType != ""},
		"message":          sql.NullString{String: attempt.Message, Valid: attempt.Message != ""},
		"created_at":       attempt.CreatedAt,
	}

	query, args, err := a.db.Insert(bookingAttemptsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build booking attempt insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to record booking attempt", err)
	}
	return nil
}

// ListByFacility returns the newest attempts first
func (a *BookingAuditAdapter) ListByFacility(ctx context.Context, facilityID string, limit int) ([]*entities.BookingAttempt, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args, err := a.db.From(bookingAttemptsTable).
		Select(bookingAttemptColumns...).
		Where(goqu.Ex{"facility_id": facilityID}).
		Order(goqu.I("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build booking attempt query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list booking attempts", err)
	}
	defer rows.Close()

	attempts := []*entities.BookingAttempt{}
	for rows.Next() {
		var (
			attempt     entities.BookingAttempt
			outcome     string
			patientID   sql.NullString
			failureType sql.NullString
			message     sql.NullString
		)
		if err := rows.Scan(
			&attempt.ID, &attempt.FacilityID, &patientID, &attempt.PatientEmail,
			&attempt.Department, &attempt.DoctorID, &attempt.AppointmentDate,
			&attempt.AppointmentTime, &outcome, &attempt.ReusedPatient,
			&failureType, &message, &attempt.CreatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan booking attempt", err)
		}
		attempt.Outcome = entities.BookingOutcome(outcome)
		attempt.PatientID = patientID.String
		attempt.FailureType = failureType.String
		attempt.Message = message.String
		attempts = append(attempts, &attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate booking attempts", err)
	}

	return attempts, nil
}
