package repositories

import (
	"context"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
)

// BookingAuditRepository stores the audit trail of booking submissions
type BookingAuditRepository interface {
	// Record stores one attempt
	Record(ctx context.Context, attempt *entities.BookingAttempt) error

	// ListByFacility returns the most recent attempts for a facility
	ListByFacility(ctx context.Context, facilityID string, limit int) ([]*entities.BookingAttempt, error)
}
