package entities

import (
	"time"
)

// BookingOutcome classifies how a submission ended
type BookingOutcome string

const (
	BookingOutcomeConfirmed       BookingOutcome = "confirmed"
	BookingOutcomePendingApproval BookingOutcome = "pending_approval"
	BookingOutcomeRejected        BookingOutcome = "rejected"
	BookingOutcomeFailed          BookingOutcome = "failed"
)

// BookingAttempt is the audit record of one submission
type BookingAttempt struct {
	ID              string         `json:"id" db:"id"`
	FacilityID      string         `json:"facility_id" db:"facility_id"`
	PatientID       string         `json:"patient_id" db:"patient_id"`
	PatientEmail    string         `json:"patient_email" db:"patient_email"`
	Department      string         `json:"department" db:"department"`
	DoctorID        string         `json:"doctor_id" db:"doctor_id"`
	AppointmentDate string         `json:"appointment_date" db:"appointment_date"`
	AppointmentTime string         `json:"appointment_time" db:"appointment_time"`
	Outcome         BookingOutcome `json:"outcome" db:"outcome"`
	ReusedPatient   bool           `json:"reused_patient" db:"reused_patient"`
	FailureType     string         `json:"failure_type" db:"failure_type"`
	Message         string         `json:"message" db:"message"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
}

// OutcomeForStatus maps a booking status to an audit outcome
func OutcomeForStatus(status string) BookingOutcome {
	if status == BookingStatusPendingApproval {
		return BookingOutcomePendingApproval
	}
	return BookingOutcomeConfirmed
}
