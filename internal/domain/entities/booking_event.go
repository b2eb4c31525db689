package entities

import (
	"time"

	"github.com/google/uuid"
)

// BookingEventType represents the type of booking event
type BookingEventType string

const (
	BookingEventTypeConfirmed       BookingEventType = "booking_confirmed"
	BookingEventTypePendingApproval BookingEventType = "booking_pending_approval"
	BookingEventTypeFailed          BookingEventType = "booking_failed"
)

// BookingEvent is published after every booking submission that reached
// the patient service
type BookingEvent struct {
	ID              string           `json:"id"`
	FacilityID      string           `json:"facility_id"`
	EventType       BookingEventType `json:"event_type"`
	Timestamp       time.Time        `json:"timestamp"`
	PatientID       string           `json:"patient_id,omitempty"`
	ReusedPatient   bool             `json:"reused_patient"`
	DoctorID        string           `json:"doctor_id"`
	Department      string           `json:"department"`
	AppointmentDate string           `json:"appointment_date"`
	AppointmentTime string           `json:"appointment_time"`
	Reason          string           `json:"reason,omitempty"`
}

// NewBookingEvent creates a booking event for the submitted form
func NewBookingEvent(facilityID string, eventType BookingEventType, form BookingForm) *BookingEvent {
	return &BookingEvent{
		ID:              uuid.NewString(),
		FacilityID:      facilityID,
		EventType:       eventType,
		Timestamp:       time.Now().UTC(),
		DoctorID:        form.Doctor,
		Department:      form.Department,
		AppointmentDate: form.AppointmentDate,
		AppointmentTime: form.AppointmentTime,
	}
}
