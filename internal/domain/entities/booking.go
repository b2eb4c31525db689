package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Gender of the patient as accepted by the patient service
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// FormField names a BookingForm field
type FormField string

const (
	FieldFirstName       FormField = "firstName"
	FieldLastName        FormField = "lastName"
	FieldEmail           FormField = "email"
	FieldPhone           FormField = "phone"
	FieldAge             FormField = "age"
	FieldGender          FormField = "gender"
	FieldDepartment      FormField = "department"
	FieldDoctor          FormField = "doctor"
	FieldAppointmentDate FormField = "appointmentDate"
	FieldAppointmentTime FormField = "appointmentTime"
	FieldMessage         FormField = "message"
)

// AppointmentDateLayout is the calendar date format of BookingForm.AppointmentDate
const AppointmentDateLayout = "2006-01-02"

// MaxPatientAge is the largest age a booking form accepts
const MaxPatientAge = 150

// ErrUnknownField is returned when setting a field the form does not have
var ErrUnknownField = errors.New("unknown booking form field")

// BookingForm holds patient and appointment input collected before submission.
// Age stays a string until the form is validated.
type BookingForm struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	Age             string `json:"age" validate:"required,number,age"`
	Gender          Gender `json:"gender" validate:"required,oneof=Male Female Other"`
	Department      string `json:"department" validate:"required"`
	Doctor          string `json:"doctor" validate:"required"`
	AppointmentDate string `json:"appointmentDate" validate:"required,datetime=2006-01-02,notpast"`
	AppointmentTime string `json:"appointmentTime" validate:"required"`
	Message         string `json:"message,omitempty"`
}

// Set updates one field. Changing the department clears the selected doctor
// in the same step so a doctor from another department can never be submitted.
func (f *BookingForm) Set(field FormField, value string) error {
	switch field {
	case FieldFirstName:
		f.FirstName = value
	case FieldLastName:
		f.LastName = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldAge:
		f.Age = value
	case FieldGender:
		f.Gender = Gender(value)
	case FieldDepartment:
		f.Department = value
		f.Doctor = ""
	case FieldDoctor:
		f.Doctor = value
	case FieldAppointmentDate:
		f.AppointmentDate = value
	case FieldAppointmentTime:
		f.AppointmentTime = value
	case FieldMessage:
		f.Message = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// FullName joins first and last name the way the patient service stores it
func (f *BookingForm) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName))
}

// BookingStatusPendingApproval marks a request the clinic still has to approve.
// Any other status is treated as confirmed.
const BookingStatusPendingApproval = "pending_approval"

// NoticeLevel grades a Notice
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a non-blocking message for the patient
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// BookingResult is the outcome of a successful booking
type BookingResult struct {
	FacilityID    string         `json:"facilityId"`
	PatientID     string         `json:"patientId"`
	ReusedPatient bool           `json:"reusedPatient"`
	Status        string         `json:"status,omitempty"`
	Message       string         `json:"message"`
	Confirmation  map[string]any `json:"confirmation,omitempty"`
	Notices       []Notice       `json:"notices,omitempty"`
}

// PendingApproval reports whether the clinic must still approve the request
func (r *BookingResult) PendingApproval() bool {
	return r.Status == BookingStatusPendingApproval
}

// Title is the headline shown on the confirmation screen
func (r *BookingResult) Title() string {
	if r.PendingApproval() {
		return "Request Submitted!"
	}
	return "Confirmed!"
}
