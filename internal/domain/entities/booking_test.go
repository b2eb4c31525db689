package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingForm_SetDepartmentClearsDoctor(t *testing.T) {
	form := BookingForm{}

	assert.NoError(t, form.Set(FieldDepartment, "Orthodontics"))
	assert.NoError(t, form.Set(FieldDoctor, "doc-7"))
	assert.Equal(t, "doc-7", form.Doctor)

	assert.NoError(t, form.Set(FieldDepartment, "Oral Surgery"))
	assert.Equal(t, "Oral Surgery", form.Department)
	assert.Empty(t, form.Doctor)
}

func TestBookingForm_SetOtherFieldsKeepDoctor(t *testing.T) {
	form := BookingForm{Department: "Orthodontics", Doctor: "doc-7"}

	assert.NoError(t, form.Set(FieldAppointmentTime, "09:00 - 12:00"))
	assert.NoError(t, form.Set(FieldGender, "Female"))

	assert.Equal(t, "doc-7", form.Doctor)
	assert.Equal(t, GenderFemale, form.Gender)
}

func TestBookingForm_SetUnknownField(t *testing.T) {
	form := BookingForm{}

	err := form.Set("insurance", "acme")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestBookingForm_FullName(t *testing.T) {
	form := BookingForm{FirstName: " Jane ", LastName: "Doe "}
	assert.Equal(t, "Jane Doe", form.FullName())

	form = BookingForm{FirstName: "Cher"}
	assert.Equal(t, "Cher", form.FullName())
}

func TestBookingResult_Title(t *testing.T) {
	pending := &BookingResult{Status: BookingStatusPendingApproval}
	assert.True(t, pending.PendingApproval())
	assert.Equal(t, "Request Submitted!", pending.Title())

	confirmed := &BookingResult{Status: "confirmed"}
	assert.False(t, confirmed.PendingApproval())
	assert.Equal(t, "Confirmed!", confirmed.Title())
}
