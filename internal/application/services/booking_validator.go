package services

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/dentalbooking/backend/pkg/errors"
)

// MissingFieldsMessage is the headline of a rejected booking form
const MissingFieldsMessage = "Please fill in all required fields"

// BookingFormValidator checks the submission pre-conditions of a BookingForm
type BookingFormValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewBookingFormValidator builds a validator whose "today" comes from now
func NewBookingFormValidator(now func() time.Time) *BookingFormValidator {
	if now == nil {
		now = time.Now
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	bv := &BookingFormValidator{validate: v, now: now}
	if err := v.RegisterValidation("notpast", bv.validateNotPast); err != nil {
		panic(fmt.Sprintf("failed to register notpast validator: %v", err))
	}
	if err := v.RegisterValidation("age", validateAge); err != nil {
		panic(fmt.Sprintf("failed to register age validator: %v", err))
	}
	return bv
}

// validateAge accepts whole numbers from 0 to entities.MaxPatientAge
func validateAge(fl validator.FieldLevel) bool {
	age, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
	return err == nil && age >= 0 && age <= entities.MaxPatientAge
}

// validateNotPast accepts calendar dates of today or later in the clock's zone
func (v *BookingFormValidator) validateNotPast(fl validator.FieldLevel) bool {
	now := v.now()
	day, err := time.ParseInLocation(entities.AppointmentDateLayout, fl.Field().String(), now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !day.Before(today)
}

// Validate returns a VALIDATION AppError naming every offending field
func (v *BookingFormValidator) Validate(form entities.BookingForm) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.NewInternalError("failed to validate booking form", err)
	}
	return apperrors.NewValidationError(MissingFieldsMessage, translateValidationErrors(validationErrs)...)
}

func translateValidationErrors(errs validator.ValidationErrors) []apperrors.FieldError {
	fields := make([]apperrors.FieldError, 0, len(errs))
	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "number":
			message = fmt.Sprintf("%s must be a whole number", err.Field())
		case "age":
			message = fmt.Sprintf("%s must be between 0 and %d", err.Field(), entities.MaxPatientAge)
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "notpast":
			message = fmt.Sprintf("%s cannot be in the past", err.Field())
		}

		fields = append(fields, apperrors.FieldError{
			Field:   err.Field(),
			Message: message,
		})
	}
	return fields
}
