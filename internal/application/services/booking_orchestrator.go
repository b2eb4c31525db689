package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/repositories"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/dentalbooking/backend/pkg/errors"
)

// Messages surfaced by the booking flow
const (
	MsgExistingPatient     = "Using existing patient record"
	MsgPatientUnresolvable = "Patient already exists but could not retrieve record"
	MsgMissingPatientID    = "Failed to get patient ID"
	MsgBookingSubmitted    = "Appointment request submitted!"
	MsgNoResponse          = "No response from server. Please check your connection."
	MsgBookingFailed       = "Failed to book appointment"
)

// BookingOrchestrator registers (or reuses) a patient and books an
// appointment. Registration and booking run strictly in sequence and
// nothing is retried apart from the duplicate-email lookup.
type BookingOrchestrator struct {
	registry  providers.PatientRegistry
	booker    providers.AppointmentBooker
	validator *BookingFormValidator
	audit     repositories.BookingAuditRepository
	publisher providers.EventPublisher
	metrics   *observability.Metrics
}

// BookingOrchestratorOption configures optional collaborators
type BookingOrchestratorOption func(*BookingOrchestrator)

// WithBookingAudit records every submission outcome
func WithBookingAudit(audit repositories.BookingAuditRepository) BookingOrchestratorOption {
	return func(o *BookingOrchestrator) { o.audit = audit }
}

// WithEventPublisher publishes a BookingEvent after each submission
func WithEventPublisher(publisher providers.EventPublisher) BookingOrchestratorOption {
	return func(o *BookingOrchestrator) { o.publisher = publisher }
}

// WithBookingMetrics counts outcomes
func WithBookingMetrics(metrics *observability.Metrics) BookingOrchestratorOption {
	return func(o *BookingOrchestrator) { o.metrics = metrics }
}

// WithClock overrides the clock used for the not-in-the-past check
func WithClock(now func() time.Time) BookingOrchestratorOption {
	return func(o *BookingOrchestrator) { o.validator = NewBookingFormValidator(now) }
}

// NewBookingOrchestrator creates a new booking orchestrator
func NewBookingOrchestrator(registry providers.PatientRegistry, booker providers.AppointmentBooker, opts ...BookingOrchestratorOption) *BookingOrchestrator {
	o := &BookingOrchestrator{
		registry:  registry,
		booker:    booker,
		validator: NewBookingFormValidator(time.Now),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks the form without contacting any service
func (o *BookingOrchestrator) Validate(form entities.BookingForm) error {
	return o.validator.Validate(form)
}

// SubmitBooking runs register then book for a validated form
func (o *BookingOrchestrator) SubmitBooking(ctx context.Context, facilityID string, form entities.BookingForm) (*entities.BookingResult, error) {
	ctx, span := observability.StartSpan(ctx, "BookingOrchestrator.SubmitBooking")
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("facility.id", facilityID),
		attribute.String("booking.department", form.Department),
	)

	facilityID = strings.TrimSpace(facilityID)
	if facilityID == "" {
		return nil, apperrors.NewValidationError("facility id is required")
	}

	if err := o.validator.Validate(form); err != nil {
		o.recordOutcome(ctx, facilityID, form, nil, err)
		return nil, err
	}

	patientID, notices, reused, err := o.resolvePatient(ctx, facilityID, form)
	if err != nil {
		observability.RecordError(span, err)
		o.recordOutcome(ctx, facilityID, form, nil, err)
		return nil, err
	}

	confirmation, err := o.booker.BookAppointment(ctx, facilityID, entities.AppointmentRequest{
		PatientID:       patientID,
		UserRole:        entities.PatientRoleName,
		Department:      form.Department,
		AppointmentDate: form.AppointmentDate,
		AppointmentTime: form.AppointmentTime,
		DoctorID:        form.Doctor,
	})
	if err != nil {
		// The patient record created above is intentionally left in place.
		failure := bookingFailure(err)
		observability.RecordError(span, failure)
		o.recordOutcome(ctx, facilityID, form, &entities.BookingResult{PatientID: patientID, ReusedPatient: reused}, failure)
		return nil, failure
	}
	if confirmation == nil {
		confirmation = &entities.AppointmentConfirmation{}
	}

	message := confirmation.Message
	if message == "" {
		message = MsgBookingSubmitted
	}

	result := &entities.BookingResult{
		FacilityID:    facilityID,
		PatientID:     patientID,
		ReusedPatient: reused,
		Status:        confirmation.Status,
		Message:       message,
		Confirmation:  confirmation.Raw,
		Notices:       append(notices, entities.Notice{Level: entities.NoticeSuccess, Message: message}),
	}

	observability.LoggerFromContext(ctx).Info().
		Str("facility_id", facilityID).
		Str("patient_id", patientID).
		Bool("reused_patient", reused).
		Str("status", result.Status).
		Msg("appointment booked")

	o.recordOutcome(ctx, facilityID, form, result, nil)
	return result, nil
}

// resolvePatient registers the patient, falling back to an email search
// only when registration failed on a duplicate email.
func (o *BookingOrchestrator) resolvePatient(ctx context.Context, facilityID string, form entities.BookingForm) (string, []entities.Notice, bool, error) {
	age, err := strconv.Atoi(strings.TrimSpace(form.Age))
	if err != nil {
		return "", nil, false, apperrors.NewValidationError(MissingFieldsMessage, apperrors.FieldError{
			Field:   string(entities.FieldAge),
			Message: "age must be a whole number",
		})
	}

	patientID, err := o.registry.RegisterPatient(ctx, facilityID, entities.PatientRegistration{
		UserRole: entities.PatientRoleName,
		UserID:   facilityID,
		Name:     form.FullName(),
		Phone:    form.Phone,
		Email:    form.Email,
		Age:      age,
		Gender:   form.Gender,
	})
	if err == nil {
		if patientID == "" {
			return "", nil, false, apperrors.NewExternalError(MsgMissingPatientID, nil)
		}
		return patientID, nil, false, nil
	}

	upstreamErr, ok := apperrors.AsUpstreamError(err)
	if !ok || !upstreamErr.IsDuplicateEmail() {
		return "", nil, false, bookingFailure(err)
	}

	logger := observability.LoggerFromContext(ctx)
	logger.Info().Str("facility_id", facilityID).Msg("patient already registered, searching by email")

	patients, searchErr := o.registry.SearchPatients(ctx, facilityID, form.Email)
	if searchErr != nil {
		logger.Warn().Err(searchErr).Str("facility_id", facilityID).Msg("patient search failed")
		return "", nil, false, &apperrors.AppError{Type: apperrors.ErrorTypeConflict, Message: MsgPatientUnresolvable, Err: searchErr}
	}

	existing, found := pickPatient(patients, form.Email)
	if !found {
		return "", nil, false, apperrors.NewConflictError(MsgPatientUnresolvable)
	}

	return existing.ID, []entities.Notice{{Level: entities.NoticeInfo, Message: MsgExistingPatient}}, true, nil
}

// pickPatient prefers a record whose email matches, else the first one with an id
func pickPatient(patients []entities.Patient, email string) (entities.Patient, bool) {
	var first *entities.Patient
	for i := range patients {
		if patients[i].ID == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(patients[i].Email), strings.TrimSpace(email)) {
			return patients[i], true
		}
		if first == nil {
			first = &patients[i]
		}
	}
	if first == nil {
		return entities.Patient{}, false
	}
	return *first, true
}

// bookingFailure converts a register or book error into the message shown
// to the patient.
func bookingFailure(err error) error {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}

	if upstreamErr, ok := apperrors.AsUpstreamError(err); ok {
		if upstreamErr.NoResponse() {
			return apperrors.NewUnavailableError(MsgNoResponse, err)
		}
		message := upstreamErr.Message
		if message == "" {
			message = upstreamErr.ErrorText
		}
		if message == "" {
			message = fmt.Sprintf("Server error: %d", upstreamErr.StatusCode)
		}
		return apperrors.NewExternalError(message, err)
	}

	message := MsgBookingFailed
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return apperrors.NewExternalError(message, err)
}

// recordOutcome writes the audit row and publishes the event. Both are
// best-effort and never change the booking result.
func (o *BookingOrchestrator) recordOutcome(ctx context.Context, facilityID string, form entities.BookingForm, result *entities.BookingResult, failure error) {
	outcome := entities.BookingOutcomeFailed
	failureType := ""
	message := ""
	switch {
	case failure == nil && result != nil:
		outcome = entities.OutcomeForStatus(result.Status)
		message = result.Message
	case apperrors.IsType(failure, apperrors.ErrorTypeValidation):
		outcome = entities.BookingOutcomeRejected
	}
	if appErr, ok := apperrors.AsAppError(failure); ok {
		failureType = string(appErr.Type)
		message = appErr.Message
	}

	observability.RecordBookingOutcome(ctx, o.metrics, string(outcome))

	// Side effects must outlive a cancelled request.
	ctx = context.WithoutCancel(ctx)
	logger := observability.LoggerFromContext(ctx)

	if o.audit != nil {
		attempt := &entities.BookingAttempt{
			FacilityID:      facilityID,
			PatientEmail:    form.Email,
			Department:      form.Department,
			DoctorID:        form.Doctor,
			AppointmentDate: form.AppointmentDate,
			AppointmentTime: form.AppointmentTime,
			Outcome:         outcome,
			FailureType:     failureType,
			Message:         message,
		}
		if result != nil {
			attempt.PatientID = result.PatientID
			attempt.ReusedPatient = result.ReusedPatient
		}
		if err := o.audit.Record(ctx, attempt); err != nil {
			logger.Warn().Err(err).Str("facility_id", facilityID).Msg("failed to record booking attempt")
		}
	}

	if o.publisher == nil || outcome == entities.BookingOutcomeRejected {
		return
	}

	event := entities.NewBookingEvent(facilityID, bookingEventType(outcome), form)
	if result != nil {
		event.PatientID = result.PatientID
		event.ReusedPatient = result.ReusedPatient
	}
	if failure != nil {
		event.Reason = message
	}
	for _, channel := range []string{providers.GetFacilityChannel(facilityID), providers.EventChannelBookings} {
		if err := o.publisher.Publish(ctx, channel, event); err != nil {
			logger.Warn().Err(err).Str("channel", channel).Msg("failed to publish booking event")
		}
	}
}

func bookingEventType(outcome entities.BookingOutcome) entities.BookingEventType {
	switch outcome {
	case entities.BookingOutcomeConfirmed:
		return entities.BookingEventTypeConfirmed
	case entities.BookingOutcomePendingApproval:
		return entities.BookingEventTypePendingApproval
	default:
		return entities.BookingEventTypeFailed
	}
}
