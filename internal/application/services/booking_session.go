package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/dentalbooking/backend/pkg/errors"
)

// FacilityLookup resolves a facility by id
type FacilityLookup interface {
	Resolve(ctx context.Context, id string) (*FacilityResolution, error)
}

// AvailabilitySource lists departments and doctors of a facility
type AvailabilitySource interface {
	ListDepartments(ctx context.Context, facilityID string) *DepartmentListing
	ListDoctors(ctx context.Context, facilityID, department string) *DoctorListing
}

// BookingSubmitter submits a completed booking form
type BookingSubmitter interface {
	SubmitBooking(ctx context.Context, facilityID string, form entities.BookingForm) (*entities.BookingResult, error)
}

// Session state errors
const (
	MsgSessionClosed    = "booking session is closed"
	MsgSessionCompleted = "booking has already been submitted"
	MsgSessionBusy      = "booking submission already in progress"
)

// BookingSessionView is a consistent snapshot of a session
type BookingSessionView struct {
	ID              string                  `json:"id"`
	FacilityID      string                  `json:"facilityId"`
	Facility        *entities.Facility      `json:"facility"`
	Departments     []string                `json:"departments"`
	Form            entities.BookingForm    `json:"form"`
	Doctors         []entities.Doctor       `json:"doctors"`
	SelectedDoctor  *entities.Doctor        `json:"selectedDoctor,omitempty"`
	LoadingDoctors  bool                    `json:"loadingDoctors"`
	DoctorsDegraded bool                    `json:"doctorsDegraded,omitempty"`
	Submitting      bool                    `json:"submitting"`
	Completed       bool                    `json:"completed"`
	Result          *entities.BookingResult `json:"result,omitempty"`
	Notices         []entities.Notice       `json:"notices,omitempty"`
}

// BookingSession holds the form state of one patient booking at one
// facility. Every department change bumps a generation counter; a doctor
// list is applied only if it was requested by the current generation.
type BookingSession struct {
	id          string
	facility    *entities.Facility
	departments []string
	notices     []entities.Notice

	availability AvailabilitySource
	submitter    BookingSubmitter

	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time

	mu              sync.Mutex
	form            entities.BookingForm
	doctors         []entities.Doctor
	doctorsDegraded bool
	generation      uint64
	loadingDoctors  bool
	submitting      bool
	completed       bool
	closed          bool
	result          *entities.BookingResult
	lastActive      time.Time
}

func newBookingSession(
	parent context.Context,
	id string,
	facility *entities.Facility,
	departments []string,
	notices []entities.Notice,
	availability AvailabilitySource,
	submitter BookingSubmitter,
	now func() time.Time,
) *BookingSession {
	ctx, cancel := context.WithCancel(parent)
	return &BookingSession{
		id:           id,
		facility:     facility,
		departments:  departments,
		notices:      notices,
		availability: availability,
		submitter:    submitter,
		ctx:          ctx,
		cancel:       cancel,
		now:          now,
		doctors:      []entities.Doctor{},
		lastActive:   now(),
	}
}

// ID returns the session id
func (s *BookingSession) ID() string {
	return s.id
}

// FacilityID returns the id of the facility being booked
func (s *BookingSession) FacilityID() string {
	return s.facility.ID
}

// SetField updates one form field. The returned channel is closed once any
// doctor fetch triggered by the change has finished (immediately otherwise).
func (s *BookingSession) SetField(field entities.FormField, value string) (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editableLocked(); err != nil {
		return nil, err
	}

	if err := s.form.Set(field, value); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), apperrors.FieldError{Field: string(field), Message: "unknown field"})
	}

	if field == entities.FieldDepartment {
		return s.selectDepartmentLocked(value), nil
	}
	return closedChan(), nil
}

// SelectDepartment is SetField(FieldDepartment, department)
func (s *BookingSession) SelectDepartment(department string) (<-chan struct{}, error) {
	return s.SetField(entities.FieldDepartment, department)
}

func (s *BookingSession) selectDepartmentLocked(department string) <-chan struct{} {
	s.generation++
	generation := s.generation
	s.doctors = []entities.Doctor{}
	s.doctorsDegraded = false

	if strings.TrimSpace(department) == "" {
		s.loadingDoctors = false
		return closedChan()
	}

	s.loadingDoctors = true
	done := make(chan struct{})
	facilityID := s.facility.ID
	go func() {
		defer close(done)
		listing := s.availability.ListDoctors(s.ctx, facilityID, department)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || generation != s.generation {
			return
		}
		s.doctors = listing.Doctors
		s.doctorsDegraded = listing.Degraded
		s.loadingDoctors = false
	}()
	return done
}

// Submit hands the form to the orchestrator. A successful submission
// completes the session; a failed one leaves the form editable.
func (s *BookingSession) Submit(ctx context.Context) (*entities.BookingResult, error) {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.submitting = true
	form := s.form
	facilityID := s.facility.ID
	s.mu.Unlock()

	result, err := s.submitter.SubmitBooking(ctx, facilityID, form)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	s.lastActive = s.now()
	if err != nil {
		return nil, err
	}
	s.completed = true
	s.result = result
	return result, nil
}

// Close cancels in-flight fetches; responses arriving later are dropped
func (s *BookingSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.generation++
	s.loadingDoctors = false
	s.cancel()
}

// Snapshot returns the current view of the session
func (s *BookingSession) Snapshot() BookingSessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := BookingSessionView{
		ID:              s.id,
		FacilityID:      s.facility.ID,
		Facility:        s.facility,
		Departments:     append([]string(nil), s.departments...),
		Form:            s.form,
		Doctors:         append([]entities.Doctor{}, s.doctors...),
		LoadingDoctors:  s.loadingDoctors,
		DoctorsDegraded: s.doctorsDegraded,
		Submitting:      s.submitting,
		Completed:       s.completed,
		Result:          s.result,
		Notices:         s.notices,
	}
	for i := range view.Doctors {
		if view.Doctors[i].ID == s.form.Doctor && s.form.Doctor != "" {
			doctor := view.Doctors[i]
			view.SelectedDoctor = &doctor
			break
		}
	}
	return view
}

func (s *BookingSession) editableLocked() error {
	switch {
	case s.closed:
		return apperrors.NewConflictError(MsgSessionClosed)
	case s.completed:
		return apperrors.NewConflictError(MsgSessionCompleted)
	case s.submitting:
		return apperrors.NewConflictError(MsgSessionBusy)
	}
	s.lastActive = s.now()
	return nil
}

func (s *BookingSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *BookingSession) touch() {
	s.mu.Lock()
	s.lastActive = s.now()
	s.mu.Unlock()
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
