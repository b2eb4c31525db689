package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/dentalbooking/backend/pkg/errors"
)

// MsgSessionNotFound is returned for unknown or expired sessions
const MsgSessionNotFound = "booking session not found"

// SessionStore keeps booking sessions in memory and expires idle ones
type SessionStore struct {
	facilities   FacilityLookup
	availability AvailabilitySource
	submitter    BookingSubmitter
	ttl          time.Duration
	now          func() time.Time

	mu       sync.Mutex
	sessions map[string]*BookingSession
}

// NewSessionStore creates a session store. Sessions idle for longer than
// ttl are closed by Sweep.
func NewSessionStore(facilities FacilityLookup, availability AvailabilitySource, submitter BookingSubmitter, ttl time.Duration) *SessionStore {
	return &SessionStore{
		facilities:   facilities,
		availability: availability,
		submitter:    submitter,
		ttl:          ttl,
		now:          time.Now,
		sessions:     make(map[string]*BookingSession),
	}
}

// Open resolves the facility, loads its departments and starts a session.
// A facility that does not exist is returned as a NOT_FOUND error.
func (s *SessionStore) Open(ctx context.Context, facilityID string) (*BookingSession, error) {
	resolution, err := s.facilities.Resolve(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	departments := s.availability.ListDepartments(ctx, resolution.Facility.ID)

	session := newBookingSession(
		context.Background(),
		uuid.NewString(),
		resolution.Facility,
		departments.Options,
		resolution.Notices,
		s.availability,
		s.submitter,
		s.now,
	)

	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	observability.LoggerFromContext(ctx).Debug().
		Str("session_id", session.ID()).
		Str("facility_id", resolution.Facility.ID).
		Msg("booking session opened")
	return session, nil
}

// Get returns a live session
func (s *SessionStore) Get(id string) (*BookingSession, error) {
	s.mu.Lock()
	session, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.NewNotFoundError(MsgSessionNotFound)
	}
	session.touch()
	return session, nil
}

// Close closes and forgets a session
func (s *SessionStore) Close(id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return apperrors.NewNotFoundError(MsgSessionNotFound)
	}
	session.Close()
	return nil
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes sessions idle for longer than the ttl and returns how many
// were removed
func (s *SessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	var expired []*BookingSession
	s.mu.Lock()
	for id, session := range s.sessions {
		if session.idleSince().Before(cutoff) {
			expired = append(expired, session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range expired {
		session.Close()
	}
	return len(expired)
}

// Run sweeps periodically until ctx is cancelled, then closes every session
func (s *SessionStore) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger := observability.GetLogger()
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.Debug().Int("expired", n).Msg("expired idle booking sessions")
			}
		}
	}
}

func (s *SessionStore) closeAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*BookingSession)
	s.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}
