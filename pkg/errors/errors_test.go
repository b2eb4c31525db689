package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamError_IsDuplicateEmail(t *testing.T) {
	tests := []struct {
		name string
		err  UpstreamError
		want bool
	}{
		{"mongo style error field", UpstreamError{ErrorText: `E11000 duplicate key error collection: patients index: email_1 dup key`}, true},
		{"signature in message", UpstreamError{Message: "Duplicate key on Email"}, true},
		{"duplicate key on phone", UpstreamError{ErrorText: "E11000 duplicate key error index: phone_1"}, false},
		{"unrelated email error", UpstreamError{Message: "email is invalid"}, false},
		{"empty payload", UpstreamError{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.IsDuplicateEmail())
		})
	}
}

func TestUpstreamError_Error(t *testing.T) {
	noResponse := &UpstreamError{Service: "patient-service", Operation: "register", Err: errors.New("dial tcp: refused")}
	assert.True(t, noResponse.NoResponse())
	assert.Contains(t, noResponse.Error(), "no response")

	withMessage := &UpstreamError{Service: "patient-service", Operation: "book", StatusCode: 422, Message: "slot taken"}
	assert.Equal(t, "patient-service book returned status 422: slot taken", withMessage.Error())

	notFound := &UpstreamError{Service: "auth-service", Operation: "view clinic", StatusCode: 404}
	assert.True(t, notFound.IsNotFound())
	assert.Equal(t, "auth-service view clinic returned status 404", notFound.Error())
}

func TestAsHelpers(t *testing.T) {
	wrapped := fmt.Errorf("booking: %w", NewConflictError("already booked"))
	appErr, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrorTypeConflict, appErr.Type)
	assert.True(t, IsType(wrapped, ErrorTypeConflict))
	assert.False(t, IsType(wrapped, ErrorTypeNotFound))

	upstream := NewExternalError("register failed", &UpstreamError{Service: "patient-service", StatusCode: 500})
	got, ok := AsUpstreamError(upstream)
	assert.True(t, ok)
	assert.Equal(t, 500, got.StatusCode)
}
