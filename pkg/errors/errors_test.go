package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{NotFound("appointment", nil), http.StatusNotFound},
		{BadRequest("bad", nil), http.StatusBadRequest},
		{Unauthorized(nil), http.StatusUnauthorized},
		{Internal(nil), http.StatusInternalServerError},
		{OutOfBookingWindow("too soon"), http.StatusUnprocessableEntity},
		{OutsideAvailability(), http.StatusUnprocessableEntity},
		{AlreadyCancelled(), http.StatusUnprocessableEntity},
		{SlotUnavailable(), http.StatusConflict},
		{InvalidAppointmentType(), http.StatusBadRequest},
		{StoreUnavailable(errors.New("db down")), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.HTTPStatus(), tt.err.Message)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	assert.ErrorIs(t, SlotUnavailable(), SlotUnavailable())
	assert.NotErrorIs(t, SlotUnavailable(), OutsideAvailability())

	wrapped := StoreUnavailable(errors.New("connection refused"))
	assert.ErrorIs(t, wrapped, StoreUnavailable(nil))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrSlotUnavailable, CodeOf(SlotUnavailable()))
	assert.Equal(t, ErrInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, ErrInternal, CodeOf(nil))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	assert.ErrorIs(t, StoreUnavailable(cause), cause)
}
