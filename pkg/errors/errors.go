package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Error codes. The booking codes map one-to-one onto user-displayable
// rejection reasons; StoreUnavailable covers infrastructure faults and is
// deliberately generic towards the caller.
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrInternal

	ErrOutOfBookingWindow
	ErrOutsideAvailability
	ErrSlotUnavailable
	ErrInvalidAppointmentType
	ErrAlreadyCancelled
	ErrStoreUnavailable
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code onto a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest, ErrInvalidAppointmentType:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrOutOfBookingWindow, ErrOutsideAvailability, ErrAlreadyCancelled:
		return http.StatusUnprocessableEntity
	case ErrSlotUnavailable:
		return http.StatusConflict
	case ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Is lets errors.Is match two AppErrors by code.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// CodeOf extracts the error code, or ErrInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

func New(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{Code: ErrNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{Code: ErrBadRequest, Message: message, Err: err}
}

func Unauthorized(err error) *AppError {
	return &AppError{Code: ErrUnauthorized, Message: "unauthorized", Err: err}
}

func Internal(err error) *AppError {
	return &AppError{Code: ErrInternal, Message: "internal server error", Err: err}
}

// OutOfBookingWindow rejects times violating minimum notice or the maximum
// advance-booking horizon.
func OutOfBookingWindow(message string) *AppError {
	return &AppError{Code: ErrOutOfBookingWindow, Message: message}
}

// OutsideAvailability rejects times not covered by any resolved open
// interval.
func OutsideAvailability() *AppError {
	return &AppError{Code: ErrOutsideAvailability, Message: "the requested time is outside the doctor's availability"}
}

// SlotUnavailable rejects a conflicting booking. The same message is used
// whether the conflict was caught at pre-check or at commit time, so the
// caller cannot tell a race from an ordinary rejection.
func SlotUnavailable() *AppError {
	return &AppError{Code: ErrSlotUnavailable, Message: "the requested time is no longer available"}
}

func InvalidAppointmentType() *AppError {
	return &AppError{Code: ErrInvalidAppointmentType, Message: "unknown or inactive appointment type"}
}

func AlreadyCancelled() *AppError {
	return &AppError{Code: ErrAlreadyCancelled, Message: "the appointment has already been cancelled"}
}

// StoreUnavailable wraps an infrastructure fault. Full detail stays
// server-side; the message shown to users is generic and retryable.
func StoreUnavailable(err error) *AppError {
	return &AppError{Code: ErrStoreUnavailable, Message: "service temporarily unavailable, please retry", Err: err}
}
