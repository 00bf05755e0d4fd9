package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInvalidInput = "INVALID_INPUT"

	CodeRoomUnavailable         = "ROOM_UNAVAILABLE"
	CodeRegistrationNotEligible = "REGISTRATION_NOT_ELIGIBLE"
	CodeRoomNotFound            = "ROOM_NOT_FOUND"
	CodeHotelNotFound           = "HOTEL_NOT_FOUND"
	CodeRegistrationNotFound    = "REGISTRATION_NOT_FOUND"
	CodeReasonRequired          = "REASON_REQUIRED"
	CodeCapacityExceeded        = "CAPACITY_EXCEEDED"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
	return data
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

func Unavailable(service string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// RoomUnavailable is returned when the target room is already occupied.
func RoomUnavailable(hotelID, roomNumber, occupant string) *AppError {
	return &AppError{
		Code:       CodeRoomUnavailable,
		Message:    fmt.Sprintf("Room %s is already occupied", roomNumber),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"hotel_id":    hotelID,
			"room_number": roomNumber,
			"occupied_by": occupant,
		},
	}
}

// RegistrationNotEligible carries the reason the registration cannot be
// given a room (cancelled documents, already assigned, ...).
func RegistrationNotEligible(registrationID, reason string) *AppError {
	return &AppError{
		Code:       CodeRegistrationNotEligible,
		Message:    fmt.Sprintf("Registration is not eligible for room assignment: %s", reason),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"registration_id": registrationID,
			"reason":          reason,
		},
	}
}

func RoomNotFound(hotelID, roomNumber string) *AppError {
	return &AppError{
		Code:       CodeRoomNotFound,
		Message:    fmt.Sprintf("Room %s not found", roomNumber),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"hotel_id":    hotelID,
			"room_number": roomNumber,
		},
	}
}

func HotelNotFound(hotelID string) *AppError {
	return &AppError{
		Code:       CodeHotelNotFound,
		Message:    "Hotel not found",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"hotel_id": hotelID},
	}
}

func RegistrationNotFound(registrationID string) *AppError {
	return &AppError{
		Code:       CodeRegistrationNotFound,
		Message:    "Registration not found",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"registration_id": registrationID},
	}
}

func ReasonRequired() *AppError {
	return &AppError{
		Code:       CodeReasonRequired,
		Message:    "A rejection reason is required",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// CapacityExceeded is returned when more beds are assigned than the party
// has persons.
func CapacityExceeded(assigned, capacity int) *AppError {
	return &AppError{
		Code:       CodeCapacityExceeded,
		Message:    fmt.Sprintf("Assigned beds (%d) exceed party size (%d)", assigned, capacity),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"assigned": assigned,
			"capacity": capacity,
		},
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
