package entity

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindNotFound
	KindCapacity
	KindPolicy
	KindConsistency
	KindUnauthorized
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindCapacity:
		return "capacity"
	case KindPolicy:
		return "policy"
	case KindConsistency:
		return "consistency"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	default:
		return "storage"
	}
}

// Error is the single error type crossing the service boundary.
// Two errors are the same for errors.Is when their codes match.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func NewError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Wrap returns a copy of the sentinel carrying the cause.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

// Withf returns a copy of the sentinel with a more precise message.
func (e *Error) Withf(format string, args ...interface{}) *Error {
	c := *e
	c.Message = fmt.Sprintf(format, args...)
	return &c
}

var (
	// Room errors
	ErrRoomNotFound = NewError(KindNotFound, "room_not_found", "room not found")

	// Availability errors
	ErrPeriodHasNoAvailability = NewError(KindCapacity, "period_has_no_availability", "given period has no valid booking day")
	ErrPeriodTooLong           = NewError(KindCapacity, "period_too_long", "given period is too long for the room")
	ErrInsufficientCapacity    = NewError(KindCapacity, "insufficient_capacity", "not enough seats available")

	// Booking errors
	ErrBookingNotFound    = NewError(KindNotFound, "booking_not_found", "reservation not found")
	ErrAlreadyCancelled   = NewError(KindPolicy, "already_cancelled", "reservation already cancelled")
	ErrPastReservation    = NewError(KindPolicy, "past_reservation", "cannot cancel past reservations")
	ErrAlreadyCommented   = NewError(KindPolicy, "already_commented", "reservation already commented")
	ErrBookingNotFinished = NewError(KindPolicy, "booking_not_finished", "only cancelled or completed reservations can be commented")

	// User errors
	ErrUserNotFound       = NewError(KindNotFound, "user_not_found", "user not found")
	ErrUserAlreadyExists  = NewError(KindConflict, "user_already_exists", "email already exists")
	ErrInvalidCredentials = NewError(KindUnauthorized, "invalid_credentials", "invalid username or password")
	ErrInvalidPassword    = NewError(KindUnauthorized, "invalid_password", "invalid password")
	ErrInvalidToken       = NewError(KindUnauthorized, "invalid_token", "invalid token")

	// General errors
	ErrInvalidInput     = NewError(KindValidation, "invalid_input", "invalid input")
	ErrDatabaseError    = NewError(KindStorage, "storage", "database error")
	ErrConcurrentUpdate = NewError(KindConsistency, "concurrent_update", "concurrent update detected")
	ErrRetriesExhausted = NewError(KindConsistency, "retries_exhausted", "could not apply the change, please retry")
)

func Validationf(format string, args ...interface{}) *Error {
	return ErrInvalidInput.Withf(format, args...)
}

// CapacityAt reports the first cell that blocks a booking.
func CapacityAt(date string, slot int) *Error {
	return ErrInsufficientCapacity.Withf("Not enough seats available for day %s at hour slot %d.", date, slot)
}

// KindOf classifies any error. Unknown errors are storage failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// AsStorage leaves domain errors alone and wraps everything else as a storage failure.
func AsStorage(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return ErrDatabaseError.Wrap(err)
}
