package bookings

import (
	"errors"
	"fmt"
)

// ErrorKind classifies booking failures. Every rejection maps to exactly one
// kind so callers can decide whether to retry with a different selection.
type ErrorKind string

const (
	ErrKindNotFound        ErrorKind = "NOT_FOUND"
	ErrKindPaymentRejected ErrorKind = "PAYMENT_REJECTED"
	ErrKindBookingClosed   ErrorKind = "BOOKING_CLOSED"
	ErrKindInvalidSection  ErrorKind = "INVALID_SECTION"
	ErrKindSeatUnavailable ErrorKind = "SEAT_UNAVAILABLE"
	ErrKindTransient       ErrorKind = "TRANSIENT_FAILURE"
)

// Error is the booking domain error. Validation failures carry zero side
// effects; Seat names the offending seat where applicable.
type Error struct {
	Kind   ErrorKind
	Detail string
	Seat   string
	cause  error
}

func (e *Error) Error() string {
	if e.Seat != "" {
		return fmt.Sprintf("%s: %s (seat %s)", e.Kind, e.Detail, e.Seat)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// ErrEventNotFound signals that the referenced event does not exist.
func ErrEventNotFound() *Error {
	return newError(ErrKindNotFound, "event not found")
}

// ErrPaymentRejected signals a failed or missing payment verification.
func ErrPaymentRejected(detail string) *Error {
	return newError(ErrKindPaymentRejected, detail)
}

// ErrBookingClosed signals that the event has started, ended or is cancelled.
func ErrBookingClosed(detail string) *Error {
	return newError(ErrKindBookingClosed, detail)
}

// ErrInvalidSection signals a section id that does not belong to the event.
func ErrInvalidSection(sectionID string) *Error {
	return newError(ErrKindInvalidSection, fmt.Sprintf("section %s does not belong to this event", sectionID))
}

// ErrSeatUnavailable signals a seat that is outside the grid, already
// reserved, or lost to a concurrent booking.
func ErrSeatUnavailable(seatID string) *Error {
	return &Error{
		Kind:   ErrKindSeatUnavailable,
		Detail: fmt.Sprintf("seat %s is not available", seatID),
		Seat:   seatID,
	}
}

// ErrTransient wraps infrastructure failures; the whole request is safe to
// retry from the client.
func ErrTransient(err error) *Error {
	return &Error{
		Kind:   ErrKindTransient,
		Detail: "temporary failure, please retry",
		cause:  err,
	}
}

// KindOf extracts the booking error kind, or ErrKindTransient for unexpected
// errors that escaped classification.
func KindOf(err error) ErrorKind {
	var bookingErr *Error
	if errors.As(err, &bookingErr) {
		return bookingErr.Kind
	}
	return ErrKindTransient
}

// AsBookingError unwraps err into a booking *Error if possible.
func AsBookingError(err error) (*Error, bool) {
	var bookingErr *Error
	ok := errors.As(err, &bookingErr)
	return bookingErr, ok
}
