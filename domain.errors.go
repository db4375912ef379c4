package main

import "errors"

// Sentinel errors of the books and rentals domain. Handlers map them to
// HTTP statuses, callers match them with errors.Is.
var (
	ErrBookNotFound     = errors.New("book does not exist")
	ErrRentalNotFound   = errors.New("rental does not exist")
	ErrBookNotAvailable = errors.New("book is not available for rent")
	ErrAllCopiesInStore = errors.New("all book copies are already in store")
	ErrAlreadyReturned  = errors.New("rental is already returned")
	ErrReturnedIsFinal  = errors.New("returned rental status cannot change")
	ErrDuplicateRental  = errors.New("renter already has an open rental on this book")
	ErrDuplicateISBN    = errors.New("another book already carries this isbn")
)

// missingFieldError reports an absent required field.
type missingFieldError string

func (e missingFieldError) Error() string {
	return string(e) + " is required"
}

// validationError reports a present but malformed or out of range field.
type validationError string

func (e validationError) Error() string {
	return string(e)
}

// invariantError reports an internal bookkeeping inconsistency, like a
// returned rental pointing to a missing book. It always wraps the cause.
type invariantError struct {
	reason string
	err    error
}

// NewInvariantError builds an invariant violation from its cause.
func NewInvariantError(reason string, err error) error {
	return &invariantError{reason: reason, err: err}
}

func (e *invariantError) Error() string {
	return "invariant violation: " + e.reason + ": " + e.err.Error()
}

func (e *invariantError) Unwrap() error {
	return e.err
}

// IsValidationError tells whether the error denotes a bad client payload.
func IsValidationError(err error) bool {
	var mferr missingFieldError
	var verr validationError
	return errors.As(err, &mferr) || errors.As(err, &verr)
}

// IsConflict tells whether the error denotes a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateRental) || errors.Is(err, ErrDuplicateISBN)
}

// IsInvalidOperation tells whether the error denotes an operation refused
// by the current state of a well-formed record.
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrBookNotAvailable) ||
		errors.Is(err, ErrAlreadyReturned) ||
		errors.Is(err, ErrAllCopiesInStore)
}

// IsInvariantViolation tells whether the error denotes an internal
// bookkeeping inconsistency.
func IsInvariantViolation(err error) bool {
	var ierr *invariantError
	return errors.As(err, &ierr)
}
