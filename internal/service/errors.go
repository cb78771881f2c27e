package service

import "errors"

var ErrNotFound = errors.New("not found")

// ForbiddenError marks an authenticated caller that is not entitled to the
// operation (wrong role, or not a party to the record).
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

func forbidden(msg string) error { return &ForbiddenError{Msg: msg} }

// ValidationError covers malformed input and invalid state transitions. The
// message is safe to return to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// ConflictError reports a uniqueness violation, e.g. a duplicate review.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func conflict(msg string) error { return &ConflictError{Msg: msg} }
