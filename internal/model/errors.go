package model

import "errors"

// Domain errors shared by repositories and services. All of them surface as
// rejected operations at the caller's layer, never as a crash.
var (
	// ErrNotFound signals an exam, session or question that is absent or
	// outside the caller's school scope.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidState signals an operation against the wrong state: starting
	// an exam that is not active, or answering/submitting a session that is
	// not in_progress (including one whose time budget has elapsed).
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrAlreadyCompleted signals a start or submit against a session that
	// has already been submitted. The stored score is never altered.
	ErrAlreadyCompleted = errors.New("exam session already submitted")

	// ErrForbidden signals a session that does not belong to the caller.
	ErrForbidden = errors.New("session does not belong to caller")

	// ErrNoQuestions signals an exam with an empty question set.
	ErrNoQuestions = errors.New("exam has no questions")

	// ErrValidation signals a missing or malformed required field.
	ErrValidation = errors.New("validation failed")
)
