package session

import "errors"

// Sentinel errors returned by the lifecycle manager and answer intake.
// Handlers map these onto the HTTP error taxonomy; services wrap them with
// context via fmt.Errorf("...: %w", err).
var (
	// ErrUnauthorized means the caller is not the session's host.
	ErrUnauthorized = errors.New("caller does not own this session")

	// ErrNotFound means the referenced session, quiz, participant or
	// question does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the operation is not legal in the session's
	// current status. Transitions are forward-only.
	ErrInvalidState = errors.New("operation not allowed in current session state")

	// ErrAlreadySubmitted means the participant already answered this
	// question in this session.
	ErrAlreadySubmitted = errors.New("answer already submitted for this question")

	// ErrValidation means the request payload failed validation.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is the store-level uniqueness violation. Repositories
	// return it; services translate it to a domain error.
	ErrConflict = errors.New("store uniqueness conflict")
)
