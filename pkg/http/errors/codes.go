package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"

	// Lifecycle errors
	ErrCodeInvalidState     = "invalid_state"
	ErrCodeAlreadySubmitted = "already_submitted"

	// Business logic errors
	ErrCodeRegistrationFailed = "registration_failed"
	ErrCodeLoginFailed        = "login_failed"
	ErrCodeEmailTaken         = "email_taken"

	// WebSocket errors
	ErrCodeInvalidPayload  = "invalid_payload"
	ErrCodeConnectionError = "connection_error"

	// Server errors
	ErrCodeStoreFailure       = "store_failure"
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
