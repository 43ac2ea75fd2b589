package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeInvalidToken = "invalid_token"
	ErrCodeTokenExpired = "token_expired"

	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeMissingField   = "missing_field"

	// Duel errors
	ErrCodeInvalidSessionID  = "invalid_session_id"
	ErrCodeSessionNotFound   = "session_not_found"
	ErrCodeEnqueueFailed     = "enqueue_failed"
	ErrCodeSubmitFailed      = "submit_failed"
	ErrCodeReadyFailed       = "ready_failed"
	ErrCodeNoQuestions       = "no_questions"
	ErrCodeReadinessTimeout  = "readiness_timeout"
	ErrCodeDuelStartFailed   = "duel_start_failed"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeConnectionError    = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
