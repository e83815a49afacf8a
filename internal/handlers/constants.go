package handlers

// Common error message constants shared across handlers
const (
	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgUnauthorized       = "Unauthorized"
	ErrMsgInvalidInterviewID = "Invalid interview ID"
	ErrMsgInvalidJobID       = "Invalid job ID"
	ErrMsgInvalidCandidateID = "Invalid candidate ID"
	ErrMsgPermissionDenied   = "Permission denied"
	ErrMsgInternal           = "Internal server error"
)

// Error codes returned alongside error messages
const (
	CodeJobNotFound        = "job_not_found"
	CodeNotConfiguredForAI = "not_configured_for_ai"
	CodeAlreadyCompleted   = "already_completed"
	CodeInvalidCandidate   = "invalid_candidate"
	CodeInterviewNotFound  = "interview_not_found"
	CodeInterviewClosed    = "interview_closed"
	CodeTerminated         = "terminated"
	CodeForbidden          = "forbidden"
	CodeInvalidPayload     = "invalid_payload"
	CodeNotFound           = "not_found"
	CodeInternal           = "internal_error"
)

// API path constants
const (
	APIBasePath = "/api/v1"
)
