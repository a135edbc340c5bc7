package constants

// Context and session keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUser      = "user"
	ContextKeyProject   = "project"
	ContextKeyTask      = "task"
	ContextKeyRequestID = "request_id"
	SessionCookieName   = "project_session"
)

// Authentication
const (
	AuthHeaderScheme  = "Token"
	RequestIDHeader   = "X-Request-Id"
	MinUsernameLength = 3
	MaxUsernameLength = 150
	MinPasswordLength = 3
	TokenByteLength   = 20
)

// Pagination
const (
	MinPageSize      = 1
	DefaultPageSize  = 20
	MaxPageSize      = 100
	TotalCountHeader = "X-Total-Count"
)

// AI suggestions
const (
	MaxAIGeneratedTasks = 20
)
