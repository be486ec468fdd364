package models

// APIErrorType categorizes error responses so clients can branch on the
// failure class instead of parsing messages.
type APIErrorType string

const (
	GeneralErrorType    APIErrorType = "general"
	ValidationErrorType APIErrorType = "validation"
	NotFoundErrorType   APIErrorType = "not_found"
	ForbiddenErrorType  APIErrorType = "forbidden"
	ConflictErrorType   APIErrorType = "conflict"
	AuthErrorType       APIErrorType = "authentication"
)

// APIResponse is the envelope for all API responses.
type APIResponse struct {
	Status    string       `json:"status"`
	Data      any          `json:"data,omitempty"`
	Message   string       `json:"message,omitempty"`
	ErrorType APIErrorType `json:"error_type,omitempty"`
}
