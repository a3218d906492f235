package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Auth errors (AUTH-001 to AUTH-099)
	ErrCodeNotAuthenticated ErrorCode = "AUTH-001"
	ErrCodeSessionExpired   ErrorCode = "AUTH-002"
	ErrCodeRefreshFailed    ErrorCode = "AUTH-003"
	ErrCodeLoginFailed      ErrorCode = "AUTH-004"
	ErrCodeTokenMalformed   ErrorCode = "AUTH-005"

	// API errors (API-001 to API-099)
	ErrCodeAPIRequest          ErrorCode = "API-001"
	ErrCodeAPINotFound         ErrorCode = "API-002"
	ErrCodeAPIFileTooLarge     ErrorCode = "API-003"
	ErrCodeAPIUnsupportedFile  ErrorCode = "API-004"
	ErrCodeAPINetwork          ErrorCode = "API-005"
	ErrCodeAPIContractMismatch ErrorCode = "API-006"

	// Validation errors (VALIDATE-001 to VALIDATE-099)
	ErrCodeFieldRequired     ErrorCode = "VALIDATE-001"
	ErrCodeEmailFormat       ErrorCode = "VALIDATE-002"
	ErrCodePasswordFormat    ErrorCode = "VALIDATE-003"
	ErrCodeUploadTooLarge    ErrorCode = "VALIDATE-004"
	ErrCodeUploadKindUnknown ErrorCode = "VALIDATE-005"

	// Sharing errors (SHARE-001 to SHARE-099)
	ErrCodeRoleDenied ErrorCode = "SHARE-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound     ErrorCode = "IO-001"
	ErrCodeFileReadFailed   ErrorCode = "IO-002"
	ErrCodeFileWriteFailed  ErrorCode = "IO-003"
	ErrCodeCredentialsSeal  ErrorCode = "IO-004"
)

// RefHubError represents an enhanced error with code, suggestions, and documentation
type RefHubError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *RefHubError) Error() string {
	var b strings.Builder

	// Error code and message
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	// Add cause if present
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	// Add suggestions
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	// Add documentation link
	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *RefHubError) Unwrap() error {
	return e.Cause
}

// New creates a new RefHubError
func New(code ErrorCode, message string) *RefHubError {
	return &RefHubError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new RefHubError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *RefHubError {
	return &RefHubError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *RefHubError) WithSuggestion(suggestion string) *RefHubError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *RefHubError) WithSuggestions(suggestions ...string) *RefHubError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *RefHubError) WithDocs(url string) *RefHubError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewNotAuthenticatedError creates a not-logged-in error
func NewNotAuthenticatedError() *RefHubError {
	return New(ErrCodeNotAuthenticated, "not logged in").
		WithSuggestion("Run 'refhub auth login' to authenticate").
		WithSuggestion("Run 'refhub auth signup' to create an account")
}

// NewSessionExpiredError creates a terminal session-expiry error.
// Raised when a request still gets 401 after a refreshed retry.
func NewSessionExpiredError() *RefHubError {
	return New(ErrCodeSessionExpired, "session expired").
		WithSuggestion("Run 'refhub auth login' to start a new session")
}

// NewRefreshFailedError creates a refresh-exchange failure error
func NewRefreshFailedError(cause error) *RefHubError {
	return Wrap(ErrCodeRefreshFailed, "failed to refresh access token", cause).
		WithSuggestion("Run 'refhub auth login' to re-authenticate")
}

// NewLoginFailedError creates a login failure error
func NewLoginFailedError(cause error) *RefHubError {
	return Wrap(ErrCodeLoginFailed, "login failed", cause).
		WithSuggestion("Check your email and password").
		WithSuggestion("Use 'refhub auth password reset' if you forgot your password")
}

// NewFileTooLargeError creates an upload-size error
func NewFileTooLargeError(path string, size int64, limit int64) *RefHubError {
	return New(ErrCodeUploadTooLarge, fmt.Sprintf("file too large: %s (%d bytes, limit %d)", path, size, limit)).
		WithSuggestion("Compress the file or split it below the upload limit")
}

// NewNotFoundError creates a missing-resource error
func NewNotFoundError(resource string) *RefHubError {
	return New(ErrCodeAPINotFound, fmt.Sprintf("%s not found", resource)).
		WithSuggestion("Run 'refhub collections list' to see available collections").
		WithSuggestion("The item may have been deleted by a collaborator")
}

// NewNetworkError creates a connectivity error
func NewNetworkError(cause error) *RefHubError {
	return Wrap(ErrCodeAPINetwork, "could not reach the RefHub API", cause).
		WithSuggestion("Check your network connection").
		WithSuggestion("Verify the API base URL with 'refhub config get api.base_url'")
}

// NewRoleDeniedError creates a permission error for a gated action
func NewRoleDeniedError(action string) *RefHubError {
	return New(ErrCodeRoleDenied, fmt.Sprintf("your role on this collection does not allow %s", action)).
		WithSuggestion("Ask the collection owner to raise your role to editor")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *RefHubError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}
