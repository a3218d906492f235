package ux

import (
	"fmt"
	"strings"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError analyzes an error and adds contextual suggestions
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	errMsg := err.Error()

	// Session errors
	if strings.Contains(errMsg, "not logged in") || strings.Contains(errMsg, "not authenticated") {
		return NewErrorWithSuggestion(err,
			"Log in with 'refhub auth login'")
	}

	if strings.Contains(errMsg, "session expired") || strings.Contains(errMsg, "refresh token") {
		return NewErrorWithSuggestion(err,
			"Your session is no longer valid. Log in again with 'refhub auth login'")
	}

	// Upload errors
	if strings.Contains(errMsg, "file too large") {
		return NewErrorWithSuggestion(err,
			"Uploads are limited to 20MB per file. Compress the file or save it as a link instead")
	}

	if strings.Contains(errMsg, "unsupported file type") {
		return NewErrorWithSuggestion(err,
			"The server rejected this file type. Images, PDFs, and common document formats are accepted")
	}

	// Credential store errors
	if strings.Contains(errMsg, "sealed credentials") || strings.Contains(errMsg, "passphrase") {
		return NewErrorWithSuggestion(err,
			"Set REFHUB_SEAL_KEY to the passphrase used when the credentials were sealed")
	}

	// Permission errors
	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check file permissions and ensure you have access to the required files/directories")
	}

	// Network errors
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no route to host") {
		return NewErrorWithSuggestion(err,
			"Check your network connection, or point --api-url at a reachable RefHub server")
	}

	if strings.Contains(errMsg, "no such host") {
		return NewErrorWithSuggestion(err,
			"The API host could not be resolved. Verify api.base_url in ~/.refhub/config.yaml")
	}

	// Not found
	if strings.Contains(errMsg, "not found") {
		return NewErrorWithSuggestion(err,
			"The collection or reference may have been deleted. Run 'refhub collections list' to see what exists")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
