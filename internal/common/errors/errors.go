// Package errors provides standardized error handling for the intake tasks
// and the CI caller that renders their outcomes.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeProfileReadFailed           ErrorCode = "PROFILE_READ_FAILED"
	ErrCodeApplicationValidationFailed ErrorCode = "APPLICATION_VALIDATION_FAILED"

	ErrCodeAccountNotFound ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeGitHubAPIFailed ErrorCode = "GITHUB_API_FAILED"

	ErrCodeScorecardSchemaInvalid ErrorCode = "SCORECARD_SCHEMA_INVALID"
	ErrCodeScorecardWriteFailed   ErrorCode = "SCORECARD_WRITE_FAILED"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeNoApplicationChanged        ErrorCode = "NO_APPLICATION_CHANGED"
	ErrCodeMultipleApplicationsChanged ErrorCode = "MULTIPLE_APPLICATIONS_CHANGED"

	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
}

// Is matches any *StandardError carrying the same code, so callers can write
// errors.Is(err, errors.ErrAccountNotFound).
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is; ExitCode and locate --allow-none match on them.
var (
	ErrAccountNotFound     = &StandardError{Code: ErrCodeAccountNotFound}
	ErrGitHubAPIFailed     = &StandardError{Code: ErrCodeGitHubAPIFailed}
	ErrScorecardInvalid    = &StandardError{Code: ErrCodeScorecardSchemaInvalid}
	ErrNoApplication       = &StandardError{Code: ErrCodeNoApplicationChanged}
	ErrMultipleApplication = &StandardError{Code: ErrCodeMultipleApplicationsChanged}
	ErrConfigInvalid       = &StandardError{Code: ErrCodeConfigInvalid}
)

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewProfileReadError reports a profile file that could not be read from disk.
func NewProfileReadError(path string, err error) *StandardError {
	return newError(ErrCodeProfileReadFailed, "Profile file could not be read",
		fmt.Sprintf("path: %s, error: %s", path, err.Error()), false)
}

// NewApplicationValidationFailedError summarizes a failed validation run.
func NewApplicationValidationFailedError(errorCount int) *StandardError {
	return newError(ErrCodeApplicationValidationFailed, "Application profile validation failed",
		fmt.Sprintf("%d validation errors", errorCount), false)
}

// NewAccountNotFoundError is terminal for the run.
func NewAccountNotFoundError(username string) *StandardError {
	e := newError(ErrCodeAccountNotFound, "GitHub account not found",
		fmt.Sprintf("username: %s", username), false)
	e.Metadata = map[string]interface{}{"username": username}
	return e
}

// NewGitHubAPIError reports a directory failure other than a missing account.
func NewGitHubAPIError(operation string, err error) *StandardError {
	return newError(ErrCodeGitHubAPIFailed, fmt.Sprintf("GitHub API call '%s' failed", operation),
		err.Error(), false)
}

func NewScorecardSchemaError(details string) *StandardError {
	return newError(ErrCodeScorecardSchemaInvalid, "Scorecard record does not match schema", details, false)
}

func NewScorecardWriteError(path string, err error) *StandardError {
	return newError(ErrCodeScorecardWriteFailed, "Scorecard record could not be written",
		fmt.Sprintf("path: %s, error: %s", path, err.Error()), true)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Scan cache unavailable", err.Error(), true)
}

func NewNoApplicationChangedError() *StandardError {
	return newError(ErrCodeNoApplicationChanged, "No pending application file changed", "", false)
}

func NewMultipleApplicationsChangedError(paths []string) *StandardError {
	return newError(ErrCodeMultipleApplicationsChanged, "More than one pending application file changed",
		strings.Join(paths, ", "), false)
}

func NewConfigInvalidError(details string) *StandardError {
	return newError(ErrCodeConfigInvalid, "Invalid configuration", details, false)
}

// ==========================
// 3. Caller-facing conversion
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// ToFields returns a flat map for structured logs and JSON output consumed
// by the CI caller.
func (e *StandardError) ToFields() map[string]interface{} {
	fields := map[string]interface{}{
		"errorCode":     string(e.Code),
		"errorMessage":  e.Message,
		"errorDetails":  e.Details,
		"retryable":     e.Retryable,
		"errorCategory": GetErrorCategory(e.Code),
		"timestamp":     e.Timestamp.Format(time.RFC3339),
	}
	for k, v := range e.Metadata {
		fields[k] = v
	}
	return fields
}

// Exit codes returned by the intake CLI.
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitAccountNotFound = 2
	ExitConfigInvalid   = 3
)

// ExitCode maps an error to the CLI exit status. Account-not-found gets its
// own status so the caller can tell it apart from a low score.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, ErrAccountNotFound):
		return ExitAccountNotFound
	case stderrors.Is(err, ErrConfigInvalid):
		return ExitConfigInvalid
	default:
		return ExitFailure
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if !stderrors.As(err, &stdErr) {
		return false
	}
	return stdErr.Code == code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "PROFILE") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "ACCOUNT") || strings.Contains(codeStr, "GITHUB"):
		return "GITHUB"
	case strings.HasPrefix(codeStr, "SCORECARD"):
		return "SCORECARD"
	case strings.HasPrefix(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "APPLICATION"):
		return "LOCATOR"
	case strings.HasPrefix(codeStr, "CONFIG"):
		return "CONFIG"
	default:
		return "OTHER"
	}
}
