package output

import (
	"context"
	"errors"
	"fmt"

	"github.com/semmy-space/wdc/internal/wildduck"
)

// Exit codes following sysexits.h convention
const (
	ExitOK           = 0  // Success
	ExitGeneral      = 1  // General error
	ExitUsage        = 2  // Invalid usage / bad arguments
	ExitAuth         = 3  // Authentication failure
	ExitNotFound     = 4  // Resource not found
	ExitConflict     = 5  // Conflict (resource already exists)
	ExitForbidden    = 6  // Permission denied
	ExitRateLimit    = 75 // Rate limited (EX_TEMPFAIL from sysexits.h)
	ExitTimeout      = 8  // Request timeout
	ExitAPIError     = 9  // API error (non-specific)
	ExitConfigError  = 10 // Configuration error
	ExitNetworkError = 11 // Network connectivity error
)

// CLIError represents a structured error with exit code and optional hint
type CLIError struct {
	ExitCode int
	Message  string
	Hint     string
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// NewCLIError creates a new CLIError
func NewCLIError(code int, msg string) *CLIError {
	return &CLIError{
		ExitCode: code,
		Message:  msg,
	}
}

// WithHint adds a user-facing hint to the error
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// FromAPIError converts an error returned by the API client into a CLIError
// whose exit code reflects the failure class. action prefixes the message.
func FromAPIError(err error, action string) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	msg := err.Error()
	var apiErr *wildduck.APIError
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
		if apiErr.Code != "" {
			msg += " (" + apiErr.Code + ")"
		}
	}
	if action != "" {
		msg = action + ": " + msg
	}

	var transportErr *wildduck.TransportError
	var decodeErr *wildduck.DecodeError

	switch {
	case errors.Is(err, wildduck.ErrUnauthorized):
		return NewCLIError(ExitAuth, msg).WithHint("Run: wdc auth login")
	case errors.Is(err, wildduck.ErrForbidden):
		return NewCLIError(ExitForbidden, msg).WithHint("The access token lacks permission for this operation")
	case errors.Is(err, wildduck.ErrNotFound):
		return NewCLIError(ExitNotFound, msg)
	case errors.Is(err, wildduck.ErrConflict):
		return NewCLIError(ExitConflict, msg)
	case errors.Is(err, wildduck.ErrRateLimited):
		return NewCLIError(ExitRateLimit, msg).WithHint("Retry later or lower --rate-limit")
	case errors.Is(err, context.DeadlineExceeded):
		return NewCLIError(ExitTimeout, msg)
	case errors.As(err, &transportErr):
		return NewCLIError(ExitNetworkError, msg).WithHint("Check --api-url or WDC_API_URL")
	case errors.As(err, &decodeErr):
		return NewCLIError(ExitAPIError, msg).WithHint("The server answered with an unexpected body; is --api-url pointing at the mail API?")
	case apiErr != nil:
		return NewCLIError(ExitAPIError, msg)
	case errors.Is(err, wildduck.ErrMissingToken):
		return NewCLIError(ExitAuth, msg).WithHint("Run: wdc auth login, or set WDC_ACCESS_TOKEN")
	case errors.Is(err, wildduck.ErrMissingBaseURL):
		return NewCLIError(ExitConfigError, msg).WithHint("Run: wdc config set api_url <url>")
	}

	return NewCLIError(ExitGeneral, msg)
}

// ExitCode returns the process exit code for err
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode
	}
	return ExitGeneral
}

// ExitWithError prints the error and its hint via the formatter.
// The caller exits with ExitCode(err).
func ExitWithError(formatter Formatter, err error) {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		formatter.PrintError(cliErr)
		if cliErr.Hint != "" {
			formatter.PrintHint(cliErr.Hint)
		}
		return
	}

	formatter.PrintError(fmt.Errorf("error: %v", err))
}
