package wildduck

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var (
	// ErrMissingToken is returned by NewClient when no access token is given.
	ErrMissingToken = errors.New("access token is required")
	// ErrMissingBaseURL is returned by NewClient when no base URL is given.
	ErrMissingBaseURL = errors.New("base URL is required")

	// Status sentinels matched by APIError.Is, e.g. errors.Is(err, ErrNotFound)
	// for a 404 response.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrRateLimited  = errors.New("rate limited")
)

// APIError is returned when the server answers with a non-2xx status.
type APIError struct {
	StatusCode int
	// Code is the service error code, e.g. "UserNotFound". May be empty.
	Code string
	// Message is the service description, or the raw body when it was not JSON.
	Message string
	Body    []byte
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Is matches the status sentinels so callers can use errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// TransportError means no response was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	cause := e.Err
	var ue *url.Error
	if errors.As(cause, &ue) && ue.Err != nil {
		cause = ue.Err
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, cause)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError means a 2xx body did not match the requested shape.
type DecodeError struct {
	Shape ResponseShape
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Shape, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// errorBody is the error document returned by the service.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// parseErrorResponse builds an APIError, falling back to the raw body text
// when the body is not a service error document.
func parseErrorResponse(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status, Body: body}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		apiErr.Message = eb.Error
		apiErr.Code = eb.Code
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
