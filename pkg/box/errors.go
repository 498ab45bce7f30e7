package box

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors. Every error returned by the SDK wraps one of these (or is
// an *APIError matching one of them through errors.Is).
var (
	// ErrInvalidInput rejects a call before any request is built.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotModified is returned by a conditional get whose etag still matches.
	ErrNotModified = errors.New("not modified")
	// ErrStaleVersion is returned when an If-Match precondition failed; the
	// caller has to refetch the item before retrying.
	ErrStaleVersion = errors.New("stale version")

	ErrReauthRequired   = errors.New("re-authentication required")
	ErrAccessDenied     = errors.New("access denied")
	ErrRetryLater       = errors.New("retry later")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrDecodingFailed   = errors.New("decoding failed")
	ErrNetworkFailed    = errors.New("network failed")
	ErrOperationFailed  = errors.New("operation failed")
)

// APIError is the error payload reported by the service. When the response
// body could not be decoded, Code and Message are empty and Raw holds the
// body as received.
type APIError struct {
	Type       string `json:"type"`
	StatusCode int    `json:"status"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	HelpURL    string `json:"help_url,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Raw        string `json:"-"`
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("box: %d %s: %s", e.StatusCode, e.Code, e.Message)
	case e.Code != "":
		return fmt.Sprintf("box: %d %s", e.StatusCode, e.Code)
	case e.Raw != "":
		return fmt.Sprintf("box: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Raw)
	default:
		return fmt.Sprintf("box: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// Is matches the coarse sentinel family for the status code, so callers can
// write errors.Is(err, box.ErrResourceNotFound) without unwrapping.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrInvalidRequest:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusMethodNotAllowed
	case ErrReauthRequired:
		return e.StatusCode == http.StatusUnauthorized
	case ErrAccessDenied:
		return e.StatusCode == http.StatusForbidden
	case ErrResourceNotFound:
		return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrRetryLater:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// AsAPIError extracts the service payload from err, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
