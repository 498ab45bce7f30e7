package box

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// maxErrorBody bounds how much of an error response is kept in APIError.Raw.
const maxErrorBody = 64 << 10

// mapResponse classifies res and, on success, decodes the body into dest.
// A nil dest discards the body. The body is always consumed; the caller
// still owns closing it.
func mapResponse(res *http.Response, precondition Precondition, dest any) error {
	if err := classifyResponse(res, precondition); err != nil {
		return err
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %d response: %w", ErrDecodingFailed, res.StatusCode, err)
	}
	return nil
}

// classifyResponse returns nil for 2xx and a typed error otherwise.
func classifyResponse(res *http.Response, precondition Precondition) error {
	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return nil
	case res.StatusCode == http.StatusNotModified:
		return fmt.Errorf("%w: etag %q is current", ErrNotModified, precondition.ETag())
	}

	apiErr := decodeAPIError(res)
	if res.StatusCode == http.StatusPreconditionFailed {
		return fmt.Errorf("%w: %w", ErrStaleVersion, apiErr)
	}
	return apiErr
}

// decodeAPIError reads the service error payload, falling back to the raw
// status and body when it is not the expected JSON object.
func decodeAPIError(res *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))

	apiErr := &APIError{}
	if err := json.Unmarshal(raw, apiErr); err != nil || (apiErr.Code == "" && apiErr.Message == "") {
		apiErr = &APIError{Raw: strings.TrimSpace(string(raw))}
	}
	// The payload status is informational; the transport status wins.
	apiErr.StatusCode = res.StatusCode
	if apiErr.Type == "" {
		apiErr.Type = "error"
	}
	return apiErr
}

// classifyTransportError maps a failed round trip. Token source failures
// surface through the oauth2 transport as *oauth2.RetrieveError.
func classifyTransportError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErr.ErrorCode {
		case "invalid_request", "invalid_client", "invalid_grant",
			"unauthorized_client", "unsupported_grant_type",
			"invalid_scope", "access_denied":
			return fmt.Errorf("%w: %w", ErrReauthRequired, err)
		case "server_error", "temporarily_unavailable":
			return fmt.Errorf("%w: %w", ErrRetryLater, err)
		}
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %w", ErrRetryLater, err)
		}
		return fmt.Errorf("%w: %w", ErrReauthRequired, err)
	}
	return fmt.Errorf("%w: %w", ErrNetworkFailed, err)
}
