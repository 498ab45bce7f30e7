package box

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestMapResponseErrorFamilies(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected error
	}{
		{"400 invalid request", 400, `{"type":"error","status":400,"code":"bad_request","message":"Bad request"}`, ErrInvalidRequest},
		{"401 reauth required", 401, `{"type":"error","status":401,"code":"unauthorized","message":"Unauthorized"}`, ErrReauthRequired},
		{"403 access denied", 403, `{"type":"error","status":403,"code":"access_denied_insufficient_permissions","message":"Denied"}`, ErrAccessDenied},
		{"404 not found", 404, `{"type":"error","status":404,"code":"not_found","message":"Not found"}`, ErrResourceNotFound},
		{"405 method not allowed", 405, `{"type":"error","status":405,"code":"method_not_allowed","message":"Nope"}`, ErrInvalidRequest},
		{"409 conflict", 409, `{"type":"error","status":409,"code":"item_name_in_use","message":"Name in use"}`, ErrConflict},
		{"410 gone", 410, `{"type":"error","status":410,"code":"trashed","message":"Gone"}`, ErrResourceNotFound},
		{"429 retry later", 429, `{"type":"error","status":429,"code":"rate_limit_exceeded","message":"Slow down"}`, ErrRetryLater},
		{"503 retry later", 503, `{"type":"error","status":503,"code":"unavailable","message":"Down"}`, ErrRetryLater},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapResponse(response(tt.status, tt.body), NoPrecondition(), nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expected), "got %v", err)

			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.NotEmpty(t, apiErr.Code)
			assert.NotEmpty(t, apiErr.Message)
			assert.Empty(t, apiErr.Raw)
		})
	}
}

func TestMapResponseFamiliesDoNotOverlap(t *testing.T) {
	err := mapResponse(response(404, `{"code":"not_found","message":"x"}`), NoPrecondition(), nil)
	assert.False(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrRetryLater))
	assert.False(t, errors.Is(err, ErrNotModified))
	assert.False(t, errors.Is(err, ErrStaleVersion))
}

func TestMapResponseFallbackPayload(t *testing.T) {
	err := mapResponse(response(502, "<html>Bad Gateway</html>"), NoPrecondition(), nil)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 502, apiErr.StatusCode)
	assert.Empty(t, apiErr.Code)
	assert.Equal(t, "<html>Bad Gateway</html>", apiErr.Raw)
	assert.True(t, errors.Is(err, ErrRetryLater))
	assert.Contains(t, err.Error(), "Bad Gateway")
}

func TestMapResponseTransportStatusWins(t *testing.T) {
	err := mapResponse(response(404, `{"status":500,"code":"not_found","message":"x"}`), NoPrecondition(), nil)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.StatusCode)
}

func TestMapResponseNotModified(t *testing.T) {
	err := mapResponse(response(http.StatusNotModified, ""), IfNoneMatch("4"), &Item{})
	assert.True(t, errors.Is(err, ErrNotModified))
	_, isAPI := AsAPIError(err)
	assert.False(t, isAPI)
}

func TestMapResponseStaleVersion(t *testing.T) {
	err := mapResponse(response(http.StatusPreconditionFailed, `{"type":"error","status":412,"code":"precondition_failed","message":"stale"}`), IfMatch("4"), &Item{})
	assert.True(t, errors.Is(err, ErrStaleVersion))
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "precondition_failed", apiErr.Code)
}

func TestMapResponseSuccess(t *testing.T) {
	t.Run("decodes and tolerates unknown fields", func(t *testing.T) {
		var item Item
		err := mapResponse(response(200, `{"type":"folder","id":"5","name":"Docs","brand_new_field":true}`), NoPrecondition(), &item)
		require.NoError(t, err)
		assert.Equal(t, TypeFolder, item.Type)
		assert.Equal(t, "5", item.ID)
		assert.Equal(t, "Docs", item.Name)
		assert.Nil(t, item.Size)
	})

	t.Run("no content", func(t *testing.T) {
		err := mapResponse(response(http.StatusNoContent, ""), NoPrecondition(), nil)
		assert.NoError(t, err)
	})

	t.Run("malformed body", func(t *testing.T) {
		var item Item
		err := mapResponse(response(200, `{"type":`), NoPrecondition(), &item)
		assert.True(t, errors.Is(err, ErrDecodingFailed))
	})
}

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"network", fmt.Errorf("dial tcp: connection refused"), ErrNetworkFailed},
		{"invalid grant", &oauth2.RetrieveError{ErrorCode: "invalid_grant"}, ErrReauthRequired},
		{"server error code", &oauth2.RetrieveError{ErrorCode: "temporarily_unavailable"}, ErrRetryLater},
		{"server error status", &oauth2.RetrieveError{Response: &http.Response{StatusCode: 503}}, ErrRetryLater},
		{"unknown retrieve failure", &oauth2.RetrieveError{Response: &http.Response{StatusCode: 400}}, ErrReauthRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyTransportError(tt.err)
			assert.True(t, errors.Is(err, tt.expected), "got %v", err)
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	tests := []struct {
		err      APIError
		expected string
	}{
		{APIError{StatusCode: 404, Code: "not_found", Message: "gone"}, "box: 404 not_found: gone"},
		{APIError{StatusCode: 409, Code: "item_name_in_use"}, "box: 409 item_name_in_use"},
		{APIError{StatusCode: 502, Raw: "oops"}, "box: 502 Bad Gateway: oops"},
		{APIError{StatusCode: 500}, "box: 500 Internal Server Error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.err.Error())
	}
}
