package box

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/tonimelisma/box-client/internal/boxfake"
	"github.com/tonimelisma/box-client/internal/logger"
	"golang.org/x/oauth2"
)

// newFakeClient returns a client talking to a fresh in-memory Box.
func newFakeClient(t *testing.T) (*Client, *boxfake.Server) {
	t.Helper()
	fake := boxfake.New()
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, fake.HTTPClient())
	client := NewClientWithToken(ctx, boxfake.DefaultToken, logger.NoopLogger{}, WithBaseURL(boxfake.BaseURL))
	return client, fake
}

// uniqueName returns a folder or file name that cannot clash across tests.
func uniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
