//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tonimelisma/box-client/internal/app"
	"github.com/tonimelisma/box-client/pkg/box"
)

// E2ETestHelper owns a scratch folder in a real Box account.
type E2ETestHelper struct {
	App      *app.App
	Config   *Config
	TestID   string
	FolderID string
	Ctx      context.Context
}

// NewE2ETestHelper authenticates with the regular CLI configuration and
// creates a scratch folder that is deleted when the test ends.
func NewE2ETestHelper(t *testing.T) *E2ETestHelper {
	t.Helper()

	cfg := LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	t.Cleanup(cancel)

	cmd := &cobra.Command{}
	cmd.Flags().Bool("debug", false, "")
	cmd.SetContext(ctx)
	a, err := app.NewApp(cmd)
	if err != nil {
		t.Fatalf(`E2E testing needs working credentials: %v

Log in with './box-client auth login' or export BOX_ACCESS_TOKEN with a
developer token, then run:
   go test -tags=e2e -v ./e2e/...`, err)
	}

	h := &E2ETestHelper{
		App:    a,
		Config: cfg,
		TestID: "E2E-" + time.Now().Format("20060102-150405") + "-" + uuid.NewString()[:8],
		Ctx:    ctx,
	}

	folder, err := a.SDK.CreateFolder(ctx, cfg.ParentID, h.TestID)
	if err != nil {
		t.Fatalf("Failed to create test folder: %v", err)
	}
	h.FolderID = folder.ID

	t.Cleanup(func() { h.Cleanup(t) })
	return h
}

// Cleanup removes the scratch folder and everything in it.
func (h *E2ETestHelper) Cleanup(t *testing.T) {
	if !h.Config.Cleanup || h.FolderID == "" {
		t.Logf("Leaving test folder %s (%s) in place", h.TestID, h.FolderID)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := h.App.SDK.Delete(ctx, box.TypeFolder, h.FolderID, box.NoPrecondition(), box.Recursive(true)); err != nil {
		t.Logf("Warning: failed to delete test folder %s: %v", h.FolderID, err)
	}
}

// CreateRandomTestFile writes size random bytes to a local temp file.
func (h *E2ETestHelper) CreateRandomTestFile(t *testing.T, name string, size int64) (string, []byte) {
	t.Helper()
	if size > h.Config.MaxFileSize {
		t.Skipf("file size %d exceeds BOX_E2E_MAX_FILE_SIZE", size)
	}
	content := make([]byte, size)
	if _, err := rand.Read(content); err != nil {
		t.Fatalf("Failed to generate random content: %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path, content
}

// Upload stores content as a new file in the scratch folder.
func (h *E2ETestHelper) Upload(t *testing.T, name string, content []byte) box.File {
	t.Helper()
	file, err := h.App.SDK.Upload(h.Ctx, h.FolderID, name, bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Failed to upload %s: %v", name, err)
	}
	return file
}

// UniqueName prefixes name with the test id.
func (h *E2ETestHelper) UniqueName(name string) string {
	return fmt.Sprintf("%s-%s", h.TestID, name)
}
