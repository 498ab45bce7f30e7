package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/tonimelisma/box-client/internal/config"
)

// setupAuthTest points the configuration at a temporary file and clears any
// BOX_* overrides from the environment running the tests.
func setupAuthTest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv(config.EnvConfigPath, path)
	for _, key := range []string{"CLIENT_ID", "CLIENT_SECRET", "ACCESS_TOKEN", "DEBUG", "BASE_URL",
		"AUTH_MODE", "SUBJECT_TYPE", "SUBJECT_ID", "JWT_KEY_FILE", "JWT_KEY_ID", "HTTP_TIMEOUT", "REDIRECT_URL"} {
		t.Setenv("BOX_"+key, "")
	}
	return path
}

// captureOutput returns everything f writes to stdout and stderr.
func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	oldStdout, oldStderr := os.Stdout, os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	os.Stdout, os.Stderr = w, w

	done := make(chan string)
	go func() {
		data, _ := io.ReadAll(r)
		done <- string(data)
	}()

	f()

	w.Close()
	os.Stdout, os.Stderr = oldStdout, oldStderr
	return <-done
}

// execute runs the root command with args and returns its output and error.
// Cobra only hands the root context to a subcommand that has none yet, so
// the target gets ctx directly.
func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	if target, _, findErr := rootCmd.Find(args); findErr == nil {
		target.SetContext(ctx)
	}
	var err error
	output := captureOutput(t, func() {
		rootCmd.SetArgs(args)
		err = rootCmd.ExecuteContext(ctx)
	})
	return output, err
}
