package ui

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tonimelisma/box-client/pkg/box"
)

// captureStdout returns what f prints to standard output.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan string)
	go func() {
		data, _ := io.ReadAll(r)
		done <- string(data)
	}()

	f()
	w.Close()
	os.Stdout = old
	return <-done
}

func int64p(v int64) *int64 { return &v }

func TestDisplayItems(t *testing.T) {
	items := []box.Item{
		{Type: box.TypeFile, ID: "11", Name: "Test File 1.txt", Size: int64p(1024)},
		{Type: box.TypeFolder, ID: "12", Name: "Test Folder"},
	}

	output := captureStdout(t, func() { DisplayItems(items) })

	for _, want := range []string{"Test File 1.txt", "Test Folder", "1.0 KiB", "File", "Folder", "11", "12"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output should contain %q, got:\n%s", want, output)
		}
	}
}

func TestDisplayItemsEmpty(t *testing.T) {
	output := captureStdout(t, func() { DisplayItems(nil) })
	assert.Contains(t, output, "No items found")
}

func TestDisplayItem(t *testing.T) {
	modified := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	item := box.Item{
		Type:        box.TypeFile,
		ID:          "42",
		Name:        "report.pdf",
		ETag:        "3",
		Description: "Q1",
		Size:        int64p(2048),
		ModifiedAt:  &modified,
		PathCollection: &box.PathCollection{TotalCount: 2, Entries: []box.ItemRef{
			{Type: box.TypeFolder, ID: "0", Name: "All Files"},
			{Type: box.TypeFolder, ID: "7", Name: "Reports"},
		}},
		SharedLink: &box.SharedLink{
			URL:         "https://app.box.com/s/abc",
			Access:      box.AccessOpen,
			Permissions: &box.SharedLinkPermissions{CanDownload: true},
		},
	}

	output := captureStdout(t, func() { DisplayItem(item) })

	assert.Contains(t, output, "report.pdf")
	assert.Contains(t, output, "ETag:             3")
	assert.Contains(t, output, "Q1")
	assert.Contains(t, output, "2.0 KiB (2048 bytes)")
	assert.Contains(t, output, "/Reports/report.pdf")
	assert.Contains(t, output, "https://app.box.com/s/abc")
	assert.Contains(t, output, "Can Download:   true")
}

func TestDisplayItemOnlyRequestedFields(t *testing.T) {
	output := captureStdout(t, func() {
		DisplayItem(box.Item{Type: box.TypeFolder, ID: "5", Name: "docs"})
	})
	assert.Contains(t, output, "docs")
	assert.NotContains(t, output, "Size:")
	assert.NotContains(t, output, "Shared Link:")
}

func TestDisplayUser(t *testing.T) {
	output := captureStdout(t, func() {
		DisplayUser(box.User{ID: "1", Name: "Ada", Login: "ada@example.com", SpaceAmount: 1 << 30, SpaceUsed: 1 << 20})
	})
	assert.Contains(t, output, "Ada (ada@example.com, ID: 1)")
	assert.Contains(t, output, "1.0 MiB of 1.0 GiB")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1 << 20, "1.0 MiB"},
		{5 << 30, "5.0 GiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.in))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestNewProgressBar(t *testing.T) {
	assert.NotPanics(t, func() {
		bar := NewProgressBar(100, "")
		_ = bar.Add(50)
		_ = bar.Finish()
		spinner := NewProgressBar(0, "upload")
		_ = spinner.Add(10)
	})
}

func TestPrintHelpersDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		PrintSuccess("done %s", "x")
		PrintError(errors.New("boom"))
	})
}
