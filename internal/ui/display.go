// Package ui (display.go) prints box items, users and shared links for
// humans, and provides the progress bar and status message helpers used by
// the commands.
package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/tonimelisma/box-client/pkg/box"
)

// Success prints a plain message to standard output.
func Success(msg string) {
	fmt.Println(msg)
}

// PrintSuccess reports a completed operation on standard error, keeping
// standard output free for data.
func PrintSuccess(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "SUCCESS: "+msg, args...)
	if !strings.HasSuffix(msg, "\n") {
		fmt.Fprintln(os.Stderr)
	}
}

// PrintError reports a failed operation on standard error.
func PrintError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
}

func typeLabel(t box.ItemType) string {
	switch t {
	case box.TypeFolder:
		return "Folder"
	case box.TypeFile:
		return "File"
	case box.TypeWebLink:
		return "Web link"
	default:
		return string(t)
	}
}

func sizeLabel(size *int64) string {
	if size == nil {
		return "-"
	}
	return formatBytes(*size)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// DisplayItems prints a table of items.
func DisplayItems(items []box.Item) {
	DisplayItemsWithTitle(items, "Items found:")
}

// DisplayItemsWithTitle prints a table of items under title.
func DisplayItemsWithTitle(items []box.Item, title string) {
	if len(items) == 0 {
		fmt.Println("No items found in this folder.")
		return
	}

	fmt.Println(title)
	fmt.Printf("%-14s %-50s %12s %s\n", "ID", "Name", "Size", "Type")
	fmt.Println(strings.Repeat("-", 90))
	for _, item := range items {
		fmt.Printf("%-14s %-50s %12s %s\n", item.ID, truncate(item.Name, 50), sizeLabel(item.Size), typeLabel(item.Type))
	}
}

// formatBytes converts a size in bytes to a human-readable string using
// IEC units (KiB, MiB, GiB, etc.).
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.RFC1123)
}

// DisplayUser prints the authenticated user.
func DisplayUser(user box.User) {
	fmt.Printf("Logged in as: %s (%s, ID: %s)\n", user.Name, user.Login, user.ID)
	if user.SpaceAmount > 0 {
		fmt.Printf("Storage: %s of %s used\n", formatBytes(user.SpaceUsed), formatBytes(user.SpaceAmount))
	}
}

// DisplayItem prints the metadata of one item. Attributes that were not
// requested are skipped.
func DisplayItem(item box.Item) {
	fmt.Println("Item Metadata:")
	fmt.Printf("  ID:               %s\n", item.ID)
	fmt.Printf("  Type:             %s\n", typeLabel(item.Type))
	if item.Name != "" {
		fmt.Printf("  Name:             %s\n", item.Name)
	}
	if item.ETag != "" {
		fmt.Printf("  ETag:             %s\n", item.ETag)
	}
	if item.Description != "" {
		fmt.Printf("  Description:      %s\n", item.Description)
	}
	if item.Size != nil {
		fmt.Printf("  Size:             %s (%d bytes)\n", formatBytes(*item.Size), *item.Size)
	}
	if item.SHA1 != "" {
		fmt.Printf("  SHA1:             %s\n", item.SHA1)
	}
	if item.CreatedAt != nil {
		fmt.Printf("  Created:          %s\n", formatTime(item.CreatedAt))
	}
	if item.ModifiedAt != nil {
		fmt.Printf("  Last Modified:    %s\n", formatTime(item.ModifiedAt))
	}
	if item.OwnedBy != nil {
		fmt.Printf("  Owner:            %s\n", item.OwnedBy.Name)
	}
	if item.PathCollection != nil {
		fmt.Printf("  Path:             %s\n", displayPath(item))
	}
	if item.ItemCollection != nil {
		fmt.Printf("  Child Count:      %d\n", item.ItemCollection.TotalCount)
	}
	if item.SharedLink != nil {
		DisplaySharedLink(*item.SharedLink)
	}
}

// displayPath renders the ancestors of item followed by its own name.
func displayPath(item box.Item) string {
	parts := make([]string, 0, len(item.PathCollection.Entries)+1)
	for _, e := range item.PathCollection.Entries {
		parts = append(parts, e.Name)
	}
	parts = append(parts, item.Name)
	return "/" + strings.Join(parts[1:], "/")
}

// DisplaySharedLink prints a shared link.
func DisplaySharedLink(link box.SharedLink) {
	fmt.Println("  Shared Link:")
	fmt.Printf("    URL:            %s\n", link.URL)
	if link.DownloadURL != "" {
		fmt.Printf("    Download URL:   %s\n", link.DownloadURL)
	}
	fmt.Printf("    Access:         %s\n", link.Access)
	if link.Permissions != nil {
		fmt.Printf("    Can Download:   %t\n", link.Permissions.CanDownload)
		fmt.Printf("    Can Preview:    %t\n", link.Permissions.CanPreview)
	}
	if link.UnsharedAt != nil {
		fmt.Printf("    Expires:        %s\n", formatTime(link.UnsharedAt))
	}
}

// NewProgressBar creates a byte progress bar on standard error. A
// non-positive maxBytes yields a spinner.
func NewProgressBar(maxBytes int64, description string) *progressbar.ProgressBar {
	if description == "" {
		description = "Transferring..."
	}
	if maxBytes <= 0 {
		maxBytes = -1
	}
	return progressbar.NewOptions64(
		maxBytes,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}
