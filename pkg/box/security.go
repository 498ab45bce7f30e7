// Package box (security.go) validates item names before they are sent and
// guards local files written by downloads.
package box

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Local path errors.
var (
	ErrPathTraversal = errors.New("path traversal attack detected")
	ErrInvalidPath   = errors.New("invalid path")
	ErrFileExists    = errors.New("file already exists")
	ErrUnsafePath    = errors.New("unsafe path detected")
)

// ValidateItemName applies the service's naming rules for files and
// folders. Violations wrap ErrInvalidInput.
func ValidateItemName(name string) error {
	if name == "" {
		return invalidInput("name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxItemNameLength {
		return invalidInput("name too long (max %d characters)", MaxItemNameLength)
	}
	if name == "." || name == ".." {
		return invalidInput("name %q is reserved", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return invalidInput("name cannot contain slashes")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return invalidInput("name cannot contain control characters")
		}
	}
	if strings.TrimRightFunc(name, unicode.IsSpace) != name {
		return invalidInput("name cannot end with whitespace")
	}
	return nil
}

// SanitizeLocalPath cleans a local file system path and makes it absolute.
func SanitizeLocalPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}
	if strings.Contains(path, "\x00") {
		return "", fmt.Errorf("%w: null bytes not allowed in path", ErrUnsafePath)
	}
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == filepath.Separator }) {
		if part == ".." {
			return "", fmt.Errorf("%w: path contains directory traversal elements", ErrPathTraversal)
		}
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: unable to resolve absolute path: %v", ErrInvalidPath, err)
	}
	return abs, nil
}

// ValidateDownloadPath checks that localPath is safe to write and, unless
// allowOverwrite is set, does not exist yet. The parent directory is
// created when missing.
func ValidateDownloadPath(localPath string, allowOverwrite bool) (string, error) {
	sanitized, err := SanitizeLocalPath(localPath)
	if err != nil {
		return "", fmt.Errorf("path validation failed: %w", err)
	}

	if info, err := os.Stat(sanitized); err == nil {
		if info.IsDir() {
			return "", fmt.Errorf("%w: %s is a directory", ErrInvalidPath, sanitized)
		}
		if !allowOverwrite {
			return "", fmt.Errorf("%w: %s", ErrFileExists, sanitized)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("checking file existence: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(sanitized), 0o755); err != nil {
		return "", fmt.Errorf("creating parent directory: %w", err)
	}
	return sanitized, nil
}

// SecureCreateFile opens localPath for writing. Without allowOverwrite the
// file is created exclusively, so a file appearing concurrently is not
// clobbered either.
func SecureCreateFile(localPath string, allowOverwrite bool) (*os.File, error) {
	sanitized, err := ValidateDownloadPath(localPath, allowOverwrite)
	if err != nil {
		return nil, err
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !allowOverwrite {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(sanitized, flags, PermDownload)
	if err != nil {
		if os.IsExist(err) && !allowOverwrite {
			return nil, fmt.Errorf("%w: %s", ErrFileExists, sanitized)
		}
		return nil, fmt.Errorf("creating file: %w", err)
	}
	return file, nil
}
