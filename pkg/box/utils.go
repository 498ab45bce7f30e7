package box

import (
	"fmt"
	"io"

	"github.com/tonimelisma/box-client/internal/logger"
)

// closeBodySafely closes a response body from a defer and logs a failure.
func closeBodySafely(body io.Closer, l logger.Logger, operation string) {
	if err := body.Close(); err != nil {
		l.Warnf("Failed to close %s body: %v", operation, err)
	}
}

// firstEntry unwraps the single-item collection returned by uploads.
func firstEntry(col ItemCollection, operation string) (Item, error) {
	if len(col.Entries) == 0 {
		return Item{}, fmt.Errorf("%w: %s returned no entries", ErrDecodingFailed, operation)
	}
	return col.Entries[0], nil
}
