// Package box (file.go) provides file shortcuts and the content transfer
// operations: download, upload of a new file and upload of a new version.
package box

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// Content is a streamed file body. Callers must Close it.
type Content struct {
	io.ReadCloser
	// Size is the Content-Length reported by the service, or -1.
	Size        int64
	ContentType string
}

// GetFile fetches a file's metadata by id.
func (c *Client) GetFile(ctx context.Context, id string, pre Precondition, opts ...CallOption) (File, error) {
	return c.Get(ctx, TypeFile, id, pre, opts...)
}

// DeleteFile removes a file. Pass IfMatch(etag) to delete only the version
// the caller has seen.
func (c *Client) DeleteFile(ctx context.Context, id string, pre Precondition) error {
	return c.Delete(ctx, TypeFile, id, pre)
}

// CopyFile copies a file into parentID.
func (c *Client) CopyFile(ctx context.Context, id, parentID, newName string, opts ...CallOption) (File, error) {
	return c.Copy(ctx, TypeFile, id, parentID, newName, opts...)
}

// MoveFile moves a file under parentID.
func (c *Client) MoveFile(ctx context.Context, id, parentID string, pre Precondition, opts ...CallOption) (File, error) {
	return c.Move(ctx, TypeFile, id, parentID, pre, opts...)
}

// RenameFile renames a file.
func (c *Client) RenameFile(ctx context.Context, id, name string, pre Precondition, opts ...CallOption) (File, error) {
	return c.Rename(ctx, TypeFile, id, name, pre, opts...)
}

// ShareFile sets the shared link of a file.
func (c *Client) ShareFile(ctx context.Context, id string, link SharedLinkSpec, pre Precondition, opts ...CallOption) (File, error) {
	return c.Share(ctx, TypeFile, id, link, pre, opts...)
}

// Download opens the content of a file.
//
// Example:
//
//	content, err := client.Download(ctx, fileID)
//	if err != nil { return err }
//	defer content.Close()
//	_, err = io.Copy(dst, content)
func (c *Client) Download(ctx context.Context, id string, opts ...CallOption) (*Content, error) {
	c.logger.Debugf("Download called for file %s", id)

	ctx, cancel := context.WithCancel(ctx)
	req, err := buildRequest(ctx, c.baseURL, opDownload, TypeFile, requestParams{id: id, options: collectOptions(opts)})
	if err != nil {
		cancel()
		return nil, err
	}

	var headerTimer *time.Timer
	if c.timeout > 0 {
		headerTimer = time.AfterFunc(c.timeout, cancel)
	}
	res, err := c.send(req, opDownload)
	if headerTimer != nil && !headerTimer.Stop() && err == nil {
		closeBodySafely(res.Body, c.logger, opDownload.String())
		err = fmt.Errorf("%s: %w: no response body within %s", opDownload, ErrNetworkFailed, c.timeout)
	}
	if err != nil {
		cancel()
		return nil, err
	}
	if err := classifyResponse(res, NoPrecondition()); err != nil {
		closeBodySafely(res.Body, c.logger, opDownload.String())
		cancel()
		return nil, fmt.Errorf("download file %s: %w", id, err)
	}
	return &Content{
		ReadCloser:  &cancelOnClose{ReadCloser: res.Body, cancel: cancel},
		Size:        res.ContentLength,
		ContentType: res.Header.Get("Content-Type"),
	}, nil
}

// cancelOnClose releases the request context once the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// DownloadToFile writes the content of a file to localPath, refusing to
// replace an existing file unless overwrite is set. progress, when not
// nil, receives a copy of every byte written.
func (c *Client) DownloadToFile(ctx context.Context, id, localPath string, overwrite bool, progress io.Writer, opts ...CallOption) (int64, error) {
	content, err := c.Download(ctx, id, opts...)
	if err != nil {
		return 0, err
	}
	defer closeBodySafely(content, c.logger, opDownload.String())

	f, err := SecureCreateFile(localPath, overwrite)
	if err != nil {
		return 0, err
	}

	var dst io.Writer = f
	if progress != nil {
		dst = io.MultiWriter(f, progress)
	}
	n, copyErr := io.Copy(dst, content)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(localPath)
		return n, fmt.Errorf("%w: writing %s: %w", ErrNetworkFailed, localPath, copyErr)
	}
	if closeErr != nil {
		return n, fmt.Errorf("closing %s: %w", localPath, closeErr)
	}
	return n, nil
}

// Upload creates a new file named name in parentID.
func (c *Client) Upload(ctx context.Context, parentID, name string, content io.Reader, opts ...CallOption) (File, error) {
	c.logger.Debugf("Upload called for parent %s, name '%s'", parentID, name)
	var col ItemCollection
	err := c.call(ctx, opUpload, TypeFile, requestParams{
		parentID: parentID,
		name:     name,
		content:  content,
		options:  collectOptions(opts),
	}, &col)
	if err != nil {
		return File{}, err
	}
	return firstEntry(col, opUpload.String())
}

// UploadVersion replaces the content of an existing file. With IfMatch the
// upload fails with ErrStaleVersion when someone else changed the file.
func (c *Client) UploadVersion(ctx context.Context, id, name string, content io.Reader, pre Precondition, opts ...CallOption) (File, error) {
	c.logger.Debugf("UploadVersion called for file %s (%s)", id, pre)
	var col ItemCollection
	err := c.call(ctx, opUploadVersion, TypeFile, requestParams{
		id:           id,
		name:         name,
		content:      content,
		precondition: pre,
		options:      collectOptions(opts),
	}, &col)
	if err != nil {
		return File{}, err
	}
	return firstEntry(col, opUploadVersion.String())
}

// UploadFile uploads a local file into parentID under its base name.
func (c *Client) UploadFile(ctx context.Context, parentID, localPath string, opts ...CallOption) (File, error) {
	cleaned, err := SanitizeLocalPath(localPath)
	if err != nil {
		return File{}, err
	}
	f, err := os.Open(cleaned)
	if err != nil {
		return File{}, fmt.Errorf("opening local file: %w", err)
	}
	defer closeBodySafely(f, c.logger, "local file")

	info, err := f.Stat()
	if err != nil {
		return File{}, fmt.Errorf("reading local file info: %w", err)
	}
	return c.Upload(ctx, parentID, info.Name(), f, opts...)
}
