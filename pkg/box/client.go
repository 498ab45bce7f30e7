package box

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tonimelisma/box-client/internal/logger"
	"golang.org/x/oauth2"
)

// Token is the OAuth2 token representation used across the SDK.
type Token oauth2.Token

// Client issues requests against the Box API. It holds no per-call state
// and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	uploadURL  string
	timeout    time.Duration
	logger     logger.Logger
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithBaseURL points the client at another API root, such as a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = ensureSlash(baseURL) }
}

// WithUploadBaseURL sets a separate root for content uploads. By default
// uploads use the API root.
func WithUploadBaseURL(baseURL string) Option {
	return func(c *Client) { c.uploadURL = ensureSlash(baseURL) }
}

// WithHTTPClient uses hc as is. The caller is then responsible for
// attaching credentials.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds metadata requests end to end. For downloads it bounds
// only the wait for response headers, and uploads are limited solely by the
// caller's context, so large transfers are not cut off mid-stream.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a client whose requests carry a bearer token from ts.
// Refreshing and persisting tokens is the token source's business; see
// the app package for a persisting wrapper.
//
// Example:
//
//	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: devToken})
//	client := box.NewClient(ctx, ts, logger.NoopLogger{})
//	folder, err := client.GetFolder(ctx, box.RootFolderID, box.NoPrecondition())
func NewClient(ctx context.Context, ts oauth2.TokenSource, l logger.Logger, opts ...Option) *Client {
	if l == nil {
		l = logger.NoopLogger{}
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		logger:  l,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = oauth2.NewClient(ctx, ts)
	}
	if c.uploadURL == "" {
		c.uploadURL = c.baseURL
	}
	return c
}

// NewClientWithToken is a shortcut for a fixed developer or service token.
func NewClientWithToken(ctx context.Context, accessToken string, l logger.Logger, opts ...Option) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	return NewClient(ctx, ts, l, opts...)
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// call builds, sends and maps one request.
func (c *Client) call(ctx context.Context, op operation, itemType ItemType, p requestParams, dest any) error {
	base := c.baseURL
	if op == opUpload || op == opUploadVersion {
		base = c.uploadURL
	}

	ctx, cancel := c.withOperationTimeout(ctx, op)
	defer cancel()

	req, err := buildRequest(ctx, base, op, itemType, p)
	if err != nil {
		return err
	}
	res, err := c.send(req, op)
	if err != nil {
		return err
	}
	defer closeBodySafely(res.Body, c.logger, op.String())

	if err := mapResponse(res, p.precondition, dest); err != nil {
		return fmt.Errorf("%s %s %s: %w", op, itemType, describeTarget(p), err)
	}
	return nil
}

// withOperationTimeout applies the client timeout to operations whose
// payload is a small JSON document. Transfers carry their own bounds.
func (c *Client) withOperationTimeout(ctx context.Context, op operation) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 || op == opUpload || op == opUploadVersion || op == opDownload {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// send performs the round trip. It does not retry.
func (c *Client) send(req *http.Request, op operation) (*http.Response, error) {
	if c.httpClient == nil {
		return nil, fmt.Errorf("%w: HTTP client is nil", ErrOperationFailed)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("box request", "op", op.String(), "method", req.Method, "url", req.URL.String())
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("box request failed", "op", op.String(), "error", err)
		return nil, fmt.Errorf("%s: %w", op, classifyTransportError(err))
	}
	c.logger.Debug("box response", "op", op.String(), "status", res.StatusCode)
	return res, nil
}

func describeTarget(p requestParams) string {
	if p.id != "" {
		return p.id
	}
	return "in " + p.parentID
}

func ensureSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
