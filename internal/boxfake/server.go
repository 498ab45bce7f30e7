// Package boxfake is an in-memory emulation of the Box API 2.0 endpoints
// used by the SDK. It serves requests through a fiber app without opening
// a socket; HTTPClient returns a client wired straight into it.
package boxfake

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// BaseURL is the API root to configure clients with.
const BaseURL = "http://box.fake/2.0/"

// DefaultToken is the bearer token accepted unless WithToken says otherwise.
const DefaultToken = "fake-token"

// RootID is the id of the "All Files" folder.
const RootID = "0"

const (
	kindFolder = "folder"
	kindFile   = "file"
)

type sharedLink struct {
	token       string
	access      string
	unsharedAt  string
	canDownload bool
	canPreview  bool
}

type node struct {
	kind        string
	id          string
	name        string
	description string
	parentID    string
	etag        int
	sequence    int
	content     []byte
	createdAt   time.Time
	modifiedAt  time.Time
	link        *sharedLink
}

func (n *node) etagString() string { return strconv.Itoa(n.etag) }

// touch records a modification of n.
func (n *node) touch(now time.Time) {
	n.etag++
	n.sequence++
	n.modifiedAt = now
}

type injected struct {
	status int
	code   string
	raw    string
}

// Server is the emulated service. All methods are safe for concurrent use.
type Server struct {
	mu     sync.Mutex
	app    *fiber.App
	token  string
	nodes  map[string]*node
	nextID int
	fail   []injected
	calls  int
	now    func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithToken sets the only bearer token the server accepts.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a server holding only the root folder.
func New(opts ...Option) *Server {
	s := &Server{
		token:  DefaultToken,
		nodes:  make(map[string]*node),
		nextID: 1000,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
	for _, opt := range opts {
		opt(s)
	}
	now := s.now()
	s.nodes[RootID] = &node{kind: kindFolder, id: RootID, name: "All Files", createdAt: now, modifiedAt: now}

	s.app = fiber.New(fiber.Config{
		Immutable:             true,
		DisableStartupMessage: true,
		BodyLimit:             64 * 1024 * 1024,
		ErrorHandler:          errorHandler,
	})
	s.routes()
	return s
}

// App exposes the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// HTTPClient returns a client whose requests are served in-process. It
// adds no credentials.
func (s *Server) HTTPClient() *http.Client {
	return &http.Client{Transport: roundTripper{app: s.app}}
}

type roundTripper struct {
	app *fiber.App
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.Body != http.NoBody && req.ContentLength <= 0 {
		// Chunked upload: fiber's test harness needs the length up front.
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("boxfake: reading request body: %w", err)
		}
		req = req.Clone(req.Context())
		req.Body = io.NopCloser(bytes.NewReader(data))
		req.ContentLength = int64(len(data))
	}
	res, err := rt.app.Test(req, -1)
	if err != nil {
		return nil, fmt.Errorf("boxfake: %w", err)
	}
	res.Request = req
	return res, nil
}

// FailNext makes the next authenticated request fail with a Box error
// payload carrying status and code.
func (s *Server) FailNext(status int, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = append(s.fail, injected{status: status, code: code})
}

// FailNextRaw makes the next authenticated request fail with status and a
// verbatim body.
func (s *Server) FailNextRaw(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = append(s.fail, injected{status: status, raw: body})
}

// Calls returns the number of requests that passed authentication.
func (s *Server) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// AddFolder creates a folder directly in the store and returns its id.
func (s *Server) AddFolder(parentID, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(kindFolder, parentID, name, nil).id
}

// AddFile creates a file directly in the store and returns its id.
func (s *Server) AddFile(parentID, name string, content []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(kindFile, parentID, name, content).id
}

// Exists reports whether an item with id is stored.
func (s *Server) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nodes[id]
	return ok
}

// Content returns a copy of a file's bytes.
func (s *Server) Content(id string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok || n.kind != kindFile {
		return nil, false
	}
	return append([]byte(nil), n.content...), true
}

// ETag returns the current etag of an item.
func (s *Server) ETag(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return "", false
	}
	return n.etagString(), true
}

// Touch modifies an item out of band, as another client would.
func (s *Server) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[id]; ok {
		n.touch(s.now())
	}
}

// SharedLinkURL returns the shared link of an item, or "" if it has none.
func (s *Server) SharedLinkURL(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[id]; ok && n.link != nil {
		return linkURL(n.link)
	}
	return ""
}

// insert adds a node. Callers hold s.mu.
func (s *Server) insert(kind, parentID, name string, content []byte) *node {
	s.nextID++
	now := s.now()
	n := &node{
		kind:       kind,
		id:         strconv.Itoa(s.nextID),
		name:       name,
		parentID:   parentID,
		content:    content,
		createdAt:  now,
		modifiedAt: now,
	}
	s.nodes[n.id] = n
	return n
}

// children lists the direct children of id, folders first, then by name.
func (s *Server) children(id string) []*node {
	var out []*node
	for _, n := range s.nodes {
		if n.parentID == id && n.id != RootID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].kind != out[j].kind {
			return out[i].kind == kindFolder
		}
		if out[i].name != out[j].name {
			return out[i].name < out[j].name
		}
		return out[i].id < out[j].id
	})
	return out
}

// childNamed finds a child of parentID named name, ignoring except.
func (s *Server) childNamed(parentID, name, except string) *node {
	for _, n := range s.children(parentID) {
		if n.name == name && n.id != except {
			return n
		}
	}
	return nil
}

// isWithin reports whether candidate is ancestor or lies below it.
func (s *Server) isWithin(candidate, ancestor string) bool {
	for id := candidate; id != ""; {
		if id == ancestor {
			return true
		}
		n, ok := s.nodes[id]
		if !ok || id == RootID {
			return false
		}
		id = n.parentID
	}
	return false
}

func (s *Server) size(n *node) int64 {
	if n.kind == kindFile {
		return int64(len(n.content))
	}
	var total int64
	for _, c := range s.children(n.id) {
		total += s.size(c)
	}
	return total
}

// remove deletes n and everything below it.
func (s *Server) remove(n *node) {
	for _, c := range s.children(n.id) {
		s.remove(c)
	}
	delete(s.nodes, n.id)
}

// clone copies src under parentID, recursively for folders.
func (s *Server) clone(src *node, parentID, name string) *node {
	dst := s.insert(src.kind, parentID, name, append([]byte(nil), src.content...))
	dst.description = src.description
	if src.kind == kindFolder {
		for _, c := range s.children(src.id) {
			s.clone(c, dst.id, c.name)
		}
	}
	return dst
}
