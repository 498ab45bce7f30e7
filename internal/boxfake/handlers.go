package boxfake

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const helpURL = "http://developers.box.com/docs/#errors"

// apiError is rendered by errorHandler as a Box error payload.
type apiError struct {
	status  int
	code    string
	message string
	raw     string
}

func (e *apiError) Error() string { return e.code + ": " + e.message }

func fail(status int, code, message string) error {
	return &apiError{status: status, code: code, message: message}
}

func notFound(what, id string) error {
	return fail(http.StatusNotFound, "not_found", "Could not find the specified resource: "+what+" "+id)
}

func errorHandler(c *fiber.Ctx, err error) error {
	var ae *apiError
	var fe *fiber.Error
	switch {
	case errors.As(err, &ae):
	case errors.As(err, &fe):
		code := "bad_request"
		switch fe.Code {
		case http.StatusNotFound:
			code = "not_found"
		case http.StatusMethodNotAllowed:
			code = "method_not_allowed"
		}
		ae = &apiError{status: fe.Code, code: code, message: fe.Message}
	default:
		ae = &apiError{status: http.StatusInternalServerError, code: "internal_server_error", message: err.Error()}
	}

	if ae.raw != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(ae.status).SendString(ae.raw)
	}
	return c.Status(ae.status).JSON(fiber.Map{
		"type":       "error",
		"status":     ae.status,
		"code":       ae.code,
		"message":    ae.message,
		"help_url":   helpURL,
		"request_id": uuid.NewString(),
	})
}

func (s *Server) routes() {
	api := s.app.Group("/2.0", s.authenticate)

	api.Get("/users/me", s.currentUser)

	api.Get("/folders/:id", s.getItem(kindFolder))
	api.Get("/folders/:id/items", s.listItems)
	api.Post("/folders/:id", s.createFolder)
	api.Post("/folders/:id/copy", s.copyItem(kindFolder))
	api.Put("/folders/:id", s.updateItem(kindFolder))
	api.Delete("/folders/:id", s.deleteItem(kindFolder))

	api.Post("/files/data", s.uploadFile)
	api.Get("/files/:id", s.getItem(kindFile))
	api.Get("/files/:id/data", s.download)
	api.Post("/files/:id/data", s.uploadVersion)
	api.Post("/files/:id/copy", s.copyItem(kindFile))
	api.Put("/files/:id", s.updateItem(kindFile))
	api.Delete("/files/:id", s.deleteItem(kindFile))
}

// authenticate checks the bearer token and serves injected failures.
func (s *Server) authenticate(c *fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) != "Bearer "+s.token {
		return fail(http.StatusUnauthorized, "unauthorized", "Access token is missing or invalid")
	}

	s.mu.Lock()
	s.calls++
	var inj *injected
	if len(s.fail) > 0 {
		inj = &s.fail[0]
		s.fail = s.fail[1:]
	}
	s.mu.Unlock()

	if inj != nil {
		if inj.raw != "" {
			return &apiError{status: inj.status, raw: inj.raw}
		}
		return fail(inj.status, inj.code, "injected failure")
	}
	return c.Next()
}

func (s *Server) currentUser(c *fiber.Ctx) error {
	s.mu.Lock()
	used := s.size(s.nodes[RootID])
	s.mu.Unlock()

	user := map[string]any{"status": "active", "space_amount": int64(10 << 30), "space_used": used}
	for k, v := range owner {
		user[k] = v
	}
	return c.JSON(filter(user, parseFields(c.Query("fields"))))
}

// lookup finds an item of kind, honoring the BoxApi shared link header.
// Callers hold s.mu.
func (s *Server) lookup(c *fiber.Ctx, kind, id string) (*node, error) {
	n, ok := s.nodes[id]
	if !ok || n.kind != kind {
		return nil, notFound(kind, id)
	}
	if header := c.Get("BoxApi"); header != "" {
		link := strings.TrimPrefix(header, "shared_link=")
		shared := s.byLink(link)
		if shared == nil || !s.isWithin(n.id, shared.id) {
			return nil, notFound("shared_link", link)
		}
	}
	return n, nil
}

func (s *Server) byLink(link string) *node {
	for _, n := range s.nodes {
		if n.link != nil && linkURL(n.link) == link {
			return n
		}
	}
	return nil
}

func checkIfMatch(c *fiber.Ctx, n *node) error {
	if want := c.Get(fiber.HeaderIfMatch); want != "" && want != n.etagString() {
		return fail(http.StatusPreconditionFailed, "precondition_failed", "The resource has been modified. Please retrieve the resource again and retry")
	}
	return nil
}

func (s *Server) getItem(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		n, err := s.lookup(c, kind, c.Params("id"))
		if err != nil {
			return err
		}
		if match := c.Get(fiber.HeaderIfNoneMatch); match != "" && match == n.etagString() {
			c.Status(http.StatusNotModified)
			return nil
		}
		return c.JSON(filter(s.full(n), parseFields(c.Query("fields"))))
	}
}

func (s *Server) listItems(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.lookup(c, kindFolder, c.Params("id"))
	if err != nil {
		return err
	}
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", listLimit)
	if offset < 0 || limit < 0 || limit > 1000 {
		return fail(http.StatusBadRequest, "bad_request", "Invalid offset or limit")
	}

	fields := parseFields(c.Query("fields"))
	kids := s.children(n.id)
	entries := make([]map[string]any, 0, limit)
	for i := offset; i < len(kids) && len(entries) < limit; i++ {
		if fields == nil {
			entries = append(entries, s.mini(kids[i]))
		} else {
			entries = append(entries, filter(s.full(kids[i]), fields))
		}
	}
	return c.JSON(fiber.Map{
		"total_count": len(kids),
		"entries":     entries,
		"offset":      offset,
		"limit":       limit,
	})
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && len([]rune(name)) <= 255 &&
		strings.TrimRight(name, " ") == name
}

func (s *Server) createFolder(c *fiber.Ctx) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return fail(http.StatusBadRequest, "bad_request", "Invalid JSON body")
	}
	if !validName(body.Name) {
		return fail(http.StatusBadRequest, "item_name_invalid", "Item name invalid")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	parent, err := s.lookup(c, kindFolder, c.Params("id"))
	if err != nil {
		return err
	}
	if s.childNamed(parent.id, body.Name, "") != nil {
		return fail(http.StatusConflict, "item_name_in_use", "Item with the same name already exists")
	}
	n := s.insert(kindFolder, parent.id, body.Name, nil)
	return c.Status(http.StatusCreated).JSON(filter(s.full(n), parseFields(c.Query("fields"))))
}

func (s *Server) copyItem(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Parent struct {
				ID string `json:"id"`
			} `json:"parent"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(c.Body(), &body); err != nil || body.Parent.ID == "" {
			return fail(http.StatusBadRequest, "bad_request", "A destination parent is required")
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		src, err := s.lookup(c, kind, c.Params("id"))
		if err != nil {
			return err
		}
		dest, ok := s.nodes[body.Parent.ID]
		if !ok || dest.kind != kindFolder {
			return notFound(kindFolder, body.Parent.ID)
		}
		if kind == kindFolder && s.isWithin(dest.id, src.id) {
			return fail(http.StatusBadRequest, "bad_request", "Cannot copy a folder into itself")
		}

		name := body.Name
		if name == "" {
			name = src.name
		} else if !validName(name) {
			return fail(http.StatusBadRequest, "item_name_invalid", "Item name invalid")
		}
		if s.childNamed(dest.id, name, "") != nil {
			return fail(http.StatusConflict, "item_name_in_use", "Item with the same name already exists")
		}

		n := s.clone(src, dest.id, name)
		return c.Status(http.StatusCreated).JSON(filter(s.full(n), parseFields(c.Query("fields"))))
	}
}

func (s *Server) updateItem(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body map[string]json.RawMessage
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return fail(http.StatusBadRequest, "bad_request", "Invalid JSON body")
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		n, err := s.lookup(c, kind, c.Params("id"))
		if err != nil {
			return err
		}
		if err := checkIfMatch(c, n); err != nil {
			return err
		}

		name, parentID := n.name, n.parentID
		if raw, ok := body["name"]; ok {
			if err := json.Unmarshal(raw, &name); err != nil || !validName(name) {
				return fail(http.StatusBadRequest, "item_name_invalid", "Item name invalid")
			}
		}
		if raw, ok := body["parent"]; ok {
			var p struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(raw, &p); err != nil || p.ID == "" {
				return fail(http.StatusBadRequest, "bad_request", "Invalid parent")
			}
			dest, ok := s.nodes[p.ID]
			if !ok || dest.kind != kindFolder {
				return notFound(kindFolder, p.ID)
			}
			if kind == kindFolder && s.isWithin(dest.id, n.id) {
				return fail(http.StatusBadRequest, "bad_request", "Cannot move a folder into itself")
			}
			parentID = dest.id
		}
		if n.id != RootID && s.childNamed(parentID, name, n.id) != nil {
			return fail(http.StatusConflict, "item_name_in_use", "Item with the same name already exists")
		}

		var link *sharedLink
		removeLink := false
		if raw, ok := body["shared_link"]; ok {
			if string(raw) == "null" {
				removeLink = true
			} else if link, err = parseLink(raw, n.link); err != nil {
				return err
			}
		}
		if raw, ok := body["description"]; ok {
			if err := json.Unmarshal(raw, &n.description); err != nil {
				return fail(http.StatusBadRequest, "bad_request", "Invalid description")
			}
		}

		n.name, n.parentID = name, parentID
		switch {
		case removeLink:
			n.link = nil
		case link != nil:
			n.link = link
		}
		n.touch(s.now())
		return c.JSON(filter(s.full(n), parseFields(c.Query("fields"))))
	}
}

// parseLink applies a shared link request on top of the current link,
// keeping its URL.
func parseLink(raw json.RawMessage, current *sharedLink) (*sharedLink, error) {
	var req struct {
		Access      string `json:"access"`
		UnsharedAt  string `json:"unshared_at"`
		Permissions *struct {
			CanDownload *bool `json:"can_download"`
			CanPreview  *bool `json:"can_preview"`
		} `json:"permissions"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fail(http.StatusBadRequest, "bad_request", "Invalid shared link")
	}

	link := &sharedLink{access: "open", canDownload: true, canPreview: true}
	if current != nil {
		cp := *current
		link = &cp
	} else {
		link.token = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	switch req.Access {
	case "":
	case "open", "company", "collaborators":
		link.access = req.Access
	default:
		return nil, fail(http.StatusBadRequest, "bad_request", "Invalid shared link access")
	}
	if req.UnsharedAt != "" {
		link.unsharedAt = req.UnsharedAt
	}
	if p := req.Permissions; p != nil {
		if p.CanDownload != nil {
			link.canDownload = *p.CanDownload
		}
		if p.CanPreview != nil {
			link.canPreview = *p.CanPreview
		}
	}
	return link, nil
}

func (s *Server) deleteItem(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		n, err := s.lookup(c, kind, c.Params("id"))
		if err != nil {
			return err
		}
		if n.id == RootID {
			return fail(http.StatusForbidden, "access_denied_insufficient_permissions", "The root folder cannot be deleted")
		}
		if err := checkIfMatch(c, n); err != nil {
			return err
		}
		if kind == kindFolder && c.Query("recursive") != "true" && len(s.children(n.id)) > 0 {
			return fail(http.StatusBadRequest, "folder_not_empty", "Cannot delete - folder not empty")
		}
		s.remove(n)
		c.Status(http.StatusNoContent)
		return nil
	}
}

func (s *Server) download(c *fiber.Ctx) error {
	s.mu.Lock()
	n, err := s.lookup(c, kindFile, c.Params("id"))
	var content []byte
	if err == nil {
		content = append([]byte(nil), n.content...)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.Send(content)
}

func readPart(c *fiber.Ctx, field string) (string, []byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", nil, fail(http.StatusBadRequest, "bad_request", "Missing file part "+field)
	}
	f, err := header.Open()
	if err != nil {
		return "", nil, fail(http.StatusBadRequest, "bad_request", err.Error())
	}
	defer func(f multipart.File) { _ = f.Close() }(f)

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fail(http.StatusBadRequest, "bad_request", err.Error())
	}
	return header.Filename, data, nil
}

func (s *Server) uploadFile(c *fiber.Ctx) error {
	folderID := c.FormValue("folder_id")
	name, data, err := readPart(c, "filename1")
	if err != nil {
		return err
	}
	if folderID == "" {
		return fail(http.StatusBadRequest, "bad_request", "folder_id is required")
	}
	if !validName(name) {
		return fail(http.StatusBadRequest, "item_name_invalid", "Item name invalid")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.nodes[folderID]
	if !ok || parent.kind != kindFolder {
		return notFound(kindFolder, folderID)
	}
	if s.childNamed(parent.id, name, "") != nil {
		return fail(http.StatusConflict, "item_name_in_use", "Item with the same name already exists")
	}
	n := s.insert(kindFile, parent.id, name, data)
	return s.sendCollection(c, n)
}

func (s *Server) uploadVersion(c *fiber.Ctx) error {
	_, data, err := readPart(c, "filename")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.lookup(c, kindFile, c.Params("id"))
	if err != nil {
		return err
	}
	if err := checkIfMatch(c, n); err != nil {
		return err
	}
	n.content = data
	n.touch(s.now())
	return s.sendCollection(c, n)
}

func (s *Server) sendCollection(c *fiber.Ctx, n *node) error {
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"total_count": 1,
		"entries":     []map[string]any{filter(s.full(n), parseFields(c.Query("fields")))},
	})
}

func itoa(i int) string { return strconv.Itoa(i) }

func sha1Hex(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
