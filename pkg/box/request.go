package box

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// operation is a logical API action; routes maps each one to its verb and
// path template.
type operation int

const (
	opGet operation = iota
	opListItems
	opCreateFolder
	opDelete
	opCopy
	opUpdate
	opDownload
	opUpload
	opUploadVersion
	opCurrentUser
)

var operationNames = map[operation]string{
	opGet:           "get",
	opListItems:     "list items",
	opCreateFolder:  "create folder",
	opDelete:        "delete",
	opCopy:          "copy",
	opUpdate:        "update",
	opDownload:      "download",
	opUpload:        "upload",
	opUploadVersion: "upload version",
	opCurrentUser:   "current user",
}

func (op operation) String() string { return operationNames[op] }

type precondFamily uint8

const (
	precondNone precondFamily = iota
	precondRead
	precondWrite
)

type route struct {
	method     string
	template   string
	types      []ItemType
	precond    precondFamily
	sharedLink bool
}

var routes = map[operation]route{
	opGet:           {http.MethodGet, "{id}", []ItemType{TypeFolder, TypeFile}, precondRead, true},
	opListItems:     {http.MethodGet, "{id}/items", []ItemType{TypeFolder}, precondNone, true},
	opCreateFolder:  {http.MethodPost, "{parent_id}", []ItemType{TypeFolder}, precondNone, false},
	opDelete:        {http.MethodDelete, "{id}", []ItemType{TypeFolder, TypeFile}, precondWrite, false},
	opCopy:          {http.MethodPost, "{id}/copy", []ItemType{TypeFolder, TypeFile}, precondNone, true},
	opUpdate:        {http.MethodPut, "{id}", []ItemType{TypeFolder, TypeFile}, precondWrite, false},
	opDownload:      {http.MethodGet, "{id}/data", []ItemType{TypeFile}, precondNone, true},
	opUpload:        {http.MethodPost, "data", []ItemType{TypeFile}, precondNone, false},
	opUploadVersion: {http.MethodPost, "{id}/data", []ItemType{TypeFile}, precondWrite, false},
}

// requestParams carries everything an operation may need. Which fields are
// required depends on the route template.
type requestParams struct {
	id           string
	parentID     string
	name         string
	update       UpdateRequest
	precondition Precondition
	options      callOptions
	content      io.Reader
}

// buildRequest turns a logical operation into a ready-to-send request. It
// has no side effects and performs no I/O; upload content is read only
// when the request is sent.
func buildRequest(ctx context.Context, baseURL string, op operation, itemType ItemType, p requestParams) (*http.Request, error) {
	rt, ok := routes[op]
	if !ok {
		return nil, invalidInput("unknown operation %d", op)
	}
	if !supportsType(rt, itemType) {
		return nil, invalidInput("%s is not supported for type %q", op, itemType)
	}

	if err := checkPrecondition(op, rt, p.precondition); err != nil {
		return nil, err
	}
	if p.options.sharedLink != "" && !rt.sharedLink {
		return nil, invalidInput("%s cannot be performed through a shared link", op)
	}

	path, err := expandTemplate(rt.template, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query, err := buildQuery(op, itemType, p.options)
	if err != nil {
		return nil, err
	}

	body, contentType, err := buildBody(op, p)
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimSuffix(baseURL, "/") + "/" + itemType.segment() + "/" + path
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, rt.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", op, err)
	}
	if sb, ok := body.(*streamBody); ok {
		req.ContentLength = sb.size
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if op != opDownload {
		req.Header.Set("Accept", "application/json")
	}
	p.precondition.apply(req.Header)
	if p.options.sharedLink != "" {
		req.Header.Set(HeaderSharedLink, "shared_link="+p.options.sharedLink)
	}
	return req, nil
}

func supportsType(rt route, t ItemType) bool {
	for _, allowed := range rt.types {
		if allowed == t {
			return true
		}
	}
	return false
}

func checkPrecondition(op operation, rt route, p Precondition) error {
	if p.IsNone() {
		return nil
	}
	if rt.precond == precondNone {
		return invalidInput("%s does not accept a precondition", op)
	}
	return p.check(rt.precond == precondWrite)
}

func expandTemplate(template string, p requestParams) (string, error) {
	path := template
	if strings.Contains(path, "{id}") {
		if strings.TrimSpace(p.id) == "" {
			return "", invalidInput("id is required")
		}
		path = strings.ReplaceAll(path, "{id}", url.PathEscape(p.id))
	}
	if strings.Contains(path, "{parent_id}") {
		if strings.TrimSpace(p.parentID) == "" {
			return "", invalidInput("parent id is required")
		}
		path = strings.ReplaceAll(path, "{parent_id}", url.PathEscape(p.parentID))
	}
	return path, nil
}

func buildQuery(op operation, itemType ItemType, o callOptions) (url.Values, error) {
	q := url.Values{}
	if fields := joinFields(o.fields); fields != "" {
		q.Set("fields", fields)
	}
	if op == opDelete && itemType == TypeFolder {
		q.Set("recursive", strconv.FormatBool(o.recursive))
	}
	if op == opListItems {
		if o.offset < 0 {
			return nil, invalidInput("offset must not be negative")
		}
		if o.limit < 0 || o.limit > MaxPageLimit {
			return nil, invalidInput("limit must be between 0 and %d", MaxPageLimit)
		}
		if o.limit > 0 {
			q.Set("limit", strconv.Itoa(o.limit))
		}
		if o.offset > 0 {
			q.Set("offset", strconv.Itoa(o.offset))
		}
	}
	return q, nil
}

func buildBody(op operation, p requestParams) (io.Reader, string, error) {
	switch op {
	case opCreateFolder:
		if err := ValidateItemName(p.name); err != nil {
			return nil, "", err
		}
		return jsonBody(map[string]any{"name": p.name})
	case opCopy:
		if strings.TrimSpace(p.parentID) == "" {
			return nil, "", invalidInput("destination parent id is required")
		}
		body := map[string]any{"parent": map[string]string{"id": p.parentID}}
		if p.name != "" {
			if err := ValidateItemName(p.name); err != nil {
				return nil, "", err
			}
			body["name"] = p.name
		}
		return jsonBody(body)
	case opUpdate:
		body, err := updateBody(p.update)
		if err != nil {
			return nil, "", err
		}
		return jsonBody(body)
	case opUpload:
		if strings.TrimSpace(p.parentID) == "" {
			return nil, "", invalidInput("parent id is required")
		}
		return multipartBody(uploadFileField, p.name, p.content, map[string]string{uploadFolderField: p.parentID})
	case opUploadVersion:
		return multipartBody(uploadVersionField, p.name, p.content, nil)
	}
	return nil, "", nil
}

// updateBody holds only the attributes that are being changed, so that
// several of them can be combined in one request.
func updateBody(u UpdateRequest) (map[string]any, error) {
	if u.empty() {
		return nil, invalidInput("update requires at least one attribute")
	}
	if u.SharedLink != nil && u.RemoveSharedLink {
		return nil, invalidInput("cannot set and remove a shared link at once")
	}

	body := make(map[string]any, 4)
	if u.ParentID != "" {
		body["parent"] = map[string]string{"id": u.ParentID}
	}
	if u.Name != "" {
		if err := ValidateItemName(u.Name); err != nil {
			return nil, err
		}
		body["name"] = u.Name
	}
	if u.Description != "" {
		body["description"] = u.Description
	}
	switch {
	case u.SharedLink != nil:
		if !u.SharedLink.Access.Valid() {
			return nil, invalidInput("unknown shared link access %q", u.SharedLink.Access)
		}
		body["shared_link"] = u.SharedLink
	case u.RemoveSharedLink:
		body["shared_link"] = nil
	}
	return body, nil
}

func jsonBody(v any) (io.Reader, string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("marshaling request body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

// multipartBody lays out the upload form around content without reading
// it. Attribute fields are written before the file part. The body length
// is known when content reports it; otherwise the request goes out chunked.
func multipartBody(fileField, fileName string, content io.Reader, params map[string]string) (io.Reader, string, error) {
	if err := ValidateItemName(fileName); err != nil {
		return nil, "", err
	}
	if content == nil {
		return nil, "", invalidInput("content is required")
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, params[k]); err != nil {
			return nil, "", fmt.Errorf("writing form field %s: %w", k, err)
		}
	}
	if _, err := w.CreateFormFile(fileField, fileName); err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	head := bytes.NewReader(append([]byte(nil), buf.Bytes()...))
	buf.Reset()
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	tail := bytes.NewReader(append([]byte(nil), buf.Bytes()...))

	body := &streamBody{Reader: io.MultiReader(head, content, tail), size: -1}
	if n, ok := remainingLength(content); ok {
		body.size = head.Size() + n + tail.Size()
	}
	return body, w.FormDataContentType(), nil
}

// streamBody is a request body that is read once, straight from the
// caller's reader. size is -1 when unknown.
type streamBody struct {
	io.Reader
	size int64
}

// remainingLength reports how many bytes r will still yield, for readers
// that can tell without being consumed.
func remainingLength(r io.Reader) (int64, bool) {
	if l, ok := r.(interface{ Len() int }); ok {
		return int64(l.Len()), true
	}
	s, ok := r.(io.Seeker)
	if !ok {
		return 0, false
	}
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, false
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, false
	}
	if _, err := s.Seek(cur, io.SeekStart); err != nil {
		return 0, false
	}
	return end - cur, true
}
