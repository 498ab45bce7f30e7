package boxfake

import (
	"strings"
	"time"
)

const (
	linkBase     = "https://app.box.com/s/"
	downloadBase = "https://app.box.com/shared/static/"
	listLimit    = 100
)

var owner = map[string]any{
	"type":  "user",
	"id":    "1",
	"name":  "Fake User",
	"login": "fake.user@example.com",
}

func linkURL(l *sharedLink) string { return linkBase + l.token }

func stamp(t time.Time) string { return t.Format(time.RFC3339) }

// mini is the compact representation used for parents, path entries and
// listing entries.
func (s *Server) mini(n *node) map[string]any {
	return map[string]any{
		"type":        n.kind,
		"id":          n.id,
		"sequence_id": seq(n),
		"etag":        etag(n),
		"name":        n.name,
	}
}

// root has no etag or sequence id.
func seq(n *node) any {
	if n.id == RootID {
		return nil
	}
	return itoa(n.sequence)
}

func etag(n *node) any {
	if n.id == RootID {
		return nil
	}
	return n.etagString()
}

// full is the standard representation of an item.
func (s *Server) full(n *node) map[string]any {
	m := s.mini(n)
	m["description"] = n.description
	m["size"] = s.size(n)
	m["created_at"] = stamp(n.createdAt)
	m["modified_at"] = stamp(n.modifiedAt)
	m["created_by"] = owner
	m["modified_by"] = owner
	m["owned_by"] = owner
	m["item_status"] = "active"

	if p, ok := s.nodes[n.parentID]; ok && n.id != RootID {
		m["parent"] = s.mini(p)
	} else {
		m["parent"] = nil
	}
	m["path_collection"] = s.pathCollection(n)
	m["shared_link"] = s.link(n)

	if n.kind == kindFile {
		m["sha1"] = sha1Hex(n.content)
	} else {
		kids := s.children(n.id)
		entries := make([]map[string]any, 0, len(kids))
		for i, c := range kids {
			if i == listLimit {
				break
			}
			entries = append(entries, s.mini(c))
		}
		m["item_collection"] = map[string]any{
			"total_count": len(kids),
			"entries":     entries,
			"offset":      0,
			"limit":       listLimit,
		}
	}
	return m
}

func (s *Server) pathCollection(n *node) map[string]any {
	var chain []map[string]any
	for id := n.parentID; n.id != RootID && id != ""; {
		p, ok := s.nodes[id]
		if !ok {
			break
		}
		chain = append([]map[string]any{s.mini(p)}, chain...)
		if id == RootID {
			break
		}
		id = p.parentID
	}
	if chain == nil {
		chain = []map[string]any{}
	}
	return map[string]any{"total_count": len(chain), "entries": chain}
}

func (s *Server) link(n *node) any {
	if n.link == nil {
		return nil
	}
	l := map[string]any{
		"url":                 linkURL(n.link),
		"access":              n.link.access,
		"effective_access":    n.link.access,
		"is_password_enabled": false,
		"download_count":      0,
		"preview_count":       0,
		"permissions": map[string]any{
			"can_download": n.link.canDownload,
			"can_preview":  n.link.canPreview,
		},
	}
	if n.kind == kindFile {
		l["download_url"] = downloadBase + n.link.token
	}
	if n.link.unsharedAt != "" {
		l["unshared_at"] = n.link.unsharedAt
	}
	return l
}

// filter keeps id, type and the requested fields of a representation.
func filter(m map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return m
	}
	out := map[string]any{"type": m["type"], "id": m["id"]}
	for _, f := range fields {
		if v, ok := m[f]; ok {
			out[f] = v
		}
	}
	return out
}

func parseFields(raw string) []string {
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
