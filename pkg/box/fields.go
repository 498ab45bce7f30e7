package box

import (
	"strings"
)

// Field names an attribute that can be requested through the fields query
// parameter.
type Field string

const (
	FieldType           Field = "type"
	FieldID             Field = "id"
	FieldSequenceID     Field = "sequence_id"
	FieldETag           Field = "etag"
	FieldName           Field = "name"
	FieldDescription    Field = "description"
	FieldSize           Field = "size"
	FieldSHA1           Field = "sha1"
	FieldItemStatus     Field = "item_status"
	FieldCreatedAt      Field = "created_at"
	FieldModifiedAt     Field = "modified_at"
	FieldCreatedBy      Field = "created_by"
	FieldModifiedBy     Field = "modified_by"
	FieldOwnedBy        Field = "owned_by"
	FieldParent         Field = "parent"
	FieldPathCollection Field = "path_collection"
	FieldSharedLink     Field = "shared_link"
	FieldItemCollection Field = "item_collection"
)

// joinFields renders fields as the comma-joined query value, dropping
// blanks and duplicates while keeping the caller's order.
func joinFields(fields []Field) string {
	seen := make(map[Field]struct{}, len(fields))
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		f = Field(strings.TrimSpace(string(f)))
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		parts = append(parts, string(f))
	}
	return strings.Join(parts, ",")
}

// ParseFields splits a comma separated list such as "name,size,etag".
func ParseFields(s string) []Field {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var fields []Field
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			fields = append(fields, Field(part))
		}
	}
	return fields
}
