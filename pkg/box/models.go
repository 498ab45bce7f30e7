package box

import "time"

// ItemType is the resource type segment of an item ("folder", "file").
type ItemType string

const (
	TypeFolder  ItemType = "folder"
	TypeFile    ItemType = "file"
	TypeWebLink ItemType = "web_link"
)

// segment returns the plural path segment the API uses for the type.
func (t ItemType) segment() string {
	switch t {
	case TypeFolder:
		return "folders"
	case TypeFile:
		return "files"
	case TypeWebLink:
		return "web_links"
	default:
		return ""
	}
}

// Item is a folder or file as returned by the API. ID and Type are always
// present; every other attribute is only populated when it was part of the
// requested field set (or no field set was requested at all).
type Item struct {
	Type           ItemType        `json:"type"`
	ID             string          `json:"id"`
	SequenceID     string          `json:"sequence_id,omitempty"`
	ETag           string          `json:"etag,omitempty"`
	Name           string          `json:"name,omitempty"`
	Description    string          `json:"description,omitempty"`
	Size           *int64          `json:"size,omitempty"`
	SHA1           string          `json:"sha1,omitempty"`
	ItemStatus     string          `json:"item_status,omitempty"`
	CreatedAt      *time.Time      `json:"created_at,omitempty"`
	ModifiedAt     *time.Time      `json:"modified_at,omitempty"`
	CreatedBy      *User           `json:"created_by,omitempty"`
	ModifiedBy     *User           `json:"modified_by,omitempty"`
	OwnedBy        *User           `json:"owned_by,omitempty"`
	Parent         *ItemRef        `json:"parent,omitempty"`
	PathCollection *PathCollection `json:"path_collection,omitempty"`
	SharedLink     *SharedLink     `json:"shared_link,omitempty"`
	ItemCollection *ItemCollection `json:"item_collection,omitempty"`
}

// Folder and File are the same wire shape; the names document intent at
// call sites.
type (
	Folder = Item
	File   = Item
)

// IsFolder reports whether the item is a folder.
func (i Item) IsFolder() bool { return i.Type == TypeFolder }

// ParentID returns the id of the containing folder, or "" when the parent
// was not part of the response.
func (i Item) ParentID() string {
	if i.Parent == nil {
		return ""
	}
	return i.Parent.ID
}

// ItemRef is the mini representation used for parents and path entries.
type ItemRef struct {
	Type       ItemType `json:"type"`
	ID         string   `json:"id"`
	SequenceID string   `json:"sequence_id,omitempty"`
	ETag       string   `json:"etag,omitempty"`
	Name       string   `json:"name,omitempty"`
}

// PathCollection lists the ancestors of an item, root first.
type PathCollection struct {
	TotalCount int       `json:"total_count"`
	Entries    []ItemRef `json:"entries"`
}

// ItemCollection is one page of a folder listing.
type ItemCollection struct {
	TotalCount int    `json:"total_count"`
	Entries    []Item `json:"entries"`
	Offset     int    `json:"offset,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// User is the user representation. Items embed the mini form; the space
// and status attributes are only present on users/me.
type User struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Login       string `json:"login,omitempty"`
	Status      string `json:"status,omitempty"`
	SpaceAmount int64  `json:"space_amount,omitempty"`
	SpaceUsed   int64  `json:"space_used,omitempty"`
}

// SharedLinkAccess is the audience of a shared link.
type SharedLinkAccess string

const (
	AccessOpen          SharedLinkAccess = "open"
	AccessCompany       SharedLinkAccess = "company"
	AccessCollaborators SharedLinkAccess = "collaborators"
)

// Valid reports whether a is one of the known access levels. The empty
// value is accepted and leaves the choice to the service.
func (a SharedLinkAccess) Valid() bool {
	switch a {
	case "", AccessOpen, AccessCompany, AccessCollaborators:
		return true
	}
	return false
}

// SharedLinkPermissions are the permission flags of a shared link.
type SharedLinkPermissions struct {
	CanDownload bool `json:"can_download"`
	CanPreview  bool `json:"can_preview"`
}

// SharedLink is the shared link attached to an item.
type SharedLink struct {
	URL               string                 `json:"url,omitempty"`
	DownloadURL       string                 `json:"download_url,omitempty"`
	VanityURL         string                 `json:"vanity_url,omitempty"`
	Access            SharedLinkAccess       `json:"access,omitempty"`
	EffectiveAccess   SharedLinkAccess       `json:"effective_access,omitempty"`
	UnsharedAt        *time.Time             `json:"unshared_at,omitempty"`
	IsPasswordEnabled bool                   `json:"is_password_enabled,omitempty"`
	Permissions       *SharedLinkPermissions `json:"permissions,omitempty"`
	DownloadCount     int                    `json:"download_count,omitempty"`
	PreviewCount      int                    `json:"preview_count,omitempty"`
}

// SharedLinkSpec describes the shared link to create or replace on an item.
type SharedLinkSpec struct {
	Access      SharedLinkAccess       `json:"access,omitempty"`
	UnsharedAt  *time.Time             `json:"unshared_at,omitempty"`
	Permissions *SharedLinkPermissions `json:"permissions,omitempty"`
}

// UpdateRequest lists the attributes to change in a single update call.
// Zero-valued attributes are left untouched server side.
type UpdateRequest struct {
	Name        string
	Description string
	ParentID    string
	SharedLink  *SharedLinkSpec
	// RemoveSharedLink sends an explicit null shared link. It cannot be
	// combined with SharedLink.
	RemoveSharedLink bool
}

func (r UpdateRequest) empty() bool {
	return r.Name == "" && r.Description == "" && r.ParentID == "" &&
		r.SharedLink == nil && !r.RemoveSharedLink
}
