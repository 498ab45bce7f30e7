// Package box is a client for the Box content API 2.0.
package box

import (
	"os"
	"time"
)

// Service endpoints.
const (
	DefaultBaseURL  = "https://api.box.com/2.0/"
	DefaultAuthURL  = "https://account.box.com/api/oauth2/authorize"
	DefaultTokenURL = "https://api.box.com/oauth2/token"
)

// RootFolderID is the id of the "All Files" folder of every account.
const RootFolderID = "0"

// Request headers understood by the service.
const (
	HeaderSharedLink  = "BoxApi"
	HeaderIfMatch     = "If-Match"
	HeaderIfNoneMatch = "If-None-Match"
)

// Multipart form field names for uploads.
const (
	uploadFileField    = "filename1"
	uploadVersionField = "filename"
	uploadFolderField  = "folder_id"
)

// HTTP defaults.
const (
	DefaultTimeout = 30 * time.Second
	userAgent      = "box-client-go/1.0"
)

// Listing limits.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// Item name limits.
const MaxItemNameLength = 255

// Local file permissions.
const (
	PermSecureDir  os.FileMode = 0o700
	PermSecureFile os.FileMode = 0o600
	PermDownload   os.FileMode = 0o644
)
