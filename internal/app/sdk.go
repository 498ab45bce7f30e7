package app

import (
	"context"
	"io"

	"github.com/tonimelisma/box-client/pkg/box"
)

// SDK is the part of the box client the commands use. Tests substitute a
// mock.
type SDK interface {
	Get(ctx context.Context, itemType box.ItemType, id string, pre box.Precondition, opts ...box.CallOption) (box.Item, error)
	ListItems(ctx context.Context, folderID string, opts ...box.CallOption) (box.ItemCollection, error)
	ListAllItems(ctx context.Context, folderID string, opts ...box.CallOption) ([]box.Item, error)
	CreateFolder(ctx context.Context, parentID, name string, opts ...box.CallOption) (box.Folder, error)
	Delete(ctx context.Context, itemType box.ItemType, id string, pre box.Precondition, opts ...box.CallOption) error
	Copy(ctx context.Context, itemType box.ItemType, id, parentID, newName string, opts ...box.CallOption) (box.Item, error)
	Move(ctx context.Context, itemType box.ItemType, id, parentID string, pre box.Precondition, opts ...box.CallOption) (box.Item, error)
	Rename(ctx context.Context, itemType box.ItemType, id, name string, pre box.Precondition, opts ...box.CallOption) (box.Item, error)
	SetDescription(ctx context.Context, itemType box.ItemType, id, description string, pre box.Precondition, opts ...box.CallOption) (box.Item, error)
	Share(ctx context.Context, itemType box.ItemType, id string, link box.SharedLinkSpec, pre box.Precondition, opts ...box.CallOption) (box.Item, error)
	Unshare(ctx context.Context, itemType box.ItemType, id string, pre box.Precondition, opts ...box.CallOption) (box.Item, error)
	DownloadToFile(ctx context.Context, id, localPath string, overwrite bool, progress io.Writer, opts ...box.CallOption) (int64, error)
	Upload(ctx context.Context, parentID, name string, content io.Reader, opts ...box.CallOption) (box.File, error)
	UploadVersion(ctx context.Context, id, name string, content io.Reader, pre box.Precondition, opts ...box.CallOption) (box.File, error)
	GetCurrentUser(ctx context.Context, opts ...box.CallOption) (box.User, error)
}

var _ SDK = (*box.Client)(nil)
