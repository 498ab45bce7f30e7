package cmd

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/box-client/internal/app"
	"github.com/tonimelisma/box-client/internal/boxfake"
	"github.com/tonimelisma/box-client/internal/logger"
	"github.com/tonimelisma/box-client/pkg/box"
	"golang.org/x/oauth2"
)

// MockSDK is a mock implementation of the SDK interface for testing.
type MockSDK struct {
	GetFunc            func(ctx context.Context, itemType box.ItemType, id string, pre box.Precondition, opts ...box.CallOption) (box.Item, error)
	ListItemsFunc      func(ctx context.Context, folderID string, opts ...box.CallOption) (box.ItemCollection, error)
	ListAllItemsFunc   func(ctx context.Context, folderID string, opts ...box.CallOption) ([]box.Item, error)
	CreateFolderFunc   func(ctx context.Context, parentID, name string, opts ...box.CallOption) (box.Folder, error)
	DeleteFunc         func(ctx context.Context, itemType box.ItemType, id string, pre box.Precondition, opts ...box.CallOption) error
	CopyFunc           func(ctx context.Context, itemType box.ItemType, id, parentID, newName string, opts ...box.CallOption) (box.Item, error)
	MoveFunc           func(ctx context.Context, itemType box.ItemType, id, parentID string, pre box.Precondition, opts ...box.CallOption) (box.Item, error)
	RenameFunc         func(ctx context.Context, itemType box.ItemType, id, name string, pre box.Precondition, opts ...box.CallOption) (box.Item, error)
	SetDescriptionFunc func(ctx context.Context, itemType box.ItemType, id, description string, pre box.Precondition, opts ...box.CallOption) (box.Item, error)
	ShareFunc          func(ctx context.Context, itemType box.ItemType, id string, link box.SharedLinkSpec, pre box.Precondition, opts ...box.CallOption) (box.Item, error)
	UnshareFunc        func(ctx context.Context, itemType box.ItemType, id string, pre box.Precondition, opts ...box.CallOption) (box.Item, error)
	DownloadToFileFunc func(ctx context.Context, id, localPath string, overwrite bool, progress io.Writer, opts ...box.CallOption) (int64, error)
	UploadFunc         func(ctx context.Context, parentID, name string, content io.Reader, opts ...box.CallOption) (box.File, error)
	UploadVersionFunc  func(ctx context.Context, id, name string, content io.Reader, pre box.Precondition, opts ...box.CallOption) (box.File, error)
	GetCurrentUserFunc func(ctx context.Context, opts ...box.CallOption) (box.User, error)
}

var _ app.SDK = (*MockSDK)(nil)

func (m *MockSDK) Get(ctx context.Context, itemType box.ItemType, id string, pre box.Precondition, opts ...box.CallOption) (box.Item, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, itemType, id, pre, opts...)
	}
	return box.Item{Type: itemType, ID: id}, nil
}

func (m *MockSDK) ListItems(ctx context.Context, folderID string, opts ...box.CallOption) (box.ItemCollection, error) {
	if m.ListItemsFunc != nil {
		return m.ListItemsFunc(ctx, folderID, opts...)
	}
	return box.ItemCollection{}, nil
}

func (m *MockSDK) ListAllItems(ctx context.Context, folderID string, opts ...box.CallOption) ([]box.Item, error) {
	if m.ListAllItemsFunc != nil {
		return m.ListAllItemsFunc(ctx, folderID, opts...)
	}
	return nil, nil
}

func (m *MockSDK) CreateFolder(ctx context.Context, parentID, name string, opts ...box.CallOption) (box.Folder, error) {
	if m.CreateFolderFunc != nil {
		return m.CreateFolderFunc(ctx, parentID, name, opts...)
	}
	return box.Folder{Type: box.TypeFolder, ID: "100", Name: name}, nil
}

func (m *MockSDK) Delete(ctx context.Context, itemType box.ItemType, id string, pre box.Precondition, opts ...box.CallOption) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, itemType, id, pre, opts...)
	}
	return nil
}

func (m *MockSDK) Copy(ctx context.Context, itemType box.ItemType, id, parentID, newName string, opts ...box.CallOption) (box.Item, error) {
	if m.CopyFunc != nil {
		return m.CopyFunc(ctx, itemType, id, parentID, newName, opts...)
	}
	return box.Item{Type: itemType, ID: "copy-of-" + id, Name: newName}, nil
}

func (m *MockSDK) Move(ctx context.Context, itemType box.ItemType, id, parentID string, pre box.Precondition, opts ...box.CallOption) (box.Item, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, itemType, id, parentID, pre, opts...)
	}
	return box.Item{Type: itemType, ID: id}, nil
}

func (m *MockSDK) Rename(ctx context.Context, itemType box.ItemType, id, name string, pre box.Precondition, opts ...box.CallOption) (box.Item, error) {
	if m.RenameFunc != nil {
		return m.RenameFunc(ctx, itemType, id, name, pre, opts...)
	}
	return box.Item{Type: itemType, ID: id, Name: name}, nil
}

func (m *MockSDK) SetDescription(ctx context.Context, itemType box.ItemType, id, description string, pre box.Precondition, opts ...box.CallOption) (box.Item, error) {
	if m.SetDescriptionFunc != nil {
		return m.SetDescriptionFunc(ctx, itemType, id, description, pre, opts...)
	}
	return box.Item{Type: itemType, ID: id, Description: description}, nil
}

func (m *MockSDK) Share(ctx context.Context, itemType box.ItemType, id string, link box.SharedLinkSpec, pre box.Precondition, opts ...box.CallOption) (box.Item, error) {
	if m.ShareFunc != nil {
		return m.ShareFunc(ctx, itemType, id, link, pre, opts...)
	}
	return box.Item{Type: itemType, ID: id}, nil
}

func (m *MockSDK) Unshare(ctx context.Context, itemType box.ItemType, id string, pre box.Precondition, opts ...box.CallOption) (box.Item, error) {
	if m.UnshareFunc != nil {
		return m.UnshareFunc(ctx, itemType, id, pre, opts...)
	}
	return box.Item{Type: itemType, ID: id}, nil
}

func (m *MockSDK) DownloadToFile(ctx context.Context, id, localPath string, overwrite bool, progress io.Writer, opts ...box.CallOption) (int64, error) {
	if m.DownloadToFileFunc != nil {
		return m.DownloadToFileFunc(ctx, id, localPath, overwrite, progress, opts...)
	}
	return 0, nil
}

func (m *MockSDK) Upload(ctx context.Context, parentID, name string, content io.Reader, opts ...box.CallOption) (box.File, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, parentID, name, content, opts...)
	}
	return box.File{Type: box.TypeFile, ID: "200", Name: name}, nil
}

func (m *MockSDK) UploadVersion(ctx context.Context, id, name string, content io.Reader, pre box.Precondition, opts ...box.CallOption) (box.File, error) {
	if m.UploadVersionFunc != nil {
		return m.UploadVersionFunc(ctx, id, name, content, pre, opts...)
	}
	return box.File{Type: box.TypeFile, ID: id, Name: name}, nil
}

func (m *MockSDK) GetCurrentUser(ctx context.Context, opts ...box.CallOption) (box.User, error) {
	if m.GetCurrentUserFunc != nil {
		return m.GetCurrentUserFunc(ctx, opts...)
	}
	return box.User{}, nil
}

// newTestApp creates a new app instance with a mock SDK for testing.
func newTestApp(sdk app.SDK) *app.App {
	return &app.App{SDK: sdk}
}

// newItemsCommand returns a fresh command carrying the same flags as the
// registered one, so tests do not share flag state.
func newItemsCommand(setup func(cmd *cobra.Command)) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	setup(cmd)
	return cmd
}

// captureOutput captures stdout and stderr, returning them as a string.
func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	oldStdout, oldStderr := os.Stdout, os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	os.Stdout, os.Stderr = w, w

	done := make(chan string)
	go func() {
		data, _ := io.ReadAll(r)
		done <- string(data)
	}()

	f()

	w.Close()
	os.Stdout, os.Stderr = oldStdout, oldStderr
	return <-done
}

// newFakeApp returns an app whose SDK talks to a fresh in-memory Box.
func newFakeApp(t *testing.T) (*app.App, *boxfake.Server) {
	t.Helper()
	fake := boxfake.New()
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, fake.HTTPClient())
	client := box.NewClientWithToken(ctx, boxfake.DefaultToken, logger.NoopLogger{}, box.WithBaseURL(boxfake.BaseURL))
	return &app.App{SDK: client}, fake
}
