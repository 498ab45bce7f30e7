//go:build e2e

package e2e

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonimelisma/box-client/pkg/box"
)

func TestFileOperations(t *testing.T) {
	helper := NewE2ETestHelper(t)
	sdk := helper.App.SDK
	ctx := helper.Ctx

	var subfolder box.Folder
	t.Run("CreateFolder", func(t *testing.T) {
		var err error
		subfolder, err = sdk.CreateFolder(ctx, helper.FolderID, "sub")
		require.NoError(t, err)
		assert.Equal(t, "sub", subfolder.Name)

		_, err = sdk.CreateFolder(ctx, helper.FolderID, "sub")
		assert.True(t, errors.Is(err, box.ErrConflict), "duplicate name: got %v", err)
	})

	localPath, content := helper.CreateRandomTestFile(t, "upload.bin", 64*1024)
	var file box.File
	t.Run("UploadFile", func(t *testing.T) {
		f, err := os.Open(localPath)
		require.NoError(t, err)
		defer f.Close()

		file, err = sdk.Upload(ctx, helper.FolderID, "upload.bin", f)
		require.NoError(t, err)
		require.NotNil(t, file.Size)
		assert.Equal(t, int64(len(content)), *file.Size)
	})

	t.Run("GetWithFieldsAndETag", func(t *testing.T) {
		item, err := sdk.Get(ctx, box.TypeFile, file.ID, box.NoPrecondition(), box.WithFields(box.FieldName, box.FieldETag))
		require.NoError(t, err)
		assert.Equal(t, "upload.bin", item.Name)
		assert.Nil(t, item.Size, "size was not requested")

		_, err = sdk.Get(ctx, box.TypeFile, file.ID, box.IfNoneMatch(item.ETag))
		assert.True(t, errors.Is(err, box.ErrNotModified), "got %v", err)
	})

	t.Run("ListItems", func(t *testing.T) {
		items, err := sdk.ListAllItems(ctx, helper.FolderID, box.WithPage(0, 1))
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("DownloadFile", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "download.bin")
		n, err := sdk.DownloadToFile(ctx, file.ID, target, false, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(len(content)), n)

		got, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(content, got), "downloaded content differs")
	})

	t.Run("RenameWithStaleETag", func(t *testing.T) {
		current, err := sdk.Get(ctx, box.TypeFile, file.ID, box.NoPrecondition())
		require.NoError(t, err)

		_, err = sdk.UploadVersion(ctx, file.ID, "upload.bin", bytes.NewReader([]byte("v2")), box.IfMatch(current.ETag))
		require.NoError(t, err)

		_, err = sdk.Rename(ctx, box.TypeFile, file.ID, "renamed.bin", box.IfMatch(current.ETag))
		assert.True(t, errors.Is(err, box.ErrStaleVersion), "got %v", err)

		renamed, err := sdk.Rename(ctx, box.TypeFile, file.ID, "renamed.bin", box.NoPrecondition())
		require.NoError(t, err)
		assert.Equal(t, "renamed.bin", renamed.Name)
	})

	t.Run("ShareAndUnshare", func(t *testing.T) {
		shared, err := sdk.Share(ctx, box.TypeFile, file.ID, box.SharedLinkSpec{Access: box.AccessCollaborators}, box.NoPrecondition())
		require.NoError(t, err)
		require.NotNil(t, shared.SharedLink)
		assert.NotEmpty(t, shared.SharedLink.URL)

		unshared, err := sdk.Unshare(ctx, box.TypeFile, file.ID, box.NoPrecondition(), box.WithFields(box.FieldSharedLink))
		require.NoError(t, err)
		assert.Nil(t, unshared.SharedLink)
	})

	t.Run("CopyAndMove", func(t *testing.T) {
		copied, err := sdk.Copy(ctx, box.TypeFile, file.ID, subfolder.ID, "copy.bin")
		require.NoError(t, err)
		assert.Equal(t, "copy.bin", copied.Name)

		moved, err := sdk.Move(ctx, box.TypeFile, copied.ID, helper.FolderID, box.NoPrecondition())
		require.NoError(t, err)
		require.NotNil(t, moved.Parent)
		assert.Equal(t, helper.FolderID, moved.Parent.ID)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, sdk.Delete(ctx, box.TypeFile, file.ID, box.NoPrecondition()))
		_, err := sdk.Get(ctx, box.TypeFile, file.ID, box.NoPrecondition())
		assert.True(t, errors.Is(err, box.ErrResourceNotFound), "got %v", err)

		err = sdk.Delete(ctx, box.TypeFolder, helper.FolderID, box.NoPrecondition())
		assert.Error(t, err, "non-empty folder needs recursive")
	})
}
