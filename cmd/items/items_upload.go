package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/tonimelisma/box-client/internal/app"
	"github.com/tonimelisma/box-client/internal/ui"
	"github.com/tonimelisma/box-client/pkg/box"
)

var itemsUploadCmd = &cobra.Command{
	Use:   "upload <local-file> [parent-folder-id]",
	Short: "Upload a file",
	Long: `Uploads a local file into a folder, the root folder by default. With
--version-of the content replaces an existing file as a new version; combine
it with --etag to make sure nobody changed the file in between.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		return itemsUploadLogic(a, cmd, args)
	},
}

func itemsUploadLogic(a *app.App, cmd *cobra.Command, args []string) error {
	localPath, err := box.SanitizeLocalPath(args[0])
	if err != nil {
		return err
	}
	parentID := box.RootFolderID
	if len(args) > 1 && args[1] != "" {
		parentID = args[1]
	}
	name := stringFlag(cmd, "name")
	if name == "" {
		name = filepath.Base(localPath)
	}
	versionOf := stringFlag(cmd, "version-of")
	pre, err := preconditionFromFlags(cmd)
	if err != nil {
		return err
	}
	if versionOf == "" && !pre.IsNone() {
		return fmt.Errorf("--etag only applies together with --version-of")
	}
	format, err := ui.GetOutputFormat(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening local file: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("getting local file info: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", localPath)
	}

	bar := ui.NewProgressBar(info.Size(), fmt.Sprintf("Uploading %s", name))
	reader := progressbar.NewReader(f, bar)
	body := &sizedReader{Reader: &reader, remaining: info.Size()}
	ctx := commandContext(cmd)

	var file box.File
	if versionOf != "" {
		file, err = a.SDK.UploadVersion(ctx, versionOf, name, body, pre)
	} else {
		file, err = a.SDK.Upload(ctx, parentID, name, body)
	}
	if err != nil {
		return fmt.Errorf("uploading '%s': %w", name, err)
	}
	_ = bar.Finish()

	ui.PrintSuccess("Uploaded '%s' as file %s.\n", file.Name, file.ID)
	return renderItem(format, file)
}

// sizedReader reports how much is left to read so the upload can be sent
// with a Content-Length while the progress bar wraps the file.
type sizedReader struct {
	io.Reader
	remaining int64
}

func (r *sizedReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	r.remaining -= int64(n)
	return n, err
}

func (r *sizedReader) Len() int { return int(r.remaining) }
