package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/box-client/internal/app"
	"github.com/tonimelisma/box-client/internal/ui"
	"github.com/tonimelisma/box-client/pkg/box"
)

var itemsDownloadCmd = &cobra.Command{
	Use:   "download <file-id> [local-path]",
	Short: "Download a file",
	Long: `Downloads a file to a local path, by default its own name in the current
directory. Existing local files are kept unless --overwrite is given.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		return itemsDownloadLogic(a, cmd, args)
	},
}

func itemsDownloadLogic(a *app.App, cmd *cobra.Command, args []string) error {
	id := args[0]
	if id == "" {
		return fmt.Errorf("file id cannot be empty")
	}
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	opts := callOptionsFromFlags(cmd)
	ctx := commandContext(cmd)

	meta, err := a.SDK.Get(ctx, box.TypeFile, id, box.NoPrecondition(),
		append(opts, box.WithFields(box.FieldName, box.FieldSize))...)
	if err != nil {
		return fmt.Errorf("getting file %s: %w", id, err)
	}

	localPath := meta.Name
	if len(args) > 1 && args[1] != "" {
		localPath = args[1]
	}
	if localPath == "" {
		return fmt.Errorf("file %s has no name, give a local path", id)
	}

	var size int64
	if meta.Size != nil {
		size = *meta.Size
	}
	bar := ui.NewProgressBar(size, fmt.Sprintf("Downloading %s", filepath.Base(localPath)))

	n, err := a.SDK.DownloadToFile(ctx, id, localPath, overwrite, bar, opts...)
	if err != nil {
		return fmt.Errorf("downloading file %s: %w", id, err)
	}
	_ = bar.Finish()
	ui.PrintSuccess("Downloaded '%s' (%d bytes) to %s.\n", meta.Name, n, localPath)
	return nil
}
