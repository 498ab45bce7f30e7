package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tonimelisma/box-client/internal/ui"
)

var ItemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Manage items (files and folders)",
	Long: `Provides commands to inspect, list, create, copy, move, rename, share,
delete, upload and download Box files and folders. Items are addressed by id;
the root folder ("All Files") has id 0.`,
}

func InitItemsCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(ItemsCmd)

	commands := []struct {
		cmd   *cobra.Command
		flags func(*cobra.Command)
	}{
		{itemsGetCmd, setupGetFlags},
		{itemsListCmd, setupListFlags},
		{itemsMkdirCmd, ui.AddOutputFlag},
		{itemsRmCmd, setupRmFlags},
		{itemsCopyCmd, setupCopyFlags},
		{itemsMvCmd, setupUpdateFlags},
		{itemsRenameCmd, setupUpdateFlags},
		{itemsDescribeCmd, setupUpdateFlags},
		{itemsShareCmd, setupShareFlags},
		{itemsUnshareCmd, setupUpdateFlags},
		{itemsDownloadCmd, setupDownloadFlags},
		{itemsUploadCmd, setupUploadFlags},
	}
	for _, c := range commands {
		c.flags(c.cmd)
		ItemsCmd.AddCommand(c.cmd)
	}
}

func setupGetFlags(cmd *cobra.Command) {
	addTypeFlag(cmd)
	addFieldFlags(cmd)
	addPreconditionFlags(cmd, true)
	ui.AddOutputFlag(cmd)
}

func setupListFlags(cmd *cobra.Command) {
	addFieldFlags(cmd)
	ui.AddPagingFlags(cmd)
	ui.AddOutputFlag(cmd)
}

func setupRmFlags(cmd *cobra.Command) {
	addTypeFlag(cmd)
	addPreconditionFlags(cmd, false)
	cmd.Flags().BoolP("recursive", "r", false, "Delete a folder together with its content")
}

func setupCopyFlags(cmd *cobra.Command) {
	addTypeFlag(cmd)
	addFieldFlags(cmd)
	ui.AddOutputFlag(cmd)
}

// setupUpdateFlags serves mv, rename, describe and unshare.
func setupUpdateFlags(cmd *cobra.Command) {
	addTypeFlag(cmd)
	addPreconditionFlags(cmd, false)
	ui.AddOutputFlag(cmd)
}

func setupShareFlags(cmd *cobra.Command) {
	setupUpdateFlags(cmd)
	cmd.Flags().String("access", "", "Who can use the link: open, company or collaborators")
	cmd.Flags().Bool("can-download", true, "Allow downloading through the link")
	cmd.Flags().Bool("can-preview", true, "Allow previewing through the link")
	cmd.Flags().String("expires", "", "Expiry as RFC 3339 time or duration from now (e.g. 72h)")
}

func setupDownloadFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("overwrite", false, "Replace an existing local file")
	cmd.Flags().String("shared-link", "", "Access the file through a shared link")
}

func setupUploadFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Name of the uploaded file (default: local file name)")
	cmd.Flags().String("version-of", "", "Upload as a new version of this file id")
	addPreconditionFlags(cmd, false)
	ui.AddOutputFlag(cmd)
}
