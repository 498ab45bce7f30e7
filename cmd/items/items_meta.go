package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/box-client/internal/app"
	"github.com/tonimelisma/box-client/internal/ui"
	"github.com/tonimelisma/box-client/pkg/box"
)

var itemsGetCmd = &cobra.Command{
	Use:   "get <item-id>",
	Short: "Show the metadata of a file or folder",
	Long: `Fetches one item. Use --fields to limit the attributes returned and
--if-none-match to skip the download when your copy is still current.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		return itemsGetLogic(a, cmd, args)
	},
}

var itemsListCmd = &cobra.Command{
	Use:   "ls [folder-id]",
	Short: "List the content of a folder",
	Long:  "Lists the files and folders inside a folder, the root folder by default.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		return itemsListLogic(a, cmd, args)
	},
}

func itemsGetLogic(a *app.App, cmd *cobra.Command, args []string) error {
	id := args[0]
	itemType, err := itemTypeFromFlags(cmd, id)
	if err != nil {
		return err
	}
	pre, err := preconditionFromFlags(cmd)
	if err != nil {
		return err
	}
	format, err := ui.GetOutputFormat(cmd)
	if err != nil {
		return err
	}

	item, err := a.SDK.Get(commandContext(cmd), itemType, id, pre, callOptionsFromFlags(cmd)...)
	if errors.Is(err, box.ErrNotModified) {
		ui.Success(fmt.Sprintf("The %s %s has not changed (etag %s).", itemType, id, pre.ETag()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("getting %s %s: %w", itemType, id, err)
	}
	return renderItem(format, item)
}

func itemsListLogic(a *app.App, cmd *cobra.Command, args []string) error {
	folderID := box.RootFolderID
	if len(args) > 0 && args[0] != "" {
		folderID = args[0]
	}
	paging, err := ui.ParsePagingFlags(cmd)
	if err != nil {
		return err
	}
	format, err := ui.GetOutputFormat(cmd)
	if err != nil {
		return err
	}

	opts := callOptionsFromFlags(cmd)
	if paging.Offset > 0 || paging.Limit > 0 {
		opts = append(opts, box.WithPage(paging.Offset, paging.Limit))
	}
	ctx := commandContext(cmd)

	if paging.FetchAll {
		items, err := a.SDK.ListAllItems(ctx, folderID, opts...)
		if err != nil {
			return fmt.Errorf("listing folder %s: %w", folderID, err)
		}
		return ui.Render(os.Stdout, format, items, func() {
			ui.DisplayItemsWithTitle(items, fmt.Sprintf("Items in folder %s:", folderID))
		})
	}

	col, err := a.SDK.ListItems(ctx, folderID, opts...)
	if err != nil {
		return fmt.Errorf("listing folder %s: %w", folderID, err)
	}
	return ui.Render(os.Stdout, format, col, func() {
		ui.DisplayItemsWithTitle(col.Entries, fmt.Sprintf("Items in folder %s:", folderID))
		ui.HandleNextPageInfo(col, false)
	})
}
