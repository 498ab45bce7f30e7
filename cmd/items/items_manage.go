package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/box-client/internal/app"
	"github.com/tonimelisma/box-client/internal/ui"
	"github.com/tonimelisma/box-client/pkg/box"
)

var itemsMkdirCmd = &cobra.Command{
	Use:   "mkdir <parent-folder-id> <name>",
	Short: "Create a folder",
	Long:  "Creates a folder inside the given parent folder. Use 0 for the root folder.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		return itemsMkdirLogic(a, cmd, args)
	},
}

var itemsRmCmd = &cobra.Command{
	Use:   "rm <item-id>",
	Short: "Delete a file or folder",
	Long: `Deletes a file or folder. Deleted items go to the trash. A folder that
still has content is only deleted with --recursive.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		return itemsRmLogic(a, cmd, args)
	},
}

var itemsCopyCmd = &cobra.Command{
	Use:   "cp <item-id> <destination-folder-id> [new-name]",
	Short: "Copy a file or folder",
	Long:  "Copies an item into a destination folder, optionally under a new name.",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		return itemsCopyLogic(a, cmd, args)
	},
}

var itemsMvCmd = &cobra.Command{
	Use:   "mv <item-id> <destination-folder-id>",
	Short: "Move a file or folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		return itemsMvLogic(a, cmd, args)
	},
}

var itemsRenameCmd = &cobra.Command{
	Use:   "rename <item-id> <new-name>",
	Short: "Rename a file or folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		return itemsRenameLogic(a, cmd, args)
	},
}

var itemsDescribeCmd = &cobra.Command{
	Use:   "describe <item-id> <description>",
	Short: "Set the description of a file or folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		return itemsDescribeLogic(a, cmd, args)
	},
}

func itemsMkdirLogic(a *app.App, cmd *cobra.Command, args []string) error {
	parentID, name := args[0], args[1]
	if parentID == "" {
		return fmt.Errorf("parent folder id cannot be empty")
	}
	format, err := ui.GetOutputFormat(cmd)
	if err != nil {
		return err
	}

	folder, err := a.SDK.CreateFolder(commandContext(cmd), parentID, name)
	if err != nil {
		return fmt.Errorf("creating folder '%s' in %s: %w", name, parentID, err)
	}
	ui.PrintSuccess("Folder '%s' created with id %s.\n", folder.Name, folder.ID)
	return renderItem(format, folder)
}

func itemsRmLogic(a *app.App, cmd *cobra.Command, args []string) error {
	id := args[0]
	if id == "" {
		return fmt.Errorf("item id cannot be empty")
	}
	itemType, err := itemTypeFromFlags(cmd, id)
	if err != nil {
		return err
	}
	pre, err := preconditionFromFlags(cmd)
	if err != nil {
		return err
	}
	recursive, _ := cmd.Flags().GetBool("recursive")

	if err := a.SDK.Delete(commandContext(cmd), itemType, id, pre, box.Recursive(recursive)); err != nil {
		return fmt.Errorf("deleting %s %s: %w", itemType, id, err)
	}
	ui.PrintSuccess("The %s %s was moved to the trash.\n", itemType, id)
	return nil
}

func itemsCopyLogic(a *app.App, cmd *cobra.Command, args []string) error {
	id, parentID := args[0], args[1]
	var newName string
	if len(args) > 2 {
		newName = args[2]
	}
	if id == "" || parentID == "" {
		return fmt.Errorf("item id and destination folder id cannot be empty")
	}
	itemType, err := itemTypeFromFlags(cmd, id)
	if err != nil {
		return err
	}
	format, err := ui.GetOutputFormat(cmd)
	if err != nil {
		return err
	}

	item, err := a.SDK.Copy(commandContext(cmd), itemType, id, parentID, newName, callOptionsFromFlags(cmd)...)
	if err != nil {
		return fmt.Errorf("copying %s %s: %w", itemType, id, err)
	}
	ui.PrintSuccess("Copied to '%s' (id %s).\n", item.Name, item.ID)
	return renderItem(format, item)
}

func itemsMvLogic(a *app.App, cmd *cobra.Command, args []string) error {
	id, parentID := args[0], args[1]
	return updateItem(cmd, id, "moving", func(t box.ItemType, pre box.Precondition) (box.Item, error) {
		return a.SDK.Move(commandContext(cmd), t, id, parentID, pre)
	})
}

func itemsRenameLogic(a *app.App, cmd *cobra.Command, args []string) error {
	id, name := args[0], args[1]
	return updateItem(cmd, id, "renaming", func(t box.ItemType, pre box.Precondition) (box.Item, error) {
		return a.SDK.Rename(commandContext(cmd), t, id, name, pre)
	})
}

func itemsDescribeLogic(a *app.App, cmd *cobra.Command, args []string) error {
	id, description := args[0], args[1]
	return updateItem(cmd, id, "describing", func(t box.ItemType, pre box.Precondition) (box.Item, error) {
		return a.SDK.SetDescription(commandContext(cmd), t, id, description, pre)
	})
}

// updateItem resolves the type and precondition flags, runs update and
// prints the result.
func updateItem(cmd *cobra.Command, id, verb string, update func(box.ItemType, box.Precondition) (box.Item, error)) error {
	if id == "" {
		return fmt.Errorf("item id cannot be empty")
	}
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

	item, err := update(itemType, pre)
	if err != nil {
		return fmt.Errorf("%s %s %s: %w", verb, itemType, id, err)
	}
	return renderItem(format, item)
}
