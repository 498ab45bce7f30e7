package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/box-client/internal/app"
	"github.com/tonimelisma/box-client/pkg/box"
)

var itemsShareCmd = &cobra.Command{
	Use:   "share <item-id>",
	Short: "Create or replace the shared link of an item",
	Long: `Creates a shared link for a file or folder, replacing any existing one.
The access level defaults to the enterprise setting.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		return itemsShareLogic(a, cmd, args)
	},
}

var itemsUnshareCmd = &cobra.Command{
	Use:   "unshare <item-id>",
	Short: "Remove the shared link of an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		return itemsUnshareLogic(a, cmd, args)
	},
}

// sharedLinkFromFlags builds the link spec. Permissions are only sent when
// one of the permission flags was given.
func sharedLinkFromFlags(cmd *cobra.Command, now time.Time) (box.SharedLinkSpec, error) {
	var spec box.SharedLinkSpec

	access := box.SharedLinkAccess(stringFlag(cmd, "access"))
	if !access.Valid() {
		return spec, fmt.Errorf("unknown access level %q (want open, company or collaborators)", access)
	}
	spec.Access = access

	if cmd.Flags().Changed("can-download") || cmd.Flags().Changed("can-preview") {
		canDownload, _ := cmd.Flags().GetBool("can-download")
		canPreview, _ := cmd.Flags().GetBool("can-preview")
		spec.Permissions = &box.SharedLinkPermissions{CanDownload: canDownload, CanPreview: canPreview}
	}

	if expires := stringFlag(cmd, "expires"); expires != "" {
		at, err := parseExpiry(expires, now)
		if err != nil {
			return spec, err
		}
		spec.UnsharedAt = &at
	}
	return spec, nil
}

// parseExpiry accepts an RFC 3339 time or a positive duration from now.
func parseExpiry(s string, now time.Time) (time.Time, error) {
	if at, err := time.Parse(time.RFC3339, s); err == nil {
		return at, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return time.Time{}, fmt.Errorf("invalid expiry %q: want an RFC 3339 time or a positive duration such as 72h", s)
	}
	return now.Add(d).Truncate(time.Second), nil
}

func itemsShareLogic(a *app.App, cmd *cobra.Command, args []string) error {
	spec, err := sharedLinkFromFlags(cmd, time.Now())
	if err != nil {
		return err
	}
	id := args[0]
	return updateItem(cmd, id, "sharing", func(t box.ItemType, pre box.Precondition) (box.Item, error) {
		return a.SDK.Share(commandContext(cmd), t, id, spec, pre)
	})
}

func itemsUnshareLogic(a *app.App, cmd *cobra.Command, args []string) error {
	id := args[0]
	return updateItem(cmd, id, "unsharing", func(t box.ItemType, pre box.Precondition) (box.Item, error) {
		return a.SDK.Unshare(commandContext(cmd), t, id, pre)
	})
}
