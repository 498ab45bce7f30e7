// Package cmd (items_helpers.go) contains the flag handling shared by the
// 'items' subcommands: item type selection, conditional request flags and
// per-call options.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/box-client/internal/ui"
	"github.com/tonimelisma/box-client/pkg/box"
)

func addTypeFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("type", "t", string(box.TypeFile), "Item type: file or folder")
}

func addFieldFlags(cmd *cobra.Command) {
	cmd.Flags().String("fields", "", "Comma separated attributes to return, e.g. name,size,etag")
	cmd.Flags().String("shared-link", "", "Access the item through a shared link")
}

// addPreconditionFlags adds --etag, and --if-none-match for reads.
func addPreconditionFlags(cmd *cobra.Command, read bool) {
	cmd.Flags().String("etag", "", "Only proceed if the item still has this etag")
	if read {
		cmd.Flags().String("if-none-match", "", "Only return the item if its etag differs")
	}
}

// itemTypeFromFlags reads --type. The root folder id implies a folder
// unless the flag was given explicitly.
func itemTypeFromFlags(cmd *cobra.Command, id string) (box.ItemType, error) {
	flag := cmd.Flags().Lookup("type")
	if flag == nil {
		return box.TypeFile, nil
	}
	if id == box.RootFolderID && !flag.Changed {
		return box.TypeFolder, nil
	}
	switch t := box.ItemType(flag.Value.String()); t {
	case box.TypeFile, box.TypeFolder:
		return t, nil
	default:
		return "", fmt.Errorf("unknown item type %q (want file or folder)", t)
	}
}

func stringFlag(cmd *cobra.Command, name string) string {
	if cmd.Flags().Lookup(name) == nil {
		return ""
	}
	v, _ := cmd.Flags().GetString(name)
	return v
}

// preconditionFromFlags turns --etag / --if-none-match into a Precondition.
func preconditionFromFlags(cmd *cobra.Command) (box.Precondition, error) {
	match := stringFlag(cmd, "etag")
	noneMatch := stringFlag(cmd, "if-none-match")
	switch {
	case match != "" && noneMatch != "":
		return box.NoPrecondition(), fmt.Errorf("--etag and --if-none-match cannot be combined")
	case match != "":
		return box.IfMatch(match), nil
	case noneMatch != "":
		return box.IfNoneMatch(noneMatch), nil
	default:
		return box.NoPrecondition(), nil
	}
}

// callOptionsFromFlags collects --fields and --shared-link.
func callOptionsFromFlags(cmd *cobra.Command) []box.CallOption {
	var opts []box.CallOption
	if fields := box.ParseFields(stringFlag(cmd, "fields")); len(fields) > 0 {
		opts = append(opts, box.WithFields(fields...))
	}
	if link := stringFlag(cmd, "shared-link"); link != "" {
		opts = append(opts, box.WithSharedLink(link))
	}
	return opts
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// renderItem prints item in the given format.
func renderItem(format ui.OutputFormat, item box.Item) error {
	return ui.Render(os.Stdout, format, item, func() { ui.DisplayItem(item) })
}
