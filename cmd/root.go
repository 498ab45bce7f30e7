// Package cmd defines the root command for the box-client CLI and wires in
// the auth and items command groups.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	cmdItems "github.com/tonimelisma/box-client/cmd/items"
	"github.com/tonimelisma/box-client/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "box-client",
	Short: "A CLI client for the Box content API",
	Long: `box-client is a command-line interface to files and folders stored in Box.

Current capabilities include:
  - Authentication (OAuth with PKCE, client credentials, JWT or a developer token)
  - Reading and listing items with field selection and conditional requests
  - Creating, copying, moving, renaming, describing and deleting items
  - Creating and removing shared links
  - Uploading and downloading file content

Settings live in a JSON file under the user config directory and can be
overridden with BOX_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, app.ErrLoginPending) {
			fmt.Fprintln(os.Stderr, err.Error())
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging for SDK and internal operations")

	cmdItems.InitItemsCommands(rootCmd)
}
