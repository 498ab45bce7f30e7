package ui

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/box-client/pkg/box"
)

// Paging holds the pagination flags of a listing command.
type Paging struct {
	Offset   int
	Limit    int
	FetchAll bool
}

// AddPagingFlags adds the standard pagination flags to a command.
func AddPagingFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", 0, fmt.Sprintf("Maximum number of items per page (default %d, max %d)", box.DefaultPageLimit, box.MaxPageLimit))
	cmd.Flags().Int("offset", 0, "Index of the first item to return")
	cmd.Flags().Bool("all", false, "Fetch all items across all pages")
}

// ParsePagingFlags extracts pagination settings from command flags.
func ParsePagingFlags(cmd *cobra.Command) (Paging, error) {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return Paging{}, fmt.Errorf("error parsing limit flag: %w", err)
	}
	offset, err := cmd.Flags().GetInt("offset")
	if err != nil {
		return Paging{}, fmt.Errorf("error parsing offset flag: %w", err)
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return Paging{}, fmt.Errorf("error parsing all flag: %w", err)
	}
	if limit < 0 || offset < 0 {
		return Paging{}, fmt.Errorf("limit and offset must not be negative")
	}
	return Paging{Offset: offset, Limit: limit, FetchAll: all}, nil
}

// HandleNextPageInfo tells the user how to fetch the next page, if any.
func HandleNextPageInfo(col box.ItemCollection, fetchAll bool) {
	next := col.Offset + len(col.Entries)
	if fetchAll || len(col.Entries) == 0 || next >= col.TotalCount {
		return
	}
	fmt.Printf("\nShowing %d of %d items. Use --offset %d to continue or --all to list everything.\n", len(col.Entries), col.TotalCount, next)
}
