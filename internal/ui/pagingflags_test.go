package ui

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonimelisma/box-client/pkg/box"
)

func TestParsePagingFlags(t *testing.T) {
	cmd := &cobra.Command{}
	AddPagingFlags(cmd)

	p, err := ParsePagingFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, Paging{}, p)

	require.NoError(t, cmd.Flags().Set("limit", "50"))
	require.NoError(t, cmd.Flags().Set("offset", "100"))
	require.NoError(t, cmd.Flags().Set("all", "true"))
	p, err = ParsePagingFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, Paging{Offset: 100, Limit: 50, FetchAll: true}, p)

	require.NoError(t, cmd.Flags().Set("limit", "-1"))
	_, err = ParsePagingFlags(cmd)
	assert.Error(t, err)
}

func TestHandleNextPageInfo(t *testing.T) {
	col := box.ItemCollection{TotalCount: 3, Offset: 0, Entries: []box.Item{{ID: "1"}, {ID: "2"}}}

	output := captureStdout(t, func() { HandleNextPageInfo(col, false) })
	assert.Contains(t, output, "--offset 2")

	output = captureStdout(t, func() { HandleNextPageInfo(col, true) })
	assert.Empty(t, output)

	col.Entries = append(col.Entries, box.Item{ID: "3"})
	output = captureStdout(t, func() { HandleNextPageInfo(col, false) })
	assert.Empty(t, output)
}
