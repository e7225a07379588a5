package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/peerdex/peerdex/cmd/peerdexctl/cmdutil"
	"github.com/peerdex/peerdex/internal/cli/output"
	"github.com/peerdex/peerdex/pkg/apiclient"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog for files shared by live peers",
	Long: `Search the tracker catalog. The query matches anywhere in the file
name plus extension, case-insensitively, and only files whose owner is
currently online are returned.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	_, profile, err := cmdutil.LoadProfile()
	if err != nil {
		return err
	}

	client, sess, err := cmdutil.OpenSession(profile)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(sess) }()

	results, err := client.Search(sess, args[0])
	if apiclient.IsNotFound(err) {
		results = nil
	} else if err != nil {
		return err
	}

	table := output.NewTableData("ID", "NAME", "TYPE", "SIZE")
	for _, r := range results {
		table.AddRow(strconv.Itoa(r.ID), r.Name, r.Type, output.FormatBytes(r.Size))
	}

	return cmdutil.PrintOutput(cmd.OutOrStdout(), results, len(results) == 0,
		"No matches from live peers.", table)
}
