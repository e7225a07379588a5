package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/peerdex/peerdex/cmd/peerdexctl/cmdutil"
	"github.com/peerdex/peerdex/internal/cli/output"
	"github.com/peerdex/peerdex/pkg/apiclient"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List your files in the tracker catalog",
	RunE:  runFiles,
}

func runFiles(cmd *cobra.Command, args []string) error {
	_, profile, err := cmdutil.LoadProfile()
	if err != nil {
		return err
	}

	client, sess, err := cmdutil.OpenSession(profile)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(sess) }()

	files, err := client.UserFiles(sess)
	if apiclient.IsNotFound(err) {
		files = nil
	} else if err != nil {
		return err
	}

	table := output.NewTableData("ID", "NAME", "TYPE", "SIZE", "PATH")
	for _, f := range files {
		table.AddRow(strconv.Itoa(f.ID), f.Name, f.Type, output.FormatBytes(f.Size), f.Path)
	}

	return cmdutil.PrintOutput(cmd.OutOrStdout(), files, len(files) == 0,
		"No files in the catalog.", table)
}
