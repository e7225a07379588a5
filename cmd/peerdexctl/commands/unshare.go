package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peerdex/peerdex/cmd/peerdexctl/cmdutil"
)

var unshareCmd = &cobra.Command{
	Use:   "unshare <file>",
	Short: "Withdraw a file from the tracker catalog",
	Long: `Remove a previously announced file from the tracker catalog.

The argument is the same path that was shared; only the catalog entry
is removed, the file itself is untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runUnshare,
}

func runUnshare(cmd *cobra.Command, args []string) error {
	_, profile, err := cmdutil.LoadProfile()
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	name, fileType := splitFileName(filepath.Base(abs))
	dir := filepath.Dir(abs)
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}

	client, sess, err := cmdutil.OpenSession(profile)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(sess) }()

	if err := client.DeregisterFile(sess, name, fileType, dir); err != nil {
		return fmt.Errorf("failed to withdraw %s: %w", filepath.Base(abs), err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Withdrew %s from the catalog", filepath.Base(abs)))
	return nil
}
