package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/peerdex/peerdex/cmd/peerdexctl/cmdutil"
	"github.com/peerdex/peerdex/internal/cli/output"
	"github.com/peerdex/peerdex/pkg/apiclient"
)

var statusSessions bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracker status",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusSessions, "sessions", false, "Also list live sessions")
}

func runStatus(cmd *cobra.Command, args []string) error {
	// Status needs no session, so a saved profile is optional.
	_, profile, err := cmdutil.LoadProfile()
	if err != nil {
		profile = nil
	}
	url, err := cmdutil.ServerURL(profile)
	if err != nil {
		return err
	}

	client := apiclient.New(url)
	status, err := client.Status()
	if err != nil {
		return fmt.Errorf("tracker unreachable at %s: %w", url, err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		printer := output.NewPrinter(cmd.OutOrStdout(), format, false)
		return printer.Print(status)
	}

	ready := "no (awaiting capacity)"
	if status.Ready {
		ready = "yes"
	}
	if err := output.SimpleTable(cmd.OutOrStdout(), [][2]string{
		{"Tracker", url},
		{"Ready", ready},
		{"Capacity", strconv.Itoa(status.Capacity)},
		{"Sessions", strconv.Itoa(status.Sessions)},
	}); err != nil {
		return err
	}

	if !statusSessions {
		return nil
	}

	sessions, err := client.Sessions()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout())
	table := output.NewTableData("NAME", "IP", "PORT", "LAST ACTIVE")
	for _, s := range sessions {
		table.AddRow(s.Name, s.IP, strconv.Itoa(s.Port), output.FormatTime(s.LastActive))
	}
	return cmdutil.PrintOutput(cmd.OutOrStdout(), sessions, len(sessions) == 0,
		"No live sessions.", table)
}
