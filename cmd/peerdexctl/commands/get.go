package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peerdex/peerdex/cmd/peerdexctl/cmdutil"
	"github.com/peerdex/peerdex/internal/cli/output"
	"github.com/peerdex/peerdex/internal/cli/prompt"
	"github.com/peerdex/peerdex/pkg/apiclient"
	"github.com/peerdex/peerdex/pkg/peer"
)

var getDir string

var getCmd = &cobra.Command{
	Use:   "get <query>",
	Short: "Search for a file and download it from a peer",
	Long: `Search the catalog and download the chosen file directly from the peer
that shares it.

When several files match, or several peers share the chosen file, a
picker is shown. Downloads go to the configured download directory
unless --dir overrides it.

Examples:
  peerdexctl get report
  peerdexctl get song --dir /tmp`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVar(&getDir, "dir", "", "Download directory (default: from config)")
}

func runGet(cmd *cobra.Command, args []string) error {
	_, profile, err := cmdutil.LoadProfile()
	if err != nil {
		return err
	}
	settings, err := cmdutil.PeerSettings()
	if err != nil {
		return err
	}

	dir := getDir
	if dir == "" {
		dir = settings.DownloadDir
	}

	client, sess, err := cmdutil.OpenSession(profile)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(sess) }()

	results, err := client.Search(sess, args[0])
	if apiclient.IsNotFound(err) {
		return fmt.Errorf("no matches from live peers for %q", args[0])
	}
	if err != nil {
		return err
	}

	chosen, err := pickResult(results)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}

	hosts, err := client.HostInfo(sess, chosen.ID)
	if apiclient.IsNotFound(err) {
		return fmt.Errorf("no live peer currently shares %s.%s", chosen.Name, chosen.Type)
	}
	if err != nil {
		return err
	}

	host, err := pickHost(hosts)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}

	fmt.Printf("Downloading %s.%s (%s) from %s:%d...\n",
		chosen.Name, chosen.Type, output.FormatBytes(chosen.Size), host.IP, host.Port)

	downloader := &peer.Downloader{Dir: dir, Timeout: settings.TransferTimeout}
	target, err := downloader.Download(host.IP, host.Port, host.Path,
		chosen.Name, chosen.Type, chosen.Size, printProgress)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Downloaded to %s", target))
	return nil
}

func pickResult(results []apiclient.SearchResult) (*apiclient.SearchResult, error) {
	if len(results) == 1 {
		return &results[0], nil
	}
	items := make([]string, len(results))
	for i, r := range results {
		items[i] = fmt.Sprintf("%s.%s (%s)", r.Name, r.Type, output.FormatBytes(r.Size))
	}
	i, err := prompt.SelectIndex("Several files match", items)
	if err != nil {
		return nil, err
	}
	return &results[i], nil
}

func pickHost(hosts []apiclient.Host) (*apiclient.Host, error) {
	if len(hosts) == 1 {
		return &hosts[0], nil
	}
	items := make([]string, len(hosts))
	for i, h := range hosts {
		items[i] = fmt.Sprintf("%s:%d", h.IP, h.Port)
	}
	i, err := prompt.SelectIndex("Several peers share this file", items)
	if err != nil {
		return nil, err
	}
	return &hosts[i], nil
}

func printProgress(percent int) {
	fmt.Printf("\r%3d%%", percent)
}
