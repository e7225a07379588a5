package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/peerdex/peerdex/cmd/peerdexctl/cmdutil"
	"github.com/peerdex/peerdex/internal/cli/output"
	"github.com/peerdex/peerdex/pkg/apiclient"
	"github.com/peerdex/peerdex/pkg/peer"
)

var shareCmd = &cobra.Command{
	Use:   "share [file...]",
	Short: "Announce files and serve them to other peers",
	Long: `Announce files to the tracker and serve them until interrupted.

Each file is registered in the tracker catalog and served from this
machine on the announced transfer port. The session is kept alive with
heartbeats; press Ctrl+C to stop sharing and close the session. The
catalog entries survive the session and become visible again on the
next share.

With no arguments, every regular file in the profile's share directory
is announced.

Examples:
  # Share two files
  peerdexctl share ~/music/song.mp3 ~/docs/report.pdf

  # Share everything in the saved share directory
  peerdexctl share`,
	RunE: runShare,
}

func runShare(cmd *cobra.Command, args []string) error {
	_, profile, err := cmdutil.LoadProfile()
	if err != nil {
		return err
	}
	settings, err := cmdutil.PeerSettings()
	if err != nil {
		return err
	}

	paths, err := resolveSharePaths(args, profile.ShareDir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("nothing to share: give file arguments or set a share directory at login")
	}

	// The listener comes up first so the session announces the real port
	// even when the profile asks the OS to pick one.
	listener, err := peer.Listen(profile.Port)
	if err != nil {
		return fmt.Errorf("failed to open transfer port: %w", err)
	}
	defer func() { _ = listener.Close() }()

	url, err := cmdutil.ServerURL(profile)
	if err != nil {
		return err
	}
	client := apiclient.New(url)
	sess, err := client.Connect(profile.Name, profile.Password, profile.IP, listener.Port())
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer func() { _ = client.Disconnect(sess) }()

	shared := 0
	for _, path := range paths {
		if err := announceFile(client, sess, path); err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
			continue
		}
		fmt.Printf("Sharing %s\n", path)
		shared++
	}
	if shared == 0 {
		return fmt.Errorf("no files could be announced")
	}

	serveDone := make(chan error, 1)
	go func() { serveDone <- listener.Serve() }()

	hbCtx, stopHeartbeat := context.WithCancel(context.Background())
	defer stopHeartbeat()
	heartbeatDone := make(chan error, 1)
	go func() { heartbeatDone <- client.RunHeartbeat(hbCtx, sess, settings.HeartbeatInterval) }()

	fmt.Printf("\nServing %d file(s) on port %d. Press Ctrl+C to stop.\n", shared, listener.Port())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		fmt.Println("\nStopping...")
	case err := <-heartbeatDone:
		if err != nil {
			return fmt.Errorf("session lost: %w", err)
		}
	case err := <-serveDone:
		if err != nil {
			return fmt.Errorf("transfer listener failed: %w", err)
		}
	}

	return nil
}

// resolveSharePaths expands the share arguments, falling back to the
// profile's share directory.
func resolveSharePaths(args []string, shareDir string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if shareDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(shareDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read share directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			paths = append(paths, filepath.Join(shareDir, entry.Name()))
		}
	}
	return paths, nil
}

// announceFile registers one file with the tracker. A file already in
// the catalog from a previous share is not an error.
func announceFile(client *apiclient.Client, sess *apiclient.Session, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file")
	}

	name, fileType := splitFileName(filepath.Base(abs))
	if fileType == "" {
		// Transfer requests address files as name.type.
		return fmt.Errorf("file has no extension")
	}
	dir := filepath.Dir(abs)
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}

	err = client.RegisterFile(sess, name, fileType, dir, info.Size())
	if apiclient.HasTag(err, "COPY") {
		fmt.Printf("Already in catalog: %s (%s)\n", filepath.Base(abs), output.FormatBytes(info.Size()))
		return nil
	}
	return err
}

// splitFileName splits "song.mp3" into ("song", "mp3"). Files without
// an extension get an empty type.
func splitFileName(base string) (name, fileType string) {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext), strings.TrimPrefix(ext, ".")
}
