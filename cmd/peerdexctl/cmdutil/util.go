// Package cmdutil provides shared utilities for peerdexctl commands.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/peerdex/peerdex/internal/cli/credentials"
	"github.com/peerdex/peerdex/internal/cli/output"
	"github.com/peerdex/peerdex/internal/cli/prompt"
	"github.com/peerdex/peerdex/pkg/apiclient"
	"github.com/peerdex/peerdex/pkg/config"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ServerURL  string
	ConfigFile string
	Output     string
	NoColor    bool
}

// PeerSettings loads the peer section of the configuration. A missing
// config file yields the defaults, so peerdexctl works out of the box.
func PeerSettings() (*config.PeerConfig, error) {
	cfg, err := config.Load(Flags.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg.Peer, nil
}

// LoadProfile returns the saved login profile.
func LoadProfile() (*credentials.Store, *credentials.Profile, error) {
	store, err := credentials.NewStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open profile store: %w", err)
	}
	profile, err := store.Profile()
	if err != nil {
		return nil, nil, err
	}
	return store, profile, nil
}

// ServerURL resolves the tracker URL from flags, the saved profile and
// the configuration, in that order.
func ServerURL(profile *credentials.Profile) (string, error) {
	if Flags.ServerURL != "" {
		return Flags.ServerURL, nil
	}
	if profile != nil && profile.TrackerURL != "" {
		return profile.TrackerURL, nil
	}
	settings, err := PeerSettings()
	if err != nil {
		return "", err
	}
	return settings.TrackerURL, nil
}

// OpenSession connects to the tracker with the saved profile and returns
// the client and the live session.
func OpenSession(profile *credentials.Profile) (*apiclient.Client, *apiclient.Session, error) {
	url, err := ServerURL(profile)
	if err != nil {
		return nil, nil, err
	}

	client := apiclient.New(url)
	sess, err := client.Connect(profile.Name, profile.Password, profile.IP, profile.Port)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session: %w", err)
	}
	return client, sess, nil
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// NewPrinter builds a printer honoring the global output flags.
func NewPrinter() (*output.Printer, error) {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(os.Stdout, format, !Flags.NoColor), nil
}

// PrintOutput prints data in the selected format. For table format it
// displays emptyMsg if the data set is empty.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintSuccess prints a success message if the output format is table.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	printer := output.NewPrinter(os.Stdout, format, !Flags.NoColor)
	printer.Success(msg)
}

// HandleAbort checks if error is an abort (Ctrl+C) and prints a message.
// Returns nil for abort, otherwise returns the original error.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}
