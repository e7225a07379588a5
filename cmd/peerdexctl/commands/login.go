package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/peerdex/peerdex/cmd/peerdexctl/cmdutil"
	"github.com/peerdex/peerdex/internal/cli/credentials"
	"github.com/peerdex/peerdex/internal/cli/prompt"
	"github.com/peerdex/peerdex/pkg/apiclient"
)

var (
	loginUsername string
	loginPassword string
	loginIP       string
	loginPort     int
	loginShareDir string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to a tracker and save the profile",
	Long: `Log in to a peerdex tracker and save the profile for later commands.

The tracker creates the account on first contact, so login doubles as
registration. The announced IP and port are the endpoint other peers
use to download your shared files.

Examples:
  # First login, prompting for anything not given
  peerdexctl login --server http://localhost:4750 --username alice

  # Announce a specific transfer endpoint
  peerdexctl login -u alice --ip 192.168.1.20 --port 1052`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Peer name (5-25 characters)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (less secure than the prompt)")
	loginCmd.Flags().StringVar(&loginIP, "ip", "127.0.0.1", "IP announced for peer transfers")
	loginCmd.Flags().IntVar(&loginPort, "port", 0, "Port announced for peer transfers (0 picks one at share time)")
	loginCmd.Flags().StringVar(&loginShareDir, "share-dir", "", "Default directory of shared files")
}

func runLogin(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open profile store: %w", err)
	}

	serverURL, err := cmdutil.ServerURL(nil)
	if err != nil {
		return err
	}
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return fmt.Errorf("invalid tracker URL: %w", err)
	}
	if parsed.Scheme == "" {
		parsed.Scheme = "http"
		serverURL = parsed.String()
	}

	username := loginUsername
	if username == "" {
		username, err = prompt.InputWithValidation("Peer name", func(input string) error {
			if len(input) < 5 || len(input) > 25 {
				return fmt.Errorf("name must be 5-25 characters")
			}
			return nil
		})
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	password := loginPassword
	if password == "" {
		password, err = prompt.Password("Password", 6)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	fmt.Printf("Logging in to %s as %s...\n", serverURL, username)

	client := apiclient.New(serverURL)
	sess, err := client.Connect(username, password, loginIP, loginPort)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	// The login was only a verification; later commands open their own
	// session.
	if err := client.Disconnect(sess); err != nil {
		return fmt.Errorf("failed to close verification session: %w", err)
	}

	profile := &credentials.Profile{
		TrackerURL: serverURL,
		Name:       username,
		Password:   password,
		IP:         loginIP,
		Port:       loginPort,
		ShareDir:   loginShareDir,
	}
	if err := store.SetProfile(profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	if sess.Tag == "NEW" {
		fmt.Printf("Account created and verified for %s\n", username)
	} else {
		fmt.Printf("Logged in successfully as %s\n", username)
	}
	fmt.Printf("Profile saved to: %s\n", store.Path())

	return nil
}
