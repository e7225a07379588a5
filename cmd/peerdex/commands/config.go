package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/peerdex/peerdex/pkg/config"
)

var initForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the tracker configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Write a configuration file populated with defaults.

By default, the file is created at $XDG_CONFIG_HOME/peerdex/config.yaml.
Use --config to pick a custom path, and --force to overwrite an existing
file.`,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	RunE:  runConfigValidate,
}

func init() {
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := config.SaveConfig(config.GetDefaultConfig(), path); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the tracker with: peerdex start")
	fmt.Printf("  3. Or specify custom config: peerdex start --config %s\n", path)

	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	fmt.Println("Configuration is valid.")
	fmt.Printf("  Database: %s\n", cfg.Database.Type)
	fmt.Printf("  Tracker port: %d\n", cfg.Tracker.Port)
	if cfg.Tracker.MaxUsers != 0 {
		fmt.Printf("  Session capacity: %d\n", cfg.Tracker.MaxUsers)
	} else {
		fmt.Println("  Session capacity: set at runtime via the admin endpoint")
	}
	return nil
}
