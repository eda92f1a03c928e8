// Package main implements the filesearchd daemon: a sandboxed file
// browse, search, and read engine exposed as MCP tools over stdio or
// streamable HTTP.
//
// Usage:
//
//	# Serve over stdio (the default transport)
//	filesearchd --config /etc/filesearchd/config.yaml
//
//	# Validate a configuration file without starting
//	filesearchd validate --config config.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/filesearchd/internal/config"
)

var (
	// configPath is the configuration file location.
	configPath string
	// version information (set via ldflags during build)
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "filesearchd",
	Short: "Sandboxed file search MCP server",
	Long: `filesearchd exposes a confined slice of the filesystem as MCP tools:
directory listing, regex file-name search, file reading, and regex
content search. Access never leaves the configured allowed roots, and
sensitive path prefixes can be masked behind opaque tokens.`,
	Version: version,
	RunE:    runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "configuration file path")
	rootCmd.AddCommand(validateCmd)
}

// validateCmd checks a configuration file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load and validate the configuration file, then exit.

Examples:
  # Validate the default config.yaml
  filesearchd validate

  # Validate a specific file
  filesearchd validate --config /etc/filesearchd/config.yaml`,
	RunE: runValidate,
}

// runValidate handles the validate command.
func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration OK: %d allowed path(s), transport %s\n",
		len(cfg.Sandbox.AllowedPaths), cfg.Server.Transport)
	return nil
}
