// Package cmd provides command-line interface functionality for PSUTools.
// PSUTools packages PlayStation 2 save folders into PSU archives and
// converts icon.sys metadata to and from editable config files.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hansbonini/psutools/pkg/common"
)

// rootCmd represents the base command when called without any subcommands.
// It provides the main entry point for the PSUTools application.
var rootCmd = &cobra.Command{
	Use:   "psutools",
	Short: "Tools for packaging PlayStation 2 save data",
	Long: `PSUTools - A collection of utilities for packaging PlayStation 2
memory card saves into PSU archives.

Currently supports:
  - PSU archives (pack a save folder, list or unpack an archive)
  - icon.sys metadata (decode to TOML/YAML, encode from a config file)

Examples:
  psutools psu pack ./BASLUS-12345 -o BASLUS-12345.psu
  psutools psu list BASLUS-12345.psu
  psutools psu unpack BASLUS-12345.psu ./extracted/
  psutools iconsys decode icon.sys --format yaml
  psutools iconsys encode psu.toml icon.sys

The log level can also be set with the PSUTOOLS_LOG_LEVEL environment
variable (trace, debug, info, warn, error).

Use 'psutools [command] --help' for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main() and serves as the entry point for command execution.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		common.LogError("%v", err)
		os.Exit(1)
	}
}

// enableVerbose applies the --verbose flag of the running command
func enableVerbose(cmd *cobra.Command) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("error getting verbose flag: %w", err)
	}
	common.SetVerboseMode(verbose)
	return nil
}

// init initializes the root command with flags shared by every subcommand.
func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output (show debug messages)")
}
