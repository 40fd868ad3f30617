// Package cmd provides command-line interface for PSU archive processing.
// This file contains commands for packing, listing and unpacking PSU files.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hansbonini/psutools/pkg"
	"github.com/hansbonini/psutools/pkg/ps2"
)

// psuCmd represents the parent command for all PSU archive operations.
var psuCmd = &cobra.Command{
	Use:   "psu",
	Short: "Process PSU save archives",
	Long: `Process PSU archives, the single-file form of a PlayStation 2
memory card save folder.

Commands:
  pack      Create a PSU archive from a save folder
  list      Show the entries of a PSU archive
  unpack    Extract a PSU archive into a folder

Examples:
  psutools psu pack ./SAVE -o SAVE.psu
  psutools psu list SAVE.psu
  psutools psu unpack SAVE.psu ./SAVE`,
}

// psuPackCmd creates a PSU archive from a folder described by psu.toml or
// psu.yaml.
var psuPackCmd = &cobra.Command{
	Use:   "pack [folder]",
	Short: "Create a PSU archive from a save folder",
	Long: `Create a PSU archive from a save folder.

The folder must contain a psu.toml (or psu.yaml) file:

  [config]
  name = "Example Save"               # Folder name on the memory card
  include = ["BOOT.ELF", "TITLE.DB"]  # Optional, defaults to every file
  exclude = ["debug.log"]             # Optional
  timestamp = "2024-10-10 10:30:00"   # Optional, defaults to now

  [icon_sys]                          # Optional, generates icon.sys
  flags = "save file"
  title = "Example Save"
  linebreak_pos = 7
  preset = "cool_blue"

Output:
  - <name>.psu unless --output is given

Example:
  psutools psu pack ./SAVE -o SAVE.psu`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := args[0]

		if err := enableVerbose(cmd); err != nil {
			return err
		}
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return fmt.Errorf("error getting output flag: %w", err)
		}
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return fmt.Errorf("error getting config flag: %w", err)
		}

		processor := pkg.NewPSUProcessor(nil)

		fmt.Printf("Packing save folder: %s\n", folder)

		written, err := processor.PackFolder(folder, configPath, output)
		if err != nil {
			return fmt.Errorf("failed to pack PSU archive: %w", err)
		}

		fmt.Printf("Wrote %s\n", written)
		return nil
	},
}

// psuListCmd prints the directory entries of a PSU archive.
var psuListCmd = &cobra.Command{
	Use:   "list [input_file]",
	Short: "Show the entries of a PSU archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]

		if err := enableVerbose(cmd); err != nil {
			return err
		}

		processor := pkg.NewPSUProcessor(nil)
		archive, err := processor.List(inputFile)
		if err != nil {
			return fmt.Errorf("failed to list PSU archive: %w", err)
		}

		fmt.Printf("Save folder: %s\n", archive.Name())
		fmt.Printf("Timestamp:   %s\n", formatTimestamp(archive.Root))
		fmt.Printf("Entries:     %d\n\n", archive.Root.Size)
		fmt.Printf("%-6s  %-9s  %10s  %-19s  %s\n", "MODE", "KIND", "SIZE", "MODIFIED", "NAME")
		for _, item := range archive.Entries {
			entry := item.Entry
			size := "-"
			if entry.Kind() == ps2.KindFile {
				size = fmt.Sprintf("%d", entry.Size)
			}
			fmt.Printf("0x%04X  %-9s  %10s  %-19s  %s\n", entry.Mode, entry.Kind(), size, formatModified(entry), entry.Name)
		}
		return nil
	},
}

// psuUnpackCmd extracts a PSU archive and writes a psu.toml that packs it
// back.
var psuUnpackCmd = &cobra.Command{
	Use:   "unpack [input_file] [output_directory]",
	Short: "Extract a PSU archive into a folder",
	Long: `Extract a PSU archive into a folder.

Output:
  - Every file stored in the archive
  - psu.toml describing the save (icon.sys decoded into [icon_sys])

Example:
  psutools psu unpack SAVE.psu ./SAVE`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]
		outputDir := args[1]

		if err := enableVerbose(cmd); err != nil {
			return err
		}

		processor := pkg.NewPSUProcessor(nil)

		fmt.Printf("Processing PSU file: %s\n", inputFile)
		fmt.Printf("Output directory: %s\n", outputDir)

		if err := processor.Unpack(inputFile, outputDir); err != nil {
			return fmt.Errorf("failed to unpack PSU archive: %w", err)
		}

		fmt.Println("PSU archive unpacked successfully!")
		return nil
	},
}

func formatTimestamp(entry ps2.DirectoryEntry) string {
	if entry.Created.IsZero() {
		return "-"
	}
	return entry.Created.Format(pkg.TimestampLayout)
}

func formatModified(entry ps2.DirectoryEntry) string {
	if entry.Modified.IsZero() {
		return "-"
	}
	return entry.Modified.Format(pkg.TimestampLayout)
}

// init initializes the PSU command and its subcommands with appropriate flags.
func init() {
	rootCmd.AddCommand(psuCmd)

	psuCmd.AddCommand(psuPackCmd)
	psuCmd.AddCommand(psuListCmd)
	psuCmd.AddCommand(psuUnpackCmd)

	psuPackCmd.Flags().StringP("output", "o", "", "Output PSU file (default \"<name>.psu\")")
	psuPackCmd.Flags().StringP("config", "c", "", "Config file (default psu.toml or psu.yaml inside the folder)")
}
