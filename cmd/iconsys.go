// Package cmd provides command-line interface for icon.sys processing.
// This file contains commands for decoding and encoding icon.sys files.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hansbonini/psutools/pkg"
)

// iconSysCmd represents the parent command for icon.sys operations.
var iconSysCmd = &cobra.Command{
	Use:   "iconsys",
	Short: "Process icon.sys metadata files",
	Long: `Process icon.sys, the save browser metadata of a PlayStation 2 save.

Commands:
  decode    Print an icon.sys file as an [icon_sys] config table
  encode    Create icon.sys from the [icon_sys] table of a config file

Examples:
  psutools iconsys decode icon.sys --format yaml
  psutools iconsys encode psu.toml icon.sys`,
}

// iconSysDecodeCmd prints an icon.sys record as TOML or YAML.
var iconSysDecodeCmd = &cobra.Command{
	Use:   "decode [icon_sys_file]",
	Short: "Print an icon.sys file as an [icon_sys] config table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]

		if err := enableVerbose(cmd); err != nil {
			return err
		}
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("error getting format flag: %w", err)
		}

		processor := pkg.NewPSUProcessor(nil)
		doc, err := processor.DecodeIconSys(inputFile, format)
		if err != nil {
			return fmt.Errorf("failed to decode icon.sys: %w", err)
		}

		_, err = os.Stdout.Write(doc)
		return err
	},
}

// iconSysEncodeCmd builds icon.sys from a psu.toml / psu.yaml file.
var iconSysEncodeCmd = &cobra.Command{
	Use:   "encode [config_file] [output_file]",
	Short: "Create icon.sys from the [icon_sys] table of a config file",
	Long: `Create icon.sys from the [icon_sys] table of a psu.toml or psu.yaml file.

Example:
  psutools iconsys encode psu.toml icon.sys`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile := args[0]
		outputFile := args[1]

		if err := enableVerbose(cmd); err != nil {
			return err
		}

		processor := pkg.NewPSUProcessor(nil)

		fmt.Printf("Config file: %s\n", configFile)
		fmt.Printf("Output icon.sys file: %s\n", outputFile)

		if err := processor.EncodeIconSys(configFile, outputFile); err != nil {
			return fmt.Errorf("failed to encode icon.sys: %w", err)
		}

		fmt.Println("icon.sys encoded successfully!")
		return nil
	},
}

// init initializes the iconsys command and its subcommands with appropriate flags.
func init() {
	rootCmd.AddCommand(iconSysCmd)

	iconSysCmd.AddCommand(iconSysDecodeCmd)
	iconSysCmd.AddCommand(iconSysEncodeCmd)

	iconSysDecodeCmd.Flags().StringP("format", "f", pkg.FormatTOML, "Output format (toml or yaml)")
}
