// Package cmd provides the command-line interface of ReevengiTools.
// ReevengiTools is a collection of utilities for reading the data files of
// the first three Resident Evil games on PC and PlayStation.
package cmd

import (
	"fmt"
	"os"

	"github.com/hansbonini/reevengitools/pkg"
	"github.com/hansbonini/reevengitools/pkg/common"
	"github.com/hansbonini/reevengitools/pkg/config"
	"github.com/spf13/cobra"
)

// cfg holds the settings loaded before any command runs.
var cfg = config.Default()

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "reevengitools",
	Short: "Tools for reading Resident Evil 1/2/3 game data",
	Long: `ReevengiTools - A collection of utilities for reading the data files of
Resident Evil, Resident Evil 2 and Resident Evil 3 (PC and PlayStation).

Currently supports:
  - ROFS archives (list/extract/pack rofs<n>.dat)
  - TIM images and SLD compressed images (convert to PNG/BMP)
  - Room records (dump cameras and trigger zones, check movements)
  - STR movies (emulate raw CD-XA sectors)
  - CD image files (extract files from ISO9660 file system)
  - Game directories (detect version, load rooms and backgrounds)

Examples:
  reevengitools rofs list rofs2.dat
  reevengitools rofs extract rofs2.dat ./output/
  reevengitools tim convert ITEM.TIM item.png
  reevengitools sld convert --scale 2 res.sld res.png
  reevengitools room dump --game re2-leon ROOM1000.RDT room.yaml
  reevengitools str emulate ZMOVIE.STR movie.raw
  reevengitools cd dump original.bin ./output/
  reevengitools game info --config reevengi.yaml

Use 'reevengitools [command] --help' for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, err := cmd.Flags().GetString("config")
		if err != nil {
			return fmt.Errorf("error getting config flag: %w", err)
		}
		if configFile != "" {
			loaded, err := config.Load(configFile)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("error getting verbose flag: %w", err)
		}
		common.SetVerboseMode(verbose || cfg.Verbose)
		return nil
	},
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

// imageOptions merges the export settings with the flags of cmd.
func imageOptions(cmd *cobra.Command) (pkg.ImageOptions, error) {
	opts := pkg.DefaultImageOptions()
	opts.Format = cfg.Export.Format
	opts.Scale = cfg.Export.Scale
	opts.Filter = cfg.Export.Filter
	opts.Metadata = cfg.Export.Metadata

	flags := cmd.Flags()
	var err error
	if flags.Changed("format") {
		if opts.Format, err = flags.GetString("format"); err != nil {
			return opts, err
		}
	}
	if flags.Changed("scale") {
		if opts.Scale, err = flags.GetInt("scale"); err != nil {
			return opts, err
		}
	}
	if flags.Changed("filter") {
		if opts.Filter, err = flags.GetString("filter"); err != nil {
			return opts, err
		}
	}
	if flags.Changed("metadata") {
		if opts.Metadata, err = flags.GetBool("metadata"); err != nil {
			return opts, err
		}
	}
	if opts.ColorMap, err = flags.GetInt("clut"); err != nil {
		return opts, err
	}
	return opts, nil
}

// addImageFlags registers the export flags used by imageOptions.
func addImageFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", config.FormatPNG, "Output image format (png, bmp)")
	cmd.Flags().IntP("scale", "s", 1, "Integer upscale factor")
	cmd.Flags().String("filter", config.FilterNearest, "Scaling filter (nearest, catmullrom)")
	cmd.Flags().Bool("metadata", false, "Write a YAML sidecar with header fields and colour maps")
	cmd.Flags().Int("clut", -1, "Colour map used for indexed images (-1 keeps the first)")
}

// init initializes the root command with flags and configuration settings.
func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}
