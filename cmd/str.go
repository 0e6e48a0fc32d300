// Package cmd provides command-line interface for movie processing.
// This file contains the command that rebuilds raw CD-XA sectors around
// movie files stored as plain 2048-byte data.
package cmd

import (
	"fmt"

	"github.com/hansbonini/reevengitools/pkg"
	"github.com/spf13/cobra"
)

// strCmd represents the parent command for STR movie operations.
var strCmd = &cobra.Command{
	Use:   "str",
	Short: "Process STR movie files",
	Long: `Process STR movies copied from the disc as 2048-byte data blocks.

Commands:
  emulate   Write the movie as raw 2352-byte Mode 2 sectors

Examples:
  reevengitools str emulate ZMOVIE.STR movie.raw`,
}

var strEmulateCmd = &cobra.Command{
	Use:   "emulate [input_file] [output_file]",
	Short: "Rebuild raw sectors around a movie file",
	Long: `Rebuild raw sectors around a movie file.

Every 2048-byte block becomes one 2352-byte sector with sync pattern,
BCD header and XA subheader. Blocks that do not start a video frame are
written as zero-filled data sectors.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Processing movie file: %s\n", args[0])

		sectors, err := pkg.NewMovieProcessor().Emulate(args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to emulate sectors: %w", err)
		}

		fmt.Printf("%d sectors written to: %s\n", sectors, args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(strCmd)
	strCmd.AddCommand(strEmulateCmd)
}
