// Package cmd provides command-line interface for CD image processing.
// This file contains commands for dumping and extracting files from CD images
// used in PlayStation games.
package cmd

import (
	"fmt"

	"github.com/hansbonini/reevengitools/pkg"
	"github.com/spf13/cobra"
)

// cdCmd represents the parent command for all CD image operations.
var cdCmd = &cobra.Command{
	Use:   "cd",
	Short: "Process CD image files from PlayStation games",
	Long: `Process CD image files used in PlayStation games.

Commands:
  dump      Extract files from CD image files (.bin format)

Examples:
  reevengitools cd dump original.bin ./output/`,
}

// cdDumpCmd extracts files from CD image files.
var cdDumpCmd = &cobra.Command{
	Use:   "dump [input_file] [output_directory]",
	Short: "Extract files from CD image files",
	Long: `Extract files from CD image files (.bin format).

This command reads PlayStation CD images in raw 2352-byte sector format and
extracts all files from the ISO9660 file system. When verbose mode is
enabled (-v), it logs each file with:
  - ID (4-digit hex)
  - MSF (Minutes:Seconds:Frames)
  - LBA (Logical Block Address)
  - Size in bytes
  - Path within the CD structure

Example:
  reevengitools cd dump original.bin ./output/
  reevengitools cd dump -v original.bin ./output/`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]
		outputDir := args[1]

		fmt.Printf("Processing CD image file: %s\n", inputFile)
		fmt.Printf("Output directory: %s\n", outputDir)

		n, err := pkg.NewDiscProcessor().Dump(inputFile, outputDir)
		if err != nil {
			return fmt.Errorf("failed to process CD image file: %w", err)
		}

		fmt.Println("CD image file processed successfully!")
		fmt.Printf("%d files extracted to: %s\n", n, outputDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cdCmd)
	cdCmd.AddCommand(cdDumpCmd)
}
