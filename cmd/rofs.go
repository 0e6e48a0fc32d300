// Package cmd provides command-line interface for ROFS archive processing.
// This file contains commands for listing, extracting and building the
// rofs<n>.dat containers of the PC release of Resident Evil 3.
package cmd

import (
	"fmt"

	"github.com/hansbonini/reevengitools/pkg"
	"github.com/hansbonini/reevengitools/pkg/rofs"
	"github.com/spf13/cobra"
)

// rofsCmd represents the parent command for all ROFS archive operations.
var rofsCmd = &cobra.Command{
	Use:   "rofs",
	Short: "Process ROFS archive files",
	Long: `Process ROFS archives (rofs1.dat ... rofs15.dat).

Commands:
  list      Show the directory of an archive
  extract   Extract members to a directory
  pack      Build an archive from the files of a directory

Examples:
  reevengitools rofs list rofs2.dat
  reevengitools rofs extract rofs2.dat ./output/
  reevengitools rofs extract --raw rofs2.dat ./stored/
  reevengitools rofs pack --dir0 data --dir1 etc2 ./files/ rofs16.dat`,
}

// rofsListCmd prints the directory of an archive.
var rofsListCmd = &cobra.Command{
	Use:   "list [input_file]",
	Short: "List the members of a ROFS archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		listing, err := pkg.NewArchiveProcessor().List(args[0])
		if err != nil {
			return fmt.Errorf("failed to list archive: %w", err)
		}

		fmt.Printf("Archive: %s (%s/%s)\n", listing.Source, listing.Dir0, listing.Dir1)
		for _, e := range listing.Entries {
			kind := "stored"
			if e.Compressed {
				kind = fmt.Sprintf("compressed, %d blocks", e.Blocks)
			}
			fmt.Printf("  0x%08X %10d  %-40s %s\n", e.Offset, e.UncompressedSize, e.Name, kind)
		}
		fmt.Printf("%d members\n", len(listing.Entries))
		return nil
	},
}

// rofsExtractCmd extracts members of an archive.
var rofsExtractCmd = &cobra.Command{
	Use:   "extract [input_file] [output_directory] [member...]",
	Short: "Extract members of a ROFS archive",
	Long: `Extract members of a ROFS archive, all of them when no member is named.

Members keep their archive path below the output directory. Compressed
members are expanded unless --raw is given, which writes their stored
record instead.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile, outputDir := args[0], args[1]

		raw, err := cmd.Flags().GetBool("raw")
		if err != nil {
			return fmt.Errorf("error getting raw flag: %w", err)
		}
		var opts []rofs.Option
		if raw {
			opts = append(opts, rofs.WithDepacker(nil))
		}

		fmt.Printf("Processing ROFS archive: %s\n", inputFile)
		fmt.Printf("Output directory: %s\n", outputDir)

		n, err := pkg.NewArchiveProcessor(opts...).Extract(inputFile, outputDir, args[2:]...)
		if err != nil {
			return fmt.Errorf("failed to extract archive: %w", err)
		}

		fmt.Printf("%d files extracted to: %s\n", n, outputDir)
		return nil
	},
}

// rofsPackCmd builds an archive from a directory.
var rofsPackCmd = &cobra.Command{
	Use:   "pack [input_directory] [output_file]",
	Short: "Build a ROFS archive from a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir0, err := cmd.Flags().GetString("dir0")
		if err != nil {
			return fmt.Errorf("error getting dir0 flag: %w", err)
		}
		dir1, err := cmd.Flags().GetString("dir1")
		if err != nil {
			return fmt.Errorf("error getting dir1 flag: %w", err)
		}

		compress, err := cmd.Flags().GetBool("compress")
		if err != nil {
			return fmt.Errorf("error getting compress flag: %w", err)
		}

		if err := pkg.NewArchiveProcessor().Pack(args[0], args[1], dir0, dir1, compress); err != nil {
			return fmt.Errorf("failed to pack archive: %w", err)
		}

		fmt.Printf("Archive created: %s\n", args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rofsCmd)
	rofsCmd.AddCommand(rofsListCmd)
	rofsCmd.AddCommand(rofsExtractCmd)
	rofsCmd.AddCommand(rofsPackCmd)

	rofsExtractCmd.Flags().Bool("raw", false, "Write compressed members as stored")
	rofsPackCmd.Flags().String("dir0", "data", "First directory name stored in the header")
	rofsPackCmd.Flags().String("dir1", "etc", "Second directory name stored in the header")
	rofsPackCmd.Flags().Bool("compress", false, "Compress every member")
}
