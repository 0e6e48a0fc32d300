// Package cmd provides command-line interface for image processing.
// This file contains the TIM and SLD image commands.
package cmd

import (
	"fmt"

	"github.com/hansbonini/reevengitools/pkg"
	"github.com/spf13/cobra"
)

// timCmd represents the parent command for TIM image operations.
var timCmd = &cobra.Command{
	Use:   "tim",
	Short: "Process TIM image files",
	Long: `Process PlayStation TIM images (4, 8, 16 and 24 bits per pixel).

Commands:
  convert   Convert a TIM image to PNG or BMP

Examples:
  reevengitools tim convert ITEM.TIM item.png
  reevengitools tim convert --clut 2 --metadata ITEM.TIM item.png`,
}

// sldCmd represents the parent command for SLD compressed image operations.
var sldCmd = &cobra.Command{
	Use:   "sld",
	Short: "Process SLD compressed image files",
	Long: `Process SLD files: TIM images compressed with back-references.

Commands:
  convert   Depack and convert an SLD image to PNG or BMP
  depack    Write the TIM carried by an SLD file
  pack      Compress a TIM into an SLD file

Examples:
  reevengitools sld convert res.sld res.png
  reevengitools sld depack res.sld res.tim
  reevengitools sld pack res.tim res.sld`,
}

// convertImage runs the image processor with the export flags of cmd.
func convertImage(cmd *cobra.Command, args []string) error {
	opts, err := imageOptions(cmd)
	if err != nil {
		return fmt.Errorf("error getting image flags: %w", err)
	}

	fmt.Printf("Processing image file: %s\n", args[0])
	meta, err := pkg.NewImageProcessor().Convert(args[0], args[1], opts)
	if err != nil {
		return fmt.Errorf("failed to convert image: %w", err)
	}

	fmt.Printf("Image converted: %dx%d %s -> %s\n", meta.Width, meta.Height, meta.Mode, args[1])
	return nil
}

var timConvertCmd = &cobra.Command{
	Use:   "convert [input_file] [output_file]",
	Short: "Convert a TIM image",
	Args:  cobra.ExactArgs(2),
	RunE:  convertImage,
}

var sldConvertCmd = &cobra.Command{
	Use:   "convert [input_file] [output_file]",
	Short: "Depack and convert an SLD image",
	Args:  cobra.ExactArgs(2),
	RunE:  convertImage,
}

var sldDepackCmd = &cobra.Command{
	Use:   "depack [input_file] [output_file]",
	Short: "Depack an SLD file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := pkg.NewImageProcessor().Depack(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to depack file: %w", err)
		}
		fmt.Printf("Depacked file written to: %s\n", args[1])
		return nil
	},
}

var sldPackCmd = &cobra.Command{
	Use:   "pack [input_file] [output_file]",
	Short: "Compress a file into the SLD format",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := pkg.NewImageProcessor().Pack(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to pack file: %w", err)
		}
		fmt.Printf("Packed file written to: %s\n", args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(timCmd)
	rootCmd.AddCommand(sldCmd)

	timCmd.AddCommand(timConvertCmd)
	sldCmd.AddCommand(sldConvertCmd)
	sldCmd.AddCommand(sldDepackCmd)
	sldCmd.AddCommand(sldPackCmd)

	addImageFlags(timConvertCmd)
	addImageFlags(sldConvertCmd)
}
