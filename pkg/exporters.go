// Package pkg glues the format packages to files on disk: archive listing
// and extraction, image conversion, room dumps, movie sector emulation and
// disc image extraction.
// This file contains the image and YAML writers shared by the processors.
package pkg

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hansbonini/reevengitools/pkg/common"
	"github.com/hansbonini/reevengitools/pkg/psx"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"gopkg.in/yaml.v3"
)

// scaleImage enlarges img by an integer factor with the named filter.
func scaleImage(img image.Image, factor int, filter string) (image.Image, error) {
	if factor <= 1 {
		return img, nil
	}

	var scaler draw.Scaler
	switch strings.ToLower(filter) {
	case "", "nearest":
		scaler = draw.NearestNeighbor
	case "catmullrom":
		scaler = draw.CatmullRom
	default:
		return nil, fmt.Errorf("unknown scaling filter %q", filter)
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	scaler.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}

// encodeImage writes img to w as PNG or BMP.
func encodeImage(w io.Writer, img image.Image, format string) error {
	var err error
	switch strings.ToLower(format) {
	case "", "png":
		err = png.Encode(w, img)
	case "bmp":
		err = bmp.Encode(w, img)
	default:
		return common.FormatErrorString(common.ErrFailedToEncodeImage, "unknown image format %q", format)
	}
	if err != nil {
		return common.FormatError(common.ErrFailedToEncodeImage, err)
	}
	return nil
}

// createOutput opens a file for writing.
var createOutput = func(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// writeOutput creates outputFile, including missing parent directories, and
// hands it to write. A failed close is reported when write succeeded.
func writeOutput(outputFile string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(outputFile), 0o750); err != nil {
		return common.FormatError(common.ErrFailedToCreateOutputDir, err)
	}
	file, err := createOutput(outputFile)
	if err != nil {
		return common.FormatError(common.ErrFailedToCreateOutputFile, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = common.FormatError(common.ErrFailedToCloseOutputFile, cerr)
		}
	}()

	return write(file)
}

// saveImage encodes img into outputFile.
func saveImage(outputFile string, img image.Image, format string) error {
	return writeOutput(outputFile, func(w io.Writer) error {
		return encodeImage(w, img, format)
	})
}

// WriteYAML marshals v into outputFile.
func WriteYAML(outputFile string, v any) error {
	return writeOutput(outputFile, func(w io.Writer) error {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return common.FormatError(common.ErrFailedToWriteYAML, err)
		}
		return encoder.Close()
	})
}

// paletteHex renders PSX colours as #rrggbb strings. Transparent black
// entries are written as "transparent".
func paletteHex(palette []psx.PSXColor) []string {
	out := make([]string, len(palette))
	for i, c := range palette {
		rgba := c.ToRGBA()
		if rgba.A == 0 {
			out[i] = "transparent"
			continue
		}
		out[i] = colorful.Color{
			R: float64(rgba.R) / 255,
			G: float64(rgba.G) / 255,
			B: float64(rgba.B) / 255,
		}.Hex()
	}
	return out
}

// replaceExt swaps the extension of name.
func replaceExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
