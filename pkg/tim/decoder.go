// Package tim decodes PlayStation TIM images: a header selecting the pixel
// mode, an optional colour-map block and the pixel data block.
package tim

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/hansbonini/reevengitools/pkg/common"
	"github.com/hansbonini/reevengitools/pkg/psx"
)

// Magic is the first word of every TIM file.
const Magic = 0x10

const (
	flagModeMask = 0x07
	flagHasCLUT  = 0x08

	// maxImageBytes bounds the pixel block a header may declare.
	maxImageBytes = 64 << 20
)

var (
	// ErrBadMagic is returned when the stream does not start with Magic.
	ErrBadMagic = errors.New("tim: bad magic")
	// ErrUnsupportedPixelFormat matches every UnsupportedFormatError.
	ErrUnsupportedPixelFormat = errors.New("tim: unsupported pixel format")
	// ErrNoColorMap is returned for indexed images without a usable colour map.
	ErrNoColorMap = errors.New("tim: indexed image has no color map")
	// ErrColorMapRange is returned for a colour-map index past the last map.
	ErrColorMapRange = errors.New("tim: color map index out of range")
	// ErrTooLarge is returned when the image block exceeds the size limit.
	ErrTooLarge = errors.New("tim: image too large")
)

// Mode is the pixel layout selected by the header flags.
type Mode uint8

const (
	Mode4Bit Mode = iota
	Mode8Bit
	Mode16Bit
	Mode24Bit
	ModeMixed
)

func (m Mode) String() string {
	switch m {
	case Mode4Bit:
		return "4bit"
	case Mode8Bit:
		return "8bit"
	case Mode16Bit:
		return "16bit"
	case Mode24Bit:
		return "24bit"
	case ModeMixed:
		return "mixed"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Indexed reports whether pixels are colour-map indices.
func (m Mode) Indexed() bool {
	return m == Mode4Bit || m == Mode8Bit
}

// UnsupportedFormatError reports a header whose pixel mode cannot be decoded.
type UnsupportedFormatError struct {
	Flags uint32
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("tim: unsupported pixel format %s (flags 0x%08X)", Mode(e.Flags&flagModeMask), e.Flags)
}

// Is makes errors.Is(err, ErrUnsupportedPixelFormat) match.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedPixelFormat
}

// Info holds the header fields of a loaded image.
type Info struct {
	Width          int
	Height         int
	Mode           Mode
	ColorMapCount  int16
	ColorMapLength int16
	ClutX, ClutY   uint16
	ImageX, ImageY uint16
}

// Decoder loads one image at a time. Each load replaces the previous
// surface with a new one; surfaces handed out are never written again.
type Decoder struct {
	info     Info
	colorMap []psx.PSXColor
	data     []byte // raw pixel block
	stride   int    // bytes per row in data
	surface  *image.RGBA
}

// NewDecoder creates an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Destroy releases the surface and scratch buffers. Safe to call repeatedly.
func (d *Decoder) Destroy() {
	*d = Decoder{}
}

// Surface returns the decoded image, or nil when nothing is loaded.
func (d *Decoder) Surface() *image.RGBA {
	return d.surface
}

// Info returns the header metadata of the loaded image.
func (d *Decoder) Info() Info {
	return d.info
}

// LoadStream decodes an image from r. On failure the decoder is left empty.
func (d *Decoder) LoadStream(r io.Reader) error {
	d.Destroy()

	if err := d.load(r); err != nil {
		d.Destroy()
		return fmt.Errorf("%s: %w", common.ErrFailedToDecodeImage, err)
	}
	return nil
}

func (d *Decoder) load(r io.Reader) error {
	hasCLUT, err := d.readHeader(r)
	if err != nil {
		return err
	}
	if hasCLUT {
		if err := d.readColorMap(r); err != nil {
			return err
		}
	}
	if err := d.readData(r); err != nil {
		return err
	}

	if d.info.Mode.Indexed() {
		if len(d.colorMap) == 0 {
			return ErrNoColorMap
		}
		palette, err := d.ColorMap(0)
		if err != nil {
			return err
		}
		d.surface = d.render(palette)
		return nil
	}
	d.surface = d.render(nil)
	return nil
}

func (d *Decoder) readHeader(r io.Reader) (bool, error) {
	magic, err := common.ReadUint32LE(r)
	if err != nil {
		return false, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != Magic {
		return false, fmt.Errorf("%w: 0x%08X", ErrBadMagic, magic)
	}

	flags, err := common.ReadUint32LE(r)
	if err != nil {
		return false, fmt.Errorf("failed to read flags: %w", err)
	}

	mode := Mode(flags & flagModeMask)
	if mode > Mode24Bit {
		return false, &UnsupportedFormatError{Flags: flags}
	}
	d.info.Mode = mode

	hasCLUT := flags&flagHasCLUT != 0
	common.LogDebug(common.DebugTimHeader, mode, hasCLUT)
	return hasCLUT, nil
}

// blockHeader is the common prefix of the colour-map and pixel blocks.
type blockHeader struct {
	Length uint32
	X, Y   uint16
	W, H   uint16
}

func readBlockHeader(r io.Reader) (blockHeader, error) {
	var h blockHeader
	var err error
	if h.Length, err = common.ReadUint32LE(r); err != nil {
		return h, err
	}
	fields := []*uint16{&h.X, &h.Y, &h.W, &h.H}
	for _, f := range fields {
		if *f, err = common.ReadUint16LE(r); err != nil {
			return h, err
		}
	}
	return h, nil
}

func (d *Decoder) readColorMap(r io.Reader) error {
	h, err := readBlockHeader(r)
	if err != nil {
		return fmt.Errorf("failed to read color map header: %w", err)
	}

	d.info.ClutX, d.info.ClutY = h.X, h.Y
	d.info.ColorMapLength = int16(h.W)
	d.info.ColorMapCount = int16(h.H)

	body := int64(h.Length) - 12
	if d.info.ColorMapCount > 0 && d.info.ColorMapLength > 0 {
		n := int(d.info.ColorMapCount) * int(d.info.ColorMapLength)
		raw, err := common.ReadBytes(r, n*2)
		if err != nil {
			return fmt.Errorf("failed to read color map: %w", err)
		}
		d.colorMap = make([]psx.PSXColor, n)
		for i := range d.colorMap {
			d.colorMap[i] = psx.PSXColor(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		}
		body -= int64(n) * 2
		common.LogDebug(common.DebugTimColorMap, d.info.ColorMapCount, d.info.ColorMapLength)
	}

	// Skip whatever the block length declares beyond the colours.
	if body > 0 {
		if err := common.SkipBytes(r, int(body)); err != nil {
			return fmt.Errorf("failed to skip color map padding: %w", err)
		}
	}
	return nil
}

func (d *Decoder) readData(r io.Reader) error {
	h, err := readBlockHeader(r)
	if err != nil {
		return fmt.Errorf("failed to read image header: %w", err)
	}

	// W counts 16-bit units.
	stride := int(h.W) * 2
	var width int
	switch d.info.Mode {
	case Mode4Bit:
		width = int(h.W) * 4
	case Mode8Bit:
		width = int(h.W) * 2
	case Mode16Bit:
		width = int(h.W)
	case Mode24Bit:
		width = stride / 3
	}
	height := int(h.H)

	if stride*height > maxImageBytes {
		return fmt.Errorf("%w: %dx%d", ErrTooLarge, width, height)
	}

	data, err := common.ReadBytes(r, stride*height)
	if err != nil {
		return fmt.Errorf("failed to read image data: %w", err)
	}

	d.info.Width, d.info.Height = width, height
	d.info.ImageX, d.info.ImageY = h.X, h.Y
	d.data = data
	d.stride = stride

	common.LogDebug(common.DebugTimImage, width, height, h.X, h.Y)
	return nil
}

// ColorMapCount returns the number of colour maps in the loaded image.
func (d *Decoder) ColorMapCount() int {
	if len(d.colorMap) == 0 {
		return 0
	}
	return int(d.info.ColorMapCount)
}

// ColorMap returns the colours of colour map i.
func (d *Decoder) ColorMap(i int) ([]psx.PSXColor, error) {
	if i < 0 || i >= d.ColorMapCount() {
		return nil, fmt.Errorf("%w: %d of %d", ErrColorMapRange, i, d.ColorMapCount())
	}
	n := int(d.info.ColorMapLength)
	return d.colorMap[i*n : (i+1)*n], nil
}

// RenderColorMap draws the loaded indexed image with colour map i into a
// new surface. The loaded surface is left untouched.
func (d *Decoder) RenderColorMap(i int) (*image.RGBA, error) {
	if !d.info.Mode.Indexed() {
		return nil, ErrNoColorMap
	}
	palette, err := d.ColorMap(i)
	if err != nil {
		return nil, err
	}
	return d.render(palette), nil
}

// render expands the raw pixel block into a fresh RGBA surface.
func (d *Decoder) render(palette []psx.PSXColor) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, d.info.Width, d.info.Height))

	lookup := func(index int) color.RGBA {
		if index < len(palette) {
			return palette[index].ToRGBA()
		}
		return color.RGBA{}
	}

	for y := 0; y < d.info.Height; y++ {
		row := d.data[y*d.stride : (y+1)*d.stride]
		for x := 0; x < d.info.Width; x++ {
			var c color.RGBA
			switch d.info.Mode {
			case Mode4Bit:
				b := row[x/2]
				if x%2 == 0 {
					c = lookup(int(b & 0x0F))
				} else {
					c = lookup(int(b >> 4))
				}
			case Mode8Bit:
				c = lookup(int(row[x]))
			case Mode16Bit:
				c = psx.PSXColor(uint16(row[2*x]) | uint16(row[2*x+1])<<8).ToRGBA()
			case Mode24Bit:
				c = color.RGBA{row[3*x], row[3*x+1], row[3*x+2], 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
