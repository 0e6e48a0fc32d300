// Package sld handles the back-reference compression used by BSS and SLD
// image files: a 4-byte destination size, two reserved bytes, then an
// alternation of back-reference chains and literal runs driven by control
// bytes.
package sld

import (
	"errors"
	"fmt"
	"io"

	"github.com/32bitkid/bitreader"
	"github.com/hansbonini/reevengitools/pkg/common"
)

// MaxDepackSize caps the destination size a stream may declare.
const MaxDepackSize = 64 << 20

// EndMarker stops decoding when read in place of a literal control byte.
const EndMarker = 0xFF

// headerSize covers the destination size and the two reserved bytes.
const headerSize = 6

var (
	// ErrTooLarge is returned when the header declares more than MaxDepackSize bytes.
	ErrTooLarge = errors.New("sld: destination size too large")
	// ErrOverflow is returned when an instruction writes past the destination size.
	ErrOverflow = errors.New("sld: write past end of destination")
	// ErrBadReference is returned when a back-reference points before the start of the output.
	ErrBadReference = errors.New("sld: back-reference before start of output")
	// ErrTruncated is returned when the source ends inside an instruction.
	ErrTruncated = errors.New("sld: truncated stream")
)

// Control byte layout, most significant bit first:
//
//	hhh f cccc
//
// f clear: back-reference, hhh are the high offset bits and cccc the count.
// f set: literal run of 16-cccc bytes; 0xFF ends the stream.
type control struct {
	high    uint8
	literal bool
	low     uint8
}

func (c control) byte() byte {
	b := c.high<<5 | c.low
	if c.literal {
		b |= 0x10
	}
	return b
}

// offset combines the high bits with the following byte into a negative
// 11-bit distance.
func (c control) offset(next byte) int {
	return int(c.high)<<8 | int(next) - 2048
}

// runLength decodes the 5-bit literal field as a negated count.
func (c control) runLength() int {
	return int((uint16(c.byte())|0xFFE0)^0xFFFF) + 1
}

type depacker struct {
	br  bitreader.BitReader
	dst []byte
	pos int

	read  int  // source bytes consumed after the header
	ended bool // stopped on EndMarker
}

// Depack decodes a compressed stream and returns the destination buffer,
// sized from the stream header. Decoding stops at the end marker, when the
// destination is full, or when the source is exhausted between instructions.
func Depack(r io.Reader) ([]byte, error) {
	d, err := depack(r)
	if err != nil {
		return nil, err
	}
	return d.dst, nil
}

func depack(r io.Reader) (*depacker, error) {
	dstLen, err := common.ReadUint32LE(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read destination size: %w", err)
	}
	if dstLen > MaxDepackSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, dstLen)
	}
	if err := common.SkipBytes(r, 2); err != nil {
		return nil, fmt.Errorf("%w: header", ErrTruncated)
	}

	common.LogDebug(common.DebugDepackHeader, dstLen)

	d := &depacker{
		br:  bitreader.NewReader(r),
		dst: make([]byte, dstLen),
	}
	if err := d.run(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *depacker) run() error {
	for d.pos < len(d.dst) {
		c, err := d.readControl()
		if err != nil {
			if isEOF(err) {
				return nil
			}
			return err
		}

		for !c.literal {
			if err := d.backReference(c); err != nil {
				return err
			}
			if d.pos == len(d.dst) {
				return nil
			}
			c, err = d.readControl()
			if err != nil {
				if isEOF(err) {
					return nil
				}
				return err
			}
		}

		if c.byte() == EndMarker {
			d.ended = true
			return nil
		}
		if err := d.literalRun(c); err != nil {
			return err
		}
	}
	return nil
}

func (d *depacker) backReference(c control) error {
	next, err := d.readByte()
	if err != nil {
		return err
	}
	offset := c.offset(next)

	count := int(c.low)
	if count == 0x0F {
		extra, err := d.readByte()
		if err != nil {
			return err
		}
		count += int(extra)
	}
	count += 3

	src := d.pos + offset
	if src < 0 {
		return fmt.Errorf("%w: offset %d at %d", ErrBadReference, offset, d.pos)
	}
	if d.pos+count > len(d.dst) {
		return fmt.Errorf("%w: copy of %d at %d", ErrOverflow, count, d.pos)
	}

	// Byte by byte: overlapping copies repeat the pattern.
	for i := 0; i < count; i++ {
		d.dst[d.pos+i] = d.dst[src+i]
	}
	d.pos += count
	return nil
}

func (d *depacker) literalRun(c control) error {
	count := c.runLength()
	if count == 0x10 {
		extra, err := d.readByte()
		if err != nil {
			return err
		}
		count += int(extra)
	}

	if d.pos+count > len(d.dst) {
		return fmt.Errorf("%w: run of %d at %d", ErrOverflow, count, d.pos)
	}
	for i := 0; i < count; i++ {
		b, err := d.readByte()
		if err != nil {
			return err
		}
		d.dst[d.pos] = b
		d.pos++
	}
	return nil
}

func (d *depacker) readControl() (control, error) {
	high, err := d.br.Read8(3)
	if err != nil {
		return control{}, err
	}
	flag, err := d.br.Read1()
	if err != nil {
		return control{}, fmt.Errorf("%w: control byte", ErrTruncated)
	}
	low, err := d.br.Read8(4)
	if err != nil {
		return control{}, fmt.Errorf("%w: control byte", ErrTruncated)
	}
	d.read++
	return control{high: high, literal: flag, low: low}, nil
}

func (d *depacker) readByte() (byte, error) {
	b, err := d.br.Read8(8)
	if err != nil {
		return 0, fmt.Errorf("%w at output %d: %v", ErrTruncated, d.pos, err)
	}
	d.read++
	return b, nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
