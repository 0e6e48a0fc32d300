package sld

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hansbonini/reevengitools/pkg/common"
	"github.com/hansbonini/reevengitools/pkg/tim"
)

// Decoder loads compressed TIM images: the stream is depacked into a buffer
// owned by the decoder, then decoded as a TIM.
type Decoder struct {
	*tim.Decoder
	buf []byte
}

// NewDecoder creates an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{Decoder: tim.NewDecoder()}
}

// Destroy releases the depacked buffer and the decoded surface.
func (d *Decoder) Destroy() {
	d.buf = nil
	d.Decoder.Destroy()
}

// LoadStream depacks r and decodes the result. On failure the decoder is
// left empty.
func (d *Decoder) LoadStream(r io.Reader) error {
	d.Destroy()

	buf, err := Depack(r)
	if err != nil {
		return fmt.Errorf("%s: %w", common.ErrFailedToDepack, err)
	}
	if err := d.Decoder.LoadStream(bytes.NewReader(buf)); err != nil {
		return err
	}
	d.buf = buf
	return nil
}

// Depacked returns the decompressed TIM bytes of the loaded image.
func (d *Decoder) Depacked() []byte {
	return d.buf
}
