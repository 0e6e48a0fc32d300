// This file contains the PlayStation 15-bit colour format used by TIM
// colour maps and direct-colour images.
package psx

import "image/color"

// PSXColor is a packed 15-bit BGR colour with the semi-transparency (STP)
// flag in bit 15. The all-zero value is fully transparent.
type PSXColor uint16

// ToRGBA converts the PSX colour to RGBA, scaling each 5-bit channel by 8.
func (c PSXColor) ToRGBA() color.RGBA {
	if c == 0 {
		return color.RGBA{0, 0, 0, 0}
	}

	r := uint8(c&0x1F) << 3
	g := uint8((c>>5)&0x1F) << 3
	b := uint8((c>>10)&0x1F) << 3

	return color.RGBA{r, g, b, 255}
}

// RGBA implements color.Color.
func (c PSXColor) RGBA() (r, g, b, a uint32) {
	return c.ToRGBA().RGBA()
}

// PSXColorFromRGBA packs an RGBA value. Fully transparent input maps to the
// transparent colour; opaque black keeps the STP bit so it stays visible.
func PSXColorFromRGBA(r, g, b, a uint8) PSXColor {
	if a == 0 {
		return 0
	}

	c := PSXColor(r>>3) | PSXColor(g>>3)<<5 | PSXColor(b>>3)<<10
	if c == 0 {
		c = 0x8000
	}
	return c
}

