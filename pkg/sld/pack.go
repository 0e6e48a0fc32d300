package sld

import (
	"bytes"
	"encoding/binary"

	"github.com/hansbonini/reevengitools/pkg/common"
)

// Encoder limits
const (
	maxDistance  = 2048
	minMatch     = 3
	maxMatch     = 3 + 0x0F + 0xFF
	maxLiteral   = 0x10 + 0xFF
	shortLiteral = 0x10
)

// Pack compresses data into a stream Depack reads back. Matches are found
// greedily over the previous 2048 bytes.
func Pack(data []byte) []byte {
	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, uint32(len(data)))
	out.Write([]byte{0, 0})

	common.LogDebug("sld: packing %d bytes", len(data))

	literalStart := 0
	pos := 0
	for pos < len(data) {
		offset, length := findBestMatch(data, pos)
		if length < minMatch {
			pos++
			continue
		}

		writeLiterals(&out, data[literalStart:pos])
		writeBackReference(&out, offset, length)
		pos += length
		literalStart = pos
	}
	writeLiterals(&out, data[literalStart:])
	out.WriteByte(EndMarker)

	common.LogDebug("sld: packed %d -> %d bytes", len(data), out.Len())
	return out.Bytes()
}

// findBestMatch finds the longest earlier occurrence of the bytes at pos
func findBestMatch(data []byte, pos int) (offset, length int) {
	limit := min(maxMatch, len(data)-pos)

	for o := 1; o <= min(pos, maxDistance); o++ {
		src := pos - o
		n := 0
		for n < limit && data[src+n] == data[pos+n] {
			n++
		}
		if n > length {
			offset, length = o, n
			if n == limit {
				break
			}
		}
	}
	return offset, length
}

func writeBackReference(out *bytes.Buffer, offset, length int) {
	v := maxDistance - offset
	c := control{high: uint8(v >> 8)}

	count := length - minMatch
	if count >= 0x0F {
		c.low = 0x0F
		out.WriteByte(c.byte())
		out.WriteByte(byte(v))
		out.WriteByte(byte(count - 0x0F))
		return
	}
	c.low = uint8(count)
	out.WriteByte(c.byte())
	out.WriteByte(byte(v))
}

func writeLiterals(out *bytes.Buffer, lit []byte) {
	for len(lit) > 0 {
		n := min(len(lit), maxLiteral)
		if n >= shortLiteral {
			out.WriteByte(control{literal: true}.byte())
			out.WriteByte(byte(n - shortLiteral))
		} else {
			out.WriteByte(control{literal: true, low: uint8(shortLiteral - n)}.byte())
		}
		out.Write(lit[:n])
		lit = lit[n:]
	}
}
