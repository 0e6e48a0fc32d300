package rofs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hansbonini/reevengitools/pkg/common"
)

// File is a member to store with Write.
type File struct {
	Name string
	Data []byte

	// Compressed members hold already packed blocks in Data and are tagged
	// with CompressionTag. Size is their expanded length.
	Compressed bool
	Size       uint32
	Blocks     uint16
}

// header returns the block count, expanded size and identifier of the
// member record.
func (f File) header() (uint16, uint32, [8]byte) {
	blocks := max(f.Blocks, 1)
	if !f.Compressed {
		return blocks, uint32(len(f.Data)), [8]byte{}
	}
	return blocks, f.Size, FoldTag(0)
}

// recordHeaderSize is the sub-header in front of every stored member.
const recordHeaderSize = 16

func align8(n int) int {
	return (n + 7) &^ 7
}

// Write assembles an archive with the given directory names, each record
// aligned to 8 bytes. Data is stored as given; compressed files must be
// packed by the caller.
func Write(w io.Writer, dir0, dir1 string, files []File) error {
	for _, name := range append([]string{dir0, dir1}, fileNames(files)...) {
		if len(name) >= maxNameLen {
			return fmt.Errorf("%w: name %q is longer than %d bytes", ErrMalformed, name, maxNameLen-1)
		}
	}

	headerLen := len(Signature) + len(dir0) + 1 + 8 + len(dir1) + 1
	dirLoc := align8(headerLen)
	dirLen := 4
	for _, f := range files {
		dirLen += 8 + len(f.Name) + 1
	}

	offsets := make([]int, len(files))
	pos := align8(dirLoc + dirLen)
	for i, f := range files {
		offsets[i] = pos
		pos = align8(pos + recordHeaderSize + len(f.Data))
	}
	// Offsets and sizes are stored as 32-bit words.
	if _, err := common.SafeIntToUint32(pos); err != nil {
		return fmt.Errorf("archive too large: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(Signature[:])
	buf.WriteString(dir0 + "\x00")
	binary.Write(&buf, binary.LittleEndian, uint32(dirLoc>>3))
	binary.Write(&buf, binary.LittleEndian, uint32(dirLen))
	buf.WriteString(dir1 + "\x00")
	padTo(&buf, dirLoc)

	binary.Write(&buf, binary.LittleEndian, uint32(len(files)))
	for i, f := range files {
		binary.Write(&buf, binary.LittleEndian, uint32(offsets[i]>>3))
		binary.Write(&buf, binary.LittleEndian, uint32(recordHeaderSize+len(f.Data)))
		buf.WriteString(f.Name + "\x00")
	}

	for i, f := range files {
		blocks, size, ident := f.header()
		padTo(&buf, offsets[i])
		binary.Write(&buf, binary.LittleEndian, uint16(recordHeaderSize))
		binary.Write(&buf, binary.LittleEndian, blocks)
		binary.Write(&buf, binary.LittleEndian, size)
		buf.Write(ident[:])
		buf.Write(f.Data)
	}
	padTo(&buf, pos)

	_, err := w.Write(buf.Bytes())
	return err
}

func fileNames(files []File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

func padTo(buf *bytes.Buffer, n int) {
	for buf.Len() < n {
		buf.WriteByte(0)
	}
}
