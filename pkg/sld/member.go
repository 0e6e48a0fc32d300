package sld

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hansbonini/reevengitools/pkg/common"
	"github.com/hansbonini/reevengitools/pkg/rofs"
)

// BlockSize is the largest input PackMember compresses into one stream.
const BlockSize = 0x8000

// DepackMember expands a compressed archive member. The stored data holds
// entry.NumBlocks streams back to back, each closed by EndMarker; a count
// of zero is read as one block. Walking stops early once the expanded size
// of the entry is reached. It is the rofs.Depacker used by default.
func DepackMember(entry rofs.Entry, r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	blocks := max(int(entry.NumBlocks), 1)
	out := make([]byte, 0, min(entry.UncompressedSize, MaxDepackSize))
	off := 0
	for i := 0; i < blocks && len(out) < int(entry.UncompressedSize); i++ {
		if off >= len(data) {
			return nil, fmt.Errorf("%w: block %d of %d missing", ErrTruncated, i, blocks)
		}
		d, err := depack(bytes.NewReader(data[off:]))
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, d.dst...)

		// A stream that filled its destination leaves the marker unread.
		off += headerSize + d.read
		if !d.ended && off < len(data) && data[off] == EndMarker {
			off++
		}
	}

	common.LogDebug(common.DebugMemberDepacked, entry.Name, blocks, len(out))
	return out, nil
}

// PackMember compresses data in BlockSize chunks into a member that
// rofs.Write stores under the compression tag.
func PackMember(name string, data []byte) rofs.File {
	var buf bytes.Buffer
	blocks := 0
	for off := 0; off < len(data) || blocks == 0; off += BlockSize {
		buf.Write(Pack(data[off:min(off+BlockSize, len(data))]))
		blocks++
	}
	return rofs.File{
		Name:       name,
		Data:       buf.Bytes(),
		Compressed: true,
		Size:       uint32(len(data)),
		Blocks:     uint16(blocks),
	}
}
