// This file contains the CD-XA sector emulation stream used to feed movie
// files stored as plain 2048-byte data to a raw-sector video decoder.
package psx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hansbonini/reevengitools/pkg/common"
)

// ErrNegativeSeek is returned when a seek resolves before the start of the stream.
var ErrNegativeSeek = errors.New("cdstream: negative position")

// CDStream presents a stream of 2048-byte data blocks as raw 2352-byte
// Mode 2 sectors. Each sector is synthesized from the logical position:
// sync pattern, BCD header, XA subheader and the real payload. Payloads that
// do not start with the video sector magic are zero-filled.
type CDStream struct {
	src     io.ReadSeeker
	srcSize int64
	size    int64
	pos     int64

	sector int64
	buf    [CD_SECTOR_SIZE]byte
}

// NewCDStream wraps src. The logical size is the number of whole 2048-byte
// blocks in src times the raw sector size.
func NewCDStream(src io.ReadSeeker) (*CDStream, error) {
	srcSize, err := common.StreamSize(src)
	if err != nil {
		return nil, fmt.Errorf("failed to get source size: %w", err)
	}

	return &CDStream{
		src:     src,
		srcSize: srcSize,
		size:    (srcSize / CD_DATA_SIZE) * CD_SECTOR_SIZE,
		sector:  -1,
	}, nil
}

// Size returns the logical raw-sector size of the stream.
func (s *CDStream) Size() int64 {
	return s.size
}

// Read implements io.Reader over the synthesized sectors.
func (s *CDStream) Read(p []byte) (int, error) {
	if s.pos >= s.size {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) && s.pos < s.size {
		sector := s.pos / CD_SECTOR_SIZE
		if sector != s.sector {
			if err := s.fillSector(sector); err != nil {
				return n, err
			}
		}

		within := s.pos % CD_SECTOR_SIZE
		copied := copy(p[n:], s.buf[within:])
		n += copied
		s.pos += int64(copied)
	}

	return n, nil
}

// Seek implements io.Seeker. Offsets are logical raw-sector positions; the
// underlying stream is moved to the matching real data offset.
func (s *CDStream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.pos + offset
	case io.SeekEnd:
		target = s.size + offset
	default:
		return s.pos, fmt.Errorf("cdstream: invalid whence %d", whence)
	}
	if target < 0 {
		return s.pos, ErrNegativeSeek
	}

	if _, err := s.src.Seek(RealOffset(target), io.SeekStart); err != nil {
		return s.pos, common.FormatError(common.ErrFailedToSeek, err)
	}

	s.pos = target
	return s.pos, nil
}

// Close closes the underlying stream when it supports closing.
func (s *CDStream) Close() error {
	if c, ok := s.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// RealOffset maps a logical raw-sector offset to the offset of the same byte
// in the underlying data. Positions inside the sync, header or subheader map
// to the start of that sector's payload; positions in the trailing padding
// snap to the start of the next payload.
func RealOffset(logical int64) int64 {
	sector := logical / CD_SECTOR_SIZE
	within := logical % CD_SECTOR_SIZE

	switch {
	case within < CD_PAYLOAD_OFFSET:
		return sector * CD_DATA_SIZE
	case within < CD_PAYLOAD_END:
		return sector*CD_DATA_SIZE + within - CD_PAYLOAD_OFFSET
	default:
		return (sector + 1) * CD_DATA_SIZE
	}
}

// fillSector synthesizes the raw sector with the given index into s.buf.
func (s *CDStream) fillSector(sector int64) error {
	clear(s.buf[:])

	copy(s.buf[0:CD_SYNC_SIZE], CDSync[:])
	address := lbaToBCD(uint32(sector))
	copy(s.buf[CD_SYNC_SIZE:CD_SYNC_SIZE+3], address[:])
	s.buf[CD_SYNC_SIZE+3] = 2

	payload := s.buf[CD_PAYLOAD_OFFSET:CD_PAYLOAD_END]
	if _, err := s.src.Seek(sector*CD_DATA_SIZE, io.SeekStart); err != nil {
		return common.FormatError(common.ErrFailedToSeek, err)
	}
	if _, err := io.ReadFull(s.src, payload); err != nil {
		return fmt.Errorf("failed to read sector %d payload: %w", sector, err)
	}

	submode := byte(0)
	if binary.LittleEndian.Uint32(payload) == STR_MAGIC {
		submode = XA_SUBMODE_VIDEO
	} else {
		clear(payload)
	}

	// file, channel, submode, coding; stored twice
	subheader := s.buf[CD_SYNC_SIZE+CD_HEADER_SIZE : CD_PAYLOAD_OFFSET]
	subheader[0], subheader[1], subheader[2], subheader[3] = 1, 0, submode, 0
	copy(subheader[4:], subheader[:4])

	common.LogDebug(common.DebugSectorType, sector, submode)

	s.sector = sector
	return nil
}
