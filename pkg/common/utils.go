package common

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// ReadUint16LE reads a uint16 in little-endian format
func ReadUint16LE(reader io.Reader) (uint16, error) {
	var value uint16
	err := binary.Read(reader, binary.LittleEndian, &value)
	return value, err
}

// ReadUint32LE reads a uint32 in little-endian format
func ReadUint32LE(reader io.Reader) (uint32, error) {
	var value uint32
	err := binary.Read(reader, binary.LittleEndian, &value)
	return value, err
}

// ReadBytes reads a specified number of bytes
func ReadBytes(reader io.Reader, count int) ([]byte, error) {
	buffer := make([]byte, count)
	n, err := io.ReadFull(reader, buffer)
	if err != nil {
		return nil, err
	}
	if n != count {
		return nil, fmt.Errorf("expected to read %d bytes, got %d", count, n)
	}
	return buffer, nil
}

// SkipBytes skips a specified number of bytes in the reader
func SkipBytes(reader io.Reader, count int) error {
	_, err := io.CopyN(io.Discard, reader, int64(count))
	return err
}

// ReadCString reads a NUL-terminated string of at most maxLen bytes.
// Reading stops at the terminator, which is consumed, or after maxLen
// bytes, whichever comes first.
func ReadCString(reader io.Reader, maxLen int) (string, error) {
	var buf [1]byte
	name := make([]byte, 0, maxLen)
	for len(name) < maxLen {
		if _, err := io.ReadFull(reader, buf[:]); err != nil {
			return "", err
		}
		if buf[0] == 0 {
			break
		}
		name = append(name, buf[0])
	}
	return string(name), nil
}

// Uint16At returns the little-endian uint16 at off, and false when the
// buffer is too short.
func Uint16At(data []byte, off int) (uint16, bool) {
	if off < 0 || off+2 > len(data) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(data[off:]), true
}

// Uint32At returns the little-endian uint32 at off, and false when the
// buffer is too short.
func Uint32At(data []byte, off int) (uint32, bool) {
	if off < 0 || off+4 > len(data) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[off:]), true
}

// StreamSize reports the total size of a seekable stream and restores
// the current position.
func StreamSize(s io.Seeker) (int64, error) {
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	size, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := s.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}

// MemoryStream is an in-memory io.ReadSeekCloser.
type MemoryStream struct {
	*bytes.Reader
}

// NewMemoryStream wraps data in a seekable stream whose Close is a no-op.
func NewMemoryStream(data []byte) *MemoryStream {
	return &MemoryStream{Reader: bytes.NewReader(data)}
}

// Close implements io.Closer.
func (m *MemoryStream) Close() error {
	return nil
}
