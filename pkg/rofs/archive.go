// Package rofs reads the ROFS containers (rofs<n>.dat) shipped with the PC
// release of the third game: a fixed signature, two directory-name fields
// and a flat file table whose entries carry an optional compression tag.
package rofs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"
	"os"
	"slices"

	"github.com/hansbonini/reevengitools/pkg/common"
)

var (
	// ErrBadSignature is returned when the stream does not start with the ROFS signature.
	ErrBadSignature = errors.New("rofs: bad signature")
	// ErrMalformed is returned for names missing their terminator within 32 bytes.
	ErrMalformed = errors.New("rofs: malformed directory")
	// ErrNotFound is returned for names absent from the archive.
	ErrNotFound = errors.New("rofs: member not found")
	// ErrCompressed is returned when a compressed member is opened without a depacker.
	ErrCompressed = errors.New("rofs: member is compressed")
	// ErrClosed is returned by member access on a closed archive.
	ErrClosed = errors.New("rofs: archive is closed")
)

// Signature opens every rofs<n>.dat file.
var Signature = [21]byte{
	3, 0, 0, 0,
	1, 0, 0, 0,
	4, 0, 0, 0,
	0, 1, 1, 0,
	0, 4, 0, 0,
	0,
}

// CompressionTag is what a compressed entry's identifier spells once every
// byte is XORed with the identifier's last byte.
const CompressionTag = "Hi_Comp"

// maxNameLen is the size of a name field, terminator included.
const maxNameLen = 32

// Entry describes one archive member. Entries are built when the archive is
// opened and never change afterwards.
type Entry struct {
	Name             string
	StoredOffset     uint32 // start of the member record in the container
	Offset           uint32 // start of the member data (StoredOffset + sub-offset)
	CompressedSize   uint32 // stored size from the directory
	UncompressedSize uint32
	NumBlocks        uint16
	Compressed       bool
	BlockOffset      uint32 // first byte after the 8-byte identifier
}

// Depacker expands a compressed member. r yields the stored block data,
// starting at the entry's BlockOffset.
type Depacker func(entry Entry, r io.Reader) ([]byte, error)

// Option configures an Archive.
type Option func(*Archive)

// WithDepacker makes OpenMember decompress compressed entries with d.
func WithDepacker(d Depacker) Option {
	return func(a *Archive) {
		a.depacker = d
	}
}

// Archive is an opened ROFS container. It owns its backing stream.
type Archive struct {
	r        io.ReadSeeker
	entries  map[string]Entry
	depacker Depacker

	Dir0 string
	Dir1 string
}

// New creates a closed archive.
func New(opts ...Option) *Archive {
	a := &Archive{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Open creates an archive over r. The archive takes ownership of r and
// closes it on failure or on Close when it implements io.Closer.
func Open(r io.ReadSeeker, opts ...Option) (*Archive, error) {
	a := New(opts...)
	if err := a.Open(r); err != nil {
		return nil, err
	}
	return a, nil
}

// OpenFile opens a container on disk.
func OpenFile(filename string, opts ...Option) (*Archive, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", common.ErrFailedToOpenArchive, err)
	}
	return Open(file, opts...)
}

// Open validates the signature of r and reads its directory. Any previous
// state is released first. On failure the archive stays closed.
func (a *Archive) Open(r io.ReadSeeker) error {
	a.Close()

	a.r = r
	if err := a.readHeader(); err != nil {
		a.Close()
		return err
	}
	return nil
}

// Close releases the backing stream and clears the entry table. Closing a
// closed archive is a no-op.
func (a *Archive) Close() error {
	var err error
	if c, ok := a.r.(io.Closer); ok {
		err = c.Close()
	}
	a.r = nil
	a.entries = nil
	a.Dir0, a.Dir1 = "", ""
	return err
}

// IsOpen reports whether the archive holds a directory.
func (a *Archive) IsOpen() bool {
	return a.r != nil
}

// HasFile reports whether name is a member, matching exactly.
func (a *Archive) HasFile(name string) bool {
	_, ok := a.entries[name]
	return ok
}

// Members yields every member name. The sequence can be ranged over any
// number of times.
func (a *Archive) Members() iter.Seq[string] {
	return func(yield func(string) bool) {
		for name := range a.entries {
			if !yield(name) {
				return
			}
		}
	}
}

// ListMembers returns the member names in sorted order.
func (a *Archive) ListMembers() []string {
	return slices.Sorted(maps.Keys(a.entries))
}

// Len returns the number of members.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Entry returns the directory entry for name.
func (a *Archive) Entry(name string) (Entry, bool) {
	e, ok := a.entries[name]
	return e, ok
}

// OpenMember returns a stream over the member's data. Compressed members are
// expanded through the configured depacker; without one ErrCompressed is
// returned.
func (a *Archive) OpenMember(name string) (io.ReadSeekCloser, error) {
	entry, err := a.lookup(name)
	if err != nil {
		return nil, err
	}

	if !entry.Compressed {
		return a.section(int64(entry.Offset), int64(entry.UncompressedSize))
	}

	if a.depacker == nil {
		return nil, fmt.Errorf("%w: %s", ErrCompressed, name)
	}

	end := int64(entry.StoredOffset) + int64(entry.CompressedSize)
	blocks, err := a.readAt(int64(entry.BlockOffset), end-int64(entry.BlockOffset))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	data, err := a.depacker(entry, bytes.NewReader(blocks))
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", common.ErrFailedToDepack, name, err)
	}
	if len(data) != int(entry.UncompressedSize) {
		return nil, fmt.Errorf("%s %s: got %d bytes, want %d",
			common.ErrFailedToDepack, name, len(data), entry.UncompressedSize)
	}
	return common.NewMemoryStream(data), nil
}

// OpenRaw returns a stream over the member's stored bytes, header included,
// without decompressing.
func (a *Archive) OpenRaw(name string) (io.ReadSeekCloser, error) {
	entry, err := a.lookup(name)
	if err != nil {
		return nil, err
	}
	return a.section(int64(entry.StoredOffset), int64(entry.CompressedSize))
}

func (a *Archive) lookup(name string) (Entry, error) {
	if a.r == nil {
		return Entry{}, ErrClosed
	}
	entry, ok := a.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return entry, nil
}

// section returns a member stream; backing streams with random access are
// read lazily, others are copied out.
func (a *Archive) section(off, n int64) (io.ReadSeekCloser, error) {
	if ra, ok := a.r.(io.ReaderAt); ok {
		return sectionStream{io.NewSectionReader(ra, off, n)}, nil
	}

	data, err := a.readAt(off, n)
	if err != nil {
		return nil, err
	}
	return common.NewMemoryStream(data), nil
}

func (a *Archive) readAt(off, n int64) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative member length %d", n)
	}
	if _, err := a.r.Seek(off, io.SeekStart); err != nil {
		return nil, common.FormatError(common.ErrFailedToSeek, err)
	}
	return common.ReadBytes(a.r, int(n))
}

type sectionStream struct {
	*io.SectionReader
}

func (sectionStream) Close() error { return nil }

// readHeader checks the signature, reads the two directory names and the
// directory location, then enumerates the entries.
func (a *Archive) readHeader() error {
	var sig [len(Signature)]byte
	if _, err := io.ReadFull(a.r, sig[:]); err != nil {
		return fmt.Errorf("%s: %w", common.ErrFailedToOpenArchive, err)
	}
	if sig != Signature {
		return ErrBadSignature
	}

	dir0, err := readName(a.r)
	if err != nil {
		return err
	}
	dirLocation, err := common.ReadUint32LE(a.r)
	if err != nil {
		return fmt.Errorf("%s: %w", common.ErrFailedToReadDirectory, err)
	}
	// Directory length is not checked against the entries.
	dirLength, err := common.ReadUint32LE(a.r)
	if err != nil {
		return fmt.Errorf("%s: %w", common.ErrFailedToReadDirectory, err)
	}
	dir1, err := readName(a.r)
	if err != nil {
		return err
	}

	a.Dir0, a.Dir1 = dir0, dir1
	location := int64(dirLocation) << 3
	common.LogDebug(common.DebugArchiveHeader, dir0, dir1, location, dirLength)

	if _, err := a.r.Seek(location, io.SeekStart); err != nil {
		return common.FormatError(common.ErrFailedToSeek, err)
	}
	return a.enumerateFiles(dir0 + "/" + dir1 + "/")
}

func (a *Archive) enumerateFiles(prefix string) error {
	count, err := common.ReadUint32LE(a.r)
	if err != nil {
		return fmt.Errorf("%s: %w", common.ErrFailedToReadDirectory, err)
	}

	a.entries = make(map[string]Entry, min(count, 4096))
	for i := uint32(0); i < count; i++ {
		offset, err := common.ReadUint32LE(a.r)
		if err != nil {
			return fmt.Errorf("%s: entry %d: %w", common.ErrFailedToReadDirectory, i, err)
		}
		size, err := common.ReadUint32LE(a.r)
		if err != nil {
			return fmt.Errorf("%s: entry %d: %w", common.ErrFailedToReadDirectory, i, err)
		}
		fileName, err := readName(a.r)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}

		entry := Entry{
			Name:             prefix + fileName,
			StoredOffset:     offset << 3,
			Offset:           offset << 3,
			CompressedSize:   size,
			UncompressedSize: size,
		}

		// The probe must leave the directory cursor where it was.
		pos, err := a.r.Seek(0, io.SeekCurrent)
		if err != nil {
			return common.FormatError(common.ErrFailedToSeek, err)
		}
		if err := a.readFileHeader(&entry); err != nil {
			return fmt.Errorf("%s %s: %w", common.ErrFailedToReadEntryHeader, entry.Name, err)
		}
		if _, err := a.r.Seek(pos, io.SeekStart); err != nil {
			return common.FormatError(common.ErrFailedToSeek, err)
		}

		common.LogDebug(common.DebugArchiveEntry, i, entry.Name, entry.Offset,
			entry.UncompressedSize, entry.NumBlocks, entry.Compressed)
		a.entries[entry.Name] = entry
	}
	return nil
}

// readFileHeader probes the member record at entry.StoredOffset.
func (a *Archive) readFileHeader(entry *Entry) error {
	if _, err := a.r.Seek(int64(entry.StoredOffset), io.SeekStart); err != nil {
		return err
	}

	subOffset, err := common.ReadUint16LE(a.r)
	if err != nil {
		return err
	}
	numBlocks, err := common.ReadUint16LE(a.r)
	if err != nil {
		return err
	}
	uncompressedSize, err := common.ReadUint32LE(a.r)
	if err != nil {
		return err
	}
	var ident [8]byte
	if _, err := io.ReadFull(a.r, ident[:]); err != nil {
		return err
	}

	entry.Offset += uint32(subOffset)
	entry.NumBlocks = numBlocks
	entry.UncompressedSize = uncompressedSize
	entry.BlockOffset = entry.StoredOffset + 16
	entry.Compressed = IsCompressionTag(ident)
	return nil
}

// IsCompressionTag reports whether ident, XORed byte-wise with its last
// byte, spells CompressionTag.
func IsCompressionTag(ident [8]byte) bool {
	key := ident[7]
	for i := 0; i < len(CompressionTag); i++ {
		if ident[i]^key != CompressionTag[i] {
			return false
		}
	}
	return true
}

// FoldTag returns the identifier a compressed member carries for key.
func FoldTag(key byte) [8]byte {
	var ident [8]byte
	for i := 0; i < len(CompressionTag); i++ {
		ident[i] = CompressionTag[i] ^ key
	}
	ident[7] = key
	return ident
}

// readName reads a NUL-terminated name field.
func readName(r io.Reader) (string, error) {
	name, err := common.ReadCString(r, maxNameLen)
	if err != nil {
		return "", fmt.Errorf("%s: %w", common.ErrFailedToReadDirectory, err)
	}
	if len(name) == maxNameLen {
		return "", fmt.Errorf("%w: name %q is not terminated", ErrMalformed, name)
	}
	return name, nil
}
