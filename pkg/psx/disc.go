// This file contains the raw disc image reader: ISO9660 over 2352-byte
// Mode 2 sectors, as found in PlayStation .bin dumps.
package psx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hansbonini/reevengitools/pkg/common"
)

// ErrNotISO9660 is returned when sector 16 does not hold a primary volume descriptor.
var ErrNotISO9660 = errors.New("invalid ISO9660 signature")

// maxDirDepth bounds directory recursion on corrupted images.
const maxDirDepth = 16

// DiscFile represents a file found on a disc image
type DiscFile struct {
	Name       string // File name
	Path       string // Full path within CD, "/" separated
	LBA        uint32 // Logical Block Address
	MSF        string // Minutes:Seconds:Frames format
	Size       uint32 // File size in bytes
	IsDir      bool   // Whether this is a directory
	ExtentSize uint32 // Size in sectors
}

// Disc reads files from a raw disc image
type Disc struct {
	r             io.ReadSeeker
	closer        io.Closer
	totalSectors  int64
	currentSector int64
	currentOffset int
	sectorBuffer  []byte
	files         []DiscFile
}

// OpenDisc opens a raw disc image file and indexes its file system
func OpenDisc(filename string) (*Disc, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	disc, err := NewDisc(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	disc.closer = file
	return disc, nil
}

// NewDisc indexes the file system of a raw disc image read from r
func NewDisc(r io.ReadSeeker) (*Disc, error) {
	size, err := common.StreamSize(r)
	if err != nil {
		return nil, fmt.Errorf("failed to get image size: %w", err)
	}

	d := &Disc{
		r:             r,
		totalSectors:  size / CD_SECTOR_SIZE,
		currentSector: -1,
		sectorBuffer:  make([]byte, CD_SECTOR_SIZE),
	}

	descriptor, err := d.ReadISODescriptor()
	if err != nil {
		return nil, err
	}

	root := descriptor.RootDirRecord[:]
	rootLBA := recordLBA(root)
	rootSize := recordSize(root)
	if err := d.walk(rootLBA, rootSize, "", 0); err != nil {
		return nil, err
	}

	return d, nil
}

// Close releases the image file when the disc owns it
func (d *Disc) Close() error {
	if d.closer != nil {
		err := d.closer.Close()
		d.closer = nil
		return err
	}
	return nil
}

// Files returns every regular file on the disc in directory order
func (d *Disc) Files() []DiscFile {
	return d.files
}

// Lookup finds a file by path, ignoring case
func (d *Disc) Lookup(name string) (DiscFile, bool) {
	name = strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/")
	for _, f := range d.files {
		if strings.EqualFold(f.Path, name) {
			return f, true
		}
	}
	return DiscFile{}, false
}

// SeekToSector seeks to a specific sector and loads it into the sector buffer
func (d *Disc) SeekToSector(lba int64) error {
	if lba >= d.totalSectors || lba < 0 {
		return fmt.Errorf("LBA %d out of bounds (total: %d)", lba, d.totalSectors)
	}

	if _, err := d.r.Seek(lba*CD_SECTOR_SIZE, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.ReadFull(d.r, d.sectorBuffer); err != nil {
		return err
	}

	d.currentSector = lba
	d.currentOffset = 0
	return nil
}

// ReadBytes reads user data from the current position, crossing sectors as needed
func (d *Disc) ReadBytes(buffer []byte) (int, error) {
	bytesRead := 0

	for bytesRead < len(buffer) {
		if d.currentOffset >= CD_DATA_SIZE {
			if err := d.SeekToSector(d.currentSector + 1); err != nil {
				return bytesRead, err
			}
		}

		available := CD_DATA_SIZE - d.currentOffset
		toCopy := min(len(buffer)-bytesRead, available)

		start := CD_PAYLOAD_OFFSET + d.currentOffset
		copy(buffer[bytesRead:], d.sectorBuffer[start:start+toCopy])
		bytesRead += toCopy
		d.currentOffset += toCopy
	}

	return bytesRead, nil
}

// ReadISODescriptor reads the ISO9660 primary volume descriptor from sector 16
func (d *Disc) ReadISODescriptor() (*ISODescriptor, error) {
	if err := d.SeekToSector(ISO_PVD_SECTOR); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotISO9660, err)
	}

	data := make([]byte, CD_DATA_SIZE)
	if _, err := d.ReadBytes(data); err != nil {
		return nil, err
	}

	// 0x01 + "CD001" + 0x01
	if data[0] != 0x01 || string(data[1:6]) != "CD001" || data[6] != 0x01 {
		return nil, ErrNotISO9660
	}

	descriptor := &ISODescriptor{}
	descriptor.Type = data[0]
	copy(descriptor.ID[:], data[1:6])
	descriptor.Version = data[6]
	copy(descriptor.SystemID[:], data[8:40])
	copy(descriptor.VolumeID[:], data[40:72])
	descriptor.VolumeSpaceSizeLSB = binary.LittleEndian.Uint32(data[80:84])
	descriptor.LogicalBlockSize = binary.LittleEndian.Uint16(data[128:130])
	copy(descriptor.RootDirRecord[:], data[156:190])

	return descriptor, nil
}

// walk indexes a directory and its subdirectories
func (d *Disc) walk(lba, size uint32, prefix string, depth int) error {
	if depth > maxDirDepth {
		return fmt.Errorf("directory tree deeper than %d levels at %q", maxDirDepth, prefix)
	}

	common.LogDebug(common.DebugDiscDirectory, "/"+prefix, lba, size)

	entries, err := d.ParseDirectoryEntries(int64(lba), size)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		entry.Path = path.Join(prefix, entry.Name)
		if entry.IsDir {
			if err := d.walk(entry.LBA, entry.Size, entry.Path, depth+1); err != nil {
				return err
			}
			continue
		}
		d.files = append(d.files, entry)
	}
	return nil
}

// ParseDirectoryEntries parses the records of one directory extent, skipping "." and ".."
func (d *Disc) ParseDirectoryEntries(lba int64, sizeInBytes uint32) ([]DiscFile, error) {
	var entries []DiscFile
	sizeInSectors := sectorsFor(sizeInBytes)

	for sector := uint32(0); sector < sizeInSectors; sector++ {
		if err := d.SeekToSector(lba + int64(sector)); err != nil {
			return nil, fmt.Errorf("failed to seek to sector %d: %w", lba+int64(sector), err)
		}

		for d.currentOffset < CD_DATA_SIZE {
			entry, entrySize, err := d.readDirectoryEntry()
			if err != nil {
				// End of records in this sector
				break
			}
			d.currentOffset += entrySize

			if entry.Name == "" {
				continue
			}
			if d.isValidEntry(entry) {
				entries = append(entries, entry)
			} else {
				common.LogDebug(common.DebugDiscEntrySkip, entry.Name, entry.LBA, entry.Size)
			}
		}
	}

	return entries, nil
}

// readDirectoryEntry reads the record at the current sector offset
func (d *Disc) readDirectoryEntry() (DiscFile, int, error) {
	start := CD_PAYLOAD_OFFSET + d.currentOffset
	entryLength := int(d.sectorBuffer[start])

	if entryLength == 0 {
		return DiscFile{}, 0, fmt.Errorf("end of directory entries")
	}
	if entryLength < ISO_DIR_RECORD_MIN {
		return DiscFile{}, 0, fmt.Errorf("entry too short")
	}
	if d.currentOffset+entryLength > CD_DATA_SIZE {
		return DiscFile{}, 0, fmt.Errorf("entry exceeds sector bounds")
	}

	entry, err := parseEntryData(d.sectorBuffer[start : start+entryLength])
	if err != nil {
		return DiscFile{}, 0, err
	}
	return entry, entryLength, nil
}

// parseEntryData decodes one ISO9660 directory record; "." and ".." yield an empty name
func parseEntryData(data []byte) (DiscFile, error) {
	length := int(data[0])
	flags := data[25]
	filenameLength := int(data[32])

	if ISO_DIR_RECORD_MIN+filenameLength > length {
		return DiscFile{}, fmt.Errorf("filename exceeds entry bounds")
	}

	filename := string(data[ISO_DIR_RECORD_MIN : ISO_DIR_RECORD_MIN+filenameLength])
	if isSelfOrParent(filename) {
		filename = ""
	}

	entry := DiscFile{
		Name:  trimVersion(filename),
		LBA:   recordLBA(data),
		Size:  recordSize(data),
		IsDir: flags&0x02 != 0,
	}
	entry.ExtentSize = sectorsFor(entry.Size)
	entry.MSF = lbaToMSF(entry.LBA)

	return entry, nil
}

// isValidEntry rejects records pointing outside the image or with garbage names
func (d *Disc) isValidEntry(entry DiscFile) bool {
	if entry.LBA == 0 || int64(entry.LBA) >= d.totalSectors {
		return false
	}

	// Max 700MB for CD
	if entry.Size > 700*1024*1024 {
		return false
	}

	return validName(entry.Name)
}

// ReadFile returns the contents of a file
func (d *Disc) ReadFile(f DiscFile) ([]byte, error) {
	if int64(f.LBA)+int64(f.ExtentSize) > d.totalSectors {
		return nil, fmt.Errorf("file %s extends past end of image (LBA %d, %d sectors)", f.Path, f.LBA, f.ExtentSize)
	}

	data := make([]byte, f.Size)
	if f.Size == 0 {
		return data, nil
	}

	if err := d.SeekToSector(int64(f.LBA)); err != nil {
		return nil, fmt.Errorf("failed to seek to LBA %d: %w", f.LBA, err)
	}
	if _, err := d.ReadBytes(data); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	return data, nil
}

// ExtractFile writes a single file below outputDir, keeping its disc path
func (d *Disc) ExtractFile(f DiscFile, outputDir string) error {
	data, err := d.ReadFile(f)
	if err != nil {
		return err
	}

	outputPath := filepath.Join(outputDir, filepath.FromSlash(f.Path))
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to create file %s: %w", outputPath, err)
	}
	return nil
}
