// Package psx provides PlayStation-specific structures and functionality.
// This file contains CD-ROM related structures for PlayStation disc images.
package psx

// Sector size constants for PlayStation CD-ROM
const (
	CD_SECTOR_SIZE     = 2352 // Full CD sector size
	CD_DATA_SIZE       = 2048 // Data portion of Mode 2 Form 1 sector
	CD_SYNC_SIZE       = 12   // Sync pattern size
	CD_HEADER_SIZE     = 4    // Header size (3 address bytes + 1 mode byte)
	CD_SUBHEADER_SIZE  = 8    // XA subheader size (4 bytes, repeated)
	CD_PAYLOAD_OFFSET  = CD_SYNC_SIZE + CD_HEADER_SIZE + CD_SUBHEADER_SIZE
	CD_PAYLOAD_END     = CD_PAYLOAD_OFFSET + CD_DATA_SIZE
	CD_PREGAP_SECTORS  = 150 // Lead-in frames added to every MSF address
	ISO_PVD_SECTOR     = 16  // Primary Volume Descriptor location
	ISO_DIR_RECORD_MIN = 33  // Fixed part of a directory record
)

// XA_SUBMODE_VIDEO marks a video sector in the XA subheader submode byte.
const XA_SUBMODE_VIDEO = 0x02

// STR_MAGIC is the little-endian word that starts every MDEC video sector
// payload (bytes 60 01 01 80).
const STR_MAGIC uint32 = 0x80010160

// CDSync is the 12-byte sync pattern that opens every raw sector.
var CDSync = [CD_SYNC_SIZE]byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}

// ISO9660 descriptor structure
type ISODescriptor struct {
	Type               byte     // Volume descriptor type
	ID                 [5]byte  // Standard identifier "CD001"
	Version            byte     // Volume descriptor version
	SystemID           [32]byte // System identifier
	VolumeID           [32]byte // Volume identifier
	VolumeSpaceSizeLSB uint32   // Volume space size - little endian
	LogicalBlockSize   uint16   // Logical block size - little endian
	RootDirRecord      [34]byte // Directory entry for root directory
}
