package pkg

import (
	"github.com/hansbonini/reevengitools/pkg/room"
)

// ImageOptions controls how ImageProcessor writes a decoded image.
type ImageOptions struct {
	Format string // "png" or "bmp"
	Scale  int    // integer upscale factor, 1 keeps the original size
	Filter string // "nearest" or "catmullrom"
	// ColorMap selects the sub-palette of indexed images. -1 keeps the
	// surface decoded with the first colour map.
	ColorMap int
	// Metadata writes a YAML sidecar next to the image.
	Metadata bool
}

// DefaultImageOptions returns PNG output at the original size.
func DefaultImageOptions() ImageOptions {
	return ImageOptions{Format: "png", Scale: 1, Filter: "nearest", ColorMap: -1}
}

// ImageMetadata is the YAML sidecar written by ImageProcessor.
type ImageMetadata struct {
	Source    string     `yaml:"source"`
	Packed    bool       `yaml:"packed"`
	Width     int        `yaml:"width"`
	Height    int        `yaml:"height"`
	Mode      string     `yaml:"mode"`
	ImageX    uint16     `yaml:"image_x"`
	ImageY    uint16     `yaml:"image_y"`
	ClutX     uint16     `yaml:"clut_x,omitempty"`
	ClutY     uint16     `yaml:"clut_y,omitempty"`
	ColorMaps [][]string `yaml:"color_maps,omitempty,flow"`
}

// ArchiveEntryInfo is one line of an archive listing.
type ArchiveEntryInfo struct {
	Name             string `yaml:"name"`
	Offset           uint32 `yaml:"offset"`
	StoredSize       uint32 `yaml:"stored_size"`
	UncompressedSize uint32 `yaml:"size"`
	Blocks           uint16 `yaml:"blocks"`
	Compressed       bool   `yaml:"compressed"`
}

// ArchiveListing describes a ROFS container.
type ArchiveListing struct {
	Source  string             `yaml:"source"`
	Dir0    string             `yaml:"dir0"`
	Dir1    string             `yaml:"dir1"`
	Entries []ArchiveEntryInfo `yaml:"entries"`
}

// CameraDump is one camera of a room dump.
type CameraDump struct {
	Index int       `yaml:"index"`
	From  room.Vec3 `yaml:"from,flow"`
	To    room.Vec3 `yaml:"to,flow"`
}

// RoomDump is the YAML form of a room record.
type RoomDump struct {
	Source   string         `yaml:"source"`
	Format   string         `yaml:"format"`
	Size     int            `yaml:"size"`
	Cameras  []CameraDump   `yaml:"cameras"`
	Triggers []room.Trigger `yaml:"triggers"`
}

// RoomCheck is the result of checking one movement against a room.
type RoomCheck struct {
	Camera      int  `yaml:"camera"`
	SwitchTo    int  `yaml:"switch_to"`
	OutOfBounds bool `yaml:"out_of_bounds"`
}
