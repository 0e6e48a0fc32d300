// Package room parses room records: camera positions and the camera-switch
// and boundary trigger zones laid out as quads on the floor plane.
//
// Records are kept as raw bytes. Every accessor reads the header offsets at
// call time and returns 0, false or -1 when the data is missing or short.
package room

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/hansbonini/reevengitools/pkg/common"
)

// Format selects the on-disk record layout.
type Format int

const (
	// FormatA is the first generation layout.
	FormatA Format = iota
	// FormatB is the layout shared by the second and third generations.
	FormatB
)

func (f Format) String() string {
	switch f {
	case FormatA:
		return "A"
	case FormatB:
		return "B"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ErrUnknownFormat is returned for a Format with no parser.
var ErrUnknownFormat = errors.New("room: unknown record format")

// Vec3 is a position in world coordinates.
type Vec3 struct {
	X int32 `yaml:"x"`
	Y int32 `yaml:"y"`
	Z int32 `yaml:"z"`
}

// CameraPos is where a fixed camera sits and where it looks.
type CameraPos struct {
	From Vec3 `yaml:"from"`
	To   Vec3 `yaml:"to"`
}

// Point is a position on the floor plane.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Quad is a convex trigger zone, wound so that its inside lies to the right
// of every edge.
type Quad [4]Point

// IsInside reports whether p lies strictly inside q. A cross product of zero
// or more on any edge puts the point outside, so edges and vertices are
// outside.
func IsInside(p Point, q Quad) bool {
	for i := range q {
		a, b := q[i], q[(i+1)&3]
		dx1, dy1 := b.X-a.X, b.Y-a.Y
		dx2, dy2 := p.X-a.X, p.Y-a.Y
		if dx1*dy2-dy1*dx2 >= 0 {
			return false
		}
	}
	return true
}

// Trigger is one switch or boundary record.
type Trigger struct {
	From     int  `yaml:"from"`
	To       int  `yaml:"to"`
	Boundary bool `yaml:"boundary"`
	Floor    int  `yaml:"floor,omitempty"`
	Quad     Quad `yaml:"quad,flow"`
}

// Room answers camera queries over a loaded record.
type Room interface {
	Format() Format
	// Len is the size of the raw record.
	Len() int
	NumCameras() int
	// CameraPos returns the position of camera n. The index is not checked
	// against NumCameras; false means the record is too short.
	CameraPos(n int) (CameraPos, bool)
	// CheckCamSwitch returns the camera to switch to when moving from one
	// point to another enters a switch zone of camera cur, or -1.
	CheckCamSwitch(cur int, from, to Point) int
	// CheckCamBoundary reports whether the move leaves a boundary zone of
	// camera cur.
	CheckCamBoundary(cur int, from, to Point) bool
	// Triggers yields every switch and boundary record in file order.
	Triggers() iter.Seq[Trigger]
}

// New wraps data in the parser for format. data is not copied.
func New(format Format, data []byte) (Room, error) {
	rec := record(data)
	if len(rec) == 0 {
		common.LogWarn(common.WarnEmptyRoom)
	}

	switch format {
	case FormatA:
		return &re1Room{rec}, nil
	case FormatB:
		return &re2Room{rec}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(format))
}

// Load reads the rest of r as a record of the given format.
func Load(format Format, r io.Reader) (Room, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", common.ErrFailedToLoadRoom, err)
	}
	common.LogDebug(common.DebugRoomLoaded, len(data), format)
	return New(format, data)
}

// checkSwitch and checkBoundary hold the crossing rules shared by both
// layouts.
func checkSwitch(triggers iter.Seq[Trigger], cur int, from, to Point) int {
	for t := range triggers {
		if t.Boundary || t.From != cur {
			continue
		}
		if !IsInside(from, t.Quad) && IsInside(to, t.Quad) {
			return t.To
		}
	}
	return -1
}

func checkBoundary(triggers iter.Seq[Trigger], cur int, from, to Point) bool {
	for t := range triggers {
		if !t.Boundary || t.From != cur {
			continue
		}
		if IsInside(from, t.Quad) && !IsInside(to, t.Quad) {
			return true
		}
	}
	return false
}

// record is the raw room buffer with bounds-checked little-endian reads.
type record []byte

func (r record) u8(off int) (uint8, bool) {
	if off < 0 || off >= len(r) {
		return 0, false
	}
	return r[off], true
}

func (r record) u16(off int) (uint16, bool) {
	return common.Uint16At(r, off)
}

func (r record) u32(off int) (uint32, bool) {
	return common.Uint32At(r, off)
}

func (r record) vec3(off int) (Vec3, bool) {
	if off < 0 || off+12 > len(r) {
		return Vec3{}, false
	}
	return Vec3{
		X: int32(binary.LittleEndian.Uint32(r[off:])),
		Y: int32(binary.LittleEndian.Uint32(r[off+4:])),
		Z: int32(binary.LittleEndian.Uint32(r[off+8:])),
	}, true
}

// quad reads four signed (x, y) pairs.
func (r record) quad(off int) (Quad, bool) {
	var q Quad
	if off < 0 || off+16 > len(r) {
		return q, false
	}
	for i := range q {
		q[i].X = float64(int16(binary.LittleEndian.Uint16(r[off+4*i:])))
		q[i].Y = float64(int16(binary.LittleEndian.Uint16(r[off+4*i+2:])))
	}
	return q, true
}

func (r record) cameraPos(off int) (CameraPos, bool) {
	from, ok := r.vec3(off)
	if !ok {
		return CameraPos{}, false
	}
	to, ok := r.vec3(off + 12)
	if !ok {
		return CameraPos{}, false
	}
	return CameraPos{From: from, To: to}, true
}
