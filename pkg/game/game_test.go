package game

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hansbonini/reevengitools/pkg/registry"
	"github.com/hansbonini/reevengitools/pkg/rofs"
	"github.com/hansbonini/reevengitools/pkg/room"
	"github.com/hansbonini/reevengitools/pkg/sld"
)

func writeFile(t *testing.T, p string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func writeRofs(t *testing.T, p, dir0, dir1 string, files []rofs.File) {
	t.Helper()
	var buf bytes.Buffer
	if err := rofs.Write(&buf, dir0, dir1, files); err != nil {
		t.Fatal(err)
	}
	writeFile(t, p, buf.Bytes())
}

// Format A room with two cameras: leaving square switches from camera 0 to
// camera 1 through the doorway to its right.
var (
	square  = [8]int16{0, 0, 0, 10, 10, 10, 10, 0}
	doorway = [8]int16{10, 0, 10, 10, 20, 10, 20, 0}
)

func buildRE1Room() []byte {
	const header = 148
	var buf bytes.Buffer
	h := make([]byte, header)
	h[1] = 2
	binary.LittleEndian.PutUint32(h[72:], header+2*44)
	buf.Write(h)
	for cam := int32(0); cam < 2; cam++ {
		binary.Write(&buf, binary.LittleEndian, []int32{0, 0, cam, cam, cam, 0, 0, 0, 0, 0, 0})
	}
	binary.Write(&buf, binary.LittleEndian, []uint16{9, 0})
	binary.Write(&buf, binary.LittleEndian, square)
	binary.Write(&buf, binary.LittleEndian, []uint16{1, 0})
	binary.Write(&buf, binary.LittleEndian, doorway)
	binary.Write(&buf, binary.LittleEndian, uint16(0xFFFF))
	return buf.Bytes()
}

func buildRE2Room() []byte {
	const header = 8 + 21*4
	var buf bytes.Buffer
	h := make([]byte, header)
	h[1] = 1
	binary.LittleEndian.PutUint32(h[8+7*4:], header)
	binary.LittleEndian.PutUint32(h[8+8*4:], header+32)
	buf.Write(h)
	buf.Write(make([]byte, 32))
	binary.Write(&buf, binary.LittleEndian, uint16(0xFFFF))
	return buf.Bytes()
}

func TestParseTitle(t *testing.T) {
	for _, title := range []Title{RE1, RE2Leon, RE2Claire, RE3} {
		got, err := ParseTitle(title.String())
		if err != nil || got != title {
			t.Errorf("ParseTitle(%q) = %v, %v", title.String(), got, err)
		}
	}
	if _, err := ParseTitle("re4"); !errors.Is(err, ErrUnknownTitle) {
		t.Errorf("ParseTitle(re4) error = %v", err)
	}
	if p, err := ParsePlatform("PSX"); err != nil || p != PSX {
		t.Errorf("ParsePlatform(PSX) = %v, %v", p, err)
	}
	if _, err := ParsePlatform("saturn"); !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("ParsePlatform(saturn) error = %v", err)
	}

	if RE1.RoomFormat() != room.FormatA || RE3.RoomFormat() != room.FormatB || RE2Leon.RoomFormat() != room.FormatB {
		t.Error("RoomFormat() mismatch")
	}
	if RE2Claire.Character() != 1 || RE2Leon.Character() != 0 {
		t.Error("Character() mismatch")
	}
}

func TestPaths(t *testing.T) {
	loc := Location{Stage: 1, Room: 0x0d, Camera: 2}

	tests := []struct {
		name   string
		paths  Paths
		loc    Location
		bg     string
		offset int64
		size   int64
		room   string
	}{
		{
			name:  "re1 pc",
			paths: Paths{Title: RE1, Platform: PC, Country: "horr/usa"},
			loc:   Location{Stage: 1, Room: 6, Camera: 0},
			bg:    "horr/usa/stage1/rc10600.pak",
			room:  "horr/usa/stage1/room1060.rdt",
		},
		{
			name:  "re1 pc stage 7 reuses stage 2",
			paths: Paths{Title: RE1, Platform: PC, Country: "usa"},
			loc:   Location{Stage: 7, Room: 0x10, Camera: 3},
			bg:    "usa/stage2/rc2103.pak",
			room:  "usa/stage7/room7100.rdt",
		},
		{
			name:  "re1 pc demo",
			paths: Paths{Title: RE1, Platform: PC, Demo: true},
			loc:   Location{Stage: 4, Room: 1, Camera: 1},
			bg:    "/stage1/rc1011.pak",
			room:  "/stage4/room4010.rdt",
		},
		{
			name:   "re1 psx",
			paths:  Paths{Title: RE1, Platform: PSX},
			loc:    Location{Stage: 1, Room: 6, Camera: 2},
			bg:     "psx/stage1/room106.bss",
			offset: 2 * RE1BssFrameSize,
			size:   RE1BssFrameSize,
			room:   "psx/stage1/room1060.rdt",
		},
		{
			name:  "re3 pc",
			paths: Paths{Title: RE3, Platform: PC, Country: "e"},
			loc:   loc,
			bg:    "data_a/bss/r10d02.jpg",
			room:  "data_e/rdt/r10d.rdt",
		},
		{
			name:  "re3 pc default country",
			paths: Paths{Title: RE3, Platform: PC},
			loc:   loc,
			bg:    "data_a/bss/r10d02.jpg",
			room:  "data_u/rdt/r10d.rdt",
		},
		{
			name:   "re3 psx",
			paths:  Paths{Title: RE3, Platform: PSX},
			loc:    loc,
			bg:     "cd_data/stage1/r10d.bss",
			offset: 2 * RE3BssFrameSize,
			size:   RE3BssFrameSize,
			room:   "cd_data/stage1/r10d.ard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bg, offset, size, err := tt.paths.Background(tt.loc)
			if err != nil || bg != tt.bg || offset != tt.offset || size != tt.size {
				t.Errorf("Background() = %q, %d, %d, %v, want %q, %d, %d", bg, offset, size, err, tt.bg, tt.offset, tt.size)
			}
			name, err := tt.paths.RoomFile(tt.loc)
			if err != nil || name != tt.room {
				t.Errorf("RoomFile() = %q, %v, want %q", name, err, tt.room)
			}
		})
	}

	claire := Paths{Title: RE2Claire, Platform: PC}
	if name, _ := claire.RoomFile(Location{Stage: 2, Room: 0x0a}); name != "pl1/rdt/room20a1.rdt" {
		t.Errorf("RE2 Claire RoomFile() = %q", name)
	}
	if _, _, _, err := claire.Background(loc); !errors.Is(err, ErrNoPath) {
		t.Errorf("RE2 Background() error = %v, want ErrNoPath", err)
	}
}

func mountDir(t *testing.T, root string) *registry.Registry {
	t.Helper()
	src, err := registry.OpenDir(root)
	if err != nil {
		t.Fatal(err)
	}
	reg := registry.New()
	if err := reg.Add("root", src, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestDetectRE1Country(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{"none", nil, ""},
		{"german", []string{"HORR/GER/DATA/CAPCOM.PTC"}, "horr/ger"},
		{"first wins", []string{"jpn/data/capcom.ptc", "horr/fra/data/capcom.ptc"}, "horr/fra"},
		{"dual shock", []string{"jpn/data/capcom.ptc", "SLUS_007.47"}, "usa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, f := range tt.files {
				writeFile(t, filepath.Join(root, filepath.FromSlash(f)), []byte{0})
			}
			if got := DetectRE1Country(mountDir(t, root)); got != tt.want {
				t.Errorf("DetectRE1Country() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMountRE3Archives(t *testing.T) {
	root := t.TempDir()
	writeRofs(t, filepath.Join(root, "rofs1.dat"), "data_f", "etc2",
		[]rofs.File{{Name: "died00f.tim", Data: []byte("tim")}})
	writeRofs(t, filepath.Join(root, "rofs3.dat"), "data_f", "rdt",
		[]rofs.File{{Name: "r10d.rdt", Data: buildRE2Room()}})
	writeFile(t, filepath.Join(root, "rofs4.dat"), []byte("not an archive"))

	reg := registry.New()
	defer reg.Close()
	demo, err := MountRE3Archives(reg, root)
	if err != nil {
		t.Fatalf("MountRE3Archives() failed: %v", err)
	}
	if !demo {
		t.Error("missing rofs2.dat should mark the demo")
	}
	if got := len(reg.Sources()); got != 2 {
		t.Errorf("mounted %d archives, want 2", got)
	}
	if got := DetectRE3Country(reg); got != "f" {
		t.Errorf("DetectRE3Country() = %q, want f", got)
	}

	writeRofs(t, filepath.Join(root, "rofs2.dat"), "data", "etc", nil)
	full := registry.New()
	defer full.Close()
	if demo, _ := MountRE3Archives(full, root); demo {
		t.Error("rofs2.dat present, demo = true")
	}
	if got := DetectRE3Country(registry.New()); got != "u" {
		t.Errorf("DetectRE3Country() on empty registry = %q, want u", got)
	}
}

func TestMountRE3Archives_Compressed(t *testing.T) {
	root := t.TempDir()
	want := []byte("background bytes")
	writeRofs(t, filepath.Join(root, "rofs1.dat"), "data_a", "bss",
		[]rofs.File{sld.PackMember("r10000.jpg", want)})

	reg := registry.New()
	defer reg.Close()
	if _, err := MountRE3Archives(reg, root); err != nil {
		t.Fatalf("MountRE3Archives() failed: %v", err)
	}
	if !reg.HasFile("data_a/bss/r10000.jpg") {
		t.Fatalf("HasFile() = false, List() = %v", reg.List())
	}
	got, err := reg.ReadFile("data_a/bss/r10000.jpg")
	if err != nil || !bytes.Equal(got, want) {
		t.Errorf("ReadFile() = %q, %v, want %q", got, err, want)
	}
}

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time { return f.t }

func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestClock(t *testing.T) {
	ft := &fakeTime{t: time.Unix(1000, 0)}
	c := newClock(ft.now)

	ft.advance(1 * time.Second)
	if got := c.RunningTime(); got != time.Second {
		t.Errorf("RunningTime() = %v, want 1s", got)
	}
	if got := c.GameTic(); got != 30 {
		t.Errorf("GameTic() = %d, want 30", got)
	}

	c.Pause()
	c.Pause()
	ft.advance(5 * time.Second)
	if got := c.RunningTime(); got != time.Second || !c.Paused() {
		t.Errorf("paused RunningTime() = %v, want 1s", got)
	}

	c.Unpause()
	c.Unpause()
	ft.advance(500 * time.Millisecond)
	if got := c.RunningTime(); got != 1500*time.Millisecond {
		t.Errorf("RunningTime() = %v, want 1.5s", got)
	}
	if got := c.GameTic(); got != 45 {
		t.Errorf("GameTic() = %d, want 45", got)
	}

	ft.advance(100 * time.Millisecond)
	c.Pause()
	ft.advance(time.Hour)
	if got := c.RunningTime(); got != 1600*time.Millisecond {
		t.Errorf("RunningTime() after second pause = %v, want 1.6s", got)
	}
}

func TestCameraController(t *testing.T) {
	r, err := room.New(room.FormatA, buildRE1Room())
	if err != nil {
		t.Fatal(err)
	}
	c := NewCameraController(r, 0)

	inSquare, inDoorway := room.Point{X: 5, Y: 5}, room.Point{X: 15, Y: 5}

	step := c.Move(inSquare, room.Point{X: 6, Y: 6})
	if step != (Step{Camera: 0}) {
		t.Errorf("Move() inside square = %+v", step)
	}

	step = c.Move(inSquare, inDoorway)
	if !step.Switched || !step.OutOfBounds || step.Camera != 1 || c.Camera() != 1 {
		t.Errorf("Move() into doorway = %+v", step)
	}
	pos, ok := c.Position()
	if !ok || pos.From != (room.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("Position() = %+v, %v", pos, ok)
	}

	// Camera 1 has no records.
	step = c.Move(inDoorway, inSquare)
	if step != (Step{Camera: 1}) {
		t.Errorf("Move() back = %+v", step)
	}

	c.SetCamera(5)
	if _, ok := c.Position(); ok {
		t.Error("Position() of a missing camera succeeded")
	}

	empty := NewCameraController(nil, 3)
	if step := empty.Move(inSquare, inDoorway); step != (Step{Camera: 3}) {
		t.Errorf("Move() without room = %+v", step)
	}
}

func TestSession_RE1(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "horr", "usa", "data", "capcom.ptc"), []byte{0})
	writeFile(t, filepath.Join(root, "horr", "usa", "stage1", "room1060.rdt"), buildRE1Room())
	writeFile(t, filepath.Join(root, "horr", "usa", "stage1", "rc10600.pak"), []byte("pak"))

	s, err := NewSession(Options{Title: RE1, Platform: PC, Root: root})
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	defer s.Close()

	if s.Paths.Country != "horr/usa" {
		t.Errorf("Country = %q", s.Paths.Country)
	}
	if loc := s.Location(); loc != (Location{Stage: 1, Room: 6}) {
		t.Errorf("Location() = %+v", loc)
	}

	if step := s.Move(room.Point{X: 5, Y: 5}, room.Point{X: 15, Y: 5}); step.Switched {
		t.Error("Move() without a room switched cameras")
	}

	r, err := s.LoadRoom()
	if err != nil {
		t.Fatalf("LoadRoom() failed: %v", err)
	}
	if r.NumCameras() != 2 || s.Room() != r || s.Camera() == nil {
		t.Errorf("LoadRoom() = %d cameras", r.NumCameras())
	}

	bg, err := s.Background()
	if err != nil || string(bg) != "pak" {
		t.Errorf("Background() = %q, %v", bg, err)
	}

	step := s.Move(room.Point{X: 5, Y: 5}, room.Point{X: 15, Y: 5})
	if !step.Switched || s.Location().Camera != 1 {
		t.Errorf("Move() = %+v, location %+v", step, s.Location())
	}

	s.SetLocation(Location{Stage: 1, Room: 7})
	if s.Room() != nil || s.Camera() != nil {
		t.Error("changing room kept the old room")
	}
	if _, err := s.LoadRoom(); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("LoadRoom() of a missing room error = %v", err)
	}
}

func TestSession_RE3(t *testing.T) {
	root := t.TempDir()
	writeRofs(t, filepath.Join(root, "rofs1.dat"), "data_e", "etc2",
		[]rofs.File{{Name: "died00e.tim", Data: []byte("tim")}})
	writeRofs(t, filepath.Join(root, "rofs2.dat"), "data_e", "rdt",
		[]rofs.File{{Name: "r10d.rdt", Data: buildRE2Room()}})

	s, err := NewSession(Options{Title: RE3, Platform: PC, Root: root})
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	defer s.Close()

	if s.Paths.Demo || s.Paths.Country != "e" {
		t.Errorf("Paths = %+v", s.Paths)
	}
	r, err := s.LoadRoom()
	if err != nil {
		t.Fatalf("LoadRoom() failed: %v", err)
	}
	if r.Format() != room.FormatB || r.NumCameras() != 1 {
		t.Errorf("room format %v, %d cameras", r.Format(), r.NumCameras())
	}
}

func TestSession_PSXBackground(t *testing.T) {
	root := t.TempDir()
	frames := append(bytes.Repeat([]byte{1}, RE3BssFrameSize), bytes.Repeat([]byte{2}, 100)...)
	writeFile(t, filepath.Join(root, "CD_DATA", "STAGE1", "R10D.BSS"), frames)

	s, err := NewSession(Options{Title: RE3, Platform: PSX, Root: root})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.SetLocation(Location{Stage: 1, Room: 0x0d, Camera: 1})
	frame, err := s.Background()
	if err != nil {
		t.Fatalf("Background() failed: %v", err)
	}
	if len(frame) != RE3BssFrameSize || frame[0] != 2 || frame[99] != 2 || frame[100] != 0 {
		t.Errorf("frame = %d bytes, starts % X", len(frame), frame[:2])
	}

	if _, err := s.LoadRoom(); !errors.Is(err, ErrNoPath) {
		t.Errorf("LoadRoom() of a room archive error = %v, want ErrNoPath", err)
	}
}

func TestNewSession_ExtraSources(t *testing.T) {
	root, extra := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(root, "psx", "stage1", "room1060.rdt"), []byte("base"))
	writeFile(t, filepath.Join(extra, "psx", "stage1", "room1060.rdt"), buildRE1Room())

	s, err := NewSession(Options{
		Title:    RE1,
		Platform: PSX,
		Root:     root,
		Sources: []Source{
			{Path: extra, Priority: 10},
			{Path: filepath.Join(extra, "missing.zip"), Priority: 5},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	r, err := s.LoadRoom()
	if err != nil {
		t.Fatal(err)
	}
	if r.NumCameras() != 2 {
		t.Errorf("higher priority source not used: %d cameras", r.NumCameras())
	}
}
