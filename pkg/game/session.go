package game

import (
	"fmt"
	"io"
	"path"

	"github.com/hansbonini/reevengitools/pkg/common"
	"github.com/hansbonini/reevengitools/pkg/registry"
	"github.com/hansbonini/reevengitools/pkg/room"
)

// Source is an extra location mounted next to the game directory.
type Source struct {
	Path     string
	Priority int
}

// Options configures a session.
type Options struct {
	Title    Title
	Platform Platform
	// Root is the game directory, mounted with priority 0.
	Root string
	// Country overrides detection when set.
	Country string
	Demo    bool
	Sources []Source
}

// Session is one loaded data set and the current place in it.
type Session struct {
	Paths    Paths
	Registry *registry.Registry
	Clock    *Clock

	loc    Location
	room   room.Room
	camera *CameraController
}

// NewSession mounts the data set described by opts and detects its
// version. The session owns the registry it builds.
func NewSession(opts Options) (*Session, error) {
	reg := registry.New()
	s := &Session{
		Paths:    Paths{Title: opts.Title, Platform: opts.Platform, Country: opts.Country, Demo: opts.Demo},
		Registry: reg,
		Clock:    NewClock(),
		loc:      Location{Stage: 1, Room: opts.Title.InitialRoom()},
	}

	if err := s.mount(opts); err != nil {
		reg.Close()
		return nil, err
	}
	s.detect(opts)

	common.LogInfo(common.InfoSessionReady, opts.Title, opts.Platform, len(reg.List()))
	return s, nil
}

func (s *Session) mount(opts Options) error {
	if opts.Root != "" {
		dir, err := registry.OpenDir(opts.Root)
		if err != nil {
			return err
		}
		if err := s.Registry.Add(opts.Root, dir, 0); err != nil {
			dir.Close()
			return err
		}
	}

	for _, extra := range opts.Sources {
		src, err := registry.OpenPath(extra.Path)
		if err != nil {
			common.LogWarn(common.WarnSourceUnreadable, extra.Path, err)
			continue
		}
		if err := s.Registry.Add(extra.Path, src, extra.Priority); err != nil {
			src.Close()
			return err
		}
		common.LogInfo(common.InfoSourceMounted, extra.Path, len(src.List()))
	}

	if opts.Title == RE3 && opts.Platform == PC && opts.Root != "" {
		demo, err := MountRE3Archives(s.Registry, opts.Root)
		if err != nil {
			return err
		}
		s.Paths.Demo = s.Paths.Demo || demo
	}
	return nil
}

func (s *Session) detect(opts Options) {
	if opts.Country != "" {
		return
	}
	switch {
	case opts.Title == RE1:
		s.Paths.Country = DetectRE1Country(s.Registry)
	case opts.Title == RE3 && opts.Platform == PC:
		s.Paths.Country = DetectRE3Country(s.Registry)
	}
}

// Close releases every mounted source.
func (s *Session) Close() error {
	return s.Registry.Close()
}

// Location returns the current stage, room and camera.
func (s *Session) Location() Location {
	if s.camera != nil {
		s.loc.Camera = s.camera.Camera()
	}
	return s.loc
}

// SetLocation moves to loc. The loaded room is dropped when the stage or
// room changes.
func (s *Session) SetLocation(loc Location) {
	if loc.Stage != s.loc.Stage || loc.Room != s.loc.Room {
		s.room = nil
		s.camera = nil
	}
	s.loc = loc
	if s.camera != nil {
		s.camera.SetCamera(loc.Camera)
	}
}

// LoadRoom reads the room record of the current location.
func (s *Session) LoadRoom() (room.Room, error) {
	name, err := s.Paths.RoomFile(s.loc)
	if err != nil {
		return nil, err
	}
	if path.Ext(name) == ".ard" {
		return nil, fmt.Errorf("%w: %s is a room archive", ErrNoPath, name)
	}

	f, err := s.Registry.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", common.ErrFailedToLoadRoom, name, err)
	}
	defer f.Close()

	r, err := room.Load(s.Paths.Title.RoomFormat(), f)
	if err != nil {
		return nil, err
	}
	s.room = r
	s.camera = NewCameraController(r, s.loc.Camera)
	return r, nil
}

// Room returns the loaded room, or nil.
func (s *Session) Room() room.Room {
	return s.room
}

// Camera returns the camera controller of the loaded room, or nil.
func (s *Session) Camera() *CameraController {
	return s.camera
}

// Move checks a movement against the loaded room.
func (s *Session) Move(from, to room.Point) Step {
	if s.camera == nil {
		return Step{Camera: s.loc.Camera}
	}
	step := s.camera.Move(from, to)
	s.loc.Camera = step.Camera
	return step
}

// Background returns the background data of the current camera. PSX frames
// are cut out of the stage file and zero-padded to the frame size.
func (s *Session) Background() ([]byte, error) {
	name, offset, size, err := s.Paths.Background(s.loc)
	if err != nil {
		return nil, err
	}

	f, err := s.Registry.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if size == 0 {
		return io.ReadAll(f)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, common.FormatError(common.ErrFailedToSeek, err)
	}
	frame := make([]byte, size)
	if _, err := io.ReadFull(f, frame); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read %s frame %d: %w", name, s.loc.Camera, err)
	}
	return frame, nil
}
