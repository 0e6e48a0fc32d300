// Package game holds the per-title glue: file paths, version detection,
// the room session and the camera controller driven by room geometry.
package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hansbonini/reevengitools/pkg/room"
)

// Title identifies a game.
type Title int

const (
	RE1 Title = iota
	RE2Leon
	RE2Claire
	RE3
)

var titleNames = map[Title]string{
	RE1:       "re1",
	RE2Leon:   "re2-leon",
	RE2Claire: "re2-claire",
	RE3:       "re3",
}

// ErrUnknownTitle is returned by ParseTitle.
var ErrUnknownTitle = errors.New("unknown game title")

// ErrUnknownPlatform is returned by ParsePlatform.
var ErrUnknownPlatform = errors.New("unknown platform")

func (t Title) String() string {
	if name, ok := titleNames[t]; ok {
		return name
	}
	return fmt.Sprintf("title(%d)", int(t))
}

// ParseTitle accepts re1, re2-leon, re2-claire and re3.
func ParseTitle(s string) (Title, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range titleNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTitle, s)
}

// RoomFormat is the room record layout the title ships.
func (t Title) RoomFormat() room.Format {
	if t == RE1 {
		return room.FormatA
	}
	return room.FormatB
}

// Character is the playable character index used in file names.
func (t Title) Character() int {
	if t == RE2Claire {
		return 1
	}
	return 0
}

// InitialRoom is the room a new session starts in.
func (t Title) InitialRoom() int {
	switch t {
	case RE1:
		return 6
	case RE3:
		return 13
	}
	return 0
}

// Platform is the release a data set comes from.
type Platform int

const (
	PC Platform = iota
	PSX
)

func (p Platform) String() string {
	if p == PSX {
		return "psx"
	}
	return "pc"
}

// ParsePlatform accepts pc and psx.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pc", "windows":
		return PC, nil
	case "psx", "ps1":
		return PSX, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
}
