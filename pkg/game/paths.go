package game

import (
	"errors"
	"fmt"
)

// RE1Countries lists the country directories in detection order. The last
// entry is the default.
var RE1Countries = []string{
	"horr/usa",
	"horr/ger",
	"horr/jpn",
	"horr/fra",
	"usa",
	"ger",
	"jpn",
	"fra",
	"",
}

// RE3 countries, named by the letter in data_<c> directories.
const (
	RE3CountryUS     = 'u'
	RE3CountryEurope = 'e'
	RE3CountryFrance = 'f'
)

// Per-camera background frame sizes in PSX .bss files.
const (
	RE1BssFrameSize = 32768
	RE3BssFrameSize = 65536
)

const (
	re1PCBackground  = "%s/stage%d/rc%d%02x%d.pak"
	re1PSXBackground = "psx%s/stage%d/room%d%02x.bss"
	re1PCRoom        = "%s/stage%d/room%d%02x0.rdt"
	re1PSXRoom       = "psx%s/stage%d/room%d%02x0.rdt"
	re2Room          = "pl%d/rdt/room%d%02x%d.rdt"
	re3PCBackground  = "data_a/bss/r%d%02x%02x.jpg"
	re3PCRoom        = "data_%c/rdt/r%d%02x.rdt"
	re3PSXBackground = "cd_data/stage%d/r%d%02x.bss"
	re3PSXRoom       = "cd_data/stage%d/r%d%02x.ard"
)

// ErrNoPath is returned when a title does not define a file for a request.
var ErrNoPath = errors.New("no file defined for this title and platform")

// Location is a stage, a room within it and a camera within the room.
type Location struct {
	Stage  int `yaml:"stage"`
	Room   int `yaml:"room"`
	Camera int `yaml:"camera"`
}

// Paths builds registry names for one installed data set.
type Paths struct {
	Title    Title
	Platform Platform
	// Country is the RE1 country directory or the RE3 country letter.
	Country string
	Demo    bool
}

// re3Country returns the RE3 country letter, US by default.
func (p Paths) re3Country() rune {
	if len(p.Country) == 1 {
		return rune(p.Country[0])
	}
	return RE3CountryUS
}

// Background returns the file holding the background of loc and the byte
// range of its frame within it. A size of 0 means the whole file.
func (p Paths) Background(loc Location) (name string, offset, size int64, err error) {
	switch p.Title {
	case RE1:
		if p.Platform == PSX {
			name = fmt.Sprintf(re1PSXBackground, p.Country, loc.Stage, loc.Stage, loc.Room)
			return name, int64(loc.Camera) * RE1BssFrameSize, RE1BssFrameSize, nil
		}
		stage := loc.Stage
		if p.Demo && stage > 2 {
			stage = 1
		}
		// Stages 6 and 7 reuse the images of stages 1 and 2.
		if stage > 5 {
			stage -= 5
		}
		return fmt.Sprintf(re1PCBackground, p.Country, stage, stage, loc.Room, loc.Camera), 0, 0, nil
	case RE3:
		if p.Platform == PSX {
			name = fmt.Sprintf(re3PSXBackground, loc.Stage, loc.Stage, loc.Room)
			return name, int64(loc.Camera) * RE3BssFrameSize, RE3BssFrameSize, nil
		}
		return fmt.Sprintf(re3PCBackground, loc.Stage, loc.Room, loc.Camera), 0, 0, nil
	}
	return "", 0, 0, fmt.Errorf("%w: background for %s", ErrNoPath, p.Title)
}

// RoomFile returns the room record name for loc.
func (p Paths) RoomFile(loc Location) (string, error) {
	switch p.Title {
	case RE1:
		if p.Platform == PSX {
			return fmt.Sprintf(re1PSXRoom, p.Country, loc.Stage, loc.Stage, loc.Room), nil
		}
		return fmt.Sprintf(re1PCRoom, p.Country, loc.Stage, loc.Stage, loc.Room), nil
	case RE2Leon, RE2Claire:
		return fmt.Sprintf(re2Room, p.Title.Character(), loc.Stage, loc.Room, p.Title.Character()), nil
	case RE3:
		if p.Platform == PSX {
			return fmt.Sprintf(re3PSXRoom, loc.Stage, loc.Stage, loc.Room), nil
		}
		return fmt.Sprintf(re3PCRoom, p.re3Country(), loc.Stage, loc.Room), nil
	}
	return "", fmt.Errorf("%w: room for %s", ErrNoPath, p.Title)
}
