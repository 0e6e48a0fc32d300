// Package config loads the YAML settings file of the tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hansbonini/reevengitools/pkg/common"
	"github.com/hansbonini/reevengitools/pkg/game"
	"gopkg.in/yaml.v3"
)

// Export formats and scaling filters.
const (
	FormatPNG = "png"
	FormatBMP = "bmp"

	FilterNearest    = "nearest"
	FilterCatmullRom = "catmullrom"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the top-level settings document.
type Config struct {
	Game    Game     `yaml:"game"`
	Sources []Source `yaml:"sources,omitempty"`
	Export  Export   `yaml:"export"`
	Verbose bool     `yaml:"verbose"`
}

// Game selects the data set.
type Game struct {
	Title    string `yaml:"title"`
	Platform string `yaml:"platform"`
	Root     string `yaml:"root"`
	Country  string `yaml:"country,omitempty"`
	Demo     bool   `yaml:"demo,omitempty"`
}

// Source is an extra directory, packaged install, ROFS archive or disc
// image searched before or after the game directory.
type Source struct {
	Path     string `yaml:"path"`
	Priority int    `yaml:"priority"`
}

// Export controls image conversion.
type Export struct {
	Format   string `yaml:"format"`
	Scale    int    `yaml:"scale"`
	Filter   string `yaml:"filter"`
	Metadata bool   `yaml:"metadata"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Game: Game{
			Title:    "re1",
			Platform: "pc",
			Root:     ".",
		},
		Export: Export{
			Format: FormatPNG,
			Scale:  1,
			Filter: FilterNearest,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", common.ErrFailedToReadConfig, path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML document over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", common.ErrFailedToParseConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown titles, platforms, formats and filters.
func (c *Config) Validate() error {
	var errs []error
	if _, err := game.ParseTitle(c.Game.Title); err != nil {
		errs = append(errs, err)
	}
	if _, err := game.ParsePlatform(c.Game.Platform); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Export.Format) {
	case FormatPNG, FormatBMP:
	default:
		errs = append(errs, fmt.Errorf("unknown export format %q", c.Export.Format))
	}
	switch strings.ToLower(c.Export.Filter) {
	case FilterNearest, FilterCatmullRom:
	default:
		errs = append(errs, fmt.Errorf("unknown scaling filter %q", c.Export.Filter))
	}
	if c.Export.Scale < 1 {
		errs = append(errs, fmt.Errorf("export scale %d is below 1", c.Export.Scale))
	}
	for i, s := range c.Sources {
		if s.Path == "" {
			errs = append(errs, fmt.Errorf("source %d has no path", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// SessionOptions converts the game settings for game.NewSession.
func (c *Config) SessionOptions() (game.Options, error) {
	title, err := game.ParseTitle(c.Game.Title)
	if err != nil {
		return game.Options{}, err
	}
	platform, err := game.ParsePlatform(c.Game.Platform)
	if err != nil {
		return game.Options{}, err
	}

	opts := game.Options{
		Title:    title,
		Platform: platform,
		Root:     c.Game.Root,
		Country:  c.Game.Country,
		Demo:     c.Game.Demo,
	}
	for _, s := range c.Sources {
		opts.Sources = append(opts.Sources, game.Source{Path: s.Path, Priority: s.Priority})
	}
	return opts, nil
}

// Save writes the settings as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%s: %w", common.ErrFailedToWriteYAML, err)
	}
	return os.WriteFile(path, data, 0644)
}
