// Package cmd provides command-line interface for installed game data.
// This file contains commands that mount a game directory with its extra
// sources, detect the version and read rooms and backgrounds by location.
package cmd

import (
	"fmt"
	"os"

	"github.com/hansbonini/reevengitools/pkg"
	"github.com/hansbonini/reevengitools/pkg/game"
	"github.com/spf13/cobra"
)

// gameCmd represents the parent command for installed game operations.
var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Read data from an installed game",
	Long: `Read data from an installed game directory, disc image or packaged
install. The game settings come from the configuration file and can be
overridden with flags.

Commands:
  info        Show the detected version and mounted sources
  room        Dump the room record of a location as YAML
  background  Write the background data of a camera

Examples:
  reevengitools game info --title re1 --root /games/re1
  reevengitools game room --stage 1 --room 6 room.yaml
  reevengitools game background --config re3.yaml --room 0x0d --camera 2 bg.jpg`,
}

// openSession builds the session from the configuration and the flags.
func openSession(cmd *cobra.Command) (*game.Session, error) {
	opts, err := cfg.SessionOptions()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("title") {
		name, _ := flags.GetString("title")
		if opts.Title, err = game.ParseTitle(name); err != nil {
			return nil, err
		}
	}
	if flags.Changed("platform") {
		name, _ := flags.GetString("platform")
		if opts.Platform, err = game.ParsePlatform(name); err != nil {
			return nil, err
		}
	}
	if flags.Changed("root") {
		opts.Root, _ = flags.GetString("root")
	}
	if flags.Changed("country") {
		opts.Country, _ = flags.GetString("country")
	}

	return game.NewSession(opts)
}

// locationFlags reads --stage, --room and --camera over the initial room
// of the session.
func locationFlags(cmd *cobra.Command, s *game.Session) (game.Location, error) {
	loc := s.Location()
	flags := cmd.Flags()
	var err error
	if flags.Changed("stage") {
		if loc.Stage, err = flags.GetInt("stage"); err != nil {
			return loc, err
		}
	}
	if flags.Changed("room") {
		if loc.Room, err = flags.GetInt("room"); err != nil {
			return loc, err
		}
	}
	if loc.Camera, err = flags.GetInt("camera"); err != nil {
		return loc, err
	}
	return loc, nil
}

var gameInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the detected game version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd)
		if err != nil {
			return fmt.Errorf("failed to open game: %w", err)
		}
		defer session.Close()

		paths := session.Paths
		fmt.Printf("Title:    %s\n", paths.Title)
		fmt.Printf("Platform: %s\n", paths.Platform)
		fmt.Printf("Country:  %q\n", paths.Country)
		fmt.Printf("Demo:     %t\n", paths.Demo)
		fmt.Println("Sources:")
		for _, name := range session.Registry.Sources() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Printf("Files:    %d\n", len(session.Registry.List()))

		loc := session.Location()
		if name, err := paths.RoomFile(loc); err == nil {
			fmt.Printf("Initial room: %s (present: %t)\n", name, session.Registry.HasFile(name))
		}
		return nil
	},
}

var gameRoomCmd = &cobra.Command{
	Use:   "room [output_file]",
	Short: "Dump the room record of a location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd)
		if err != nil {
			return fmt.Errorf("failed to open game: %w", err)
		}
		defer session.Close()

		loc, err := locationFlags(cmd, session)
		if err != nil {
			return err
		}
		session.SetLocation(loc)

		r, err := session.LoadRoom()
		if err != nil {
			return fmt.Errorf("failed to load room: %w", err)
		}

		name, _ := session.Paths.RoomFile(loc)
		processor := pkg.NewRoomProcessor(r.Format())
		dump := processor.Describe(name, r)
		if err := pkg.WriteYAML(args[0], dump); err != nil {
			return err
		}

		fmt.Printf("Room %s dumped: %d cameras, %d triggers -> %s\n", name, len(dump.Cameras), len(dump.Triggers), args[0])
		return nil
	},
}

var gameBackgroundCmd = &cobra.Command{
	Use:   "background [output_file]",
	Short: "Write the background data of a camera",
	Long: `Write the background data of a camera as stored by the game: a PAK or
JPEG image on PC, one raw MDEC frame cut out of the stage .bss file on
PlayStation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd)
		if err != nil {
			return fmt.Errorf("failed to open game: %w", err)
		}
		defer session.Close()

		loc, err := locationFlags(cmd, session)
		if err != nil {
			return err
		}
		session.SetLocation(loc)

		data, err := session.Background()
		if err != nil {
			return fmt.Errorf("failed to read background: %w", err)
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return fmt.Errorf("failed to write background: %w", err)
		}

		fmt.Printf("Background written: %d bytes -> %s\n", len(data), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gameCmd)
	gameCmd.AddCommand(gameInfoCmd)
	gameCmd.AddCommand(gameRoomCmd)
	gameCmd.AddCommand(gameBackgroundCmd)

	gameCmd.PersistentFlags().String("title", "re1", "Game title (re1, re2-leon, re2-claire, re3)")
	gameCmd.PersistentFlags().String("platform", "pc", "Platform (pc, psx)")
	gameCmd.PersistentFlags().String("root", ".", "Game directory")
	gameCmd.PersistentFlags().String("country", "", "Country override")

	for _, c := range []*cobra.Command{gameRoomCmd, gameBackgroundCmd} {
		c.Flags().Int("stage", 1, "Stage number")
		c.Flags().Int("room", 0, "Room number within the stage")
		c.Flags().Int("camera", 0, "Camera number within the room")
	}
}
