// Package common provides shared helpers for the reevengi tools: leveled logging,
// message constants, error formatting, stream helpers and CD-ROM utilities.
package common

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Global variable to control debug output
var VerboseMode bool = false

var logger = newLogger(os.Stderr)

func newLogger(w io.Writer) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}
	return zerolog.New(out).With().Timestamp().Logger()
}

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	VerboseMode = verbose
}

// SetLogOutput redirects all log output to w.
func SetLogOutput(w io.Writer) {
	logger = newLogger(w)
}

// Error messages
const (
	ErrFailedToOpenArchive      = "failed to open archive"
	ErrFailedToReadDirectory    = "failed to read archive directory"
	ErrFailedToReadEntryHeader  = "failed to read entry header"
	ErrFailedToDepack           = "failed to depack image"
	ErrFailedToDecodeImage      = "failed to decode image"
	ErrFailedToLoadRoom         = "failed to load room"
	ErrFailedToCreateOutputFile = "failed to create output file"
	ErrFailedToCreateOutputDir  = "failed to create output directory"
	ErrFailedToCloseOutputFile  = "failed to close output file"
	ErrFailedToEncodeImage      = "failed to encode image"
	ErrFailedToWriteYAML        = "failed to write YAML"
	ErrFailedToReadConfig       = "failed to read config file"
	ErrFailedToParseConfig      = "failed to parse config"
	ErrFailedToOpenSource       = "failed to open source"
	ErrFailedToSeek             = "failed to seek"
)

// Info messages
const (
	InfoArchiveOpened    = "Opened archive %s: %d entries"
	InfoMembersExtracted = "Extracted %d of %d members to: %s"
	InfoImageConverted   = "Converted %s: %dx%d -> %s"
	InfoRoomDumped       = "Dumped room %s: %d cameras, %d triggers -> %s"
	InfoSectorsWritten   = "Wrote %d emulated sectors (%d bytes) to: %s"
	InfoSourceMounted    = "Mounted %s (%d files)"
	InfoCountryDetected  = "Detected country: %s"
	InfoDemoDetected     = "No %s found, assuming demo version"
	InfoDiscFilesFound   = "Found %d files on disc image"
	InfoCameraSwitched   = "Camera switch %d -> %d"
	InfoSessionReady     = "Session ready: %s (%s), %d files reachable"
	InfoArchivePacked    = "Packed %d files into: %s"
	InfoDiscExtracted    = "Extracted %d files to: %s"
)

// Debug messages
const (
	DebugArchiveHeader   = "rofs: dir0=%q dir1=%q location=0x%08X length=%d"
	DebugArchiveEntry    = "rofs: entry %d: %s offset=0x%08X size=%d blocks=%d compressed=%t"
	DebugDepackHeader    = "sld: destination length %d"
	DebugTimHeader       = "tim: mode=%s clut=%t"
	DebugTimColorMap     = "tim: %d color maps of %d colors"
	DebugTimImage        = "tim: image %dx%d at (%d,%d)"
	DebugRoomLoaded      = "room: %d bytes, format %s"
	DebugSectorType      = "cdstream: sector %d type 0x%02X"
	DebugSourceLookup    = "registry: %s resolved by %s"
	DebugMountSkipped    = "registry: skipping %s: %v"
	DebugDiscDirectory   = "disc: directory %s at LBA %d (%d bytes)"
	DebugDiscEntrySkip   = "disc: skipping invalid entry %q (LBA %d, size %d)"
	DebugMemberStored    = "rofs: %s is compressed, writing stored bytes"
	DebugDiscFile        = "disc: %04X %s LBA=%d size=%d %s"
	DebugImagePacked     = "sld: %s depacked to %d bytes"
	DebugMemberDepacked  = "sld: %s depacked from %d blocks to %d bytes"
	DebugMemberExtracted = "rofs: extracted %s (%d bytes)"
)

// Warning messages
const (
	WarnCompressedMember = "Member %s is compressed and no depacker is configured"
	WarnSourceUnreadable = "Could not open source %s: %v"
	WarnCameraOutOfRange = "Camera %d has no position record"
	WarnEmptyRoom        = "Room record is empty"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	if len(args) > 0 {
		logger.Info().Msgf(message, args...)
	} else {
		logger.Info().Msg(message)
	}
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	if len(args) > 0 {
		logger.Warn().Msgf(message, args...)
	} else {
		logger.Warn().Msg(message)
	}
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	if len(args) > 0 {
		logger.Error().Msgf(message, args...)
	} else {
		logger.Error().Msg(message)
	}
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	if !VerboseMode {
		return
	}

	if len(args) > 0 {
		logger.Debug().Msgf(message, args...)
	} else {
		logger.Debug().Msg(message)
	}
}

// FormatError creates a formatted error with additional context
func FormatError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}

// FormatErrorString creates a formatted error with string details
func FormatErrorString(baseMessage, details string, args ...interface{}) error {
	if len(args) > 0 {
		return fmt.Errorf("%s: "+details, append([]interface{}{baseMessage}, args...)...)
	}
	return fmt.Errorf("%s: %s", baseMessage, details)
}
