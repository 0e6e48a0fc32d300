package pkg

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hansbonini/reevengitools/pkg/common"
	"github.com/hansbonini/reevengitools/pkg/psx"
	"github.com/hansbonini/reevengitools/pkg/rofs"
	"github.com/hansbonini/reevengitools/pkg/room"
	"github.com/hansbonini/reevengitools/pkg/sld"
	"github.com/hansbonini/reevengitools/pkg/tim"
)

// outputPath maps an archive or disc member name below outputDir. Leading
// "../" elements are dropped so members cannot escape the directory.
func outputPath(outputDir, name string) string {
	clean := strings.TrimPrefix(path.Clean("/"+name), "/")
	return filepath.Join(outputDir, filepath.FromSlash(clean))
}

func writeMember(outputFile string, r io.Reader) (int64, error) {
	var n int64
	err := writeOutput(outputFile, func(w io.Writer) error {
		var err error
		n, err = io.Copy(w, r)
		return err
	})
	return n, err
}

// ArchiveProcessor lists, extracts and builds ROFS containers.
type ArchiveProcessor struct {
	opts []rofs.Option
}

// NewArchiveProcessor creates a processor. Options are passed to every
// archive it opens, after the default sld.DepackMember depacker.
func NewArchiveProcessor(opts ...rofs.Option) *ArchiveProcessor {
	return &ArchiveProcessor{opts: append([]rofs.Option{rofs.WithDepacker(sld.DepackMember)}, opts...)}
}

// List reads the directory of inputFile.
func (p *ArchiveProcessor) List(inputFile string) (*ArchiveListing, error) {
	archive, err := rofs.OpenFile(inputFile, p.opts...)
	if err != nil {
		return nil, err
	}
	defer archive.Close()

	listing := &ArchiveListing{Source: inputFile, Dir0: archive.Dir0, Dir1: archive.Dir1}
	for _, name := range archive.ListMembers() {
		entry, _ := archive.Entry(name)
		listing.Entries = append(listing.Entries, ArchiveEntryInfo{
			Name:             entry.Name,
			Offset:           entry.Offset,
			StoredSize:       entry.CompressedSize,
			UncompressedSize: entry.UncompressedSize,
			Blocks:           entry.NumBlocks,
			Compressed:       entry.Compressed,
		})
	}
	common.LogInfo(common.InfoArchiveOpened, inputFile, len(listing.Entries))
	return listing, nil
}

// Extract writes members of inputFile below outputDir, all of them when
// members is empty. Compressed members are written as stored when the
// depacker is disabled with rofs.WithDepacker(nil). It returns the number
// of files written.
func (p *ArchiveProcessor) Extract(inputFile, outputDir string, members ...string) (int, error) {
	archive, err := rofs.OpenFile(inputFile, p.opts...)
	if err != nil {
		return 0, err
	}
	defer archive.Close()

	names := members
	if len(names) == 0 {
		names = archive.ListMembers()
	}

	written := 0
	for _, name := range names {
		if err := p.extractMember(archive, name, outputDir); err != nil {
			return written, err
		}
		written++
	}

	common.LogInfo(common.InfoMembersExtracted, written, archive.Len(), outputDir)
	return written, nil
}

func (p *ArchiveProcessor) extractMember(archive *rofs.Archive, name, outputDir string) error {
	member, err := archive.OpenMember(name)
	if errors.Is(err, rofs.ErrCompressed) {
		common.LogDebug(common.DebugMemberStored, name)
		member, err = archive.OpenRaw(name)
	}
	if err != nil {
		return fmt.Errorf("failed to open member %s: %w", name, err)
	}
	defer member.Close()

	n, err := writeMember(outputPath(outputDir, name), member)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", name, err)
	}
	common.LogDebug(common.DebugMemberExtracted, name, n)
	return nil
}

// Pack stores every regular file directly inside inputDir in a new
// container, sorted by name. With compress set every file is packed with
// sld.PackMember.
func (p *ArchiveProcessor) Pack(inputDir, outputFile, dir0, dir1 string, compress bool) error {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []rofs.File
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(inputDir, e.Name()))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		if compress {
			files = append(files, sld.PackMember(e.Name(), data))
			continue
		}
		files = append(files, rofs.File{Name: e.Name(), Data: data})
	}
	slices.SortFunc(files, func(a, b rofs.File) int { return strings.Compare(a.Name, b.Name) })

	err = writeOutput(outputFile, func(w io.Writer) error {
		return rofs.Write(w, dir0, dir1, files)
	})
	if err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	common.LogInfo(common.InfoArchivePacked, len(files), outputFile)
	return nil
}

// imageLoader is satisfied by both the plain and the packed image decoder.
type imageLoader interface {
	LoadStream(r io.Reader) error
	Surface() *image.RGBA
	Info() tim.Info
	ColorMapCount() int
	ColorMap(i int) ([]psx.PSXColor, error)
	RenderColorMap(i int) (*image.RGBA, error)
	Destroy()
}

// ImageProcessor converts TIM and SLD images.
type ImageProcessor struct{}

// NewImageProcessor creates a new image processor.
func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{}
}

// isPacked reports whether data should go through the depacker: by
// extension when it is .sld or .tim, by the TIM magic otherwise.
func isPacked(name string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".sld":
		return true
	case ".tim":
		return false
	}
	magic, ok := common.Uint32At(data, 0)
	return !ok || magic != tim.Magic
}

// Convert decodes inputFile and writes it to outputFile. The metadata
// sidecar, when requested, is written next to the image with a .yaml
// extension.
func (p *ImageProcessor) Convert(inputFile, outputFile string, opts ImageOptions) (*ImageMetadata, error) {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	packed := isPacked(inputFile, data)
	var loader imageLoader = tim.NewDecoder()
	if packed {
		loader = sld.NewDecoder()
	}
	defer loader.Destroy()

	if err := loader.LoadStream(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	img := image.Image(loader.Surface())
	if opts.ColorMap >= 0 {
		rendered, err := loader.RenderColorMap(opts.ColorMap)
		if err != nil {
			return nil, err
		}
		img = rendered
	}

	scaled, err := scaleImage(img, opts.Scale, opts.Filter)
	if err != nil {
		return nil, err
	}
	if err := saveImage(outputFile, scaled, opts.Format); err != nil {
		return nil, err
	}

	meta := imageMetadata(inputFile, packed, loader)
	if opts.Metadata {
		if err := WriteYAML(replaceExt(outputFile, ".yaml"), meta); err != nil {
			return nil, err
		}
	}

	b := scaled.Bounds()
	common.LogInfo(common.InfoImageConverted, inputFile, b.Dx(), b.Dy(), outputFile)
	return meta, nil
}

func imageMetadata(source string, packed bool, loader imageLoader) *ImageMetadata {
	info := loader.Info()
	meta := &ImageMetadata{
		Source: source,
		Packed: packed,
		Width:  info.Width,
		Height: info.Height,
		Mode:   info.Mode.String(),
		ImageX: info.ImageX,
		ImageY: info.ImageY,
	}
	if loader.ColorMapCount() > 0 {
		meta.ClutX, meta.ClutY = info.ClutX, info.ClutY
	}
	for i := range loader.ColorMapCount() {
		palette, err := loader.ColorMap(i)
		if err != nil {
			break
		}
		meta.ColorMaps = append(meta.ColorMaps, paletteHex(palette))
	}
	return meta
}

// Depack expands an SLD file into the TIM it carries.
func (p *ImageProcessor) Depack(inputFile, outputFile string) error {
	file, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	data, err := sld.Depack(bufio.NewReader(file))
	if err != nil {
		return common.FormatError(common.ErrFailedToDepack, err)
	}
	common.LogDebug(common.DebugImagePacked, inputFile, len(data))

	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return common.FormatError(common.ErrFailedToCreateOutputFile, err)
	}
	return nil
}

// Pack compresses inputFile into the SLD format.
func (p *ImageProcessor) Pack(inputFile, outputFile string) error {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	if err := os.WriteFile(outputFile, sld.Pack(data), 0o644); err != nil {
		return common.FormatError(common.ErrFailedToCreateOutputFile, err)
	}
	return nil
}

// RoomProcessor dumps and queries room records.
type RoomProcessor struct {
	format room.Format
}

// NewRoomProcessor creates a processor for records in format.
func NewRoomProcessor(format room.Format) *RoomProcessor {
	return &RoomProcessor{format: format}
}

func (p *RoomProcessor) load(inputFile string) (room.Room, error) {
	file, err := os.Open(inputFile)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToLoadRoom, err)
	}
	defer file.Close()

	return room.Load(p.format, file)
}

// Describe builds the dump of a loaded room.
func (p *RoomProcessor) Describe(source string, r room.Room) *RoomDump {
	dump := &RoomDump{
		Source:   source,
		Format:   r.Format().String(),
		Size:     r.Len(),
		Cameras:  []CameraDump{},
		Triggers: []room.Trigger{},
	}
	for i := range r.NumCameras() {
		pos, ok := r.CameraPos(i)
		if !ok {
			common.LogWarn(common.WarnCameraOutOfRange, i)
			break
		}
		dump.Cameras = append(dump.Cameras, CameraDump{Index: i, From: pos.From, To: pos.To})
	}
	for t := range r.Triggers() {
		dump.Triggers = append(dump.Triggers, t)
	}
	return dump
}

// Dump writes the cameras and trigger zones of inputFile as YAML.
func (p *RoomProcessor) Dump(inputFile, outputFile string) (*RoomDump, error) {
	r, err := p.load(inputFile)
	if err != nil {
		return nil, err
	}
	dump := p.Describe(inputFile, r)
	if err := WriteYAML(outputFile, dump); err != nil {
		return nil, err
	}

	common.LogInfo(common.InfoRoomDumped, inputFile, len(dump.Cameras), len(dump.Triggers), outputFile)
	return dump, nil
}

// Check runs one movement of the given camera against inputFile.
func (p *RoomProcessor) Check(inputFile string, camera int, from, to room.Point) (RoomCheck, error) {
	r, err := p.load(inputFile)
	if err != nil {
		return RoomCheck{}, err
	}
	return RoomCheck{
		Camera:      camera,
		SwitchTo:    r.CheckCamSwitch(camera, from, to),
		OutOfBounds: r.CheckCamBoundary(camera, from, to),
	}, nil
}

// MovieProcessor turns movie files stored as 2048-byte blocks into raw
// sector images.
type MovieProcessor struct{}

// NewMovieProcessor creates a new movie processor.
func NewMovieProcessor() *MovieProcessor {
	return &MovieProcessor{}
}

// Emulate writes the raw-sector view of inputFile to outputFile and returns
// the number of sectors written.
func (p *MovieProcessor) Emulate(inputFile, outputFile string) (int64, error) {
	in, err := os.Open(inputFile)
	if err != nil {
		return 0, fmt.Errorf("failed to open input file: %w", err)
	}

	stream, err := psx.NewCDStream(in)
	if err != nil {
		in.Close()
		return 0, err
	}
	defer stream.Close()

	var n int64
	err = writeOutput(outputFile, func(out io.Writer) error {
		w := bufio.NewWriter(out)
		var err error
		if n, err = io.Copy(w, stream); err != nil {
			return err
		}
		return w.Flush()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to write sectors: %w", err)
	}

	sectors := n / psx.CD_SECTOR_SIZE
	common.LogInfo(common.InfoSectorsWritten, sectors, n, outputFile)
	return sectors, nil
}

// DiscProcessor extracts files from raw disc images.
type DiscProcessor struct{}

// NewDiscProcessor creates a new disc processor.
func NewDiscProcessor() *DiscProcessor {
	return &DiscProcessor{}
}

// Dump extracts every file of inputFile below outputDir, keeping the disc
// directory structure.
func (p *DiscProcessor) Dump(inputFile, outputDir string) (int, error) {
	disc, err := psx.OpenDisc(inputFile)
	if err != nil {
		return 0, fmt.Errorf("failed to open disc image: %w", err)
	}
	defer disc.Close()

	files := disc.Files()
	common.LogInfo(common.InfoDiscFilesFound, len(files))

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return 0, common.FormatError(common.ErrFailedToCreateOutputDir, err)
	}

	extracted := 0
	for i, f := range files {
		if f.IsDir {
			continue
		}
		common.LogDebug(common.DebugDiscFile, i, f.MSF, f.LBA, f.Size, f.Path)
		if err := disc.ExtractFile(f, outputDir); err != nil {
			return extracted, err
		}
		extracted++
	}

	common.LogInfo(common.InfoDiscExtracted, extracted, outputDir)
	return extracted, nil
}
