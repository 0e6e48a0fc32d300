package registry

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/hansbonini/reevengitools/pkg/common"
	"github.com/nwaples/rardecode/v2"
)

// packed is a read-only container whose members can only be read as a
// forward stream.
type packed interface {
	list() ([]string, error)
	open(member string) (io.ReadCloser, error)
	close() error
}

// PackedSource serves the members of a ZIP, 7z or RAR file. Members are
// read into memory when opened.
type PackedSource struct {
	path    string
	arc     packed
	members map[string]string // normalized -> stored name
}

// OpenPacked opens a packaged install, choosing the format by extension.
func OpenPacked(p string) (*PackedSource, error) {
	var (
		arc packed
		err error
	)
	switch strings.ToLower(filepath.Ext(p)) {
	case ".zip":
		arc, err = openZip(p)
	case ".7z":
		arc, err = openSevenZip(p)
	case ".rar":
		arc, err = openRar(p)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, p)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", common.ErrFailedToOpenSource, p, err)
	}

	names, err := arc.list()
	if err != nil {
		arc.close()
		return nil, fmt.Errorf("%s %s: %w", common.ErrFailedToOpenSource, p, err)
	}

	s := &PackedSource{path: p, arc: arc, members: make(map[string]string, len(names))}
	for _, name := range names {
		s.members[Normalize(name)] = name
	}
	return s, nil
}

func (s *PackedSource) HasFile(name string) bool {
	_, ok := s.members[name]
	return ok
}

func (s *PackedSource) List() []string {
	names := make([]string, 0, len(s.members))
	for name := range s.members {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *PackedSource) Open(name string) (io.ReadSeekCloser, error) {
	member, ok := s.members[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, name, s.path)
	}
	rc, err := s.arc.open(member)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in %s: %w", member, s.path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s in %s: %w", member, s.path, err)
	}
	return common.NewMemoryStream(data), nil
}

func (s *PackedSource) Close() error {
	return s.arc.close()
}

type zipArchive struct {
	reader *zip.ReadCloser
}

func openZip(p string) (*zipArchive, error) {
	reader, err := zip.OpenReader(p)
	if err != nil {
		return nil, err
	}
	return &zipArchive{reader: reader}, nil
}

func (z *zipArchive) list() ([]string, error) {
	names := make([]string, 0, len(z.reader.File))
	for _, f := range z.reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		names = append(names, f.Name)
	}
	return names, nil
}

func (z *zipArchive) open(member string) (io.ReadCloser, error) {
	for _, f := range z.reader.File {
		if f.Name == member {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, member)
}

func (z *zipArchive) close() error {
	return z.reader.Close()
}

type sevenZipArchive struct {
	reader *sevenzip.ReadCloser
}

func openSevenZip(p string) (*sevenZipArchive, error) {
	reader, err := sevenzip.OpenReader(p)
	if err != nil {
		return nil, err
	}
	return &sevenZipArchive{reader: reader}, nil
}

func (s *sevenZipArchive) list() ([]string, error) {
	names := make([]string, 0, len(s.reader.File))
	for _, f := range s.reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		names = append(names, f.Name)
	}
	return names, nil
}

func (s *sevenZipArchive) open(member string) (io.ReadCloser, error) {
	for _, f := range s.reader.File {
		if f.Name == member {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, member)
}

func (s *sevenZipArchive) close() error {
	return s.reader.Close()
}

// rarArchive rescans the file from the start for every member.
type rarArchive struct {
	file *os.File
}

func openRar(p string) (*rarArchive, error) {
	file, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	return &rarArchive{file: file}, nil
}

func (r *rarArchive) reader() (*rardecode.Reader, error) {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return rardecode.NewReader(r.file)
}

func (r *rarArchive) list() ([]string, error) {
	rr, err := r.reader()
	if err != nil {
		return nil, err
	}
	var names []string
	for {
		header, err := rr.Next()
		if errors.Is(err, io.EOF) {
			return names, nil
		}
		if err != nil {
			return nil, err
		}
		if !header.IsDir {
			names = append(names, header.Name)
		}
	}
}

func (r *rarArchive) open(member string) (io.ReadCloser, error) {
	rr, err := r.reader()
	if err != nil {
		return nil, err
	}
	for {
		header, err := rr.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, member)
		}
		if err != nil {
			return nil, err
		}
		if header.Name == member {
			return io.NopCloser(rr), nil
		}
	}
}

func (r *rarArchive) close() error {
	return r.file.Close()
}
