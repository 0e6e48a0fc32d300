package registry

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hansbonini/reevengitools/pkg/common"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// dirFile is an indexed file on disk; codec is the extension of a
// compressed sibling, or empty.
type dirFile struct {
	path  string
	codec string
}

// DirSource serves a directory tree with case-insensitive names. A file
// stored as name.xz or name.zst is served decompressed as name unless the
// plain file also exists.
type DirSource struct {
	root  string
	files map[string]dirFile
}

// OpenDir indexes every regular file below root.
func OpenDir(root string) (*DirSource, error) {
	d := &DirSource{root: root, files: make(map[string]dirFile)}

	err := filepath.WalkDir(root, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !e.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		d.index(Normalize(filepath.ToSlash(rel)), p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", common.ErrFailedToOpenSource, err)
	}
	return d, nil
}

func (d *DirSource) index(name, p string) {
	for _, codec := range []string{".xz", ".zst"} {
		if plain, ok := strings.CutSuffix(name, codec); ok {
			if _, exists := d.files[plain]; !exists {
				d.files[plain] = dirFile{path: p, codec: codec}
			}
			return
		}
	}
	d.files[name] = dirFile{path: p}
}

// Root returns the indexed directory.
func (d *DirSource) Root() string {
	return d.root
}

func (d *DirSource) HasFile(name string) bool {
	_, ok := d.files[name]
	return ok
}

func (d *DirSource) List() []string {
	names := make([]string, 0, len(d.files))
	for name := range d.files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (d *DirSource) Open(name string) (io.ReadSeekCloser, error) {
	f, ok := d.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	if f.codec == "" {
		return file, nil
	}
	defer file.Close()

	data, err := decompress(file, f.codec)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", f.path, err)
	}
	return common.NewMemoryStream(data), nil
}

func decompress(r io.Reader, codec string) ([]byte, error) {
	switch codec {
	case ".xz":
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.ReadAll(xr)
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	}
	return nil, fmt.Errorf("%w: codec %s", ErrUnsupported, codec)
}

func (d *DirSource) Close() error {
	return nil
}
