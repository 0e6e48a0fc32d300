// Package registry resolves logical file names to streams across an ordered
// set of sources: directory trees, packaged installs, ROFS archives and raw
// disc images.
package registry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hansbonini/reevengitools/pkg/common"
)

var (
	// ErrNotFound is returned when no source holds the requested name.
	ErrNotFound = errors.New("registry: file not found")
	// ErrDuplicate is returned when a source name is already mounted.
	ErrDuplicate = errors.New("registry: source already mounted")
	// ErrUnsupported is returned by OpenPath for unknown source types.
	ErrUnsupported = errors.New("registry: unsupported source type")
)

// Source is a read-only set of named files. Names passed in are already
// normalized.
type Source interface {
	HasFile(name string) bool
	Open(name string) (io.ReadSeekCloser, error)
	// List returns the normalized names of every file.
	List() []string
	Close() error
}

// Normalize maps a file name to the registry form: lower case, forward
// slashes, no leading slash.
func Normalize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Clean("/" + name)
	return strings.ToLower(strings.TrimPrefix(name, "/"))
}

type mount struct {
	name     string
	priority int
	seq      int
	src      Source
}

// Registry searches its sources from highest priority down; sources with
// equal priority are searched in the order they were added.
type Registry struct {
	mounts []mount
	seq    int
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Add mounts src under name.
func (r *Registry) Add(name string, src Source, priority int) error {
	if _, ok := r.find(name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	r.mounts = append(r.mounts, mount{name: name, priority: priority, seq: r.seq, src: src})
	r.seq++
	slices.SortStableFunc(r.mounts, func(a, b mount) int {
		if a.priority != b.priority {
			return b.priority - a.priority
		}
		return a.seq - b.seq
	})
	return nil
}

// Remove unmounts and closes the named source.
func (r *Registry) Remove(name string) error {
	i, ok := r.find(name)
	if !ok {
		return fmt.Errorf("%w: source %s", ErrNotFound, name)
	}
	src := r.mounts[i].src
	r.mounts = slices.Delete(r.mounts, i, i+1)
	return src.Close()
}

// Source returns the source mounted under name.
func (r *Registry) Source(name string) (Source, bool) {
	i, ok := r.find(name)
	if !ok {
		return nil, false
	}
	return r.mounts[i].src, true
}

// Sources returns the mounted source names in search order.
func (r *Registry) Sources() []string {
	names := make([]string, len(r.mounts))
	for i, m := range r.mounts {
		names[i] = m.name
	}
	return names
}

func (r *Registry) find(name string) (int, bool) {
	for i, m := range r.mounts {
		if m.name == name {
			return i, true
		}
	}
	return 0, false
}

// HasFile reports whether any source holds name.
func (r *Registry) HasFile(name string) bool {
	name = Normalize(name)
	for _, m := range r.mounts {
		if m.src.HasFile(name) {
			return true
		}
	}
	return false
}

// Open returns a stream for name from the first source holding it.
func (r *Registry) Open(name string) (io.ReadSeekCloser, error) {
	key := Normalize(name)
	for _, m := range r.mounts {
		if !m.src.HasFile(key) {
			continue
		}
		common.LogDebug(common.DebugSourceLookup, key, m.name)
		return m.src.Open(key)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// ReadFile returns the whole content of name.
func (r *Registry) ReadFile(name string) ([]byte, error) {
	f, err := r.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// List returns every reachable name, sorted and without duplicates.
func (r *Registry) List() []string {
	var names []string
	for _, m := range r.mounts {
		names = append(names, m.src.List()...)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Close closes and unmounts every source.
func (r *Registry) Close() error {
	var errs []error
	for _, m := range r.mounts {
		if err := m.src.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.name, err))
		}
	}
	r.mounts = nil
	return errors.Join(errs...)
}

// OpenPath opens a source by inspecting p: directories are walked, .zip, .7z
// and .rar files are opened as packaged installs, .dat files as ROFS
// archives and .bin files as raw disc images.
func OpenPath(p string) (Source, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", common.ErrFailedToOpenSource, err)
	}
	if info.IsDir() {
		return source(OpenDir(p))
	}

	switch strings.ToLower(filepath.Ext(p)) {
	case ".zip", ".7z", ".rar":
		return source(OpenPacked(p))
	case ".dat":
		return source(OpenRofs(p))
	case ".bin":
		return source(OpenDisc(p))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, p)
}

// source keeps a failed open from returning a typed nil Source.
func source[S Source](s S, err error) (Source, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
