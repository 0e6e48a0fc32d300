package registry

import (
	"fmt"
	"io"
	"slices"

	"github.com/hansbonini/reevengitools/pkg/common"
	"github.com/hansbonini/reevengitools/pkg/psx"
	"github.com/hansbonini/reevengitools/pkg/rofs"
	"github.com/hansbonini/reevengitools/pkg/sld"
)

// RofsSource serves the members of a ROFS archive.
type RofsSource struct {
	archive *rofs.Archive
	members map[string]string
}

// OpenRofs opens a ROFS archive file. Compressed members are expanded with
// sld.DepackMember unless opts override the depacker.
func OpenRofs(p string, opts ...rofs.Option) (*RofsSource, error) {
	opts = append([]rofs.Option{rofs.WithDepacker(sld.DepackMember)}, opts...)
	a, err := rofs.OpenFile(p, opts...)
	if err != nil {
		return nil, err
	}
	return NewRofsSource(a), nil
}

// NewRofsSource wraps an open archive. The source takes ownership of it.
func NewRofsSource(a *rofs.Archive) *RofsSource {
	s := &RofsSource{archive: a, members: make(map[string]string, a.Len())}
	for name := range a.Members() {
		s.members[Normalize(name)] = name
	}
	return s
}

// Archive returns the wrapped archive.
func (s *RofsSource) Archive() *rofs.Archive {
	return s.archive
}

func (s *RofsSource) HasFile(name string) bool {
	_, ok := s.members[name]
	return ok
}

func (s *RofsSource) List() []string {
	names := make([]string, 0, len(s.members))
	for name := range s.members {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *RofsSource) Open(name string) (io.ReadSeekCloser, error) {
	member, ok := s.members[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s.archive.OpenMember(member)
}

func (s *RofsSource) Close() error {
	return s.archive.Close()
}

// DiscSource serves the files of a raw disc image.
type DiscSource struct {
	disc *psx.Disc
}

// OpenDisc opens a raw 2352-byte sector image.
func OpenDisc(p string) (*DiscSource, error) {
	d, err := psx.OpenDisc(p)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", common.ErrFailedToOpenSource, p, err)
	}
	return NewDiscSource(d), nil
}

// NewDiscSource wraps an indexed disc. The source takes ownership of it.
func NewDiscSource(d *psx.Disc) *DiscSource {
	return &DiscSource{disc: d}
}

func (s *DiscSource) HasFile(name string) bool {
	_, ok := s.disc.Lookup(name)
	return ok
}

func (s *DiscSource) List() []string {
	files := s.disc.Files()
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, Normalize(f.Path))
	}
	slices.Sort(names)
	return names
}

func (s *DiscSource) Open(name string) (io.ReadSeekCloser, error) {
	f, ok := s.disc.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	data, err := s.disc.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return common.NewMemoryStream(data), nil
}

func (s *DiscSource) Close() error {
	return s.disc.Close()
}
