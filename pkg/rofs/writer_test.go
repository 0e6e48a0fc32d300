package rofs

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestWrite_RoundTrip(t *testing.T) {
	files := []File{
		{Name: "r100.rdt", Data: bytes.Repeat([]byte{1, 2, 3}, 100)},
		{Name: "empty.bin", Data: nil},
		{Name: "odd.tim", Data: []byte{9, 8, 7, 6, 5}},
	}

	var buf bytes.Buffer
	if err := Write(&buf, "data", "room", files); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if buf.Len()%8 != 0 {
		t.Errorf("archive length %d is not 8-byte aligned", buf.Len())
	}

	a, err := Open(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer a.Close()

	if a.Dir0 != "data" || a.Dir1 != "room" {
		t.Errorf("directories = %q, %q", a.Dir0, a.Dir1)
	}
	if a.Len() != len(files) {
		t.Fatalf("Len() = %d, want %d", a.Len(), len(files))
	}
	for _, f := range files {
		name := "data/room/" + f.Name
		entry, ok := a.Entry(name)
		if !ok {
			t.Errorf("missing %s", name)
			continue
		}
		if entry.Compressed {
			t.Errorf("%s flagged compressed", name)
		}

		r, err := a.OpenMember(name)
		if err != nil {
			t.Fatalf("OpenMember(%s) failed: %v", name, err)
		}
		got, err := io.ReadAll(r)
		r.Close()
		if err != nil || !bytes.Equal(got, f.Data) {
			t.Errorf("%s = % X, %v, want % X", name, got, err, f.Data)
		}
	}
}

func TestWrite_NameTooLong(t *testing.T) {
	long := strings.Repeat("a", maxNameLen)
	tests := []struct {
		name       string
		dir0, dir1 string
		files      []File
	}{
		{"dir0", long, "b", nil},
		{"dir1", "a", long, nil},
		{"file", "a", "b", []File{{Name: long}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Write(io.Discard, tt.dir0, tt.dir1, tt.files)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Write() error = %v, want ErrMalformed", err)
			}
		})
	}

	if err := Write(io.Discard, strings.Repeat("a", maxNameLen-1), "b", nil); err != nil {
		t.Errorf("Write() with a %d byte name failed: %v", maxNameLen-1, err)
	}
}

func TestWrite_Compressed(t *testing.T) {
	files := []File{
		{Name: "r10000.jpg", Data: []byte{1, 2, 3, 4}, Compressed: true, Size: 40, Blocks: 3},
		{Name: "plain.bin", Data: []byte{5}},
	}

	var buf bytes.Buffer
	if err := Write(&buf, "data_a", "bss", files); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	a, err := Open(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer a.Close()

	entry, _ := a.Entry("data_a/bss/r10000.jpg")
	if !entry.Compressed || entry.NumBlocks != 3 || entry.UncompressedSize != 40 {
		t.Errorf("entry = %+v", entry)
	}
	if entry.BlockOffset != entry.StoredOffset+recordHeaderSize {
		t.Errorf("BlockOffset = %d, StoredOffset = %d", entry.BlockOffset, entry.StoredOffset)
	}
	if _, err := a.OpenMember(entry.Name); !errors.Is(err, ErrCompressed) {
		t.Errorf("OpenMember() error = %v, want ErrCompressed", err)
	}

	raw, err := a.OpenRaw(entry.Name)
	if err != nil {
		t.Fatal(err)
	}
	stored, _ := io.ReadAll(raw)
	if !bytes.Equal(stored[recordHeaderSize:], files[0].Data) {
		t.Errorf("stored blocks = % X", stored[recordHeaderSize:])
	}

	if plain, _ := a.Entry("data_a/bss/plain.bin"); plain.Compressed || plain.NumBlocks != 1 {
		t.Errorf("plain entry = %+v", plain)
	}
}
