package sld

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/hansbonini/reevengitools/pkg/rofs"
)

func TestPackMember_DepackMember(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	noise := make([]byte, 2*BlockSize+100)
	rng.Read(noise)

	tests := []struct {
		name   string
		data   []byte
		blocks uint16
	}{
		{"empty", nil, 1},
		{"one block", []byte("background bytes background bytes"), 1},
		{"exact block", bytes.Repeat([]byte{0x11}, BlockSize), 1},
		{"three blocks", noise, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := PackMember("r10000.jpg", tt.data)
			if !f.Compressed || f.Blocks != tt.blocks || f.Size != uint32(len(tt.data)) {
				t.Fatalf("PackMember() = %+v", f)
			}

			entry := rofs.Entry{Name: f.Name, NumBlocks: f.Blocks, UncompressedSize: f.Size}
			got, err := DepackMember(entry, bytes.NewReader(f.Data))
			if err != nil {
				t.Fatalf("DepackMember() failed: %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Errorf("DepackMember() returned %d bytes, want %d", len(got), len(tt.data))
			}
		})
	}
}

func TestDepackMember_ZeroBlocks(t *testing.T) {
	data := []byte("zero means one")
	entry := rofs.Entry{NumBlocks: 0, UncompressedSize: uint32(len(data))}
	got, err := DepackMember(entry, bytes.NewReader(Pack(data)))
	if err != nil || !bytes.Equal(got, data) {
		t.Errorf("DepackMember() = %q, %v", got, err)
	}
}

func TestDepackMember_MissingBlock(t *testing.T) {
	f := PackMember("short.bin", []byte("only one block"))
	entry := rofs.Entry{NumBlocks: 2, UncompressedSize: 100}
	if _, err := DepackMember(entry, bytes.NewReader(f.Data)); !errors.Is(err, ErrTruncated) {
		t.Errorf("DepackMember() error = %v, want ErrTruncated", err)
	}
}

func TestDepackMember_Archive(t *testing.T) {
	want := bytes.Repeat([]byte("room background "), 4096)

	var buf bytes.Buffer
	files := []rofs.File{PackMember("r10000.jpg", want), {Name: "plain.bin", Data: []byte("plain")}}
	if err := rofs.Write(&buf, "data_a", "bss", files); err != nil {
		t.Fatal(err)
	}
	a, err := rofs.Open(bytes.NewReader(buf.Bytes()), rofs.WithDepacker(DepackMember))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer a.Close()

	r, err := a.OpenMember("data_a/bss/r10000.jpg")
	if err != nil {
		t.Fatalf("OpenMember() failed: %v", err)
	}
	defer r.Close()
	got := new(bytes.Buffer)
	if _, err := got.ReadFrom(r); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Bytes(), want) {
		t.Errorf("OpenMember() returned %d bytes, want %d", got.Len(), len(want))
	}
}
