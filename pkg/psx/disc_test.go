package psx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// dirRecord builds an ISO9660 directory record
func dirRecord(name string, lba, size uint32, dir bool) []byte {
	length := ISO_DIR_RECORD_MIN + len(name)
	if length%2 != 0 {
		length++
	}

	rec := make([]byte, length)
	rec[0] = byte(length)
	binary.LittleEndian.PutUint32(rec[2:], lba)
	binary.BigEndian.PutUint32(rec[6:], lba)
	binary.LittleEndian.PutUint32(rec[10:], size)
	binary.BigEndian.PutUint32(rec[14:], size)
	if dir {
		rec[25] = 0x02
	}
	rec[32] = byte(len(name))
	copy(rec[33:], name)
	return rec
}

// buildDiscImage creates a small raw image:
//
//	/CAPCOM.PTC      (5 bytes at LBA 20)
//	/DATA/ROOM.BSS   (3000 bytes at LBA 21-22)
func buildDiscImage() []byte {
	const totalSectors = 23
	image := make([]byte, totalSectors*CD_SECTOR_SIZE)

	writeSector := func(lba int, data []byte) {
		copy(image[lba*CD_SECTOR_SIZE+CD_PAYLOAD_OFFSET:], data)
	}

	pvd := make([]byte, CD_DATA_SIZE)
	pvd[0] = 0x01
	copy(pvd[1:6], "CD001")
	pvd[6] = 0x01
	copy(pvd[40:], "RESIDENT_EVIL")
	binary.LittleEndian.PutUint32(pvd[80:], totalSectors)
	binary.LittleEndian.PutUint16(pvd[128:], CD_DATA_SIZE)
	copy(pvd[156:], dirRecord("\x00", 18, CD_DATA_SIZE, true))
	writeSector(ISO_PVD_SECTOR, pvd)

	var root bytes.Buffer
	root.Write(dirRecord("\x00", 18, CD_DATA_SIZE, true))
	root.Write(dirRecord("\x01", 18, CD_DATA_SIZE, true))
	root.Write(dirRecord("CAPCOM.PTC;1", 20, 5, false))
	root.Write(dirRecord("DATA", 19, CD_DATA_SIZE, true))
	writeSector(18, root.Bytes())

	var data bytes.Buffer
	data.Write(dirRecord("\x00", 19, CD_DATA_SIZE, true))
	data.Write(dirRecord("\x01", 18, CD_DATA_SIZE, true))
	data.Write(dirRecord("ROOM.BSS;1", 21, 3000, false))
	writeSector(19, data.Bytes())

	writeSector(20, []byte("HELLO"))
	writeSector(21, bytes.Repeat([]byte{0x11}, CD_DATA_SIZE))
	writeSector(22, bytes.Repeat([]byte{0x22}, CD_DATA_SIZE))

	return image
}

func TestNewDisc_Files(t *testing.T) {
	disc, err := NewDisc(bytes.NewReader(buildDiscImage()))
	if err != nil {
		t.Fatalf("NewDisc() failed: %v", err)
	}
	defer disc.Close()

	files := disc.Files()
	if len(files) != 2 {
		t.Fatalf("Files() returned %d files, want 2: %+v", len(files), files)
	}

	expected := []struct {
		path string
		lba  uint32
		size uint32
	}{
		{"CAPCOM.PTC", 20, 5},
		{"DATA/ROOM.BSS", 21, 3000},
	}
	for i, want := range expected {
		if files[i].Path != want.path || files[i].LBA != want.lba || files[i].Size != want.size {
			t.Errorf("file %d = %+v, want %+v", i, files[i], want)
		}
	}
	if files[1].ExtentSize != 2 {
		t.Errorf("ExtentSize = %d, want 2", files[1].ExtentSize)
	}
	if files[0].MSF != "00:02:20" {
		t.Errorf("MSF = %s, want 00:02:20", files[0].MSF)
	}
}

func TestDisc_ReadFile(t *testing.T) {
	disc, err := NewDisc(bytes.NewReader(buildDiscImage()))
	if err != nil {
		t.Fatal(err)
	}

	f, ok := disc.Lookup("/data/room.bss")
	if !ok {
		t.Fatal("Lookup() did not find data/room.bss")
	}

	content, err := disc.ReadFile(f)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	want := append(bytes.Repeat([]byte{0x11}, CD_DATA_SIZE), bytes.Repeat([]byte{0x22}, 3000-CD_DATA_SIZE)...)
	if !bytes.Equal(content, want) {
		t.Error("ReadFile() content mismatch across sector boundary")
	}

	if _, ok := disc.Lookup("missing.dat"); ok {
		t.Error("Lookup() should not find missing files")
	}
}

func TestDisc_ExtractFile(t *testing.T) {
	disc, err := NewDisc(bytes.NewReader(buildDiscImage()))
	if err != nil {
		t.Fatal(err)
	}

	outputDir := t.TempDir()
	for _, f := range disc.Files() {
		if err := disc.ExtractFile(f, outputDir); err != nil {
			t.Fatalf("ExtractFile(%s) failed: %v", f.Path, err)
		}
	}

	content, err := os.ReadFile(filepath.Join(outputDir, "CAPCOM.PTC"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "HELLO" {
		t.Errorf("extracted content = %q, want HELLO", content)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "DATA", "ROOM.BSS")); err != nil {
		t.Errorf("nested file not extracted: %v", err)
	}
}

func TestNewDisc_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		image []byte
	}{
		{"too small", make([]byte, 4*CD_SECTOR_SIZE)},
		{"no descriptor", make([]byte, 20*CD_SECTOR_SIZE)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDisc(bytes.NewReader(tt.image))
			if !errors.Is(err, ErrNotISO9660) {
				t.Errorf("NewDisc() error = %v, want ErrNotISO9660", err)
			}
		})
	}
}
