package psx

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// msf splits an LBA into its minute, second and frame address.
func msf(lba uint32) (minutes, seconds, frames uint32) {
	const framesPerSecond = 75
	total := lba + CD_PREGAP_SECTORS
	return total / (60 * framesPerSecond), total / framesPerSecond % 60, total % framesPerSecond
}

// lbaToMSF formats an LBA as mm:ss:ff.
func lbaToMSF(lba uint32) string {
	m, s, f := msf(lba)
	return fmt.Sprintf("%02d:%02d:%02d", m, s, f)
}

// lbaToBCD returns the address bytes of a raw sector header.
func lbaToBCD(lba uint32) [3]byte {
	m, s, f := msf(lba)
	return [3]byte{bcd(m), bcd(s), bcd(f)}
}

func bcd(v uint32) byte {
	v %= 100
	return byte(v/10<<4 | v%10)
}

// sectorsFor returns the number of data sectors holding size bytes.
func sectorsFor(size uint32) uint32 {
	return (size + CD_DATA_SIZE - 1) / CD_DATA_SIZE
}

// Both-endian fields of a directory record; only the little-endian half is read.
const (
	recordExtentOffset = 2
	recordSizeOffset   = 10
)

func recordUint32(record []byte, off int) uint32 {
	if len(record) < off+4 {
		return 0
	}
	return binary.LittleEndian.Uint32(record[off:])
}

// recordLBA returns the extent location of a directory record.
func recordLBA(record []byte) uint32 {
	return recordUint32(record, recordExtentOffset)
}

// recordSize returns the data length of a directory record.
func recordSize(record []byte) uint32 {
	return recordUint32(record, recordSizeOffset)
}

// isSelfOrParent reports the single-byte identifiers of "." and "..".
func isSelfOrParent(name string) bool {
	return name == "\x00" || name == "\x01"
}

// trimVersion drops a ";<digits>" file version suffix.
func trimVersion(name string) string {
	base, version, ok := strings.Cut(name, ";")
	if !ok || version == "" || strings.Trim(version, "0123456789") != "" {
		return name
	}
	return base
}

// validName rejects names read from corrupt records: empty or overlong
// names, high-bit or path characters, and names made mostly of NUL or
// control bytes.
func validName(name string) bool {
	if len(name) == 0 || len(name) > 255 {
		return false
	}

	var plain, nuls, controls int
	for i := 0; i < len(name); i++ {
		switch b := name[i]; {
		case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9',
			b == '.', b == '_', b == '-':
			plain++
		case b == 0x00:
			nuls++
		case b == 0x01:
		case b < 0x20:
			controls++
		case b >= 0x80, strings.IndexByte(`<>:"|?*\/`, b) >= 0:
			return false
		}
	}

	n := len(name)
	if n >= 10 && nuls*5 > n {
		return false
	}
	if n >= 5 && controls*10 > n*3 {
		return false
	}
	return plain > 0
}
