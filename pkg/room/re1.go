package room

import "iter"

// Format A header: unknown byte, camera count, 70 unknown bytes, then 19
// section offsets. Camera records follow the header directly.
const (
	re1NumCameras    = 1
	re1Offsets       = 72
	re1HeaderSize    = re1Offsets + 19*4
	re1CameraSize    = 44
	re1CameraFrom    = 8
	re1SwitchSection = 0

	// Switch records: u16 to, u16 from, 4 x (i16 x, i16 y).
	re1SwitchSize = 20
	re1Boundary   = 9
	terminator    = 0xFFFF
)

type re1Room struct {
	rec record
}

func (r *re1Room) Format() Format { return FormatA }

func (r *re1Room) Len() int { return len(r.rec) }

func (r *re1Room) NumCameras() int {
	n, _ := r.rec.u8(re1NumCameras)
	return int(n)
}

func (r *re1Room) CameraPos(n int) (CameraPos, bool) {
	if n < 0 {
		return CameraPos{}, false
	}
	return r.rec.cameraPos(re1HeaderSize + n*re1CameraSize + re1CameraFrom)
}

func (r *re1Room) Triggers() iter.Seq[Trigger] {
	return func(yield func(Trigger) bool) {
		base, ok := r.rec.u32(re1Offsets + 4*re1SwitchSection)
		if !ok {
			return
		}
		for off := int(base); ; off += re1SwitchSize {
			to, ok := r.rec.u16(off)
			if !ok || to == terminator {
				return
			}
			from, _ := r.rec.u16(off + 2)
			q, ok := r.rec.quad(off + 4)
			if !ok {
				return
			}
			t := Trigger{
				From:     int(from),
				To:       int(to),
				Boundary: to == re1Boundary,
				Quad:     q,
			}
			if !yield(t) {
				return
			}
		}
	}
}

func (r *re1Room) CheckCamSwitch(cur int, from, to Point) int {
	return checkSwitch(r.Triggers(), cur, from, to)
}

func (r *re1Room) CheckCamBoundary(cur int, from, to Point) bool {
	return checkBoundary(r.Triggers(), cur, from, to)
}
