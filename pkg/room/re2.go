package room

import "iter"

// Format B header: unknown byte, camera count, 6 unknown bytes, then 21
// section offsets.
const (
	re2NumCameras    = 1
	re2Offsets       = 8
	re2CameraSection = 7
	re2SwitchSection = 8
	re2CameraSize    = 32
	re2CameraFrom    = 4
	re2SwitchSize    = 20
	re2SwitchFloor   = 1
	re2SwitchFromCam = 2
	re2SwitchToCam   = 3
	re2SwitchQuad    = 4
)

type re2Room struct {
	rec record
}

func (r *re2Room) Format() Format { return FormatB }

func (r *re2Room) Len() int { return len(r.rec) }

func (r *re2Room) NumCameras() int {
	n, _ := r.rec.u8(re2NumCameras)
	return int(n)
}

func (r *re2Room) section(i int) (int, bool) {
	off, ok := r.rec.u32(re2Offsets + 4*i)
	return int(off), ok
}

func (r *re2Room) CameraPos(n int) (CameraPos, bool) {
	base, ok := r.section(re2CameraSection)
	if !ok || n < 0 {
		return CameraPos{}, false
	}
	return r.rec.cameraPos(base + n*re2CameraSize + re2CameraFrom)
}

// isRunStart reports whether a record opens a new run of records for one
// camera. The first record of each run is that camera's boundary; the
// layout has no explicit flag for it.
func isRunStart(index, from, prevFrom int) bool {
	return index == 0 || from != prevFrom
}

func (r *re2Room) Triggers() iter.Seq[Trigger] {
	return func(yield func(Trigger) bool) {
		base, ok := r.section(re2SwitchSection)
		if !ok {
			return
		}
		prevFrom := -1
		for i, off := 0, base; ; i, off = i+1, off+re2SwitchSize {
			head, ok := r.rec.u16(off)
			if !ok || head == terminator {
				return
			}
			floor, _ := r.rec.u8(off + re2SwitchFloor)
			from, _ := r.rec.u8(off + re2SwitchFromCam)
			to, _ := r.rec.u8(off + re2SwitchToCam)
			q, ok := r.rec.quad(off + re2SwitchQuad)
			if !ok {
				return
			}
			t := Trigger{
				From:     int(from),
				To:       int(to),
				Boundary: isRunStart(i, int(from), prevFrom),
				Floor:    int(floor),
				Quad:     q,
			}
			prevFrom = int(from)
			if !yield(t) {
				return
			}
		}
	}
}

func (r *re2Room) CheckCamSwitch(cur int, from, to Point) int {
	return checkSwitch(r.Triggers(), cur, from, to)
}

func (r *re2Room) CheckCamBoundary(cur int, from, to Point) bool {
	return checkBoundary(r.Triggers(), cur, from, to)
}
