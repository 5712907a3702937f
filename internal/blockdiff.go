package internal

// Block sampling geometry of the difference metric. 8x8 SAD windows slid
// with a step of 4 in both directions; the leftmost 8 columns are skipped.
const (
	blockSize = 8
	blockStep = 4
)

// sad8x8 returns the sum of absolute differences between two 8x8 windows.
// cur and ref point at the top-left pixel of each window; the slices must
// reach at least 7 strides plus 8 bytes further.
func sad8x8(cur []byte, curStride int, ref []byte, refStride int) int {
	sum := 0
	for y := 0; y < blockSize; y++ {
		c := cur[y*curStride : y*curStride+blockSize]
		r := ref[y*refStride : y*refStride+blockSize]
		for x := 0; x < blockSize; x++ {
			d := int(c[x]) - int(r[x])
			if d < 0 {
				d = -d
			}
			sum += d
		}
	}
	return sum
}

// diffPlanes reports whether two equally sized planes differ significantly
// under the block metric.
//
// The scan is deliberately coarse: windows start at column 8, advance by 4,
// and stop 7 pixels short of each edge, so not every block is visited and no
// window ever reads past the plane bounds. Planes narrower or shorter than 8
// produce an empty scan and are judged identical; callers must tolerate
// that. For planes under 16 pixels in either dimension the changed-block
// budget collapses to zero, so a single Lo-exceeding window is decisive.
func diffPlanes(cur []byte, curStride int, ref []byte, refStride int, w, h int, cfg Config) bool {
	c := 0
	t := int(float64((w/16)*(h/16)) * cfg.Frac)

	for y := 0; y < h-(blockSize-1); y += blockStep {
		for x := blockSize; x < w-(blockSize-1); x += blockStep {
			d := sad8x8(cur[y*curStride+x:], curStride, ref[y*refStride+x:], refStride)
			if d > cfg.Hi {
				return true
			}
			if d > cfg.Lo {
				c++
				if c > t {
					return true
				}
			}
		}
	}
	return false
}

// frameDiffers reports whether cur differs from ref on any plane.
//
// Planes are visited in ref's order until one is absent or has zero stride,
// which supports formats with fewer planes than the maximum. A single
// differing plane rejects the whole frame. The 8x8 windows are applied to
// subsampled chroma planes without resizing; chroma block boundaries will
// not line up with luma structure, diluting localized chroma changes. That
// is an accepted approximation inherited from the metric's design.
func frameDiffers(cur, ref *Frame, cfg Config) bool {
	hsub, vsub := ref.Format.ChromaShift()

	for i := range ref.Planes {
		rp := &ref.Planes[i]
		if len(rp.Data) == 0 || rp.Stride == 0 {
			break
		}
		cp := &cur.Planes[i]

		hs, vs := 0, 0
		if i == 1 || i == 2 {
			hs, vs = hsub, vsub
		}
		w := CeilRShift(ref.Width, hs)
		h := CeilRShift(ref.Height, vs)

		if diffPlanes(cp.Data, cp.Stride, rp.Data, rp.Stride, w, h, cfg) {
			return true
		}
	}
	return false
}
