package internal

import "time"

// PixelFormat identifies a planar pixel layout supported by the decimator.
//
// Only planar formats are representable: every plane is an independent
// rectangular buffer with its own stride. Packed and semi-planar layouts
// must be converted by the capture collaborator before frames enter this
// package.
type PixelFormat int

const (
	// I420 is planar YUV 4:2:0 (yuv420p), the capture default.
	I420 PixelFormat = iota
	// YUV422P is planar YUV 4:2:2.
	YUV422P
	// YUV444P is planar YUV 4:4:4.
	YUV444P
	// YUV411P is planar YUV 4:1:1.
	YUV411P
	// YUV410P is planar YUV 4:1:0.
	YUV410P
	// YUV440P is planar YUV 4:4:0.
	YUV440P
	// YUVA420P is planar YUV 4:2:0 with an alpha plane.
	YUVA420P
	// YUVA422P is planar YUV 4:2:2 with an alpha plane.
	YUVA422P
	// YUVA444P is planar YUV 4:4:4 with an alpha plane.
	YUVA444P
	// GBRP is planar RGB (green, blue, red plane order), no subsampling.
	GBRP
)

// formatDesc captures the static geometry of a pixel format.
type formatDesc struct {
	name       string
	planeCount int
	hsub, vsub int // log2 chroma subsampling shifts for planes 1 and 2
}

var formatTable = map[PixelFormat]formatDesc{
	I420:     {name: "I420", planeCount: 3, hsub: 1, vsub: 1},
	YUV422P:  {name: "YUV422P", planeCount: 3, hsub: 1, vsub: 0},
	YUV444P:  {name: "YUV444P", planeCount: 3, hsub: 0, vsub: 0},
	YUV411P:  {name: "YUV411P", planeCount: 3, hsub: 2, vsub: 0},
	YUV410P:  {name: "YUV410P", planeCount: 3, hsub: 2, vsub: 2},
	YUV440P:  {name: "YUV440P", planeCount: 3, hsub: 0, vsub: 1},
	YUVA420P: {name: "YUVA420P", planeCount: 4, hsub: 1, vsub: 1},
	YUVA422P: {name: "YUVA422P", planeCount: 4, hsub: 1, vsub: 0},
	YUVA444P: {name: "YUVA444P", planeCount: 4, hsub: 0, vsub: 0},
	GBRP:     {name: "GBRP", planeCount: 3, hsub: 0, vsub: 0},
}

// String returns the conventional format name.
func (f PixelFormat) String() string {
	if d, ok := formatTable[f]; ok {
		return d.name
	}
	return "unknown"
}

// Valid reports whether f is a supported planar format.
func (f PixelFormat) Valid() bool {
	_, ok := formatTable[f]
	return ok
}

// PlaneCount returns the number of planes the format carries (1-4).
func (f PixelFormat) PlaneCount() int {
	return formatTable[f].planeCount
}

// ChromaShift returns the log2 horizontal and vertical subsampling factors
// applied to planes 1 and 2. Luma and alpha planes are never subsampled.
func (f PixelFormat) ChromaShift() (hsub, vsub int) {
	d := formatTable[f]
	return d.hsub, d.vsub
}

// CeilRShift divides v by 2^shift, rounding up. Chroma plane dimensions are
// derived from luma dimensions with this, matching AV_CEIL_RSHIFT.
func CeilRShift(v, shift int) int {
	return (v + (1 << shift) - 1) >> shift
}

// PlaneDims returns the width and height of plane idx for a frame of the
// given luma dimensions. Planes 1 and 2 are the subsampled chroma planes;
// plane 0 (luma/green) and plane 3 (alpha) are full size.
func (f PixelFormat) PlaneDims(idx, width, height int) (w, h int) {
	if idx == 1 || idx == 2 {
		hsub, vsub := f.ChromaShift()
		return CeilRShift(width, hsub), CeilRShift(height, vsub)
	}
	return width, height
}

// Plane is one channel of a frame: a rectangular pixel buffer with its own
// stride. Stride may exceed Width for alignment padding.
type Plane struct {
	Data   []byte
	Stride int
	Width  int
	Height int
}

// Frame is a planar video frame.
//
// IMMUTABILITY CONTRACT: plane data MUST NOT be modified after the frame is
// handed to a Decimator or published on a channel. Retention inside the
// decimator is by shared pointer, not by copy; use Clone when mutation is
// required downstream.
type Frame struct {
	// Format is the planar pixel layout.
	Format PixelFormat

	// Width and Height are the luma-plane dimensions in pixels.
	Width  int
	Height int

	// Planes holds 1-4 planes in format order.
	Planes []Plane

	// PTS is the presentation timestamp in the source timebase. The
	// decimator never interprets it beyond pass-through.
	PTS int64

	// Timestamp is the capture wall-clock time.
	Timestamp time.Time

	// Seq is a monotonic sequence number assigned by the producer.
	Seq uint64

	// TraceID is a unique identifier for distributed tracing.
	TraceID string
}

// NewFrame allocates a frame with tightly packed planes (stride == width)
// for the given format and luma dimensions.
func NewFrame(format PixelFormat, width, height int) (*Frame, error) {
	if !format.Valid() {
		return nil, ErrNotPlanar
	}
	f := &Frame{Format: format, Width: width, Height: height}
	for i := 0; i < format.PlaneCount(); i++ {
		w, h := format.PlaneDims(i, width, height)
		f.Planes = append(f.Planes, Plane{
			Data:   make([]byte, w*h),
			Stride: w,
			Width:  w,
			Height: h,
		})
	}
	return f, nil
}

// FrameFromI420 splits a packed I420 buffer (Y plane followed by quarter-size
// U and V planes) into a Frame without copying pixel data.
//
// The buffer must hold at least width*height*3/2 bytes; trailing bytes are
// ignored. The returned frame aliases buf, so buf falls under the frame's
// immutability contract.
func FrameFromI420(buf []byte, width, height int) (*Frame, error) {
	cw := CeilRShift(width, 1)
	ch := CeilRShift(height, 1)
	need := width*height + 2*cw*ch
	if len(buf) < need {
		return nil, ErrBufferTooSmall
	}
	ySize := width * height
	cSize := cw * ch
	return &Frame{
		Format: I420,
		Width:  width,
		Height: height,
		Planes: []Plane{
			{Data: buf[:ySize], Stride: width, Width: width, Height: height},
			{Data: buf[ySize : ySize+cSize], Stride: cw, Width: cw, Height: ch},
			{Data: buf[ySize+cSize : ySize+2*cSize], Stride: cw, Width: cw, Height: ch},
		},
	}, nil
}

// Clone returns a deep copy of the frame with tightly packed planes.
// Metadata (PTS, Timestamp, Seq, TraceID) is carried over unchanged.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		Format:    f.Format,
		Width:     f.Width,
		Height:    f.Height,
		PTS:       f.PTS,
		Timestamp: f.Timestamp,
		Seq:       f.Seq,
		TraceID:   f.TraceID,
	}
	for _, p := range f.Planes {
		cp := Plane{
			Data:   make([]byte, p.Width*p.Height),
			Stride: p.Width,
			Width:  p.Width,
			Height: p.Height,
		}
		for row := 0; row < p.Height; row++ {
			copy(cp.Data[row*cp.Stride:row*cp.Stride+p.Width],
				p.Data[row*p.Stride:row*p.Stride+p.Width])
		}
		out.Planes = append(out.Planes, cp)
	}
	return out
}

// SameGeometry reports whether two frames share format, dimensions and
// plane count. Strides are allowed to differ between frames.
func (f *Frame) SameGeometry(other *Frame) bool {
	return f.Format == other.Format &&
		f.Width == other.Width &&
		f.Height == other.Height &&
		len(f.Planes) == len(other.Planes)
}
