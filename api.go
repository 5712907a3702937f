package stillframe

import "github.com/e7canasta/orion-care-sensor/modules/stillframe/internal"

// Public API - Re-export internal types as stable contract

// PixelFormat identifies a supported planar pixel layout.
type PixelFormat = internal.PixelFormat

const (
	// I420 is planar YUV 4:2:0 (yuv420p), the capture default.
	I420 = internal.I420
	// YUV422P is planar YUV 4:2:2.
	YUV422P = internal.YUV422P
	// YUV444P is planar YUV 4:4:4.
	YUV444P = internal.YUV444P
	// YUV411P is planar YUV 4:1:1.
	YUV411P = internal.YUV411P
	// YUV410P is planar YUV 4:1:0.
	YUV410P = internal.YUV410P
	// YUV440P is planar YUV 4:4:0.
	YUV440P = internal.YUV440P
	// YUVA420P is planar YUV 4:2:0 with alpha.
	YUVA420P = internal.YUVA420P
	// YUVA422P is planar YUV 4:2:2 with alpha.
	YUVA422P = internal.YUVA422P
	// YUVA444P is planar YUV 4:4:4 with alpha.
	YUVA444P = internal.YUVA444P
	// GBRP is planar RGB, no subsampling.
	GBRP = internal.GBRP
)

// Frame is a planar video frame with metadata.
type Frame = internal.Frame

// Plane is one channel of a frame.
type Plane = internal.Plane

// Config holds the decimation thresholds.
type Config = internal.Config

// DecimatorStats is a snapshot of decimator counters.
type DecimatorStats = internal.DecimatorStats

// Default thresholds of the block-difference metric.
const (
	DefaultMinDupCount = internal.DefaultMinDupCount
	DefaultHi          = internal.DefaultHi
	DefaultLo          = internal.DefaultLo
	DefaultFrac        = internal.DefaultFrac
)

// Public API errors - Re-export internal errors as stable contract
var (
	ErrInvalidConfig  = internal.ErrInvalidConfig
	ErrNilFrame       = internal.ErrNilFrame
	ErrFormatMismatch = internal.ErrFormatMismatch
	ErrBufferTooSmall = internal.ErrBufferTooSmall
	ErrNotPlanar      = internal.ErrNotPlanar
)

// DefaultConfig returns the stock thresholds (min=10, hi=768, lo=320,
// frac=0.33).
func DefaultConfig() Config {
	return internal.DefaultConfig()
}

// NewFrame allocates a frame with tightly packed planes.
func NewFrame(format PixelFormat, width, height int) (*Frame, error) {
	return internal.NewFrame(format, width, height)
}

// FrameFromI420 wraps a packed I420 buffer as a three-plane frame without
// copying pixel data.
func FrameFromI420(buf []byte, width, height int) (*Frame, error) {
	return internal.FrameFromI420(buf, width, height)
}
