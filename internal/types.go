package internal

import "errors"

// Internal errors - mapped to public errors in stillframe package
var (
	ErrInvalidConfig  = errors.New("stillframe: invalid configuration")
	ErrNilFrame       = errors.New("stillframe: nil frame")
	ErrFormatMismatch = errors.New("stillframe: frame geometry does not match stream geometry")
	ErrBufferTooSmall = errors.New("stillframe: pixel buffer smaller than frame geometry requires")
	ErrNotPlanar      = errors.New("stillframe: pixel format is not planar")
)

// Config holds the decimation thresholds. Immutable after NewDecimator.
//
// The block metric classifies two planes as "different" when either a single
// 8x8 sampling window's SAD exceeds Hi, or the number of windows whose SAD
// exceeds Lo passes the Frac share of the plane's 16x16 block count.
type Config struct {
	// MinDupCount is the number of consecutive "same" classifications a run
	// must accumulate before its representative frame is emitted.
	MinDupCount int

	// Hi is the per-window SAD above which two planes are immediately
	// declared different.
	Hi int

	// Lo is the per-window SAD above which a window counts toward the
	// changed-block tally.
	Lo int

	// Frac is the fraction (0..1) of blocks that may exceed Lo before the
	// planes are declared different.
	Frac float64
}

// Default thresholds of the original mpdecimate metric (8x8 SAD: 64*12, 64*5).
const (
	DefaultMinDupCount = 10
	DefaultHi          = 768
	DefaultLo          = 320
	DefaultFrac        = 0.33
)

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		MinDupCount: DefaultMinDupCount,
		Hi:          DefaultHi,
		Lo:          DefaultLo,
		Frac:        DefaultFrac,
	}
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.MinDupCount < 0 {
		return ErrInvalidConfig
	}
	if c.Frac < 0 || c.Frac > 1 {
		return ErrInvalidConfig
	}
	return nil
}

// DecimatorStats is a snapshot of decimator operational state.
type DecimatorStats struct {
	// FramesIn is the total number of frames processed.
	FramesIn uint64

	// FramesKept is the total number of representative frames emitted.
	FramesKept uint64

	// RunsBroken counts "different" classifications, i.e. run boundaries.
	RunsBroken uint64

	// CurrentRunLength is the duplicate counter after the last transition.
	CurrentRunLength int
}
