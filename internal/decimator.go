// Package internal implements the stillframe run-length decimator.
//
// This package is INTERNAL - clients MUST use the public API in the parent
// package. Reason: allows internal refactoring without breaking changes.
package internal

import "log/slog"

// Decimator is the run-length keep/drop state machine.
//
// It retains exactly one reference frame at a time (the most recently
// processed frame) and counts consecutive "same as reference"
// classifications. When the counter lands exactly on MinDupCount the current
// frame is surfaced as the run's representative.
//
// Counting convention: the very first frame, having no reference to compare
// against, counts as the start of a run and brings the counter to 1. The
// emission test is equality after the update, so each run surfaces at most
// one frame, and with MinDupCount=0 only frames that break a run (counter
// reset to 0) are ever emitted.
//
// Thread-safety: none. One stream, one goroutine, one Decimator. Concurrent
// access requires external coordination, which no caller should need given
// the frame-at-a-time model.
type Decimator struct {
	cfg Config

	// ref is the single-owner reference slot. Replaced on every Process
	// call, cleared by Close. Never stale by more than one frame.
	ref *Frame

	runLength int
	stats     DecimatorStats
}

// NewDecimator validates cfg and returns a decimator in its initial state:
// no reference frame, run length zero.
func NewDecimator(cfg Config) (*Decimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Decimator{cfg: cfg}, nil
}

// Config returns the immutable configuration.
func (d *Decimator) Config() Config {
	return d.cfg
}

// Process runs one state-machine transition for cur and returns the frame to
// emit, or nil when cur is suppressed.
//
// The reference slot is replaced with cur on every call, regardless of the
// keep/drop outcome. The emitted frame is cur itself: frames are immutable
// after publish, so retention and emission share the buffer instead of
// copying it.
//
// A frame whose geometry disagrees with the retained reference fails with
// ErrFormatMismatch before any pixel is read, leaving the decimator state
// untouched; the stream is considered faulted.
func (d *Decimator) Process(cur *Frame) (*Frame, error) {
	if cur == nil {
		return nil, ErrNilFrame
	}
	if d.ref != nil && !d.ref.SameGeometry(cur) {
		return nil, ErrFormatMismatch
	}

	if d.ref != nil && frameDiffers(cur, d.ref, d.cfg) {
		d.runLength = 0
		d.stats.RunsBroken++
	} else {
		d.runLength++
	}

	keep := d.runLength == d.cfg.MinDupCount

	slog.Debug("stillframe: frame classified",
		"keep", keep,
		"pts", cur.PTS,
		"seq", cur.Seq,
		"run_length", d.runLength,
	)

	// Single atomic swap of the reference slot.
	d.ref = cur

	d.stats.FramesIn++
	d.stats.CurrentRunLength = d.runLength
	if keep {
		d.stats.FramesKept++
		return cur, nil
	}
	return nil, nil
}

// RunLength returns the duplicate counter after the last transition.
func (d *Decimator) RunLength() int {
	return d.runLength
}

// Stats returns a snapshot of operational counters.
func (d *Decimator) Stats() DecimatorStats {
	return d.stats
}

// Close releases the reference frame. A run in progress that never reached
// MinDupCount emits nothing. Idempotent; the decimator may be reused for a
// fresh stream afterwards.
func (d *Decimator) Close() {
	d.ref = nil
	d.runLength = 0
	d.stats.CurrentRunLength = 0
}
