// Package stillframe surfaces one representative frame from each long run
// of near-identical video frames.
//
// It is the inverse of a duplicate-dropping filter: instead of discarding
// frames that match their predecessor, it locates stable runs and emits a
// single sample from each, suppressing everything else.
//
// Public API Stability:
//
// This package follows semantic versioning. The public API (types,
// interfaces, errors) is considered stable and will not change in
// backwards-incompatible ways without a major version bump. Internal
// implementation can evolve freely.
package stillframe

import (
	"context"
	"log/slog"

	"github.com/e7canasta/orion-care-sensor/modules/stillframe/internal"
)

// Decimator is the public interface of the run-length decimation state
// machine.
//
// Lifecycle: New() → Process() per frame → Close().
//
// Not safe for concurrent use: the stream model is strictly one frame at a
// time, fully classified before the next frame is accepted. Feed it from a
// single goroutine (Stream does exactly that).
type Decimator interface {
	// Process runs one transition for cur and returns the frame to emit,
	// or nil when cur is suppressed.
	//
	// Contract:
	//   - cur MUST NOT be nil (ErrNilFrame otherwise)
	//   - cur's plane data MUST NOT be modified after the call
	//     (immutability contract: the decimator retains cur by pointer)
	//   - cur's geometry MUST match the previous frame's
	//     (ErrFormatMismatch otherwise; the stream is then faulted)
	//
	// The retained reference is replaced with cur on every call,
	// regardless of the keep/drop outcome.
	Process(cur *Frame) (*Frame, error)

	// RunLength returns the duplicate counter after the last transition.
	// The first frame of a stream brings it to 1; a "different"
	// classification resets it to 0.
	RunLength() int

	// Stats returns a snapshot of operational counters.
	Stats() DecimatorStats

	// Config returns the immutable configuration.
	Config() Config

	// Close releases the retained reference frame. A run still in
	// progress that never reached MinDupCount emits nothing. Idempotent.
	Close()
}

// New creates a Decimator with the given thresholds.
//
// Returns ErrInvalidConfig if MinDupCount is negative or Frac is outside
// [0,1]. Use DefaultConfig() for the stock mpdecimate thresholds.
func New(cfg Config) (Decimator, error) {
	return internal.NewDecimator(cfg)
}

// Stream drains in through d, forwarding each kept frame to out.
//
// It returns when in is closed (normal end of stream, nil error), ctx is
// cancelled (ctx.Err()), or Process fails (the stream is faulted and the
// error is returned). The decimator is closed on every return path, which
// releases the retained reference frame. Stream never closes in or out; the
// channels belong to the caller.
//
// Sends to out block until the consumer is ready or ctx is cancelled; run
// the consumer concurrently or give out enough buffer.
func Stream(ctx context.Context, d Decimator, in <-chan *Frame, out chan<- *Frame) error {
	defer d.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cur, ok := <-in:
			if !ok {
				stats := d.Stats()
				slog.Info("stillframe: stream drained",
					"frames_in", stats.FramesIn,
					"frames_kept", stats.FramesKept,
					"runs_broken", stats.RunsBroken,
				)
				return nil
			}
			kept, err := d.Process(cur)
			if err != nil {
				slog.Error("stillframe: stream faulted", "err", err, "seq", cur.Seq)
				return err
			}
			if kept == nil {
				continue
			}
			select {
			case out <- kept:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
