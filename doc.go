// Package stillframe implements reverse decimation: it classifies a video
// stream into runs of mutually similar consecutive frames and emits exactly
// one representative frame per sufficiently long run.
//
// # Philosophy
//
// "A static scene is one frame of information."
//
// Orion watches scenes that are still most of the time. Forwarding thirty
// identical frames per second to downstream consumers wastes inference
// budget; forwarding none loses the scene entirely. stillframe keeps the
// middle ground: when a scene has provably been stable for MinDupCount
// consecutive frames, exactly one sample of it is surfaced.
//
// # Algorithm
//
// Two near-consecutive frames are compared with a coarse block metric: 8x8
// sum-of-absolute-difference windows slid over each plane with a step of 4.
// A single window above the Hi threshold, or more than Frac of the plane's
// 16x16 blocks above the Lo threshold, classifies the frames as different.
// Chroma planes are scanned with the same window size as luma, an accepted
// approximation that dilutes localized chroma-only changes.
//
// A run-length counter tracks consecutive "same" classifications. When it
// lands exactly on MinDupCount, the current frame is emitted; equality (not
// greater-or-equal) guarantees at most one emission per run. The most recent
// frame is always retained as the next comparison reference, whatever the
// keep/drop outcome.
//
// # Basic Usage
//
// Frame-at-a-time:
//
//	dec, err := stillframe.New(stillframe.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dec.Close()
//
//	for frame := range source {
//	    kept, err := dec.Process(frame)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if kept != nil {
//	        sink(kept)
//	    }
//	}
//
// Channel pipeline:
//
//	in := make(chan *stillframe.Frame, 8)
//	out := make(chan *stillframe.Frame, 8)
//	go func() {
//	    if err := stillframe.Stream(ctx, dec, in, out); err != nil {
//	        log.Printf("stream faulted: %v", err)
//	    }
//	    close(out)
//	}()
//
// # Zero-Copy Contract
//
// Frames are shared by pointer, never deep-copied on the hot path. The
// decimator retains the last processed frame as its reference, and an
// emitted frame is the input frame itself. Producers and consumers MUST NOT
// modify plane data after publish; call Frame.Clone when mutation is
// needed.
//
// # Supported Layouts
//
// Planar YUV with and without alpha (4:4:4, 4:2:2, 4:2:0, 4:1:1, 4:1:0,
// 4:4:0 families) and planar RGB (GBRP). Packed and semi-planar layouts
// must be converted before frames enter this package; the capture
// collaborator negotiates I420 from GStreamer for exactly this reason.
//
// # Module Context
//
// stillframe is part of the Orion modular architecture:
//
//   - Bounded Context: run-length frame decimation only (not capture, not
//     encoding, not inference)
//   - Dependencies: stdlib only (capture/ and cmd/ carry the transport deps)
//   - Clients: capture (producer), downstream scene consumers
package stillframe
