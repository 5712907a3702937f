// Package capture acquires planar video frames from an RTSP source and
// feeds them to a stillframe decimator.
//
// It owns the pixel-format negotiation the decimator refuses to do: the
// GStreamer pipeline is locked to planar I420 output, so every frame on the
// channel is safe to hand to stillframe.Decimator.Process.
//
// Pipeline: rtspsrc → rtph264depay → avdec_h264 → videoconvert →
// videoscale → videorate → capsfilter(I420) → appsink.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/e7canasta/orion-care-sensor/modules/stillframe"
)

// Config contains configuration for RTSP stream capture.
type Config struct {
	// URL is the RTSP stream URL (required).
	URL string
	// Width and Height are the target frame dimensions (required).
	Width  int
	Height int
	// TargetFPS is the target frames per second (0.1 - 30.0).
	TargetFPS float64
	// SourceStream identifies the stream (e.g., "LQ", "HQ").
	SourceStream string
}

// Validate reports configuration problems before any pipeline exists.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("capture: RTSP URL is required")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("capture: invalid dimensions %dx%d", c.Width, c.Height)
	}
	if c.TargetFPS < 0.1 || c.TargetFPS > 30.0 {
		return fmt.Errorf("capture: target FPS %.2f outside 0.1-30.0", c.TargetFPS)
	}
	return nil
}

// StreamStats contains current stream statistics.
type StreamStats struct {
	// FrameCount is the total number of frames captured.
	FrameCount uint64
	// FramesDropped is the total number of frames dropped (channel full).
	FramesDropped uint64
	// BytesRead is the total bytes pulled from the appsink.
	BytesRead uint64
	// SourceStream identifies the stream.
	SourceStream string
	// IsConnected indicates whether the pipeline is currently running.
	IsConnected bool
}

// Provider defines the contract for video stream acquisition.
//
// Implementations must guarantee:
//   - Start() returns immediately (non-blocking)
//   - the returned channel stays open until Stop()
//   - Stop() is idempotent
//   - Stats() is thread-safe
type Provider interface {
	// Start initializes the stream and returns a read-only channel of
	// frames. Frames start arriving asynchronously once the pipeline
	// reaches PLAYING state. Frames are sent non-blocking: when the
	// channel buffer is full, frames are dropped rather than queued.
	Start(ctx context.Context) (<-chan *stillframe.Frame, error)

	// Stop gracefully shuts down the stream and closes the frame channel.
	// Safe to call multiple times.
	Stop() error

	// Stats returns a snapshot of capture counters.
	Stats() StreamStats
}

// RTSPStream captures planar I420 frames from an RTSP source.
type RTSPStream struct {
	cfg Config

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	elements *pipelineElements
	started  time.Time
	wg       sync.WaitGroup

	frames       chan *stillframe.Frame
	framesClosed atomic.Bool

	frameCount    uint64
	bytesRead     uint64
	framesDropped uint64
}

// NewRTSPStream validates cfg and creates a stream in the stopped state.
func NewRTSPStream(cfg Config) (*RTSPStream, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &RTSPStream{
		cfg:    cfg,
		frames: make(chan *stillframe.Frame, 10),
	}

	slog.Info("capture: RTSP stream created",
		"url", cfg.URL,
		"resolution", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"target_fps", cfg.TargetFPS,
		"source_stream", cfg.SourceStream,
	)

	return s, nil
}

// Start builds the GStreamer pipeline, moves it to PLAYING and returns the
// frame channel. Returns an error if the stream was already started or the
// pipeline cannot be constructed.
func (s *RTSPStream) Start(ctx context.Context) (<-chan *stillframe.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return nil, fmt.Errorf("capture: stream already started")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = time.Now()

	elements, err := createPipeline(s.cfg)
	if err != nil {
		return nil, fmt.Errorf("capture: failed to create pipeline: %w", err)
	}
	s.elements = elements

	cbCtx := &callbackContext{
		Frames:        s.frames,
		Width:         s.cfg.Width,
		Height:        s.cfg.Height,
		SourceStream:  s.cfg.SourceStream,
		FrameCounter:  &s.frameCount,
		BytesRead:     &s.bytesRead,
		FramesDropped: &s.framesDropped,
	}

	elements.AppSink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(sink *app.Sink) gst.FlowReturn {
			return onNewSample(sink, cbCtx)
		},
	})

	// rtspsrc pads appear only after stream negotiation
	elements.RTSPSrc.Connect("pad-added", func(self *gst.Element, srcPad *gst.Pad) {
		onPadAdded(srcPad, elements.Depay)
	})

	if err := elements.Pipeline.SetState(gst.StatePlaying); err != nil {
		return nil, fmt.Errorf("capture: failed to start pipeline: %w", err)
	}

	s.wg.Add(1)
	go s.monitorPipeline()

	slog.Info("capture: RTSP stream started",
		"url", s.cfg.URL,
		"note", "frames arrive asynchronously once pipeline reaches PLAYING state",
	)

	return s.frames, nil
}

// monitorPipeline watches the pipeline bus until shutdown or fatal error.
func (s *RTSPStream) monitorPipeline() {
	defer s.wg.Done()

	bus := s.elements.Pipeline.GetPipelineBus()

	for {
		select {
		case <-s.ctx.Done():
			slog.Debug("capture: context cancelled, stopping pipeline monitor")
			return
		default:
			// Short poll keeps shutdown responsive
			msg := bus.TimedPop(50 * time.Millisecond)
			if msg == nil {
				continue
			}

			switch msg.Type() {
			case gst.MessageEOS:
				slog.Info("capture: end of stream received",
					"url", s.cfg.URL,
					"uptime", time.Since(s.started),
					"frames", atomic.LoadUint64(&s.frameCount),
				)
				return
			case gst.MessageError:
				gerr := msg.ParseError()
				slog.Error("capture: pipeline error",
					"error", gerr.Error(),
					"debug", gerr.DebugString(),
					"url", s.cfg.URL,
				)
				return
			}
		}
	}
}

// Stop shuts the pipeline down and closes the frame channel. Idempotent.
func (s *RTSPStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		slog.Debug("capture: stream not started, nothing to stop")
		return nil
	}

	slog.Info("capture: stopping RTSP stream")
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Debug("capture: goroutines stopped cleanly")
	case <-time.After(3 * time.Second):
		slog.Warn("capture: stop timeout exceeded, some goroutines may still be running")
	}

	if s.elements != nil {
		destroyPipeline(s.elements)
		s.elements = nil
	}

	if s.framesClosed.CompareAndSwap(false, true) {
		close(s.frames)
		slog.Debug("capture: frame channel closed")
	}

	slog.Info("capture: RTSP stream stopped",
		"frames_captured", atomic.LoadUint64(&s.frameCount),
		"uptime", time.Since(s.started),
	)

	// Reset state for potential restart: a second Start must hand out a
	// fresh, open channel, never the one just closed.
	s.cancel = nil
	s.ctx = nil
	s.frames = make(chan *stillframe.Frame, 10)
	s.framesClosed.Store(false)

	return nil
}

// Stats returns a snapshot of capture counters. Thread-safe.
func (s *RTSPStream) Stats() StreamStats {
	s.mu.Lock()
	connected := s.cancel != nil
	s.mu.Unlock()

	return StreamStats{
		FrameCount:    atomic.LoadUint64(&s.frameCount),
		FramesDropped: atomic.LoadUint64(&s.framesDropped),
		BytesRead:     atomic.LoadUint64(&s.bytesRead),
		SourceStream:  s.cfg.SourceStream,
		IsConnected:   connected,
	}
}
