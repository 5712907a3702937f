package capture

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/e7canasta/orion-care-sensor/modules/stillframe"
)

// callbackContext holds state needed by the appsink callback.
type callbackContext struct {
	Frames        chan<- *stillframe.Frame
	Width         int
	Height        int
	SourceStream  string
	FrameCounter  *uint64
	BytesRead     *uint64
	FramesDropped *uint64
}

// onNewSample is called by GStreamer when a new frame is available.
//
// The buffer is copied (GStreamer reuses it), split into I420 planes and
// sent non-blocking: when the channel is full the frame is dropped and
// counted. A corrupted sample is skipped rather than terminating the
// stream.
func onNewSample(sink *app.Sink, ctx *callbackContext) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		slog.Warn("capture: failed to pull sample from appsink, skipping frame")
		return gst.FlowOK
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		slog.Warn("capture: failed to get buffer from sample, skipping frame")
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) == 0 {
		buffer.Unmap()
		slog.Warn("capture: empty buffer received")
		return gst.FlowOK
	}

	// Copy frame data (GStreamer will reuse the buffer)
	frameData := make([]byte, len(data))
	copy(frameData, data)
	buffer.Unmap()

	seq := atomic.AddUint64(ctx.FrameCounter, 1)
	atomic.AddUint64(ctx.BytesRead, uint64(len(data)))

	frame, err := stillframe.FrameFromI420(frameData, ctx.Width, ctx.Height)
	if err != nil {
		// Caps negotiation guarantees I420 geometry; a short buffer means
		// the sample is corrupt, not that the stream format changed.
		slog.Warn("capture: sample does not fit I420 geometry, skipping frame",
			"err", err,
			"bytes", len(frameData),
		)
		return gst.FlowOK
	}
	frame.Seq = seq
	// Live sources carry no meaningful container PTS; the sequence number
	// keeps downstream ordering keys monotonic.
	frame.PTS = int64(seq)
	frame.Timestamp = time.Now()
	frame.TraceID = uuid.New().String()

	select {
	case ctx.Frames <- frame:
		slog.Debug("capture: frame sent",
			"seq", frame.Seq,
			"size_bytes", len(frameData),
			"trace_id", frame.TraceID,
		)
	default:
		atomic.AddUint64(ctx.FramesDropped, 1)
		slog.Debug("capture: dropping frame, channel full",
			"seq", frame.Seq,
			"trace_id", frame.TraceID,
		)
	}

	return gst.FlowOK
}

// onPadAdded links the dynamic rtspsrc pad to the depayloader.
func onPadAdded(srcPad *gst.Pad, sinkElement *gst.Element) {
	slog.Debug("capture: pad-added signal received", "pad", srcPad.GetName())

	sinkPad := sinkElement.GetStaticPad("sink")
	if sinkPad == nil {
		slog.Error("capture: failed to get sink pad from rtph264depay")
		return
	}

	if ret := srcPad.Link(sinkPad); ret != gst.PadLinkOK {
		slog.Error("capture: failed to link pads",
			"src_pad", srcPad.GetName(),
			"sink_pad", sinkPad.GetName(),
			"ret", ret,
		)
		return
	}

	slog.Debug("capture: pads linked", "src_pad", srcPad.GetName())
}
