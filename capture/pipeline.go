package capture

import (
	"fmt"
	"log/slog"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// pipelineElements holds references to the GStreamer elements needed for
// callback wiring and cleanup.
type pipelineElements struct {
	Pipeline *gst.Pipeline
	AppSink  *app.Sink
	RTSPSrc  *gst.Element
	Depay    *gst.Element
}

// createPipeline builds the capture pipeline, configured but not started
// (state remains NULL). The final capsfilter locks the appsink to planar
// I420 at the target resolution and frame rate, which is the only layout
// the decimator accepts without conversion.
func createPipeline(cfg Config) (*pipelineElements, error) {
	// Safe to call multiple times
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	rtspsrc, err := gst.NewElement("rtspsrc")
	if err != nil {
		return nil, fmt.Errorf("failed to create rtspsrc: %w", err)
	}
	rtspsrc.SetProperty("location", cfg.URL)
	rtspsrc.SetProperty("protocols", 4) // TCP only
	rtspsrc.SetProperty("latency", 200)

	depay, err := gst.NewElement("rtph264depay")
	if err != nil {
		return nil, fmt.Errorf("failed to create rtph264depay: %w", err)
	}

	decoder, err := gst.NewElement("avdec_h264")
	if err != nil {
		return nil, fmt.Errorf("failed to create avdec_h264: %w", err)
	}
	decoder.SetProperty("max-threads", 0) // auto-detect cores
	decoder.SetProperty("output-corrupt", false)

	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("failed to create videoconvert: %w", err)
	}
	converter.SetProperty("n-threads", 0)

	scaler, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, fmt.Errorf("failed to create videoscale: %w", err)
	}

	videorate, err := gst.NewElement("videorate")
	if err != nil {
		return nil, fmt.Errorf("failed to create videorate: %w", err)
	}
	videorate.SetProperty("drop-only", true)     // only drop frames, never duplicate
	videorate.SetProperty("skip-to-first", true) // skip to first frame on start

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("failed to create capsfilter: %w", err)
	}
	capsStr := buildI420Caps(cfg.Width, cfg.Height, cfg.TargetFPS)
	capsfilter.SetProperty("caps", gst.NewCapsFromString(capsStr))
	slog.Debug("capture: I420 format lock enabled", "caps", capsStr)

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("failed to create appsink: %w", err)
	}
	appsink.SetProperty("sync", false)    // no clock sync (real-time)
	appsink.SetProperty("max-buffers", 1) // keep only latest frame
	appsink.SetProperty("drop", true)     // drop old frames

	pipeline.AddMany(
		rtspsrc,
		depay,
		decoder,
		converter,
		scaler,
		videorate,
		capsfilter,
		appsink.Element,
	)

	// rtspsrc has dynamic pads, linked in the pad-added callback
	if err := gst.ElementLinkMany(
		depay,
		decoder,
		converter,
		scaler,
		videorate,
		capsfilter,
		appsink.Element,
	); err != nil {
		return nil, fmt.Errorf("failed to link pipeline elements: %w", err)
	}

	return &pipelineElements{
		Pipeline: pipeline,
		AppSink:  appsink,
		RTSPSrc:  rtspsrc,
		Depay:    depay,
	}, nil
}

// destroyPipeline tears the pipeline down to NULL state.
func destroyPipeline(elements *pipelineElements) {
	if elements == nil || elements.Pipeline == nil {
		return
	}
	if err := elements.Pipeline.SetState(gst.StateNull); err != nil {
		slog.Error("capture: failed to set pipeline to NULL", "error", err)
	}
}

// buildI420Caps renders the caps string locking format, resolution and
// frame rate. Fractional FPS below 1 Hz maps to framerate=1/N.
func buildI420Caps(width, height int, fps float64) string {
	numerator := 1
	denominator := 1
	if fps < 1.0 {
		denominator = int(1.0 / fps)
	} else {
		numerator = int(fps)
	}
	return fmt.Sprintf(
		"video/x-raw,format=I420,width=%d,height=%d,framerate=%d/%d",
		width, height, numerator, denominator,
	)
}
