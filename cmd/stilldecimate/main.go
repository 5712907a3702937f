// Command stilldecimate runs reverse decimation over a video file.
//
// It decodes the input to raw yuv420p frames through an ffmpeg pipe, feeds
// them to the stillframe decimator and writes each kept representative
// frame to the output directory as a PNG.
//
// Usage:
//
//	stilldecimate --in recording.mp4 --out ./stills --min 10
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/e7canasta/orion-care-sensor/modules/stillframe"
)

const version = "v0.1.0"

func main() {
	inPath := flag.String("in", "", "Input video file (required)")
	outDir := flag.String("out", "stills", "Directory for kept frames")
	minDup := flag.Int("min", stillframe.DefaultMinDupCount, "Consecutive duplicates required before a frame is kept")
	hi := flag.Int("hi", stillframe.DefaultHi, "High per-block SAD threshold")
	lo := flag.Int("lo", stillframe.DefaultLo, "Low per-block SAD threshold")
	frac := flag.Float64("frac", stillframe.DefaultFrac, "Fraction of changed blocks that rejects a frame (0-1)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("stilldecimate %s\n", version)
		os.Exit(0)
	}

	if *inPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --in flag is required\n\n")
		fmt.Fprintf(os.Stderr, "Usage example:\n")
		fmt.Fprintf(os.Stderr, "  stilldecimate --in recording.mp4 --out ./stills --min 10\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	if err := run(*inPath, *outDir, stillframe.Config{
		MinDupCount: *minDup,
		Hi:          *hi,
		Lo:          *lo,
		Frac:        *frac,
	}); err != nil {
		slog.Error("stilldecimate failed", "error", err)
		os.Exit(1)
	}
}

func run(inPath, outDir string, cfg stillframe.Config) error {
	width, height, err := probeGeometry(inPath)
	if err != nil {
		return fmt.Errorf("probe %s: %w", inPath, err)
	}
	slog.Info("input probed", "path", inPath, "resolution", fmt.Sprintf("%dx%d", width, height))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	dec, err := stillframe.New(cfg)
	if err != nil {
		return err
	}
	defer dec.Close()

	// Decode to raw planar yuv420p through a pipe; frames arrive as fixed
	// size chunks of width*height*3/2 bytes.
	r, w := io.Pipe()
	cmd := ffmpeg.Input(inPath).
		Output("pipe:1", ffmpeg.KwArgs{
			"format":  "rawvideo",
			"pix_fmt": "yuv420p",
		}).
		WithOutput(w).
		WithErrorOutput(os.Stderr)
	cmd.Context = context.Background()

	go func() {
		w.CloseWithError(cmd.Run())
	}()

	frameSize := width*height + 2*((width+1)/2)*((height+1)/2)
	kept := 0
	var seq uint64

	for {
		buf := make([]byte, frameSize)
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				slog.Warn("truncated trailing frame ignored")
				break
			}
			return fmt.Errorf("read frame %d: %w", seq, err)
		}

		frame, err := stillframe.FrameFromI420(buf, width, height)
		if err != nil {
			return fmt.Errorf("frame %d: %w", seq, err)
		}
		seq++
		frame.Seq = seq
		frame.PTS = int64(seq)

		keptFrame, err := dec.Process(frame)
		if err != nil {
			return fmt.Errorf("decimate frame %d: %w", seq, err)
		}
		if keptFrame == nil {
			continue
		}

		kept++
		if err := savePNG(outDir, keptFrame); err != nil {
			return fmt.Errorf("save frame %d: %w", keptFrame.Seq, err)
		}
		slog.Info("kept representative frame", "seq", keptFrame.Seq, "run_length", dec.RunLength())
	}

	stats := dec.Stats()
	slog.Info("done",
		"frames_in", stats.FramesIn,
		"frames_kept", stats.FramesKept,
		"keep_rate", fmt.Sprintf("%.4f", stillframe.KeepRate(stats)),
		"output_dir", outDir,
	)
	if kept == 0 {
		slog.Warn("no run reached the duplicate threshold, nothing written")
	}
	return nil
}

// videoProbe mirrors the ffprobe JSON layout for the fields we need.
type videoProbe struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// probeGeometry returns the dimensions of the first video stream.
func probeGeometry(path string) (width, height int, err error) {
	probeStr, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe: %w", err)
	}

	var probe videoProbe
	if err := json.Unmarshal([]byte(probeStr), &probe); err != nil {
		return 0, 0, fmt.Errorf("parse ffprobe output: %w", err)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType == "video" && stream.Width > 0 && stream.Height > 0 {
			return stream.Width, stream.Height, nil
		}
	}
	return 0, 0, errors.New("no video stream found")
}

// savePNG writes a kept I420 frame as frame_<seq>.png.
func savePNG(outDir string, frame *stillframe.Frame) error {
	img := &image.YCbCr{
		Y:              frame.Planes[0].Data,
		Cb:             frame.Planes[1].Data,
		Cr:             frame.Planes[2].Data,
		YStride:        frame.Planes[0].Stride,
		CStride:        frame.Planes[1].Stride,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, frame.Width, frame.Height),
	}

	name := filepath.Join(outDir, fmt.Sprintf("frame_%06d.png", frame.Seq))
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}
