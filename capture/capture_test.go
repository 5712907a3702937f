package capture

import (
	"context"
	"testing"

	"github.com/e7canasta/orion-care-sensor/modules/stillframe"
)

// Pipeline construction needs a GStreamer installation, so tests cover the
// parts that run before any pipeline exists: configuration validation and
// caps rendering.

func TestConfigValidate(t *testing.T) {
	valid := Config{
		URL:          "rtsp://camera.local/stream",
		Width:        1280,
		Height:       720,
		TargetFPS:    2.0,
		SourceStream: "LQ",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing URL", func(c *Config) { c.URL = "" }},
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -1 }},
		{"fps too low", func(c *Config) { c.TargetFPS = 0.01 }},
		{"fps too high", func(c *Config) { c.TargetFPS = 60 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("config %+v accepted, want error", cfg)
			}
		})
	}
}

func TestNewRTSPStreamRejectsBadConfig(t *testing.T) {
	if _, err := NewRTSPStream(Config{}); err == nil {
		t.Error("NewRTSPStream accepted empty config")
	}
}

func TestBuildI420Caps(t *testing.T) {
	cases := []struct {
		width, height int
		fps           float64
		want          string
	}{
		{1280, 720, 2.0, "video/x-raw,format=I420,width=1280,height=720,framerate=2/1"},
		{640, 480, 0.5, "video/x-raw,format=I420,width=640,height=480,framerate=1/2"},
		{1920, 1080, 30, "video/x-raw,format=I420,width=1920,height=1080,framerate=30/1"},
	}
	for _, tc := range cases {
		if got := buildI420Caps(tc.width, tc.height, tc.fps); got != tc.want {
			t.Errorf("buildI420Caps(%d, %d, %v) = %q, want %q",
				tc.width, tc.height, tc.fps, got, tc.want)
		}
	}
}

// TestStopResetsForRestart validates the stream survives a Stop/Start
// cycle: Stop must hand the next Start a fresh, open frame channel, never
// the one it just closed, and must close the old channel for existing
// consumers.
func TestStopResetsForRestart(t *testing.T) {
	s, err := NewRTSPStream(Config{
		URL:       "rtsp://camera.local/stream",
		Width:     640,
		Height:    480,
		TargetFPS: 1.0,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Arm the lifecycle context the way Start does; no pipeline exists, so
	// Stop exercises only the channel and state handling.
	s.ctx, s.cancel = context.WithCancel(context.Background())
	first := s.frames

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if s.cancel != nil {
		t.Error("cancel not cleared after Stop")
	}
	if s.framesClosed.Load() {
		t.Error("framesClosed not reset after Stop")
	}
	if s.frames == first {
		t.Fatal("frame channel not recreated after Stop")
	}

	// Old channel closed for consumers still draining it.
	select {
	case _, ok := <-first:
		if ok {
			t.Error("old frame channel delivered a frame after Stop")
		}
	default:
		t.Error("old frame channel not closed by Stop")
	}

	// Fresh channel must be open: a send must succeed, not panic.
	s.frames <- &stillframe.Frame{}
}

func TestStopBeforeStart(t *testing.T) {
	s, err := NewRTSPStream(Config{
		URL:       "rtsp://camera.local/stream",
		Width:     640,
		Height:    480,
		TargetFPS: 1.0,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop before Start failed: %v", err)
	}
}
