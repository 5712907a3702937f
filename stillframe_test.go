package stillframe_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/e7canasta/orion-care-sensor/modules/stillframe"
)

// sceneFrame builds a 64x64 I420 frame with uniform luma. Equal luma means
// "same scene" under the block metric; a large luma jump is a hard cut.
func sceneFrame(t *testing.T, seq uint64, luma byte) *stillframe.Frame {
	t.Helper()
	f, err := stillframe.NewFrame(stillframe.I420, 64, 64)
	if err != nil {
		t.Fatal(err)
	}
	for i := range f.Planes[0].Data {
		f.Planes[0].Data[i] = luma
	}
	for p := 1; p < 3; p++ {
		for i := range f.Planes[p].Data {
			f.Planes[p].Data[i] = 128
		}
	}
	f.Seq = seq
	f.PTS = int64(seq)
	return f
}

// TestStreamTwoScenes validates the channel collaborator end to end: two
// static scenes, one representative frame each, PTS passed through
// unchanged.
func TestStreamTwoScenes(t *testing.T) {
	dec, err := stillframe.New(stillframe.Config{
		MinDupCount: 3,
		Hi:          stillframe.DefaultHi,
		Lo:          stillframe.DefaultLo,
		Frac:        stillframe.DefaultFrac,
	})
	if err != nil {
		t.Fatal(err)
	}

	in := make(chan *stillframe.Frame, 8)
	out := make(chan *stillframe.Frame, 8)

	lumas := []byte{16, 16, 16, 16, 200, 200, 200, 200}
	frames := make([]*stillframe.Frame, len(lumas))
	for i, luma := range lumas {
		frames[i] = sceneFrame(t, uint64(i+1), luma)
	}
	go func() {
		defer close(in)
		for _, f := range frames {
			in <- f
		}
	}()

	if err := stillframe.Stream(context.Background(), dec, in, out); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	close(out)

	var gotSeqs []uint64
	var gotPTS []int64
	for frame := range out {
		gotSeqs = append(gotSeqs, frame.Seq)
		gotPTS = append(gotPTS, frame.PTS)
	}

	if diff := cmp.Diff([]uint64{3, 8}, gotSeqs); diff != "" {
		t.Errorf("kept frames mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{3, 8}, gotPTS); diff != "" {
		t.Errorf("PTS not passed through (-want +got):\n%s", diff)
	}

	stats := dec.Stats()
	if stats.FramesIn != 8 || stats.FramesKept != 2 {
		t.Errorf("stats %+v, want 8 in / 2 kept", stats)
	}
	if got := stillframe.KeepRate(stats); got != 0.25 {
		t.Errorf("KeepRate = %v, want 0.25", got)
	}
	if got := stillframe.SuppressRate(stats); got != 0.75 {
		t.Errorf("SuppressRate = %v, want 0.75", got)
	}
}

// TestStreamFaultsOnGeometryChange validates a mid-stream resolution change
// faults the stream with ErrFormatMismatch.
func TestStreamFaultsOnGeometryChange(t *testing.T) {
	dec, err := stillframe.New(stillframe.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	in := make(chan *stillframe.Frame, 2)
	out := make(chan *stillframe.Frame, 2)

	in <- sceneFrame(t, 1, 16)
	small, err := stillframe.NewFrame(stillframe.I420, 32, 32)
	if err != nil {
		t.Fatal(err)
	}
	small.Seq = 2
	in <- small
	close(in)

	err = stillframe.Stream(context.Background(), dec, in, out)
	if !errors.Is(err, stillframe.ErrFormatMismatch) {
		t.Errorf("Stream err=%v, want ErrFormatMismatch", err)
	}
}

// TestStreamCancellation validates Stream honours context cancellation while
// waiting for input.
func TestStreamCancellation(t *testing.T) {
	dec, err := stillframe.New(stillframe.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	in := make(chan *stillframe.Frame)
	out := make(chan *stillframe.Frame)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- stillframe.Stream(ctx, dec, in, out)
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Stream err=%v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Stream did not return after cancellation")
	}
}

// TestHelperRatesEmpty validates the rate helpers before any frame.
func TestHelperRatesEmpty(t *testing.T) {
	var stats stillframe.DecimatorStats
	if got := stillframe.KeepRate(stats); got != 0.0 {
		t.Errorf("KeepRate of empty stats = %v, want 0", got)
	}
	if got := stillframe.SuppressRate(stats); got != 0.0 {
		t.Errorf("SuppressRate of empty stats = %v, want 0", got)
	}
}

// TestFrameFromI420Facade validates the re-exported constructor round-trips
// capture-shaped buffers.
func TestFrameFromI420Facade(t *testing.T) {
	w, h := 64, 48
	buf := make([]byte, w*h*3/2)
	f, err := stillframe.FrameFromI420(buf, w, h)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Planes) != 3 {
		t.Fatalf("plane count %d, want 3", len(f.Planes))
	}
	if _, err := stillframe.FrameFromI420(buf[:10], w, h); !errors.Is(err, stillframe.ErrBufferTooSmall) {
		t.Errorf("short buffer err=%v, want ErrBufferTooSmall", err)
	}
}
