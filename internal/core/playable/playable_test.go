package playable

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/yndnr/ledwall-go/internal/codec"
	"github.com/yndnr/ledwall-go/internal/core/domain"
	"github.com/yndnr/ledwall-go/internal/core/frame"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

// stubCodec returns canned content and fails on the payload "corrupt".
type stubCodec struct{}

func (stubCodec) Size() (int, int) { return 8, 4 }

func (stubCodec) DecodeImage(data []byte) (*image.RGBA, error) {
	if string(data) == "corrupt" {
		return nil, errors.New("bad image")
	}
	return frame.Solid(8, 4, red), nil
}

func (stubCodec) DecodeAnimation(data []byte) (*codec.Animation, error) {
	if string(data) == "corrupt" {
		return nil, errors.New("bad animation")
	}
	return &codec.Animation{
		Frames: []*image.RGBA{frame.Solid(8, 4, red), frame.Solid(8, 4, green)},
		Delays: []time.Duration{time.Millisecond, time.Millisecond},
	}, nil
}

func (stubCodec) RenderText(data []byte) ([]codec.Strip, error) {
	if string(data) == "corrupt" {
		return nil, codec.ErrNoLines
	}
	return []codec.Strip{{Image: frame.Solid(16, 4, blue), Text: string(data)}}, nil
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		rec     domain.Record
		want    domain.Kind
		wantErr error
	}{
		{"image", domain.Record{Kind: domain.KindImage, Data: []byte("x")}, domain.KindImage, nil},
		{"animation", domain.Record{Kind: domain.KindAnimation, Data: []byte("x")}, domain.KindAnimation, nil},
		{"text", domain.Record{Kind: domain.KindText, Data: []byte("x")}, domain.KindText, nil},
		{"empty", domain.EmptyRecord(), 0, domain.ErrSlotUnavailable},
		{"corrupt image", domain.Record{Kind: domain.KindImage, Data: []byte("corrupt")}, 0, domain.ErrContentCorrupt},
		{"corrupt animation", domain.Record{Kind: domain.KindAnimation, Data: []byte("corrupt")}, 0, domain.ErrContentCorrupt},
		{"corrupt text", domain.Record{Kind: domain.KindText, Data: []byte("corrupt")}, 0, domain.ErrContentCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.rec, stubCodec{}, DefaultTextOptions())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if p.Kind() != tt.want {
				t.Errorf("Kind() = %v, want %v", p.Kind(), tt.want)
			}
		})
	}
}

func TestStill_HonoursMinimum(t *testing.T) {
	sink := frame.NewRecorder()
	s := &Still{Frame: frame.Solid(8, 4, red)}

	start := time.Now()
	if err := s.Play(context.Background(), sink, Options{Minimum: 60 * time.Millisecond}); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("Play() returned after %v, before the minimum", elapsed)
	}
	if sink.Len() != 1 {
		t.Errorf("writes = %d, want 1", sink.Len())
	}
}

func TestStill_NoMinimumReturnsImmediately(t *testing.T) {
	sink := frame.NewRecorder()
	s := &Still{Frame: frame.Solid(8, 4, red)}

	if err := s.Play(context.Background(), sink, Options{}); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if sink.Len() != 1 {
		t.Errorf("writes = %d, want 1", sink.Len())
	}
}

func TestStill_CancelDuringMinimum(t *testing.T) {
	sink := frame.NewRecorder()
	s := &Still{Frame: frame.Solid(8, 4, red)}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	start := time.Now()
	err := s.Play(ctx, sink, Options{Minimum: 10 * time.Second})
	if !IsCancelled(err) {
		t.Fatalf("Play() error = %v, want cancellation", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation observed after %v", elapsed)
	}
}

func TestAnimation_PlaysOnceWithoutMinimum(t *testing.T) {
	sink := frame.NewRecorder()
	a := &Animation{
		Frames: []*image.RGBA{frame.Solid(8, 4, red), frame.Solid(8, 4, green), frame.Solid(8, 4, blue)},
		Delays: []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond},
	}

	if err := a.Play(context.Background(), sink, Options{}); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	got := sink.Colors()
	want := []color.RGBA{red, green, blue}
	if len(got) != len(want) {
		t.Fatalf("writes = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAnimation_LoopsWithinMinimum(t *testing.T) {
	sink := frame.NewRecorder()
	a := &Animation{
		Frames: []*image.RGBA{frame.Solid(8, 4, red), frame.Solid(8, 4, green)},
		Delays: []time.Duration{10 * time.Millisecond, 10 * time.Millisecond},
	}

	start := time.Now()
	if err := a.Play(context.Background(), sink, Options{Minimum: 50 * time.Millisecond}); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Play() returned after %v, before the minimum", elapsed)
	}
	if sink.Len() < 4 {
		t.Errorf("writes = %d, want the animation to loop at least once", sink.Len())
	}
	if sink.Len()%2 != 0 {
		t.Errorf("writes = %d, loops should complete whole sequences", sink.Len())
	}
}

func TestAnimation_LoopStopsOnCancel(t *testing.T) {
	sink := frame.NewRecorder()
	a := &Animation{
		Frames: []*image.RGBA{frame.Solid(8, 4, red), frame.Solid(8, 4, green)},
		Delays: []time.Duration{5 * time.Millisecond, 5 * time.Millisecond},
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Play(ctx, sink, Options{Loop: true}) }()

	if !sink.WaitFor(6, time.Second) {
		t.Fatalf("looping animation produced only %d frames", sink.Len())
	}
	cancel()

	select {
	case err := <-done:
		if !IsCancelled(err) {
			t.Errorf("Play() error = %v, want cancellation", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Play() did not return after cancel")
	}

	n := sink.Len()
	time.Sleep(30 * time.Millisecond)
	if sink.Len() != n {
		t.Errorf("frames written after Play returned: %d -> %d", n, sink.Len())
	}
}

func TestAnimation_SinkErrorStopsPlayback(t *testing.T) {
	boom := errors.New("panel unplugged")
	a := &Animation{Frames: []*image.RGBA{frame.Solid(8, 4, red)}}
	sink := frame.SinkFunc(func(image.Image) error { return boom })

	if err := a.Play(context.Background(), sink, Options{Loop: true}); !errors.Is(err, boom) {
		t.Errorf("Play() error = %v, want %v", err, boom)
	}
}

func TestScroller_WindowsAndWrap(t *testing.T) {
	// A 16px strip on an 8px matrix: offsets start at -4 and the line ends
	// once the offset reaches 16-4 = 12.
	strip := frame.Solid(16, 4, blue)
	for x := 8; x < 16; x++ {
		for y := 0; y < 4; y++ {
			strip.Set(x, y, red)
		}
	}
	s := NewScroller([]codec.Strip{{Image: strip}}, 8, 4, TextOptions{Speed: 4000, FPS: 1000})

	sink := frame.NewRecorder()
	if err := s.Play(context.Background(), sink, Options{}); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	writes := sink.Writes()
	// offsets -4, 0, 4, 8
	if len(writes) != 4 {
		t.Fatalf("writes = %d, want 4", len(writes))
	}
	for i, w := range writes {
		if w.Frame.Bounds().Dx() != 8 || w.Frame.Bounds().Dy() != 4 {
			t.Errorf("frame %d bounds = %v, want 8x4", i, w.Frame.Bounds())
		}
	}
	if got := writes[0].Frame.RGBAAt(0, 0); got != blue {
		t.Errorf("first window = %v, want the strip start", got)
	}
	if got := writes[3].Frame.RGBAAt(0, 0); got != red {
		t.Errorf("last window = %v, want the clamped strip end", got)
	}
}

func TestScroller_MultipleLinesInOrder(t *testing.T) {
	strips := []codec.Strip{
		{Image: frame.Solid(8, 4, red)},
		{Image: frame.Solid(8, 4, green)},
	}
	s := NewScroller(strips, 8, 4, TextOptions{Speed: 8000, FPS: 1000})

	sink := frame.NewRecorder()
	if err := s.Play(context.Background(), sink, Options{}); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	colors := sink.Colors()
	if len(colors) == 0 || colors[0] != red || colors[len(colors)-1] != green {
		t.Errorf("colors = %v, want red lines before green ones", colors)
	}
}

func TestScroller_LoopsWithinMinimum(t *testing.T) {
	s := NewScroller([]codec.Strip{{Image: frame.Solid(8, 4, red)}}, 8, 4, TextOptions{Speed: 8000, FPS: 500})

	start := time.Now()
	sink := frame.NewRecorder()
	if err := s.Play(context.Background(), sink, Options{Minimum: 40 * time.Millisecond}); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Play() returned after %v, before the minimum", elapsed)
	}
}
