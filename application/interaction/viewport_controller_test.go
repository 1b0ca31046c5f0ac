package interaction

import (
	"testing"
	"time"

	"slidecanvas/domain/config"
	"slidecanvas/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler runs queued frame callbacks only when ticked.
type manualScheduler struct {
	pending []func(time.Time)
}

func (s *manualScheduler) RequestFrame(fn func(now time.Time)) {
	s.pending = append(s.pending, fn)
}

func (s *manualScheduler) Tick(now time.Time) {
	run := s.pending
	s.pending = nil
	for _, fn := range run {
		fn(now)
	}
}

func TestEaseOutCubic(t *testing.T) {
	assert.Equal(t, 0.0, EaseOutCubic(-1))
	assert.Equal(t, 1.0, EaseOutCubic(2))
	assert.InDelta(t, 0.875, EaseOutCubic(0.5), 1e-9)
	assert.Greater(t, EaseOutCubic(0.25), 0.25)
}

func TestViewportController_InstantZoomKeepsFocus(t *testing.T) {
	vc := NewViewportController(valueobjects.NewViewport(800, 600), nil, nil)
	focus := valueobjects.Point{X: 123, Y: 321}
	before := vc.Viewport().ScreenToWorld(focus)

	vc.ZoomTo(3, &focus, false)

	assert.Equal(t, 3.0, vc.Viewport().Scale)
	after := vc.Viewport().ScreenToWorld(focus)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestViewportController_ZoomIsClamped(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	vc := NewViewportController(valueobjects.NewViewport(800, 600), cfg, nil)

	vc.ZoomTo(1000, nil, false)
	assert.Equal(t, cfg.MaxZoom, vc.Viewport().Scale)

	vc.ZoomBy(0.0001, nil)
	assert.Equal(t, cfg.MinZoom, vc.Viewport().Scale)
}

func TestViewportController_AnimatedZoomEasesAndKeepsFocus(t *testing.T) {
	sched := &manualScheduler{}
	vc := NewViewportController(valueobjects.NewViewport(800, 600), nil, sched)
	focus := valueobjects.Point{X: 200, Y: 150}
	world := vc.Viewport().ScreenToWorld(focus)

	var frames []valueobjects.Viewport
	vc.OnChange(func(v valueobjects.Viewport) { frames = append(frames, v) })

	vc.ZoomTo(2, &focus, true)
	require.True(t, vc.Animating())

	t0 := time.Unix(0, 0)
	for _, ms := range []int{0, 50, 125, 200, 300} {
		sched.Tick(t0.Add(time.Duration(ms) * time.Millisecond))
	}

	assert.False(t, vc.Animating())
	assert.Empty(t, sched.pending)
	assert.Equal(t, 2.0, vc.Viewport().Scale)
	require.Len(t, frames, 5)

	prev := 0.0
	for _, f := range frames {
		assert.GreaterOrEqual(t, f.Scale, prev)
		prev = f.Scale
		w := f.ScreenToWorld(focus)
		assert.InDelta(t, world.X, w.X, 1e-9)
		assert.InDelta(t, world.Y, w.Y, 1e-9)
	}
	// ease-out: more than half the change happens in the first half
	assert.Greater(t, frames[2].Scale, 1.5)
}

func TestViewportController_NewZoomPreemptsAnimation(t *testing.T) {
	sched := &manualScheduler{}
	vc := NewViewportController(valueobjects.NewViewport(800, 600), nil, sched)
	t0 := time.Unix(0, 0)

	vc.ZoomTo(4, nil, true)
	sched.Tick(t0)
	sched.Tick(t0.Add(100 * time.Millisecond))
	mid := vc.Viewport().Scale
	require.Greater(t, mid, 1.0)

	vc.ZoomTo(0.5, nil, true)
	sched.Tick(t0.Add(150 * time.Millisecond))
	sched.Tick(t0.Add(500 * time.Millisecond))

	assert.Equal(t, 0.5, vc.Viewport().Scale)
	assert.False(t, vc.Animating())
	assert.Empty(t, sched.pending, "the superseded animation must stop rescheduling")
}

func TestViewportController_PanCancelsAnimation(t *testing.T) {
	sched := &manualScheduler{}
	vc := NewViewportController(valueobjects.NewViewport(800, 600), nil, sched)

	vc.ZoomTo(2, nil, true)
	vc.Pan(10, 20)
	assert.False(t, vc.Animating())

	sched.Tick(time.Unix(0, 0))
	assert.Equal(t, 1.0, vc.Viewport().Scale)
	assert.Equal(t, 10.0, vc.Viewport().X)
	assert.Equal(t, 20.0, vc.Viewport().Y)
}

func TestViewportController_ResizeDuringAnimation(t *testing.T) {
	sched := &manualScheduler{}
	vc := NewViewportController(valueobjects.NewViewport(800, 600), nil, sched)
	t0 := time.Unix(0, 0)

	vc.ZoomTo(2, nil, true)
	sched.Tick(t0)
	vc.Resize(1024, 768)
	sched.Tick(t0.Add(time.Second))

	assert.Equal(t, 1024.0, vc.Viewport().Width)
	assert.Equal(t, 768.0, vc.Viewport().Height)
}

func TestViewportController_FitToBounds(t *testing.T) {
	vc := NewViewportController(valueobjects.NewViewport(800, 600), nil, nil)
	bounds := valueobjects.Rect{X: 1000, Y: 1000, Width: 350, Height: 250}

	vc.FitToBounds(bounds, true)

	v := vc.Viewport()
	center := v.WorldToScreen(bounds.Center())
	assert.InDelta(t, 400, center.X, 1e-9)
	assert.InDelta(t, 300, center.Y, 1e-9)
	assert.InDelta(t, 2.0, v.Scale, 1e-9)
}
