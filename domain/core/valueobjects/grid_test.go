package valueobjects

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapToGrid(t *testing.T) {
	tests := []struct {
		name     string
		input    Point
		enabled  bool
		expected Point
	}{
		{"within threshold snaps", Point{25, 41}, true, Point{20, 40}},
		{"exact multiple unchanged", Point{40, -60}, true, Point{40, -60}},
		{"boundary of threshold snaps", Point{46, 14}, true, Point{40, 20}},
		{"halfway stays put", Point{30, 10}, true, Point{30, 10}},
		{"beyond threshold on one axis", Point{7, 59}, true, Point{7, 60}},
		{"negative coordinates", Point{-21, -38}, true, Point{-20, -40}},
		{"disabled", Point{25, 41}, false, Point{25, 41}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SnapToGrid(tt.input, 20, 0.3, tt.enabled)
			assert.True(t, tt.expected.Equals(got), "expected %v, got %v", tt.expected, got)
		})
	}
}

func TestSnapToGrid_ZeroGridIsNoop(t *testing.T) {
	p := Point{X: 13, Y: 17}
	assert.Equal(t, p, SnapToGrid(p, 0, 0.3, true))
}

func TestGridLines_StayUnderCeiling(t *testing.T) {
	const maxLines = 400
	sizes := [][2]float64{{320, 240}, {1920, 1080}, {3840, 2160}, {8000, 8000}}
	scales := []float64{0.1, 0.25, 0.4, 0.5, 1, 2, 5, 10}
	offsets := []float64{0, 17.5, -9999, 12345}

	for _, size := range sizes {
		for _, scale := range scales {
			for _, off := range offsets {
				vp := Viewport{X: off, Y: -off, Scale: scale, Width: size[0], Height: size[1]}
				t.Run(fmt.Sprintf("%vx%v@%v/%v", size[0], size[1], scale, off), func(t *testing.T) {
					grid := vp.GridLines(20, 8, maxLines)
					assert.LessOrEqual(t, grid.Count(), maxLines)
					for _, x := range grid.Vertical {
						assert.True(t, x >= -1e-6 && x <= vp.Width+1e-6)
					}
					for _, y := range grid.Horizontal {
						assert.True(t, y >= -1e-6 && y <= vp.Height+1e-6)
					}
				})
			}
		}
	}
}

func TestGridLines_SkippedBelowMinimumSpacing(t *testing.T) {
	vp := Viewport{Scale: 0.3, Width: 800, Height: 600}
	assert.Equal(t, 0, vp.GridLines(20, 8, 400).Count())

	vp.Scale = 0.4
	assert.Greater(t, vp.GridLines(20, 8, 400).Count(), 0)
}

func TestGridLines_ZeroSizeViewport(t *testing.T) {
	assert.Equal(t, 0, Viewport{Scale: 1}.GridLines(20, 8, 400).Count())
	assert.Equal(t, 0, NewViewport(800, 600).GridLines(20, 8, 0).Count())
}

func TestGridLines_Positions(t *testing.T) {
	vp := Viewport{X: 10, Y: 0, Scale: 1, Width: 100, Height: 40}
	grid := vp.GridLines(20, 8, 400)

	assert.Equal(t, []float64{10, 30, 50, 70, 90}, grid.Vertical)
	assert.Equal(t, []float64{0, 20, 40}, grid.Horizontal)
	assert.Equal(t, 20.0, grid.Step)
}

func TestGridLines_StepDoublesWhenCapped(t *testing.T) {
	vp := Viewport{Scale: 1, Width: 1000, Height: 1000}
	grid := vp.GridLines(10, 8, 60)

	assert.LessOrEqual(t, grid.Count(), 60)
	assert.Equal(t, 40.0, grid.Step)
}

func BenchmarkGridLines(b *testing.B) {
	vp := Viewport{X: 13, Y: -7, Scale: 0.45, Width: 3840, Height: 2160}
	for i := 0; i < b.N; i++ {
		vp.GridLines(20, 8, 400)
	}
}
