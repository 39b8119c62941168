package pin

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPixelFromPercent_RoundTrip(t *testing.T) {
	widths := []float64{1, 320, 800, 1000, 1366.5, 4096}

	for _, w := range widths {
		for p := 0.0; p <= 100; p += 0.25 {
			px := PixelFromPercent(p, w)
			assert.InDelta(t, p/100*w, px, 1e-9)
			assert.InDelta(t, p, PercentFromPixel(px, w), 1e-9, "p=%v w=%v", p, w)
		}
	}
}

func TestPixelFromPercent_NoClamping(t *testing.T) {
	assert.Equal(t, 1200.0, PixelFromPercent(150, 800))
	assert.Equal(t, -80.0, PixelFromPercent(-10, 800))
}

func TestPercentFromPixel_ZeroWidth(t *testing.T) {
	assert.Equal(t, 0.0, PercentFromPixel(100, 0))
	assert.Equal(t, 0.0, PercentFromPixel(100, -5))
}

func TestNewFrame(t *testing.T) {
	f := NewFrame(800, 1600, 1200)
	assert.Equal(t, Frame{Width: 800, Height: 600}, f)
	assert.True(t, f.Ready())

	square := NewFrame(500, 0, 0)
	assert.Equal(t, Frame{Width: 500, Height: 500}, square)

	assert.False(t, NewFrame(0, 1600, 1200).Ready())
	assert.False(t, NewFrame(math.NaN(), 1600, 1200).Ready())
	assert.False(t, NewFrame(-10, 1600, 1200).Ready())
}

func TestFrame_SizeUsesWidthOnly(t *testing.T) {
	tall := NewFrame(400, 1000, 3000)

	// 5% of a 400px wide image regardless of the 1200px height.
	assert.Equal(t, 20.0, tall.Size(5))

	anchor := tall.Anchor(50, 50)
	assert.Equal(t, 200.0, anchor.X)
	assert.Equal(t, 600.0, anchor.Y)
}

func TestSafeFloat(t *testing.T) {
	fv := 3.5
	var nilPtr *float64

	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"float", 12.5, 12.5},
		{"int", 7, 7},
		{"int64", int64(9), 9},
		{"pointer", &fv, 3.5},
		{"nil pointer", nilPtr, -1},
		{"json number", json.Number("42.25"), 42.25},
		{"numeric string", " 33.3 ", 33.3},
		{"percent string", "45%", 45},
		{"pixel string", "12px", 12},
		{"garbage string", "left", -1},
		{"empty string", "", -1},
		{"nil", nil, -1},
		{"bool", true, -1},
		{"nan", math.NaN(), -1},
		{"inf", math.Inf(1), -1},
		{"nan string", "NaN", -1},
		{"map", map[string]any{}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFloat(tt.in, -1))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "0", formatNumber(-0.0000001))
	assert.Equal(t, "14.142", formatNumber(14.142135623730951))
	assert.Equal(t, "80", formatNumber(80))
	assert.Equal(t, "0", formatNumber(math.NaN()))
	assert.Equal(t, "12.5px", px(12.5))
	assert.Equal(t, "50%", pct(50))
}
