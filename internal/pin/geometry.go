// Package pin resolves stored recipe pins into positioned, styled overlays.
//
// Pins store every coordinate and size as a percentage of the rendered image
// width. This package converts them to pixels for one concrete rendered width,
// resolves colors, shadows, dash patterns and shapes, and builds an Overlay that
// can be serialized, rendered to HTML or rasterized.
package pin

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// PixelFromPercent converts a percent of the rendered width to pixels.
// Values outside [0,100] are not clamped and land off-canvas.
func PixelFromPercent(p, renderedWidth float64) float64 {
	return p / 100 * renderedWidth
}

// PercentFromPixel is the inverse of PixelFromPercent. It returns 0 when the
// rendered width is not positive.
func PercentFromPixel(px, renderedWidth float64) float64 {
	if renderedWidth <= 0 {
		return 0
	}
	return px / renderedWidth * 100
}

// Frame is the on-screen box of the base image.
type Frame struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewFrame derives the rendered height from the image's intrinsic aspect ratio.
// Without intrinsic dimensions the frame is square.
func NewFrame(renderedWidth float64, intrinsicWidth, intrinsicHeight int) Frame {
	w := SafeFloat(renderedWidth, 0)
	if w <= 0 {
		return Frame{}
	}
	h := w
	if intrinsicWidth > 0 && intrinsicHeight > 0 {
		h = w * float64(intrinsicHeight) / float64(intrinsicWidth)
	}
	return Frame{Width: w, Height: h}
}

// Ready reports whether the frame has laid out. Nothing size-dependent may be
// computed against a frame that is not ready.
func (f Frame) Ready() bool {
	return f.Width > 0
}

// Size converts a size percent to pixels. Sizes always scale with width so
// dots stay round on non-square images.
func (f Frame) Size(p float64) float64 {
	return PixelFromPercent(p, f.Width)
}

// Anchor converts an (x%, y%) position to pixels within the frame. Unlike
// sizes, y is a percent of the frame height, matching CSS top.
func (f Frame) Anchor(xPercent, yPercent float64) Point {
	return Point{
		X: PixelFromPercent(xPercent, f.Width),
		Y: PixelFromPercent(yPercent, f.Height),
	}
}

// Point is a pixel position within a Frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec returns p as a gonum vector.
func (p Point) Vec() r2.Vec { return r2.Vec(p) }

// SafeFloat coerces loosely typed numeric input. Numbers, numeric strings
// (optionally suffixed with "%" or "px") and json.Number are accepted;
// anything else, and any NaN or infinite result, yields def.
func SafeFloat(v any, def float64) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case *float64:
		if n == nil {
			return def
		}
		f = *n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return def
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimSuffix(s, "%")
		s = strings.TrimSuffix(s, "px")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return def
		}
		f = parsed
	default:
		return def
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// formatNumber prints v with at most three decimals and no trailing zeros.
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// px formats a pixel length for CSS.
func px(v float64) string {
	return formatNumber(v) + "px"
}

// pct formats a percentage for CSS.
func pct(v float64) string {
	return formatNumber(v) + "%"
}
