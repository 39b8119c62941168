package pin

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/pinshelf/pinshelf-server/internal/domain"
)

func TestHexToRGBA(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		opacity float64
		want    string
	}{
		{"with hash", "#ff8800", 0.8, "rgba(255,136,0,0.8)"},
		{"without hash", "00ff00", 1, "rgba(0,255,0,1)"},
		{"uppercase", "#FFFFFF", 0.25, "rgba(255,255,255,0.25)"},
		{"not a color", "not-a-color", 0.5, FallbackRGBA},
		{"short hex", "#fff", 0.9, FallbackRGBA},
		{"bad digits", "#zzzzzz", 0.9, FallbackRGBA},
		{"empty", "", 0.3, FallbackRGBA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HexToRGBA(tt.hex, tt.opacity))
		})
	}

	assert.Equal(t, "rgba(0,0,0,0.5)", HexToRGBA("not-a-color", 0.5))
}

func TestComputedShadow(t *testing.T) {
	s := ComputedShadow{Angle: 0, Distance: 2, Blur: 1, Color: "#000000", Opacity: 0.5}
	assert.Equal(t, "20px 0px 10px rgba(0,0,0,0.5)", s.CSS(1000))

	s.Angle = 90
	assert.Equal(t, "0px 20px 10px rgba(0,0,0,0.5)", s.CSS(1000))

	s.Angle = 180
	dx, dy := s.Offset()
	assert.InDelta(t, -2, dx, 1e-9)
	assert.InDelta(t, 0, dy, 1e-9)
}

func TestShadowFor_DefaultsProduceComputedShadow(t *testing.T) {
	p := Normalize(domain.RecipePin{})

	shadow := ShadowFor(p)
	computed, ok := shadow.(ComputedShadow)
	assert.True(t, ok)
	assert.Equal(t, ComputedShadow{Angle: 45, Distance: 2, Blur: 2, Color: "#000000", Opacity: 0.5}, computed)
	assert.Equal(t, "14.142px 14.142px 20px rgba(0,0,0,0.5)", shadow.CSS(1000))
}

func TestShadowFor_NamedColor(t *testing.T) {
	c := "red"
	shadow := ShadowFor(Normalize(domain.RecipePin{PinStyle: domain.PinStyle{TagShadowColor: &c}}))
	assert.Contains(t, shadow.CSS(1000), "rgba(255,0,0,0.5)")
}

func TestShadowFor_RawOverrideWins(t *testing.T) {
	raw := "1px 1px 0 #fff, -1px -1px 0 #000"
	angle := 10.0
	p := Normalize(domain.RecipePin{PinStyle: domain.PinStyle{TagTextShadow: &raw, TagShadowAngle: &angle}})

	shadow := ShadowFor(p)
	assert.Equal(t, RawShadow(raw), shadow)
	assert.Equal(t, raw, shadow.CSS(1000))
}

func TestRawShadow_Scrubbed(t *testing.T) {
	s := RawShadow("1px 1px red; background:url(https://evil.example/x.png)")
	css := s.CSS(800)
	assert.NotContains(t, css, ";")
	assert.NotContains(t, css, "url(")
}

func TestDashArray(t *testing.T) {
	tests := []struct {
		lineType string
		want     []float64
	}{
		{domain.LineTypeDashed, []float64{80, 40}},
		{domain.LineTypeDotted, []float64{20, 20}},
		{domain.LineTypeSolid, nil},
		{domain.LineTypeWavy, nil},
		{domain.LineTypeHandDrawn, nil},
		{"zigzag", nil},
	}

	for _, tt := range tests {
		t.Run(tt.lineType, func(t *testing.T) {
			// 2% of a 1000px image.
			got := DashArray(tt.lineType, PixelFromPercent(2, 1000))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DashArray mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestShapeFor(t *testing.T) {
	tests := []struct {
		shape string
		want  ShapeStyle
	}{
		{domain.DotShapeCircle, ShapeStyle{Shape: "circle", BorderRadius: "50%"}},
		{domain.DotShapeSquare, ShapeStyle{Shape: "square"}},
		{domain.DotShapeDiamond, ShapeStyle{Shape: "diamond", BorderRadius: "2px", ClipPath: DiamondClipPath}},
		{domain.DotShapeTriangle, ShapeStyle{Shape: "triangle", ClipPath: TriangleClipPath}},
		{"hexagon", ShapeStyle{Shape: "square"}},
		{"", ShapeStyle{Shape: "square"}},
	}

	for _, tt := range tests {
		t.Run(tt.shape, func(t *testing.T) {
			assert.Equal(t, tt.want, ShapeFor(tt.shape))
		})
	}
}

func TestBackgroundFor(t *testing.T) {
	f := Frame{Width: 1000, Height: 500}

	t.Run("fills text container by default", func(t *testing.T) {
		b := BackgroundFor(Normalize(domain.RecipePin{}), f)
		assert.False(t, b.Explicit)
		assert.Equal(t, "rgba(255,255,255,0.8)", b.Color)
		assert.Contains(t, b.CSS(), "width:100%;height:100%")
		assert.Contains(t, b.CSS(), "z-index:-1")
	})

	t.Run("explicit size with offsets", func(t *testing.T) {
		w, h, ox, oy := 20.0, 5.0, -1.0, 0.5
		p := Normalize(domain.RecipePin{PinStyle: domain.PinStyle{
			TagBackgroundWidthPercent:   &w,
			TagBackgroundHeightPercent:  &h,
			TagBackgroundOffsetXPercent: &ox,
			TagBackgroundOffsetYPercent: &oy,
		}})

		b := BackgroundFor(p, f)
		assert.True(t, b.Explicit)
		assert.Equal(t, 200.0, b.Width)
		assert.Equal(t, 50.0, b.Height)
		assert.Equal(t, -10.0, b.OffsetX)
		assert.Equal(t, 5.0, b.OffsetY)
		assert.Contains(t, b.CSS(), "left:-10px;top:5px;width:200px;height:50px")
	})

	t.Run("named color blends with opacity", func(t *testing.T) {
		c, op := "White", 0.8
		p := Normalize(domain.RecipePin{PinStyle: domain.PinStyle{TagBackgroundColor: &c, TagBackgroundOpacity: &op}})
		assert.Equal(t, "#ffffff", p.TagBackgroundColor)
		assert.Equal(t, "rgba(255,255,255,0.8)", BackgroundFor(p, f).Color)
	})

	t.Run("unknown color falls back", func(t *testing.T) {
		c := "notacolor"
		p := Normalize(domain.RecipePin{PinStyle: domain.PinStyle{TagBackgroundColor: &c}})
		assert.Equal(t, FallbackRGBA, BackgroundFor(p, f).Color)
	})

	t.Run("width alone is not explicit", func(t *testing.T) {
		w := 20.0
		p := Normalize(domain.RecipePin{PinStyle: domain.PinStyle{TagBackgroundWidthPercent: &w}})
		assert.False(t, BackgroundFor(p, f).Explicit)
	})

	t.Run("border in pixels", func(t *testing.T) {
		bw, br, bc := 0.2, 1.0, "#333333"
		p := Normalize(domain.RecipePin{PinStyle: domain.PinStyle{
			TagBorderWidthPercent:  &bw,
			TagBorderRadiusPercent: &br,
			TagBorderColor:         &bc,
		}})
		css := BackgroundFor(p, f).CSS()
		assert.Contains(t, css, "border:2px solid #333333;")
		assert.Contains(t, css, "border-radius:10px;")
	})
}

func TestTextStyleFor(t *testing.T) {
	f := Frame{Width: 800, Height: 600}

	t.Run("bold overrides stored weight", func(t *testing.T) {
		bold, weight := true, "300"
		p := Normalize(domain.RecipePin{PinStyle: domain.PinStyle{TagBold: &bold, TagFontWeight: &weight}})
		assert.Equal(t, "bold", TextStyleFor(p, f).FontWeight)
	})

	t.Run("stored weight without bold", func(t *testing.T) {
		weight := "300"
		p := Normalize(domain.RecipePin{PinStyle: domain.PinStyle{TagFontWeight: &weight}})
		assert.Equal(t, "300", TextStyleFor(p, f).FontWeight)
	})

	t.Run("decorations and writing mode", func(t *testing.T) {
		yes := true
		transform := "uppercase"
		size := 2.5
		p := Normalize(domain.RecipePin{PinStyle: domain.PinStyle{
			TagItalic:          &yes,
			TagUnderline:       &yes,
			TagVerticalWriting: &yes,
			TagTextTransform:   &transform,
			TagFontSizePercent: &size,
		}})

		ts := TextStyleFor(p, f)
		assert.Equal(t, "italic", ts.FontStyle)
		assert.Equal(t, "underline", ts.TextDecoration)
		assert.Equal(t, "vertical-rl", ts.WritingMode)
		assert.Equal(t, "uppercase", ts.TextTransform)
		assert.Equal(t, 20.0, ts.FontSize)
	})

	t.Run("text transform defaults to none", func(t *testing.T) {
		bogus := "capitalize-ish"
		assert.Equal(t, "none", TextStyleFor(Normalize(domain.RecipePin{}), f).TextTransform)
		p := Normalize(domain.RecipePin{PinStyle: domain.PinStyle{TagTextTransform: &bogus}})
		assert.Equal(t, "none", TextStyleFor(p, f).TextTransform)
	})

	t.Run("stroke converted to pixels", func(t *testing.T) {
		sc, sw := "#000000", 0.25
		p := Normalize(domain.RecipePin{PinStyle: domain.PinStyle{TagTextStrokeColor: &sc, TagTextStrokeWidth: &sw}})
		ts := TextStyleFor(p, f)
		assert.Equal(t, 2.0, ts.StrokeWidth)
		assert.Contains(t, ts.CSS(), "-webkit-text-stroke:2px #000000;")
	})

	t.Run("css has no unresolved values", func(t *testing.T) {
		css := TextStyleFor(Normalize(domain.RecipePin{}), f).CSS()
		assert.False(t, strings.Contains(css, "NaN"))
		assert.Contains(t, css, "text-shadow:")
	})
}
