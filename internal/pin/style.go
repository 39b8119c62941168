package pin

import (
	"math"
	"regexp"
	"strings"

	"github.com/pinshelf/pinshelf-server/internal/color"
	"github.com/pinshelf/pinshelf-server/internal/domain"
)

// FallbackRGBA is returned by HexToRGBA for anything that is not #RRGGBB.
const FallbackRGBA = "rgba(0,0,0,0.5)"

// HexToRGBA converts "#RRGGBB" plus an opacity to a CSS rgba() string.
// The leading # is optional. Short or malformed input yields FallbackRGBA.
func HexToRGBA(hex string, opacity float64) string {
	if len(strings.TrimPrefix(strings.TrimSpace(hex), "#")) != 6 {
		return FallbackRGBA
	}
	c, ok := color.ParseHex(hex)
	if !ok || math.IsNaN(opacity) || math.IsInf(opacity, 0) {
		return FallbackRGBA
	}
	return "rgba(" + formatNumber(float64(c.R)) + "," + formatNumber(float64(c.G)) + "," +
		formatNumber(float64(c.B)) + "," + formatNumber(opacity) + ")"
}

// Shadow is a label text shadow: either ComputedShadow or RawShadow.
type Shadow interface {
	// CSS returns the text-shadow value for a frame of the given rendered width.
	CSS(renderedWidth float64) string
	isShadow()
}

// ComputedShadow is a shadow built from structured fields. Angle is in degrees,
// 0 pointing right and increasing counter-clockwise. Distance and Blur are
// percents of the rendered width.
type ComputedShadow struct {
	Angle    float64 `json:"angle"`
	Distance float64 `json:"distance"`
	Blur     float64 `json:"blur"`
	Color    string  `json:"color"`
	Opacity  float64 `json:"opacity"`
}

// Offset returns the shadow displacement in percent units.
func (s ComputedShadow) Offset() (dx, dy float64) {
	rad := s.Angle * math.Pi / 180
	return math.Cos(rad) * s.Distance, math.Sin(rad) * s.Distance
}

// CSS implements Shadow as "{dx}px {dy}px {blur}px {rgba}".
func (s ComputedShadow) CSS(renderedWidth float64) string {
	dx, dy := s.Offset()
	return px(PixelFromPercent(dx, renderedWidth)) + " " +
		px(PixelFromPercent(dy, renderedWidth)) + " " +
		px(PixelFromPercent(s.Blur, renderedWidth)) + " " +
		HexToRGBA(s.Color, s.Opacity)
}

func (ComputedShadow) isShadow() {}

// RawShadow is an author-supplied text-shadow value used verbatim.
type RawShadow string

// CSS implements Shadow. The value is scrubbed of characters that could end
// the declaration.
func (s RawShadow) CSS(float64) string {
	return scrubCSS(string(s))
}

func (RawShadow) isShadow() {}

// ShadowFor resolves a pin's shadow. A non-empty raw override always wins.
func ShadowFor(p Pin) Shadow {
	if strings.TrimSpace(p.TagTextShadow) != "" {
		return RawShadow(p.TagTextShadow)
	}
	return ComputedShadow{
		Angle:    p.TagShadowAngle,
		Distance: p.TagShadowDistance,
		Blur:     p.TagShadowBlur,
		Color:    p.TagShadowColor,
		Opacity:  p.TagShadowOpacity,
	}
}

// DashArray returns the SVG stroke-dasharray for a line type, or nil for a
// solid line. Wavy and hand-drawn lines render solid.
func DashArray(lineType string, lineWidthPx float64) []float64 {
	switch lineType {
	case domain.LineTypeDashed:
		return []float64{4 * lineWidthPx, 2 * lineWidthPx}
	case domain.LineTypeDotted:
		return []float64{lineWidthPx, lineWidthPx}
	default:
		return nil
	}
}

// Clip paths for the non-rectangular dot shapes.
const (
	DiamondClipPath  = "polygon(50% 0%, 100% 50%, 50% 100%, 0% 50%)"
	TriangleClipPath = "polygon(50% 0%, 100% 100%, 0% 100%)"
)

// ShapeStyle is the border radius and clip path that give a dot its shape.
type ShapeStyle struct {
	Shape        string `json:"shape"`
	BorderRadius string `json:"borderRadius,omitempty"`
	ClipPath     string `json:"clipPath,omitempty"`
}

// ShapeFor maps a dot shape to its CSS. Unknown shapes render square.
func ShapeFor(shape string) ShapeStyle {
	switch shape {
	case domain.DotShapeCircle:
		return ShapeStyle{Shape: shape, BorderRadius: "50%"}
	case domain.DotShapeDiamond:
		return ShapeStyle{Shape: shape, BorderRadius: "2px", ClipPath: DiamondClipPath}
	case domain.DotShapeTriangle:
		return ShapeStyle{Shape: shape, ClipPath: TriangleClipPath}
	default:
		return ShapeStyle{Shape: domain.DotShapeSquare}
	}
}

// BackgroundBox is the label's background, drawn behind the text.
// When Explicit is false it fills the text container and the size fields are zero.
type BackgroundBox struct {
	Explicit     bool    `json:"explicit"`
	Width        float64 `json:"width,omitempty"`
	Height       float64 `json:"height,omitempty"`
	OffsetX      float64 `json:"offsetX,omitempty"`
	OffsetY      float64 `json:"offsetY,omitempty"`
	Color        string  `json:"color"`
	BorderColor  string  `json:"borderColor,omitempty"`
	BorderWidth  float64 `json:"borderWidth"`
	BorderRadius float64 `json:"borderRadius"`
}

// BackgroundFor resolves the background box of a pin's label. The box is sized
// explicitly only when both width and height percents are positive.
func BackgroundFor(p Pin, f Frame) BackgroundBox {
	b := BackgroundBox{
		Color:        HexToRGBA(p.TagBackgroundColor, p.TagBackgroundOpacity),
		BorderColor:  p.TagBorderColor,
		BorderWidth:  f.Size(p.TagBorderWidthPercent),
		BorderRadius: f.Size(p.TagBorderRadiusPercent),
	}
	if p.TagBackgroundWidthPercent > 0 && p.TagBackgroundHeightPercent > 0 {
		b.Explicit = true
		b.Width = f.Size(p.TagBackgroundWidthPercent)
		b.Height = f.Size(p.TagBackgroundHeightPercent)
		b.OffsetX = f.Size(p.TagBackgroundOffsetXPercent)
		b.OffsetY = f.Size(p.TagBackgroundOffsetYPercent)
	}
	return b
}

// CSS returns the style declarations of the box.
func (b BackgroundBox) CSS() string {
	var sb strings.Builder
	sb.WriteString("position:absolute;z-index:-1;")
	if b.Explicit {
		sb.WriteString("left:" + px(b.OffsetX) + ";top:" + px(b.OffsetY) + ";width:" + px(b.Width) + ";height:" + px(b.Height) + ";")
	} else {
		sb.WriteString("left:0;top:0;width:100%;height:100%;")
	}
	sb.WriteString("background:" + b.Color + ";")
	if b.BorderWidth > 0 && b.BorderColor != "" {
		sb.WriteString("border:" + px(b.BorderWidth) + " solid " + b.BorderColor + ";")
	}
	if b.BorderRadius > 0 {
		sb.WriteString("border-radius:" + px(b.BorderRadius) + ";")
	}
	return sb.String()
}

// TextStyle is the resolved typography of a label.
type TextStyle struct {
	FontFamily     string  `json:"fontFamily"`
	FontWeight     string  `json:"fontWeight"`
	FontStyle      string  `json:"fontStyle"`
	TextDecoration string  `json:"textDecoration"`
	FontSize       float64 `json:"fontSize"`
	Color          string  `json:"color"`
	TextAlign      string  `json:"textAlign"`
	WritingMode    string  `json:"writingMode"`
	LetterSpacing  float64 `json:"letterSpacing"`
	LineHeight     float64 `json:"lineHeight,omitempty"`
	TextTransform  string  `json:"textTransform"`
	StrokeColor    string  `json:"strokeColor,omitempty"`
	StrokeWidth    float64 `json:"strokeWidth"`
	Shadow         string  `json:"shadow"`
	PaddingX       float64 `json:"paddingX"`
	PaddingY       float64 `json:"paddingY"`
}

// TextStyleFor resolves a pin's typography. Bold, italic and underline flags
// override the stored font weight and style.
func TextStyleFor(p Pin, f Frame) TextStyle {
	ts := TextStyle{
		FontFamily:     p.TagFontFamily,
		FontWeight:     p.TagFontWeight,
		FontStyle:      "normal",
		TextDecoration: "none",
		FontSize:       f.Size(p.TagFontSizePercent),
		Color:          p.TagTextColor,
		TextAlign:      p.TagTextAlign,
		WritingMode:    "horizontal-tb",
		LetterSpacing:  p.TagLetterSpacing,
		LineHeight:     p.TagLineHeight,
		TextTransform:  p.TagTextTransform,
		Shadow:         ShadowFor(p).CSS(f.Width),
		PaddingX:       f.Size(p.TagPaddingXPercent),
		PaddingY:       f.Size(p.TagPaddingYPercent),
	}
	if p.TagBold {
		ts.FontWeight = "bold"
	}
	if p.TagItalic {
		ts.FontStyle = "italic"
	}
	if p.TagUnderline {
		ts.TextDecoration = "underline"
	}
	if p.TagVerticalWriting {
		ts.WritingMode = "vertical-rl"
	}
	if p.TagTextStrokeColor != "" && p.TagTextStrokeWidth > 0 {
		ts.StrokeColor = p.TagTextStrokeColor
		ts.StrokeWidth = f.Size(p.TagTextStrokeWidth)
	}
	return ts
}

// CSS returns the style declarations of the text.
func (t TextStyle) CSS() string {
	var sb strings.Builder
	sb.WriteString("position:relative;white-space:pre;display:block;")
	sb.WriteString("font-family:" + t.FontFamily + ";")
	sb.WriteString("font-weight:" + t.FontWeight + ";")
	sb.WriteString("font-style:" + t.FontStyle + ";")
	sb.WriteString("text-decoration:" + t.TextDecoration + ";")
	sb.WriteString("font-size:" + px(t.FontSize) + ";")
	sb.WriteString("color:" + t.Color + ";")
	sb.WriteString("text-align:" + t.TextAlign + ";")
	sb.WriteString("writing-mode:" + t.WritingMode + ";")
	sb.WriteString("text-transform:" + t.TextTransform + ";")
	if t.LetterSpacing != 0 {
		sb.WriteString("letter-spacing:" + px(t.LetterSpacing) + ";")
	}
	if t.LineHeight > 0 {
		sb.WriteString("line-height:" + formatNumber(t.LineHeight) + ";")
	}
	if t.StrokeWidth > 0 {
		sb.WriteString("-webkit-text-stroke:" + px(t.StrokeWidth) + " " + t.StrokeColor + ";")
	}
	if t.Shadow != "" {
		sb.WriteString("text-shadow:" + t.Shadow + ";")
	}
	sb.WriteString("padding:" + px(t.PaddingY) + " " + px(t.PaddingX) + ";")
	return sb.String()
}

var cssUnsafe = regexp.MustCompile(`(?i)[;{}<>\\]|url\s*\(|expression\s*\(|/\*`)

// scrubCSS drops anything that could terminate a declaration or load a resource.
func scrubCSS(s string) string {
	return strings.TrimSpace(cssUnsafe.ReplaceAllString(s, ""))
}
