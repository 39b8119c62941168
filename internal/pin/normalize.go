package pin

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/pinshelf/pinshelf-server/internal/color"
	"github.com/pinshelf/pinshelf-server/internal/domain"
)

// Defaults applied to unset style fields. Percent fields not listed default to 0.
const (
	DefaultBackgroundOpacity = 0.8
	DefaultShadowAngle       = 45.0
	DefaultShadowDistance    = 2.0
	DefaultShadowBlur        = 2.0
	DefaultShadowOpacity     = 0.5

	DefaultDotColor        = "#ffffff"
	DefaultLineColor       = "#ffffff"
	DefaultTextColor       = "#000000"
	DefaultBackgroundColor = "#ffffff"
	DefaultShadowColor     = "#000000"
	DefaultFontFamily      = "inherit"
	DefaultFontWeight      = "normal"
	DefaultTextAlign       = "center"
)

// Pin is a fully defaulted pin. Every field holds a usable value, so render
// code never checks for absence.
type Pin struct {
	ID        string `json:"id"`
	RecipeID  string `json:"recipeId"`
	ProductID string `json:"productId,omitempty"`

	DotXPercent float64 `json:"dotXPercent"`
	DotYPercent float64 `json:"dotYPercent"`
	TagXPercent float64 `json:"tagXPercent"`
	TagYPercent float64 `json:"tagYPercent"`

	DotSizePercent float64 `json:"dotSizePercent"`
	DotColor       string  `json:"dotColor"`
	DotShape       string  `json:"dotShape"`

	LineWidthPercent float64 `json:"lineWidthPercent"`
	LineColor        string  `json:"lineColor"`
	LineType         string  `json:"lineType"`

	TagText            string  `json:"tagText,omitempty"`
	TagDisplayText     string  `json:"tagDisplayText,omitempty"`
	TagFontFamily      string  `json:"tagFontFamily"`
	TagFontWeight      string  `json:"tagFontWeight"`
	TagBold            bool    `json:"tagBold"`
	TagItalic          bool    `json:"tagItalic"`
	TagUnderline       bool    `json:"tagUnderline"`
	TagTextColor       string  `json:"tagTextColor"`
	TagTextAlign       string  `json:"tagTextAlign"`
	TagVerticalWriting bool    `json:"tagVerticalWriting"`
	TagLetterSpacing   float64 `json:"tagLetterSpacing"`
	TagLineHeight      float64 `json:"tagLineHeight"`
	TagTextTransform   string  `json:"tagTextTransform"`
	TagFontSizePercent float64 `json:"tagFontSizePercent"`
	TagRotation        float64 `json:"tagRotation"`

	TagTextStrokeColor string  `json:"tagTextStrokeColor,omitempty"`
	TagTextStrokeWidth float64 `json:"tagTextStrokeWidth"`

	TagTextShadow     string  `json:"tagTextShadow,omitempty"`
	TagShadowColor    string  `json:"tagShadowColor"`
	TagShadowOpacity  float64 `json:"tagShadowOpacity"`
	TagShadowBlur     float64 `json:"tagShadowBlur"`
	TagShadowDistance float64 `json:"tagShadowDistance"`
	TagShadowAngle    float64 `json:"tagShadowAngle"`

	TagBackgroundColor          string  `json:"tagBackgroundColor"`
	TagBackgroundOpacity        float64 `json:"tagBackgroundOpacity"`
	TagBorderColor              string  `json:"tagBorderColor,omitempty"`
	TagBorderWidthPercent       float64 `json:"tagBorderWidthPercent"`
	TagBorderRadiusPercent      float64 `json:"tagBorderRadiusPercent"`
	TagPaddingXPercent          float64 `json:"tagPaddingXPercent"`
	TagPaddingYPercent          float64 `json:"tagPaddingYPercent"`
	TagBackgroundWidthPercent   float64 `json:"tagBackgroundWidthPercent"`
	TagBackgroundHeightPercent  float64 `json:"tagBackgroundHeightPercent"`
	TagBackgroundOffsetXPercent float64 `json:"tagBackgroundOffsetXPercent"`
	TagBackgroundOffsetYPercent float64 `json:"tagBackgroundOffsetYPercent"`
}

// Normalize applies defaults to a stored pin. Non-finite numbers fall back to
// the field default and colors that are neither hex nor a plain CSS color name
// fall back to the field's default color. Background and shadow colors are
// blended with an opacity, so named colors there are resolved to hex.
func Normalize(rp domain.RecipePin) Pin {
	s := rp.PinStyle
	return Pin{
		ID:        rp.ID,
		RecipeID:  rp.RecipeID,
		ProductID: rp.LinkedProductID(),

		DotXPercent: SafeFloat(rp.DotXPercent, 0),
		DotYPercent: SafeFloat(rp.DotYPercent, 0),
		TagXPercent: SafeFloat(rp.TagXPercent, 0),
		TagYPercent: SafeFloat(rp.TagYPercent, 0),

		DotSizePercent: SafeFloat(s.DotSizePercent, 0),
		DotColor:       cssColor(s.DotColor, DefaultDotColor),
		DotShape:       stringOr(s.DotShape, domain.DotShapeCircle),

		LineWidthPercent: SafeFloat(s.LineWidthPercent, 0),
		LineColor:        cssColor(s.LineColor, DefaultLineColor),
		LineType:         stringOr(s.LineType, domain.LineTypeSolid),

		TagText:            stringOr(s.TagText, ""),
		TagDisplayText:     stringOr(s.TagDisplayText, ""),
		TagFontFamily:      fontFamily(s.TagFontFamily),
		TagFontWeight:      fontWeight(s.TagFontWeight),
		TagBold:            boolOr(s.TagBold),
		TagItalic:          boolOr(s.TagItalic),
		TagUnderline:       boolOr(s.TagUnderline),
		TagTextColor:       cssColor(s.TagTextColor, DefaultTextColor),
		TagTextAlign:       textAlign(s.TagTextAlign),
		TagVerticalWriting: boolOr(s.TagVerticalWriting),
		TagLetterSpacing:   SafeFloat(s.TagLetterSpacing, 0),
		TagLineHeight:      SafeFloat(s.TagLineHeight, 0),
		TagTextTransform:   textTransform(s.TagTextTransform),
		TagFontSizePercent: SafeFloat(s.TagFontSizePercent, 0),
		TagRotation:        SafeFloat(s.TagRotation, 0),

		TagTextStrokeColor: cssColor(s.TagTextStrokeColor, ""),
		TagTextStrokeWidth: SafeFloat(s.TagTextStrokeWidth, 0),

		TagTextShadow:     stringOr(s.TagTextShadow, ""),
		TagShadowColor:    alphaColor(s.TagShadowColor, DefaultShadowColor),
		TagShadowOpacity:  SafeFloat(s.TagShadowOpacity, DefaultShadowOpacity),
		TagShadowBlur:     SafeFloat(s.TagShadowBlur, DefaultShadowBlur),
		TagShadowDistance: SafeFloat(s.TagShadowDistance, DefaultShadowDistance),
		TagShadowAngle:    SafeFloat(s.TagShadowAngle, DefaultShadowAngle),

		TagBackgroundColor:          alphaColor(s.TagBackgroundColor, DefaultBackgroundColor),
		TagBackgroundOpacity:        SafeFloat(s.TagBackgroundOpacity, DefaultBackgroundOpacity),
		TagBorderColor:              cssColor(s.TagBorderColor, ""),
		TagBorderWidthPercent:       SafeFloat(s.TagBorderWidthPercent, 0),
		TagBorderRadiusPercent:      SafeFloat(s.TagBorderRadiusPercent, 0),
		TagPaddingXPercent:          SafeFloat(s.TagPaddingXPercent, 0),
		TagPaddingYPercent:          SafeFloat(s.TagPaddingYPercent, 0),
		TagBackgroundWidthPercent:   SafeFloat(s.TagBackgroundWidthPercent, 0),
		TagBackgroundHeightPercent:  SafeFloat(s.TagBackgroundHeightPercent, 0),
		TagBackgroundOffsetXPercent: SafeFloat(s.TagBackgroundOffsetXPercent, 0),
		TagBackgroundOffsetYPercent: SafeFloat(s.TagBackgroundOffsetYPercent, 0),
	}
}

// NormalizeAll normalizes pins preserving their order.
func NormalizeAll(pins []domain.RecipePin) []Pin {
	out := make([]Pin, len(pins))
	for i := range pins {
		out[i] = Normalize(pins[i])
	}
	return out
}

var (
	colorNameRe  = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)
	fontFamilyRe = regexp.MustCompile(`^[a-zA-Z0-9 ,'"\-]{1,120}$`)
	fontWeightRe = regexp.MustCompile(`^([1-9]00|normal|bold|bolder|lighter)$`)
)

func stringOr(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

func boolOr(b *bool) bool {
	return b != nil && *b
}

// cssColor accepts hex colors and bare color names; anything else is replaced
// by def so stored values can never break out of a style attribute.
func cssColor(s *string, def string) string {
	v := stringOr(s, def)
	if v == def || color.IsHex(v) || colorNameRe.MatchString(v) {
		return v
	}
	return def
}

// alphaColor resolves CSS color names to #rrggbb for fields that feed
// HexToRGBA. Other values pass through and fall back there.
func alphaColor(s *string, def string) string {
	v := stringOr(s, def)
	if c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(v))]; ok {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return v
}

func fontFamily(s *string) string {
	v := stringOr(s, DefaultFontFamily)
	if !fontFamilyRe.MatchString(v) {
		return DefaultFontFamily
	}
	return v
}

func fontWeight(s *string) string {
	v := stringOr(s, DefaultFontWeight)
	if !fontWeightRe.MatchString(v) {
		return DefaultFontWeight
	}
	return v
}

func textAlign(s *string) string {
	switch v := stringOr(s, DefaultTextAlign); v {
	case "left", "right", "center", "justify", "start", "end":
		return v
	default:
		return DefaultTextAlign
	}
}

func textTransform(s *string) string {
	switch v := stringOr(s, domain.TextTransformNone); v {
	case domain.TextTransformUppercase, domain.TextTransformLowercase:
		return v
	default:
		return domain.TextTransformNone
	}
}
