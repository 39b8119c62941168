package domain

import "time"

// Dot shapes.
const (
	DotShapeCircle   = "circle"
	DotShapeSquare   = "square"
	DotShapeTriangle = "triangle"
	DotShapeDiamond  = "diamond"
)

// Connector line types. Wavy and hand-drawn are stored but render as solid.
const (
	LineTypeSolid     = "solid"
	LineTypeDashed    = "dashed"
	LineTypeDotted    = "dotted"
	LineTypeWavy      = "wavy"
	LineTypeHandDrawn = "hand-drawn"
)

// Label text transforms.
const (
	TextTransformNone      = "none"
	TextTransformUppercase = "uppercase"
	TextTransformLowercase = "lowercase"
)

// RecipePin is a stored annotation over a recipe's base image.
//
// Every coordinate and size is a percentage of the rendered image width (or
// height, for the Y anchors), never pixels. Style fields are nil when the author
// never set them; pin.Normalize fills in defaults once at the read boundary.
type RecipePin struct {
	ID        string  `json:"id"`
	RecipeID  string  `json:"recipeId"`
	ProductID *string `json:"productId"`
	Position  int     `json:"position"`

	DotXPercent float64 `json:"dotXPercent"`
	DotYPercent float64 `json:"dotYPercent"`
	TagXPercent float64 `json:"tagXPercent"`
	TagYPercent float64 `json:"tagYPercent"`

	PinStyle

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PinStyle holds the optional presentation attributes of a pin.
type PinStyle struct {
	DotSizePercent *float64 `json:"dotSizePercent,omitempty" yaml:"dotSizePercent,omitempty"`
	DotColor       *string  `json:"dotColor,omitempty" yaml:"dotColor,omitempty"`
	DotShape       *string  `json:"dotShape,omitempty" yaml:"dotShape,omitempty"`

	LineWidthPercent *float64 `json:"lineWidthPercent,omitempty" yaml:"lineWidthPercent,omitempty"`
	LineColor        *string  `json:"lineColor,omitempty" yaml:"lineColor,omitempty"`
	LineType         *string  `json:"lineType,omitempty" yaml:"lineType,omitempty"`

	TagText            *string  `json:"tagText,omitempty" yaml:"tagText,omitempty"`
	TagDisplayText     *string  `json:"tagDisplayText,omitempty" yaml:"tagDisplayText,omitempty"`
	TagFontFamily      *string  `json:"tagFontFamily,omitempty" yaml:"tagFontFamily,omitempty"`
	TagFontWeight      *string  `json:"tagFontWeight,omitempty" yaml:"tagFontWeight,omitempty"`
	TagBold            *bool    `json:"tagBold,omitempty" yaml:"tagBold,omitempty"`
	TagItalic          *bool    `json:"tagItalic,omitempty" yaml:"tagItalic,omitempty"`
	TagUnderline       *bool    `json:"tagUnderline,omitempty" yaml:"tagUnderline,omitempty"`
	TagTextColor       *string  `json:"tagTextColor,omitempty" yaml:"tagTextColor,omitempty"`
	TagTextAlign       *string  `json:"tagTextAlign,omitempty" yaml:"tagTextAlign,omitempty"`
	TagVerticalWriting *bool    `json:"tagVerticalWriting,omitempty" yaml:"tagVerticalWriting,omitempty"`
	TagLetterSpacing   *float64 `json:"tagLetterSpacing,omitempty" yaml:"tagLetterSpacing,omitempty"`
	TagLineHeight      *float64 `json:"tagLineHeight,omitempty" yaml:"tagLineHeight,omitempty"`
	TagTextTransform   *string  `json:"tagTextTransform,omitempty" yaml:"tagTextTransform,omitempty"`
	TagFontSizePercent *float64 `json:"tagFontSizePercent,omitempty" yaml:"tagFontSizePercent,omitempty"`
	TagRotation        *float64 `json:"tagRotation,omitempty" yaml:"tagRotation,omitempty"` // degrees

	TagTextStrokeColor *string  `json:"tagTextStrokeColor,omitempty" yaml:"tagTextStrokeColor,omitempty"`
	TagTextStrokeWidth *float64 `json:"tagTextStrokeWidth,omitempty" yaml:"tagTextStrokeWidth,omitempty"`

	TagTextShadow     *string  `json:"tagTextShadow,omitempty" yaml:"tagTextShadow,omitempty"`
	TagShadowColor    *string  `json:"tagShadowColor,omitempty" yaml:"tagShadowColor,omitempty"`
	TagShadowOpacity  *float64 `json:"tagShadowOpacity,omitempty" yaml:"tagShadowOpacity,omitempty"`
	TagShadowBlur     *float64 `json:"tagShadowBlur,omitempty" yaml:"tagShadowBlur,omitempty"`
	TagShadowDistance *float64 `json:"tagShadowDistance,omitempty" yaml:"tagShadowDistance,omitempty"`
	TagShadowAngle    *float64 `json:"tagShadowAngle,omitempty" yaml:"tagShadowAngle,omitempty"`

	TagBackgroundColor          *string  `json:"tagBackgroundColor,omitempty" yaml:"tagBackgroundColor,omitempty"`
	TagBackgroundOpacity        *float64 `json:"tagBackgroundOpacity,omitempty" yaml:"tagBackgroundOpacity,omitempty"`
	TagBorderColor              *string  `json:"tagBorderColor,omitempty" yaml:"tagBorderColor,omitempty"`
	TagBorderWidthPercent       *float64 `json:"tagBorderWidthPercent,omitempty" yaml:"tagBorderWidthPercent,omitempty"`
	TagBorderRadiusPercent      *float64 `json:"tagBorderRadiusPercent,omitempty" yaml:"tagBorderRadiusPercent,omitempty"`
	TagPaddingXPercent          *float64 `json:"tagPaddingXPercent,omitempty" yaml:"tagPaddingXPercent,omitempty"`
	TagPaddingYPercent          *float64 `json:"tagPaddingYPercent,omitempty" yaml:"tagPaddingYPercent,omitempty"`
	TagBackgroundWidthPercent   *float64 `json:"tagBackgroundWidthPercent,omitempty" yaml:"tagBackgroundWidthPercent,omitempty"`
	TagBackgroundHeightPercent  *float64 `json:"tagBackgroundHeightPercent,omitempty" yaml:"tagBackgroundHeightPercent,omitempty"`
	TagBackgroundOffsetXPercent *float64 `json:"tagBackgroundOffsetXPercent,omitempty" yaml:"tagBackgroundOffsetXPercent,omitempty"`
	TagBackgroundOffsetYPercent *float64 `json:"tagBackgroundOffsetYPercent,omitempty" yaml:"tagBackgroundOffsetYPercent,omitempty"`
}

// HasProduct reports whether the pin links to a product.
func (p *RecipePin) HasProduct() bool {
	return p.ProductID != nil && *p.ProductID != ""
}

// LinkedProductID returns the product id or "".
func (p *RecipePin) LinkedProductID() string {
	if p.ProductID == nil {
		return ""
	}
	return *p.ProductID
}
