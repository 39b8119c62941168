package pin

import (
	"strings"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pinshelf/pinshelf-server/internal/domain"
)

// ActivateFunc receives the product of an activated pin.
type ActivateFunc func(product domain.ProductSnapshot)

// Input is everything one render pass needs.
type Input struct {
	Image domain.RecipeImage
	// Pins in stored order. Later pins stack above earlier ones.
	Pins []Pin
	// Items are recipe-scoped product snapshots; they win over Products.
	Items    []domain.ProductSnapshot
	Products []domain.ProductSnapshot
	// RenderedWidth is the on-screen width of the base image, in pixels.
	RenderedWidth float64
	OnActivate    ActivateFunc
}

// Connector is the line from a pin's dot to its label.
type Connector struct {
	From  Point     `json:"from"`
	To    Point     `json:"to"`
	Color string    `json:"color"`
	Width float64   `json:"width"`
	Dash  []float64 `json:"dash,omitempty"`
}

// Length returns the connector length in pixels.
func (c Connector) Length() float64 {
	return r2.Norm(r2.Sub(c.To.Vec(), c.From.Vec()))
}

// Visible trims inset pixels off the dot end so the stroke starts at the
// marker's edge. ok is false when the dot covers the whole connector.
func (c Connector) Visible(inset float64) (from, to Point, ok bool) {
	n := c.Length()
	if n == 0 || inset >= n {
		return c.From, c.To, false
	}
	if inset <= 0 {
		return c.From, c.To, true
	}
	d := r2.Sub(c.To.Vec(), c.From.Vec())
	return Point(r2.Add(c.From.Vec(), r2.Scale(inset/n, d))), c.To, true
}

// Marker is the dot at a pin's primary anchor.
type Marker struct {
	Center Point      `json:"center"`
	Left   string     `json:"left"` // CSS percent
	Top    string     `json:"top"`  // CSS percent
	Size   float64    `json:"size"`
	Color  string     `json:"color"`
	Shape  ShapeStyle `json:"shape"`
}

// CSS returns the marker's style declarations.
func (m Marker) CSS() string {
	var sb strings.Builder
	sb.WriteString("position:absolute;left:" + m.Left + ";top:" + m.Top + ";")
	sb.WriteString("width:" + px(m.Size) + ";height:" + px(m.Size) + ";")
	sb.WriteString("transform:translate(-50%,-50%);background:" + m.Color + ";")
	if m.Shape.BorderRadius != "" {
		sb.WriteString("border-radius:" + m.Shape.BorderRadius + ";")
	}
	if m.Shape.ClipPath != "" {
		sb.WriteString("clip-path:" + m.Shape.ClipPath + ";")
	}
	return sb.String()
}

// Label is the text box at a pin's secondary anchor.
type Label struct {
	Anchor     Point         `json:"anchor"`
	Left       string        `json:"left"`
	Top        string        `json:"top"`
	Text       string        `json:"text"`
	Rotation   float64       `json:"rotation"`
	Style      TextStyle     `json:"style"`
	Background BackgroundBox `json:"background"`
}

// CSS returns the style declarations of the label container.
func (l Label) CSS() string {
	s := "position:absolute;left:" + l.Left + ";top:" + l.Top + ";transform:translate(-50%,-50%)"
	if l.Rotation != 0 {
		s += " rotate(" + formatNumber(l.Rotation) + "deg)"
	}
	return s + ";isolation:isolate;"
}

// RenderedPin is one visual unit: connector, marker and label.
type RenderedPin struct {
	ID          string                  `json:"id"`
	Product     *domain.ProductSnapshot `json:"product,omitempty"`
	Interactive bool                    `json:"interactive"`
	Connector   Connector               `json:"connector"`
	Marker      Marker                  `json:"marker"`
	Label       Label                   `json:"label"`
}

// Overlay is the result of a render pass.
type Overlay struct {
	Image domain.RecipeImage `json:"image"`
	Frame Frame              `json:"frame"`
	// Deferred is set when the image has no layout yet; Pins is empty and the
	// caller renders again once a positive width is known.
	Deferred bool          `json:"deferred"`
	Pins     []RenderedPin `json:"pins"`

	onActivate ActivateFunc
}

// Target is the element an event was dispatched on.
type Target int

// Event targets.
const (
	TargetMarker Target = iota
	TargetLabel
)

// Event is a user interaction with a pin.
type Event struct {
	PinID  string
	Target Target
	Type   string // "click" or "keydown"
	Key    string // for keydown: "Enter", " ", "Space" or "Spacebar"
}

// IsActivation reports whether the event activates a pin.
func (e Event) IsActivation() bool {
	if e.Target != TargetMarker && e.Target != TargetLabel {
		return false
	}
	switch e.Type {
	case "click":
		return true
	case "keydown":
		switch e.Key {
		case "Enter", " ", "Space", "Spacebar":
			return true
		}
	}
	return false
}

// Dispatch delivers an event. Activating an interactive pin invokes the
// callback once with the pin's product and returns true. Inert pins, unknown
// pins and non-activating events do nothing.
func (o *Overlay) Dispatch(e Event) bool {
	if o.onActivate == nil || !e.IsActivation() {
		return false
	}
	for i := range o.Pins {
		rp := &o.Pins[i]
		if rp.ID != e.PinID {
			continue
		}
		if !rp.Interactive || rp.Product == nil {
			return false
		}
		o.onActivate(*rp.Product)
		return true
	}
	return false
}

// Renderer builds overlays. It memoizes the product lookup table across
// passes over the same collections; it is safe for concurrent use.
type Renderer struct {
	mu    sync.Mutex
	key   indexKey
	index *ProductIndex
}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render resolves every pin for the given rendered width. It never fails:
// malformed values were defaulted by Normalize, unresolvable products make a
// pin inert, and a zero width defers the pass.
func (r *Renderer) Render(in Input) *Overlay {
	frame := NewFrame(in.RenderedWidth, in.Image.Width, in.Image.Height)
	o := &Overlay{Image: in.Image, Frame: frame, Pins: []RenderedPin{}, onActivate: in.OnActivate}
	if !frame.Ready() {
		o.Deferred = true
		return o
	}
	if len(in.Pins) == 0 {
		return o
	}

	index := r.lookup(in.Items, in.Products)
	o.Pins = make([]RenderedPin, 0, len(in.Pins))
	for _, p := range in.Pins {
		o.Pins = append(o.Pins, resolvePin(p, frame, index))
	}
	return o
}

func (r *Renderer) lookup(items, products []domain.ProductSnapshot) *ProductIndex {
	key := keyFor(items, products)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index == nil || r.key != key {
		r.index = NewProductIndex(items, products)
		r.key = key
	}
	return r.index
}

func resolvePin(p Pin, f Frame, index *ProductIndex) RenderedPin {
	var product *domain.ProductSnapshot
	if p.ProductID != "" {
		if snap, ok := index.Lookup(p.ProductID); ok {
			product = &snap
		}
	}

	lineWidth := f.Size(p.LineWidthPercent)
	dot := f.Anchor(p.DotXPercent, p.DotYPercent)
	tag := f.Anchor(p.TagXPercent, p.TagYPercent)

	return RenderedPin{
		ID:          p.ID,
		Product:     product,
		Interactive: product != nil,
		Connector: Connector{
			From:  dot,
			To:    tag,
			Color: p.LineColor,
			Width: lineWidth,
			Dash:  DashArray(p.LineType, lineWidth),
		},
		Marker: Marker{
			Center: dot,
			Left:   pct(p.DotXPercent),
			Top:    pct(p.DotYPercent),
			Size:   f.Size(p.DotSizePercent),
			Color:  p.DotColor,
			Shape:  ShapeFor(p.DotShape),
		},
		Label: Label{
			Anchor:     tag,
			Left:       pct(p.TagXPercent),
			Top:        pct(p.TagYPercent),
			Text:       LabelText(p, product),
			Rotation:   p.TagRotation,
			Style:      TextStyleFor(p, f),
			Background: BackgroundFor(p, f),
		},
	}
}

// LabelText resolves a label: display text, then tag text, then the linked
// product's title, then empty.
func LabelText(p Pin, product *domain.ProductSnapshot) string {
	switch {
	case p.TagDisplayText != "":
		return p.TagDisplayText
	case p.TagText != "":
		return p.TagText
	case product != nil:
		return product.Title
	default:
		return ""
	}
}
