// Package preview rasterizes a resolved pin overlay onto its base image,
// producing the PNG served to link unfurlers and the admin CLI.
package preview

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/draw"

	"github.com/pinshelf/pinshelf-server/internal/pin"
)

// ErrDeferred is returned for an overlay that has not been laid out.
var ErrDeferred = errors.New("preview: overlay has no rendered width")

// ErrTooLarge is returned when the canvas would exceed MaxWidth or MaxHeight.
var ErrTooLarge = errors.New("preview: canvas too large")

// Raster bounds of a preview. The height follows the base image's aspect
// ratio, so a tall banner can ask for far more than its width suggests.
const (
	MaxWidth  = 2400
	MaxHeight = 4 * MaxWidth
)

// Renderer draws overlays. Labels are drawn only when a font is configured;
// markers, connectors and explicit label boxes are always drawn.
type Renderer struct {
	font   *text.FontSource
	logger *slog.Logger

	mu    sync.Mutex
	faces map[float64]text.Face
}

// New creates a Renderer. An empty fontPath disables label text.
func New(fontPath string, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Renderer{logger: logger, faces: make(map[float64]text.Face)}
	if fontPath != "" {
		src, err := text.NewFontSourceFromFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("load preview font %s: %w", fontPath, err)
		}
		r.font = src
	}
	return r, nil
}

// Draw composes the overlay over base. A nil base draws on a neutral canvas.
func (r *Renderer) Draw(base image.Image, o *pin.Overlay) (image.Image, error) {
	dc, err := r.compose(base, o)
	if err != nil {
		return nil, err
	}
	// Close flushes queued accelerator work before pixels are read.
	dc.Close()
	return dc.Image(), nil
}

// EncodePNG draws the overlay and writes it as PNG.
func (r *Renderer) EncodePNG(w io.Writer, base image.Image, o *pin.Overlay) error {
	dc, err := r.compose(base, o)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.FlushGPU(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return dc.EncodePNG(w)
}

func (r *Renderer) compose(base image.Image, o *pin.Overlay) (*gg.Context, error) {
	if o == nil || o.Deferred || !o.Frame.Ready() {
		return nil, ErrDeferred
	}
	// Checked on the floats: a huge frame would overflow the int conversion.
	if o.Frame.Width > MaxWidth || o.Frame.Height > MaxHeight {
		return nil, fmt.Errorf("%w: %.0fx%.0f exceeds %dx%d",
			ErrTooLarge, o.Frame.Width, o.Frame.Height, MaxWidth, MaxHeight)
	}
	w := int(math.Round(o.Frame.Width))
	h := int(math.Round(o.Frame.Height))
	if w <= 0 || h <= 0 {
		return nil, ErrDeferred
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	if base != nil {
		draw.CatmullRom.Scale(canvas, canvas.Bounds(), base, base.Bounds(), draw.Src, nil)
	} else {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(canvasGray), image.Point{}, draw.Src)
	}

	dc := gg.NewContextForImage(canvas)
	for i := range o.Pins {
		if err := r.drawPin(dc, &o.Pins[i]); err != nil {
			dc.Close()
			return nil, fmt.Errorf("draw pin %s: %w", o.Pins[i].ID, err)
		}
	}
	r.logger.Debug("preview composed", "width", w, "height", h, "pins", len(o.Pins))
	return dc, nil
}

func (r *Renderer) drawPin(dc *gg.Context, rp *pin.RenderedPin) error {
	c := rp.Connector
	// The dashes start at the dot's edge, not under it.
	if from, to, ok := c.Visible(rp.Marker.Size / 2); ok && c.Width > 0 {
		dc.SetColor(parseColor(c.Color, white))
		dc.SetLineWidth(c.Width)
		dc.SetDash(c.Dash...)
		dc.DrawLine(from.X, from.Y, to.X, to.Y)
		if err := dc.Stroke(); err != nil {
			return err
		}
		dc.ClearDash()
	}

	m := rp.Marker
	if m.Size > 0 {
		dc.SetColor(parseColor(m.Color, white))
		shapePath(dc, m.Shape.Shape, m.Center.X, m.Center.Y, m.Size)
		if err := dc.Fill(); err != nil {
			return err
		}
	}

	return r.drawLabel(dc, rp.Label)
}

// shapePath traces a dot of diameter size centered on (cx, cy).
func shapePath(dc *gg.Context, shape string, cx, cy, size float64) {
	half := size / 2
	switch shape {
	case "circle":
		dc.DrawCircle(cx, cy, half)
	case "diamond":
		dc.MoveTo(cx, cy-half)
		dc.LineTo(cx+half, cy)
		dc.LineTo(cx, cy+half)
		dc.LineTo(cx-half, cy)
		dc.ClosePath()
	case "triangle":
		dc.MoveTo(cx, cy-half)
		dc.LineTo(cx+half, cy+half)
		dc.LineTo(cx-half, cy+half)
		dc.ClosePath()
	default:
		dc.DrawRectangle(cx-half, cy-half, size, size)
	}
}

func (r *Renderer) drawLabel(dc *gg.Context, l pin.Label) error {
	face := r.face(l.Style.FontSize)
	label := transformText(l.Text, l.Style.TextTransform)

	var tw, th float64
	if face != nil && label != "" {
		dc.SetFont(face)
		tw, th = dc.MeasureString(label)
	}
	boxW := tw + 2*l.Style.PaddingX
	boxH := th + 2*l.Style.PaddingY
	left := l.Anchor.X - boxW/2
	top := l.Anchor.Y - boxH/2

	dc.Push()
	defer dc.Pop()
	if l.Rotation != 0 {
		dc.RotateAbout(l.Rotation*math.Pi/180, l.Anchor.X, l.Anchor.Y)
	}

	bg := l.Background
	bx, by, bw, bh := left, top, boxW, boxH
	if bg.Explicit {
		bx, by, bw, bh = left+bg.OffsetX, top+bg.OffsetY, bg.Width, bg.Height
	}
	if bw > 0 && bh > 0 {
		if bg.BorderRadius > 0 {
			dc.DrawRoundedRectangle(bx, by, bw, bh, bg.BorderRadius)
		} else {
			dc.DrawRectangle(bx, by, bw, bh)
		}
		dc.SetColor(parseColor(bg.Color, transparent))
		if err := dc.FillPreserve(); err != nil {
			return err
		}
		if bg.BorderWidth > 0 && bg.BorderColor != "" {
			dc.SetColor(parseColor(bg.BorderColor, black))
			dc.SetLineWidth(bg.BorderWidth)
			if err := dc.Stroke(); err != nil {
				return err
			}
		}
		dc.ClearPath()
	}

	if face == nil || label == "" {
		return nil
	}
	dc.SetColor(parseColor(l.Style.Color, black))
	dc.DrawStringAnchored(label, l.Anchor.X, l.Anchor.Y, 0.5, 0.5)
	return nil
}

// face returns a cached face of the given pixel size, or nil without a font.
func (r *Renderer) face(size float64) text.Face {
	if r.font == nil || size <= 0 {
		return nil
	}
	size = math.Round(size*2) / 2

	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.faces[size]
	if !ok {
		f = r.font.Face(size)
		r.faces[size] = f
	}
	return f
}

func transformText(s, transform string) string {
	switch transform {
	case "uppercase":
		return strings.ToUpper(s)
	case "lowercase":
		return strings.ToLower(s)
	default:
		return s
	}
}
