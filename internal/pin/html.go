package pin

import (
	"html/template"
	"io"
	"strings"
)

var overlayTemplate = template.Must(template.New("overlay").Funcs(template.FuncMap{
	"num":  formatNumber,
	"dash": dashAttr,
}).Parse(`<figure class="pinshelf-recipe" data-recipe-image="{{.Image.ID}}"{{if .Deferred}} data-deferred="true"{{end}} style="{{.FigureCSS}}">
<img class="pinshelf-base" src="{{.Image.URL}}" alt="{{.Alt}}"{{if not .Deferred}} width="{{num .Frame.Width}}"{{if .Measured}} height="{{num .Frame.Height}}"{{end}}{{end}} style="display:block;width:100%;height:auto">
{{- if not .Deferred}}
<svg class="pinshelf-lines" width="100%" height="100%" style="position:absolute;left:0;top:0;overflow:visible;pointer-events:none" aria-hidden="true">
{{- range .Pins}}
<line data-pin-id="{{.ID}}" x1="{{.Marker.Left}}" y1="{{.Marker.Top}}" x2="{{.Label.Left}}" y2="{{.Label.Top}}" stroke="{{.Connector.Color}}" stroke-width="{{num .Connector.Width}}"{{with dash .Connector.Dash}} stroke-dasharray="{{.}}"{{end}}/>
{{- end}}
</svg>
{{- range .Pins}}
<div class="pinshelf-dot" data-pin-id="{{.ID}}" style="{{.MarkerCSS}}"{{if .Interactive}} role="button" tabindex="0" data-product-id="{{.Product.ID}}" aria-label="{{.Label.Text}}"{{end}}></div>
<div class="pinshelf-tag" data-pin-id="{{.ID}}" style="{{.LabelCSS}}"{{if .Interactive}} role="button" tabindex="0" data-product-id="{{.Product.ID}}"{{end}}><span class="pinshelf-tag-bg" style="{{.BackgroundCSS}}"></span><span class="pinshelf-tag-text" style="{{.TextCSS}}">{{.Label.Text}}</span></div>
{{- end}}
{{- end}}
</figure>
`))

type htmlPin struct {
	RenderedPin
	MarkerCSS     template.CSS
	LabelCSS      template.CSS
	BackgroundCSS template.CSS
	TextCSS       template.CSS
}

type htmlOverlay struct {
	*Overlay
	Alt       string
	FigureCSS template.CSS
	Pins      []htmlPin
	// Measured is false until the image's intrinsic size is known; the
	// browser then takes the height from the loaded image.
	Measured bool
}

// RenderHTML writes the overlay as positioned HTML over the base image, with an
// SVG layer for connectors. Connector ends are percents of the figure, the
// space the CSS dot and label positions use, so they meet even when the
// image's aspect ratio is only known once it loads. Interactive pins carry
// role="button", tabindex and data-product-id so a client script can route
// click and Enter/Space to the product. A deferred overlay renders the base
// image alone.
func RenderHTML(w io.Writer, o *Overlay, alt string) error {
	view := htmlOverlay{
		Overlay:   o,
		Alt:       alt,
		FigureCSS: template.CSS("position:relative;display:inline-block;margin:0"),
		Pins:      make([]htmlPin, len(o.Pins)),
		Measured:  o.Image.Width > 0 && o.Image.Height > 0,
	}
	if !o.Deferred {
		view.FigureCSS = template.CSS("position:relative;display:inline-block;margin:0;width:" + px(o.Frame.Width))
	}
	for i, rp := range o.Pins {
		// Every value in these strings is computed or sanitized by Normalize.
		view.Pins[i] = htmlPin{
			RenderedPin:   rp,
			MarkerCSS:     template.CSS(rp.Marker.CSS()),
			LabelCSS:      template.CSS(rp.Label.CSS()),
			BackgroundCSS: template.CSS(rp.Label.Background.CSS()),
			TextCSS:       template.CSS(rp.Label.Style.CSS()),
		}
	}
	return overlayTemplate.Execute(w, view)
}

func dashAttr(dash []float64) string {
	if len(dash) == 0 {
		return ""
	}
	parts := make([]string, len(dash))
	for i, d := range dash {
		parts[i] = formatNumber(d)
	}
	return strings.Join(parts, " ")
}
