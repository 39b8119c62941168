package preview

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	pscolor "github.com/pinshelf/pinshelf-server/internal/color"
)

var (
	white       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black       = color.NRGBA{A: 255}
	transparent = color.NRGBA{}
	canvasGray  = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
)

// parseColor reads the CSS colors the resolver emits: hex, rgba() and
// named colors. Anything else yields def.
func parseColor(s string, def color.NRGBA) color.NRGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return def
	case s == "transparent":
		return transparent
	case strings.HasPrefix(s, "#"):
		if c, ok := pscolor.ParseHex(s); ok {
			return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
		}
		return def
	case strings.HasPrefix(s, "rgba(") || strings.HasPrefix(s, "rgb("):
		return parseRGBA(s, def)
	}
	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
	}
	return def
}

func parseRGBA(s string, def color.NRGBA) color.NRGBA {
	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open < 0 || end <= open {
		return def
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return def
	}

	var ch [3]uint8
	for i := range 3 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return def
		}
		ch[i] = uint8(min(max(v, 0), 255))
	}
	alpha := 1.0
	if len(parts) == 4 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return def
		}
		alpha = min(max(v, 0), 1)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: uint8(alpha*255 + 0.5)}
}
