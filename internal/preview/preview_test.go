package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	"github.com/pinshelf/pinshelf-server/internal/pin"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func testOverlay(t *testing.T, width float64) *pin.Overlay {
	t.Helper()
	sku := "prd-1"
	rp := domain.RecipePin{
		ID:          "pin-1",
		ProductID:   &sku,
		DotXPercent: 50, DotYPercent: 50,
		TagXPercent: 70, TagYPercent: 30,
		PinStyle: domain.PinStyle{
			DotColor:                   strPtr("#ff0000"),
			DotSizePercent:             floatPtr(4),
			LineWidthPercent:           floatPtr(0.5),
			TagBackgroundWidthPercent:  floatPtr(10),
			TagBackgroundHeightPercent: floatPtr(5),
			TagBackgroundColor:         strPtr("#0000ff"),
			TagBackgroundOpacity:       floatPtr(1),
		},
	}
	return pin.NewRenderer().Render(pin.Input{
		Image:         domain.RecipeImage{URL: "https://cdn.example/desk.jpg", Width: 1600, Height: 1200},
		Pins:          []pin.Pin{pin.Normalize(rp)},
		Items:         []domain.ProductSnapshot{{ID: "prd-1", Title: "Lamp"}},
		RenderedWidth: width,
	})
}

func TestDraw_Dimensions(t *testing.T) {
	r, err := New("", nil)
	require.NoError(t, err)

	img, err := r.Draw(nil, testOverlay(t, 800))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestDraw_MarkerColor(t *testing.T) {
	r, err := New("", nil)
	require.NoError(t, err)

	img, err := r.Draw(nil, testOverlay(t, 800))
	require.NoError(t, err)

	cr, cg, cb, _ := img.At(400, 300).RGBA()
	assert.Greater(t, cr>>8, uint32(200), "marker center should be red")
	assert.Less(t, cg>>8, uint32(60))
	assert.Less(t, cb>>8, uint32(60))

	// Far corner keeps the neutral canvas.
	gr, _, _, _ := img.At(5, 595).RGBA()
	assert.Equal(t, uint32(canvasGray.R), gr>>8)
}

func TestDraw_ScalesBase(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 160, 120))
	for y := range 120 {
		for x := range 160 {
			base.Set(x, y, color.RGBA{G: 200, A: 255})
		}
	}
	r, err := New("", nil)
	require.NoError(t, err)

	img, err := r.Draw(base, testOverlay(t, 400))
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())

	_, g, _, _ := img.At(10, 290).RGBA()
	assert.InDelta(t, 200, float64(g>>8), 2)
}

func TestDraw_Deferred(t *testing.T) {
	r, err := New("", nil)
	require.NoError(t, err)

	_, err = r.Draw(nil, testOverlay(t, 0))
	assert.ErrorIs(t, err, ErrDeferred)

	_, err = r.Draw(nil, nil)
	assert.ErrorIs(t, err, ErrDeferred)
}

func TestDraw_TooWide(t *testing.T) {
	r, err := New("", nil)
	require.NoError(t, err)

	_, err = r.Draw(nil, testOverlay(t, MaxWidth+1))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDraw_TallImageRejectedBeforeAllocating(t *testing.T) {
	r, err := New("", nil)
	require.NoError(t, err)

	// A 1x5000 banner at full width would need a 2400x12000000 canvas.
	o := pin.NewRenderer().Render(pin.Input{
		Image:         domain.RecipeImage{URL: "https://cdn.example/banner.png", Width: 1, Height: 5000},
		RenderedWidth: MaxWidth,
	})
	require.False(t, o.Deferred)

	_, err = r.Draw(nil, o)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.ErrorIs(t, r.EncodePNG(io.Discard, nil, o), ErrTooLarge)

	// The same image fits once the height is within bounds.
	o = pin.NewRenderer().Render(pin.Input{
		Image:         domain.RecipeImage{URL: "https://cdn.example/banner.png", Width: 1, Height: 5000},
		RenderedWidth: 1,
	})
	img, err := r.Draw(nil, o)
	require.NoError(t, err)
	assert.Equal(t, 5000, img.Bounds().Dy())
}

func TestEncodePNG(t *testing.T) {
	r, err := New("", nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.EncodePNG(&buf, nil, testOverlay(t, 320)))

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 240, cfg.Height)
}

func TestNew_MissingFont(t *testing.T) {
	_, err := New("/nonexistent/font.ttf", nil)
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#ff0000", color.NRGBA{R: 255, A: 255}},
		{"#0f0", color.NRGBA{G: 255, A: 255}},
		{"rgba(0,0,255,0.5)", color.NRGBA{B: 255, A: 128}},
		{"rgb(10, 20, 30)", color.NRGBA{R: 10, G: 20, B: 30, A: 255}},
		{"white", color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{"transparent", transparent},
		{"", black},
		{"rgba(1,2)", black},
		{"#zzzzzz", black},
		{"notacolor", black},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseColor(tt.in, black))
		})
	}
}
