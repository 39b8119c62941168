package pin

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinshelf/pinshelf-server/internal/domain"
)

func TestRenderHTML(t *testing.T) {
	pins := NormalizeAll([]domain.RecipePin{
		{
			ID:          "pin-1",
			ProductID:   strPtr("sku-1"),
			DotXPercent: 50, DotYPercent: 50, TagXPercent: 70, TagYPercent: 30,
			PinStyle: domain.PinStyle{LineType: strPtr(domain.LineTypeDotted), LineWidthPercent: floatPtr(0.5)},
		},
		{ID: "pin-2", DotXPercent: 10, DotYPercent: 10, PinStyle: domain.PinStyle{TagText: strPtr("<b>plain</b>")}},
	})
	o := NewRenderer().Render(Input{
		Image:         testImage(),
		Pins:          pins,
		Products:      []domain.ProductSnapshot{{ID: "sku-1", Title: "USB-C Hub"}},
		RenderedWidth: 800,
	})

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, o, "Desk setup"))
	out := buf.String()

	assert.Contains(t, out, `class="pinshelf-recipe"`)
	assert.Contains(t, out, `alt="Desk setup"`)
	assert.Contains(t, out, `x1="50%" y1="50%" x2="70%" y2="30%"`)
	assert.Contains(t, out, `stroke-width="4"`)
	assert.Contains(t, out, `width="800" height="600"`)
	assert.Contains(t, out, `stroke-dasharray="4 4"`)
	assert.Contains(t, out, `data-product-id="sku-1"`)
	assert.Equal(t, 2, strings.Count(out, `role="button"`))
	assert.Contains(t, out, "USB-C Hub")
	assert.Contains(t, out, "&lt;b&gt;plain&lt;/b&gt;")
	assert.NotContains(t, out, "ZgotmplZ")
	assert.NotContains(t, out, `data-deferred`)
}

func TestRenderHTML_Deferred(t *testing.T) {
	o := NewRenderer().Render(Input{
		Image: testImage(),
		Pins:  NormalizeAll([]domain.RecipePin{{ID: "pin-1"}}),
	})

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, o, ""))
	out := buf.String()

	assert.Contains(t, out, `data-deferred="true"`)
	assert.Contains(t, out, "desk.jpg")
	assert.NotContains(t, out, "pinshelf-dot")
	assert.NotContains(t, out, "<svg")
}

func TestRenderHTML_UnmeasuredImage(t *testing.T) {
	o := NewRenderer().Render(Input{
		Image:         domain.RecipeImage{ID: "img-1", URL: "https://cdn.example/tall.jpg"},
		Pins:          NormalizeAll([]domain.RecipePin{{ID: "pin-1", DotXPercent: 50, DotYPercent: 50, TagXPercent: 50, TagYPercent: 80}}),
		RenderedWidth: 800,
	})
	require.False(t, o.Deferred)

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, o, ""))
	out := buf.String()

	// The connector follows the dot's CSS position, not a guessed square frame.
	assert.Contains(t, out, `x1="50%" y1="50%" x2="50%" y2="80%"`)
	assert.Contains(t, out, "top:50%")
	assert.NotContains(t, out, `height="800"`)
	assert.NotContains(t, out, "viewBox")
	assert.Contains(t, out, `width="800"`)
}

func TestDashAttr(t *testing.T) {
	assert.Equal(t, "", dashAttr(nil))
	assert.Equal(t, "8 4", dashAttr([]float64{8, 4}))
	assert.Equal(t, "1.5 1.5", dashAttr([]float64{1.5, 1.5}))
}
