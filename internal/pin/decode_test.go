package pin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDecodePin_Loose(t *testing.T) {
	data := []byte(`{
		"id": "pin-1",
		"recipeId": "rcp-1",
		"productId": "sku-1",
		"dotXPercent": "50",
		"dotYPercent": 50.5,
		"tagXPercent": "garbage",
		"tagYPercent": null,
		"dotSizePercent": "2.5%",
		"tagBold": "true",
		"tagItalic": 1,
		"tagBackgroundOpacity": "n/a",
		"tagShadowAngle": 90,
		"tagText": 123,
		"legacyField": {"nested": true}
	}`)

	rp, err := DecodePin(data)
	require.NoError(t, err)

	assert.Equal(t, "pin-1", rp.ID)
	assert.Equal(t, "rcp-1", rp.RecipeID)
	assert.Equal(t, "sku-1", rp.LinkedProductID())
	assert.Equal(t, 50.0, rp.DotXPercent)
	assert.Equal(t, 50.5, rp.DotYPercent)
	assert.Equal(t, 0.0, rp.TagXPercent)
	assert.Equal(t, 0.0, rp.TagYPercent)
	require.NotNil(t, rp.DotSizePercent)
	assert.Equal(t, 2.5, *rp.DotSizePercent)
	require.NotNil(t, rp.TagBold)
	assert.True(t, *rp.TagBold)
	require.NotNil(t, rp.TagItalic)
	assert.True(t, *rp.TagItalic)
	assert.Nil(t, rp.TagBackgroundOpacity)
	require.NotNil(t, rp.TagText)
	assert.Equal(t, "123", *rp.TagText)

	p := Normalize(rp)
	assert.Equal(t, 0.8, p.TagBackgroundOpacity)
	assert.Equal(t, 90.0, p.TagShadowAngle)
}

func TestDecodePin_NullProduct(t *testing.T) {
	rp, err := DecodePin([]byte(`{"id":"pin-2","productId":null}`))
	require.NoError(t, err)
	assert.Nil(t, rp.ProductID)
	assert.False(t, rp.HasProduct())
}

func TestDecodePin_RejectsNonObject(t *testing.T) {
	for _, in := range []string{`[]`, `"pin"`, `null`, `{`, ``} {
		_, err := DecodePin([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestDecodeStyle(t *testing.T) {
	s, err := DecodeStyle([]byte(`{"dotColor":"#ff0000","lineType":"dotted","lineWidthPercent":"0.5"}`))
	require.NoError(t, err)
	require.NotNil(t, s.DotColor)
	assert.Equal(t, "#ff0000", *s.DotColor)
	assert.Equal(t, "dotted", *s.LineType)
	assert.Equal(t, 0.5, *s.LineWidthPercent)

	empty, err := DecodeStyle(nil)
	require.NoError(t, err)
	assert.Nil(t, empty.DotColor)
}

func TestPinFromMap_YAML(t *testing.T) {
	doc := `
id: pin-yaml
dotXPercent: 12
dotYPercent: "34"
tagDisplayText: Best hub
dotShape: triangle
tagUnderline: yes
`
	var m map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(doc), &m))

	rp := PinFromMap(m)
	assert.Equal(t, "pin-yaml", rp.ID)
	assert.Equal(t, 12.0, rp.DotXPercent)
	assert.Equal(t, 34.0, rp.DotYPercent)
	assert.Equal(t, "Best hub", *rp.TagDisplayText)
	assert.Equal(t, "triangle", *rp.DotShape)
	// yaml.v3 reads "yes" as a string; it is not a Go bool literal.
	assert.Nil(t, rp.TagUnderline)
}
