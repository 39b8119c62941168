package images

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFetcher_Fetch(t *testing.T) {
	data := testPNG(t, 160, 120)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/desk.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	storage := setupTestStorage(t)
	f := NewFetcher(storage, srv.Client(), nil)

	probe, err := f.Fetch(context.Background(), "img-1", srv.URL+"/desk.png")
	require.NoError(t, err)
	assert.Equal(t, 160, probe.Width)
	assert.Equal(t, 120, probe.Height)
	assert.Equal(t, "png", probe.Format)
	assert.NotEmpty(t, probe.BlurHash)
	assert.Equal(t, int64(len(data)), probe.Size)
	stored, err := storage.Get("img-1")
	require.NoError(t, err)
	assert.Equal(t, data, stored)

	_, err = f.Fetch(context.Background(), "img-2", srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "status 404")

	_, err = f.Fetch(context.Background(), "img-3", "")
	assert.ErrorContains(t, err, "empty image URL")
}

func TestFetcher_FetchRejectsNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not an image</html>"))
	}))
	defer srv.Close()

	f := NewFetcher(nil, srv.Client(), nil)
	_, err := f.Fetch(context.Background(), "img-1", srv.URL)
	assert.ErrorContains(t, err, "decode image")
}

func TestFetcher_LoadUsesStorage(t *testing.T) {
	var hits atomic.Int32
	data := testPNG(t, 40, 30)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(data)
	}))
	defer srv.Close()

	f := NewFetcher(setupTestStorage(t), srv.Client(), nil)

	img, err := f.Load(context.Background(), "img-1", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())

	img, err = f.Load(context.Background(), "img-1", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dy())
	assert.Equal(t, int32(1), hits.Load())
}

func TestDecodeConfig(t *testing.T) {
	w, h, format, err := DecodeConfig(testPNG(t, 12, 7))
	require.NoError(t, err)
	assert.Equal(t, 12, w)
	assert.Equal(t, 7, h)
	assert.Equal(t, "png", format)

	_, _, _, err = DecodeConfig([]byte("nope"))
	assert.Error(t, err)
}

func TestThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 100))

	thumb := Thumbnail(src, 64)
	assert.Equal(t, 64, thumb.Bounds().Dx())
	assert.Equal(t, 16, thumb.Bounds().Dy())

	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.Same(t, small, Thumbnail(small, 64))

	tall := image.NewRGBA(image.Rect(0, 0, 1, 1000))
	thumb = Thumbnail(tall, 64)
	assert.Equal(t, 1, thumb.Bounds().Dx())
	assert.Equal(t, 64, thumb.Bounds().Dy())
}
