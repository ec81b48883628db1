package artwork

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karolbroda.com/ticktock/internal/colors"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cover.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestFetchFromFile(t *testing.T) {
	path := writePNG(t, solid(8, 8, color.RGBA{R: 200, A: 255}))

	img, err := Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	img, err = Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dy())
}

func TestFetchErrors(t *testing.T) {
	_, err := Fetch(context.Background(), "")
	assert.Error(t, err)

	_, err = Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	notImage := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(notImage, []byte("nope"), 0o644))
	_, err = Fetch(context.Background(), notImage)
	assert.Error(t, err)
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cover.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, solid(4, 4, color.RGBA{B: 255, A: 255}))
	}))
	defer srv.Close()

	img, err := Fetch(context.Background(), srv.URL+"/cover.png")
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	_, err = Fetch(context.Background(), srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "status 404")
}

func TestMainColorNil(t *testing.T) {
	assert.Equal(t, colors.Color(0x123456), MainColor(nil, 0x123456))
}

// twoTone is dark gray on the left and red on the right, with slight
// per-pixel variation so k-means has enough distinct colors to work with.
func twoTone() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8((x + y) % 8)
			if x < 32 {
				img.Set(x, y, color.RGBA{R: 20 + v, G: 20 + v, B: 20 + v, A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 220 - v, G: 40 + v, B: 40, A: 255})
			}
		}
	}
	return img
}

func TestMainColorPicksVibrant(t *testing.T) {
	got := MainColor(twoTone(), 0x000000)
	r, g, b := got.RGB()
	assert.Greater(t, r, g)
	assert.Greater(t, r, b)
}

func TestBlur(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if x < 16 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}

	blurred := Blur(img, 8)
	require.NotNil(t, blurred)
	assert.Equal(t, img.Bounds().Size(), blurred.Bounds().Size())

	// the hard edge should now be a ramp
	r, _, _, _ := blurred.At(blurred.Bounds().Min.X+16, blurred.Bounds().Min.Y+16).RGBA()
	assert.Greater(t, r>>8, uint32(0))
	assert.Less(t, r>>8, uint32(255))

	assert.Same(t, img, Blur(img, 1))
	assert.Nil(t, Blur(nil, 4))
}

func TestRenderHalfBlockArt(t *testing.T) {
	lines := RenderHalfBlockArt(solid(10, 10, color.RGBA{G: 255, A: 255}), 6, 3)
	assert.Len(t, lines, 3)

	assert.Nil(t, RenderHalfBlockArt(nil, 6, 3))
	assert.Nil(t, RenderHalfBlockArt(solid(2, 2, color.White), 2, 3))
}

func TestLoader(t *testing.T) {
	path := writePNG(t, twoTone())
	l := NewLoader(0xABCDEF)

	img, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds().Size(), l.Blur(img).Bounds().Size())
	r, g, _ := l.MainColor(img).RGB()
	assert.Greater(t, r, g)
	assert.Equal(t, colors.Color(0xABCDEF), l.MainColor(nil))
}
