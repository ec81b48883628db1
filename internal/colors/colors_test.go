package colors

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexRoundTrip(t *testing.T) {
	c, err := ParseHex("#8BA4E8")
	require.NoError(t, err)
	assert.Equal(t, Color(0x8BA4E8), c)
	assert.Equal(t, "#8BA4E8", c.Hex())

	r, g, b := c.RGB()
	assert.Equal(t, []int{0x8B, 0xA4, 0xE8}, []int{r, g, b})

	_, err = ParseHex("#12345")
	assert.Error(t, err)
	_, err = ParseHex("zzzzzz")
	assert.Error(t, err)
}

func TestFromRGBClamps(t *testing.T) {
	assert.Equal(t, Color(0xFF0000), FromRGB(300, -5, 0))
}

func TestIsDark(t *testing.T) {
	assert.True(t, IsDark(0x000000))
	assert.True(t, IsDark(0x1A1A40))
	assert.False(t, IsDark(0xFFFFFF))
	assert.False(t, IsDark(0xF0E68C))
}

func TestLightnessExtremes(t *testing.T) {
	assert.InDelta(t, 0, Color(0x000000).Lightness(), 0.5)
	assert.InDelta(t, 100, Color(0xFFFFFF).Lightness(), 0.5)
}

func TestGradientEndpoints(t *testing.T) {
	start := Color(0x8BA4E8)
	end := Color(0xE8A4C8)
	gradient := GenerateGradient(start, end, 20)
	require.Len(t, gradient, 20)

	// lch round trips can drift by one step per channel
	assertClose(t, start, gradient[0])
	assertClose(t, end, gradient[19])

	assert.Len(t, GenerateGradient(start, end, 0), 2)
}

func TestBlendHalfway(t *testing.T) {
	assertClose(t, 0x000000, BlendColors(0x000000, 0xFFFFFF, 0))
	assertClose(t, 0xFFFFFF, BlendColors(0x000000, 0xFFFFFF, 1))
	mid := BlendColors(0x000000, 0xFFFFFF, 0.5)
	assert.InDelta(t, 50, mid.Lightness(), 1)
}

func TestDesaturate(t *testing.T) {
	gray := Desaturate(0xFF0000, 1)
	r, g, b := gray.RGB()
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
	assert.Equal(t, Color(0x123456), Desaturate(0x123456, 0))
}

func TestCacheFirstWriterWins(t *testing.T) {
	c := NewCache()
	_, ok := c.Get("http://x/cover.jpg")
	assert.False(t, ok)

	assert.Equal(t, Color(0x112233), c.Put("http://x/cover.jpg", 0x112233))
	assert.Equal(t, Color(0x112233), c.Put("http://x/cover.jpg", 0x445566))

	got, ok := c.Get("http://x/cover.jpg")
	assert.True(t, ok)
	assert.Equal(t, Color(0x112233), got)
	assert.Equal(t, 1, c.Len())
}

func TestCacheConcurrentPut(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	results := make([]Color, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Put("u", Color(i))
		}(i)
	}
	wg.Wait()

	stored, _ := c.Get("u")
	for _, r := range results {
		assert.Equal(t, stored, r)
	}
}

func assertClose(t *testing.T, want Color, got Color) {
	t.Helper()
	wr, wg, wb := want.RGB()
	gr, gg, gb := got.RGB()
	assert.InDelta(t, wr, gr, 2)
	assert.InDelta(t, wg, gg, 2)
	assert.InDelta(t, wb, gb, 2)
}
