package artwork

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"

	"karolbroda.com/ticktock/internal/colors"
)

const fetchTimeout = 5 * time.Second

// Fetch loads cover art from an http(s) url, a file:// url or a plain path.
func Fetch(ctx context.Context, artworkURL string) (image.Image, error) {
	if artworkURL == "" {
		return nil, errors.New("empty artwork url")
	}

	if !strings.HasPrefix(artworkURL, "http://") && !strings.HasPrefix(artworkURL, "https://") {
		path := strings.TrimPrefix(artworkURL, "file://")
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open artwork file: %w", err)
		}
		defer f.Close()
		return decode(f)
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artworkURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork fetch returned status %d", resp.StatusCode)
	}

	return decode(resp.Body)
}

func decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}
	return img, nil
}

// MainColor picks the most vibrant of the image's prominent colors. Images
// with no usable color, or nil images, give fallback.
func MainColor(img image.Image, fallback colors.Color) colors.Color {
	if img == nil {
		return fallback
	}

	extracted, err := prominentcolor.KmeansWithAll(5, img, prominentcolor.ArgumentDefault, prominentcolor.DefaultSize, nil)
	if err != nil || len(extracted) == 0 {
		return fallback
	}

	best := -1
	bestScore := -1.0
	var bestBrightness float64
	for i, c := range extracted {
		sat, brightness := satBrightness(c)
		score := sat * (1.0 - math.Abs(brightness-0.6))
		if brightness > 0.3 && sat > 0.2 && score > bestScore {
			best = i
			bestScore = score
			bestBrightness = brightness
		}
	}

	// nothing vibrant, fall back to the most common color as is
	if best < 0 {
		c := extracted[0].Color
		return colors.FromRGB(int(c.R), int(c.G), int(c.B))
	}

	c := extracted[best].Color
	return boostColor(c.R, c.G, c.B, bestBrightness)
}

func satBrightness(c prominentcolor.ColorItem) (float64, float64) {
	r := float64(c.Color.R) / 255.0
	g := float64(c.Color.G) / 255.0
	b := float64(c.Color.B) / 255.0

	max := math.Max(math.Max(r, g), b)
	min := math.Min(math.Min(r, g), b)
	if max == 0 {
		return 0, 0
	}
	return (max - min) / max, max
}

func boostColor(r, g, b uint32, brightness float64) colors.Color {
	if brightness < 0.4 {
		factor := math.Min(0.4/brightness, 2.5)
		r = uint32(math.Min(255, float64(r)*factor))
		g = uint32(math.Min(255, float64(g)*factor))
		b = uint32(math.Min(255, float64(b)*factor))
	}

	if brightness > 0.85 {
		avg := float64(r+g+b) / 3
		r = uint32(avg + (float64(r)-avg)*0.7)
		g = uint32(avg + (float64(g)-avg)*0.7)
		b = uint32(avg + (float64(b)-avg)*0.7)
	}

	return colors.FromRGB(int(r), int(g), int(b))
}

// Blur softens img by shrinking it radius times and scaling it back up.
func Blur(img image.Image, radius int) image.Image {
	if img == nil || radius <= 1 {
		return img
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return img
	}

	sw := uint(max(1, w/radius))
	sh := uint(max(1, h/radius))
	small := resize.Resize(sw, sh, img, resize.Bilinear)
	return resize.Resize(uint(w), uint(h), small, resize.Bilinear)
}

func RenderHalfBlockArt(img image.Image, targetWidth int, targetHeight int) []string {
	if img == nil || targetWidth < 4 || targetHeight < 2 {
		return nil
	}

	resized := resize.Resize(uint(targetWidth), uint(targetHeight*2), img, resize.Lanczos3)
	bounds := resized.Bounds()

	lines := make([]string, targetHeight)
	for y := 0; y < targetHeight; y++ {
		var line strings.Builder
		topY := bounds.Min.Y + y*2
		bottomY := topY + 1

		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top, topA := pixel(resized, x, topY)
			bottom, bottomA := top, topA
			if bottomY < bounds.Max.Y {
				bottom, bottomA = pixel(resized, x, bottomY)
			}

			if topA < 128 && bottomA < 128 {
				line.WriteString(" ")
				continue
			}

			style := lipgloss.NewStyle().
				Foreground(top.Lipgloss()).
				Background(bottom.Lipgloss())
			line.WriteString(style.Render("▀"))
		}
		lines[y] = line.String()
	}

	return lines
}

func pixel(img image.Image, x int, y int) (colors.Color, uint32) {
	r, g, b, a := img.At(x, y).RGBA()
	return colors.FromRGB(int(r>>8), int(g>>8), int(b>>8)), a >> 8
}
