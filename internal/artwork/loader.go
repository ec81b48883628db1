package artwork

import (
	"context"
	"image"

	"karolbroda.com/ticktock/internal/colors"
)

// Loader bundles cover fetching with color extraction and blurring.
type Loader struct {
	Fallback   colors.Color
	BlurRadius int
}

func NewLoader(fallback colors.Color) *Loader {
	return &Loader{Fallback: fallback, BlurRadius: 8}
}

func (l *Loader) Load(ctx context.Context, url string) (image.Image, error) {
	return Fetch(ctx, url)
}

func (l *Loader) MainColor(img image.Image) colors.Color {
	return MainColor(img, l.Fallback)
}

func (l *Loader) Blur(img image.Image) image.Image {
	return Blur(img, l.BlurRadius)
}
