package ui

import (
	"karolbroda.com/ticktock/internal/colors"
)

const (
	white colors.Color = 0xFFFFFF
	black colors.Color = 0x000000
)

// Theme is the set of colors derived from the cover's main color. Light
// means light content on a dark background.
type Theme struct {
	Background colors.Color
	Primary    colors.Color
	Accent     colors.Color
	Dim        colors.Color
	Error      colors.Color
	Gradient   []colors.Color
	Light      bool
}

func ThemeFor(bg colors.Color, light bool) Theme {
	toward := black
	if light {
		toward = white
	}

	t := Theme{
		Background: bg,
		Primary:    colors.BlendColors(bg, toward, 0.8),
		Accent:     colors.BlendColors(bg, toward, 0.55),
		Dim:        colors.Desaturate(colors.BlendColors(bg, toward, 0.35), 0.6),
		Error:      0xFF6B6B,
		Light:      light,
	}
	t.Gradient = colors.GenerateGradient(t.Primary, t.Accent, 20)
	return t
}

func DefaultTheme(bg colors.Color) Theme {
	return ThemeFor(bg, colors.IsDark(bg))
}
