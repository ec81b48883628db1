package colors

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color is a 24-bit RGB value, 0xRRGGBB.
type Color uint32

func FromRGB(r int, g int, b int) Color {
	r = clampInt(r, 0, 255)
	g = clampInt(g, 0, 255)
	b = clampInt(b, 0, 255)
	return Color(r<<16 | g<<8 | b)
}

// ParseHex accepts "#RRGGBB" or "RRGGBB".
func ParseHex(hex string) (Color, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return Color(v), nil
}

// MustParseHex is ParseHex for constants.
func MustParseHex(hex string) Color {
	c, err := ParseHex(hex)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) RGB() (int, int, int) {
	return int(c>>16) & 0xFF, int(c>>8) & 0xFF, int(c) & 0xFF
}

func (c Color) Hex() string {
	r, g, b := c.RGB()
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

func (c Color) Lipgloss() lipgloss.Color {
	return lipgloss.Color(c.Hex())
}

// Lightness is the perceived lightness on a 0-100 scale (L of LCH).
func (c Color) Lightness() float64 {
	l, _, _ := rgbToLCH(c.RGB())
	return l
}

// IsDark reports whether light foreground content reads better on c.
func IsDark(c Color) bool {
	return c.Lightness() < 50
}

func GenerateGradient(start Color, end Color, steps int) []Color {
	if steps < 2 {
		steps = 2
	}

	// convert to lch for perceptually uniform color interpolation
	sl, sc, sh := rgbToLCH(start.RGB())
	el, ec, eh := rgbToLCH(end.RGB())

	hueDiff := shortestHue(sh, eh)

	chromaDiff := math.Abs(ec - sc)
	lightnessDiff := math.Abs(el - sl)
	needsSmoothing := chromaDiff > 30 || math.Abs(hueDiff) > 60 || lightnessDiff > 30

	gradient := make([]Color, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		if needsSmoothing {
			t = smoothStep(smoothStep(t))
		}
		gradient[i] = interpolate(sl, sc, sh, el, ec, hueDiff, t)
	}

	return gradient
}

func BlendColors(a Color, b Color, t float64) Color {
	l1, c1, h1 := rgbToLCH(a.RGB())
	l2, c2, h2 := rgbToLCH(b.RGB())
	return interpolate(l1, c1, h1, l2, c2, shortestHue(h1, h2), t)
}

func Desaturate(c Color, amount float64) Color {
	r, g, b := c.RGB()
	gray := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	mix := func(v int) int {
		return int(float64(v) + (gray-float64(v))*amount)
	}
	return FromRGB(mix(r), mix(g), mix(b))
}

func RenderGradientText(text string, gradient []Color, bold bool) string {
	if len(text) == 0 {
		return ""
	}
	if len(gradient) == 0 {
		return text
	}

	runes := []rune(text)
	var result strings.Builder

	for i, r := range runes {
		colorIdx := 0
		if len(runes) > 1 {
			colorIdx = i * (len(gradient) - 1) / (len(runes) - 1)
		}
		if colorIdx >= len(gradient) {
			colorIdx = len(gradient) - 1
		}

		style := lipgloss.NewStyle().Foreground(gradient[colorIdx].Lipgloss())
		if bold {
			style = style.Bold(true)
		}
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}

func interpolate(l1, c1, h1, l2, c2, hueDiff, t float64) Color {
	l := l1 + t*(l2-l1)
	c := c1 + t*(c2-c1)
	h := h1 + t*hueDiff
	if h < 0 {
		h += 360
	} else if h >= 360 {
		h -= 360
	}
	return FromRGB(lchToRGB(l, c, h))
}

// shortestHue avoids going around the color wheel the long way
func shortestHue(from float64, to float64) float64 {
	diff := to - from
	if diff > 180 {
		diff -= 360
	} else if diff < -180 {
		diff += 360
	}
	return diff
}

func clampInt(val int, min int, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// smoothStep is 3t^2 - 2t^3 clamped to [0, 1]
func smoothStep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

func rgbToLCH(r int, g int, b int) (float64, float64, float64) {
	gamma := func(v int) float64 {
		f := float64(v) / 255.0
		if f > 0.04045 {
			return math.Pow((f+0.055)/1.055, 2.4)
		}
		return f / 12.92
	}
	rf, gf, bf := gamma(r), gamma(g), gamma(b)

	// xyz, d65 illuminant
	x := (rf*0.4124564 + gf*0.3575761 + bf*0.1804375) / 0.95047
	y := (rf*0.2126729 + gf*0.7151522 + bf*0.0721750) / 1.00000
	z := (rf*0.0193339 + gf*0.1191920 + bf*0.9503041) / 1.08883

	labFunc := func(t float64) float64 {
		if t > 0.008856 {
			return math.Pow(t, 1.0/3.0)
		}
		return (7.787 * t) + (16.0 / 116.0)
	}

	x, y, z = labFunc(x), labFunc(y), labFunc(z)

	l := (116.0 * y) - 16.0
	labA := 500.0 * (x - y)
	labB := 200.0 * (y - z)

	c := math.Sqrt(labA*labA + labB*labB)
	h := math.Atan2(labB, labA) * 180.0 / math.Pi
	if h < 0 {
		h += 360
	}

	return l, c, h
}

func lchToRGB(l float64, c float64, h float64) (int, int, int) {
	hRad := h * math.Pi / 180.0
	labA := c * math.Cos(hRad)
	labB := c * math.Sin(hRad)

	y := (l + 16.0) / 116.0
	x := labA/500.0 + y
	z := y - labB/200.0

	labInvFunc := func(t float64) float64 {
		t3 := t * t * t
		if t3 > 0.008856 {
			return t3
		}
		return (t - 16.0/116.0) / 7.787
	}

	x = labInvFunc(x) * 0.95047
	y = labInvFunc(y) * 1.00000
	z = labInvFunc(z) * 1.08883

	rLin := x*3.2404542 + y*-1.5371385 + z*-0.4985314
	gLin := x*-0.9692660 + y*1.8760108 + z*0.0415560
	bLin := x*0.0556434 + y*-0.2040259 + z*1.0572252

	gammaInv := func(t float64) int {
		if t > 0.0031308 {
			t = 1.055*math.Pow(t, 1.0/2.4) - 0.055
		} else {
			t = 12.92 * t
		}
		return clampInt(int(t*255.0+0.5), 0, 255)
	}

	return gammaInv(rLin), gammaInv(gLin), gammaInv(bLin)
}
