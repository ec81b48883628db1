package ui

import (
	"math"
)

// AnimState eases the lyric window from one line to the next.
type AnimState struct {
	Progress float64
	Reveal   float64
	Glow     float64
}

func (a *AnimState) Reset() {
	*a = AnimState{Progress: 1, Reveal: 1}
}

func (a *AnimState) Update(newLine bool, transitionTicks int) {
	if transitionTicks <= 0 {
		transitionTicks = 8
	}

	if newLine {
		a.Progress = 0
		a.Reveal = 0
		a.Glow = 1
	}

	a.Progress = math.Min(1, a.Progress+1/float64(transitionTicks))
	a.Reveal = math.Min(1, a.Reveal+0.08)

	a.Glow *= 0.85
	if a.Glow < 0.01 {
		a.Glow = 0
	}
}

// Revealed is how many of n runes of the current line are drawn.
func (a *AnimState) Revealed(n int) int {
	return int(math.Ceil(easeOutCubic(a.Reveal) * float64(n)))
}

func easeOutCubic(t float64) float64 {
	if t >= 1 {
		return 1
	}
	if t <= 0 {
		return 0
	}
	return 1 - math.Pow(1-t, 3)
}
