package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	figure "github.com/common-nighthawk/go-figure"

	"karolbroda.com/ticktock/internal/artwork"
	"karolbroda.com/ticktock/internal/colors"
)

const bannerText = "ticktock"

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	var lines []string
	if m.song == nil {
		lines = m.renderWaitingScreen(width, height)
	} else {
		lines = m.renderMainScreen(width, height)
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderWaitingScreen(width int, height int) []string {
	banner := figure.NewFigure(bannerText, "", true).Slicify()

	var body []string
	gradient := m.theme.Gradient
	for _, row := range banner {
		if strings.TrimSpace(row) == "" {
			continue
		}
		body = append(body, centerText(colors.RenderGradientText(row, gradient, true), width))
	}

	wait := lipgloss.NewStyle().Foreground(m.theme.Dim.Lipgloss()).Italic(true).Render("awaiting music")
	body = append(body, "", centerText(m.spinner.View()+" "+wait, width))

	return padTop(body, height)
}

func (m Model) renderMainScreen(width int, height int) []string {
	var lines []string
	if !m.hideHeader {
		lines = append(lines, m.renderHeader(width)...)
	}

	remaining := height - len(lines)
	band := m.renderBackgroundBand(width)
	remaining -= len(band)

	switch {
	case m.loading:
		lines = append(lines, m.renderStatus(m.spinner.View()+" loading lyrics", m.theme.Dim, remaining, width)...)
	case m.err != nil:
		lines = append(lines, m.renderStatus(m.err.Error(), m.theme.Error, remaining, width)...)
	case m.index < 0 || m.index >= len(m.lines):
		lines = append(lines, m.renderStatus("♪", m.theme.Dim, remaining, width)...)
	default:
		lines = append(lines, m.renderLyrics(remaining, width)...)
	}

	for len(lines) < height-len(band) {
		lines = append(lines, "")
	}
	return append(lines, band...)
}

func (m Model) renderHeader(width int) []string {
	artWidth, artHeight := 12, 6
	if width < 80 {
		artWidth, artHeight = 8, 4
	}
	if width < 50 || m.height < 20 {
		artWidth, artHeight = 0, 0
	}

	art := artwork.RenderHalfBlockArt(m.cover, artWidth, artHeight)
	info := m.renderTrackInfo(width - artWidth - 6)

	rows := len(info)
	if len(art) > rows {
		rows = len(art)
	}

	lines := []string{""}
	for i := 0; i < rows; i++ {
		var line strings.Builder
		line.WriteString("  ")
		if artWidth > 0 {
			if i < len(art) {
				line.WriteString(art[i])
			} else {
				line.WriteString(strings.Repeat(" ", artWidth))
			}
			line.WriteString("  ")
		}
		if i < len(info) {
			line.WriteString(info[i])
		}
		lines = append(lines, line.String())
	}

	lines = append(lines, "")
	if m.song.DurationSecs > 0 {
		lines = append(lines, m.renderProgress(width))
	}
	return append(lines, "")
}

func (m Model) renderTrackInfo(maxWidth int) []string {
	if maxWidth < 20 {
		maxWidth = 20
	}

	titleStyle := lipgloss.NewStyle().Foreground(m.theme.Primary.Lipgloss()).Bold(true)
	artistStyle := lipgloss.NewStyle().Foreground(m.theme.Accent.Lipgloss())
	dimStyle := lipgloss.NewStyle().Foreground(m.theme.Dim.Lipgloss())

	heart := dimStyle.Render("♡")
	if m.favorite {
		heart = lipgloss.NewStyle().Foreground(m.theme.Error.Lipgloss()).Render("♥")
	}

	lines := []string{
		titleStyle.Render(truncate(m.song.Title, maxWidth-2)) + " " + heart,
		artistStyle.Render(truncate(m.song.ArtistName, maxWidth)),
	}
	if m.song.Album != "" {
		lines = append(lines, dimStyle.Render(truncate(m.song.Album, maxWidth)))
	}
	if m.syncOffset != 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("offset %+.1fs", m.syncOffset)))
	}
	return lines
}

func (m Model) renderProgress(width int) string {
	total := m.song.DurationSecs * 1000
	barWidth := width - 20
	if barWidth < 20 {
		barWidth = 20
	}

	progress := float64(m.positionMs) / float64(total)
	progress = min(1, max(0, progress))
	filled := int(float64(barWidth) * progress)

	filledStyle := lipgloss.NewStyle().Foreground(m.theme.Primary.Lipgloss())
	emptyStyle := lipgloss.NewStyle().Foreground(m.theme.Dim.Lipgloss()).Faint(true)

	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		switch {
		case i < filled:
			bar.WriteString(filledStyle.Render("━"))
		case i == filled:
			bar.WriteString(filledStyle.Render("●"))
		default:
			bar.WriteString(emptyStyle.Render("─"))
		}
	}

	timeStyle := lipgloss.NewStyle().Foreground(m.theme.Dim.Lipgloss())
	return fmt.Sprintf("  %s  %s  %s",
		timeStyle.Render(formatClock(m.positionMs)),
		bar.String(),
		timeStyle.Render(formatClock(total)))
}

// renderLyrics draws the current line centered with a few lines of context
// on either side. The window slides up as a new line takes focus.
func (m Model) renderLyrics(height int, width int) []string {
	context := 3
	if height < 16 {
		context = 1
	}

	var window []string
	focus := 0
	for offset := -context; offset <= context; offset++ {
		idx := m.index + offset
		if idx < 0 || idx >= len(m.lines) {
			continue
		}

		text := m.lines[idx].Text
		if offset == 0 {
			focus = len(window)
			window = append(window, m.renderFocusLine(text, width))
		} else {
			window = append(window, m.renderContextLine(text, offset, width))
		}
		window = append(window, "")
	}

	// lines still sliding into place sit one row lower
	slide := 0
	if m.anim.Progress < 1 {
		slide = int(2 * (1 - easeOutCubic(m.anim.Progress)))
	}

	top := height/2 - focus + slide
	out := make([]string, height)
	for i, line := range window {
		row := top + i
		if row >= 0 && row < height {
			out[row] = line
		}
	}
	return out
}

func (m Model) renderFocusLine(text string, width int) string {
	if text == "" {
		text = "···"
	}
	runes := []rune(text)
	shown := string(runes[:min(len(runes), m.anim.Revealed(len(runes)))])

	gradient := m.theme.Gradient
	if m.anim.Glow > 0.05 {
		glow := make([]colors.Color, len(gradient))
		for i, c := range gradient {
			glow[i] = colors.BlendColors(c, white, m.anim.Glow*0.3)
		}
		gradient = glow
	}

	rendered := colors.RenderGradientText(shown, gradient, true)
	// pad by the full line so the reveal does not shift it sideways
	return strings.Repeat(" ", max(0, (width-len(runes))/2)) + rendered
}

func (m Model) renderContextLine(text string, offset int, width int) string {
	dist := offset
	if dist < 0 {
		dist = -dist
	}

	fade := 0.35 + 0.2*float64(dist)
	c := colors.BlendColors(m.theme.Accent, m.theme.Background, min(fade, 0.85))
	if offset < 0 {
		c = colors.Desaturate(c, 0.5)
	}

	style := lipgloss.NewStyle().Foreground(c.Lipgloss())
	return centerText(style.Render(truncate(text, width-4)), width)
}

func (m Model) renderStatus(text string, c colors.Color, height int, width int) []string {
	style := lipgloss.NewStyle().Foreground(c.Lipgloss())
	return padTop([]string{centerText(style.Render(text), width)}, height)
}

// renderBackgroundBand shows the blurred cover as a thin strip along the
// bottom edge.
func (m Model) renderBackgroundBand(width int) []string {
	if m.background == nil || m.hideHeader {
		return nil
	}
	return artwork.RenderHalfBlockArt(m.background, width, 2)
}

func padTop(body []string, height int) []string {
	pad := (height - len(body)) / 2
	if pad < 0 {
		pad = 0
	}
	return append(make([]string, pad), body...)
}

func centerText(text string, screenWidth int) string {
	padding := (screenWidth - lipgloss.Width(text)) / 2
	if padding < 0 {
		padding = 0
	}
	return strings.Repeat(" ", padding) + text
}

func truncate(s string, maxWidth int) string {
	runes := []rune(s)
	if maxWidth < 1 || len(runes) <= maxWidth {
		return s
	}
	return string(runes[:maxWidth-1]) + "…"
}

func formatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
