package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/content-manager/internal/ui"
)

// RenderScrollbar returns a vertical scrollbar track for a list of total
// rows of which visible rows starting at offset are shown. The thumb size is
// proportional to the visible share.
//
// Returns an empty string if all rows fit.
func RenderScrollbar(styles ui.Styles, height, total, visible, offset int) string {
	if total <= visible || height < 1 {
		return ""
	}

	t := styles.Theme

	thumbSize := max(height*visible/total, 1)
	thumbSize = min(thumbSize, height)

	maxOffset := height - thumbSize
	thumbStart := 0
	if scrollable := total - visible; scrollable > 0 {
		thumbStart = offset * maxOffset / scrollable
	}
	thumbStart = min(max(thumbStart, 0), maxOffset)

	thumbStyle := lipgloss.NewStyle().Foreground(t.Primary)
	trackStyle := lipgloss.NewStyle().Foreground(t.Border)

	var b strings.Builder
	b.Grow(height * 4)
	for i := range height {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i >= thumbStart && i < thumbStart+thumbSize {
			b.WriteString(thumbStyle.Render("█"))
		} else {
			b.WriteString(trackStyle.Render("░"))
		}
	}
	return b.String()
}

// WithScrollbar places a scrollbar to the right of a list body padded to
// width. Without a scrollbar the body is returned as is.
func WithScrollbar(styles ui.Styles, body string, width, height, total, visible, offset int) string {
	bar := RenderScrollbar(styles, height, total, visible, offset)
	if bar == "" {
		return body
	}
	body = lipgloss.NewStyle().Width(width - 1).Height(height).MaxHeight(height).Render(body)
	return lipgloss.JoinHorizontal(lipgloss.Top, body, bar)
}
