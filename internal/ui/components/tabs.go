package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/content-manager/internal/ui"
)

// HeaderRows is the height of the header: one row of pane tabs plus the
// underline.
const HeaderRows = 2

// TabInfo describes a single pane tab for rendering.
type TabInfo struct {
	Name   string
	Icon   string
	Active bool
	// Badge is shown dimmed after the name, e.g. a count.
	Badge string
}

// RenderHeader renders the title followed by the pane tabs, and an underline
// accenting the focused pane. A hint is overlaid on the right when it fits.
func RenderHeader(styles ui.Styles, title string, tabs []TabInfo, width int) string {
	t := styles.Theme

	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	activeStyle := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	badgeStyle := lipgloss.NewStyle().Foreground(t.TextSubtle)

	var row strings.Builder
	row.WriteByte(' ')
	row.WriteString(titleStyle.Render(title))
	row.WriteString(lipgloss.NewStyle().Foreground(t.Border).Render(" │ "))
	col := lipgloss.Width(row.String())

	activeStart, activeEnd := -1, -1
	for _, tab := range tabs {
		label := tab.Icon + " " + tab.Name
		var styled string
		if tab.Active {
			styled = " " + activeStyle.Render(label)
		} else {
			styled = " " + inactiveStyle.Render(label)
		}
		if tab.Badge != "" {
			styled += " " + badgeStyle.Render(tab.Badge)
		}
		styled += " "

		w := lipgloss.Width(styled)
		if tab.Active {
			activeStart, activeEnd = col, col+w
		}
		row.WriteString(styled)
		col += w
	}

	rendered := lipgloss.NewStyle().
		Width(width).
		MaxWidth(width).
		Background(t.Bg).
		Render(row.String())

	thinChar := "─"
	boldChar := "━"
	borderStyle := lipgloss.NewStyle().Foreground(t.Border)
	accentStyle := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)

	underline := buildUnderline(width, activeStart, activeEnd, borderStyle, accentStyle, thinChar, boldChar)

	hint := lipgloss.NewStyle().Foreground(t.TextSubtle).Faint(true).Render("tab  ?help")
	hintW := lipgloss.Width(hint)
	if hintW+4 < width && activeEnd < width-hintW-1 {
		hintStart := width - hintW - 1
		underline = buildUnderline(hintStart, activeStart, activeEnd, borderStyle, accentStyle, thinChar, boldChar) +
			" " + hint
	}

	return lipgloss.JoinVertical(lipgloss.Left, rendered, lipgloss.NewStyle().Width(width).Render(underline))
}

// buildUnderline builds a width-wide underline string with a bold accent
// segment between activeStart..activeEnd and thin segments elsewhere.
func buildUnderline(width, activeStart, activeEnd int, borderSt, accentSt lipgloss.Style, thin, bold string) string {
	if activeStart < 0 || activeEnd < 0 {
		return borderSt.Render(strings.Repeat(thin, width))
	}
	activeEnd = min(activeEnd, width)
	activeStart = min(activeStart, width)

	var b strings.Builder
	b.Grow(width * 4)
	if activeStart > 0 {
		b.WriteString(borderSt.Render(strings.Repeat(thin, activeStart)))
	}
	if seg := activeEnd - activeStart; seg > 0 {
		b.WriteString(accentSt.Render(strings.Repeat(bold, seg)))
	}
	if rem := width - activeEnd; rem > 0 {
		b.WriteString(borderSt.Render(strings.Repeat(thin, rem)))
	}
	return b.String()
}
