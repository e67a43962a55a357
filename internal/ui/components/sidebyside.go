package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/content-manager/internal/ui"
)

// RenderColumns renders two blocks side by side separated by a thin rule.
// The left column gets leftW cells; the right one the rest of totalWidth.
func RenderColumns(styles ui.Styles, left, right string, leftW, totalWidth int) string {
	if leftW < 10 {
		leftW = 10
	}
	rightW := totalWidth - leftW - 3 // 3 for separator
	if rightW < 10 {
		// Too narrow for two columns: stack them.
		return left + "\n" + right
	}

	leftLines := strings.Split(left, "\n")
	rightLines := strings.Split(right, "\n")

	// Pad to same length.
	for len(leftLines) < len(rightLines) {
		leftLines = append(leftLines, "")
	}
	for len(rightLines) < len(leftLines) {
		rightLines = append(rightLines, "")
	}

	sep := lipgloss.NewStyle().Foreground(styles.Theme.Border).Render(" │ ")

	var b strings.Builder
	for i := range leftLines {
		if i > 0 {
			b.WriteByte('\n')
		}
		l := padTo(truncateTo(leftLines[i], leftW), leftW)
		b.WriteString(l + sep + rightLines[i])
	}

	return b.String()
}

// truncateTo shortens plain text lines; styled lines are left alone.
func truncateTo(s string, maxW int) string {
	if lipgloss.Width(s) <= maxW || strings.Contains(s, "\x1b") {
		return s
	}
	return ui.Truncate(s, maxW)
}

func padTo(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
