package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/content-manager/internal/ui"
)

// StatusBarData carries the info displayed in the bottom status bar.
type StatusBarData struct {
	BaseURL  string
	Category string
	// Total is the item count of the category; Matching the count of the
	// current search.
	Total    int
	Matching int
	Search   string
	Loading  bool
	Busy     bool
	Message  string // transient info/error message
	IsError  bool
}

// RenderStatusBar renders the bottom status bar with visual sections
// separated by dim vertical bars.
//
// Wide (>= 60):   ◆ faq  │  12 items  │  ⟳                 localhost:3000
// Narrow (< 60):  ◆ faq  │  12 items
func RenderStatusBar(styles ui.Styles, data StatusBarData, width int) string {
	t := styles.Theme

	sepStyle := lipgloss.NewStyle().Foreground(t.Border).Faint(true)
	sep := sepStyle.Render(" │ ")

	// ── Left sections ────────────────────────────────────────────

	categoryStyle := lipgloss.NewStyle().Foreground(t.Category).Bold(true)
	left := " " + categoryStyle.Render("◆ "+data.Category)

	if data.Loading {
		left += sep + styles.Pending.Render("loading…")
	} else {
		counts := fmt.Sprintf("%d items", data.Total)
		if data.Search != "" {
			counts = fmt.Sprintf("%d of %d match %q", data.Matching, data.Total, data.Search)
		}
		left += sep + styles.Muted.Render(counts)
	}

	if data.Busy && width >= 40 {
		left += sep + styles.Pending.Render("⟳")
	}

	// ── Right section ────────────────────────────────────────────

	var right string
	if data.Message != "" {
		fg := t.Info
		if data.IsError {
			fg = t.Error
		}
		right = lipgloss.NewStyle().Foreground(fg).Render(data.Message) + " "
	} else if width >= 60 && data.BaseURL != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(data.BaseURL, "https://"), "http://")
		right = lipgloss.NewStyle().Foreground(t.TextSubtle).Render(host) + " "
	}

	// ── Assemble ─────────────────────────────────────────────────

	leftW := lipgloss.Width(left)
	rightW := lipgloss.Width(right)
	gap := width - leftW - rightW
	if gap < 0 {
		gap = 1
		right = "" // drop right side if no room
	}

	content := left + strings.Repeat(" ", gap) + right

	return styles.StatusBar.Width(width).Render(content)
}
