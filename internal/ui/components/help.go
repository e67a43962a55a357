package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/content-manager/internal/ui"
)

// HelpEntry is a single key-description pair for the help overlay.
type HelpEntry struct {
	Key  string
	Desc string
}

// Help sections in display order.
const (
	HelpNavigation = "Navigation"
	HelpCategories = "Categories"
	HelpItems      = "Items"
	HelpForm       = "Form"
	HelpGeneral    = "General"
)

var helpOrder = []string{HelpNavigation, HelpCategories, HelpItems, HelpForm, HelpGeneral}

// RenderHelp renders a full-screen help overlay.
func RenderHelp(styles ui.Styles, title string, sections map[string][]HelpEntry, width, height int) string {
	t := styles.Theme

	titleStr := lipgloss.NewStyle().
		Foreground(t.Primary).Bold(true).
		Align(lipgloss.Center).
		Width(min(70, width-4) - 8).
		Render(title)

	var body strings.Builder
	body.WriteString(titleStr + "\n\n")

	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Underline(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Width(16).Align(lipgloss.Right)
	descStyle := lipgloss.NewStyle().Foreground(t.Text)

	for _, section := range helpOrder {
		entries, ok := sections[section]
		if !ok || len(entries) == 0 {
			continue
		}
		body.WriteString(sectionStyle.Render(section) + "\n")
		for _, e := range entries {
			body.WriteString("  " + keyStyle.Render(e.Key) + "  " + descStyle.Render(e.Desc) + "\n")
		}
		body.WriteString("\n")
	}

	overlay := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(t.Primary).
		Padding(1, 3).
		Width(min(70, width-4)).
		MaxHeight(height - 2).
		Render(strings.TrimRight(body.String(), "\n"))

	return ui.PlaceCentre(width, height, overlay)
}

// GlobalHelpEntries returns the help entries for global keybindings.
func GlobalHelpEntries() map[string][]HelpEntry {
	return map[string][]HelpEntry{
		HelpNavigation: {
			{Key: "j / ↓", Desc: "Move down"},
			{Key: "k / ↑", Desc: "Move up"},
			{Key: "g / Home", Desc: "Go to top"},
			{Key: "G / End", Desc: "Go to bottom"},
			{Key: "tab", Desc: "Next pane"},
			{Key: "shift+tab", Desc: "Previous pane"},
			{Key: "esc", Desc: "Back / cancel"},
		},
		HelpGeneral: {
			{Key: "r", Desc: "Refresh items"},
			{Key: "?", Desc: "Toggle this help"},
			{Key: "q / ctrl+c", Desc: "Quit"},
		},
	}
}
