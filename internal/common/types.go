package common

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Akashdeep-Patra/content-manager/internal/ui/components"
)

// ── Pane identifiers ────────────────────────────────────────────────────────

// PaneID identifies a focusable pane.
type PaneID int

const (
	PaneCategories PaneID = iota
	PaneItems
)

// PaneMeta describes a pane for display purposes.
type PaneMeta struct {
	ID   PaneID
	Name string // Display name shown in the header.
	Icon string
}

// AllPanes is the focus order. Tab/Shift+Tab cycles through it.
var AllPanes = []PaneMeta{
	{PaneCategories, "Categories", "◆"},
	{PaneItems, "Items", "●"},
}

// ── Custom messages ─────────────────────────────────────────────────────────

// RefreshMsg reports content changed elsewhere.
type RefreshMsg struct{}

// ErrMsg carries an error to be displayed.
type ErrMsg struct{ Err error }

// InfoMsg carries an informational message.
type InfoMsg struct{ Text string }

// FocusPaneMsg requests a focus switch.
type FocusPaneMsg struct{ Pane PaneID }

// ShowDialogMsg asks the app to show a dialog. Its DialogResult is routed
// back to the focused pane.
type ShowDialogMsg struct{ Dialog components.Dialog }

// CmdRefresh returns a RefreshMsg (use as return from tea.Cmd).
func CmdRefresh() tea.Msg { return RefreshMsg{} }

// CmdErr creates a tea.Cmd that sends an ErrMsg.
func CmdErr(err error) tea.Cmd {
	return func() tea.Msg { return ErrMsg{Err: err} }
}

// CmdInfo creates a tea.Cmd that sends an InfoMsg.
func CmdInfo(text string) tea.Cmd {
	return func() tea.Msg { return InfoMsg{Text: text} }
}

// CmdDialog creates a tea.Cmd that sends a ShowDialogMsg.
func CmdDialog(d components.Dialog) tea.Cmd {
	return func() tea.Msg { return ShowDialogMsg{Dialog: d} }
}

// ── View interface ──────────────────────────────────────────────────────────

// View is the interface every pane must implement.
type View interface {
	Update(msg tea.Msg) (View, tea.Cmd)
	View() string
	SetSize(width, height int)
	SetFocused(focused bool)
	ShortHelp() []components.HelpEntry

	// InputCapture returns true when the view is in a text-input mode and
	// wants every key, including the global ones.
	InputCapture() bool
}
