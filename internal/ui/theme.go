package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds all colours for the application.
// Catppuccin Mocha based dark palette.
type Theme struct {
	Bg            lipgloss.Color
	Surface       lipgloss.Color
	SurfaceHover  lipgloss.Color
	Border        lipgloss.Color
	BorderFocused lipgloss.Color

	Text        lipgloss.Color
	TextMuted   lipgloss.Color
	TextSubtle  lipgloss.Color
	TextInverse lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	Category lipgloss.Color
	Count    lipgloss.Color
	ItemID   lipgloss.Color
	Checked  lipgloss.Color
	Pending  lipgloss.Color
	Required lipgloss.Color
}

// DarkTheme returns the default dark theme.
func DarkTheme() Theme {
	return Theme{
		Bg:            lipgloss.Color("#1e1e2e"),
		Surface:       lipgloss.Color("#282840"),
		SurfaceHover:  lipgloss.Color("#313152"),
		Border:        lipgloss.Color("#3b3b5c"),
		BorderFocused: lipgloss.Color("#7c7cf0"),

		Text:        lipgloss.Color("#cdd6f4"),
		TextMuted:   lipgloss.Color("#9399b2"),
		TextSubtle:  lipgloss.Color("#6c7086"),
		TextInverse: lipgloss.Color("#1e1e2e"),

		Primary:   lipgloss.Color("#89b4fa"),
		Secondary: lipgloss.Color("#b4befe"),
		Accent:    lipgloss.Color("#f5c2e7"),

		Success: lipgloss.Color("#a6e3a1"),
		Warning: lipgloss.Color("#f9e2af"),
		Error:   lipgloss.Color("#f38ba8"),
		Info:    lipgloss.Color("#89b4fa"),

		Category: lipgloss.Color("#a6e3a1"),
		Count:    lipgloss.Color("#9399b2"),
		ItemID:   lipgloss.Color("#f9e2af"),
		Checked:  lipgloss.Color("#f5c2e7"),
		Pending:  lipgloss.Color("#fab387"),
		Required: lipgloss.Color("#f38ba8"),
	}
}

// Styles holds pre-computed lipgloss styles derived from a Theme.
type Styles struct {
	Theme Theme

	// Layout
	StatusBar lipgloss.Style

	// Panels
	Panel        lipgloss.Style
	PanelFocused lipgloss.Style

	// List items
	ListSelected lipgloss.Style

	// Text
	Muted lipgloss.Style
	Bold  lipgloss.Style

	// Content
	CategoryName  lipgloss.Style
	CategoryCount lipgloss.Style
	ItemID        lipgloss.Style
	ItemPreview   lipgloss.Style
	Checked       lipgloss.Style
	Pending       lipgloss.Style
	Date          lipgloss.Style

	// Form
	FieldName     lipgloss.Style
	FieldType     lipgloss.Style
	FieldRequired lipgloss.Style
	FormError     lipgloss.Style

	// Dialogs
	Dialog       lipgloss.Style
	DialogTitle  lipgloss.Style
	DialogButton lipgloss.Style
}

// NewStyles builds all styles from the given theme.
func NewStyles(t Theme) Styles {
	s := Styles{Theme: t}

	s.StatusBar = lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Padding(0, 1)

	s.Panel = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	s.PanelFocused = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.BorderFocused).Padding(0, 1)

	s.ListSelected = lipgloss.NewStyle().Foreground(t.Text).Background(t.SurfaceHover).Bold(true).PaddingLeft(1)

	s.Muted = lipgloss.NewStyle().Foreground(t.TextMuted)
	s.Bold = lipgloss.NewStyle().Foreground(t.Text).Bold(true)

	s.CategoryName = lipgloss.NewStyle().Foreground(t.Category)
	s.CategoryCount = lipgloss.NewStyle().Foreground(t.Count)
	s.ItemID = lipgloss.NewStyle().Foreground(t.ItemID)
	s.ItemPreview = lipgloss.NewStyle().Foreground(t.Text)
	s.Checked = lipgloss.NewStyle().Foreground(t.Checked).Bold(true)
	s.Pending = lipgloss.NewStyle().Foreground(t.Pending).Italic(true)
	s.Date = lipgloss.NewStyle().Foreground(t.TextMuted)

	s.FieldName = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	s.FieldType = lipgloss.NewStyle().Foreground(t.TextMuted)
	s.FieldRequired = lipgloss.NewStyle().Foreground(t.Required)
	s.FormError = lipgloss.NewStyle().Foreground(t.Error)

	s.Dialog = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(t.Primary).Padding(1, 2).Width(60)
	s.DialogTitle = lipgloss.NewStyle().Foreground(t.Text).Bold(true).Align(lipgloss.Center)
	s.DialogButton = lipgloss.NewStyle().Foreground(t.TextInverse).Background(t.Primary).Padding(0, 3).Bold(true)

	return s
}

// DefaultStyles returns styles using the dark theme.
func DefaultStyles() Styles {
	return NewStyles(DarkTheme())
}
