package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/content-manager/internal/ui"
)

// DialogKind specifies the type of dialog.
type DialogKind int

const (
	DialogConfirm DialogKind = iota
	DialogInput
)

// DialogResult is sent when the dialog is dismissed.
type DialogResult struct {
	Confirmed bool
	Value     string
	Tag       string // arbitrary tag to identify which dialog this was
	// Payload is carried back unchanged from the dialog.
	Payload any
}

// Dialog is a modal confirmation or input dialog.
type Dialog struct {
	Kind    DialogKind
	Title   string
	Message string
	Tag     string
	Payload any
	input   textinput.Model
	focused int // 0 = yes/input, 1 = no
	styles  ui.Styles
	visible bool
}

// NewConfirmDialog creates a Yes/No confirmation dialog. Destructive
// confirmations start on "No".
func NewConfirmDialog(styles ui.Styles, title, message, tag string) Dialog {
	return Dialog{
		Kind:    DialogConfirm,
		Title:   title,
		Message: message,
		Tag:     tag,
		focused: 1,
		styles:  styles,
		visible: true,
	}
}

// NewInputDialog creates a text input dialog prefilled with value.
func NewInputDialog(styles ui.Styles, title, placeholder, value, tag string) Dialog {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 50
	return Dialog{
		Kind:    DialogInput,
		Title:   title,
		Tag:     tag,
		input:   ti,
		styles:  styles,
		visible: true,
	}
}

// WithPayload attaches data that is returned in the DialogResult.
func (d Dialog) WithPayload(p any) Dialog {
	d.Payload = p
	return d
}

// Visible returns whether the dialog is showing.
func (d Dialog) Visible() bool { return d.visible }

// Update handles key events for the dialog.
func (d Dialog) Update(msg tea.Msg) (Dialog, tea.Cmd) {
	if !d.visible {
		return d, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			d.visible = false
			return d, d.result(false, "")

		case "enter":
			d.visible = false
			if d.Kind == DialogInput {
				return d, d.result(true, d.input.Value())
			}
			return d, d.result(d.focused == 0, "")

		case "y", "Y":
			if d.Kind == DialogConfirm {
				d.visible = false
				return d, d.result(true, "")
			}

		case "n", "N":
			if d.Kind == DialogConfirm {
				d.visible = false
				return d, d.result(false, "")
			}

		case "tab", "left", "right", "h", "l":
			if d.Kind == DialogConfirm {
				d.focused = 1 - d.focused
			}
		}
	}

	if d.Kind == DialogInput {
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return d, cmd
	}
	return d, nil
}

func (d Dialog) result(confirmed bool, value string) tea.Cmd {
	r := DialogResult{Confirmed: confirmed, Value: value, Tag: d.Tag, Payload: d.Payload}
	return func() tea.Msg { return r }
}

// View renders the dialog.
func (d Dialog) View() string {
	if !d.visible {
		return ""
	}
	t := d.styles.Theme

	title := d.styles.DialogTitle.Render(d.Title)
	var content string

	if d.Kind == DialogConfirm {
		message := lipgloss.NewStyle().Foreground(t.TextMuted).Render(d.Message)
		yes := "  Yes  "
		no := "  No   "
		activeBtn := d.styles.DialogButton
		inactiveBtn := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Padding(0, 3)
		if d.focused == 0 {
			yes = activeBtn.Render(yes)
			no = inactiveBtn.Render(no)
		} else {
			yes = inactiveBtn.Render(yes)
			no = activeBtn.Render(no)
		}
		buttons := lipgloss.JoinHorizontal(lipgloss.Top, yes, "  ", no)
		content = title + "\n\n" + message + "\n\n" + buttons
	} else {
		hint := d.styles.Muted.Render("enter to confirm · esc to cancel")
		content = title + "\n\n" + d.input.View() + "\n\n" + hint
	}

	return d.styles.Dialog.Render(content)
}
