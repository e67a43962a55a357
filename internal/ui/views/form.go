package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/content-manager/internal/common"
	"github.com/Akashdeep-Patra/content-manager/internal/content"
	"github.com/Akashdeep-Patra/content-manager/internal/controller"
	"github.com/Akashdeep-Patra/content-manager/internal/state"
	"github.com/Akashdeep-Patra/content-manager/internal/ui"
	"github.com/Akashdeep-Patra/content-manager/internal/ui/components"
)

// formChrome is the number of rows around the editor: title, blank, blank,
// error line, hint.
const formChrome = 5

// FormView is the create/update form. It shows a summary of the schema next
// to a JSON editor for the item's form data.
type FormView struct {
	ctl    *controller.Controller
	styles ui.Styles
	width  int
	height int

	editor textarea.Model
	schema content.Schema
	fields []field
	title  string
	err    string
	saving bool
}

// NewFormView creates a new FormView.
func NewFormView(ctl *controller.Controller, styles ui.Styles) *FormView {
	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.Prompt = ""
	return &FormView{ctl: ctl, styles: styles, editor: ta}
}

func (v *FormView) SetFocused(bool) {}

func (v *FormView) SetSize(w, h int) {
	v.width = w
	v.height = h
	v.editor.SetWidth(max(v.editorWidth(), 10))
	v.editor.SetHeight(max(h-formChrome, 3))
}

func (v *FormView) summaryWidth() int { return min(max(v.width/3, 24), 40) }
func (v *FormView) editorWidth() int  { return v.width - v.summaryWidth() - 3 }

// InputCapture is true while the form is showing.
func (v *FormView) InputCapture() bool { return v.ctl.State().Modal != state.ModalClosed }

// open fills the form for a freshly opened modal.
func (v *FormView) open(msg controller.ModalOpenedMsg) tea.Cmd {
	v.schema = msg.Schema
	v.fields = schemaFields(msg.Schema)
	v.err = ""
	v.saving = false

	if msg.Editing {
		v.title = "Edit " + shortID(msg.Item.ID) + " in " + msg.Item.CategoryID
		v.editor.SetValue(prettyJSON(msg.Item.FormData))
	} else {
		v.title = "New item in " + msg.Schema.CategoryID
		v.editor.SetValue(skeleton(msg.Schema))
	}
	return v.editor.Focus()
}

func (v *FormView) Update(msg tea.Msg) (common.View, tea.Cmd) {
	switch msg := msg.(type) {
	case controller.ModalOpenedMsg:
		return v, v.open(msg)

	case controller.FailedMsg:
		if msg.Op == controller.OpSubmit {
			v.saving = false
			v.err = msg.Err.Error()
		}
		return v, nil

	case controller.DoneMsg:
		if msg.Op == controller.OpSubmit {
			v.saving = false
			v.err = ""
			v.editor.Blur()
		}
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			v.editor.Blur()
			v.saving = false
			return v, v.ctl.CloseModal()
		case "ctrl+s":
			return v, v.submit()
		}
		if v.saving || v.ctl.State().Modal != state.ModalOpen {
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	return v, cmd
}

func (v *FormView) submit() tea.Cmd {
	if v.saving || v.ctl.State().Modal != state.ModalOpen {
		return nil
	}
	data, err := parseFormData(v.editor.Value(), v.schema)
	if err != nil {
		v.err = err.Error()
		return nil
	}
	v.err = ""
	v.saving = true
	return v.ctl.Submit(data)
}

func (v *FormView) View() string {
	s := v.ctl.State()
	t := v.styles.Theme

	if s.Modal == state.ModalOpening {
		msg := v.styles.Pending.Render("Loading schema…") + "\n\n" + v.styles.Muted.Render("esc to cancel")
		return ui.PlaceCentre(v.width, v.height, msg)
	}

	title := lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render("  " + v.title)
	if v.saving {
		title += "  " + v.styles.Pending.Render("saving…")
	}

	body := components.RenderColumns(v.styles, v.renderSummary(), v.editor.View(), v.summaryWidth(), v.width)

	errLine := ""
	if v.err != "" {
		errLine = v.styles.FormError.Render("  ✗ " + ui.Truncate(ui.OneLine(v.err), max(v.width-6, 10)))
	}
	hint := v.styles.Muted.Render("  ctrl+s save  esc cancel  ·  JSON, comments and trailing commas allowed")

	return lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", errLine, hint)
}

// renderSummary lists the schema fields with their type, required marker
// and UI hints.
func (v *FormView) renderSummary() string {
	w := v.summaryWidth()
	if v.schema.IsEmpty() || len(v.fields) == 0 {
		return v.styles.Muted.Render(ui.Truncate("No schema fields", w)) + "\n" +
			v.styles.Muted.Render(ui.Truncate("any JSON object is accepted", w))
	}

	var b strings.Builder
	for _, f := range v.fields {
		name := v.styles.FieldName.Render(ui.Truncate(f.Name, w-4))
		if f.Required {
			name += v.styles.FieldRequired.Render(" *")
		}
		b.WriteString(name + "\n")

		typ := f.Type
		if typ == "" {
			typ = "any"
		}
		if f.Widget != "" {
			typ += " · " + f.Widget
		}
		b.WriteString("  " + v.styles.FieldType.Render(ui.Truncate(typ, w-2)) + "\n")

		for _, line := range []string{f.Title, f.Description, f.Help, enumLine(f.Enum), placeholderLine(f.Placeholder)} {
			if line != "" {
				b.WriteString("  " + v.styles.Muted.Render(ui.Truncate(ui.OneLine(line), w-2)) + "\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func enumLine(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return "one of: " + strings.Join(values, ", ")
}

func placeholderLine(p string) string {
	if p == "" {
		return ""
	}
	return fmt.Sprintf("e.g. %s", p)
}

func (v *FormView) ShortHelp() []components.HelpEntry {
	return []components.HelpEntry{
		{Key: "ctrl+s", Desc: "Save item"},
		{Key: "esc", Desc: "Close without saving"},
		{Key: "*", Desc: "Required field"},
	}
}
