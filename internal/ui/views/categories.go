package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/content-manager/internal/common"
	"github.com/Akashdeep-Patra/content-manager/internal/content"
	"github.com/Akashdeep-Patra/content-manager/internal/controller"
	"github.com/Akashdeep-Patra/content-manager/internal/ui"
	"github.com/Akashdeep-Patra/content-manager/internal/ui/components"
)

// categoriesHeader is the number of rows above the list.
const categoriesHeader = 2

// CategoriesView lists the categories with their counts.
type CategoriesView struct {
	ctl     *controller.Controller
	styles  ui.Styles
	width   int
	height  int
	focused bool
	cursor  int
	offset  int
}

// NewCategoriesView creates a new CategoriesView.
func NewCategoriesView(ctl *controller.Controller, styles ui.Styles) *CategoriesView {
	return &CategoriesView{ctl: ctl, styles: styles}
}

func (v *CategoriesView) SetSize(w, h int) { v.width = w; v.height = h }
func (v *CategoriesView) SetFocused(f bool) { v.focused = f }
func (v *CategoriesView) InputCapture() bool { return false }

func (v *CategoriesView) visibleRows() int { return max(v.height-categoriesHeader, 1) }

func (v *CategoriesView) moveTo(i, n int) {
	v.cursor = ui.ClampCursor(i, n)
	v.offset = ui.ScrollOffset(v.cursor, v.offset, v.visibleRows())
}

func (v *CategoriesView) current() (row, bool) { return rowAt(v.rows(), v.cursor) }

type row struct {
	content.Category
	all bool
}

// rows returns the aggregate category followed by the loaded ones.
func (v *CategoriesView) rows() []row {
	s := v.ctl.State()
	total := 0
	for _, c := range s.Categories {
		total += c.Count
	}
	rows := make([]row, 0, len(s.Categories)+1)
	rows = append(rows, row{Category: content.Category{ID: content.AllCategoryID, Label: "All", Count: total}, all: true})
	for _, c := range s.Categories {
		rows = append(rows, row{Category: c})
	}
	return rows
}

func rowAt(rows []row, i int) (row, bool) {
	if i < 0 || i >= len(rows) {
		return row{}, false
	}
	return rows[i], true
}

func (v *CategoriesView) Update(msg tea.Msg) (common.View, tea.Cmd) {
	switch msg := msg.(type) {
	case controller.DoneMsg:
		// Follow the selection when it changed underneath, e.g. after the
		// selected category was removed.
		if msg.Op == controller.OpInitialize || msg.Op == controller.OpSync || msg.Op == controller.OpSubmit || msg.Op == controller.OpDelete {
			v.syncCursor()
		}
		return v, nil

	case tea.MouseMsg:
		return v.handleMouse(msg)

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *CategoriesView) syncCursor() {
	rows := v.rows()
	selected := v.ctl.State().SelectedCategoryID
	for i, r := range rows {
		if r.ID == selected {
			v.moveTo(i, len(rows))
			return
		}
	}
	v.moveTo(v.cursor, len(rows))
}

func (v *CategoriesView) handleKey(msg tea.KeyMsg) (common.View, tea.Cmd) {
	n := len(v.rows())
	switch msg.String() {
	case "j", "down":
		v.moveTo(v.cursor+1, n)
	case "k", "up":
		v.moveTo(v.cursor-1, n)
	case "g", "home":
		v.moveTo(0, n)
	case "G", "end":
		v.moveTo(n-1, n)
	case "enter", "l", "right":
		return v, v.selectCurrent()
	}
	return v, nil
}

// selectCurrent switches to the category under the cursor and hands focus to
// the item list.
func (v *CategoriesView) selectCurrent() tea.Cmd {
	r, ok := v.current()
	if !ok {
		return nil
	}
	focus := func() tea.Msg { return common.FocusPaneMsg{Pane: common.PaneItems} }
	if r.ID == v.ctl.State().Requested().CategoryID {
		return focus
	}
	return tea.Batch(v.ctl.SelectCategory(r.ID), focus)
}

func (v *CategoriesView) handleMouse(msg tea.MouseMsg) (common.View, tea.Cmd) {
	n := len(v.rows())
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		v.moveTo(v.cursor-1, n)
	case tea.MouseButtonWheelDown:
		v.moveTo(v.cursor+1, n)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			break
		}
		idx := msg.Y - categoriesHeader + v.offset
		if idx >= 0 && idx < n {
			v.moveTo(idx, n)
			return v, v.selectCurrent()
		}
	}
	return v, nil
}

func (v *CategoriesView) View() string {
	s := v.ctl.State()
	rows := v.rows()
	v.moveTo(v.cursor, len(rows))

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(v.styles.Theme.Primary).Bold(true).
		Render(fmt.Sprintf("Categories (%d)", len(s.Categories))) + "\n\n")

	requested := s.Requested().CategoryID
	end := min(v.offset+v.visibleRows(), len(rows))
	listW := max(v.width-1, 8)
	for i := v.offset; i < end; i++ {
		r := rows[i]

		marker := "  "
		switch {
		case r.ID == s.SelectedCategoryID && r.ID == requested:
			marker = v.styles.Checked.Render("● ")
		case r.ID == requested:
			marker = v.styles.Pending.Render("◌ ")
		}

		count := v.styles.CategoryCount.Render(fmt.Sprint(r.Count))
		labelW := max(listW-lipgloss.Width(count)-3, 4)
		label := ui.Truncate(r.Label, labelW)
		if r.all {
			label = v.styles.Bold.Render(label)
		} else {
			label = v.styles.CategoryName.Render(label)
		}
		line := marker + ui.PadRight(label, labelW) + " " + count

		if i == v.cursor && v.focused {
			line = v.styles.ListSelected.Render(line)
		} else {
			line = " " + line
		}
		b.WriteString(line + "\n")
	}

	if len(s.Categories) == 0 && !s.Loading {
		b.WriteString("\n" + v.styles.Muted.Render(" no content types"))
	}

	return components.WithScrollbar(v.styles, strings.TrimRight(b.String(), "\n"),
		v.width, v.height, len(rows), v.visibleRows(), v.offset)
}

func (v *CategoriesView) ShortHelp() []components.HelpEntry {
	return []components.HelpEntry{
		{Key: "enter / l", Desc: "Show category"},
		{Key: "click", Desc: "Show category (mouse)"},
	}
}
