package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/content-manager/internal/common"
	"github.com/Akashdeep-Patra/content-manager/internal/content"
	"github.com/Akashdeep-Patra/content-manager/internal/controller"
	"github.com/Akashdeep-Patra/content-manager/internal/state"
	"github.com/Akashdeep-Patra/content-manager/internal/ui"
	"github.com/Akashdeep-Patra/content-manager/internal/ui/components"
)

const (
	// itemsHeader is the number of rows above the list; itemsFooter below it.
	itemsHeader = 2
	itemsFooter = 2

	tagDelete = "delete"
	tagSearch = "search"
)

// errCreateInAll is shown when creating while the aggregate category is shown.
var errCreateInAll = errors.New("select a category to create an item in")

// ItemsView lists one page of items and drives selection, search, paging
// and the form.
type ItemsView struct {
	ctl     *controller.Controller
	styles  ui.Styles
	width   int
	height  int
	focused bool
	cursor  int
	offset  int

	selected map[string]bool
	// confirm asks before deleting.
	confirm bool
	// writeClipboard writes to the system clipboard.
	writeClipboard func(string) error
}

// NewItemsView creates a new ItemsView.
func NewItemsView(ctl *controller.Controller, styles ui.Styles, confirmDestructive bool) *ItemsView {
	return &ItemsView{
		ctl:            ctl,
		styles:         styles,
		selected:       make(map[string]bool),
		confirm:        confirmDestructive,
		writeClipboard: clipboard.WriteAll,
	}
}

func (v *ItemsView) SetSize(w, h int) { v.width = w; v.height = h }
func (v *ItemsView) SetFocused(f bool) { v.focused = f }
func (v *ItemsView) InputCapture() bool { return false }

func (v *ItemsView) visibleRows() int { return max(v.height-itemsHeader-itemsFooter, 1) }

func (v *ItemsView) moveTo(i, n int) {
	v.cursor = ui.ClampCursor(i, n)
	v.offset = ui.ScrollOffset(v.cursor, v.offset, v.visibleRows())
}

func (v *ItemsView) current() (content.Item, bool) {
	items := v.ctl.State().Items
	if v.cursor < 0 || v.cursor >= len(items) {
		return content.Item{}, false
	}
	return items[v.cursor], true
}

// Selected returns the ids of the selected items in list order.
func (v *ItemsView) Selected() []string {
	var ids []string
	for _, it := range v.ctl.State().Items {
		if v.selected[it.ID] {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

func (v *ItemsView) Update(msg tea.Msg) (common.View, tea.Cmd) {
	switch msg := msg.(type) {
	case controller.DoneMsg:
		v.afterCommit(msg.Op)
		return v, nil

	case components.DialogResult:
		return v, v.handleDialog(msg)

	case tea.MouseMsg:
		return v.handleMouse(msg)

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

// afterCommit drops selections of items that are no longer loaded and keeps
// the cursor on the list.
func (v *ItemsView) afterCommit(op controller.Op) {
	s := v.ctl.State()
	switch op {
	case controller.OpSelect, controller.OpPage, controller.OpSearch:
		v.cursor, v.offset = 0, 0
	case controller.OpDelete:
		clear(v.selected)
	}
	for id := range v.selected {
		if _, ok := s.Item(id); !ok {
			delete(v.selected, id)
		}
	}
	v.moveTo(v.cursor, len(s.Items))
}

func (v *ItemsView) handleKey(msg tea.KeyMsg) (common.View, tea.Cmd) {
	s := v.ctl.State()
	n := len(s.Items)

	switch msg.String() {
	case "j", "down":
		v.moveTo(v.cursor+1, n)
	case "k", "up":
		v.moveTo(v.cursor-1, n)
	case "g", "home":
		v.moveTo(0, n)
	case "G", "end":
		v.moveTo(n-1, n)

	case " ", "space":
		if it, ok := v.current(); ok {
			if v.selected[it.ID] {
				delete(v.selected, it.ID)
			} else {
				v.selected[it.ID] = true
			}
			v.moveTo(v.cursor+1, n)
		}
	case "a":
		v.toggleAll(s.Items)

	case "]", "pgdown":
		if s.Requested().Page < s.PageCount(v.ctl.PageSize()) {
			return v, v.ctl.NextPage()
		}
	case "[", "pgup":
		return v, v.ctl.PrevPage()

	case "n":
		if s.SelectedCategoryID == content.AllCategoryID {
			return v, common.CmdErr(errCreateInAll)
		}
		return v, v.ctl.OpenCreateModal()
	case "enter", "e":
		if it, ok := v.current(); ok {
			return v, v.ctl.OpenEditModal(it.ID)
		}
	case "D", "delete":
		return v, v.deleteCmd()

	case "/":
		d := components.NewInputDialog(v.styles, "Search items", "text in form data or id", s.Requested().Search, tagSearch)
		return v, common.CmdDialog(d)
	case "esc":
		if s.Requested().Search != "" {
			return v, v.ctl.Search("")
		}

	case "y":
		return v, v.copyCurrent()
	}
	return v, nil
}

func (v *ItemsView) toggleAll(items []content.Item) {
	all := len(items) > 0
	for _, it := range items {
		if !v.selected[it.ID] {
			all = false
			break
		}
	}
	for _, it := range items {
		if all {
			delete(v.selected, it.ID)
		} else {
			v.selected[it.ID] = true
		}
	}
}

// deleteCmd deletes the selected items, or the one under the cursor when
// nothing is selected.
func (v *ItemsView) deleteCmd() tea.Cmd {
	ids := v.Selected()
	if len(ids) == 0 {
		it, ok := v.current()
		if !ok {
			return nil
		}
		ids = []string{it.ID}
	}
	if !v.confirm {
		return v.ctl.DeleteSelected(ids)
	}
	noun := "item"
	if len(ids) > 1 {
		noun = "items"
	}
	d := components.NewConfirmDialog(v.styles, "Delete "+noun,
		fmt.Sprintf("Delete %d %s? This cannot be undone.", len(ids), noun), tagDelete).WithPayload(ids)
	return common.CmdDialog(d)
}

func (v *ItemsView) handleDialog(r components.DialogResult) tea.Cmd {
	if !r.Confirmed {
		return nil
	}
	switch r.Tag {
	case tagDelete:
		ids, _ := r.Payload.([]string)
		return v.ctl.DeleteSelected(ids)
	case tagSearch:
		return v.ctl.Search(strings.TrimSpace(r.Value))
	}
	return nil
}

func (v *ItemsView) copyCurrent() tea.Cmd {
	it, ok := v.current()
	if !ok {
		return nil
	}
	if err := v.writeClipboard(prettyJSON(it.FormData)); err != nil {
		return common.CmdErr(fmt.Errorf("copy to clipboard: %w", err))
	}
	return common.CmdInfo("Copied " + shortID(it.ID))
}

func (v *ItemsView) handleMouse(msg tea.MouseMsg) (common.View, tea.Cmd) {
	n := len(v.ctl.State().Items)
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		v.moveTo(v.cursor-1, n)
	case tea.MouseButtonWheelDown:
		v.moveTo(v.cursor+1, n)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			break
		}
		idx := msg.Y - itemsHeader + v.offset
		if idx >= 0 && idx < n {
			v.moveTo(idx, n)
		}
	}
	return v, nil
}

// ── Rendering ───────────────────────────────────────────────────────────────

func (v *ItemsView) View() string {
	s := v.ctl.State()
	t := v.styles.Theme

	var b strings.Builder
	b.WriteString(v.renderHeader(s) + "\n\n")

	switch {
	case s.Loading:
		b.WriteString(v.styles.Pending.Render("  Loading content…"))
		return b.String()
	case len(s.Categories) == 0:
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Render(
			"  No content types yet.\n\n  Add type definitions to the server's types directory;\n  they show up here as categories."))
		return b.String()
	case len(s.Items) == 0 && s.SearchTerm != "":
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  No items match %q.  esc clears the search.", s.SearchTerm)))
		return b.String()
	case len(s.Items) == 0:
		hint := "  No items yet. Press n to create one."
		if s.SelectedCategoryID == content.AllCategoryID {
			hint = "  No items yet. Pick a category and press n to create one."
		}
		b.WriteString(v.styles.Muted.Render(hint))
		return b.String()
	}

	v.moveTo(v.cursor, len(s.Items))
	end := min(v.offset+v.visibleRows(), len(s.Items))
	var list strings.Builder
	for i := v.offset; i < end; i++ {
		line := v.renderItem(s.Items[i], s.SelectedCategoryID == content.AllCategoryID)
		if i == v.cursor && v.focused {
			list.WriteString(v.styles.ListSelected.Render("▸ "+line) + "\n")
		} else {
			list.WriteString("  " + line + "\n")
		}
	}
	b.WriteString(components.WithScrollbar(v.styles, strings.TrimRight(list.String(), "\n"),
		v.width, v.visibleRows(), len(s.Items), v.visibleRows(), v.offset))

	b.WriteString("\n\n" + v.styles.Muted.Render("  space select  n new  e edit  D delete  / search  [ ] page  y copy"))
	return b.String()
}

func (v *ItemsView) renderHeader(s state.ViewState) string {
	req := s.Requested()
	label := "All items"
	if c, ok := s.Category(s.SelectedCategoryID); ok {
		label = c.Label
	}

	title := lipgloss.NewStyle().Foreground(v.styles.Theme.Primary).Bold(true).Render("  " + label)
	page := v.styles.Muted.Render(fmt.Sprintf("page %d of %d", s.Page, s.PageCount(v.ctl.PageSize())))
	counts := v.styles.Muted.Render(fmt.Sprintf("%d items", s.TotalCount))

	var search, pending, sel string
	if s.SearchTerm != "" {
		search = v.styles.Muted.Render(fmt.Sprintf("%d match %q", s.Matching, s.SearchTerm))
	}
	if s.Pending != nil && (req != s.Query()) {
		pending = v.styles.Pending.Render(pendingText(req, s.Query()))
	}
	if n := len(v.Selected()); n > 0 {
		sel = v.styles.Checked.Render(fmt.Sprintf("%d selected", n))
	}
	return ui.JoinHorizontal("  ", title, page, counts, search, sel, pending)
}

// pendingText describes what is being loaded.
func pendingText(req, committed state.Query) string {
	switch {
	case req.CategoryID != committed.CategoryID:
		return "loading " + req.CategoryID + "…"
	case req.Search != committed.Search && req.Search == "":
		return "clearing search…"
	case req.Search != committed.Search:
		return fmt.Sprintf("searching %q…", req.Search)
	default:
		return fmt.Sprintf("loading page %d…", req.Page)
	}
}

func (v *ItemsView) renderItem(it content.Item, showCategory bool) string {
	box := "[ ]"
	if v.selected[it.ID] {
		box = v.styles.Checked.Render("[x]")
	}
	parts := []string{box, v.styles.ItemID.Render(shortID(it.ID))}
	if showCategory {
		parts = append(parts, v.styles.CategoryName.Render(ui.PadRight(ui.Truncate(it.CategoryID, 12), 12)))
	}

	date := ""
	if !it.ModifiedOn.IsZero() {
		date = v.styles.Date.Render(it.ModifiedOn.Local().Format("2006-01-02 15:04"))
	}
	used := 3 + 1 + 8 + 2 + lipgloss.Width(date) + 4
	if showCategory {
		used += 14
	}
	preview := it.PreviewText
	if preview == "" {
		preview = string(it.FormData)
	}
	parts = append(parts, v.styles.ItemPreview.Render(ui.PadRight(ui.Truncate(ui.OneLine(preview), max(v.width-used, 10)), max(v.width-used, 10))))
	if date != "" {
		parts = append(parts, date)
	}
	return strings.Join(parts, " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (v *ItemsView) ShortHelp() []components.HelpEntry {
	return []components.HelpEntry{
		{Key: "space", Desc: "Select item"},
		{Key: "a", Desc: "Select all on page"},
		{Key: "n", Desc: "New item"},
		{Key: "enter / e", Desc: "Edit item"},
		{Key: "D", Desc: "Delete selected"},
		{Key: "/", Desc: "Search"},
		{Key: "esc", Desc: "Clear search"},
		{Key: "] / pgdn", Desc: "Next page"},
		{Key: "[ / pgup", Desc: "Previous page"},
		{Key: "y", Desc: "Copy item JSON"},
	}
}
