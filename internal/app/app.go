package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/content-manager/internal/common"
	"github.com/Akashdeep-Patra/content-manager/internal/config"
	"github.com/Akashdeep-Patra/content-manager/internal/content"
	"github.com/Akashdeep-Patra/content-manager/internal/controller"
	"github.com/Akashdeep-Patra/content-manager/internal/state"
	"github.com/Akashdeep-Patra/content-manager/internal/ui"
	"github.com/Akashdeep-Patra/content-manager/internal/ui/components"
	"github.com/Akashdeep-Patra/content-manager/internal/ui/views"
)

const (
	errStatusTTL  = 5 * time.Second
	infoStatusTTL = 3 * time.Second
)

// Model is the top-level Bubbletea model. It owns the panes and the form
// and hands every controller message back to the controller.
type Model struct {
	ctl    *controller.Controller
	styles ui.Styles
	keys   KeyMap
	width  int
	height int
	focus  common.PaneID
	panes  map[common.PaneID]common.View
	form   common.View

	showHelp  bool
	statusMsg string
	statusErr bool
	statusSeq int
	dialog    *components.Dialog
}

// clearStatusMsg expires the status message with the same sequence number.
type clearStatusMsg struct{ seq int }

// New creates a new application model.
func New(ctl *controller.Controller, cfg *config.Config) Model {
	styles := ui.DefaultStyles()
	m := Model{
		ctl:    ctl,
		styles: styles,
		keys:   DefaultKeyMap(),
		focus:  common.PaneItems,
		panes: map[common.PaneID]common.View{
			common.PaneCategories: views.NewCategoriesView(ctl, styles),
			common.PaneItems:      views.NewItemsView(ctl, styles, cfg.ConfirmDestructive),
		},
		form: views.NewFormView(ctl, styles),
	}
	m.applyFocus()
	return m
}

// Init starts the initial load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("cmgr · "+m.ctl.BaseURL()), m.ctl.Initialize())
}

func (m Model) modalOpen() bool { return m.ctl.State().Modal != state.ModalClosed }

// Update processes messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Intermediate results go straight back to the controller.
	if cm, ok := msg.(controller.Msg); ok {
		return m, m.ctl.Update(cm)
	}

	var cmds []tea.Cmd

	// Dialog has exclusive keyboard input when visible.
	if m.dialog != nil && m.dialog.Visible() {
		d, cmd := m.dialog.Update(msg)
		m.dialog = &d
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if _, isKey := msg.(tea.KeyMsg); isKey {
			return m, tea.Batch(cmds...)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		// The form and capturing panes get every key.
		if m.modalOpen() {
			return m, m.updateForm(msg)
		}
		if v, ok := m.panes[m.focus]; ok && v.InputCapture() {
			return m, m.updatePane(m.focus, msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.Back) && m.showHelp:
			m.showHelp = false
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.ctl.Refresh()
		case key.Matches(msg, m.keys.NextPane):
			m.cycleFocus(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevPane):
			m.cycleFocus(-1)
			return m, nil
		}
		// Keys not handled globally are forwarded to the focused pane below.

	case controller.DoneMsg:
		if msg.Detail != "" {
			cmds = append(cmds, m.setStatus(msg.Detail, false))
		}
		cmds = append(cmds, m.broadcast(msg)...)
		return m, tea.Batch(cmds...)

	case controller.FailedMsg:
		cmds = append(cmds, m.setStatus(msg.Error(), true))
		cmds = append(cmds, m.broadcast(msg)...)
		return m, tea.Batch(cmds...)

	case controller.ModalOpenedMsg:
		m.showHelp = false
		cmds = append(cmds, m.updateForm(msg))
		return m, tea.Batch(cmds...)

	case common.RefreshMsg:
		cmds = append(cmds, m.ctl.ExternalRefresh())
		return m, tea.Batch(cmds...)

	case common.ErrMsg:
		cmds = append(cmds, m.setStatus(msg.Err.Error(), true))
		return m, tea.Batch(cmds...)

	case common.InfoMsg:
		cmds = append(cmds, m.setStatus(msg.Text, false))
		return m, tea.Batch(cmds...)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
		}
		return m, tea.Batch(cmds...)

	case common.FocusPaneMsg:
		m.focus = msg.Pane
		m.applyFocus()
		return m, tea.Batch(cmds...)

	case common.ShowDialogMsg:
		d := msg.Dialog
		m.dialog = &d
		return m, tea.Batch(cmds...)

	case components.DialogResult:
		m.dialog = nil
	}

	// Forward unhandled messages to the form while it shows, otherwise to
	// the focused pane.
	if m.modalOpen() {
		cmds = append(cmds, m.updateForm(msg))
	} else {
		cmds = append(cmds, m.updatePane(m.focus, msg))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) updatePane(id common.PaneID, msg tea.Msg) tea.Cmd {
	v, ok := m.panes[id]
	if !ok {
		return nil
	}
	updated, cmd := v.Update(msg)
	m.panes[id] = updated
	return cmd
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	updated, cmd := m.form.Update(msg)
	m.form = updated
	return cmd
}

// broadcast hands msg to every pane and the form.
func (m *Model) broadcast(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range common.AllPanes {
		cmds = append(cmds, m.updatePane(p.ID, msg))
	}
	return append(cmds, m.updateForm(msg))
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.statusMsg = text
	m.statusErr = isErr
	ttl := infoStatusTTL
	if isErr {
		ttl = errStatusTTL
	}
	seq := m.statusSeq
	return tea.Tick(ttl, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

func (m *Model) cycleFocus(delta int) {
	n := len(common.AllPanes)
	cur := 0
	for i, p := range common.AllPanes {
		if p.ID == m.focus {
			cur = i
			break
		}
	}
	m.focus = common.AllPanes[(cur+delta+n)%n].ID
	m.applyFocus()
}

func (m *Model) applyFocus() {
	for id, v := range m.panes {
		v.SetFocused(id == m.focus)
	}
}

// ── Layout ──────────────────────────────────────────────────────────────────

func (m Model) contentHeight() int {
	// height - header - statusBar(1)
	return max(m.height-components.HeaderRows-1, 1)
}

func (m Model) sidebarWidth() int {
	return min(max(m.width/4, 22), 36)
}

// resize hands every view its inner size. Panes lose two rows and four
// columns to their border and padding.
func (m *Model) resize() {
	h := m.contentHeight()
	sw := m.sidebarWidth()
	m.panes[common.PaneCategories].SetSize(max(sw-4, 1), max(h-2, 1))
	m.panes[common.PaneItems].SetSize(max(m.width-sw-4, 1), max(h-2, 1))
	m.form.SetSize(max(m.width-2, 1), h)
}

// paneAt returns the pane under screen column x.
func (m Model) paneAt(x int) common.PaneID {
	if x < m.sidebarWidth() {
		return common.PaneCategories
	}
	return common.PaneItems
}

// handleMouse focuses the pane under the pointer and forwards the event
// with coordinates relative to the pane's content.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.modalOpen() || m.showHelp || msg.Y < components.HeaderRows {
		return m, nil
	}
	id := m.paneAt(msg.X)
	if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && id != m.focus {
		m.focus = id
		m.applyFocus()
	}
	// Header plus the pane's top border.
	msg.Y -= components.HeaderRows + 1
	if id == common.PaneItems {
		msg.X -= m.sidebarWidth()
	}
	return m, m.updatePane(id, msg)
}

// ── Rendering ───────────────────────────────────────────────────────────────

// View renders the entire UI. This is a pure function, no I/O.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showHelp {
		sections := components.GlobalHelpEntries()
		sections[components.HelpCategories] = m.panes[common.PaneCategories].ShortHelp()
		sections[components.HelpItems] = m.panes[common.PaneItems].ShortHelp()
		sections[components.HelpForm] = m.form.ShortHelp()
		return components.RenderHelp(m.styles, "Keyboard Shortcuts", sections, m.width, m.height)
	}

	s := m.ctl.State()
	header := components.RenderHeader(m.styles, "cmgr", m.tabInfos(s), m.width)

	contentH := m.contentHeight()
	var body string
	if m.modalOpen() {
		body = m.styles.PanelFocused.Width(m.width - 2).Height(contentH - 2).Render(m.form.View())
	} else {
		sw := m.sidebarWidth()
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderPane(common.PaneCategories, sw, contentH),
			m.renderPane(common.PaneItems, m.width-sw, contentH),
		)
	}
	body = lipgloss.NewStyle().Width(m.width).Height(contentH).MaxHeight(contentH).Render(body)

	statusBar := components.RenderStatusBar(m.styles, m.statusBarData(s), m.width)

	screen := lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)

	if m.dialog != nil && m.dialog.Visible() {
		screen = ui.PlaceCentre(m.width, m.height, m.dialog.View())
	}

	return screen
}

// renderPane draws a pane inside a border of outer size w×h.
func (m Model) renderPane(id common.PaneID, w, h int) string {
	style := m.styles.Panel
	if id == m.focus {
		style = m.styles.PanelFocused
	}
	return style.Width(w - 2).Height(h - 2).MaxHeight(h).Render(m.panes[id].View())
}

func (m Model) tabInfos(s state.ViewState) []components.TabInfo {
	infos := make([]components.TabInfo, 0, len(common.AllPanes))
	for _, p := range common.AllPanes {
		info := components.TabInfo{Name: p.Name, Icon: p.Icon, Active: p.ID == m.focus && !m.modalOpen()}
		switch p.ID {
		case common.PaneCategories:
			info.Badge = fmt.Sprint(len(s.Categories))
		case common.PaneItems:
			info.Badge = fmt.Sprint(s.TotalCount)
		}
		infos = append(infos, info)
	}
	return infos
}

func (m Model) statusBarData(s state.ViewState) components.StatusBarData {
	label := "All"
	if c, ok := s.Category(s.SelectedCategoryID); ok {
		label = c.Label
	} else if s.SelectedCategoryID != content.AllCategoryID {
		label = s.SelectedCategoryID
	}
	return components.StatusBarData{
		BaseURL:  m.ctl.BaseURL(),
		Category: label,
		Total:    s.TotalCount,
		Matching: s.Matching,
		Search:   s.SearchTerm,
		Loading:  s.Loading,
		Busy:     m.ctl.Busy(),
		Message:  m.statusMsg,
		IsError:  m.statusErr,
	}
}
