package app

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akashdeep-Patra/content-manager/internal/common"
	"github.com/Akashdeep-Patra/content-manager/internal/config"
	"github.com/Akashdeep-Patra/content-manager/internal/content/contenttest"
	"github.com/Akashdeep-Patra/content-manager/internal/controller"
	"github.com/Akashdeep-Patra/content-manager/internal/state"
	"github.com/Akashdeep-Patra/content-manager/internal/testutil"
)

// cmdTimeout drops commands that wait on a timer (status expiry, cursor
// blink) so the harness never sleeps.
const cmdTimeout = 50 * time.Millisecond

type harness struct {
	t    *testing.T
	fake *contenttest.Fake
	ctl  *controller.Controller
	m    Model
	quit bool
}

func newHarness(t *testing.T, confirm bool) *harness {
	t.Helper()
	fake := contenttest.New().AddCategory("faq", "FAQ").AddCategory("promo", "Promotions")
	fake.AddItems("faq", 2)
	fake.AddItems("promo", 1)

	ctl := controller.New(context.Background(), fake, controller.Options{
		PageSize: 20,
		Logger:   testutil.NewTestLogger(t),
	})
	h := &harness{
		t:    t,
		fake: fake,
		ctl:  ctl,
		m:    New(ctl, &config.Config{PageSize: 20, ConfirmDestructive: confirm}),
	}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.drain(h.m.Init())
	require.False(t, ctl.State().Loading)
	return h
}

// send delivers msg and everything it leads to.
func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	model, cmd := h.m.Update(msg)
	h.m = model.(Model)
	h.drain(cmd)
}

func (h *harness) drain(cmd tea.Cmd) {
	h.t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 && !h.quit {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg, ok := execute(next)
		if !ok {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			h.quit = true
		default:
			model, cmd := h.m.Update(msg)
			h.m = model.(Model)
			queue = append(queue, cmd)
		}
	}
}

func execute(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(cmdTimeout):
		return nil, false
	}
}

func (h *harness) key(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		h.send(msg)
	}
}

func TestModel_InitialLoad(t *testing.T) {
	h := newHarness(t, false)

	s := h.ctl.State()
	assert.Equal(t, 3, s.TotalCount)
	assert.Len(t, s.Items, 3)

	out := h.m.View()
	assert.Contains(t, out, "cmgr")
	assert.Contains(t, out, "Promotions")
	assert.Contains(t, out, "memory://fake")
}

func TestModel_FocusCycles(t *testing.T) {
	h := newHarness(t, false)
	assert.Equal(t, common.PaneItems, h.m.focus)

	h.key("tab")
	assert.Equal(t, common.PaneCategories, h.m.focus)
	h.key("shift+tab")
	assert.Equal(t, common.PaneItems, h.m.focus)
}

func TestModel_SelectCategoryFocusesItems(t *testing.T) {
	h := newHarness(t, false)

	h.key("tab", "j", "j", "enter")
	assert.Equal(t, "promo", h.ctl.State().SelectedCategoryID)
	assert.Equal(t, common.PaneItems, h.m.focus)
	assert.Len(t, h.ctl.State().Items, 1)
}

func TestModel_FormCapturesKeys(t *testing.T) {
	h := newHarness(t, false)
	h.key("tab", "j", "enter")
	require.Equal(t, "faq", h.ctl.State().SelectedCategoryID)

	h.key("n")
	require.Equal(t, state.ModalOpen, h.ctl.State().Modal)

	// Global keys are text while the form shows.
	h.key("q", "tab")
	assert.False(t, h.quit)
	assert.Equal(t, common.PaneItems, h.m.focus)

	h.key("esc")
	assert.Equal(t, state.ModalClosed, h.ctl.State().Modal)

	h.key("q")
	assert.True(t, h.quit)
}

func TestModel_DeleteAsksFirst(t *testing.T) {
	h := newHarness(t, true)

	h.key("D")
	require.NotNil(t, h.m.dialog)
	assert.True(t, h.m.dialog.Visible())
	assert.Contains(t, h.m.View(), "Delete item")

	h.key("n")
	assert.Nil(t, h.m.dialog)
	assert.Len(t, h.ctl.State().Items, 3)

	h.key("D", "y")
	assert.Nil(t, h.m.dialog)
	assert.Len(t, h.ctl.State().Items, 2)
	assert.Equal(t, "Deleted 1 item", h.m.statusMsg)
}

func TestModel_ExternalRefresh(t *testing.T) {
	h := newHarness(t, false)

	h.fake.AddItems("promo", 2)
	h.send(common.RefreshMsg{})

	s := h.ctl.State()
	assert.Equal(t, 5, s.TotalCount)
	assert.Len(t, s.Items, 5)
}

func TestModel_FailureShowsStatus(t *testing.T) {
	h := newHarness(t, false)

	h.fake.Fail("items", errors.New("boom"))
	h.key("r")

	assert.True(t, h.m.statusErr)
	assert.Contains(t, h.m.statusMsg, "boom")
	assert.Len(t, h.ctl.State().Items, 3)
}

func TestModel_StatusExpires(t *testing.T) {
	h := newHarness(t, false)

	cmd := h.m.setStatus("hello", false)
	require.NotNil(t, cmd)
	seq := h.m.statusSeq

	h.send(clearStatusMsg{seq: seq - 1})
	assert.Equal(t, "hello", h.m.statusMsg)
	h.send(clearStatusMsg{seq: seq})
	assert.Empty(t, h.m.statusMsg)
}

func TestModel_Help(t *testing.T) {
	h := newHarness(t, false)

	h.key("?")
	out := h.m.View()
	assert.Contains(t, out, "Keyboard Shortcuts")
	assert.Contains(t, out, "Items")

	h.key("esc")
	assert.False(t, h.m.showHelp)
}
