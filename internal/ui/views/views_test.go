package views

import (
	"context"
	"encoding/json"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akashdeep-Patra/content-manager/internal/common"
	"github.com/Akashdeep-Patra/content-manager/internal/content"
	"github.com/Akashdeep-Patra/content-manager/internal/content/contenttest"
	"github.com/Akashdeep-Patra/content-manager/internal/controller"
	"github.com/Akashdeep-Patra/content-manager/internal/testutil"
	"github.com/Akashdeep-Patra/content-manager/internal/ui"
	"github.com/Akashdeep-Patra/content-manager/internal/ui/components"
)

// run executes cmd, hands intermediate steps to the controller and returns
// everything else.
func run(c *controller.Controller, cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case controller.Msg:
			queue = append(queue, c.Update(msg))
		default:
			out = append(out, msg)
		}
	}
	return out
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func setupItems(t *testing.T, confirm bool) (*contenttest.Fake, *controller.Controller, *ItemsView) {
	t.Helper()
	fake := contenttest.New().AddCategory("faq", "FAQ")
	fake.AddItems("faq", 3)

	ctl := controller.New(context.Background(), fake, controller.Options{
		PageSize: 20,
		Logger:   testutil.NewTestLogger(t),
	})
	require.Contains(t, run(ctl, ctl.Initialize()), controller.DoneMsg{Op: controller.OpInitialize})
	fake.ResetCalls()

	v := NewItemsView(ctl, ui.DefaultStyles(), confirm)
	v.SetSize(80, 20)
	return fake, ctl, v
}

// press sends key to v and runs the resulting command.
func press(ctl *controller.Controller, v common.View, key string) []tea.Msg {
	_, cmd := v.Update(keyPress(key))
	return run(ctl, cmd)
}

func TestItemsView_SelectAndDelete(t *testing.T) {
	fake, ctl, v := setupItems(t, false)

	press(ctl, v, " ")
	press(ctl, v, " ")
	assert.Equal(t, []string{"faq-1", "faq-2"}, v.Selected())

	msgs := press(ctl, v, "D")
	assert.Contains(t, fake.Calls(), "delete:faq-1,faq-2")
	require.Contains(t, msgs, controller.DoneMsg{Op: controller.OpDelete, Detail: "Deleted 2 items"})

	v.Update(controller.DoneMsg{Op: controller.OpDelete})
	assert.Empty(t, v.Selected())
	assert.Len(t, ctl.State().Items, 1)
}

func TestItemsView_DeleteAsksFirst(t *testing.T) {
	fake, ctl, v := setupItems(t, true)

	msgs := press(ctl, v, "D")
	require.Len(t, msgs, 1)
	show, ok := msgs[0].(common.ShowDialogMsg)
	require.True(t, ok, "got %T", msgs[0])
	assert.Equal(t, tagDelete, show.Dialog.Tag)
	assert.Equal(t, []string{"faq-1"}, show.Dialog.Payload)
	assert.NotContains(t, fake.Calls(), "delete:faq-1")

	// Declining leaves everything in place.
	_, cmd := v.Update(components.DialogResult{Tag: tagDelete, Payload: []string{"faq-1"}})
	assert.Nil(t, cmd)

	_, cmd = v.Update(components.DialogResult{Confirmed: true, Tag: tagDelete, Payload: []string{"faq-1"}})
	run(ctl, cmd)
	assert.Contains(t, fake.Calls(), "delete:faq-1")
}

func TestItemsView_SelectAllToggles(t *testing.T) {
	_, ctl, v := setupItems(t, false)

	press(ctl, v, "a")
	assert.Len(t, v.Selected(), 3)
	press(ctl, v, "a")
	assert.Empty(t, v.Selected())
}

func TestItemsView_CreateNeedsCategory(t *testing.T) {
	_, ctl, v := setupItems(t, false)

	msgs := press(ctl, v, "n")
	require.Len(t, msgs, 1)
	errMsg, ok := msgs[0].(common.ErrMsg)
	require.True(t, ok, "got %T", msgs[0])
	assert.ErrorIs(t, errMsg.Err, errCreateInAll)

	run(ctl, ctl.SelectCategory("faq"))
	msgs = press(ctl, v, "n")
	require.Len(t, msgs, 1)
	opened, ok := msgs[0].(controller.ModalOpenedMsg)
	require.True(t, ok, "got %T", msgs[0])
	assert.False(t, opened.Editing)
	assert.Equal(t, "faq", opened.Schema.CategoryID)
}

func TestItemsView_Copy(t *testing.T) {
	_, ctl, v := setupItems(t, false)
	var copied string
	v.writeClipboard = func(s string) error {
		copied = s
		return nil
	}

	msgs := press(ctl, v, "y")
	assert.Equal(t, "{\n  \"n\": 0\n}", copied)
	assert.Equal(t, []tea.Msg{common.InfoMsg{Text: "Copied " + shortID("faq-1")}}, msgs)
}

func TestItemsView_Search(t *testing.T) {
	_, ctl, v := setupItems(t, false)

	msgs := press(ctl, v, "/")
	require.Len(t, msgs, 1)
	show, ok := msgs[0].(common.ShowDialogMsg)
	require.True(t, ok)
	assert.Equal(t, tagSearch, show.Dialog.Tag)

	_, cmd := v.Update(components.DialogResult{Confirmed: true, Tag: tagSearch, Value: "  faq-2 "})
	run(ctl, cmd)
	s := ctl.State()
	assert.Equal(t, "faq-2", s.SearchTerm)
	assert.Equal(t, 1, s.Matching)

	// esc clears the search.
	press(ctl, v, "esc")
	assert.Empty(t, ctl.State().SearchTerm)
	assert.Equal(t, 3, ctl.State().Matching)
}

func TestItemsView_Paging(t *testing.T) {
	fake := contenttest.New().AddCategory("faq", "FAQ")
	fake.AddItems("faq", 5)
	ctl := controller.New(context.Background(), fake, controller.Options{PageSize: 2})
	run(ctl, ctl.Initialize())
	v := NewItemsView(ctl, ui.DefaultStyles(), false)
	v.SetSize(80, 20)

	press(ctl, v, "]")
	press(ctl, v, "]")
	assert.Equal(t, 3, ctl.State().Page)

	// Past the last page nothing is requested.
	_, cmd := v.Update(keyPress("]"))
	assert.Nil(t, cmd)

	press(ctl, v, "[")
	assert.Equal(t, 2, ctl.State().Page)
}

func TestCategoriesView_Select(t *testing.T) {
	fake := contenttest.New().AddCategory("faq", "FAQ").AddCategory("promo", "Promotions")
	fake.AddItems("faq", 2)
	fake.AddItems("promo", 1)
	ctl := controller.New(context.Background(), fake, controller.Options{PageSize: 20})
	run(ctl, ctl.Initialize())

	v := NewCategoriesView(ctl, ui.DefaultStyles())
	v.SetSize(30, 10)
	v.SetFocused(true)

	out := v.View()
	assert.Contains(t, out, "All")
	assert.Contains(t, out, "Promotions")

	press(ctl, v, "j")
	msgs := press(ctl, v, "enter")
	assert.Contains(t, msgs, common.FocusPaneMsg{Pane: common.PaneItems})
	assert.Equal(t, "faq", ctl.State().SelectedCategoryID)
	assert.Len(t, ctl.State().Items, 2)
}

func TestFormView_Submit(t *testing.T) {
	fake := contenttest.New().AddCategory("faq", "FAQ")
	ctl := controller.New(context.Background(), fake, controller.Options{PageSize: 20})
	run(ctl, ctl.Initialize())
	run(ctl, ctl.SelectCategory("faq"))

	f := NewFormView(ctl, ui.DefaultStyles())
	f.SetSize(100, 30)
	for _, m := range run(ctl, ctl.OpenCreateModal()) {
		f.Update(m)
	}
	assert.True(t, f.InputCapture())
	assert.Equal(t, "{\n  \"faq\": \"\"\n}", f.editor.Value())

	f.editor.SetValue(`{"faq": "hello", /* note */}`)
	_, cmd := f.Update(keyPress("ctrl+s"))
	msgs := run(ctl, cmd)
	require.Contains(t, msgs, controller.DoneMsg{Op: controller.OpSubmit, Detail: "Created item in faq"})
	assert.Contains(t, fake.Calls(), "upsert:faq:")

	items := ctl.State().Items
	require.Len(t, items, 1)
	assert.JSONEq(t, `{"faq":"hello"}`, string(items[0].FormData))
	assert.False(t, f.InputCapture())
}

func TestFormView_InvalidStaysOpen(t *testing.T) {
	fake := contenttest.New().AddCategory("faq", "FAQ")
	ctl := controller.New(context.Background(), fake, controller.Options{PageSize: 20})
	run(ctl, ctl.Initialize())
	run(ctl, ctl.SelectCategory("faq"))

	f := NewFormView(ctl, ui.DefaultStyles())
	f.SetSize(100, 30)
	for _, m := range run(ctl, ctl.OpenCreateModal()) {
		f.Update(m)
	}

	f.editor.SetValue(`[1, 2]`)
	_, cmd := f.Update(keyPress("ctrl+s"))
	assert.Nil(t, cmd)
	assert.Contains(t, f.View(), "form data must be a JSON object")
	assert.True(t, f.InputCapture())
	assert.NotContains(t, fake.Calls(), "upsert:faq:")
}

var faqSchema = content.Schema{
	CategoryID: "faq",
	JSON: json.RawMessage(`{
		"type": "object",
		"required": ["question", "answer"],
		"properties": {
			"question": {"type": "string", "title": "Question"},
			"answer": {"type": "string"},
			"tags": {"type": "array"},
			"weight": {"type": ["integer", "null"], "default": 5},
			"lang": {"enum": ["en", "de"]},
			"meta": {"type": "object", "properties": {"draft": {"type": "boolean"}}}
		}
	}`),
	UI: json.RawMessage(`{
		"ui:order": ["question", "*", "weight"],
		"answer": {"ui:widget": "textarea", "ui:help": "Markdown"}
	}`),
}

func TestSchemaFields(t *testing.T) {
	fields := schemaFields(faqSchema)

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"question", "answer", "lang", "meta", "tags", "weight"}, names)

	assert.True(t, fields[0].Required)
	assert.Equal(t, "Question", fields[0].Title)
	assert.Equal(t, "textarea", fields[1].Widget)
	assert.Equal(t, "Markdown", fields[1].Help)
	assert.Equal(t, []string{"en", "de"}, fields[2].Enum)
	assert.False(t, fields[4].Required)
	assert.Equal(t, "integer", fields[5].Type)
}

func TestSchemaFields_Empty(t *testing.T) {
	assert.Empty(t, schemaFields(content.EmptySchema("all")))
}

func TestSkeleton(t *testing.T) {
	assert.JSONEq(t, `{
		"question": "",
		"answer": "",
		"tags": [],
		"weight": 5,
		"lang": "en",
		"meta": {"draft": false}
	}`, skeleton(faqSchema))

	assert.Equal(t, "{}", skeleton(content.EmptySchema("faq")))
}

func TestParseFormData(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr string
	}{
		{
			name: "plain object",
			text: `{"question": "q", "answer": "a"}`,
			want: `{"question":"q","answer":"a"}`,
		},
		{
			name: "comments and trailing comma",
			text: "{\n  // asked often\n  \"question\": \"q\",\n  \"answer\": \"a\",\n}",
			want: `{"question":"q","answer":"a"}`,
		},
		{
			name:    "missing required",
			text:    `{"question": "q", "answer": null}`,
			wantErr: "missing required: answer",
		},
		{
			name:    "not an object",
			text:    `"text"`,
			wantErr: "form data must be a JSON object",
		},
		{
			name:    "broken",
			text:    `{"question": `,
			wantErr: "not valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFormData(tt.text, faqSchema)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
