package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akashdeep-Patra/content-manager/internal/catalog"
	"github.com/Akashdeep-Patra/content-manager/internal/content"
	"github.com/Akashdeep-Patra/content-manager/internal/controller"
	"github.com/Akashdeep-Patra/content-manager/internal/realtime"
	"github.com/Akashdeep-Patra/content-manager/internal/store"
)

const faqType = `
id: faq
title: FAQ
previewTemplate: "{{question}}"
jsonSchema:
  type: object
  required: [question]
  properties:
    question: {type: string}
    answer: {type: string}
uiSchema:
  answer: {"ui:widget": textarea}
`

const promoType = `
id: promo
title: Promotions
jsonSchema:
  type: object
  properties:
    headline: {type: string}
`

type fixture struct {
	store  *store.SQLiteStore
	server *Server
	http   *httptest.Server
	client *content.HTTPClient
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	st := store.NewSQLiteStore()
	require.NoError(t, st.Open(":memory:"))
	require.NoError(t, st.InitSchema())
	t.Cleanup(func() { _ = st.Close() })

	var types []catalog.Type
	for i, src := range []string{faqType, promoType} {
		typ, err := catalog.Parse([]byte(src), "type"+string(rune('a'+i))+".yaml")
		require.NoError(t, err)
		types = append(types, typ)
	}

	srv := New(Config{Store: st, Catalog: catalog.New(types)})
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Hub().Close()
		hs.Close()
	})

	client, err := content.NewHTTPClient(hs.URL, 5*time.Second)
	require.NoError(t, err)
	return &fixture{store: st, server: srv, http: hs, client: client}
}

func (f *fixture) seed(t *testing.T, categoryID string, bodies ...string) []content.Item {
	t.Helper()
	var out []content.Item
	for _, b := range bodies {
		it, err := f.store.CreateItem(context.Background(), categoryID, json.RawMessage(b))
		require.NoError(t, err)
		out = append(out, it)
	}
	return out
}

func (f *fixture) post(t *testing.T, path, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(f.http.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestListCategories(t *testing.T) {
	f := setupFixture(t)
	f.seed(t, "faq", `{"question":"a"}`, `{"question":"b"}`)

	cats, err := f.client.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []content.Category{
		{ID: "faq", Label: "FAQ", Count: 2},
		{ID: "promo", Label: "Promotions", Count: 0},
	}, cats)
}

func TestListItems(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)
	faq := f.seed(t, "faq", `{"question":"Opening hours?"}`, `{"question":"Refunds?"}`)
	f.seed(t, "promo", `{"headline":"Sale"}`)

	t.Run("category", func(t *testing.T) {
		page, err := f.client.ListItems(ctx, "faq", content.ListOptions{Limit: 20})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		require.Len(t, page.Items, 2)
		assert.Equal(t, faq[1].ID, page.Items[0].ID)
		assert.Equal(t, "Refunds?", page.Items[0].PreviewText)
	})

	t.Run("aggregate", func(t *testing.T) {
		page, err := f.client.ListItems(ctx, content.AllCategoryID, content.ListOptions{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
		assert.Len(t, page.Items, 2)
	})

	t.Run("search", func(t *testing.T) {
		page, err := f.client.ListItems(ctx, content.AllCategoryID, content.ListOptions{Limit: 20, Search: "hours"})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, faq[0].ID, page.Items[0].ID)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := f.client.ListItems(ctx, "nope", content.ListOptions{Limit: 20})
		assert.ErrorIs(t, err, content.ErrNotFound)
	})

	t.Run("bad window", func(t *testing.T) {
		resp, err := http.Get(f.http.URL + "/content/categories/faq/items?from=-1")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetSchema(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)

	sc, err := f.client.GetSchema(ctx, "faq")
	require.NoError(t, err)
	assert.Equal(t, "faq", sc.CategoryID)
	assert.JSONEq(t, `{"type":"object","required":["question"],"properties":{"question":{"type":"string"},"answer":{"type":"string"}}}`, string(sc.JSON))
	assert.JSONEq(t, `{"answer":{"ui:widget":"textarea"}}`, string(sc.UI))

	all, err := f.client.GetSchema(ctx, content.AllCategoryID)
	require.NoError(t, err)
	assert.True(t, all.IsEmpty())

	_, err = f.client.GetSchema(ctx, "nope")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestUpsertItem(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)
	events := f.server.Hub().Subscribe()

	t.Run("create", func(t *testing.T) {
		require.NoError(t, f.client.UpsertItem(ctx, "faq", "", json.RawMessage(`{"question":"new"}`)))
		counts, err := f.store.CountByCategory(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, counts["faq"])
		assert.Equal(t, realtime.Event{Type: realtime.TypeContentChanged}, <-events)
	})

	t.Run("update", func(t *testing.T) {
		it := f.seed(t, "faq", `{"question":"old"}`)[0]
		require.NoError(t, f.client.UpsertItem(ctx, "faq", it.ID, json.RawMessage(`{"question":"edited"}`)))
		got, err := f.store.GetItem(ctx, it.ID)
		require.NoError(t, err)
		assert.JSONEq(t, `{"question":"edited"}`, string(got.FormData))
		assert.Equal(t, realtime.Event{Type: realtime.TypeContentChanged}, <-events)
	})

	t.Run("create under aggregate", func(t *testing.T) {
		err := f.client.UpsertItem(ctx, content.AllCategoryID, "", json.RawMessage(`{}`))
		var apiErr *content.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	})

	t.Run("update in wrong category", func(t *testing.T) {
		it := f.seed(t, "faq", `{"question":"x"}`)[0]
		err := f.client.UpsertItem(ctx, "promo", it.ID, json.RawMessage(`{}`))
		assert.ErrorIs(t, err, content.ErrNotFound)
	})

	t.Run("unknown item", func(t *testing.T) {
		err := f.client.UpsertItem(ctx, "faq", "missing", json.RawMessage(`{}`))
		assert.ErrorIs(t, err, content.ErrNotFound)
	})

	t.Run("form data must be an object", func(t *testing.T) {
		status, body := f.post(t, "/content/categories/faq/items", `{"formData":[1,2]}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "formData must be a JSON object", body["error"])
	})
}

func TestBulkDelete(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)
	items := f.seed(t, "faq", `{}`, `{}`, `{}`, `{}`, `{}`)

	require.NoError(t, f.client.BulkDelete(ctx, []string{items[1].ID, items[3].ID}))

	cats, err := f.client.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, cats[0].Count)

	status, _ := f.post(t, "/content/categories/all/bulk_delete", `{"not":"an array"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealthzAndStatic(t *testing.T) {
	f := setupFixture(t)

	resp, err := http.Get(f.http.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(f.http.URL + "/static/index.html")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReloadTypes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "faq.yaml"), []byte(faqType), 0o600))

	cat := catalog.New(nil)
	srv := New(Config{Catalog: cat, TypesDir: dir})
	events := srv.Hub().Subscribe()

	srv.reloadTypes()
	assert.Equal(t, []string{"faq"}, cat.IDs())
	assert.Equal(t, realtime.Event{Type: realtime.TypeContentChanged}, <-events)

	// A broken file keeps the current set and stays quiet.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: [\n"), 0o600))
	srv.reloadTypes()
	assert.Equal(t, []string{"faq"}, cat.IDs())
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %v", ev)
	default:
	}
}

// drive runs a controller command to completion against the real server.
func drive(c *controller.Controller, cmd tea.Cmd) []tea.Msg {
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

func TestControllerRoundTrip(t *testing.T) {
	f := setupFixture(t)
	f.seed(t, "faq", `{"question":"a"}`, `{"question":"b"}`)

	c := controller.New(context.Background(), f.client, controller.Options{PageSize: 20})
	msgs := drive(c, c.Initialize())
	require.Contains(t, msgs, controller.DoneMsg{Op: controller.OpInitialize})

	s := c.State()
	assert.False(t, s.Loading)
	assert.Equal(t, content.AllCategoryID, s.SelectedCategoryID)
	assert.Equal(t, 2, s.TotalCount)
	assert.Len(t, s.Items, 2)

	drive(c, c.SelectCategory("faq"))
	drive(c, c.OpenCreateModal())
	require.Equal(t, "faq", c.State().Schema.CategoryID)

	msgs = drive(c, c.Submit(json.RawMessage(`{"question":"c"}`)))
	require.Contains(t, msgs, controller.DoneMsg{Op: controller.OpSubmit, Detail: "Created item in faq"})

	s = c.State()
	assert.Equal(t, 3, s.TotalCount)
	assert.Len(t, s.Items, 3)
	assert.Equal(t, "c", s.Items[0].PreviewText)

	drive(c, c.DeleteSelected([]string{s.Items[0].ID, s.Items[1].ID}))
	s = c.State()
	assert.Equal(t, 1, s.TotalCount)
	assert.Len(t, s.Items, 1)
}
