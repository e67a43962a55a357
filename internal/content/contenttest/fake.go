// Package contenttest provides an in-memory content.Service for tests.
package contenttest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/Akashdeep-Patra/content-manager/internal/content"
)

// Fake is an in-memory content.Service. Categories keep insertion order;
// items are listed in insertion order. Failures can be injected per
// operation name ("categories", "items", "schema", "upsert", "delete").
type Fake struct {
	mu      sync.Mutex
	cats    []fakeCategory
	items   []content.Item
	nextID  int
	fail    map[string]error
	calls   []string
	schemas map[string]content.Schema
}

type fakeCategory struct {
	id    string
	label string
}

// Compile-time check.
var _ content.Service = (*Fake)(nil)

// New creates an empty fake.
func New() *Fake {
	return &Fake{
		fail:    make(map[string]error),
		schemas: make(map[string]content.Schema),
	}
}

// AddCategory registers a category with a schema whose single property is
// named after the category, so tests can tell schemas apart.
func (f *Fake) AddCategory(id, label string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cats = append(f.cats, fakeCategory{id: id, label: label})
	f.schemas[id] = content.Schema{
		CategoryID: id,
		JSON:       json.RawMessage(fmt.Sprintf(`{"type":"object","properties":{%q:{"type":"string"}}}`, id)),
		UI:         json.RawMessage(`{}`),
	}
	return f
}

// RemoveCategory drops a category and its items.
func (f *Fake) RemoveCategory(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cats := f.cats[:0]
	for _, c := range f.cats {
		if c.id != id {
			cats = append(cats, c)
		}
	}
	f.cats = cats
	kept := f.items[:0]
	for _, it := range f.items {
		if it.CategoryID != id {
			kept = append(kept, it)
		}
	}
	f.items = kept
	delete(f.schemas, id)
}

// AddItems appends n items to a category with formData {"n": i}.
func (f *Fake) AddItems(categoryID string, n int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		it := f.newItemLocked(categoryID, json.RawMessage(fmt.Sprintf(`{"n":%d}`, i)))
		ids = append(ids, it.ID)
	}
	return ids
}

// Fail makes every call of op return err until cleared with Fail(op, nil).
func (f *Fake) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, op)
		return
	}
	f.fail[op] = err
}

// Calls returns the operations performed so far, e.g. "items:faq:0:".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// ResetCalls clears the call log.
func (f *Fake) ResetCalls() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

// Item returns a stored item by id.
func (f *Fake) Item(id string) (content.Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ID == id {
			return it, true
		}
	}
	return content.Item{}, false
}

// BaseURL implements content.Service.
func (f *Fake) BaseURL() string { return "memory://fake" }

// ListCategories implements content.Service.
func (f *Fake) ListCategories(_ context.Context) ([]content.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "categories")
	if err := f.fail["categories"]; err != nil {
		return nil, err
	}
	out := make([]content.Category, 0, len(f.cats))
	for _, c := range f.cats {
		n := 0
		for _, it := range f.items {
			if it.CategoryID == c.id {
				n++
			}
		}
		out = append(out, content.Category{ID: c.id, Label: c.label, Count: n})
	}
	return out, nil
}

// ListItems implements content.Service.
func (f *Fake) ListItems(_ context.Context, categoryID string, opts content.ListOptions) (content.ItemPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("items:%s:%d:%s", categoryID, opts.Offset, opts.Search))
	if err := f.fail["items"]; err != nil {
		return content.ItemPage{}, err
	}
	if categoryID != content.AllCategoryID && !f.hasCategoryLocked(categoryID) {
		return content.ItemPage{}, &content.APIError{Status: http.StatusNotFound, Method: http.MethodGet, Path: "/items"}
	}

	var matched []content.Item
	for _, it := range f.items {
		if categoryID != content.AllCategoryID && it.CategoryID != categoryID {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(string(it.FormData)+it.ID), strings.ToLower(opts.Search)) {
			continue
		}
		matched = append(matched, it)
	}

	page := content.ItemPage{Items: []content.Item{}, Total: len(matched)}
	if opts.Offset < len(matched) {
		end := len(matched)
		if opts.Limit > 0 && opts.Offset+opts.Limit < end {
			end = opts.Offset + opts.Limit
		}
		page.Items = append(page.Items, matched[opts.Offset:end]...)
	}
	return page, nil
}

// GetSchema implements content.Service.
func (f *Fake) GetSchema(_ context.Context, categoryID string) (content.Schema, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "schema:"+categoryID)
	if err := f.fail["schema"]; err != nil {
		return content.Schema{}, err
	}
	if s, ok := f.schemas[categoryID]; ok {
		return s, nil
	}
	return content.EmptySchema(categoryID), nil
}

// UpsertItem implements content.Service.
func (f *Fake) UpsertItem(_ context.Context, categoryID, itemID string, data content.FormData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("upsert:%s:%s", categoryID, itemID))
	if err := f.fail["upsert"]; err != nil {
		return err
	}
	if itemID == "" {
		if !f.hasCategoryLocked(categoryID) {
			return &content.APIError{Status: http.StatusBadRequest, Method: http.MethodPost, Path: "/items"}
		}
		f.newItemLocked(categoryID, data)
		return nil
	}
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items[i].FormData = append(content.FormData(nil), data...)
			return nil
		}
	}
	return &content.APIError{Status: http.StatusNotFound, Method: http.MethodPost, Path: "/items/" + itemID}
}

// BulkDelete implements content.Service.
func (f *Fake) BulkDelete(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	f.calls = append(f.calls, "delete:"+strings.Join(sorted, ","))
	if err := f.fail["delete"]; err != nil {
		return err
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := f.items[:0]
	for _, it := range f.items {
		if !drop[it.ID] {
			kept = append(kept, it)
		}
	}
	f.items = kept
	return nil
}

func (f *Fake) hasCategoryLocked(id string) bool {
	for _, c := range f.cats {
		if c.id == id {
			return true
		}
	}
	return false
}

func (f *Fake) newItemLocked(categoryID string, data content.FormData) content.Item {
	f.nextID++
	it := content.Item{
		ID:         fmt.Sprintf("%s-%d", categoryID, f.nextID),
		CategoryID: categoryID,
		FormData:   append(content.FormData(nil), data...),
	}
	f.items = append(f.items, it)
	return it
}
