// Package controller sequences the asynchronous fetches behind every user
// command and commits their results to the view state store.
//
// Each command returns a tea.Cmd. Network steps run inside those commands and
// come back as messages, which Update turns into commits and follow-up steps.
// Every command bumps a generation counter; results of older generations are
// dropped, so the snapshot always reflects the latest command.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Akashdeep-Patra/content-manager/internal/content"
	"github.com/Akashdeep-Patra/content-manager/internal/schema"
	"github.com/Akashdeep-Patra/content-manager/internal/state"
)

// ErrBusy is returned when the form is requested while a mutation or reload
// is still running.
var ErrBusy = errors.New("busy")

// Options configures a Controller.
type Options struct {
	// PageSize is the item window per page. Zero means content.DefaultPageSize.
	PageSize int
	Logger   *slog.Logger
}

// Controller owns the view state store. All methods, Update included, must
// be called from the bubbletea update goroutine.
type Controller struct {
	ctx      context.Context
	svc      content.Service
	schemas  *schema.Resolver
	store    *state.Store
	pageSize int
	logger   *slog.Logger

	gen     uint64
	op      Op
	running bool
	// done is the DoneMsg detail of the running command.
	done string

	initialized bool
	// deferred records an external change that no categories fetch has
	// observed yet.
	deferred bool
}

// New creates a controller. ctx bounds every network call it issues.
func New(ctx context.Context, svc content.Service, opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = content.DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		ctx:      ctx,
		svc:      svc,
		schemas:  schema.NewResolver(svc, opts.Logger),
		store:    state.NewStore(state.New()),
		pageSize: opts.PageSize,
		logger:   opts.Logger,
	}
}

// State returns the current snapshot.
func (c *Controller) State() state.ViewState { return c.store.Snapshot() }

// PageSize returns the item window per page.
func (c *Controller) PageSize() int { return c.pageSize }

// BaseURL returns the address of the content service.
func (c *Controller) BaseURL() string { return c.svc.BaseURL() }

// Busy reports whether a command is still waiting for a result.
func (c *Controller) Busy() bool { return c.running }

// ── Commands ────────────────────────────────────────────────────────────────

// Initialize loads items, then categories, then the schema of the selected
// category. Loading is cleared whether or not it succeeds.
func (c *Controller) Initialize() tea.Cmd {
	g := c.begin(OpInitialize, "")
	return c.fetchItems(g, OpInitialize, c.store.Snapshot().Query())
}

// SelectCategory switches to id on page 1, keeping the search term, and then
// resolves its schema.
func (c *Controller) SelectCategory(id string) tea.Cmd {
	s := c.store.Snapshot()
	if !s.HasCategory(id) {
		return c.reject(OpSelect, fmt.Errorf("%w: %q", state.ErrUnknownCategory, id))
	}
	return c.request(OpSelect, state.Query{CategoryID: id, Page: 1, Search: s.Requested().Search})
}

// NextPage requests the page after the requested one.
func (c *Controller) NextPage() tea.Cmd {
	q := c.store.Snapshot().Requested()
	q.Page++
	return c.request(OpPage, q)
}

// PrevPage requests the page before the requested one. It is a no-op on the
// first page.
func (c *Controller) PrevPage() tea.Cmd {
	q := c.store.Snapshot().Requested()
	if q.Page <= 1 {
		return nil
	}
	q.Page--
	return c.request(OpPage, q)
}

// Search requests the items matching term. The page is not reset.
func (c *Controller) Search(term string) tea.Cmd {
	q := c.store.Snapshot().Requested()
	q.Search = term
	return c.request(OpSearch, q)
}

// Refresh reloads the items of the requested query. Before the first
// successful load it runs Initialize instead.
func (c *Controller) Refresh() tea.Cmd {
	if !c.initialized {
		return c.Initialize()
	}
	return c.request(OpRefresh, c.store.Snapshot().Requested())
}

// ExternalRefresh reacts to a change made elsewhere by reloading categories
// and items. While a command runs the change is recorded and replayed when
// the command finishes, unless the command reloaded categories after the
// change arrived. While the form shows it waits for the form to close.
func (c *Controller) ExternalRefresh() tea.Cmd {
	if c.running {
		c.logger.Debug("external change deferred", "running", c.op)
		c.deferred = true
		return nil
	}
	if c.store.Snapshot().Modal != state.ModalClosed {
		c.deferred = true
		return nil
	}
	c.deferred = false
	if !c.initialized {
		return c.Initialize()
	}
	g := c.begin(OpSync, "")
	return c.fetchCategories(g, OpSync)
}

// OpenCreateModal shows an empty form for the selected category.
func (c *Controller) OpenCreateModal() tea.Cmd {
	s := c.store.Snapshot()
	if s.Modal != state.ModalClosed {
		return nil
	}
	return c.open(OpOpenCreate, s.SelectedCategoryID, "")
}

// OpenEditModal shows the form for a loaded item, resolving the schema of the
// item's category first when the current one does not match.
func (c *Controller) OpenEditModal(itemID string) tea.Cmd {
	s := c.store.Snapshot()
	it, ok := s.Item(itemID)
	if !ok {
		return c.reject(OpOpenEdit, fmt.Errorf("%w: %q", state.ErrItemNotLoaded, itemID))
	}
	if s.Modal != state.ModalClosed {
		return nil
	}
	return c.open(OpOpenEdit, it.CategoryID, itemID)
}

// CloseModal hides the form. Closing while the schema is still loading
// abandons that load. A change deferred while the form was open is replayed.
func (c *Controller) CloseModal() tea.Cmd {
	s := c.store.Snapshot()
	if s.Modal == state.ModalClosed {
		return nil
	}
	if s.Modal == state.ModalOpening && c.running {
		c.gen++
		c.running = false
	}
	if err := c.store.Apply(state.CloseModal()); err != nil {
		return c.reject(c.op, err)
	}
	if c.deferred {
		return c.ExternalRefresh()
	}
	return nil
}

// Submit creates or updates an item with the form data, then reloads
// categories and items. The form closes only once everything is reloaded.
func (c *Controller) Submit(data content.FormData) tea.Cmd {
	s := c.store.Snapshot()
	if s.Modal != state.ModalOpen {
		return c.reject(OpSubmit, state.ErrModalClosed)
	}
	target, editing := s.SelectedCategoryID, s.EditingItemID
	detail := "Created item in " + target
	if it, ok := s.Editing(); ok {
		target = it.CategoryID
		detail = "Saved " + it.ID
	}
	data = append(content.FormData(nil), data...)
	if err := c.store.Apply(state.ClearPending()); err != nil {
		return c.reject(OpSubmit, err)
	}

	g := c.begin(OpSubmit, detail)
	return c.mutate(g, OpSubmit, func(ctx context.Context) error {
		return c.svc.UpsertItem(ctx, target, editing, data)
	})
}

// DeleteSelected deletes items by id, then reloads categories and items.
func (c *Controller) DeleteSelected(ids []string) tea.Cmd {
	if len(ids) == 0 {
		return nil
	}
	ids = append([]string(nil), ids...)
	detail := fmt.Sprintf("Deleted %d items", len(ids))
	if len(ids) == 1 {
		detail = "Deleted 1 item"
	}
	if err := c.store.Apply(state.ClearPending()); err != nil {
		return c.reject(OpDelete, err)
	}

	g := c.begin(OpDelete, detail)
	return c.mutate(g, OpDelete, func(ctx context.Context) error {
		return c.svc.BulkDelete(ctx, ids)
	})
}

// ── Helpers ─────────────────────────────────────────────────────────────────

func (c *Controller) begin(op Op, detail string) uint64 {
	c.gen++
	c.op = op
	c.running = true
	c.done = detail
	c.logger.Debug("command started", "op", op, "gen", c.gen)
	return c.gen
}

// request records q as pending and fetches its items.
func (c *Controller) request(op Op, q state.Query) tea.Cmd {
	g := c.begin(op, "")
	if err := c.store.Apply(state.RequestQuery(q)); err != nil {
		return c.fail(op, err)
	}
	return c.fetchItems(g, op, c.store.Snapshot().Requested())
}

// open shows the form when the schema for categoryID is at hand and
// otherwise resolves it first. A running page, search or category fetch is
// superseded; any other running command refuses the form until it is done.
func (c *Controller) open(op Op, categoryID, editingID string) tea.Cmd {
	s := c.store.Snapshot()
	if c.running && s.Pending == nil {
		return c.reject(op, fmt.Errorf("%w: %s", ErrBusy, c.op))
	}
	var t state.Transition
	switch {
	case s.Schema.For(categoryID):
		t = state.OpenModal(editingID)
	default:
		sc, ok := c.schemas.Lookup(categoryID)
		if !ok {
			g := c.begin(op, "")
			if err := c.store.Apply(state.Chain(state.ClearPending(), state.BeginOpening(editingID))); err != nil {
				return c.fail(op, err)
			}
			return c.fetchSchema(g, op, categoryID, editingID)
		}
		t = state.Chain(state.ApplySchema(sc), state.OpenModal(editingID))
	}
	if s.Pending != nil {
		// The query fetch in flight would replace the items under the form.
		c.logger.Debug("pending query superseded", "op", op, "running", c.op)
		c.gen++
		c.running = false
		t = state.Chain(state.ClearPending(), t)
	}
	if err := c.store.Apply(t); err != nil {
		return c.reject(op, err)
	}
	return c.opened()
}

func (c *Controller) opened() tea.Cmd {
	s := c.store.Snapshot()
	msg := ModalOpenedMsg{Schema: s.Schema}
	msg.Item, msg.Editing = s.Editing()
	return func() tea.Msg { return msg }
}

// reject reports a command refused before it started. Nothing is committed.
func (c *Controller) reject(op Op, err error) tea.Cmd {
	c.logger.Debug("command rejected", "op", op, "error", err)
	return func() tea.Msg { return FailedMsg{Op: op, Err: err} }
}

// fail aborts the running command: the pending request is dropped, the
// initial load ends and a form waiting for its schema closes.
func (c *Controller) fail(op Op, err error) tea.Cmd {
	c.running = false
	c.logger.Warn("command failed", "op", op, "error", err)

	ts := []state.Transition{state.ClearPending()}
	if op == OpInitialize {
		ts = append(ts, state.FinishLoading())
	}
	if c.store.Snapshot().Modal == state.ModalOpening {
		ts = append(ts, state.CloseModal())
	}
	if applyErr := c.store.Apply(state.Chain(ts...)); applyErr != nil {
		c.logger.Error("cleanup after failure rejected", "op", op, "error", applyErr)
	}
	failed := func() tea.Msg { return FailedMsg{Op: op, Err: err} }
	if c.deferred && c.store.Snapshot().Modal == state.ModalClosed {
		return tea.Batch(failed, c.ExternalRefresh())
	}
	return failed
}

func (c *Controller) finish(op Op) tea.Cmd {
	c.running = false
	if op == OpInitialize {
		c.initialized = true
	}
	c.logger.Debug("command done", "op", op, "gen", c.gen)
	msg := DoneMsg{Op: op, Detail: c.done}
	done := func() tea.Msg { return msg }
	if c.deferred && c.store.Snapshot().Modal == state.ModalClosed {
		return tea.Batch(done, c.ExternalRefresh())
	}
	return done
}
