package controller

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Akashdeep-Patra/content-manager/internal/content"
	"github.com/Akashdeep-Patra/content-manager/internal/state"
)

// Update consumes the intermediate results of commands and returns the next
// step, if any. Messages that are not a Msg are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(Msg)
	if !ok {
		return nil
	}
	if m.generation() != c.gen {
		c.logger.Debug("discarding stale result", "op", m.operation(), "gen", m.generation(), "current", c.gen)
		return nil
	}

	switch m := msg.(type) {
	case itemsMsg:
		return c.onItems(m)
	case categoriesMsg:
		return c.onCategories(m)
	case schemaMsg:
		return c.onSchema(m)
	case mutatedMsg:
		return c.fetchCategories(m.gen, m.op)
	case failedMsg:
		return c.fail(m.op, m.err)
	}
	return nil
}

func (c *Controller) onItems(m itemsMsg) tea.Cmd {
	apply := state.ApplyItems(m.query, m.page)
	var ts []state.Transition
	if m.fallback {
		ts = append(ts, state.ReplaceCategories(m.cats))
	}
	if m.op == OpSubmit {
		ts = append(ts, state.CloseModal())
	}
	if err := c.store.Apply(state.Chain(append(ts, apply)...)); err != nil {
		return c.fail(m.op, fmt.Errorf("committing items: %w", err))
	}

	switch {
	case m.fallback:
		return c.fetchSchema(m.gen, m.op, m.query.CategoryID, "")
	case m.op == OpInitialize:
		return c.fetchCategories(m.gen, m.op)
	case m.op == OpSelect:
		return c.fetchSchema(m.gen, m.op, m.query.CategoryID, "")
	}
	return c.finish(m.op)
}

func (c *Controller) onCategories(m categoriesMsg) tea.Cmd {
	err := c.store.Apply(state.ApplyCategories(m.cats))
	if errors.Is(err, state.ErrUnknownCategory) {
		s := c.store.Snapshot()
		c.logger.Info("selected category is gone, showing all", "category", s.SelectedCategoryID)
		q := state.Query{CategoryID: content.AllCategoryID, Page: 1, Search: s.SearchTerm}
		return c.fetchFallback(m.gen, m.op, q, m.cats)
	}
	if err != nil {
		return c.fail(m.op, fmt.Errorf("committing categories: %w", err))
	}

	s := c.store.Snapshot()
	if m.op == OpInitialize {
		return c.fetchSchema(m.gen, m.op, s.SelectedCategoryID, "")
	}
	return c.fetchItems(m.gen, m.op, s.Query())
}

func (c *Controller) onSchema(m schemaMsg) tea.Cmd {
	ts := []state.Transition{state.ApplySchema(m.schema)}
	switch m.op {
	case OpInitialize:
		ts = append(ts, state.FinishLoading())
	case OpOpenCreate, OpOpenEdit:
		ts = append(ts, state.OpenModal(m.editingID))
	}
	if err := c.store.Apply(state.Chain(ts...)); err != nil {
		return c.fail(m.op, fmt.Errorf("committing schema: %w", err))
	}

	if m.op == OpOpenCreate || m.op == OpOpenEdit {
		return tea.Batch(c.finish(m.op), c.opened())
	}
	return c.finish(m.op)
}

// ── Steps ───────────────────────────────────────────────────────────────────
// Steps run on bubbletea's goroutines. They only talk to the service and
// never touch the store. The constructors themselves run on the update
// goroutine.

func (c *Controller) fetchItems(gen uint64, op Op, q state.Query) tea.Cmd {
	ctx, svc, opts := c.ctx, c.svc, q.Options(c.pageSize)
	return func() tea.Msg {
		page, err := svc.ListItems(ctx, q.CategoryID, opts)
		if err != nil {
			return failedMsg{step{gen, op}, fmt.Errorf("loading items of %s: %w", q.CategoryID, err)}
		}
		return itemsMsg{step: step{gen, op}, query: q, page: page}
	}
}

func (c *Controller) fetchFallback(gen uint64, op Op, q state.Query, cats []content.Category) tea.Cmd {
	fetch := c.fetchItems(gen, op, q)
	return func() tea.Msg {
		msg := fetch()
		if m, ok := msg.(itemsMsg); ok {
			m.fallback = true
			m.cats = cats
			return m
		}
		return msg
	}
}

func (c *Controller) fetchCategories(gen uint64, op Op) tea.Cmd {
	// This request observes every change announced so far.
	c.deferred = false
	ctx, svc := c.ctx, c.svc
	return func() tea.Msg {
		cats, err := svc.ListCategories(ctx)
		if err != nil {
			return failedMsg{step{gen, op}, fmt.Errorf("loading categories: %w", err)}
		}
		return categoriesMsg{step{gen, op}, cats}
	}
}

func (c *Controller) fetchSchema(gen uint64, op Op, categoryID, editingID string) tea.Cmd {
	ctx, schemas := c.ctx, c.schemas
	return func() tea.Msg {
		return schemaMsg{step{gen, op}, schemas.Resolve(ctx, categoryID), editingID}
	}
}

func (c *Controller) mutate(gen uint64, op Op, fn func(context.Context) error) tea.Cmd {
	ctx := c.ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return failedMsg{step{gen, op}, err}
		}
		return mutatedMsg{step{gen, op}}
	}
}
