// Package schema resolves the form description of a content category.
package schema

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Akashdeep-Patra/content-manager/internal/content"
)

// Fetcher is the part of content.Service the resolver needs.
type Fetcher interface {
	GetSchema(ctx context.Context, categoryID string) (content.Schema, error)
}

// Resolver fetches and memoizes the most recently resolved schema.
// Resolve is called from bubbletea commands, which run concurrently, so the
// memo is guarded by a mutex.
type Resolver struct {
	fetch  Fetcher
	logger *slog.Logger

	mu   sync.Mutex
	last content.Schema
	ok   bool
}

// NewResolver creates a resolver. A nil logger discards output.
func NewResolver(fetch Fetcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{fetch: fetch, logger: logger}
}

// Resolve fetches the schema of categoryID. It never fails: when the fetch
// errors it falls back to the previous schema if that one belongs to the same
// category, and to the empty schema for categoryID otherwise, so the form
// degrades to a schema-less editor instead of blocking the view. A schema
// resolved for another category is never returned, even on failure.
func (r *Resolver) Resolve(ctx context.Context, categoryID string) content.Schema {
	s, err := r.fetch.GetSchema(ctx, categoryID)
	if err != nil {
		r.logger.Warn("schema fetch failed", "category", categoryID, "error", err)

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.ok && r.last.For(categoryID) {
			return r.last
		}
		return content.EmptySchema(categoryID)
	}

	s.CategoryID = categoryID
	s = s.Normalized()

	r.mu.Lock()
	r.last = s
	r.ok = true
	r.mu.Unlock()

	r.logger.Debug("schema resolved", "category", categoryID)
	return s
}

// Lookup returns the memoized schema when it was resolved for categoryID.
func (r *Resolver) Lookup(categoryID string) (content.Schema, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ok && r.last.For(categoryID) {
		return r.last, true
	}
	return content.Schema{}, false
}
