package content

import "context"

// Service defines the contract of the remote category/item API.
// The controller depends on this interface, never on HTTP directly,
// so tests can substitute an in-memory implementation.
type Service interface {
	// BaseURL identifies the remote the service talks to (for display).
	BaseURL() string

	// ── Reads ────────────────────────────────────────────────────────
	ListCategories(ctx context.Context) ([]Category, error)
	ListItems(ctx context.Context, categoryID string, opts ListOptions) (ItemPage, error)
	GetSchema(ctx context.Context, categoryID string) (Schema, error)

	// ── Writes ───────────────────────────────────────────────────────
	// UpsertItem creates an item when itemID is empty, otherwise updates it.
	UpsertItem(ctx context.Context, categoryID, itemID string, data FormData) error
	BulkDelete(ctx context.Context, ids []string) error
}
