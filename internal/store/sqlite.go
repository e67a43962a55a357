// Package store persists content items in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Akashdeep-Patra/content-manager/internal/content"
)

//go:embed schema.sql
var schemaSQL string

var errNotOpen = errors.New("database not opened")

// ListQuery selects a window of items.
type ListQuery struct {
	// CategoryIDs restricts the result to these categories. An empty list
	// matches nothing.
	CategoryIDs []string
	Offset      int
	Limit       int
	// Search keeps items whose form data or id contains the term, ignoring
	// case.
	Search string
}

// SQLiteStore stores items in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteStore creates a store. Call Open and InitSchema before use.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{now: time.Now}
}

// Open opens the database at path. Use ":memory:" for a private in-memory
// database.
func (s *SQLiteStore) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to configure sqlite database (%s): %w", p, err)
		}
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema creates the tables if they do not exist.
func (s *SQLiteStore) InitSchema() error {
	if s.db == nil {
		return errNotOpen
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// CountByCategory returns the number of items per category id.
func (s *SQLiteStore) CountByCategory(ctx context.Context) (map[string]int, error) {
	if s.db == nil {
		return nil, errNotOpen
	}
	rows, err := s.db.QueryContext(ctx, `SELECT category_id, COUNT(*) FROM items GROUP BY category_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// ListItems returns the items selected by q, newest first, and the number of
// items matching q without the window.
func (s *SQLiteStore) ListItems(ctx context.Context, q ListQuery) ([]content.Item, int, error) {
	if s.db == nil {
		return nil, 0, errNotOpen
	}
	items := []content.Item{}
	if len(q.CategoryIDs) == 0 {
		return items, 0, nil
	}

	where, args := whereClause(q)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = -1 // no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category_id, form_data, created_on, modified_on FROM items WHERE `+where+
			` ORDER BY created_on DESC, rowid DESC LIMIT ? OFFSET ?`,
		append(args, limit, max(q.Offset, 0))...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	return items, total, nil
}

func whereClause(q ListQuery) (string, []any) {
	args := make([]any, 0, len(q.CategoryIDs)+2)
	for _, id := range q.CategoryIDs {
		args = append(args, id)
	}
	where := "category_id IN (" + placeholders(len(q.CategoryIDs)) + ")"

	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		where += ` AND (lower(form_data) LIKE ? ESCAPE '\' OR lower(id) LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}
	return where, args
}

// GetItem returns an item by id.
func (s *SQLiteStore) GetItem(ctx context.Context, id string) (content.Item, error) {
	if s.db == nil {
		return content.Item{}, errNotOpen
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, category_id, form_data, created_on, modified_on FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Item{}, fmt.Errorf("item %s: %w", id, content.ErrNotFound)
	}
	return it, err
}

// CreateItem stores a new item with a fresh id.
func (s *SQLiteStore) CreateItem(ctx context.Context, categoryID string, data content.FormData) (content.Item, error) {
	if s.db == nil {
		return content.Item{}, errNotOpen
	}
	now := s.now().UTC()
	it := content.Item{
		ID:         uuid.New().String(),
		CategoryID: categoryID,
		FormData:   data,
		CreatedOn:  now,
		ModifiedOn: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (id, category_id, form_data, created_on, modified_on) VALUES (?, ?, ?, ?, ?)`,
		it.ID, it.CategoryID, string(data), now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return content.Item{}, fmt.Errorf("failed to create item: %w", err)
	}
	return it, nil
}

// UpdateItem replaces the form data of an existing item.
func (s *SQLiteStore) UpdateItem(ctx context.Context, id string, data content.FormData) (content.Item, error) {
	if s.db == nil {
		return content.Item{}, errNotOpen
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET form_data = ?, modified_on = ? WHERE id = ?`,
		string(data), s.now().UTC().UnixNano(), id,
	)
	if err != nil {
		return content.Item{}, fmt.Errorf("failed to update item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return content.Item{}, fmt.Errorf("item %s: %w", id, content.ErrNotFound)
	}
	return s.GetItem(ctx, id)
}

// DeleteItems deletes items by id and returns how many existed.
func (s *SQLiteStore) DeleteItems(ctx context.Context, ids []string) (int, error) {
	if s.db == nil {
		return 0, errNotOpen
	}
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete items: %w", err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(sc scanner) (content.Item, error) {
	var it content.Item
	var data string
	var created, modified int64
	if err := sc.Scan(&it.ID, &it.CategoryID, &data, &created, &modified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.Item{}, err
		}
		return content.Item{}, fmt.Errorf("failed to scan item: %w", err)
	}
	it.FormData = content.FormData(data)
	it.CreatedOn = time.Unix(0, created).UTC()
	it.ModifiedOn = time.Unix(0, modified).UTC()
	return it, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
