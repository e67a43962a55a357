// Package state holds the view state of the content manager as immutable
// snapshots and the pure transitions between them.
package state

import (
	"github.com/Akashdeep-Patra/content-manager/internal/content"
)

// Modal is the state of the create/update overlay.
type Modal int

const (
	ModalClosed Modal = iota
	// ModalOpening means a schema refresh is in flight before the form shows.
	ModalOpening
	ModalOpen
)

func (m Modal) String() string {
	switch m {
	case ModalOpening:
		return "opening"
	case ModalOpen:
		return "open"
	default:
		return "closed"
	}
}

// Query is the (category, page, search) triple a page of items belongs to.
type Query struct {
	CategoryID string
	Page       int
	Search     string
}

// Options returns the list window for the query.
func (q Query) Options(pageSize int) content.ListOptions {
	return content.ListOptions{
		Offset: (clampPage(q.Page) - 1) * pageSize,
		Limit:  pageSize,
		Search: q.Search,
	}
}

// ViewState is one complete, consistent snapshot of the content view.
//
// SelectedCategoryID, Page and SearchTerm are the committed query: they only
// change together with Items. Pending holds a requested query whose items are
// still in flight, so the presentation can show the new page or search term
// immediately.
type ViewState struct {
	Loading bool

	SelectedCategoryID string
	Page               int
	SearchTerm         string

	Categories []content.Category
	Items      []content.Item
	// Matching is the server-reported number of items matching the
	// committed query.
	Matching int
	// TotalCount is the item count of the selected category (sum of all
	// counts for the aggregate category).
	TotalCount int

	Schema        content.Schema
	Modal         Modal
	EditingItemID string

	Pending *Query

	// Version increments on every commit.
	Version uint64
}

// New returns the initial snapshot: loading, aggregate category, first page.
func New() ViewState {
	return ViewState{
		Loading:            true,
		SelectedCategoryID: content.AllCategoryID,
		Page:               1,
		Categories:         []content.Category{},
		Items:              []content.Item{},
	}
}

// Query returns the committed query.
func (s ViewState) Query() Query {
	return Query{CategoryID: s.SelectedCategoryID, Page: s.Page, Search: s.SearchTerm}
}

// Requested returns the pending query, or the committed one when nothing is
// in flight.
func (s ViewState) Requested() Query {
	if s.Pending != nil {
		return *s.Pending
	}
	return s.Query()
}

// Item returns a loaded item by id.
func (s ViewState) Item(id string) (content.Item, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return content.Item{}, false
}

// Category returns a loaded category by id.
func (s ViewState) Category(id string) (content.Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return content.Category{}, false
}

// HasCategory reports whether id may be selected.
func (s ViewState) HasCategory(id string) bool {
	if id == content.AllCategoryID {
		return true
	}
	_, ok := s.Category(id)
	return ok
}

// Editing returns the item being edited, if any.
func (s ViewState) Editing() (content.Item, bool) {
	if s.EditingItemID == "" {
		return content.Item{}, false
	}
	return s.Item(s.EditingItemID)
}

// PageCount returns the number of pages of the committed query (at least 1).
func (s ViewState) PageCount(pageSize int) int {
	if pageSize <= 0 || s.Matching <= 0 {
		return 1
	}
	return (s.Matching + pageSize - 1) / pageSize
}

// HasNextPage reports whether the committed query has more items after the
// loaded page.
func (s ViewState) HasNextPage(pageSize int) bool {
	return s.Page < s.PageCount(pageSize)
}

// clone returns a copy whose slices do not alias s.
func (s ViewState) clone() ViewState {
	s.Categories = append([]content.Category{}, s.Categories...)
	s.Items = append([]content.Item{}, s.Items...)
	if s.Pending != nil {
		p := *s.Pending
		s.Pending = &p
	}
	return s
}

func clampPage(p int) int {
	if p < 1 {
		return 1
	}
	return p
}
