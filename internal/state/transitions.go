package state

import (
	"errors"
	"fmt"

	"github.com/Akashdeep-Patra/content-manager/internal/content"
)

var (
	// ErrUnknownCategory is returned when a category id is not loaded.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrItemNotLoaded is returned when an item id is not on the loaded page.
	ErrItemNotLoaded = errors.New("item not loaded")
	// ErrModalClosed is returned by operations that need the form open.
	ErrModalClosed = errors.New("modal is closed")
)

// Transition derives the next snapshot from the previous one. Transitions
// receive a private copy and must not retain it.
type Transition func(ViewState) (ViewState, error)

// Chain composes transitions into one; the store commits the result of all
// of them or none.
func Chain(ts ...Transition) Transition {
	return func(s ViewState) (ViewState, error) {
		var err error
		for _, t := range ts {
			if s, err = t(s); err != nil {
				return s, err
			}
		}
		return s, nil
	}
}

// RequestQuery records the query whose items are about to be fetched.
func RequestQuery(q Query) Transition {
	return func(s ViewState) (ViewState, error) {
		q.Page = clampPage(q.Page)
		s.Pending = &q
		return s, nil
	}
}

// RequestPage records a requested page, clamped to 1, on top of whatever is
// already pending.
func RequestPage(page int) Transition {
	return func(s ViewState) (ViewState, error) {
		q := s.Requested()
		q.Page = page
		return RequestQuery(q)(s)
	}
}

// RequestSearch records a requested search term. The page is kept.
func RequestSearch(term string) Transition {
	return func(s ViewState) (ViewState, error) {
		q := s.Requested()
		q.Search = term
		return RequestQuery(q)(s)
	}
}

// ClearPending drops the in-flight request marker so the view falls back to
// the committed query.
func ClearPending() Transition {
	return func(s ViewState) (ViewState, error) {
		s.Pending = nil
		return s, nil
	}
}

// ApplyItems commits a page of items together with the query it answers and
// clears the pending request, which the answer supersedes. Changing category
// invalidates the schema and re-derives TotalCount.
func ApplyItems(q Query, page content.ItemPage) Transition {
	return func(s ViewState) (ViewState, error) {
		if !s.HasCategory(q.CategoryID) {
			return s, fmt.Errorf("%w: %q", ErrUnknownCategory, q.CategoryID)
		}
		if q.CategoryID != s.SelectedCategoryID {
			s.Schema = content.Schema{}
		}
		s.SelectedCategoryID = q.CategoryID
		s.Page = clampPage(q.Page)
		s.SearchTerm = q.Search
		s.Items = append([]content.Item{}, page.Items...)
		s.Matching = page.Total
		s.TotalCount = totalFor(s.Categories, s.SelectedCategoryID)
		s.Pending = nil
		return s, nil
	}
}

// ApplyCategories replaces the category list and re-derives TotalCount.
// It fails when the selected category is gone; callers then select the
// aggregate category together with its items.
func ApplyCategories(cats []content.Category) Transition {
	return func(s ViewState) (ViewState, error) {
		if s.SelectedCategoryID != content.AllCategoryID && !containsCategory(cats, s.SelectedCategoryID) {
			return s, fmt.Errorf("%w: %q", ErrUnknownCategory, s.SelectedCategoryID)
		}
		s.Categories = append([]content.Category{}, cats...)
		s.TotalCount = totalFor(s.Categories, s.SelectedCategoryID)
		return s, nil
	}
}

// ReplaceCategories installs a category list without requiring the current
// selection to survive. It is meant to be chained with ApplyItems for the
// fallback selection.
func ReplaceCategories(cats []content.Category) Transition {
	return func(s ViewState) (ViewState, error) {
		s.Categories = append([]content.Category{}, cats...)
		s.TotalCount = totalFor(s.Categories, s.SelectedCategoryID)
		return s, nil
	}
}

// ApplySchema installs a resolved schema.
func ApplySchema(sc content.Schema) Transition {
	return func(s ViewState) (ViewState, error) {
		s.Schema = sc
		return s, nil
	}
}

// BeginOpening moves the modal to "opening" while a schema is fetched.
// editingID is empty for a create form.
func BeginOpening(editingID string) Transition {
	return func(s ViewState) (ViewState, error) {
		if editingID != "" {
			if _, ok := s.Item(editingID); !ok {
				return s, fmt.Errorf("%w: %q", ErrItemNotLoaded, editingID)
			}
		}
		s.Modal = ModalOpening
		s.EditingItemID = editingID
		return s, nil
	}
}

// OpenModal shows the form. editingID is empty for a create form.
func OpenModal(editingID string) Transition {
	return func(s ViewState) (ViewState, error) {
		if editingID != "" {
			if _, ok := s.Item(editingID); !ok {
				return s, fmt.Errorf("%w: %q", ErrItemNotLoaded, editingID)
			}
		}
		s.Modal = ModalOpen
		s.EditingItemID = editingID
		return s, nil
	}
}

// CloseModal hides the form. Closing a closed modal is a no-op.
func CloseModal() Transition {
	return func(s ViewState) (ViewState, error) {
		s.Modal = ModalClosed
		s.EditingItemID = ""
		return s, nil
	}
}

// FinishLoading marks the initial load as done, successful or not.
func FinishLoading() Transition {
	return func(s ViewState) (ViewState, error) {
		s.Loading = false
		return s, nil
	}
}

// Validate checks the snapshot invariants. The store refuses to commit a
// snapshot that fails them.
func Validate(s ViewState) error {
	if s.Page < 1 {
		return fmt.Errorf("page %d below 1", s.Page)
	}
	if !s.HasCategory(s.SelectedCategoryID) {
		return fmt.Errorf("%w: selected %q", ErrUnknownCategory, s.SelectedCategoryID)
	}
	if s.EditingItemID != "" {
		if s.Modal == ModalClosed {
			return fmt.Errorf("editing %q with the modal closed", s.EditingItemID)
		}
		if _, ok := s.Item(s.EditingItemID); !ok {
			return fmt.Errorf("%w: editing %q", ErrItemNotLoaded, s.EditingItemID)
		}
	}
	if want := totalFor(s.Categories, s.SelectedCategoryID); s.TotalCount != want {
		return fmt.Errorf("total count %d, categories say %d", s.TotalCount, want)
	}
	return nil
}

// totalFor returns the item count of id: the sum of all counts for the
// aggregate category.
func totalFor(cats []content.Category, id string) int {
	total := 0
	for _, c := range cats {
		if id == content.AllCategoryID || c.ID == id {
			total += c.Count
		}
	}
	return total
}

func containsCategory(cats []content.Category, id string) bool {
	for _, c := range cats {
		if c.ID == id {
			return true
		}
	}
	return false
}
