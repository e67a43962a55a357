package content

import (
	"bytes"
	"encoding/json"
	"time"
)

// AllCategoryID is the reserved id of the aggregate pseudo-category.
const AllCategoryID = "all"

// DefaultPageSize is the pagination window used when none is configured.
const DefaultPageSize = 20

// Category is a content type together with the number of items it holds.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// FormData is the opaque payload of an item. It conforms to the schema of
// the owning category; nothing outside the form editor and the server looks
// inside it.
type FormData = json.RawMessage

// Item is one instance of content belonging to a category.
type Item struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"categoryId"`
	FormData    FormData  `json:"formData"`
	PreviewText string    `json:"previewText,omitempty"`
	CreatedOn   time.Time `json:"createdOn,omitzero"`
	ModifiedOn  time.Time `json:"modifiedOn,omitzero"`
}

// ItemPage is one page of items plus the number of items matching the query
// on the server.
type ItemPage struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

// ListOptions selects a window of items.
type ListOptions struct {
	Offset int
	Limit  int
	Search string
}

// Schema pairs the JSON-Schema and UI-schema of one category's form.
// CategoryID records which category it was resolved for.
type Schema struct {
	CategoryID string          `json:"-"`
	JSON       json.RawMessage `json:"json"`
	UI         json.RawMessage `json:"ui"`
}

var emptyObject = json.RawMessage(`{}`)

// EmptySchema returns the schema-less form description for categoryID.
func EmptySchema(categoryID string) Schema {
	return Schema{CategoryID: categoryID, JSON: emptyObject, UI: emptyObject}
}

// IsEmpty reports whether the schema describes no fields at all.
func (s Schema) IsEmpty() bool {
	j := bytes.TrimSpace(s.JSON)
	return len(j) == 0 || bytes.Equal(j, emptyObject) || bytes.Equal(j, []byte("null"))
}

// For reports whether the schema was resolved for categoryID.
func (s Schema) For(categoryID string) bool {
	return s.CategoryID != "" && s.CategoryID == categoryID
}

// Normalized fills missing halves with empty objects so renderers never see nil.
func (s Schema) Normalized() Schema {
	if len(bytes.TrimSpace(s.JSON)) == 0 || bytes.Equal(bytes.TrimSpace(s.JSON), []byte("null")) {
		s.JSON = emptyObject
	}
	if len(bytes.TrimSpace(s.UI)) == 0 || bytes.Equal(bytes.TrimSpace(s.UI), []byte("null")) {
		s.UI = emptyObject
	}
	return s
}
