package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Akashdeep-Patra/content-manager/internal/content"
	"github.com/Akashdeep-Patra/content-manager/internal/store"
)

const (
	// maxBody caps request bodies.
	maxBody = 1 << 20
	// maxCount caps the item window of one request.
	maxCount = 500
)

func (s *Server) routes(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/static/", http.StatusFound)
	})

	r.Route("/content", func(r chi.Router) {
		r.Handle("/socket", s.hub)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.listCategories)
			r.Post("/all/bulk_delete", s.bulkDelete)
			r.Route("/{categoryID}", func(r chi.Router) {
				r.Get("/schema", s.getSchema)
				r.Get("/items", s.listItems)
				r.Post("/items", s.createItem)
				r.Post("/items/{itemID}", s.updateItem)
			})
		})
	})
}

// ── Handlers ────────────────────────────────────────────────────────────────

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountByCategory(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	types := s.catalog.Types()
	cats := make([]content.Category, 0, len(types))
	for _, t := range types {
		cats = append(cats, content.Category{ID: t.ID, Label: t.Title, Count: counts[t.ID]})
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categoryID")

	q := store.ListQuery{Limit: s.pageSize, Search: r.URL.Query().Get("search")}
	var err error
	if q.Offset, err = intParam(r, "from", 0); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.Limit, err = intParam(r, "count", s.pageSize); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.Limit == 0 {
		q.Limit = s.pageSize
	}
	q.Limit = min(q.Limit, maxCount)

	if id == content.AllCategoryID {
		q.CategoryIDs = s.catalog.IDs()
	} else {
		if _, ok := s.catalog.Get(id); !ok {
			writeError(w, http.StatusNotFound, "unknown category "+strconv.Quote(id))
			return
		}
		q.CategoryIDs = []string{id}
	}

	items, total, err := s.store.ListItems(r.Context(), q)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	for i := range items {
		items[i] = s.withPreview(items[i])
	}
	writeJSON(w, http.StatusOK, content.ItemPage{Items: items, Total: total})
}

func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categoryID")
	if id == content.AllCategoryID {
		writeJSON(w, http.StatusOK, content.EmptySchema(id))
		return
	}
	t, ok := s.catalog.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown category "+strconv.Quote(id))
		return
	}
	sc, err := t.Schema()
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

type upsertRequest struct {
	FormData content.FormData `json:"formData"`
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categoryID")
	if id == content.AllCategoryID {
		writeError(w, http.StatusBadRequest, "items cannot be created in the aggregate category")
		return
	}
	if _, ok := s.catalog.Get(id); !ok {
		writeError(w, http.StatusNotFound, "unknown category "+strconv.Quote(id))
		return
	}
	data, ok := readFormData(w, r)
	if !ok {
		return
	}

	it, err := s.store.CreateItem(r.Context(), id, data)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.hub.Changed()
	writeJSON(w, http.StatusCreated, s.withPreview(it))
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	categoryID, itemID := chi.URLParam(r, "categoryID"), chi.URLParam(r, "itemID")

	existing, err := s.store.GetItem(r.Context(), itemID)
	switch {
	case errors.Is(err, content.ErrNotFound):
		writeError(w, http.StatusNotFound, "unknown item "+strconv.Quote(itemID))
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}
	if categoryID != content.AllCategoryID && existing.CategoryID != categoryID {
		writeError(w, http.StatusNotFound, "item "+strconv.Quote(itemID)+" is not in "+strconv.Quote(categoryID))
		return
	}
	data, ok := readFormData(w, r)
	if !ok {
		return
	}

	it, err := s.store.UpdateItem(r.Context(), itemID, data)
	switch {
	case errors.Is(err, content.ErrNotFound):
		writeError(w, http.StatusNotFound, "unknown item "+strconv.Quote(itemID))
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}
	s.hub.Changed()
	writeJSON(w, http.StatusOK, s.withPreview(it))
}

func (s *Server) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&ids); err != nil {
		writeError(w, http.StatusBadRequest, "body must be an array of item ids")
		return
	}
	n, err := s.store.DeleteItems(r.Context(), ids)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if n > 0 {
		s.hub.Changed()
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// ── helpers ─────────────────────────────────────────────────────────────────

func (s *Server) withPreview(it content.Item) content.Item {
	if t, ok := s.catalog.Get(it.CategoryID); ok {
		it.PreviewText = t.Preview(it.FormData)
	}
	return it
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// readFormData decodes {"formData": {...}}. It replies 400 and returns false
// when the body is not a JSON object carrying an object.
func readFormData(w http.ResponseWriter, r *http.Request) (content.FormData, bool) {
	var req upsertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return nil, false
	}
	var obj map[string]any
	if len(req.FormData) == 0 || json.Unmarshal(req.FormData, &obj) != nil || obj == nil {
		writeError(w, http.StatusBadRequest, "formData must be a JSON object")
		return nil, false
	}
	return req.FormData, true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Compile-time check that the sqlite store serves the API.
var _ Store = (*store.SQLiteStore)(nil)
