package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// defaultTimeout bounds every request when the caller does not configure one.
const defaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is read into APIError.
const maxErrorBody = 4 << 10

// HTTPClient implements Service against the content HTTP API.
type HTTPClient struct {
	base *url.URL
	http *http.Client
}

// Compile-time check that HTTPClient implements Service.
var _ Service = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the API rooted at baseURL.
// A zero timeout selects defaultTimeout.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{base: u, http: &http.Client{Timeout: timeout}}, nil
}

// BaseURL returns the API root.
func (c *HTTPClient) BaseURL() string { return c.base.String() }

// SocketURL returns the websocket URL of the realtime channel.
func (c *HTTPClient) SocketURL() string {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/content/socket"
	return u.String()
}

// ── Reads ───────────────────────────────────────────────────────────────────

// ListCategories fetches every category with its item count.
func (c *HTTPClient) ListCategories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if err := c.do(ctx, http.MethodGet, "/content/categories", nil, nil, &cats); err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []Category{}
	}
	return cats, nil
}

// ListItems fetches one window of a category's items.
func (c *HTTPClient) ListItems(ctx context.Context, categoryID string, opts ListOptions) (ItemPage, error) {
	q := url.Values{}
	q.Set("from", strconv.Itoa(opts.Offset))
	q.Set("count", strconv.Itoa(opts.Limit))
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}

	var page ItemPage
	path := "/content/categories/" + url.PathEscape(categoryID) + "/items"
	if err := c.do(ctx, http.MethodGet, path, q, nil, &page); err != nil {
		return ItemPage{}, err
	}
	if page.Items == nil {
		page.Items = []Item{}
	}
	if page.Total < len(page.Items) {
		page.Total = opts.Offset + len(page.Items)
	}
	return page, nil
}

// GetSchema fetches the form description of a category.
func (c *HTTPClient) GetSchema(ctx context.Context, categoryID string) (Schema, error) {
	var s Schema
	path := "/content/categories/" + url.PathEscape(categoryID) + "/schema"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &s); err != nil {
		return Schema{}, err
	}
	s.CategoryID = categoryID
	return s.Normalized(), nil
}

// ── Writes ──────────────────────────────────────────────────────────────────

type upsertBody struct {
	FormData FormData `json:"formData"`
}

// UpsertItem creates (itemID == "") or updates an item.
func (c *HTTPClient) UpsertItem(ctx context.Context, categoryID, itemID string, data FormData) error {
	path := "/content/categories/" + url.PathEscape(categoryID) + "/items"
	if itemID != "" {
		path += "/" + url.PathEscape(itemID)
	}
	return c.do(ctx, http.MethodPost, path, nil, upsertBody{FormData: data}, nil)
}

// BulkDelete removes the given items regardless of their category.
func (c *HTTPClient) BulkDelete(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodPost, "/content/categories/all/bulk_delete", nil, ids, nil)
}

// ── helpers ─────────────────────────────────────────────────────────────────

// do performs one request. body is JSON-encoded when non-nil; out receives
// the decoded response when non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawPath = ""
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Status:  resp.StatusCode,
			Method:  method,
			Path:    path,
			Message: errorMessage(resp.Body),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} from an error body, falling back to
// the raw text.
func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(raw))
}
