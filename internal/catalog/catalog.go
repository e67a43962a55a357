// Package catalog loads the content type definitions a server offers. Each
// type is one YAML file and becomes one category.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Akashdeep-Patra/content-manager/internal/content"
)

var (
	// ErrInvalidType is returned for a definition that cannot be served.
	ErrInvalidType = errors.New("invalid content type")

	validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)
)

// Type is one content type definition.
//
//	id: faq
//	title: Frequently asked questions
//	previewTemplate: "{{question}}"
//	jsonSchema:
//	  type: object
//	  required: [question]
//	  properties:
//	    question: {type: string}
//	uiSchema:
//	  answer: {"ui:widget": textarea}
type Type struct {
	ID              string         `yaml:"id"`
	Title           string         `yaml:"title"`
	JSONSchema      map[string]any `yaml:"jsonSchema"`
	UISchema        map[string]any `yaml:"uiSchema"`
	PreviewTemplate string         `yaml:"previewTemplate"`

	// Source is the file the type was read from.
	Source string `yaml:"-"`
}

// Parse decodes one definition. Unknown keys are rejected so typos surface.
func Parse(data []byte, source string) (Type, error) {
	var t Type
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return Type{}, fmt.Errorf("%w: %s: %v", ErrInvalidType, source, err)
	}
	t.Source = source
	t.ID = strings.TrimSpace(t.ID)

	switch {
	case t.ID == "":
		return Type{}, fmt.Errorf("%w: %s: missing id", ErrInvalidType, source)
	case t.ID == content.AllCategoryID:
		return Type{}, fmt.Errorf("%w: %s: id %q is reserved", ErrInvalidType, source, t.ID)
	case !validID.MatchString(t.ID):
		return Type{}, fmt.Errorf("%w: %s: id %q must be letters, digits, - or _", ErrInvalidType, source, t.ID)
	}
	if t.Title == "" {
		t.Title = t.ID
	}
	return t, nil
}

// Load reads every *.yaml and *.yml file in dir and returns the types sorted
// by id. A missing directory holds no types.
func Load(dir string) ([]Type, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading content types: %w", err)
	}

	seen := make(map[string]string)
	var types []Type
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if ext := strings.ToLower(filepath.Ext(name)); ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading content type: %w", err)
		}
		t, err := Parse(data, path)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: id %q defined in %s and %s", ErrInvalidType, t.ID, prev, path)
		}
		seen[t.ID] = path
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i].ID < types[j].ID })
	return types, nil
}

// Schema returns the form description served for the type.
func (t Type) Schema() (content.Schema, error) {
	js, err := marshalObject(t.JSONSchema)
	if err != nil {
		return content.Schema{}, fmt.Errorf("encoding json schema of %s: %w", t.ID, err)
	}
	ui, err := marshalObject(t.UISchema)
	if err != nil {
		return content.Schema{}, fmt.Errorf("encoding ui schema of %s: %w", t.ID, err)
	}
	return content.Schema{CategoryID: t.ID, JSON: js, UI: ui}, nil
}

func marshalObject(m map[string]any) (json.RawMessage, error) {
	if len(m) == 0 {
		return json.RawMessage(`{}`), nil
	}
	return json.Marshal(m)
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Preview renders PreviewTemplate against an item's form data. Placeholders
// name top-level fields, or nested ones with dots ({{author.name}}); missing
// fields render empty. Without a template the preview is empty.
func (t Type) Preview(data content.FormData) string {
	if t.PreviewTemplate == "" {
		return ""
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return ""
	}
	out := placeholder.ReplaceAllStringFunc(t.PreviewTemplate, func(m string) string {
		path := placeholder.FindStringSubmatch(m)[1]
		return lookup(fields, strings.Split(path, "."))
	})
	return strings.TrimSpace(out)
}

func lookup(fields map[string]any, path []string) string {
	v, ok := fields[path[0]]
	if !ok {
		return ""
	}
	if len(path) > 1 {
		nested, ok := v.(map[string]any)
		if !ok {
			return ""
		}
		return lookup(nested, path[1:])
	}
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64, bool:
		return fmt.Sprint(v)
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// Catalog holds the current set of types. It is safe for concurrent use and
// is swapped wholesale on reload.
type Catalog struct {
	mu    sync.RWMutex
	types []Type
	byID  map[string]Type
}

// New creates a catalog holding types.
func New(types []Type) *Catalog {
	c := &Catalog{}
	c.Replace(types)
	return c
}

// Replace swaps in a new set of types.
func (c *Catalog) Replace(types []Type) {
	byID := make(map[string]Type, len(types))
	for _, t := range types {
		byID[t.ID] = t
	}
	c.mu.Lock()
	c.types = append([]Type(nil), types...)
	c.byID = byID
	c.mu.Unlock()
}

// Reload loads dir and swaps it in. On error the current set stays.
func (c *Catalog) Reload(dir string) error {
	types, err := Load(dir)
	if err != nil {
		return err
	}
	c.Replace(types)
	return nil
}

// Types returns the types sorted by id.
func (c *Catalog) Types() []Type {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Type(nil), c.types...)
}

// Get returns a type by id.
func (c *Catalog) Get(id string) (Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byID[id]
	return t, ok
}

// IDs returns the ids of all types.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.types))
	for _, t := range c.types {
		ids = append(ids, t.ID)
	}
	return ids
}
