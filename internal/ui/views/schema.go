package views

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/Akashdeep-Patra/content-manager/internal/content"
)

// jsonSchema is the subset of JSON-Schema the form understands.
type jsonSchema struct {
	Type        any                   `json:"type"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Required    []string              `json:"required"`
	Properties  map[string]jsonSchema `json:"properties"`
	Enum        []any                 `json:"enum"`
	Default     any                   `json:"default"`
}

// field is one top-level property of a form.
type field struct {
	Name        string
	Type        string
	Title       string
	Description string
	Required    bool
	Enum        []string
	// From the UI schema.
	Widget      string
	Placeholder string
	Help        string
}

func parseSchema(raw json.RawMessage) jsonSchema {
	var s jsonSchema
	if len(bytes.TrimSpace(raw)) > 0 {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

// typeName flattens "type": "string" and "type": ["string", "null"].
func typeName(t any) string {
	switch t := t.(type) {
	case string:
		return t
	case []any:
		var names []string
		for _, v := range t {
			if s, ok := v.(string); ok && s != "null" {
				names = append(names, s)
			}
		}
		return strings.Join(names, "|")
	}
	return ""
}

// schemaFields lists the top-level properties of sc, in "ui:order" when the
// UI schema gives one and alphabetically otherwise.
func schemaFields(sc content.Schema) []field {
	js := parseSchema(sc.JSON)
	var ui map[string]any
	_ = json.Unmarshal(sc.UI, &ui)

	required := make(map[string]bool, len(js.Required))
	for _, r := range js.Required {
		required[r] = true
	}

	names := make([]string, 0, len(js.Properties))
	for name := range js.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	names = applyOrder(names, ui["ui:order"])

	fields := make([]field, 0, len(names))
	for _, name := range names {
		p := js.Properties[name]
		f := field{
			Name:        name,
			Type:        typeName(p.Type),
			Title:       p.Title,
			Description: p.Description,
			Required:    required[name],
		}
		for _, e := range p.Enum {
			f.Enum = append(f.Enum, fmt.Sprint(e))
		}
		if hints, ok := ui[name].(map[string]any); ok {
			f.Widget, _ = hints["ui:widget"].(string)
			f.Placeholder, _ = hints["ui:placeholder"].(string)
			f.Help, _ = hints["ui:help"].(string)
		}
		fields = append(fields, f)
	}
	return fields
}

// applyOrder moves the names listed in order to the front. A "*" entry
// stands for every unlisted name.
func applyOrder(names []string, order any) []string {
	list, ok := order.([]any)
	if !ok || len(list) == 0 {
		return names
	}
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	var head, tail []string
	listed := make(map[string]bool)
	star := false
	for _, v := range list {
		s, _ := v.(string)
		switch {
		case s == "*":
			star = true
		case present[s] && !listed[s]:
			listed[s] = true
			if star {
				tail = append(tail, s)
			} else {
				head = append(head, s)
			}
		}
	}
	out := head
	for _, n := range names {
		if !listed[n] {
			out = append(out, n)
		}
	}
	return append(out, tail...)
}

// skeleton builds an indented JSON object with one entry per property of
// sc: the default when given, the first enum value, or the zero value of the
// property type.
func skeleton(sc content.Schema) string {
	js := parseSchema(sc.JSON)
	v := skeletonValue(js)
	obj, ok := v.(map[string]any)
	if !ok {
		obj = map[string]any{}
	}
	out, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}

func skeletonValue(s jsonSchema) any {
	if s.Default != nil {
		return s.Default
	}
	if len(s.Enum) > 0 {
		return s.Enum[0]
	}
	t := typeName(s.Type)
	if i := strings.IndexByte(t, '|'); i >= 0 {
		t = t[:i]
	}
	switch {
	case t == "object" || (t == "" && len(s.Properties) > 0):
		obj := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			obj[name] = skeletonValue(p)
		}
		return obj
	case t == "array":
		return []any{}
	case t == "string":
		return ""
	case t == "number" || t == "integer":
		return 0
	case t == "boolean":
		return false
	}
	return nil
}

// prettyJSON indents data for editing.
func prettyJSON(data content.FormData) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}

// parseFormData accepts JSON with comments and trailing commas and returns it
// compacted. The document must be an object carrying every required field of
// sc.
func parseFormData(text string, sc content.Schema) (content.FormData, error) {
	raw := jsonc.ToJSON([]byte(text))
	if !json.Valid(raw) {
		return nil, errors.New("not valid JSON")
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, errors.New("form data must be a JSON object")
	}

	var missing []string
	for _, name := range parseSchema(sc.JSON).Required {
		if v, ok := obj[name]; !ok || v == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required: %s", strings.Join(missing, ", "))
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	return content.FormData(buf.Bytes()), nil
}
