package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akashdeep-Patra/content-manager/internal/content"
)

const faqYAML = `
id: faq
title: Frequently asked questions
previewTemplate: "{{question}} ({{meta.lang}})"
jsonSchema:
  type: object
  required: [question]
  properties:
    question: {type: string}
    answer: {type: string}
uiSchema:
  answer: {"ui:widget": textarea}
`

func writeTypes(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeTypes(t, map[string]string{
		"faq.yaml":       faqYAML,
		"text.yml":       "id: text\n",
		"notes.txt":      "ignored",
		".hidden.yaml":   "id: hidden\n",
		"broken.yaml.sw": "ignored",
	})

	types, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "faq", types[0].ID)
	assert.Equal(t, "Frequently asked questions", types[0].Title)
	assert.Equal(t, "text", types[1].ID)
	assert.Equal(t, "text", types[1].Title, "title defaults to the id")
	assert.Equal(t, filepath.Join(dir, "text.yml"), types[1].Source)
}

func TestLoad_MissingDir(t *testing.T) {
	types, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{name: "missing id", files: map[string]string{"a.yaml": "title: A\n"}},
		{name: "reserved id", files: map[string]string{"a.yaml": "id: all\n"}},
		{name: "bad id", files: map[string]string{"a.yaml": "id: a/b\n"}},
		{name: "unknown key", files: map[string]string{"a.yaml": "id: a\nschema: {}\n"}},
		{name: "not yaml", files: map[string]string{"a.yaml": "id: [\n"}},
		{name: "duplicate", files: map[string]string{"a.yaml": "id: a\n", "b.yaml": "id: a\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTypes(t, tt.files))
			assert.ErrorIs(t, err, ErrInvalidType)
		})
	}
}

func TestType_Schema(t *testing.T) {
	ft, err := Parse([]byte(faqYAML), "faq.yaml")
	require.NoError(t, err)

	s, err := ft.Schema()
	require.NoError(t, err)
	assert.Equal(t, "faq", s.CategoryID)
	assert.JSONEq(t, `{
		"type": "object",
		"required": ["question"],
		"properties": {"question": {"type": "string"}, "answer": {"type": "string"}}
	}`, string(s.JSON))
	assert.JSONEq(t, `{"answer": {"ui:widget": "textarea"}}`, string(s.UI))

	bare, err := Type{ID: "text"}.Schema()
	require.NoError(t, err)
	assert.True(t, bare.IsEmpty())
}

func TestType_Preview(t *testing.T) {
	ft, err := Parse([]byte(faqYAML), "faq.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Why? (en)", ft.Preview(content.FormData(`{"question":"Why?","meta":{"lang":"en"}}`)))
	assert.Equal(t, "Why? ()", ft.Preview(content.FormData(`{"question":"Why?"}`)))
	assert.Equal(t, "", ft.Preview(content.FormData(`not json`)))
	assert.Equal(t, "", Type{ID: "x"}.Preview(content.FormData(`{"a":1}`)))

	num := Type{ID: "n", PreviewTemplate: "#{{n}} {{ok}}"}
	assert.Equal(t, "#3 true", num.Preview(content.FormData(`{"n":3,"ok":true}`)))
}

func TestCatalog_Reload(t *testing.T) {
	dir := writeTypes(t, map[string]string{"faq.yaml": faqYAML})
	c := New(nil)
	require.NoError(t, c.Reload(dir))
	assert.Equal(t, []string{"faq"}, c.IDs())

	_, ok := c.Get("faq")
	assert.True(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: all\n"), 0o644))
	assert.Error(t, c.Reload(dir))
	assert.Equal(t, []string{"faq"}, c.IDs(), "failed reload keeps the current set")

	require.NoError(t, os.Remove(filepath.Join(dir, "bad.yaml")))
	require.NoError(t, os.Remove(filepath.Join(dir, "faq.yaml")))
	require.NoError(t, c.Reload(dir))
	assert.Empty(t, c.Types())
	_, ok = c.Get("faq")
	assert.False(t, ok)
}
