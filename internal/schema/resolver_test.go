package schema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akashdeep-Patra/content-manager/internal/content/contenttest"
	"github.com/Akashdeep-Patra/content-manager/internal/schema"
	"github.com/Akashdeep-Patra/content-manager/internal/testutil"
)

func TestResolver_ResolveAndLookup(t *testing.T) {
	fake := contenttest.New().AddCategory("faq", "FAQ").AddCategory("text", "Text")
	r := schema.NewResolver(fake, testutil.NewTestLogger(t))

	_, ok := r.Lookup("faq")
	assert.False(t, ok, "nothing resolved yet")

	s := r.Resolve(context.Background(), "faq")
	assert.Equal(t, "faq", s.CategoryID)
	assert.Contains(t, string(s.JSON), `"faq"`)

	got, ok := r.Lookup("faq")
	require.True(t, ok)
	assert.Equal(t, s, got)

	_, ok = r.Lookup("text")
	assert.False(t, ok, "memo never answers for another category")
}

func TestResolver_AlwaysFetches(t *testing.T) {
	fake := contenttest.New().AddCategory("faq", "FAQ")
	r := schema.NewResolver(fake, nil)

	r.Resolve(context.Background(), "faq")
	r.Resolve(context.Background(), "faq")

	assert.Equal(t, []string{"schema:faq", "schema:faq"}, fake.Calls())
}

func TestResolver_FailureFallsBackToPreviousForSameCategory(t *testing.T) {
	fake := contenttest.New().AddCategory("faq", "FAQ")
	r := schema.NewResolver(fake, testutil.NewTestLogger(t))

	first := r.Resolve(context.Background(), "faq")

	fake.Fail("schema", errors.New("unavailable"))
	again := r.Resolve(context.Background(), "faq")
	assert.Equal(t, first, again)
}

func TestResolver_FailureWithoutPreviousYieldsEmptySchema(t *testing.T) {
	fake := contenttest.New().AddCategory("faq", "FAQ").AddCategory("text", "Text")
	r := schema.NewResolver(fake, testutil.NewTestLogger(t))

	r.Resolve(context.Background(), "faq")

	fake.Fail("schema", errors.New("unavailable"))
	s := r.Resolve(context.Background(), "text")

	assert.Equal(t, "text", s.CategoryID, "never reuse the faq schema for text")
	assert.True(t, s.IsEmpty())
	assert.JSONEq(t, `{}`, string(s.UI))
}
