package content_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akashdeep-Patra/content-manager/internal/content"
	"github.com/Akashdeep-Patra/content-manager/internal/content/contenttest"
)

func countCalls(calls []string, want string) int {
	n := 0
	for _, c := range calls {
		if c == want {
			n++
		}
	}
	return n
}

func TestCachedService_CachesCategoriesAndSchemas(t *testing.T) {
	fake := contenttest.New().AddCategory("faq", "FAQ")
	svc := content.NewCachedService(fake, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.ListCategories(ctx)
		require.NoError(t, err)
		_, err = svc.GetSchema(ctx, "faq")
		require.NoError(t, err)
	}

	calls := fake.Calls()
	assert.Equal(t, 1, countCalls(calls, "categories"))
	assert.Equal(t, 1, countCalls(calls, "schema:faq"))
}

func TestCachedService_ItemsAreNeverCached(t *testing.T) {
	fake := contenttest.New().AddCategory("faq", "FAQ")
	svc := content.NewCachedService(fake, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := svc.ListItems(context.Background(), "faq", content.ListOptions{Limit: 20})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, countCalls(fake.Calls(), "items:faq:0:"))
}

func TestCachedService_WritesInvalidate(t *testing.T) {
	fake := contenttest.New().AddCategory("faq", "FAQ")
	svc := content.NewCachedService(fake, time.Minute)
	ctx := context.Background()

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, cats[0].Count)

	require.NoError(t, svc.UpsertItem(ctx, "faq", "", content.FormData(`{}`)))

	cats, err = svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cats[0].Count, "create must invalidate the cached counts")
	assert.Equal(t, 2, countCalls(fake.Calls(), "categories"))
}

func TestCachedService_FailedWriteKeepsCache(t *testing.T) {
	fake := contenttest.New().AddCategory("faq", "FAQ")
	svc := content.NewCachedService(fake, time.Minute)
	ctx := context.Background()

	_, err := svc.ListCategories(ctx)
	require.NoError(t, err)

	fake.Fail("delete", errors.New("boom"))
	require.Error(t, svc.BulkDelete(ctx, []string{"x"}))

	_, err = svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, countCalls(fake.Calls(), "categories"))
}

func TestCachedService_ErrorsAreNotCached(t *testing.T) {
	fake := contenttest.New().AddCategory("faq", "FAQ")
	svc := content.NewCachedService(fake, time.Minute)
	ctx := context.Background()

	fake.Fail("categories", errors.New("down"))
	_, err := svc.ListCategories(ctx)
	require.Error(t, err)

	fake.Fail("categories", nil)
	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestCachedService_ZeroTTLDisablesCache(t *testing.T) {
	fake := contenttest.New().AddCategory("faq", "FAQ")
	svc := content.NewCachedService(fake, 0)

	for i := 0; i < 2; i++ {
		_, err := svc.GetSchema(context.Background(), "faq")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, countCalls(fake.Calls(), "schema:faq"))
}
