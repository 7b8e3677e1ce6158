package workloads

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchRelatedPopulatesOnce(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) ([]RelatedWorkload, error) {
		calls++
		return []RelatedWorkload{{ID: 7, EmployeeID: 1, ProjectID: 2, SharedWith: "employee"}}, nil
	}

	first, err := cache.FetchRelated(ctx, relatedKey(7), loader)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := cache.FetchRelated(ctx, relatedKey(7), loader)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, calls, "second fetch must come from the cache")
}

func TestCacheBumpInvalidates(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) ([]RelatedWorkload, error) {
		calls++
		return nil, nil
	}

	_, err := cache.FetchRelated(ctx, relatedKey(1), loader)
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))

	_, err = cache.FetchRelated(ctx, relatedKey(1), loader)
	require.NoError(t, err)
	require.Equal(t, 2, calls, "bump advances the version so the old key is dead")
}

func TestCacheNilClientPassesThrough(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) ([]RelatedWorkload, error) {
		calls++
		return []RelatedWorkload{{ID: 1}}, nil
	}

	for i := 0; i < 2; i++ {
		out, err := cache.FetchRelated(ctx, relatedKey(1), loader)
		require.NoError(t, err)
		require.Len(t, out, 1)
	}
	require.Equal(t, 2, calls)
}
