package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrFetchCachesResult(t *testing.T) {
	c := New()
	key := Key{Namespace: NamespaceRules, Arg: "user-1"}

	var calls int32
	fetch := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "rules-for-user-1", nil
	}

	for i := 0; i < 3; i++ {
		value, err := c.GetOrFetch(context.Background(), key, fetch)
		require.NoError(t, err)
		assert.Equal(t, "rules-for-user-1", value)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrFetchCoalescesConcurrentReaders(t *testing.T) {
	c := New()
	key := Key{Namespace: NamespaceNotifications, Arg: ""}

	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "feed", nil
	}

	const readers = 10
	var wg sync.WaitGroup
	results := make([]interface{}, readers)

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value, err := c.GetOrFetch(context.Background(), key, fetch)
			assert.NoError(t, err)
			results[i] = value
		}(i)
	}

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, value := range results {
		assert.Equal(t, "feed", value)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	c := New()
	key := Key{Namespace: NamespaceRules, Arg: "user-1"}

	var calls int32
	fetch := func(ctx context.Context) (interface{}, error) {
		return atomic.AddInt32(&calls, 1), nil
	}

	value, err := c.GetOrFetch(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(1), value)

	c.Invalidate(NamespaceRules)

	value, err = c.GetOrFetch(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), value)
}

func TestInvalidateScopedToNamespace(t *testing.T) {
	c := New()
	ruleKey := Key{Namespace: NamespaceRules, Arg: "user-1"}
	feedKey := Key{Namespace: NamespaceNotifications, Arg: ""}

	var ruleCalls, feedCalls int32

	fetchRules := func(ctx context.Context) (interface{}, error) {
		return atomic.AddInt32(&ruleCalls, 1), nil
	}
	fetchFeed := func(ctx context.Context) (interface{}, error) {
		return atomic.AddInt32(&feedCalls, 1), nil
	}

	_, err := c.GetOrFetch(context.Background(), ruleKey, fetchRules)
	require.NoError(t, err)
	_, err = c.GetOrFetch(context.Background(), feedKey, fetchFeed)
	require.NoError(t, err)

	c.Invalidate(NamespaceRules)

	_, err = c.GetOrFetch(context.Background(), ruleKey, fetchRules)
	require.NoError(t, err)
	_, err = c.GetOrFetch(context.Background(), feedKey, fetchFeed)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&ruleCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&feedCalls))
}

func TestFailedFetchCachesNothing(t *testing.T) {
	c := New()
	key := Key{Namespace: NamespaceSources, Arg: "user-1"}

	var calls int32
	fetch := func(ctx context.Context) (interface{}, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("database unavailable")
		}
		return "sources", nil
	}

	_, err := c.GetOrFetch(context.Background(), key, fetch)
	require.Error(t, err)

	value, err := c.GetOrFetch(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "sources", value)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestInvalidateFencesInFlightFetch(t *testing.T) {
	c := New()
	key := Key{Namespace: NamespaceRules, Arg: "user-1"}

	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := c.GetOrFetch(context.Background(), key, func(ctx context.Context) (interface{}, error) {
			close(started)
			<-release
			return "stale", nil
		})
		assert.NoError(t, err)
	}()

	<-started
	c.Invalidate(NamespaceRules)
	close(release)
	wg.Wait()

	// The fetch that straddled the invalidation must not populate the
	// cache; the next read sees fresh data.
	value, err := c.GetOrFetch(context.Background(), key, func(ctx context.Context) (interface{}, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", value)
}
