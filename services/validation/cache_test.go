package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey_String(t *testing.T) {
	assert.Equal(t, "building:DC0013ZZ", CacheKey{Kind: lookupBuilding, Value: "DC0013ZZ"}.String())
	assert.Equal(t, "state:CA:ON", CacheKey{Kind: lookupState, Value: "ON", Scope: "CA"}.String())
}

func TestLookupCache_GetSet(t *testing.T) {
	cache := NewLookupCache(10, 5*time.Minute)
	key := CacheKey{Kind: lookupEmail, Value: "mary.major@gsa.gov"}

	_, found := cache.Get(key)
	assert.False(t, found)

	cache.Set(key, false)
	valid, found := cache.Get(key)
	assert.True(t, found)
	assert.False(t, valid, "negative answers are cached too")

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 0.5, stats.HitRate)
}

func TestLookupCache_Expiration(t *testing.T) {
	cache := NewLookupCache(10, 10*time.Millisecond)
	key := CacheKey{Kind: lookupBuilding, Value: "B1"}
	cache.Set(key, true)

	time.Sleep(20 * time.Millisecond)

	_, found := cache.Get(key)
	assert.False(t, found)
	assert.Equal(t, 0, cache.Stats().Size)
}

func TestLookupCache_LRUEviction(t *testing.T) {
	cache := NewLookupCache(2, time.Minute)
	a := CacheKey{Kind: lookupBuilding, Value: "A"}
	b := CacheKey{Kind: lookupBuilding, Value: "B"}
	c := CacheKey{Kind: lookupBuilding, Value: "C"}

	cache.Set(a, true)
	cache.Set(b, true)
	cache.Get(a)
	cache.Set(c, true)

	_, found := cache.Get(b)
	assert.False(t, found, "least recently used entry is evicted")
	_, found = cache.Get(a)
	assert.True(t, found)
	_, found = cache.Get(c)
	assert.True(t, found)
}

func TestLookupCache_CleanupExpired(t *testing.T) {
	cache := NewLookupCache(10, 10*time.Millisecond)
	cache.Set(CacheKey{Kind: lookupBuilding, Value: "A"}, true)
	cache.Set(CacheKey{Kind: lookupBuilding, Value: "B"}, true)

	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 2, cache.CleanupExpired())
	assert.Equal(t, 0, cache.Stats().Size)
}

func TestCachedLookups(t *testing.T) {
	ctx := context.Background()

	t.Run("answers are served from cache", func(t *testing.T) {
		repo := new(MockLookupRepository)
		repo.On("ValidBuilding", ctx, "DC0013ZZ").Return(true, nil).Once()
		repo.On("ValidateState", ctx, "ON", "CA").Return(true, nil).Once()
		repo.On("ValidateState", ctx, "ON", "US").Return(false, nil).Once()
		lookups := NewCachedLookups(repo, NewLookupCache(10, time.Minute))

		for i := 0; i < 3; i++ {
			ok, err := lookups.ValidBuilding(ctx, "DC0013ZZ")
			require.NoError(t, err)
			assert.True(t, ok)
		}
		ok, err := lookups.ValidateState(ctx, "ON", "CA")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = lookups.ValidateState(ctx, "ON", "US")
		require.NoError(t, err)
		assert.False(t, ok)

		repo.AssertExpectations(t)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		repo := new(MockLookupRepository)
		repo.On("ValidEmail", ctx, "a@gsa.gov").Return(false, errors.New("timeout")).Once()
		repo.On("ValidEmail", ctx, "a@gsa.gov").Return(true, nil).Once()
		lookups := NewCachedLookups(repo, NewLookupCache(10, time.Minute))

		_, err := lookups.ValidEmail(ctx, "a@gsa.gov")
		assert.Error(t, err)

		ok, err := lookups.ValidEmail(ctx, "a@gsa.gov")
		require.NoError(t, err)
		assert.True(t, ok)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate checks pass through", func(t *testing.T) {
		repo := new(MockLookupRepository)
		repo.On("DuplicateSSN", ctx, "123-45-6789").Return(true, nil).Twice()
		lookups := NewCachedLookups(repo, NewLookupCache(10, time.Minute))

		for i := 0; i < 2; i++ {
			dup, err := lookups.DuplicateSSN(ctx, "123-45-6789")
			require.NoError(t, err)
			assert.True(t, dup)
		}
		repo.AssertExpectations(t)
	})
}
