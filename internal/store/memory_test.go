package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-sdk/internal/weather"
)

func payloadFor(name string) weather.Payload {
	return weather.Payload{Name: name, Weather: weather.Summary{Main: "Clear"}}
}

func TestNewLRUStore_InvalidCapacity(t *testing.T) {
	_, err := NewLRUStore(0)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = NewLRUStore(-3)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestLRUStore_NeverExceedsCapacity(t *testing.T) {
	s, err := NewLRUStore(DefaultCapacity)
	require.NoError(t, err)

	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		// Mix new keys with overwrites of older ones.
		key := fmt.Sprintf("city-%d", i%17)
		s.Put(key, payloadFor(key), now.Add(time.Duration(i)*time.Second))
		require.LessOrEqual(t, s.Len(), DefaultCapacity, "store exceeded capacity after put %d", i)
	}
	assert.Equal(t, DefaultCapacity, s.Len())
}

func TestLRUStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s, err := NewLRUStore(DefaultCapacity)
	require.NoError(t, err)

	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	cities := []string{"minsk", "london", "tokyo", "paris", "moscow", "beijing", "berlin", "istanbul", "rio de janeiro", "vilnius"}
	for _, c := range cities {
		s.Put(c, payloadFor(c), now)
	}

	// Touch minsk so london becomes the least recently used.
	_, ok := s.Get("minsk")
	require.True(t, ok)

	s.Put("rome", payloadFor("rome"), now)

	assert.Equal(t, DefaultCapacity, s.Len())
	_, ok = s.Get("london")
	assert.False(t, ok, "london should have been evicted")

	for _, c := range append([]string{"minsk", "rome"}, cities[2:]...) {
		e, ok := s.Get(c)
		require.True(t, ok, "%s should still be cached", c)
		assert.Equal(t, c, e.Payload.Name)
		assert.Equal(t, now, e.FetchedAt)
	}
}

func TestLRUStore_OverwriteDoesNotEvict(t *testing.T) {
	s, err := NewLRUStore(2)
	require.NoError(t, err)

	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	s.Put("a", payloadFor("a"), now)
	s.Put("b", payloadFor("b"), now)

	updated := s.Put("a", payloadFor("a2"), now.Add(time.Minute))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "a2", updated.Payload.Name)
	assert.Equal(t, now.Add(time.Minute), updated.FetchedAt)
	assert.Equal(t, []string{"a", "b"}, s.Keys())
}

func TestLRUStore_FetchedAtNeverDecreases(t *testing.T) {
	s, err := NewLRUStore(DefaultCapacity)
	require.NoError(t, err)

	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	s.Put("vilnius", payloadFor("v1"), now)
	e := s.Put("vilnius", payloadFor("v2"), now.Add(-time.Minute))

	assert.Equal(t, now, e.FetchedAt)
	assert.Equal(t, "v2", e.Payload.Name)
}

func TestLRUStore_Replace(t *testing.T) {
	s, err := NewLRUStore(2)
	require.NoError(t, err)

	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	t.Run("missing key is not inserted", func(t *testing.T) {
		assert.False(t, s.Replace("ghost", payloadFor("ghost"), now))
		assert.Equal(t, 0, s.Len())
	})

	t.Run("existing key keeps its recency", func(t *testing.T) {
		s.Put("a", payloadFor("a"), now)
		s.Put("b", payloadFor("b"), now)

		require.True(t, s.Replace("a", payloadFor("a-refreshed"), now.Add(time.Minute)))
		assert.Equal(t, []string{"b", "a"}, s.Keys())

		// a is still the eviction candidate.
		s.Put("c", payloadFor("c"), now)
		_, ok := s.Get("a")
		assert.False(t, ok)
	})
}

func TestLRUStore_Remove(t *testing.T) {
	s, err := NewLRUStore(DefaultCapacity)
	require.NoError(t, err)

	s.Remove("nowhere")

	s.Put("oslo", payloadFor("oslo"), time.Now())
	s.Remove("oslo")

	_, ok := s.Get("oslo")
	assert.False(t, ok)
	assert.Empty(t, s.Keys())
}

func TestLRUStore_KeysIsSnapshot(t *testing.T) {
	s, err := NewLRUStore(DefaultCapacity)
	require.NoError(t, err)

	now := time.Now()
	s.Put("a", payloadFor("a"), now)
	s.Put("b", payloadFor("b"), now)

	keys := s.Keys()
	s.Remove("a")
	s.Put("c", payloadFor("c"), now)

	assert.Equal(t, []string{"b", "a"}, keys)
	assert.Equal(t, []string{"c", "b"}, s.Keys())
}

func TestLRUStore_ConcurrentAccess(t *testing.T) {
	s, err := NewLRUStore(DefaultCapacity)
	require.NoError(t, err)

	var wg sync.WaitGroup
	now := time.Now()
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*31+i)%25)
				switch i % 4 {
				case 0:
					s.Put(key, payloadFor(key), now)
				case 1:
					if e, ok := s.Get(key); ok {
						assert.Equal(t, key, e.Payload.Name)
					}
				case 2:
					s.Replace(key, payloadFor(key), now)
				case 3:
					_ = s.Keys()
				}
				assert.LessOrEqual(t, s.Len(), DefaultCapacity)
			}
		}(g)
	}
	wg.Wait()
}
