package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyDeterministic(t *testing.T) {
	a := Key("auth", map[string]string{
		"userId":    "u1",
		"userAgent": "Mozilla/5.0",
		"device":    "laptop",
	})
	b := Key("auth", map[string]string{
		"device":    "laptop",
		"userAgent": "Mozilla/5.0",
		"userId":    "u1",
	})
	assert.Equal(t, a, b)
	assert.Equal(t, "auth:device=laptop&userAgent=Mozilla/5.0&userId=u1", a)
}

func TestKeyOmitsEmptyFields(t *testing.T) {
	key := Key("books:list", map[string]string{
		"limit":  "20",
		"offset": "0",
		"search": "",
	})
	assert.Equal(t, "books:list:limit=20&offset=0", key)
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	c.Delete(ctx, "k")
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

type page struct {
	Title string `json:"title"`
}

func TestGetOrLoadMissThenHit(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	loads := 0
	load := func(ctx context.Context) (*page, error) {
		loads++
		return &page{Title: "Dune"}, nil
	}

	got, err := GetOrLoad(ctx, c, "pages:1", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, 1, loads)

	got, err = GetOrLoad(ctx, c, "pages:1", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, 1, loads, "second read must be served from cache")
}

func TestGetOrLoadLoaderError(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	boom := errors.New("store down")
	_, err := GetOrLoad(ctx, c, "pages:1", time.Minute, func(ctx context.Context) (*page, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	// Nothing gets cached on a failed load.
	_, ok := c.Get(ctx, "pages:1")
	assert.False(t, ok)
}

func TestGetOrLoadDropsCorruptEntry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "pages:1", []byte("{not json"), time.Minute)

	loads := 0
	got, err := GetOrLoad(ctx, c, "pages:1", time.Minute, func(ctx context.Context) (*page, error) {
		loads++
		return &page{Title: "Dune"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, 1, loads, "corrupt entry must fall through to the loader")

	// The corrupt payload was replaced with the loaded value.
	raw, ok := c.Get(ctx, "pages:1")
	require.True(t, ok)
	assert.JSONEq(t, `{"title":"Dune"}`, string(raw))
}
