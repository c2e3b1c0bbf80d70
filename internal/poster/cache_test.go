package poster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/reelcat/internal/store"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setupTestCache(t *testing.T, opts ...Option) (*Cache, *store.Store, *fakeClock) {
	t.Helper()
	kv, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.now)}, opts...)
	return New(kv, opts...), kv, clock
}

func posterServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path == "/missing.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(pngHeader)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCache_Resolve_FetchesOnceWithinTTL(t *testing.T) {
	var hits int32
	srv := posterServer(t, &hits)
	c, _, clock := setupTestCache(t)
	ctx := context.Background()
	src := srv.URL + "/poster.png"

	first := c.Resolve(ctx, src)
	assert.True(t, strings.HasPrefix(first, "data:image/png;base64,"), first)

	clock.advance(23 * time.Hour)
	second := c.Resolve(ctx, src)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second lookup served from cache")
}

func TestCache_Resolve_RefetchesAfterTTL(t *testing.T) {
	var hits int32
	srv := posterServer(t, &hits)
	c, kv, clock := setupTestCache(t)
	ctx := context.Background()
	src := srv.URL + "/poster.png"

	c.Resolve(ctx, src)
	clock.advance(DefaultTTL + time.Minute)

	c.Resolve(ctx, src)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	raw, err := kv.Get(ctx, Key(src))
	require.NoError(t, err)
	assert.Contains(t, raw, `"cached_at":`+strconv.FormatInt(clock.t.UnixMilli(), 10), "entry rewritten with the new timestamp")
}

func TestCache_Resolve_ExcludedOriginUntouched(t *testing.T) {
	c, kv, _ := setupTestCache(t, WithExcludedOrigins("s3.timeweb.cloud"), WithoutPreload())
	ctx := context.Background()
	src := "https://bucket.s3.timeweb.cloud/posters/1.jpg"

	assert.Equal(t, src, c.Resolve(ctx, src))

	keys, err := kv.Keys(ctx, KeyPrefix)
	require.NoError(t, err)
	assert.Empty(t, keys, "excluded origins are never written")
}

func TestCache_Resolve_FailureFallsBack(t *testing.T) {
	var hits int32
	srv := posterServer(t, &hits)
	c, kv, _ := setupTestCache(t)
	ctx := context.Background()

	src := srv.URL + "/missing.png"
	assert.Equal(t, src, c.Resolve(ctx, src))

	unreachable := "http://127.0.0.1:1/poster.png"
	assert.Equal(t, unreachable, c.Resolve(ctx, unreachable))

	keys, err := kv.Keys(ctx, KeyPrefix)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCache_Resolve_TooLargeFallsBack(t *testing.T) {
	var hits int32
	srv := posterServer(t, &hits)
	c, _, _ := setupTestCache(t, WithMaxBytes(4))

	src := srv.URL + "/poster.png"
	assert.Equal(t, src, c.Resolve(context.Background(), src))
}

func TestCache_Resolve_CorruptEntryIsDropped(t *testing.T) {
	var hits int32
	srv := posterServer(t, &hits)
	c, kv, _ := setupTestCache(t)
	ctx := context.Background()
	src := srv.URL + "/poster.png"

	require.NoError(t, kv.Set(ctx, Key(src), "{not json"))

	got := c.Resolve(ctx, src)
	assert.True(t, strings.HasPrefix(got, "data:"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestKey_Reversible(t *testing.T) {
	src := "https://example.com/p/a b?x=1&y=ü"
	key := Key(src)
	assert.True(t, strings.HasPrefix(key, KeyPrefix))

	got, err := SourceFromKey(key)
	require.NoError(t, err)
	assert.Equal(t, src, got)

	_, err = SourceFromKey("token")
	assert.Error(t, err)
}

func TestDataURL_RoundTrip(t *testing.T) {
	body, mime, err := DecodeDataURL(DataURL(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, pngHeader, body)

	_, _, err = DecodeDataURL("https://example.com/a.png")
	assert.Error(t, err)
}

func TestCache_EntriesAndClear(t *testing.T) {
	var hits int32
	srv := posterServer(t, &hits)
	c, _, clock := setupTestCache(t)
	ctx := context.Background()

	c.Resolve(ctx, srv.URL+"/a.png")
	c.Resolve(ctx, srv.URL+"/b.png")

	entries, err := c.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.False(t, c.Expired(entries[0]))

	clock.advance(2 * DefaultTTL)
	assert.True(t, c.Expired(entries[0]))

	n, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCache_Excluded(t *testing.T) {
	c := New(nil, WithExcludedOrigins("S3.Timeweb.Cloud", " "))

	assert.True(t, c.Excluded("https://s3.timeweb.cloud/a.jpg"))
	assert.True(t, c.Excluded("https://bucket.s3.timeweb.cloud/a.jpg"))
	assert.False(t, c.Excluded("https://nots3.timeweb.cloud.example.com/a.jpg"))
	assert.False(t, c.Excluded("https://image.tmdb.org/t/p/w500/a.jpg"))
}
