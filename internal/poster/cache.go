// Package poster memoizes poster images as inline data URLs in the
// persistent key/value store. The cache is advisory: every failure falls
// back to the original URL.
package poster

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sourcegraph/conc"
)

const (
	// KeyPrefix namespaces poster entries in the store.
	KeyPrefix = "movie_poster_"

	// DefaultTTL is how long a cached poster stays valid.
	DefaultTTL = 24 * time.Hour

	// DefaultMaxBytes caps the size of a poster we are willing to inline.
	DefaultMaxBytes = 10 << 20
)

// ErrTooLarge is returned when a poster exceeds the inline size cap.
var ErrTooLarge = errors.New("poster exceeds inline size limit")

// KV is the storage the cache persists entries in.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// Entry is one cached poster.
type Entry struct {
	SourceURL           string `json:"source_url"`
	DataURL             string `json:"data_url"`
	CachedAtEpochMillis int64  `json:"cached_at"`
}

// CachedAt returns the entry timestamp.
func (e Entry) CachedAt() time.Time {
	return time.UnixMilli(e.CachedAtEpochMillis)
}

// Cache resolves poster URLs to displayable URLs.
type Cache struct {
	kv         KV
	httpClient *http.Client
	log        *slog.Logger
	ttl        time.Duration
	maxBytes   int64
	excluded   []string
	now        func() time.Time

	preloads   conc.WaitGroup
	preloadMu  sync.Mutex
	preloaded  map[string]bool
	preloadOff bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Cache) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets a logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) {
		c.log = log.With("component", "poster")
	}
}

// WithExcludedOrigins lists hosts that already serve posters efficiently.
// Their URLs are never cached, only preloaded.
func WithExcludedOrigins(hosts ...string) Option {
	return func(c *Cache) {
		for _, h := range hosts {
			if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
				c.excluded = append(c.excluded, h)
			}
		}
	}
}

// WithMaxBytes caps the inlined poster size.
func WithMaxBytes(n int64) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithoutPreload disables background preloading.
func WithoutPreload() Option {
	return func(c *Cache) {
		c.preloadOff = true
	}
}

// New creates a poster cache over kv.
func New(kv KV, opts ...Option) *Cache {
	c := &Cache{
		kv: kv,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log:       slog.New(slog.DiscardHandler),
		ttl:       DefaultTTL,
		maxBytes:  DefaultMaxBytes,
		now:       time.Now,
		preloaded: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the store key for a poster URL.
func Key(sourceURL string) string {
	return KeyPrefix + base64.URLEncoding.EncodeToString([]byte(sourceURL))
}

// SourceFromKey reverses Key.
func SourceFromKey(key string) (string, error) {
	if !strings.HasPrefix(key, KeyPrefix) {
		return "", fmt.Errorf("not a poster key: %q", key)
	}
	raw, err := base64.URLEncoding.DecodeString(strings.TrimPrefix(key, KeyPrefix))
	if err != nil {
		return "", fmt.Errorf("decode poster key: %w", err)
	}
	return string(raw), nil
}

// Excluded reports whether rawURL belongs to an excluded origin.
func (c *Cache) Excluded(rawURL string) bool {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = strings.ToLower(u.Hostname())
	}
	for _, origin := range c.excluded {
		if host != "" {
			if host == origin || strings.HasSuffix(host, "."+origin) {
				return true
			}
			continue
		}
		if strings.Contains(strings.ToLower(rawURL), origin) {
			return true
		}
	}
	return false
}

// Resolve returns a displayable URL for sourceURL: an inline data URL when
// cached or freshly fetched, otherwise sourceURL unchanged.
func (c *Cache) Resolve(ctx context.Context, sourceURL string) string {
	if sourceURL == "" || strings.HasPrefix(sourceURL, "data:") {
		return sourceURL
	}
	if c.Excluded(sourceURL) {
		return sourceURL
	}

	key := Key(sourceURL)
	if entry, ok := c.lookup(ctx, key); ok {
		c.log.Debug("poster cache hit", "url", sourceURL)
		return entry.DataURL
	}

	c.log.Debug("poster cache miss, fetching", "url", sourceURL)
	dataURL, err := c.fetch(ctx, sourceURL)
	if err != nil {
		c.log.Warn("poster fetch failed, using original url", "url", sourceURL, "error", err)
		return sourceURL
	}

	entry := Entry{
		SourceURL:           sourceURL,
		DataURL:             dataURL,
		CachedAtEpochMillis: c.now().UnixMilli(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		c.log.Warn("failed to marshal poster entry", "url", sourceURL, "error", err)
		return sourceURL
	}
	if err := c.kv.Set(ctx, key, string(data)); err != nil {
		c.log.Warn("failed to cache poster", "url", sourceURL, "error", err)
		return sourceURL
	}
	return dataURL
}

// Display resolves sourceURL and preloads the result when it points at an
// excluded origin.
func (c *Cache) Display(ctx context.Context, sourceURL string) string {
	resolved := c.Resolve(ctx, sourceURL)
	c.Preload(resolved)
	return resolved
}

// lookup returns a live entry. Expired or unreadable entries are deleted.
func (c *Cache) lookup(ctx context.Context, key string) (Entry, bool) {
	raw, err := c.kv.Get(ctx, key)
	if err != nil {
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.DataURL == "" {
		c.log.Warn("dropping unreadable poster entry", "key", key)
		c.remove(ctx, key)
		return Entry{}, false
	}

	if c.now().Sub(entry.CachedAt()) > c.ttl {
		c.log.Debug("poster entry expired", "url", entry.SourceURL)
		c.remove(ctx, key)
		return Entry{}, false
	}
	return entry, true
}

func (c *Cache) remove(ctx context.Context, key string) {
	if err := c.kv.Delete(ctx, key); err != nil {
		c.log.Warn("failed to delete poster entry", "key", key, "error", err)
	}
}

// fetch downloads sourceURL and encodes it as a data URL.
func (c *Cache) fetch(ctx context.Context, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("poster fetch: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read poster: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return "", ErrTooLarge
	}

	return DataURL(body), nil
}

// DataURL encodes body as a base64 data URL with a sniffed media type.
func DataURL(body []byte) string {
	mime := mimetype.Detect(body).String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(body)
}

// DecodeDataURL returns the payload and media type of a base64 data URL.
func DecodeDataURL(dataURL string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, "", errors.New("not a data url")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", errors.New("not a base64 data url")
	}
	body, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data url: %w", err)
	}
	return body, strings.TrimSuffix(meta, ";base64"), nil
}

// Entries lists cached posters, including expired ones not yet evicted.
func (c *Cache) Entries(ctx context.Context) ([]Entry, error) {
	keys, err := c.kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		raw, err := c.kv.Get(ctx, key)
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		if entry.SourceURL == "" {
			entry.SourceURL, _ = SourceFromKey(key)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Expired reports whether e is past the cache TTL.
func (c *Cache) Expired(e Entry) bool {
	return c.now().Sub(e.CachedAt()) > c.ttl
}

// Clear removes every cached poster.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	return c.kv.DeletePrefix(ctx, KeyPrefix)
}
