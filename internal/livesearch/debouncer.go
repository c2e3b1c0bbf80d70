// Package livesearch evaluates search-as-you-type input: keystrokes are
// debounced, repeated queries skipped, results cached briefly, and a
// response is delivered only if no newer query was issued meanwhile.
package livesearch

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/vmunix/reelcat/internal/film"
	"github.com/vmunix/reelcat/pkg/ranking"
)

// Defaults.
const (
	DefaultDelay     = 300 * time.Millisecond
	DefaultCacheTTL  = 5 * time.Minute
	DefaultMinLength = 2

	resultBuffer = 16
)

// SearchFunc runs one search. It reports failures as an empty result.
type SearchFunc func(ctx context.Context, query string) []film.Film

// Result is the evaluation of one debounced query.
type Result struct {
	Seq   uint64
	Query string
	Films []film.Film
	// Cached is set when Films came from the result cache.
	Cached bool
	// Fallback is the word searched instead of Query when Query alone
	// found nothing.
	Fallback string
	// Cleared is set when the input became too short to search.
	Cleared bool
}

// Debouncer turns a stream of input states into search results.
type Debouncer struct {
	ctx    context.Context
	search SearchFunc
	delay  time.Duration
	minLen int
	cache  *cache
	log    *slog.Logger

	mu            sync.Mutex
	timer         *time.Timer
	seq           uint64
	lastDelivered string
	closed        bool

	deliverMu sync.Mutex
	results   chan Result
	wg        sync.WaitGroup
}

type options struct {
	delay    time.Duration
	cacheTTL time.Duration
	minLen   int
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Debouncer.
type Option func(*options)

// WithDelay sets the quiet period before a query is evaluated.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		o.delay = d
	}
}

// WithCacheTTL sets how long results are reused. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.cacheTTL = ttl
	}
}

// WithMinLength sets the shortest query, in characters, that is searched.
func WithMinLength(n int) Option {
	return func(o *options) {
		o.minLen = n
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithClock sets the time source of the result cache.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a Debouncer. Searches run with ctx; the caller must drain
// Results until it is closed.
func New(ctx context.Context, search SearchFunc, opts ...Option) *Debouncer {
	o := options{
		delay:    DefaultDelay,
		cacheTTL: DefaultCacheTTL,
		minLen:   DefaultMinLength,
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Debouncer{
		ctx:     ctx,
		search:  search,
		delay:   o.delay,
		minLen:  o.minLen,
		cache:   newCache(o.cacheTTL, o.now),
		log:     o.log.With("component", "livesearch"),
		results: make(chan Result, resultBuffer),
	}
}

// Results delivers evaluated queries in issue order.
func (d *Debouncer) Results() <-chan Result {
	return d.results
}

// Submit records the current input. Any pending evaluation is replaced.
func (d *Debouncer) Submit(input string) {
	query := ranking.NormalizeQuery(input)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	d.stopTimerLocked()
	d.seq++
	seq := d.seq

	if utf8.RuneCountInString(query) < d.minLen {
		d.lastDelivered = ""
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.deliver(Result{Seq: seq, Query: query, Films: []film.Film{}, Cleared: true})
		}()
		return
	}

	d.wg.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.evaluate(seq, query)
	})
}

// Close stops accepting input, lets a pending evaluation finish and closes
// Results.
func (d *Debouncer) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
	close(d.results)
}

func (d *Debouncer) stopTimerLocked() {
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.timer = nil
}

func (d *Debouncer) evaluate(seq uint64, query string) {
	d.mu.Lock()
	if seq != d.seq {
		d.mu.Unlock()
		return
	}
	// Only a query whose results are already on screen is skipped. A
	// result dropped as stale leaves the query eligible again.
	if query == d.lastDelivered {
		d.mu.Unlock()
		d.log.Debug("query unchanged, skipping", "query", query)
		return
	}
	d.mu.Unlock()

	if entry, ok := d.cache.get(query); ok {
		d.log.Debug("using cached results", "query", query, "results", len(entry.films))
		d.deliver(Result{Seq: seq, Query: query, Films: entry.films, Cached: true, Fallback: entry.fallback})
		return
	}

	res := Result{Seq: seq, Query: query, Films: d.search(d.ctx, query)}
	if len(res.Films) == 0 {
		if words := strings.Fields(query); len(words) > 1 {
			d.log.Debug("no results, retrying with first word", "query", query, "word", words[0])
			res.Films = d.search(d.ctx, words[0])
			res.Fallback = words[0]
		}
	}
	if len(res.Films) > 0 {
		d.cache.set(query, res.Films, res.Fallback)
	}
	d.deliver(res)
}

// deliver sends res unless a newer query has been issued since.
func (d *Debouncer) deliver(res Result) {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	d.mu.Lock()
	latest := d.seq
	if res.Seq == latest {
		d.lastDelivered = res.Query
		if res.Cleared {
			d.lastDelivered = ""
		}
	}
	d.mu.Unlock()
	if res.Seq != latest {
		d.log.Debug("dropping stale result", "query", res.Query, "seq", res.Seq, "latest", latest)
		return
	}

	select {
	case d.results <- res:
	case <-d.ctx.Done():
	}
}
