package poster

import (
	"context"
	"io"
	"net/http"
	"time"
)

const preloadTimeout = 30 * time.Second

// Preload warms excluded-origin URLs in the background so a later display
// does not wait on the network. Other URLs, data URLs and URLs already
// preloaded by this cache are ignored. Failures are only logged.
func (c *Cache) Preload(rawURL string) {
	if c.preloadOff || rawURL == "" || !c.Excluded(rawURL) {
		return
	}

	c.preloadMu.Lock()
	if c.preloaded[rawURL] {
		c.preloadMu.Unlock()
		return
	}
	c.preloaded[rawURL] = true
	c.preloadMu.Unlock()

	c.preloads.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), preloadTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			c.log.Debug("preload request failed", "url", rawURL, "error", err)
			return
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.log.Debug("preload failed", "url", rawURL, "error", err)
			return
		}
		defer func() { _ = resp.Body.Close() }()
		_, _ = io.Copy(io.Discard, resp.Body)
		c.log.Debug("preloaded poster", "url", rawURL, "status", resp.StatusCode)
	})
}

// Wait blocks until all started preloads have finished.
func (c *Cache) Wait() {
	c.preloads.Wait()
}
