// Package fetch defines the page fetcher contract and an HTTP
// implementation with timeouts, bounded retry on transient errors, and
// an optional on-disk cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/weeklybind/weeklybind/internal/cache"
)

// PageFetcher returns the rendered HTML text of a page. wait is the
// settling budget the caller grants the page; implementations that do
// client-side rendering spend it waiting for the page to settle.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string, wait time.Duration) (string, error)
}

// Client is a plain-HTTP PageFetcher. It performs no client-side
// rendering; the wait budget widens the request deadline instead. It
// suffices whenever the site serves server-rendered markup to an
// authenticated session.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request before the wait budget is added.
	PerRequestTimeout time.Duration
	// Cache, when set, serves revalidated bodies without refetching.
	Cache *cache.Cache
	// BypassCache fetches fresh but still saves the latest response.
	BypassCache bool
}

// Fetch issues a GET with bounded retry and returns the page body.
func (c *Client) Fetch(ctx context.Context, pageURL string, wait time.Duration) (string, error) {
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, pageURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}

	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		body, ct, newEtag, newLastMod, status, err := c.tryOnce(ctx, pageURL, etag, lastMod, wait)
		if err == nil {
			if c.Cache != nil && status == http.StatusOK {
				_ = c.Cache.Save(ctx, pageURL, ct, newEtag, newLastMod, body)
			}
			if status == http.StatusNotModified {
				// A 304 carries no body; without a readable cached copy
				// there is nothing to return.
				if c.Cache == nil {
					return "", fmt.Errorf("unexpected 304 for %s", pageURL)
				}
				cached, cerr := c.Cache.LoadBody(ctx, pageURL)
				if cerr != nil {
					return "", fmt.Errorf("revalidated %s but cached body unreadable: %w", pageURL, cerr)
				}
				return string(cached), nil
			}
			return string(body), nil
		}
		if !isTransient(err) || i == attempts-1 {
			return "", err
		}
		lastErr = err
		time.Sleep(time.Duration(i+1) * 200 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return "", lastErr
}

func (c *Client) tryOnce(ctx context.Context, pageURL, etag, lastMod string, wait time.Duration) ([]byte, string, string, string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", "", "", 0, fmt.Errorf("new request: %w", err)
	}
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return nil, "", "", "", 0, fmt.Errorf("unsupported URL scheme: %q", pageURL)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	if timeout := c.PerRequestTimeout + wait; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, "", "", "", 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500 && resp.StatusCode <= 599:
		return nil, "", "", "", resp.StatusCode, fmt.Errorf("server error: %d", resp.StatusCode)
	case resp.StatusCode == http.StatusNotModified:
		return nil, resp.Header.Get("Content-Type"), resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), resp.StatusCode, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, "", "", "", resp.StatusCode, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTMLContentType(contentType) {
		return nil, "", "", "", resp.StatusCode, fmt.Errorf("unsupported content type: %s", contentType)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", "", "", resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return b, contentType, resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), resp.StatusCode, nil
}

// isTransient treats HTTP 5xx and deadline expiry as retryable.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(err.Error(), "server error:")
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}
