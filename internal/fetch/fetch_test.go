package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/weeklybind/weeklybind/internal/cache"
)

func TestFetchRetriesTransientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 3}
	body, err := c.Fetch(context.Background(), srv.URL, 0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if body != "<html>ok</html>" {
		t.Fatalf("body = %q", body)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("server called %d times, want 3", n)
	}
}

func TestFetchGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 2}
	if _, err := c.Fetch(context.Background(), srv.URL, 0); err == nil {
		t.Fatal("want error after exhausting attempts")
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("server called %d times, want 2", n)
	}
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 3}
	if _, err := c.Fetch(context.Background(), srv.URL, 0); err == nil {
		t.Fatal("want error for 404")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("server called %d times, want 1", n)
	}
}

func TestFetchRejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"not":"html"}`))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1}
	if _, err := c.Fetch(context.Background(), srv.URL, 0); err == nil {
		t.Fatal("want error for non-HTML content type")
	}
}

func TestFetchRejectsBadScheme(t *testing.T) {
	c := &Client{}
	if _, err := c.Fetch(context.Background(), "ftp://example.com/page", 0); err == nil {
		t.Fatal("want error for non-HTTP scheme")
	}
}

func TestFetchRevalidatesFromCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		atomic.AddInt32(&calls, 1)
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>cached</html>"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1, Cache: &cache.Cache{Dir: t.TempDir()}}

	first, err := c.Fetch(context.Background(), srv.URL, 0)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := c.Fetch(context.Background(), srv.URL, 0)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if first != second {
		t.Fatalf("bodies differ: %q vs %q", first, second)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("full responses served %d times, want 1", n)
	}
}

func TestFetchRevalidatedWithoutBodyFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>cached</html>"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := &Client{MaxAttempts: 1, Cache: &cache.Cache{Dir: dir}}
	if _, err := c.Fetch(context.Background(), srv.URL, 0); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	// Losing the body file must not turn a 304 into an empty success.
	bodies, err := filepath.Glob(filepath.Join(dir, "*.body"))
	if err != nil || len(bodies) == 0 {
		t.Fatalf("no cached body found: %v", err)
	}
	for _, b := range bodies {
		if err := os.Remove(b); err != nil {
			t.Fatal(err)
		}
	}

	body, err := c.Fetch(context.Background(), srv.URL, 0)
	if err == nil {
		t.Fatalf("want error, got body %q", body)
	}
}

func TestFetchBypassCacheSkipsConditional(t *testing.T) {
	var conditional int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") != "" {
			atomic.AddInt32(&conditional, 1)
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>fresh</html>"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1, Cache: &cache.Cache{Dir: t.TempDir()}, BypassCache: true}
	for i := 0; i < 2; i++ {
		if _, err := c.Fetch(context.Background(), srv.URL, 0); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&conditional); n != 0 {
		t.Fatalf("conditional requests sent %d times, want 0", n)
	}
}
