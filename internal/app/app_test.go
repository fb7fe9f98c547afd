package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// mapFetcher serves canned HTML per URL.
type mapFetcher struct {
	pages map[string]string
}

func (m *mapFetcher) Fetch(_ context.Context, pageURL string, _ time.Duration) (string, error) {
	page, ok := m.pages[pageURL]
	if !ok {
		return "", fmt.Errorf("no page for %s", pageURL)
	}
	return page, nil
}

func articleHTML(title string, nparas int) string {
	body := ""
	for i := 0; i < nparas; i++ {
		body += fmt.Sprintf(`<p data-component="paragraph">Paragraph number %d with enough words to clear the minimum length bar.</p>`, i)
	}
	return `<html><body><h1>` + title + `</h1><div data-component="article-body">` + body + `</div></body></html>`
}

func testConfig(t *testing.T) Config {
	cfg := Defaults()
	cfg.OutputDir = t.TempDir()
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	index := `<html><body>
<p>Weekly edition January 5th 2024</p>
<a href="/leaders/2024/01/04/the-lead-article">The lead article of the week</a>
<a href="/business/2024/01/04/a-business-story">A business story worth reading</a>
<a href="/leaders/2024/01/04/too-thin">A thin piece with little text</a>
</body></html>`

	cfg := testConfig(t)
	a := New(cfg)
	a.SetFetcher(&mapFetcher{pages: map[string]string{
		cfg.IndexURL: index,
		"https://www.economist.com/leaders/2024/01/04/the-lead-article":  articleHTML("The lead article", 4),
		"https://www.economist.com/business/2024/01/04/a-business-story": articleHTML("A business story", 3),
		"https://www.economist.com/leaders/2024/01/04/too-thin":          articleHTML("Too thin", 1),
	}})

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Date came from the index text, so the output name is deterministic.
	out := filepath.Join(cfg.OutputDir, "economist_2024-01-05.epub")
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output missing: %v", err)
	}
}

func TestRunIndexUnavailable(t *testing.T) {
	cfg := testConfig(t)
	a := New(cfg)
	a.SetFetcher(&mapFetcher{pages: map[string]string{}})

	if err := a.Run(context.Background()); !errors.Is(err, ErrIndexUnavailable) {
		t.Fatalf("err = %v, want ErrIndexUnavailable", err)
	}
}

func TestRunNoArticles(t *testing.T) {
	cfg := testConfig(t)
	a := New(cfg)
	a.SetFetcher(&mapFetcher{pages: map[string]string{
		cfg.IndexURL: `<html><body><p>nothing to see</p></body></html>`,
	}})

	if err := a.Run(context.Background()); !errors.Is(err, ErrNoArticles) {
		t.Fatalf("err = %v, want ErrNoArticles", err)
	}
}

func TestRunNoContent(t *testing.T) {
	index := `<html><body>
<a href="/leaders/2024/01/04/only-a-stub">The only article of the issue</a>
</body></html>`

	cfg := testConfig(t)
	a := New(cfg)
	a.SetFetcher(&mapFetcher{pages: map[string]string{
		cfg.IndexURL: index,
		"https://www.economist.com/leaders/2024/01/04/only-a-stub": articleHTML("Stub", 1),
	}})

	if err := a.Run(context.Background()); !errors.Is(err, ErrNoContent) {
		t.Fatalf("err = %v, want ErrNoContent", err)
	}
}

func TestRunFetchFailureIsSkipped(t *testing.T) {
	index := `<html><body>
<p>Weekly edition January 5th 2024</p>
<a href="/leaders/2024/01/04/reachable-piece">A reachable piece of writing</a>
<a href="/leaders/2024/01/04/broken-link-here">A broken link to nowhere at all</a>
</body></html>`

	cfg := testConfig(t)
	a := New(cfg)
	a.SetFetcher(&mapFetcher{pages: map[string]string{
		cfg.IndexURL: index,
		"https://www.economist.com/leaders/2024/01/04/reachable-piece": articleHTML("Reachable", 3),
	}})

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunHonorsLimit(t *testing.T) {
	index := `<html><body>
<p>Weekly edition January 5th 2024</p>
<a href="/leaders/2024/01/04/the-first-article">The first article of the issue</a>
<a href="/leaders/2024/01/04/never-fetched-one">The second article never fetched</a>
</body></html>`

	cfg := testConfig(t)
	cfg.Limit = 1
	a := New(cfg)
	fetched := make(map[string]int)
	a.SetFetcher(fetchFunc(func(_ context.Context, pageURL string, _ time.Duration) (string, error) {
		fetched[pageURL]++
		if pageURL == cfg.IndexURL {
			return index, nil
		}
		return articleHTML("An article", 3), nil
	}))

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fetched["https://www.economist.com/leaders/2024/01/04/never-fetched-one"] != 0 {
		t.Fatal("limit not honored")
	}
}

func TestRunClearsCacheDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheDir = t.TempDir()
	cfg.CacheClear = true
	stale := filepath.Join(cfg.CacheDir, "stale.body")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := New(cfg)
	a.SetFetcher(&mapFetcher{pages: map[string]string{
		cfg.IndexURL: `<html><body><p>nothing</p></body></html>`,
	}})

	if err := a.Run(context.Background()); !errors.Is(err, ErrNoArticles) {
		t.Fatalf("err = %v, want ErrNoArticles", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale cache entry survived: %v", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	index := `<html><body>
<a href="/leaders/2024/01/04/the-first-article">The first article of the issue</a>
</body></html>`

	cfg := testConfig(t)
	a := New(cfg)
	a.SetFetcher(&mapFetcher{pages: map[string]string{cfg.IndexURL: index}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if entries, _ := os.ReadDir(cfg.OutputDir); len(entries) != 0 {
		t.Fatalf("partial output written: %v", entries)
	}
}

// fetchFunc adapts a function to the fetch.PageFetcher interface.
type fetchFunc func(ctx context.Context, pageURL string, wait time.Duration) (string, error)

func (f fetchFunc) Fetch(ctx context.Context, pageURL string, wait time.Duration) (string, error) {
	return f(ctx, pageURL, wait)
}
