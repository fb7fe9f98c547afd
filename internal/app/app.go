// Package app orchestrates the pipeline: index parse, per-article
// fetch and extraction, filtering, and document assembly. The sequence
// is deliberately synchronous; the run is bound by the page fetcher,
// not by throughput.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/weeklybind/weeklybind/internal/assemble"
	"github.com/weeklybind/weeklybind/internal/cache"
	"github.com/weeklybind/weeklybind/internal/edition"
	"github.com/weeklybind/weeklybind/internal/extract"
	"github.com/weeklybind/weeklybind/internal/fetch"
	"github.com/weeklybind/weeklybind/internal/images"
	"github.com/weeklybind/weeklybind/internal/section"
	"github.com/weeklybind/weeklybind/internal/textutil"
)

// minParagraphsPerArticle drops articles that retained too little text
// after filtering to be worth a chapter.
const minParagraphsPerArticle = 3

// Fatal conditions. Everything else is isolated per item.
var (
	ErrIndexUnavailable = errors.New("weekly edition index unavailable")
	ErrNoArticles       = errors.New("no articles discovered on index page")
	ErrNoContent        = errors.New("no articles retained enough content after filtering")
)

// App wires the pipeline components for one run.
type App struct {
	cfg     Config
	fetcher fetch.PageFetcher
	session *extract.Session
	images  *images.Handler
}

// New builds an App from configuration. The fetcher may be replaced for
// tests or for a browser-backed implementation.
func New(cfg Config) *App {
	client := &fetch.Client{
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       3,
		PerRequestTimeout: cfg.Timeout,
		BypassCache:       cfg.BypassCache,
	}
	if cfg.CacheDir != "" {
		client.Cache = &cache.Cache{Dir: cfg.CacheDir}
	}
	return &App{
		cfg:     cfg,
		fetcher: client,
		session: extract.NewSession(),
		images: &images.Handler{
			UserAgent: cfg.UserAgent,
			BaseURL:   cfg.BaseURL,
		},
	}
}

// SetFetcher replaces the page fetcher.
func (a *App) SetFetcher(f fetch.PageFetcher) { a.fetcher = f }

// Run executes the whole pipeline and writes the finished document.
func (a *App) Run(ctx context.Context) error {
	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if a.cfg.Debug && a.cfg.DebugDir != "" {
		if err := os.MkdirAll(a.cfg.DebugDir, 0o755); err != nil {
			return fmt.Errorf("create debug dir: %w", err)
		}
	}
	if a.cfg.CacheClear && a.cfg.CacheDir != "" {
		if err := cache.ClearDir(a.cfg.CacheDir); err != nil {
			return fmt.Errorf("clear cache dir: %w", err)
		}
		log.Info().Str("dir", a.cfg.CacheDir).Msg("cache cleared")
	}

	log.Info().Str("url", a.cfg.IndexURL).Msg("fetching weekly edition index")
	indexHTML, err := a.fetcher.Fetch(ctx, a.cfg.IndexURL, a.cfg.IndexWait)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	a.saveDebugHTML("weekly_edition", indexHTML)

	ed := &edition.Edition{}
	a.discoverEdition(ed, indexHTML)

	links := a.session.ArticleLinks(indexHTML)
	if len(links) == 0 {
		return ErrNoArticles
	}
	for _, l := range links {
		ed.Articles = append(ed.Articles, &edition.Article{Title: l.Title, URL: l.URL, Section: l.Section})
	}
	log.Info().Int("count", len(links)).Msg("articles discovered")
	a.logSectionCounts(ed)

	stubs := ed.Articles
	if a.cfg.Limit > 0 && a.cfg.Limit < len(stubs) {
		log.Info().Int("limit", a.cfg.Limit).Int("available", len(stubs)).Msg("limiting articles")
		stubs = stubs[:a.cfg.Limit]
	}

	var retained []*edition.Article
	for i, art := range stubs {
		if ctx.Err() != nil {
			// Stop issuing fetches on interrupt; no partial document is
			// persisted.
			return ctx.Err()
		}
		log.Info().
			Int("n", i+1).Int("of", len(stubs)).
			Str("section", art.Section).Str("title", truncate(art.Title, 50)).
			Msg("scraping article")
		if a.populate(ctx, art) {
			retained = append(retained, art)
		}
	}
	if len(retained) == 0 {
		return ErrNoContent
	}

	builder := &assemble.Builder{Images: a.images, OutDir: a.cfg.OutputDir}
	res, err := builder.Assemble(ctx, ed, retained)
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}
	log.Info().
		Str("edition", ed.Title).
		Str("path", res.Path).
		Int("chapters", res.Chapters).
		Int("sections", res.Sections).
		Int("images", res.Images).
		Int64("bytes", res.Bytes).
		Msg("epub created")

	if a.cfg.EnablePDF {
		pdfPath := strings.TrimSuffix(res.Path, ".epub") + ".pdf"
		if err := assemble.WritePDF(ed, retained, pdfPath); err != nil {
			log.Warn().Err(err).Msg("pdf companion failed")
		} else {
			log.Info().Str("path", pdfPath).Msg("pdf companion created")
		}
	}
	return nil
}

// populate fetches and parses one article in place. Returns false when
// the article is dropped; failures never abort the run.
func (a *App) populate(ctx context.Context, art *edition.Article) bool {
	if art.URL == "" {
		return false
	}
	html, err := a.fetcher.Fetch(ctx, art.URL, a.cfg.ArticleWait)
	if err != nil {
		log.Warn().Err(err).Str("url", art.URL).Msg("article fetch failed, skipping")
		return false
	}
	a.saveDebugHTML(art.Title, html)

	extracted := a.session.Article(html, art.URL)
	if art.Title == "" {
		art.Title = extracted.Title
	}
	art.Subtitle = extracted.Subtitle
	art.Blocks = extracted.Blocks

	if n := art.ParagraphCount(); n < minParagraphsPerArticle {
		log.Warn().Int("paragraphs", n).Str("url", art.URL).Msg("skipped, too little content")
		return false
	}
	log.Info().
		Int("paragraphs", art.ParagraphCount()).
		Int("images", art.ImageCount()).
		Msg("extracted")
	return true
}

// discoverEdition fills in the edition date and cover URL from the
// index page, preferring the dated cover asset over page text.
func (a *App) discoverEdition(ed *edition.Edition, indexHTML string) {
	if coverURL := a.session.CoverURL(indexHTML); coverURL != "" {
		ed.CoverURL = coverURL
		if date := textutil.DateFromCoverURL(coverURL); date != "" {
			ed.Date = date
		}
	}
	if ed.Date == "" {
		ed.Date = textutil.DateFromText(indexHTML)
	}
	if ed.Date != "" {
		log.Info().Str("date", ed.Date).Msg("weekly edition date")
	}
}

func (a *App) logSectionCounts(ed *edition.Edition) {
	groups := ed.BySection()
	for _, name := range section.Order {
		if n := len(groups[name]); n > 0 {
			log.Debug().Str("section", name).Int("count", n).Msg("section")
		}
	}
	if n := len(groups[section.Other]); n > 0 {
		log.Debug().Str("section", section.Other).Int("count", n).Msg("section")
	}
}

// saveDebugHTML dumps fetched markup for offline heuristic tuning.
func (a *App) saveDebugHTML(title, html string) {
	if !a.cfg.Debug || a.cfg.DebugDir == "" {
		return
	}
	name := fmt.Sprintf("%s_%s.html", time.Now().Format("150405"), textutil.SanitizeFilename(title, 50))
	path := a.cfg.DebugDir + string(os.PathSeparator) + name
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("debug dump failed")
		return
	}
	log.Debug().Str("path", path).Msg("debug html saved")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
