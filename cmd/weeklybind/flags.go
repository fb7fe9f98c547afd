package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/weeklybind/weeklybind/internal/app"
)

// parseFlags builds the run configuration from defaults, an optional
// YAML config file, and command-line flags, in that precedence order.
func parseFlags(args []string) (app.Config, error) {
	cfg := app.Defaults()

	fs := flag.NewFlagSet("weeklybind", flag.ContinueOnError)

	var (
		configPath  string
		indexURL    string
		baseURL     string
		outputDir   string
		debugDir    string
		limit       int
		indexWait   time.Duration
		articleWait time.Duration
		timeout     time.Duration
		userAgent   string
		cacheDir    string
		cacheBypass bool
		cacheClear  bool
		verbose     bool
		debug       bool
		enablePDF   bool
	)

	fs.StringVar(&configPath, "config", "", "Path to YAML config file (optional)")
	fs.StringVar(&indexURL, "index", cfg.IndexURL, "Weekly edition index page URL")
	fs.StringVar(&baseURL, "base", cfg.BaseURL, "Site origin for resolving relative links")
	fs.StringVar(&outputDir, "out", cfg.OutputDir, "Directory to write the finished EPUB into")
	fs.StringVar(&debugDir, "debug.dir", "debug_html", "Directory for debug HTML dumps")
	fs.IntVar(&limit, "limit", 0, "Maximum articles to fetch (0 = all)")
	fs.DurationVar(&indexWait, "wait.index", cfg.IndexWait, "Settling wait for the index page")
	fs.DurationVar(&articleWait, "wait.article", cfg.ArticleWait, "Settling wait per article page")
	fs.DurationVar(&timeout, "timeout", cfg.Timeout, "Per-request HTTP timeout before waits are added")
	fs.StringVar(&userAgent, "ua", cfg.UserAgent, "User-Agent header for page and image requests")
	fs.StringVar(&cacheDir, "cache.dir", "", "HTTP cache directory (empty disables caching)")
	fs.BoolVar(&cacheBypass, "cache.bypass", false, "Skip cache reads but still store fresh responses")
	fs.BoolVar(&cacheClear, "cache.clear", false, "Clear cache directory before run")
	fs.BoolVar(&verbose, "v", false, "Verbose logging")
	fs.BoolVar(&debug, "debug", false, "Save fetched HTML and log at debug level")
	fs.BoolVar(&enablePDF, "enable.pdf", false, "Also write a text-only PDF companion")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if configPath != "" {
		fc, err := app.LoadFileConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", configPath, err)
		}
		fc.Apply(&cfg)
	}

	// Flags set explicitly on the command line win over the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "index":
			cfg.IndexURL = indexURL
		case "base":
			cfg.BaseURL = baseURL
		case "out":
			cfg.OutputDir = outputDir
		case "limit":
			cfg.Limit = limit
		case "wait.index":
			cfg.IndexWait = indexWait
		case "wait.article":
			cfg.ArticleWait = articleWait
		case "timeout":
			cfg.Timeout = timeout
		case "ua":
			cfg.UserAgent = userAgent
		case "cache.dir":
			cfg.CacheDir = cacheDir
		case "cache.bypass":
			cfg.BypassCache = cacheBypass
		case "cache.clear":
			cfg.CacheClear = cacheClear
		case "v":
			cfg.Verbose = verbose
		case "debug":
			cfg.Debug = debug
		case "enable.pdf":
			cfg.EnablePDF = enablePDF
		}
	})

	if cfg.Debug {
		cfg.DebugDir = debugDir
	}
	return cfg, nil
}
