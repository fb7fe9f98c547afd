package app

import "time"

// Config holds runtime configuration for one run.
type Config struct {
	// IndexURL is the weekly edition page. It always points at the
	// current edition; past editions are not addressed by design.
	IndexURL string
	// BaseURL is the site origin relative links resolve against.
	BaseURL string

	OutputDir string
	CacheDir  string
	DebugDir  string

	// Limit caps how many articles are fetched. Zero means all.
	Limit int

	// IndexWait and ArticleWait are the settling budgets granted to the
	// page fetcher per page kind.
	IndexWait   time.Duration
	ArticleWait time.Duration
	// Timeout bounds each HTTP request before the wait budget is added.
	Timeout time.Duration

	UserAgent string

	Verbose     bool
	Debug       bool
	EnablePDF   bool
	BypassCache bool
	// CacheClear empties the cache directory before the run starts.
	CacheClear bool
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		IndexURL:    "https://www.economist.com/weeklyedition",
		BaseURL:     "https://www.economist.com",
		OutputDir:   "ebooks",
		IndexWait:   5 * time.Second,
		ArticleWait: 3 * time.Second,
		Timeout:     30 * time.Second,
		UserAgent:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	}
}
