package app

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema. Nested sections
// map naturally to flags.
type FileConfig struct {
	Index  string `yaml:"index"`
	Base   string `yaml:"base"`
	Output string `yaml:"output"`
	Limit  int    `yaml:"limit"`

	Wait struct {
		Index   time.Duration `yaml:"index"`
		Article time.Duration `yaml:"article"`
	} `yaml:"wait"`

	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`

	Cache struct {
		Dir    string `yaml:"dir"`
		Bypass bool   `yaml:"bypass"`
		Clear  bool   `yaml:"clear"`
	} `yaml:"cache"`

	Debug     bool `yaml:"debug"`
	Verbose   bool `yaml:"verbose"`
	EnablePDF bool `yaml:"enablePDF"`
}

// LoadFileConfig reads and parses a YAML config file.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &fc, nil
}

// Apply overlays the file's non-zero values onto cfg. Flags set
// explicitly on the command line take precedence; the caller re-applies
// them after this.
func (fc *FileConfig) Apply(cfg *Config) {
	if fc.Index != "" {
		cfg.IndexURL = fc.Index
	}
	if fc.Base != "" {
		cfg.BaseURL = fc.Base
	}
	if fc.Output != "" {
		cfg.OutputDir = fc.Output
	}
	if fc.Limit > 0 {
		cfg.Limit = fc.Limit
	}
	if fc.Wait.Index > 0 {
		cfg.IndexWait = fc.Wait.Index
	}
	if fc.Wait.Article > 0 {
		cfg.ArticleWait = fc.Wait.Article
	}
	if fc.Timeout > 0 {
		cfg.Timeout = fc.Timeout
	}
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if fc.Cache.Bypass {
		cfg.BypassCache = true
	}
	if fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if fc.Debug {
		cfg.Debug = true
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
	if fc.EnablePDF {
		cfg.EnablePDF = true
	}
}
