package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benedict2310/ngxer/pkg/composer"
	"github.com/benedict2310/ngxer/pkg/htmlmeta"
	"github.com/benedict2310/ngxer/pkg/route"
)

// Project is a loaded config resolved against the directory holding the
// config file. Commands work from a Project, never from raw paths.
type Project struct {
	Config
	Path            string
	Dir             string
	OutDir          string
	RCDir           string
	DocumentStore   string
	ContentPair     htmlmeta.Pair
	ContentTemplate composer.ContentTemplate
	ChromeBin       string
	BrowserTimeout  time.Duration
	Splashscreen    time.Duration
}

// Resolve turns cfg (already normalized) loaded from path into a Project.
func Resolve(cfg Config, path string) (Project, error) {
	dir := filepath.Dir(path)
	p := Project{
		Config:         cfg,
		Path:           path,
		Dir:            dir,
		OutDir:         within(dir, cfg.Out),
		RCDir:          filepath.Join(dir, DefaultRCDir),
		DocumentStore:  within(dir, cfg.DocumentStore),
		ContentPair:    htmlmeta.DefaultContent,
		BrowserTimeout: time.Duration(cfg.Browser.Timeout) * time.Second,
		Splashscreen:   time.Duration(cfg.SplashscreenTimeout) * time.Second,
	}
	if len(cfg.ContentBetweens) > 0 {
		pair, err := htmlmeta.PairFrom(cfg.ContentBetweens)
		if err != nil {
			return Project{}, fmt.Errorf("contentBetweens: %w", err)
		}
		p.ContentPair = pair
	}
	tmpl, err := cfg.ContentTemplate.Load(dir)
	if err != nil {
		return Project{}, err
	}
	p.ContentTemplate = composer.ContentTemplate{Default: tmpl.Value, ByLocale: tmpl.ByLocale}

	p.ChromeBin = strings.TrimSpace(cfg.Browser.Bin)
	if p.ChromeBin == "" {
		p.ChromeBin = strings.TrimSpace(os.Getenv(EnvChromeBin))
	}
	return p, nil
}

// LoadProject loads and resolves the project config in one step.
func LoadProject(explicitPath string) (Project, error) {
	cfg, path, err := Load(explicitPath)
	if err != nil {
		return Project{}, err
	}
	return Resolve(cfg, path)
}

func within(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// RendersFor returns the database renders configured for collection, in
// config order.
func (c Config) RendersFor(collection string) []DatabaseRender {
	var out []DatabaseRender
	for _, d := range c.DatabaseRender {
		if d.Collection == collection {
			out = append(out, d)
		}
	}
	return out
}

// Collections lists configured collections once each, in config order.
func (c Config) Collections() []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range c.DatabaseRender {
		if !seen[d.Collection] {
			seen[d.Collection] = true
			out = append(out, d.Collection)
		}
	}
	return out
}

// HasPath reports whether p is listed in pathRender after normalization.
func (c Config) HasPath(p string) bool {
	p = route.Normalize(p)
	for _, existing := range c.PathRender {
		if route.Normalize(existing) == p {
			return true
		}
	}
	return false
}

// AddPaths appends paths missing from pathRender and returns those added.
func (c *Config) AddPaths(paths ...string) []string {
	var added []string
	for _, p := range paths {
		p = route.Normalize(p)
		if p == "" || c.HasPath(p) {
			continue
		}
		c.PathRender = append(c.PathRender, p)
		added = append(added, p)
	}
	return added
}

// RemovePaths drops paths from pathRender and returns those removed.
func (c *Config) RemovePaths(paths ...string) []string {
	drop := map[string]bool{}
	for _, p := range paths {
		drop[route.Normalize(p)] = true
	}
	var removed []string
	kept := c.PathRender[:0:0]
	for _, p := range c.PathRender {
		if drop[route.Normalize(p)] {
			removed = append(removed, route.Normalize(p))
			continue
		}
		kept = append(kept, p)
	}
	c.PathRender = kept
	return removed
}
