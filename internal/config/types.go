package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/benedict2310/ngxer/internal/names"
	"github.com/benedict2310/ngxer/pkg/htmlmeta"
)

const (
	EnvConfigPath  = "NGXER_CONFIG"
	EnvChromeBin   = "GOOGLE_CHROME"
	DefaultPath    = ".ngxerrc.json"
	DefaultOut     = "docs"
	DefaultRCDir   = "ngxer"
	DefaultMount   = "app-root"
	DefaultStatus  = "publish"
	DefaultOrderBy = "createdAt"

	DefaultLimitFirst     = 1000
	DefaultLimitUpdate    = 30
	DefaultBrowserTimeout = 1000

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Config is the project file (.ngxerrc.json) structure.
type Config struct {
	Out                 string           `json:"out" yaml:"out"`
	URL                 string           `json:"url" yaml:"url"`
	Sitemap             bool             `json:"sitemap" yaml:"sitemap"`
	PathRender          []string         `json:"pathRender" yaml:"pathRender"`
	DatabaseRender      []DatabaseRender `json:"databaseRender" yaml:"databaseRender"`
	IndexRender         []IndexRender    `json:"indexRender,omitempty" yaml:"indexRender,omitempty"`
	ContentBetweens     []string         `json:"contentBetweens,omitempty" yaml:"contentBetweens,omitempty"`
	ContentTemplate     ContentTemplate  `json:"contentTemplate,omitzero" yaml:"contentTemplate,omitempty"`
	Mount               string           `json:"mount,omitempty" yaml:"mount,omitempty"`
	Extractor           string           `json:"extractor,omitempty" yaml:"extractor,omitempty"`
	IncludeSessionData  bool             `json:"includeSessionData,omitempty" yaml:"includeSessionData,omitempty"`
	SplashscreenTimeout int              `json:"splashscreenTimeout,omitempty" yaml:"splashscreenTimeout,omitempty"`
	DocumentStore       string           `json:"documentStore,omitempty" yaml:"documentStore,omitempty"`
	Browser             Browser          `json:"browser,omitzero" yaml:"browser,omitempty"`
	OGImage             OGImage          `json:"ogImage,omitzero" yaml:"ogImage,omitempty"`
}

// DatabaseRender maps one collection to the page path its items render at.
type DatabaseRender struct {
	Collection     string `json:"collection" yaml:"collection"`
	Path           string `json:"path" yaml:"path"`
	Status         string `json:"status,omitempty" yaml:"status,omitempty"`
	Type           string `json:"type,omitempty" yaml:"type,omitempty"`
	Locale         string `json:"locale,omitempty" yaml:"locale,omitempty"`
	OrderBy        string `json:"orderBy,omitempty" yaml:"orderBy,omitempty"`
	OrderDirection string `json:"orderDirection,omitempty" yaml:"orderDirection,omitempty"`
	LimitFirst     int    `json:"limitFirst,omitempty" yaml:"limitFirst,omitempty"`
	LimitUpdate    int    `json:"limitUpdate,omitempty" yaml:"limitUpdate,omitempty"`
}

// IndexRender describes a localized copy of the home page.
type IndexRender struct {
	Locale      string `json:"locale" yaml:"locale"`
	Lang        string `json:"lang,omitempty" yaml:"lang,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Image       string `json:"image,omitempty" yaml:"image,omitempty"`
}

type Browser struct {
	Bin         string `json:"bin,omitempty" yaml:"bin,omitempty"`
	Timeout     int    `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Concurrency int    `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
}

type OGImage struct {
	Enabled     bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	SiteName    string `json:"siteName,omitempty" yaml:"siteName,omitempty"`
	AccentColor string `json:"accentColor,omitempty" yaml:"accentColor,omitempty"`
}

// Starter returns the configuration written by `ngxer init`.
func Starter(baseURL string) Config {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://example.com"
	}
	return Config{
		Out:            DefaultOut,
		URL:            baseURL,
		Sitemap:        true,
		PathRender:     []string{},
		DatabaseRender: []DatabaseRender{},
	}
}

func (c *Config) normalize() {
	c.Out = strings.TrimSpace(c.Out)
	c.URL = strings.TrimRight(strings.TrimSpace(c.URL), "/")
	if strings.TrimSpace(c.Mount) == "" {
		c.Mount = DefaultMount
	}
	c.Extractor = strings.ToLower(strings.TrimSpace(c.Extractor))
	if c.Extractor == "" {
		c.Extractor = htmlmeta.ExtractorText
	}
	if strings.TrimSpace(c.DocumentStore) == "" {
		c.DocumentStore = DefaultRCDir + "/documents.db"
	}
	if c.Browser.Timeout == 0 {
		c.Browser.Timeout = DefaultBrowserTimeout
	}
	for i := range c.DatabaseRender {
		c.DatabaseRender[i].normalize()
	}
}

func (d *DatabaseRender) normalize() {
	d.Collection = strings.TrimSpace(d.Collection)
	d.Path = strings.Trim(strings.TrimSpace(d.Path), "/")
	if d.Status == "" {
		d.Status = DefaultStatus
	}
	if d.OrderBy == "" {
		d.OrderBy = DefaultOrderBy
	}
	d.OrderDirection = strings.ToLower(strings.TrimSpace(d.OrderDirection))
	if d.OrderDirection == "" {
		d.OrderDirection = OrderDesc
	}
	if d.LimitFirst == 0 {
		d.LimitFirst = DefaultLimitFirst
	}
	if d.LimitUpdate == 0 {
		d.LimitUpdate = DefaultLimitUpdate
	}
}

// Validate checks config invariants that must hold for the file to be usable.
func (c Config) Validate() error {
	if c.Out == "" {
		return fmt.Errorf("out is required")
	}
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if err := validateBaseURL(c.URL); err != nil {
		return fmt.Errorf("url %q: %w", c.URL, err)
	}
	for i, d := range c.DatabaseRender {
		if err := names.ValidateCollection(d.Collection); err != nil {
			return fmt.Errorf("databaseRender[%d]: %w", i, err)
		}
		if !strings.Contains(d.Path, ":id") {
			return fmt.Errorf("databaseRender[%d].path %q must contain the :id placeholder", i, d.Path)
		}
		if d.OrderDirection != OrderAsc && d.OrderDirection != OrderDesc {
			return fmt.Errorf("databaseRender[%d].orderDirection must be asc or desc, got %q", i, d.OrderDirection)
		}
		if d.LimitFirst < 0 || d.LimitUpdate < 0 {
			return fmt.Errorf("databaseRender[%d]: limits must not be negative", i)
		}
	}
	for i, ir := range c.IndexRender {
		if strings.Trim(strings.TrimSpace(ir.Locale), "/") == "" {
			return fmt.Errorf("indexRender[%d].locale is required", i)
		}
	}
	if len(c.ContentBetweens) > 0 {
		if _, err := htmlmeta.PairFrom(c.ContentBetweens); err != nil {
			return fmt.Errorf("contentBetweens: %w", err)
		}
	}
	if c.Extractor != htmlmeta.ExtractorText && c.Extractor != htmlmeta.ExtractorDOM {
		return fmt.Errorf("extractor must be text or dom, got %q", c.Extractor)
	}
	if c.SplashscreenTimeout < 0 {
		return fmt.Errorf("splashscreenTimeout must not be negative")
	}
	if c.Browser.Timeout < 0 || c.Browser.Concurrency < 0 {
		return fmt.Errorf("browser.timeout and browser.concurrency must not be negative")
	}
	return nil
}

// validateBaseURL accepts absolute http(s) URLs that can prefix page paths.
func validateBaseURL(value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if !parsed.IsAbs() {
		return fmt.Errorf("must be an absolute URL")
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("must use http or https")
	}
	if parsed.Hostname() == "" {
		return fmt.Errorf("host is required")
	}
	if parsed.User != nil {
		return fmt.Errorf("must not include credentials")
	}
	if parsed.RawQuery != "" || parsed.ForceQuery || parsed.Fragment != "" {
		return fmt.Errorf("must not include a query string or fragment")
	}
	return nil
}
