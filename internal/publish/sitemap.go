package publish

import (
	"context"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/benedict2310/ngxer/internal/blob"
)

const (
	SitemapFile     = "sitemap.xml"
	sitemapXMLNS    = "http://www.sitemaps.org/schemas/sitemap/0.9"
	sitemapFreq     = "daily"
	sitemapPriority = "1.0"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// BuildSitemap lists every route under baseURL, in the order given, each
// stamped with the date of now. The empty route is the home page. Duplicates
// collapse to their first occurrence.
func BuildSitemap(baseURL string, routes []string, now time.Time) ([]byte, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("sitemap base url is required")
	}
	lastmod := now.UTC().Format("2006-01-02")

	seen := make(map[string]struct{}, len(routes))
	urls := make([]sitemapURL, 0, len(routes))
	for _, r := range routes {
		loc := Loc(base, r)
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		urls = append(urls, sitemapURL{
			Loc:        loc,
			LastMod:    lastmod,
			ChangeFreq: sitemapFreq,
			Priority:   sitemapPriority,
		})
	}

	payload, err := xml.MarshalIndent(sitemapURLSet{XMLNS: sitemapXMLNS, URLs: urls}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap xml: %w", err)
	}
	out := append([]byte(xml.Header), payload...)
	out = append(out, '\n')
	return out, nil
}

// Loc is the absolute, slash-terminated URL of a route.
func Loc(baseURL, r string) string {
	base := strings.TrimRight(baseURL, "/")
	r = strings.Trim(strings.TrimSpace(r), "/")
	if r == "" {
		return base + "/"
	}
	return base + "/" + r + "/"
}

// WriteSitemap replaces <outDir>/sitemap.xml and returns its path.
func WriteSitemap(ctx context.Context, outDir, baseURL string, routes []string, now time.Time) (string, error) {
	content, err := BuildSitemap(baseURL, routes, now)
	if err != nil {
		return "", err
	}
	if err := blob.NewStore(outDir).Put(ctx, SitemapFile, content); err != nil {
		return "", fmt.Errorf("write %s: %w", SitemapFile, err)
	}
	return filepath.Join(outDir, SitemapFile), nil
}
