package navigation

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

const (
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	changeFrequency  = "weekly"
	rootPriority     = "1.0"
	pagePriority     = "0.7"
)

// DefaultStaticPaths are served by the application itself and always listed.
var DefaultStaticPaths = []string{"/typeplayground"}

var ErrInvalidSiteURL = errors.New("navigation: invalid site url")

type sitemapURL struct {
	Location        string `xml:"loc"`
	ChangeFrequency string `xml:"changefreq"`
	Priority        string `xml:"priority"`
}

type urlSet struct {
	XMLName   xml.Name     `xml:"urlset"`
	Namespace string       `xml:"xmlns,attr"`
	URLs      []sitemapURL `xml:"url"`
}

// BuildSitemap renders the sitemap document for the given slugs plus staticPaths.
// Duplicates are dropped; entries are ordered by slug.
func BuildSitemap(siteURL string, slugs []string, staticPaths []string) ([]byte, error) {
	base, err := url.Parse(strings.TrimSpace(siteURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSiteURL, siteURL)
	}

	seen := make(map[string]struct{}, len(slugs)+len(staticPaths))
	ordered := make([]string, 0, len(slugs)+len(staticPaths))
	for _, value := range append(append([]string(nil), slugs...), staticPaths...) {
		normalized := slug.Normalize(value)
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		ordered = append(ordered, normalized)
	}
	sort.Strings(ordered)

	document := urlSet{Namespace: sitemapNamespace, URLs: make([]sitemapURL, 0, len(ordered))}
	for _, value := range ordered {
		priority := pagePriority
		if value == slug.Root {
			priority = rootPriority
		}
		document.URLs = append(document.URLs, sitemapURL{
			Location:        base.ResolveReference(&url.URL{Path: value}).String(),
			ChangeFrequency: changeFrequency,
			Priority:        priority,
		})
	}

	body, err := xml.MarshalIndent(document, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
