package routemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

const (
	FillStatusOK         = "ok"
	FillStatusNoMatch    = "no_match"
	FillStatusFetchError = "fetch_error"
	FillStatusInvalid    = "invalid"

	fillUserAgent   = "aexsite-route-map-filler/1.0"
	maxDocumentSize = 8 << 20
)

var (
	articleIDPattern  = regexp.MustCompile(`(?i)^block-([a-f0-9]{32})$`)
	blockIDPattern    = regexp.MustCompile(`(?i)\\?"blockId\\?":\\?"([a-f0-9-]{36})\\?"`)
	notionPagePattern = regexp.MustCompile(`(?i)\\?"notionPage\\?":\\?"([a-f0-9]{32})\\?"`)
)

type sitemapDocument struct {
	URLs []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

// SeedFromSitemap builds an entry per path listed in a sitemap. Page ids are left empty
// for FillFromLiveSite or manual editing. The root route is always present.
func SeedFromSitemap(ctx context.Context, client *http.Client, sitemapURL string) ([]Entry, error) {
	body, status, err := fetch(ctx, client, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("routemap: fetch sitemap: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("routemap: fetch sitemap: http %d", status)
	}

	var document sitemapDocument
	if err := xml.Unmarshal(body, &document); err != nil {
		return nil, fmt.Errorf("routemap: decode sitemap: %w", err)
	}

	seen := map[string]struct{}{}
	for _, item := range document.URLs {
		location, err := url.Parse(strings.TrimSpace(item.Loc))
		if err != nil {
			continue
		}
		seen[slug.Normalize(location.Path)] = struct{}{}
	}
	seen[slug.Root] = struct{}{}

	slugs := make([]string, 0, len(seen))
	for value := range seen {
		slugs = append(slugs, value)
	}
	sort.Strings(slugs)

	entries := make([]Entry, 0, len(slugs))
	for _, value := range slugs {
		entries = append(entries, Entry{Slug: value})
	}
	return entries, nil
}

// FillResult reports what FillFromLiveSite found for one slug.
type FillResult struct {
	Slug   string
	Status string
	PageID string
	Err    error
}

// FillFromLiveSite fetches each route from a running site and recovers its page id from
// the rendered markup. Entries are updated in place; one result is returned per entry.
func FillFromLiveSite(ctx context.Context, client *http.Client, siteURL string, entries []Entry) []FillResult {
	base := strings.TrimRight(strings.TrimSpace(siteURL), "/")
	results := make([]FillResult, 0, len(entries))
	for index := range entries {
		route := entries[index].Slug
		if !strings.HasPrefix(route, "/") {
			results = append(results, FillResult{Slug: route, Status: FillStatusInvalid})
			continue
		}

		body, status, err := fetch(ctx, client, base+route)
		if err != nil {
			results = append(results, FillResult{Slug: route, Status: FillStatusFetchError, Err: err})
			continue
		}
		if status < 200 || status >= 300 {
			results = append(results, FillResult{Slug: route, Status: fmt.Sprintf("http_%d", status)})
			continue
		}

		pageID := ExtractPageID(body)
		if pageID == "" {
			results = append(results, FillResult{Slug: route, Status: FillStatusNoMatch})
			continue
		}
		entries[index].PageID = pageID
		results = append(results, FillResult{Slug: route, Status: FillStatusOK, PageID: pageID})
	}
	return results
}

// ExtractPageID finds the page id in rendered page markup. The article element id is
// preferred; serialized page props are the fallback.
func ExtractPageID(document []byte) string {
	if root, err := html.Parse(strings.NewReader(string(document))); err == nil {
		if id := findArticleID(root); id != "" {
			return id
		}
	}
	if match := blockIDPattern.FindSubmatch(document); match != nil {
		return notion.CompactID(string(match[1]))
	}
	if match := notionPagePattern.FindSubmatch(document); match != nil {
		return notion.CompactID(string(match[1]))
	}
	return ""
}

func findArticleID(node *html.Node) string {
	if node.Type == html.ElementNode && node.DataAtom == atom.Article {
		for _, attribute := range node.Attr {
			if attribute.Key != "id" {
				continue
			}
			if match := articleIDPattern.FindStringSubmatch(attribute.Val); match != nil {
				return notion.CompactID(match[1])
			}
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if id := findArticleID(child); id != "" {
			return id
		}
	}
	return ""
}

func fetch(ctx context.Context, client *http.Client, target string) ([]byte, int, error) {
	if client == nil {
		client = http.DefaultClient
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	request.Header.Set("User-Agent", fillUserAgent)
	response, err := client.Do(request)
	if err != nil {
		return nil, 0, err
	}
	defer response.Body.Close()
	body, err := io.ReadAll(io.LimitReader(response.Body, maxDocumentSize))
	if err != nil {
		return nil, response.StatusCode, err
	}
	return body, response.StatusCode, nil
}
