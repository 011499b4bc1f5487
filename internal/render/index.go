package render

import (
	"sort"
	"strings"

	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

// RouteRef is the part of a route the renderer needs to resolve cross-page references.
type RouteRef struct {
	Slug   string
	PageID string
	Title  string
}

// ChildLink is one entry of an expandable page group.
type ChildLink struct {
	Slug  string
	Label string
}

// RouteIndex is a read-only snapshot of the route table for link resolution.
type RouteIndex struct {
	slugByPageID     map[string]string
	childrenByParent map[string][]ChildLink
}

// Index builds a RouteIndex. The first route for a page id wins. Routes below an
// expandable parent are grouped under it, hidden routes excluded.
func (r *Renderer) Index(routes []RouteRef) RouteIndex {
	index := RouteIndex{
		slugByPageID:     make(map[string]string, len(routes)),
		childrenByParent: make(map[string][]ChildLink),
	}
	for _, route := range routes {
		routeSlug := slug.Normalize(route.Slug)
		if pageKey := notion.CompactID(route.PageID); pageKey != "" {
			if _, exists := index.slugByPageID[pageKey]; !exists {
				index.slugByPageID[pageKey] = routeSlug
			}
		}
		if slug.HasHiddenSuffix(routeSlug, r.hiddenSuffix) {
			continue
		}
		segments := slug.Segments(routeSlug)
		if len(segments) < 2 {
			continue
		}
		parentSlug := "/" + segments[0]
		if _, ok := r.expandableParents[slug.Key(parentSlug)]; !ok {
			continue
		}
		index.childrenByParent[parentSlug] = append(index.childrenByParent[parentSlug], ChildLink{
			Slug:  routeSlug,
			Label: childLabel(parentSlug, routeSlug, route.Title),
		})
	}

	for parentSlug, children := range index.childrenByParent {
		seen := make(map[string]struct{}, len(children))
		unique := children[:0]
		for _, child := range children {
			if _, exists := seen[child.Slug]; exists {
				continue
			}
			seen[child.Slug] = struct{}{}
			unique = append(unique, child)
		}
		sort.Slice(unique, func(i, j int) bool { return unique[i].Slug < unique[j].Slug })
		index.childrenByParent[parentSlug] = unique
	}
	return index
}

// SlugForPage returns the slug routed to pageID.
func (i RouteIndex) SlugForPage(pageID string) (string, bool) {
	value, ok := i.slugByPageID[notion.CompactID(pageID)]
	return value, ok
}

// Children returns the grouped descendants of an expandable parent slug.
func (i RouteIndex) Children(parentSlug string) []ChildLink {
	return i.childrenByParent[parentSlug]
}

func childLabel(parentSlug, childSlug, title string) string {
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		return trimmed
	}
	remainder := strings.TrimPrefix(childSlug, "/")
	if prefix := parentSlug + "/"; strings.HasPrefix(childSlug, prefix) {
		remainder = strings.TrimPrefix(childSlug, prefix)
	}
	parts := make([]string, 0, 4)
	for _, segment := range strings.Split(remainder, "/") {
		if segment == "" {
			continue
		}
		parts = append(parts, strings.Join(strings.FieldsFunc(segment, func(r rune) bool {
			return r == '-' || r == '_'
		}), " "))
	}
	return strings.Join(parts, " / ")
}
