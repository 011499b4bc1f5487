package content

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/MarcoPoloResearchLab/aexsite/internal/cache"
	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
	"github.com/MarcoPoloResearchLab/aexsite/internal/render"
	"github.com/MarcoPoloResearchLab/aexsite/internal/routemap"
	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

// Source records where a route came from.
type Source string

const (
	SourceDatabase Source = "database"
	SourceMap      Source = "map"
)

// Route maps a slug to the page that backs it.
type Route struct {
	Slug        string `json:"slug"`
	PageID      string `json:"pageId"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Source      Source `json:"source"`
	Hidden      bool   `json:"hidden,omitempty"`
}

// Table is an immutable snapshot of the route set, sorted by slug with unique slugs.
type Table struct {
	routes   []Route
	bySlug   map[string]int
	byPageID map[string]string
}

func newTable(routes []Route) *Table {
	table := &Table{
		routes:   make([]Route, 0, len(routes)),
		bySlug:   make(map[string]int, len(routes)),
		byPageID: make(map[string]string, len(routes)),
	}
	for _, route := range routes {
		if _, exists := table.bySlug[route.Slug]; exists {
			continue
		}
		table.bySlug[route.Slug] = len(table.routes)
		table.routes = append(table.routes, route)
	}
	sort.SliceStable(table.routes, func(i, j int) bool {
		return table.routes[i].Slug < table.routes[j].Slug
	})
	for index, route := range table.routes {
		table.bySlug[route.Slug] = index
		pageKey := notion.CompactID(route.PageID)
		if _, exists := table.byPageID[pageKey]; !exists && pageKey != "" {
			table.byPageID[pageKey] = route.Slug
		}
	}
	return table
}

// NewTable builds a table from routes; the first route for a slug wins.
func NewTable(routes []Route) *Table {
	return newTable(routes)
}

// Entries returns the public routes in slug order.
func (t *Table) Entries() []Route {
	if t == nil {
		return nil
	}
	public := make([]Route, 0, len(t.routes))
	for _, route := range t.routes {
		if !route.Hidden {
			public = append(public, route)
		}
	}
	return public
}

// All returns every route including hidden ones.
func (t *Table) All() []Route {
	if t == nil {
		return nil
	}
	return append([]Route(nil), t.routes...)
}

// Lookup finds a route by slug. Hidden routes resolve here even though listings skip them.
func (t *Table) Lookup(rawSlug string) (Route, bool) {
	if t == nil {
		return Route{}, false
	}
	index, ok := t.bySlug[slug.Normalize(rawSlug)]
	if !ok {
		return Route{}, false
	}
	return t.routes[index], true
}

// SlugByPageID maps a page id in either dashed or compact form to its slug.
func (t *Table) SlugByPageID(pageID string) (string, bool) {
	if t == nil {
		return "", false
	}
	value, ok := t.byPageID[notion.CompactID(pageID)]
	return value, ok
}

// Slugs lists the public slugs in order.
func (t *Table) Slugs() []string {
	entries := t.Entries()
	slugs := make([]string, 0, len(entries))
	for _, route := range entries {
		slugs = append(slugs, route.Slug)
	}
	return slugs
}

// RouteRefs projects every route, hidden included, for link resolution while rendering.
func (t *Table) RouteRefs() []render.RouteRef {
	routes := t.All()
	refs := make([]render.RouteRef, 0, len(routes))
	for _, route := range routes {
		refs = append(refs, render.RouteRef{Slug: route.Slug, PageID: route.PageID, Title: route.Title})
	}
	return refs
}

// Len counts all routes, hidden included.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.routes)
}

// Routes returns the current route table.
func (s *Service) Routes(ctx context.Context) (*Table, error) {
	return resolveCached(ctx, s, cacheNameRoutes, s.routes, &s.routeFlight, routeTableKey, s.refreshRoutes)
}

func (s *Service) refreshRoutes(ctx context.Context, generation cache.Generation) (*Table, error) {
	if s.databaseID != "" {
		routes, err := s.queryDatabaseRoutes(ctx)
		switch {
		case err != nil:
			s.logError(opQueryRoutes, reasonQueryFailed, err, zap.String(fieldDatabaseID, s.databaseID))
		case len(routes) == 0:
			s.logger.Info("route database returned no published routes; using static route map",
				zap.String(fieldDatabaseID, s.databaseID))
		default:
			table := newTable(routes)
			s.routes.WriteAt(routeTableKey, table, generation)
			return table, nil
		}
	}

	routes, err := s.staticRoutes(ctx)
	if err != nil {
		s.logError(opLoadRoutes, reasonStaticFailed, err)
		if stale, ok := s.routes.ReadStale(routeTableKey); ok {
			return stale, nil
		}
		return nil, newServiceError(opLoadRoutes, reasonStaticFailed, err)
	}
	table := newTable(routes)
	s.routes.WriteAt(routeTableKey, table, generation)
	return table, nil
}

func (s *Service) queryDatabaseRoutes(ctx context.Context) ([]Route, error) {
	var (
		routes []Route
		cursor string
	)
	for {
		list, err := s.client.QueryDatabase(ctx, s.databaseID, cursor)
		s.metrics.observeBackend("query_database", err)
		if err != nil {
			return nil, err
		}
		for _, page := range list.Results {
			if route, ok := s.routeFromPage(page); ok {
				routes = append(routes, route)
			}
		}
		if !list.HasMore || list.NextCursor == "" {
			return routes, nil
		}
		cursor = list.NextCursor
	}
}

func (s *Service) routeFromPage(page notion.Page) (Route, bool) {
	if !page.IsFull() {
		return Route{}, false
	}
	slugProperty, found := findProperty(page.Properties, s.properties.slugCandidates())
	if !found {
		return Route{}, false
	}
	rawSlug := propertyText(slugProperty)
	if rawSlug == "" {
		return Route{}, false
	}
	publishedProperty, publishedFound := findProperty(page.Properties, s.properties.publishedCandidates())
	if !propertyFlag(publishedProperty, publishedFound, true) {
		return Route{}, false
	}

	normalized := slug.Normalize(rawSlug)
	return Route{
		Slug:        normalized,
		PageID:      notion.NormalizeID(page.ID),
		Title:       extractTitle(page),
		Description: s.extractDescription(page),
		Source:      SourceDatabase,
		Hidden:      slug.HasHiddenSuffix(normalized, s.hiddenSuffix),
	}, true
}

func (s *Service) staticRoutes(ctx context.Context) ([]Route, error) {
	var entries []routemap.Entry
	if s.static != nil {
		loaded, err := s.static.Load(ctx)
		if err != nil {
			return nil, err
		}
		entries = loaded
	}

	routes := make([]Route, 0, len(entries)+1)
	hasRoot := false
	for _, entry := range entries {
		pageID := strings.TrimSpace(entry.PageID)
		if pageID == "" {
			continue
		}
		normalized := slug.Normalize(entry.Slug)
		if normalized == slug.Root {
			hasRoot = true
		}
		routes = append(routes, Route{
			Slug:        normalized,
			PageID:      notion.NormalizeID(pageID),
			Title:       strings.TrimSpace(entry.Title),
			Description: strings.TrimSpace(entry.Description),
			Source:      SourceMap,
			Hidden:      slug.HasHiddenSuffix(normalized, s.hiddenSuffix),
		})
	}
	if !hasRoot && s.homePageID != "" {
		routes = append([]Route{{
			Slug:   slug.Root,
			PageID: notion.NormalizeID(s.homePageID),
			Source: SourceMap,
		}}, routes...)
	}
	return routes, nil
}
