// Package navigation assembles the site menu and sitemap from the route table.
package navigation

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MarcoPoloResearchLab/aexsite/internal/content"
	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

type MenuItem struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// MenuGroup is one top-level section: the first path segment and the routes below it.
type MenuGroup struct {
	Label string     `json:"label"`
	Slug  string     `json:"slug"`
	Items []MenuItem `json:"items,omitempty"`
}

// BuildMenu groups public routes by their first path segment. The root route and
// hidden routes are left out; groups and items come back in slug order.
func BuildMenu(routes []content.Route) []MenuGroup {
	titler := cases.Title(language.English)
	titles := make(map[string]string, len(routes))
	groups := make(map[string]*MenuGroup)

	for _, route := range routes {
		if route.Hidden {
			continue
		}
		segments := slug.Segments(route.Slug)
		if len(segments) == 0 {
			continue
		}
		parent := "/" + segments[0]
		group, exists := groups[parent]
		if !exists {
			group = &MenuGroup{Slug: parent}
			groups[parent] = group
		}
		if len(segments) == 1 {
			titles[parent] = strings.TrimSpace(route.Title)
			continue
		}
		group.Items = append(group.Items, MenuItem{Label: itemLabel(route, segments[1:], titler), Slug: slug.Normalize(route.Slug)})
	}

	menu := make([]MenuGroup, 0, len(groups))
	for parent, group := range groups {
		group.Label = titles[parent]
		if group.Label == "" {
			group.Label = titler.String(humanize(strings.TrimPrefix(parent, "/")))
		}
		sort.Slice(group.Items, func(i, j int) bool { return group.Items[i].Slug < group.Items[j].Slug })
		menu = append(menu, *group)
	}
	sort.Slice(menu, func(i, j int) bool { return menu[i].Slug < menu[j].Slug })
	return menu
}

func itemLabel(route content.Route, rest []string, titler cases.Caser) string {
	if title := strings.TrimSpace(route.Title); title != "" {
		return title
	}
	words := make([]string, 0, len(rest))
	for _, segment := range rest {
		words = append(words, humanize(segment))
	}
	return titler.String(strings.Join(words, " / "))
}

func humanize(segment string) string {
	return strings.Join(strings.FieldsFunc(segment, func(r rune) bool {
		return r == '-' || r == '_'
	}), " ")
}
