package content

import (
	"sort"
	"strconv"
	"strings"

	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
)

const untitled = "Untitled"

// PropertyNames names the database properties routes are read from. Each configured
// name is tried before its built-in aliases.
type PropertyNames struct {
	Slug        string
	Published   string
	Description string
}

var (
	slugAliases        = []string{"slug", "Slug"}
	publishedAliases   = []string{"published", "Published", "live", "Live"}
	descriptionAliases = []string{"description", "Description", "Summary", "Excerpt"}
	truthyValues       = map[string]struct{}{"1": {}, "true": {}, "yes": {}, "y": {}, "published": {}, "live": {}}
)

func (p PropertyNames) withDefaults() PropertyNames {
	if strings.TrimSpace(p.Slug) == "" {
		p.Slug = "Slug"
	}
	if strings.TrimSpace(p.Published) == "" {
		p.Published = "Published"
	}
	if strings.TrimSpace(p.Description) == "" {
		p.Description = "Description"
	}
	return p
}

func (p PropertyNames) slugCandidates() []string {
	return append([]string{p.Slug}, slugAliases...)
}

func (p PropertyNames) publishedCandidates() []string {
	return append([]string{p.Published}, publishedAliases...)
}

func (p PropertyNames) descriptionCandidates() []string {
	return append([]string{p.Description}, descriptionAliases...)
}

// findProperty tries each name in order, first exactly and then case-insensitively.
func findProperty(properties map[string]notion.Property, names []string) (notion.Property, bool) {
	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, name := range names {
		if name == "" {
			continue
		}
		if property, ok := properties[name]; ok {
			return property, true
		}
		for _, key := range keys {
			if strings.EqualFold(key, name) {
				return properties[key], true
			}
		}
	}
	return notion.Property{}, false
}

// propertyText renders text-like property values; empty means absent.
func propertyText(property notion.Property) string {
	switch property.Type {
	case "title":
		return strings.TrimSpace(notion.PlainText(property.Title))
	case "rich_text":
		return strings.TrimSpace(notion.PlainText(property.RichText))
	case "url":
		return derefString(property.URL)
	case "email":
		return derefString(property.Email)
	case "phone_number":
		return derefString(property.PhoneNumber)
	case "select":
		if property.Select != nil {
			return property.Select.Name
		}
	case "status":
		if property.Status != nil {
			return property.Status.Name
		}
	case "number":
		if property.Number != nil {
			return strconv.FormatFloat(*property.Number, 'f', -1, 64)
		}
	}
	return ""
}

// propertyFlag reads a checkbox, or a truthy text value for other property types.
// Missing or empty values yield fallback.
func propertyFlag(property notion.Property, found bool, fallback bool) bool {
	if !found {
		return fallback
	}
	if property.Type == "checkbox" {
		return property.Checkbox != nil && *property.Checkbox
	}
	text := propertyText(property)
	if text == "" {
		return fallback
	}
	_, truthy := truthyValues[strings.ToLower(text)]
	return truthy
}

func extractTitle(page notion.Page) string {
	keys := make([]string, 0, len(page.Properties))
	for key := range page.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		property := page.Properties[key]
		if property.Type != "title" {
			continue
		}
		if title := strings.TrimSpace(notion.PlainText(property.Title)); title != "" {
			return title
		}
	}
	return untitled
}

func (s *Service) extractDescription(page notion.Page) string {
	property, found := findProperty(page.Properties, s.properties.descriptionCandidates())
	if !found {
		return ""
	}
	return propertyText(property)
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
