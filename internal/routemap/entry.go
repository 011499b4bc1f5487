package routemap

import (
	"context"
	"errors"
	"sort"

	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

// ErrUnsupportedFormat is returned by FileStore for unknown file extensions.
var ErrUnsupportedFormat = errors.New("routemap: unsupported file format")

// Entry is one statically configured route.
type Entry struct {
	Slug        string `json:"slug" yaml:"slug"`
	PageID      string `json:"pageId" yaml:"pageId"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Store persists the static route list.
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

// Clean normalizes slugs, drops duplicates (first wins) and sorts by slug.
func Clean(entries []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries))
	cleaned := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		entry.Slug = slug.Normalize(entry.Slug)
		if _, exists := seen[entry.Slug]; exists {
			continue
		}
		seen[entry.Slug] = struct{}{}
		cleaned = append(cleaned, entry)
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Slug < cleaned[j].Slug
	})
	return cleaned
}
