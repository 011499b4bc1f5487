// Package slug maps path-like input onto the canonical page slug form.
package slug

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// Root is the canonical slug of the home page.
	Root = "/"
	// DefaultHiddenSuffix marks auxiliary routes that stay resolvable but are never listed.
	DefaultHiddenSuffix = "-type-tester"
)

var (
	schemeHostPattern   = regexp.MustCompile(`(?i)^https?://[^/]+`)
	repeatedSlashes     = regexp.MustCompile(`/+`)
	titleSeparatorRunes = regexp.MustCompile(`[^a-z0-9]+`)
	nonKeyRunes         = regexp.MustCompile(`[^a-z0-9]`)
)

// Normalize converts absolute URLs, bare path segments and trailing-slash variants into
// the canonical slug: one leading slash, no query or fragment, no trailing slash except root.
func Normalize(raw string) string {
	path := schemeHostPattern.ReplaceAllString(strings.TrimSpace(raw), "")
	if index := strings.IndexAny(path, "?#"); index >= 0 {
		path = path[:index]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	path = repeatedSlashes.ReplaceAllString(path, "/")
	path = strings.TrimRightFunc(path, func(r rune) bool {
		return r == '/' || unicode.IsSpace(r)
	})
	if path == "" {
		return Root
	}
	return path
}

// FromSegments joins catch-all route segments into a slug.
func FromSegments(segments []string) string {
	if len(segments) == 0 {
		return Root
	}
	return Normalize(strings.Join(segments, "/"))
}

// IsHidden reports whether the slug carries the default hidden suffix.
func IsHidden(value string) bool {
	return HasHiddenSuffix(value, DefaultHiddenSuffix)
}

// HasHiddenSuffix reports whether the slug ends with suffix, ignoring case.
func HasHiddenSuffix(value, suffix string) bool {
	if suffix == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(value), strings.ToLower(suffix))
}

// FromTitle derives a slug from a page title.
func FromTitle(title string) string {
	words := titleSeparatorRunes.ReplaceAllString(strings.ToLower(title), "-")
	words = strings.Trim(words, "-")
	if words == "" {
		return Root
	}
	return Normalize("/" + words)
}

// Key reduces a slug to its lowercase alphanumeric characters.
func Key(value string) string {
	return nonKeyRunes.ReplaceAllString(strings.ToLower(value), "")
}

// Segments splits a slug into its non-empty path segments.
func Segments(value string) []string {
	parts := strings.Split(strings.TrimPrefix(Normalize(value), "/"), "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// PageClass returns the CSS hook used by the page shell for a slug.
func PageClass(value string) string {
	normalized := Normalize(value)
	if normalized == Root {
		return "index"
	}
	return strings.ReplaceAll(strings.TrimPrefix(normalized, "/"), "/", "-")
}
