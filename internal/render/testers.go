package render

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	testerDefaultText = "Type Your Own"
	testerMinSize     = 10
	testerMaxSize     = 100
)

// Tester describes a font-preview widget.
type Tester struct {
	FontFamily string
	FontWoff2  string
	FontWoff   string
	FontSizePx int
	LineHeight float64
	TextColor  string
}

var DefaultTesters = map[string]Tester{
	"/typecheck-type-tester": {
		FontFamily: "TypeCheck",
		FontWoff2:  "https://cdn.jsdelivr.net/gh/afzalaex/TypeCheck@main/TypeCheck.woff2",
		FontWoff:   "https://cdn.jsdelivr.net/gh/afzalaex/TypeCheck@main/TypeCheck.woff",
		FontSizePx: 60,
		LineHeight: 1.12,
		TextColor:  "#fff",
	},
	"/aextract-type-tester": {
		FontFamily: "Aextract",
		FontWoff2:  "https://cdn.jsdelivr.net/gh/afzalaex/Aextract@main/Aextract-Regular.woff2",
		FontWoff:   "https://cdn.jsdelivr.net/gh/afzalaex/Aextract@main/Aextract-Regular.woff",
		FontSizePx: 60,
		LineHeight: 1.12,
		TextColor:  "#fff",
	},
	"/nounty-type-tester": {
		FontFamily: "Nounty",
		FontWoff2:  "https://cdn.jsdelivr.net/gh/afzalaex/Nounty@main/Nounty.woff2",
		FontWoff:   "https://cdn.jsdelivr.net/gh/afzalaex/Nounty@main/Nounty.woff",
		FontSizePx: 56,
		LineHeight: 1.1,
		TextColor:  "#fff",
	},
	"/aexpective-type-tester": {
		FontFamily: "AEXPECTIVE",
		FontWoff2:  "https://cdn.jsdelivr.net/gh/afzalaex/AEXPECTIVE@main/AEXPECTIVE.woff2",
		FontWoff:   "https://cdn.jsdelivr.net/gh/afzalaex/AEXPECTIVE@main/AEXPECTIVE.woff",
		FontSizePx: 42,
		LineHeight: 1.1,
		TextColor:  "#fff",
	},
	"/aextract36-type-tester": {
		FontFamily: "AEXTRACT36",
		FontWoff2:  "https://cdn.jsdelivr.net/gh/afzalaex/AEXTRACT36@main/AEXTRACT36.woff2",
		FontWoff:   "https://cdn.jsdelivr.net/gh/afzalaex/AEXTRACT36@main/AEXTRACT36.woff",
		FontSizePx: 36,
		LineHeight: 1.1,
		TextColor:  "#fff",
	},
}

var DefaultTesterAliases = map[string]string{
	"typecheck":  "/typecheck-type-tester",
	"aextract":   "/aextract-type-tester",
	"aextract36": "/aextract36-type-tester",
	"nounty":     "/nounty-type-tester",
	"aexpective": "/aexpective-type-tester",
}

// DefaultPageTesters picks the tester for an alias-less marker on a font's own page.
var DefaultPageTesters = map[string]string{
	"/typecheck":  "/typecheck-type-tester",
	"/aextract":   "/aextract-type-tester",
	"/aextract36": "/aextract36-type-tester",
	"/nounty":     "/nounty-type-tester",
	"/aexpective": "/aexpective-type-tester",
}

var (
	bracketMarkerPattern = regexp.MustCompile(`(?i)^(?:\[\[|\{\{)\s*(?:tester|type[-\s]?tester)\s*(?::\s*([a-z0-9/_-]+))?(?:\s*\|\s*([^}\]]+))?\s*(?:\]\]|\}\})$`)
	inlineMarkerPattern  = regexp.MustCompile(`(?i)^(?:tester|type[-\s]?tester)(?:\s*:\s*([a-z0-9/_-]+))?(?:\s*\|\s*(.+))?$`)
	fontFamilyUnsafe     = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	idUnsafe             = regexp.MustCompile(`[^a-zA-Z0-9]`)
	repeatedSlashes      = regexp.MustCompile(`/+`)
)

type testerMarker struct {
	alias   string
	caption string
}

// parseTesterMarker matches the whole trimmed text against the marker grammar.
func parseTesterMarker(text string) (testerMarker, bool) {
	marker := strings.TrimSpace(text)
	if marker == "" {
		return testerMarker{}, false
	}
	match := bracketMarkerPattern.FindStringSubmatch(marker)
	if match == nil {
		match = inlineMarkerPattern.FindStringSubmatch(marker)
	}
	if match == nil {
		return testerMarker{}, false
	}
	return testerMarker{
		alias:   strings.ToLower(strings.TrimSpace(match[1])),
		caption: strings.TrimSpace(match[2]),
	}, true
}

func (r *Renderer) testerForMarker(marker testerMarker, pageSlug string) (Tester, bool) {
	if marker.alias != "" {
		return r.testerForAlias(marker.alias)
	}
	path, ok := r.pageTesters[pageSlug]
	if !ok {
		return Tester{}, false
	}
	tester, ok := r.testers[path]
	return tester, ok
}

func (r *Renderer) testerForAlias(alias string) (Tester, bool) {
	path, ok := r.testerAliases[alias]
	if !ok {
		path = alias
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
	}
	tester, ok := r.testers[path]
	return tester, ok
}

// testerForURL resolves embed URLs that point at a known tester path.
func (r *Renderer) testerForURL(rawURL string) (Tester, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Tester{}, false
	}
	path := repeatedSlashes.ReplaceAllString(parsed.Path, "/")
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	tester, ok := r.testers[path]
	return tester, ok
}

// TesterWidget builds the font-preview markup. The page script wires the size slider.
func TesterWidget(id string, tester Tester, defaultText string) *html.Node {
	if defaultText == "" {
		defaultText = testerDefaultText
	}
	size := tester.FontSizePx
	if size <= 0 {
		size = 60
	}
	lineHeight := tester.LineHeight
	if lineHeight <= 0 {
		lineHeight = 1.12
	}
	color := tester.TextColor
	if color == "" {
		color = "#fff"
	}

	shortID := idUnsafe.ReplaceAllString(id, "")
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	localFamily := fontFamilyUnsafe.ReplaceAllString(tester.FontFamily, "") + "-" + shortID

	sources := fmt.Sprintf("url('%s') format('woff2')", tester.FontWoff2)
	if tester.FontWoff != "" {
		sources += fmt.Sprintf(", url('%s') format('woff')", tester.FontWoff)
	}
	fontFace := fmt.Sprintf("@font-face { font-family: '%s'; src: %s; font-weight: normal; font-style: normal; font-display: swap; }", localFamily, sources)

	sizeID := "aex-size-" + id
	sizeText := strconv.Itoa(size)
	section := element(atom.Section,
		attr("class", "aex-type-tester"),
		attr("data-type-tester", "true"),
	)
	appendChildren(section,
		appendChildren(element(atom.Style), rawText(fontFace)),
		appendChildren(element(atom.Div, attr("class", "aex-type-tester__controls")),
			appendChildren(element(atom.Label, attr("for", sizeID), attr("class", "aex-type-tester__label")), text("Size")),
			element(atom.Input,
				attr("id", sizeID),
				attr("class", "aex-type-tester__range"),
				attr("type", "range"),
				attr("min", strconv.Itoa(testerMinSize)),
				attr("max", strconv.Itoa(testerMaxSize)),
				attr("step", "1"),
				attr("value", sizeText),
			),
			appendChildren(element(atom.Span, attr("class", "aex-type-tester__value")), text(sizeText+"px")),
		),
		appendChildren(element(atom.Div,
			attr("class", "aex-type-tester__input"),
			attr("contenteditable", "true"),
			attr("spellcheck", "false"),
			attr("role", "textbox"),
			attr("aria-label", "Type tester input"),
			attr("data-placeholder", defaultText),
			attr("style", fmt.Sprintf("font-family: '%s', 'Space Mono', monospace; font-size: %dpx; line-height: %s; color: %s; opacity: 0.72",
				localFamily, size, strconv.FormatFloat(lineHeight, 'f', -1, 64), color)),
		), text(defaultText)),
		appendChildren(element(atom.Div, attr("class", "aex-type-tester__footer")), text("TypeTester")),
	)
	return section
}

func testerFigure(id string, tester Tester, caption []*html.Node) *html.Node {
	figure := element(atom.Figure, attr("id", id), attr("class", "notion-embed page-width notion-block aex-inline-embed"))
	appendChildren(figure, TesterWidget(id, tester, ""))
	if len(caption) > 0 {
		appendChildren(figure, appendChildren(element(atom.Figcaption, attr("class", "notion-caption notion-semantic-string")), caption...))
	}
	return figure
}
