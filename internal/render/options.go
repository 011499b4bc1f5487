package render

import (
	"strings"

	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

const (
	DefaultImageProxyPath = "/api/notion-image/"

	maxRenderDepth = 64
)

var (
	DefaultHostnames         = []string{"aex.design", "www.aex.design"}
	DefaultExpandableParents = []string{"onchain", "offchain", "digitaldesignassets", "archive"}
)

// Options configures a Renderer. Zero values fall back to the site defaults.
type Options struct {
	// Hostnames are treated as the site's own; links to them become path-only.
	Hostnames []string
	// ImageProxyPath prefixes the block id for backend-hosted images.
	ImageProxyPath string
	// ExpandableParents are first-level slug keys whose descendants are grouped on the home page.
	ExpandableParents []string
	Testers           map[string]Tester
	TesterAliases     map[string]string
	PageTesters       map[string]string
	HiddenSuffix      string
}

// Renderer maps block trees to markup. It holds no mutable state and is safe for concurrent use.
type Renderer struct {
	hostnames         map[string]struct{}
	baseURL           string
	imageProxyPath    string
	expandableParents map[string]struct{}
	testers           map[string]Tester
	testerAliases     map[string]string
	pageTesters       map[string]string
	hiddenSuffix      string
}

func New(opts Options) *Renderer {
	hostnames := opts.Hostnames
	if len(hostnames) == 0 {
		hostnames = DefaultHostnames
	}
	hostSet := make(map[string]struct{}, len(hostnames))
	for _, hostname := range hostnames {
		if trimmed := strings.ToLower(strings.TrimSpace(hostname)); trimmed != "" {
			hostSet[trimmed] = struct{}{}
		}
	}

	proxyPath := strings.TrimSpace(opts.ImageProxyPath)
	if proxyPath == "" {
		proxyPath = DefaultImageProxyPath
	}
	if !strings.HasSuffix(proxyPath, "/") {
		proxyPath += "/"
	}

	parents := opts.ExpandableParents
	if len(parents) == 0 {
		parents = DefaultExpandableParents
	}
	parentSet := make(map[string]struct{}, len(parents))
	for _, parent := range parents {
		if key := slug.Key(parent); key != "" {
			parentSet[key] = struct{}{}
		}
	}

	testers := opts.Testers
	if len(testers) == 0 {
		testers = DefaultTesters
	}
	aliases := opts.TesterAliases
	if len(aliases) == 0 {
		aliases = DefaultTesterAliases
	}
	pageTesters := opts.PageTesters
	if len(pageTesters) == 0 {
		pageTesters = DefaultPageTesters
	}
	hiddenSuffix := strings.TrimSpace(opts.HiddenSuffix)
	if hiddenSuffix == "" {
		hiddenSuffix = slug.DefaultHiddenSuffix
	}

	return &Renderer{
		hostnames:         hostSet,
		baseURL:           "https://" + strings.ToLower(strings.TrimSpace(hostnames[0])),
		imageProxyPath:    proxyPath,
		expandableParents: parentSet,
		testers:           testers,
		testerAliases:     aliases,
		pageTesters:       pageTesters,
		hiddenSuffix:      hiddenSuffix,
	}
}
