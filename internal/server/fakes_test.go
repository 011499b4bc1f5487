package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarcoPoloResearchLab/aexsite/internal/auth"
	"github.com/MarcoPoloResearchLab/aexsite/internal/content"
	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
	"github.com/MarcoPoloResearchLab/aexsite/internal/render"
	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

const testSecret = "test-revalidate-secret"

type stubContent struct {
	mu          sync.Mutex
	table       *content.Table
	routesErr   error
	pages       map[string]*content.Page
	pageErr     error
	invalidated []string
}

func (s *stubContent) Routes(context.Context) (*content.Table, error) {
	if s.routesErr != nil {
		return nil, s.routesErr
	}
	return s.table, nil
}

func (s *stubContent) PageBySlug(_ context.Context, rawSlug string) (*content.Page, error) {
	if s.pageErr != nil {
		return nil, s.pageErr
	}
	return s.pages[slug.Normalize(rawSlug)], nil
}

func (s *stubContent) Invalidate(rawSlug string) (content.Scope, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = append(s.invalidated, rawSlug)
	if strings.TrimSpace(rawSlug) == "" {
		return content.ScopeAll, ""
	}
	return content.ScopeSlug, slug.Normalize(rawSlug)
}

func (s *stubContent) invalidations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.invalidated...)
}

type stubBlocks struct {
	block notion.Block
	err   error
}

func (s stubBlocks) RetrieveBlock(context.Context, string) (notion.Block, error) {
	return s.block, s.err
}

func richText(value string) []notion.RichText {
	return []notion.RichText{{Type: "text", PlainText: value}}
}

func newStubContent() *stubContent {
	return &stubContent{
		table: content.NewTable([]content.Route{
			{Slug: "/", PageID: "home-page", Title: "Home"},
			{Slug: "/about", PageID: "0123456789abcdef0123456789abcdef", Title: "About"},
			{Slug: "/onchain/zeta", PageID: "zeta-page", Title: "Zeta"},
			{Slug: "/nounty-type-tester", PageID: "tester-page", Hidden: true},
		}),
		pages: map[string]*content.Page{
			"/about": {
				ID:          "01234567-89ab-cdef-0123-456789abcdef",
				Slug:        "/about",
				Title:       "About",
				Description: "Who we are",
				Blocks: []notion.Block{
					{ID: "para-1", Type: notion.BlockTypeParagraph, Paragraph: &notion.TextBlock{RichText: richText("Designing for the internet.")}},
				},
			},
		},
	}
}

type handlerOption func(*Dependencies)

func newTestHandler(t *testing.T, source ContentSource, options ...handlerOption) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	deps := Dependencies{
		Content:    source,
		Renderer:   render.New(render.Options{}),
		Authorizer: auth.NewRevalidateAuthorizer(auth.RevalidateAuthorizerConfig{Secret: testSecret}),
		SiteURL:    "https://aex.design",
		Logger:     zap.NewNop(),
	}
	for _, option := range options {
		option(&deps)
	}
	handler, err := NewHTTPHandler(deps)
	if err != nil {
		t.Fatalf("failed to construct http handler: %v", err)
	}
	return handler
}
