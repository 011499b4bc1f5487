package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/MarcoPoloResearchLab/aexsite/internal/cache"
	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
	"github.com/MarcoPoloResearchLab/aexsite/internal/routemap"
	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

const (
	DefaultConcurrency    = 6
	DefaultMaxDepth       = 32
	DefaultRefreshTimeout = 30 * time.Second

	routeTableKey = "routes"

	cacheNameRoutes = "routes"
	cacheNamePages  = "pages"
)

var (
	errMissingBackend = errors.New("content backend is required")
	noOpLogger        = zap.NewNop()
)

type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew  = "content.service.new"
	opLoadRoutes  = "content.load_routes"
	opQueryRoutes = "content.query_routes"
	opResolvePage = "content.resolve_page"
	opLoadBlocks  = "content.load_blocks"
	opRefresh     = "content.refresh"

	reasonMissingBackend = "missing_backend"
	reasonStaticFailed   = "static_routes_failed"
	reasonQueryFailed    = "query_failed"
	reasonRoutesFailed   = "routes_failed"
	reasonPageFailed     = "page_fetch_failed"
	reasonBlocksFailed   = "blocks_fetch_failed"
	reasonDepthExceeded  = "depth_exceeded"
	reasonUnexpected     = "unexpected_result"

	fieldSlug       = "slug"
	fieldPageID     = "page_id"
	fieldDatabaseID = "database_id"
	fieldCache      = "cache"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// Backend is the subset of the document API the service reads from.
type Backend interface {
	QueryDatabase(ctx context.Context, databaseID string, cursor string) (notion.PageList, error)
	RetrievePage(ctx context.Context, pageID string) (notion.Page, error)
	ListBlockChildren(ctx context.Context, blockID string, cursor string) (notion.BlockList, error)
}

type ServiceConfig struct {
	Client         Backend
	StaticRoutes   routemap.Store
	DatabaseID     string
	HomePageID     string
	Properties     PropertyNames
	CacheTTL       time.Duration
	Clock          func() time.Time
	Concurrency    int
	MaxDepth       int
	HiddenSuffix   string
	RefreshTimeout time.Duration
	Logger         *zap.Logger
	Metrics        *Metrics
}

// Service resolves routes and pages through timed caches with stale-while-revalidate reads.
type Service struct {
	client         Backend
	static         routemap.Store
	databaseID     string
	homePageID     string
	properties     PropertyNames
	concurrency    int
	maxDepth       int
	hiddenSuffix   string
	refreshTimeout time.Duration
	clock          func() time.Time
	logger         *zap.Logger
	metrics        *Metrics

	routes      *cache.Timed[string, *Table]
	pages       *cache.Timed[string, *Page]
	routeFlight singleflight.Group
	pageFlight  singleflight.Group
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Client == nil {
		return nil, newServiceError(opServiceNew, reasonMissingBackend, errMissingBackend)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	refreshTimeout := cfg.RefreshTimeout
	if refreshTimeout <= 0 {
		refreshTimeout = DefaultRefreshTimeout
	}
	hiddenSuffix := strings.TrimSpace(cfg.HiddenSuffix)
	if hiddenSuffix == "" {
		hiddenSuffix = slug.DefaultHiddenSuffix
	}

	cacheConfig := cache.Config{TTL: cfg.CacheTTL, Clock: clock}
	return &Service{
		client:         cfg.Client,
		static:         cfg.StaticRoutes,
		databaseID:     strings.TrimSpace(cfg.DatabaseID),
		homePageID:     strings.TrimSpace(cfg.HomePageID),
		properties:     cfg.Properties.withDefaults(),
		concurrency:    concurrency,
		maxDepth:       maxDepth,
		hiddenSuffix:   hiddenSuffix,
		refreshTimeout: refreshTimeout,
		clock:          clock,
		logger:         logger,
		metrics:        cfg.Metrics,
		routes:         cache.NewTimed[string, *Table](cacheConfig),
		pages:          cache.NewTimed[string, *Page](cacheConfig),
	}, nil
}

// Scope reports how much of the cache an invalidation cleared.
type Scope string

const (
	ScopeSlug Scope = "slug"
	ScopeAll  Scope = "all"
)

// Invalidate drops the route table and either the page cached under rawSlug or every
// page when rawSlug is blank. It returns the scope and the normalized slug.
func (s *Service) Invalidate(rawSlug string) (Scope, string) {
	s.routes.InvalidateAll()
	s.routeFlight.Forget(routeTableKey)

	if strings.TrimSpace(rawSlug) == "" {
		s.pages.InvalidateAll()
		return ScopeAll, ""
	}
	key := slug.Normalize(rawSlug)
	s.pages.Invalidate(key)
	s.pageFlight.Forget(key)
	return ScopeSlug, key
}

// resolveCached applies the read policy shared by the route table and page caches:
// fresh values are returned as is; stale values are returned while one background
// refresh runs; otherwise the caller waits on the in-flight refresh for key.
func resolveCached[V any](
	ctx context.Context,
	s *Service,
	cacheName string,
	store *cache.Timed[string, V],
	group *singleflight.Group,
	key string,
	refresh func(context.Context, cache.Generation) (V, error),
) (V, error) {
	if value, ok := store.ReadFresh(key); ok {
		s.metrics.observeLookup(cacheName, lookupFresh)
		return value, nil
	}

	run := func() (interface{}, error) {
		// Taken before any backend call so an Invalidate during the refresh wins.
		generation := store.Generation(key)
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout)
		defer cancel()
		started := time.Now()
		defer func() {
			s.metrics.observeRefresh(cacheName, time.Since(started))
		}()
		return refresh(refreshCtx, generation)
	}

	if value, ok := store.ReadStale(key); ok {
		s.metrics.observeLookup(cacheName, lookupStale)
		// The result channel is buffered; nobody needs to read it.
		_ = group.DoChan(key, run)
		return value, nil
	}

	s.metrics.observeLookup(cacheName, lookupMiss)
	var zero V
	select {
	case result := <-group.DoChan(key, run):
		if result.Err != nil {
			return zero, result.Err
		}
		value, ok := result.Val.(V)
		if !ok && result.Val != nil {
			return zero, newServiceError(opRefresh, reasonUnexpected, fmt.Errorf("unexpected %T for %s", result.Val, key))
		}
		return value, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("content service error", attrs...)
}
