package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/MarcoPoloResearchLab/aexsite/internal/auth"
	"github.com/MarcoPoloResearchLab/aexsite/internal/content"
	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
	"github.com/MarcoPoloResearchLab/aexsite/internal/render"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "aexsite_request_id"

	defaultHeartbeatInterval = 25 * time.Second
	defaultSiteURL           = "https://aex.design"
)

var (
	errMissingContentSource = errors.New("content source dependency required")
	errMissingRenderer      = errors.New("renderer dependency required")
	errMissingAuthorizer    = errors.New("revalidate authorizer dependency required")
)

// ContentSource resolves routes and pages and drops cached entries on demand.
type ContentSource interface {
	Routes(ctx context.Context) (*content.Table, error)
	PageBySlug(ctx context.Context, rawSlug string) (*content.Page, error)
	Invalidate(rawSlug string) (content.Scope, string)
}

// BlockRetriever looks up single blocks for the image proxy.
type BlockRetriever interface {
	RetrieveBlock(ctx context.Context, blockID string) (notion.Block, error)
}

type Dependencies struct {
	Content    ContentSource
	Blocks     BlockRetriever
	Renderer   *render.Renderer
	Authorizer *auth.RevalidateAuthorizer
	Realtime   *RealtimeDispatcher
	// ImageClient fetches backend-hosted image files; defaults to a client with a 30s timeout.
	ImageClient       *http.Client
	MetricsHandler    http.Handler
	SiteURL           string
	SiteName          string
	AllowedOrigins    []string
	HeartbeatInterval time.Duration
	Clock             func() time.Time
	Logger            *zap.Logger
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Content == nil {
		return nil, errMissingContentSource
	}
	if deps.Renderer == nil {
		return nil, errMissingRenderer
	}
	if deps.Authorizer == nil {
		return nil, errMissingAuthorizer
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	realtime := deps.Realtime
	if realtime == nil {
		realtime = NewRealtimeDispatcher()
	}
	imageClient := deps.ImageClient
	if imageClient == nil {
		imageClient = &http.Client{Timeout: 30 * time.Second}
	}
	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	heartbeat := deps.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeatInterval
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	siteURL := strings.TrimRight(strings.TrimSpace(deps.SiteURL), "/")
	if siteURL == "" {
		siteURL = defaultSiteURL
	}

	handler := &httpHandler{
		content:     deps.Content,
		blocks:      deps.Blocks,
		renderer:    deps.Renderer,
		authorizer:  deps.Authorizer,
		realtime:    realtime,
		imageClient: imageClient,
		siteURL:     siteURL,
		siteName:    strings.TrimSpace(deps.SiteName),
		heartbeat:   heartbeat,
		clock:       clock,
		logger:      logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(accessLogMiddleware(logger))

	router.GET("/healthz", handler.handleHealth)
	router.GET("/metrics", gin.WrapH(metricsHandler))
	router.GET("/sitemap.xml", handler.handleSitemap)
	router.GET("/robots.txt", handler.handleRobots)
	router.GET("/typeplayground", handler.handleTypePlayground)

	api := router.Group("/api")
	api.Use(corsMiddleware(deps.AllowedOrigins))
	api.POST("/notion-revalidate", handler.handleRevalidate)
	api.GET("/notion-revalidate/events", handler.handleRevalidateEvents)
	api.GET("/notion-image/:blockId", handler.handleImage)

	router.NoRoute(handler.handlePage)

	return router, nil
}

type httpHandler struct {
	content     ContentSource
	blocks      BlockRetriever
	renderer    *render.Renderer
	authorizer  *auth.RevalidateAuthorizer
	realtime    *RealtimeDispatcher
	imageClient *http.Client
	siteURL     string
	siteName    string
	heartbeat   time.Duration
	clock       func() time.Time
	logger      *zap.Logger
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", auth.SecretHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
	}
	return cors.New(config)
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			if generated, err := uuid.NewV7(); err == nil {
				requestID = generated.String()
			} else {
				requestID = uuid.NewString()
			}
		}
		c.Set(requestIDContextKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

func accessLogMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		if c.Request.URL.Path == "/healthz" {
			return
		}
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(started)),
			zap.String("request_id", c.GetString(requestIDContextKey)),
		)
	}
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
