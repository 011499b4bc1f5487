package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarcoPoloResearchLab/aexsite/internal/auth"
	"github.com/MarcoPoloResearchLab/aexsite/internal/config"
	"github.com/MarcoPoloResearchLab/aexsite/internal/content"
	"github.com/MarcoPoloResearchLab/aexsite/internal/database"
	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
	"github.com/MarcoPoloResearchLab/aexsite/internal/render"
	"github.com/MarcoPoloResearchLab/aexsite/internal/routemap"
)

// application holds the components shared by the server and the tooling commands.
type application struct {
	config     config.AppConfig
	logger     *zap.Logger
	client     *notion.Client
	store      routemap.Store
	service    *content.Service
	renderer   *render.Renderer
	authorizer *auth.RevalidateAuthorizer
	db         *gorm.DB
}

func newApplication(appConfig config.AppConfig, logger *zap.Logger, registerer prometheus.Registerer) (*application, error) {
	app := &application{config: appConfig, logger: logger}

	store, err := app.openStore()
	if err != nil {
		return nil, err
	}
	app.store = store

	app.client = notion.NewClient(notion.ClientConfig{
		Token:   appConfig.NotionToken,
		BaseURL: appConfig.NotionAPIURL,
		Logger:  logger,
	})

	metrics, err := content.NewMetrics(registerer)
	if err != nil {
		app.Close()
		return nil, err
	}

	service, err := content.NewService(content.ServiceConfig{
		Client:       app.client,
		StaticRoutes: store,
		DatabaseID:   appConfig.DatabaseID,
		HomePageID:   appConfig.HomePageID,
		Properties: content.PropertyNames{
			Slug:        appConfig.SlugProperty,
			Published:   appConfig.PublishedProperty,
			Description: appConfig.DescriptionProperty,
		},
		CacheTTL:       appConfig.CacheTTL,
		Concurrency:    appConfig.FetchConcurrency,
		MaxDepth:       appConfig.FetchMaxDepth,
		HiddenSuffix:   appConfig.HiddenSuffix,
		RefreshTimeout: appConfig.RefreshTimeout,
		Logger:         logger,
		Metrics:        metrics,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.service = service

	app.renderer = render.New(render.Options{
		Hostnames:         appConfig.Hostnames,
		ExpandableParents: appConfig.ExpandableParents,
		HiddenSuffix:      appConfig.HiddenSuffix,
	})
	app.authorizer = auth.NewRevalidateAuthorizer(auth.RevalidateAuthorizerConfig{
		Secret: appConfig.RevalidateSecret,
	})

	return app, nil
}

// openStore returns the configured route map store. The sqlite store keeps its
// connection on the application until Close.
func (a *application) openStore() (routemap.Store, error) {
	if a.config.RouteStore != config.RouteStoreSQLite {
		return routemap.NewFileStore(a.config.RouteMapPath), nil
	}

	db, err := database.OpenSQLite(a.config.DatabasePath, a.logger)
	if err != nil {
		return nil, err
	}
	a.db = db

	store, err := routemap.NewSQLStore(db)
	if err != nil {
		a.Close()
		return nil, err
	}
	return store, nil
}

func (a *application) Close() {
	if a.db == nil {
		return
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	a.db = nil
}
