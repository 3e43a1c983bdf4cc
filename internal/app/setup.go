// Package app contains the application setup for the shop service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mockshop/mockshop/internal/config"
	"github.com/mockshop/mockshop/internal/ratelimit"
	"github.com/mockshop/mockshop/internal/service"
	"github.com/mockshop/mockshop/internal/store"
	"github.com/mockshop/mockshop/internal/transport/rest"
	"github.com/mockshop/mockshop/pkg/server"
	"github.com/mockshop/mockshop/pkg/web"
)

type Dependencies struct {
	CatalogService service.CatalogService
	CartService    service.CartService
	Logger         *slog.Logger
}

// SetupDependencies builds the file store and the services on top of it.
func SetupDependencies(cfg *config.Config, logger *slog.Logger) *Dependencies {
	fileStore := store.NewFileStore(store.Options{
		ProductsFile: cfg.Storage.ProductsFile,
		UsersFile:    cfg.Storage.UsersFile,
		CacheTTL:     cfg.Storage.CacheTTL,
		MaxComments:  cfg.Storage.MaxComments,
		MaxCartItems: cfg.Storage.MaxCartItems,
		Pretty:       cfg.Development(),
	}, logger)

	return &Dependencies{
		CatalogService: service.NewCatalog(fileStore),
		CartService:    service.NewCart(fileStore),
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the router, middleware and routes.
// Used by tests to exercise the full HTTP surface without a listener.
func SetupHttpHandler(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	mux.Use(web.MaxBytes(cfg.HTTPServer.MaxBodyBytes))
	if cfg.RateLimit.Enabled {
		mux.Use(ratelimit.Middleware(ratelimit.Options{
			Requests:  cfg.RateLimit.Requests,
			Window:    cfg.RateLimit.Window,
			RedisAddr: cfg.RateLimit.RedisAddr,
		}, deps.Logger))
	}
	wireRoutes(mux, deps, cfg)
	return mux
}

// wireRoutes registers every resource handler at the root and again under
// /api. Both prefixes are aliases of one handler set.
func wireRoutes(mux *chi.Mux, deps *Dependencies, cfg *config.Config) {
	verbose := cfg.Development()
	catalogHandler := rest.NewCatalogHandler(deps.CatalogService, deps.Logger, verbose)
	cartHandler := rest.NewCartHandler(deps.CartService, deps.Logger, verbose)
	healthHandler := rest.NewHealthHandler(deps.Logger)

	catalogHandler.RegisterRoutes(mux)
	cartHandler.RegisterRoutes(mux)
	healthHandler.RegisterRoutes(mux)
	mux.Route("/api", func(r chi.Router) {
		catalogHandler.RegisterRoutes(r)
		cartHandler.RegisterRoutes(r)
		healthHandler.RegisterRoutes(r)
	})

	// Product images are served straight from disk with a long client cache.
	imageServer := http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.Static.Dir)))
	mux.With(web.CacheControl(cfg.Static.MaxAge)).Handle("/images/*", imageServer)
}

// SetupHttpServer creates and configures the HTTP server for the service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps, cfg)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
