package api

import (
	"catalog_server/api/debug"
	"catalog_server/api/health"
	"catalog_server/api/middleware"
	"catalog_server/api/products"
	"catalog_server/config"
	"catalog_server/services"
	"catalog_server/storage"
	"catalog_server/structs"
	"net/http"
	"strings"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	chiware "github.com/go-chi/chi/v5/middleware"
)

// App builds the HTTP handler of the catalog server.
func App(cfg *structs.Config, sm *services.ServiceManager, images storage.ImageStore) chi.Router {
	r := chi.NewRouter()

	// create loggers
	mwLogger := config.NewLogger(false)
	standardLogger := config.NewLogger(true)

	mw := middleware.NewMiddleware(cfg, mwLogger)

	// Core infra
	r.Use(chiware.RequestID)
	r.Use(chiware.RealIP)
	r.Use(chiware.Recoverer)

	// Limits & security
	r.Use(mw.BodyLimit(cfg.Server.MaxBodyBytes))
	r.Use(mw.SecurityHeaders())

	// Observability
	r.Use(mw.RequestLogging())
	r.Use(middleware.MetricsMiddleware)

	r.Use(mw.SetupCORS().Handler)

	var counter middleware.RateCounter
	if sm.CacheService != nil && sm.CacheService.Enabled() {
		counter = sm.CacheService
	}
	r.Use(mw.RateLimit(counter))

	NewRouterManager(
		products.NewProductRoutesManager(standardLogger, sm.ProductService, cfg.Uploads),
		health.NewHealthRoutesManager(sm.HealthService),
		debug.NewDebugRoutesManager(standardLogger, sm.CacheService, cfg.Server.Environment == "production"),
	).RegisterRoutes(r)

	// Uploaded images are served from disk when stored locally
	if local, ok := images.(*storage.LocalStore); ok {
		prefix := local.PublicPrefix()
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(local.Root())))
		r.Get(prefix+"/*", func(w http.ResponseWriter, r *http.Request) {
			// no directory listings
			if strings.HasSuffix(r.URL.Path, "/") {
				gecho.NotFound(w, gecho.Send())
				return
			}
			files.ServeHTTP(w, r)
		})
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		gecho.Success(w,
			gecho.WithMessage("Welcome to the "+cfg.Server.AppName+" API"),
			gecho.Send(),
		)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		gecho.NotFound(w,
			gecho.WithMessage("Route not found"),
			gecho.Send(),
		)
	})

	return r
}
