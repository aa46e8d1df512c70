package debug

import (
	"catalog_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type DebugRoutesManager struct {
	logger       *gecho.Logger
	cacheService *services.CacheService
	production   bool
}

func NewDebugRoutesManager(logger *gecho.Logger, cacheService *services.CacheService, production bool) *DebugRoutesManager {
	return &DebugRoutesManager{
		logger:       logger,
		cacheService: cacheService,
		production:   production,
	}
}

// RegisterRoutes mounts /debug outside production only.
func (drm *DebugRoutesManager) RegisterRoutes(r chi.Router) {
	if drm.production {
		return
	}
	r.Route("/debug", func(r chi.Router) {
		r.Post("/cache/clear", drm.ClearCache)
		r.Get("/cache/stats", drm.CacheStats)
	})
}
