package api

import (
	"github.com/go-chi/chi/v5"
)

// RouteRegistrar is implemented by every *RoutesManager.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

type routerManager struct {
	registrars []RouteRegistrar
}

func NewRouterManager(registrars ...RouteRegistrar) *routerManager {
	return &routerManager{registrars: registrars}
}

// RegisterRoutes mounts every area on r, in the order given.
func (rm *routerManager) RegisterRoutes(r chi.Router) {
	for _, reg := range rm.registrars {
		reg.RegisterRoutes(r)
	}
}
