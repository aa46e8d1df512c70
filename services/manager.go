package services

import (
	"catalog_server/database"
	"catalog_server/repository"
	"catalog_server/storage"
	"catalog_server/structs"

	"github.com/MonkyMars/gecho"
)

type ServiceManager struct {
	CacheService   *CacheService
	HealthService  *HealthService
	ProductService *ProductService
}

// NewServiceManager wires the services. db may be nil when products is not backed by postgres.
func NewServiceManager(logger *gecho.Logger, cfg *structs.Config, db *database.DB, products repository.ProductRepository, images storage.ImageStore) *ServiceManager {
	cacheService := NewCacheService(logger, cfg.Cache)
	healthService := NewHealthService(logger, db, cacheService)
	productService := NewProductService(logger, products, images, cacheService, cfg.Uploads)

	return &ServiceManager{
		CacheService:   cacheService,
		HealthService:  healthService,
		ProductService: productService,
	}
}

// Close releases the connections held by the services.
func (sm *ServiceManager) Close() error {
	return sm.CacheService.Close()
}
