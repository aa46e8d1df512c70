package products

import (
	"catalog_server/services"
	"catalog_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type ProductRoutesManager struct {
	logger         *gecho.Logger
	productService *services.ProductService
	uploads        *structs.UploadsConfig
}

func NewProductRoutesManager(
	logger *gecho.Logger,
	productService *services.ProductService,
	uploads *structs.UploadsConfig,
) *ProductRoutesManager {
	return &ProductRoutesManager{
		logger:         logger,
		productService: productService,
		uploads:        uploads,
	}
}

func (prm *ProductRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/get-all-product", prm.ListProducts)
		r.Post("/add-product", prm.AddProduct)
		r.Get("/{id}", prm.GetProduct)
		r.Put("/{id}", prm.EditProduct)
		r.Delete("/delete-product/{id}", prm.DeleteProduct)
	})
}
