package products

import (
	"catalog_server/api/health"
	"catalog_server/handling"
	"catalog_server/lib"
	"catalog_server/structs"
	"net/http"

	"github.com/MonkyMars/gecho"
)

// ListProducts handles GET /products/get-all-product?search=&page=&limit=
func (prm *ProductRoutesManager) ListProducts(w http.ResponseWriter, r *http.Request) {
	opts := handling.ParseListOptions(r)

	prm.logger.Debug("Fetching products",
		gecho.Field("search", opts.Search),
		gecho.Field("page", opts.Page),
		gecho.Field("limit", opts.PageSize),
	)

	list, err := prm.productService.ListProducts(r.Context(), opts)
	if err != nil {
		handling.HandleError(err, "list products", prm.logger, w, r)
		return
	}

	handling.WriteJSON(w, r, http.StatusOK, list)
}

// GetProduct handles GET /products/{id}
func (prm *ProductRoutesManager) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseID(r)
	if err != nil {
		handling.HandleError(err, "get product", prm.logger, w, r)
		return
	}

	product, err := prm.productService.GetProduct(r.Context(), id)
	if err != nil {
		handling.HandleError(err, "get product", prm.logger, w, r)
		return
	}

	handling.WriteJSON(w, r, http.StatusOK, product)
}

// AddProduct handles the multipart POST /products/add-product
func (prm *ProductRoutesManager) AddProduct(w http.ResponseWriter, r *http.Request) {
	form, err := handling.ParseProductForm(r, prm.uploads)
	if err != nil {
		handling.HandleError(err, "add product", prm.logger, w, r)
		return
	}
	defer form.Close()

	input, err := form.CreateInput()
	if err != nil {
		handling.HandleError(err, "add product", prm.logger, w, r)
		return
	}

	product, err := prm.productService.AddProduct(r.Context(), input)
	health.ObserveMutation("add", err)
	if err != nil {
		handling.HandleError(err, "add product", prm.logger, w, r)
		return
	}

	health.UploadedImages.Add(float64(len(input.Images)))
	handling.WriteJSON(w, r, http.StatusCreated, product)
}

// EditProduct handles the multipart PUT /products/{id}
func (prm *ProductRoutesManager) EditProduct(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseID(r)
	if err != nil {
		handling.HandleError(err, "edit product", prm.logger, w, r)
		return
	}

	form, err := handling.ParseProductForm(r, prm.uploads)
	if err != nil {
		handling.HandleError(err, "edit product", prm.logger, w, r)
		return
	}
	defer form.Close()

	input, err := form.UpdateInput()
	if err != nil {
		handling.HandleError(err, "edit product", prm.logger, w, r)
		return
	}

	product, err := prm.productService.EditProduct(r.Context(), id, input)
	health.ObserveMutation("edit", err)
	if err != nil {
		handling.HandleError(err, "edit product", prm.logger, w, r)
		return
	}

	health.UploadedImages.Add(float64(len(input.Images)))
	handling.WriteJSON(w, r, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/delete-product/{id}
func (prm *ProductRoutesManager) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseID(r)
	if err != nil {
		handling.HandleError(err, "delete product", prm.logger, w, r)
		return
	}

	deleted, err := prm.productService.RemoveProduct(r.Context(), id)
	health.ObserveMutation("delete", err)
	if err != nil {
		handling.HandleError(err, "delete product", prm.logger, w, r)
		return
	}
	if !deleted {
		handling.HandleError(&lib.NotFoundError{Resource: "Product"}, "delete product", prm.logger, w, r)
		return
	}

	handling.WriteJSON(w, r, http.StatusOK, structs.MessageResponse{Message: "Product deleted"})
}
