package services

import (
	"catalog_server/database"
	"catalog_server/lib"
	"catalog_server/repository"
	"catalog_server/storage"
	"catalog_server/structs"
	"catalog_server/structs/tables"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/shopspring/decimal"
)

type ProductService struct {
	logger  *gecho.Logger
	repo    repository.ProductRepository
	images  storage.ImageStore
	cache   *CacheService
	uploads *structs.UploadsConfig
}

func NewProductService(logger *gecho.Logger, repo repository.ProductRepository, images storage.ImageStore, cache *CacheService, uploads *structs.UploadsConfig) *ProductService {
	return &ProductService{
		logger:  logger,
		repo:    repo,
		images:  images,
		cache:   cache,
		uploads: uploads,
	}
}

// AddProduct validates the fields, stores the uploaded files and creates the product.
// Image refs follow upload order.
func (ps *ProductService) AddProduct(ctx context.Context, in structs.CreateProductInput) (*tables.Product, error) {
	if err := lib.ValidateStruct(in); err != nil {
		return nil, err
	}
	if err := validatePrice(&in.Price); err != nil {
		return nil, err
	}
	if ps.uploads.MaxFiles > 0 && len(in.Images) > ps.uploads.MaxFiles {
		return nil, &lib.UploadError{Message: storage.MaxFilesMessage(ps.uploads.MaxFiles)}
	}

	refs, err := ps.storeUploads(ctx, in.Images)
	if err != nil {
		return nil, err
	}

	product, err := ps.repo.Create(ctx, &tables.Product{
		SKU:    in.SKU,
		Name:   in.Name,
		Price:  in.Price,
		Images: refs,
	})
	if err != nil {
		ps.removeImages(ctx, refs)
		ps.logger.Error("Failed to create product", gecho.Field("sku", in.SKU), gecho.Field("error", err))
		return nil, err
	}

	ps.invalidate(ctx, product.ID)
	ps.logger.Info("Product created",
		gecho.Field("id", product.ID),
		gecho.Field("sku", product.SKU),
		gecho.Field("images", len(product.Images)),
	)
	return product, nil
}

// EditProduct applies the sent fields to product id. When the request carries existingImages or new
// files, the images become the retained refs followed by the new uploads; refs that are dropped and
// owned by the image store are removed.
func (ps *ProductService) EditProduct(ctx context.Context, id int64, in structs.UpdateProductInput) (*tables.Product, error) {
	if err := lib.ValidateStruct(in); err != nil {
		return nil, err
	}
	if in.Price != nil {
		if err := validatePrice(in.Price); err != nil {
			return nil, err
		}
	}

	current, err := ps.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &lib.NotFoundError{Resource: "Product"}
	}

	fields := tables.ProductFields{
		SKU:   in.SKU,
		Name:  in.Name,
		Price: in.Price,
	}

	var added, dropped []string
	if in.HasExisting || len(in.Images) > 0 {
		retained := slices.Clone(in.ExistingImages)
		for _, ref := range retained {
			if !slices.Contains(current.Images, ref) {
				return nil, lib.NewValidationError("existingImages", fmt.Sprintf("Image %s does not belong to this product", ref))
			}
		}
		if ps.uploads.MaxFiles > 0 && len(retained)+len(in.Images) > ps.uploads.MaxFiles {
			return nil, &lib.UploadError{Message: storage.MaxFilesMessage(ps.uploads.MaxFiles)}
		}

		added, err = ps.storeUploads(ctx, in.Images)
		if err != nil {
			return nil, err
		}

		merged := append(retained, added...)
		if merged == nil {
			merged = []string{}
		}
		fields.Images = &merged
		dropped = imagesNotIn(current.Images, merged)
	}

	updated, err := ps.repo.Update(ctx, id, fields)
	if err != nil {
		ps.removeImages(ctx, added)
		ps.logger.Error("Failed to update product", gecho.Field("id", id), gecho.Field("error", err))
		return nil, err
	}
	if updated == nil {
		// deleted between the read and the write
		ps.removeImages(ctx, added)
		return nil, &lib.NotFoundError{Resource: "Product"}
	}

	ps.removeImages(ctx, dropped)
	ps.invalidate(ctx, id)
	ps.logger.Info("Product updated",
		gecho.Field("id", id),
		gecho.Field("images_added", len(added)),
		gecho.Field("images_dropped", len(dropped)),
	)
	return updated, nil
}

// RemoveProduct deletes product id and its stored images. It reports false when there was no such product.
func (ps *ProductService) RemoveProduct(ctx context.Context, id int64) (bool, error) {
	current, err := ps.repo.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, nil
	}

	deleted, err := ps.repo.Delete(ctx, id)
	if err != nil {
		ps.logger.Error("Failed to delete product", gecho.Field("id", id), gecho.Field("error", err))
		return false, err
	}
	if !deleted {
		return false, nil
	}

	ps.removeImages(ctx, current.Images)
	ps.invalidate(ctx, id)
	ps.logger.Info("Product deleted", gecho.Field("id", id), gecho.Field("sku", current.SKU))
	return true, nil
}

// GetProduct returns product id, from cache when possible.
func (ps *ProductService) GetProduct(ctx context.Context, id int64) (*tables.Product, error) {
	cached, err := ps.cache.GetProduct(ctx, id)
	if err != nil {
		ps.logger.Warn("Failed to get product from cache", gecho.Field("id", id), gecho.Field("error", err))
	} else if cached != nil {
		return cached, nil
	}

	product, err := ps.repo.FindByID(ctx, id)
	if err != nil {
		ps.logger.Error("Failed to fetch product by ID", gecho.Field("id", id), gecho.Field("error", err))
		return nil, err
	}
	if product == nil {
		return nil, &lib.NotFoundError{Resource: "Product"}
	}

	if err := ps.cache.SetProduct(ctx, product); err != nil {
		ps.logger.Warn("Failed to cache product", gecho.Field("id", id), gecho.Field("error", err))
	}
	return product, nil
}

// ListProducts returns one page of the products matching the search term, newest first.
func (ps *ProductService) ListProducts(ctx context.Context, in structs.ListProductsInput) (*structs.ProductListResponse, error) {
	startTime := time.Now()

	page, pageSize := in.Page, in.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = database.DefaultPageSize
	}
	pageSize = min(pageSize, database.MaxPageSize)

	cached, err := ps.cache.GetProductList(ctx, in.Search, page, pageSize)
	if err != nil {
		ps.logger.Warn("Failed to get product list from cache", gecho.Field("error", err))
	} else if cached != nil {
		return cached, nil
	}

	result, err := ps.repo.Search(ctx, in.Search, page, pageSize)
	if err != nil {
		ps.logger.Error("Failed to fetch products",
			gecho.Field("search", in.Search),
			gecho.Field("page", page),
			gecho.Field("pageSize", pageSize),
			gecho.Field("error", err),
		)
		return nil, err
	}

	list := &structs.ProductListResponse{
		Products:    result.Items,
		Total:       result.Total,
		CurrentPage: result.Page,
		TotalPages:  result.TotalPages,
	}
	if list.Products == nil {
		list.Products = []tables.Product{}
	}

	if err := ps.cache.SetProductList(ctx, in.Search, page, pageSize, list); err != nil {
		ps.logger.Warn("Failed to cache product list", gecho.Field("error", err))
	}

	ps.logger.Debug("Products fetched",
		gecho.Field("count", len(list.Products)),
		gecho.Field("total", list.Total),
		gecho.Field("page", list.CurrentPage),
		gecho.Field("duration", time.Since(startTime)),
	)
	return list, nil
}

// storeUploads checks every file before saving any of them. When a save fails the files saved so far are removed.
func (ps *ProductService) storeUploads(ctx context.Context, uploads []structs.ImageUpload) ([]string, error) {
	for _, upload := range uploads {
		if err := storage.ValidateUpload(upload, ps.uploads); err != nil {
			return nil, err
		}
	}

	refs := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		field := upload.FieldName
		if field == "" {
			field = ps.uploads.FieldName
		}

		ref, err := ps.images.Save(ctx, storage.GenerateFilename(field, upload.FileName), upload.Content)
		if err != nil {
			ps.removeImages(ctx, refs)
			return nil, &lib.StorageError{Op: "save image", Err: err}
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// removeImages deletes the refs owned by the image store. Failures are only logged.
func (ps *ProductService) removeImages(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if !ps.images.Owns(ref) {
			continue
		}
		if err := ps.images.Delete(ctx, ref); err != nil {
			ps.logger.Warn("Failed to delete image", gecho.Field("ref", ref), gecho.Field("error", err))
		}
	}
}

func (ps *ProductService) invalidate(ctx context.Context, id int64) {
	if err := ps.cache.InvalidateProduct(ctx, id); err != nil {
		ps.logger.Warn("Failed to invalidate product caches", gecho.Field("id", id), gecho.Field("error", err))
	}
}

func validatePrice(price *decimal.Decimal) error {
	if !price.IsPositive() {
		return lib.NewValidationError("price", "price must be greater than zero")
	}
	return nil
}

func imagesNotIn(before, after []string) []string {
	var out []string
	for _, ref := range before {
		if !slices.Contains(after, ref) {
			out = append(out, ref)
		}
	}
	return out
}
