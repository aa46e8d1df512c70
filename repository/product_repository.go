package repository

import (
	"catalog_server/database"
	"catalog_server/lib"
	"catalog_server/structs/tables"
	"context"
	"strings"
)

// SearchResult is one page of products plus the size of the whole match set.
type SearchResult struct {
	Items      []tables.Product
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ProductRepository persists products.
type ProductRepository interface {
	Create(ctx context.Context, product *tables.Product) (*tables.Product, error)
	FindByID(ctx context.Context, id int64) (*tables.Product, error)
	Search(ctx context.Context, query string, page, pageSize int) (*SearchResult, error)
	Update(ctx context.Context, id int64, fields tables.ProductFields) (*tables.Product, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type productRepository struct {
	db *database.DB
}

func NewProductRepository(db *database.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *tables.Product) (*tables.Product, error) {
	if product.Images == nil {
		product.Images = []string{}
	}
	created, err := database.Query[tables.Product](r.db).Insert(ctx, product)
	if err != nil {
		return nil, lib.MapPgError("create product", err)
	}
	return created, nil
}

// FindByID returns nil, nil when no product has the id.
func (r *productRepository) FindByID(ctx context.Context, id int64) (*tables.Product, error) {
	product, err := database.FindByID[tables.Product](r.db, ctx, id)
	if err != nil {
		return nil, lib.MapPgError("find product", err)
	}
	if product != nil && product.Images == nil {
		product.Images = []string{}
	}
	return product, nil
}

// Search matches query case-insensitively as a substring of sku or name, newest first.
// An empty query matches everything.
func (r *productRepository) Search(ctx context.Context, query string, page, pageSize int) (*SearchResult, error) {
	q := database.Query[tables.Product](r.db)

	if term := strings.TrimSpace(query); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		q.WhereGroup("OR").
			WhereOp("sku", "ILIKE", pattern).
			WhereOp("name", "ILIKE", pattern).
			End()
	}
	q.OrderBy("id", database.Desc)

	result, err := database.Paginate(q, ctx, page, pageSize)
	if err != nil {
		return nil, lib.MapPgError("search products", err)
	}

	for i := range result.Data {
		if result.Data[i].Images == nil {
			result.Data[i].Images = []string{}
		}
	}

	return &SearchResult{
		Items:      result.Data,
		Total:      result.Pagination.Total,
		Page:       result.Pagination.Page,
		PageSize:   result.Pagination.PageSize,
		TotalPages: result.Pagination.TotalPages,
	}, nil
}

// Update applies the set fields and returns the stored row, nil when the id does not exist.
func (r *productRepository) Update(ctx context.Context, id int64, fields tables.ProductFields) (*tables.Product, error) {
	if fields.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	updated, err := database.Query[tables.Product](r.db).
		Where("id", id).
		UpdateReturning(ctx, fields.Columns())
	if err != nil {
		return nil, lib.MapPgError("update product", err)
	}
	if len(updated) == 0 {
		return nil, nil
	}

	product := &updated[0]
	if product.Images == nil {
		product.Images = []string{}
	}
	return product, nil
}

// Delete reports whether a row was removed.
func (r *productRepository) Delete(ctx context.Context, id int64) (bool, error) {
	affected, err := database.DeleteByID[tables.Product](r.db, ctx, id)
	if err != nil {
		return false, lib.MapPgError("delete product", err)
	}
	return affected > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
