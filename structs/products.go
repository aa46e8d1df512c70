package structs

import (
	"catalog_server/structs/tables"
	"io"

	"github.com/shopspring/decimal"
)

// ProductListResponse is the body of GET /products/get-all-product.
type ProductListResponse struct {
	Products    []tables.Product `json:"products"`
	Total       int              `json:"total"`
	CurrentPage int              `json:"currentPage"`
	TotalPages  int              `json:"totalPages"`
}

// ErrorResponse is the error envelope of the product API.
type ErrorResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImageUpload is one uploaded file as handed to the service.
type ImageUpload struct {
	FieldName string
	FileName  string
	Size      int64
	Content   io.ReadSeeker
}

type CreateProductInput struct {
	SKU    string `validate:"required"`
	Name   string `validate:"required"`
	Price  decimal.Decimal
	Images []ImageUpload
}

// UpdateProductInput carries only what the request sent. ExistingImages is nil when the
// existingImages field was absent.
type UpdateProductInput struct {
	SKU            *string `validate:"omitnil,min=1"`
	Name           *string `validate:"omitnil,min=1"`
	Price          *decimal.Decimal
	ExistingImages []string
	HasExisting    bool
	Images         []ImageUpload
}

type ListProductsInput struct {
	Search   string
	Page     int
	PageSize int
}
