package tables

import (
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

type Product struct {
	bun.BaseModel `bun:"table:product,alias:p"`

	ID     int64           `bun:"id,pk,autoincrement" json:"id"`
	SKU    string          `bun:"sku,notnull" json:"sku"`
	Name   string          `bun:"name,notnull" json:"name"`
	Price  decimal.Decimal `bun:"price,type:numeric(12,2),notnull" json:"price"`
	Images []string        `bun:"images,array,notnull,default:'{}'" json:"images"` // refs, order is display order
}

// ProductFields is a partial update; nil fields are left as stored.
type ProductFields struct {
	SKU    *string
	Name   *string
	Price  *decimal.Decimal
	Images *[]string
}

// Columns returns the column -> value map for the fields that are set.
func (f ProductFields) Columns() map[string]any {
	cols := make(map[string]any, 4)
	if f.SKU != nil {
		cols["sku"] = *f.SKU
	}
	if f.Name != nil {
		cols["name"] = *f.Name
	}
	if f.Price != nil {
		cols["price"] = *f.Price
	}
	if f.Images != nil {
		images := *f.Images
		if images == nil {
			images = []string{}
		}
		cols["images"] = pgdialect.Array(images)
	}
	return cols
}

func (f ProductFields) IsEmpty() bool {
	return f.SKU == nil && f.Name == nil && f.Price == nil && f.Images == nil
}
