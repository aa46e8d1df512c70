package database

import (
	"catalog_server/structs/tables"
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Migrate creates the catalog tables when they do not exist yet.
func Migrate(ctx context.Context, db *DB) error {
	if _, err := db.NewCreateTable().Model((*tables.Product)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create product table: %w", err)
	}
	return nil
}

type seedProduct struct {
	sku   string
	name  string
	price string
	slug  string
}

var seedProducts = []seedProduct{
	{"P1001", "Apple iPhone 15 Pro", "999.99", "iphone15pro"},
	{"P1002", "Samsung Galaxy S23 Ultra", "1199.99", "s23ultra"},
	{"P1003", "Sony PlayStation 5", "499.99", "ps5"},
	{"P1004", "MacBook Pro 16” M2 Max", "2499.99", "macbook16"},
	{"P1005", "Dell XPS 13", "1299.99", "dellxps13"},
	{"P1006", "Google Pixel 8 Pro", "899.99", "pixel8pro"},
	{"P1007", "ASUS ROG Zephyrus G14", "1599.99", "rogzephyrus"},
	{"P1008", "Microsoft Surface Laptop 5", "1399.99", "surfacelaptop5"},
	{"P1009", "Nintendo Switch OLED", "349.99", "switcholed"},
	{"P1010", "OnePlus 11 5G", "699.99", "oneplus11"},
	{"P1011", "Bose QuietComfort 45", "329.99", "boseqc45"},
	{"P1012", "Sony WH-1000XM5", "399.99", "sonywh1000xm5"},
	{"P1013", "iPad Pro 12.9-inch (M2)", "1099.99", "ipadpro"},
	{"P1014", "Razer Blade 15 Advanced", "2299.99", "razerblade"},
	{"P1015", "AirPods Pro 2", "249.99", "airpodspro2"},
	{"P1016", "Logitech MX Master 3S", "99.99", "mxmaster3s"},
	{"P1017", "Apple Watch Ultra", "799.99", "watchultra"},
	{"P1018", "GoPro Hero 11 Black", "499.99", "gopro11"},
	{"P1019", "Sony A7 IV Mirrorless Camera", "2499.99", "sonya7iv"},
	{"P1020", "Samsung Galaxy Tab S9 Ultra", "1199.99", "galaxytabs9"},
}

// SeedProducts returns the sample catalog.
func SeedProducts() []tables.Product {
	out := make([]tables.Product, 0, len(seedProducts))
	for _, p := range seedProducts {
		out = append(out, tables.Product{
			SKU:   p.sku,
			Name:  p.name,
			Price: decimal.RequireFromString(p.price),
			Images: []string{
				"https://example.com/images/" + p.slug + "-1.jpg",
				"https://example.com/images/" + p.slug + "-2.jpg",
			},
		})
	}
	return out
}

// Seed inserts the sample catalog. A non-empty table is left alone unless force is set.
func Seed(ctx context.Context, db *DB, force bool) (int, error) {
	existing, err := Query[tables.Product](db).Count(ctx)
	if err != nil {
		return 0, err
	}
	if existing > 0 && !force {
		return 0, nil
	}

	inserted, err := Query[tables.Product](db).InsertMany(ctx, SeedProducts())
	if err != nil {
		return 0, err
	}
	return len(inserted), nil
}
