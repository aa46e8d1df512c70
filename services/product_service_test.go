package services_test

import (
	"bytes"
	"catalog_server/lib"
	"catalog_server/repository"
	"catalog_server/services"
	"catalog_server/storage"
	"catalog_server/structs"
	"catalog_server/structs/tables"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/MonkyMars/gecho"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type mockProductRepository struct {
	CreateFunc   func(ctx context.Context, product *tables.Product) (*tables.Product, error)
	FindByIDFunc func(ctx context.Context, id int64) (*tables.Product, error)
	SearchFunc   func(ctx context.Context, query string, page, pageSize int) (*repository.SearchResult, error)
	UpdateFunc   func(ctx context.Context, id int64, fields tables.ProductFields) (*tables.Product, error)
	DeleteFunc   func(ctx context.Context, id int64) (bool, error)
}

func (m *mockProductRepository) Create(ctx context.Context, product *tables.Product) (*tables.Product, error) {
	return m.CreateFunc(ctx, product)
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*tables.Product, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockProductRepository) Search(ctx context.Context, query string, page, pageSize int) (*repository.SearchResult, error) {
	return m.SearchFunc(ctx, query, page, pageSize)
}

func (m *mockProductRepository) Update(ctx context.Context, id int64, fields tables.ProductFields) (*tables.Product, error) {
	return m.UpdateFunc(ctx, id, fields)
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return m.DeleteFunc(ctx, id)
}

func testLogger() *gecho.Logger {
	return gecho.NewLogger(gecho.NewConfig(gecho.WithLogLevel(gecho.LogLevelFatal), gecho.WithOutput(io.Discard)))
}

func uploadsConfig() *structs.UploadsConfig {
	return &structs.UploadsConfig{
		Dir:          "uploads",
		PublicPrefix: "/uploads",
		FieldName:    "images",
		MaxFileBytes: 5 << 20,
		MaxFiles:     5,
		AllowedTypes: []string{"jpeg", "jpg", "png", "gif"},
	}
}

func newLocalStore(t *testing.T) *storage.LocalStore {
	t.Helper()
	images, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)
	return images
}

func newServiceWithStore(t *testing.T, repo repository.ProductRepository, images *storage.LocalStore) *services.ProductService {
	t.Helper()
	logger := testLogger()
	cache := services.NewCacheService(logger, &structs.CacheConfig{})
	return services.NewProductService(logger, repo, images, cache, uploadsConfig())
}

func newService(t *testing.T, repo repository.ProductRepository) (*services.ProductService, *storage.LocalStore) {
	t.Helper()
	images := newLocalStore(t)
	return newServiceWithStore(t, repo, images), images
}

func pngUpload(name string) structs.ImageUpload {
	return structs.ImageUpload{
		FieldName: "images",
		FileName:  name,
		Size:      int64(len(pngBytes)),
		Content:   bytes.NewReader(pngBytes),
	}
}

func storedFiles(t *testing.T, images *storage.LocalStore) []string {
	t.Helper()
	entries, err := os.ReadDir(images.Root())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func seedFile(t *testing.T, images *storage.LocalStore, name string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(images.Root(), name), pngBytes, 0o644))
	return "/uploads/" + name
}

func strPtr(s string) *string { return &s }

func TestAddProduct(t *testing.T) {
	// Setup
	var created *tables.Product
	repo := &mockProductRepository{
		CreateFunc: func(ctx context.Context, product *tables.Product) (*tables.Product, error) {
			product.ID = 7
			created = product
			return product, nil
		},
	}
	svc, images := newService(t, repo)

	// Execute
	product, err := svc.AddProduct(context.Background(), structs.CreateProductInput{
		SKU:    "P1",
		Name:   "Lamp",
		Price:  decimal.RequireFromString("12.50"),
		Images: []structs.ImageUpload{pngUpload("a.png"), pngUpload("b.png")},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(7), product.ID)
	require.Len(t, created.Images, 2)
	for _, ref := range created.Images {
		assert.Regexp(t, `^/uploads/images-\d+-\d+\.png$`, ref)
	}
	assert.Len(t, storedFiles(t, images), 2)
}

func TestAddProduct_Validation(t *testing.T) {
	creates := 0
	repo := &mockProductRepository{
		CreateFunc: func(ctx context.Context, product *tables.Product) (*tables.Product, error) {
			creates++
			return nil, nil
		},
	}
	svc, images := newService(t, repo)
	ctx := context.Background()

	tests := []struct {
		name  string
		input structs.CreateProductInput
	}{
		{"missing sku", structs.CreateProductInput{Name: "Lamp", Price: decimal.NewFromInt(1)}},
		{"missing name", structs.CreateProductInput{SKU: "P1", Price: decimal.NewFromInt(1)}},
		{"zero price", structs.CreateProductInput{SKU: "P1", Name: "Lamp"}},
		{"negative price", structs.CreateProductInput{SKU: "P1", Name: "Lamp", Price: decimal.NewFromInt(-3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddProduct(ctx, tt.input)
			var ve *lib.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}

	t.Run("too many images", func(t *testing.T) {
		uploads := make([]structs.ImageUpload, 6)
		for i := range uploads {
			uploads[i] = pngUpload("a.png")
		}
		_, err := svc.AddProduct(ctx, structs.CreateProductInput{SKU: "P1", Name: "Lamp", Price: decimal.NewFromInt(1), Images: uploads})
		var ue *lib.UploadError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, "You can upload a maximum of 5 images.", ue.Message)
	})

	t.Run("bad file type stores nothing", func(t *testing.T) {
		bad := structs.ImageUpload{FileName: "notes.txt", Size: 4, Content: bytes.NewReader([]byte("text"))}
		_, err := svc.AddProduct(ctx, structs.CreateProductInput{
			SKU: "P1", Name: "Lamp", Price: decimal.NewFromInt(1),
			Images: []structs.ImageUpload{pngUpload("a.png"), bad},
		})
		var ue *lib.UploadError
		assert.ErrorAs(t, err, &ue)
		assert.Empty(t, storedFiles(t, images))
	})

	assert.Zero(t, creates, "no rejected input may reach the repository")
}

func TestAddProduct_CreateFailureRemovesFiles(t *testing.T) {
	repo := &mockProductRepository{
		CreateFunc: func(ctx context.Context, product *tables.Product) (*tables.Product, error) {
			return nil, &lib.StorageError{Op: "create product", Err: errors.New("connection refused")}
		},
	}
	svc, images := newService(t, repo)

	_, err := svc.AddProduct(context.Background(), structs.CreateProductInput{
		SKU: "P1", Name: "Lamp", Price: decimal.NewFromInt(1),
		Images: []structs.ImageUpload{pngUpload("a.png")},
	})

	var se *lib.StorageError
	assert.ErrorAs(t, err, &se)
	assert.Empty(t, storedFiles(t, images))
}

func TestEditProduct_MergesRetainedAndNewImages(t *testing.T) {
	// Setup
	images := newLocalStore(t)
	a := seedFile(t, images, "a.png")
	b := seedFile(t, images, "b.png")
	c := seedFile(t, images, "c.png")
	current := &tables.Product{ID: 1, SKU: "P1", Name: "Lamp", Price: decimal.NewFromInt(5), Images: []string{a, b, c}}

	var written tables.ProductFields
	repo := &mockProductRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*tables.Product, error) {
			return current, nil
		},
		UpdateFunc: func(ctx context.Context, id int64, fields tables.ProductFields) (*tables.Product, error) {
			written = fields
			out := *current
			out.Images = *fields.Images
			return &out, nil
		},
	}
	svc := newServiceWithStore(t, repo, images)

	// Execute
	updated, err := svc.EditProduct(context.Background(), 1, structs.UpdateProductInput{
		ExistingImages: []string{a, c},
		HasExisting:    true,
		Images:         []structs.ImageUpload{pngUpload("d.png")},
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, updated.Images, 3)
	assert.Equal(t, a, updated.Images[0])
	assert.Equal(t, c, updated.Images[1])
	assert.Regexp(t, `^/uploads/images-\d+-\d+\.png$`, updated.Images[2])
	assert.Nil(t, written.SKU)
	assert.Nil(t, written.Name)
	assert.Nil(t, written.Price)

	// b was dropped and removed from disk
	files := storedFiles(t, images)
	assert.Contains(t, files, "a.png")
	assert.Contains(t, files, "c.png")
	assert.NotContains(t, files, "b.png")
	assert.Len(t, files, 3)
}

func TestEditProduct_FieldsOnlyKeepsImages(t *testing.T) {
	current := &tables.Product{ID: 1, SKU: "P1", Name: "Lamp", Price: decimal.NewFromInt(5), Images: []string{"https://example.com/a.jpg"}}
	repo := &mockProductRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*tables.Product, error) {
			return current, nil
		},
		UpdateFunc: func(ctx context.Context, id int64, fields tables.ProductFields) (*tables.Product, error) {
			assert.Nil(t, fields.Images)
			require.NotNil(t, fields.Name)
			out := *current
			out.Name = *fields.Name
			return &out, nil
		},
	}
	svc, _ := newService(t, repo)

	updated, err := svc.EditProduct(context.Background(), 1, structs.UpdateProductInput{Name: strPtr("Desk Lamp")})

	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", updated.Name)
	assert.Equal(t, "P1", updated.SKU)
	assert.Equal(t, []string{"https://example.com/a.jpg"}, updated.Images)
}

func TestEditProduct_ClearImages(t *testing.T) {
	current := &tables.Product{ID: 1, SKU: "P1", Name: "Lamp", Price: decimal.NewFromInt(5), Images: []string{"https://example.com/a.jpg"}}
	repo := &mockProductRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*tables.Product, error) {
			return current, nil
		},
		UpdateFunc: func(ctx context.Context, id int64, fields tables.ProductFields) (*tables.Product, error) {
			require.NotNil(t, fields.Images)
			assert.NotNil(t, *fields.Images)
			assert.Empty(t, *fields.Images)
			out := *current
			out.Images = *fields.Images
			return &out, nil
		},
	}
	svc, _ := newService(t, repo)

	updated, err := svc.EditProduct(context.Background(), 1, structs.UpdateProductInput{HasExisting: true})

	require.NoError(t, err)
	assert.Empty(t, updated.Images)
}

func TestEditProduct_Errors(t *testing.T) {
	updates := 0
	current := &tables.Product{ID: 1, SKU: "P1", Name: "Lamp", Price: decimal.NewFromInt(5), Images: []string{"/uploads/a.png"}}
	repo := &mockProductRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*tables.Product, error) {
			if id == 1 {
				return current, nil
			}
			return nil, nil
		},
		UpdateFunc: func(ctx context.Context, id int64, fields tables.ProductFields) (*tables.Product, error) {
			updates++
			return nil, nil
		},
	}
	svc, _ := newService(t, repo)
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		_, err := svc.EditProduct(ctx, 99, structs.UpdateProductInput{Name: strPtr("X")})
		var nf *lib.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "Product not found", err.Error())
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := svc.EditProduct(ctx, 1, structs.UpdateProductInput{Name: strPtr("")})
		var ve *lib.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "name is required", ve.Error())
	})

	t.Run("empty sku", func(t *testing.T) {
		_, err := svc.EditProduct(ctx, 1, structs.UpdateProductInput{SKU: strPtr(""), Name: strPtr("Lamp")})
		var ve *lib.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "sku is required", ve.Error())
	})

	t.Run("non-positive price", func(t *testing.T) {
		zero := decimal.Zero
		_, err := svc.EditProduct(ctx, 1, structs.UpdateProductInput{Price: &zero})
		var ve *lib.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("foreign retained image", func(t *testing.T) {
		_, err := svc.EditProduct(ctx, 1, structs.UpdateProductInput{
			ExistingImages: []string{"/uploads/someone-else.png"},
			HasExisting:    true,
		})
		var ve *lib.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("too many images", func(t *testing.T) {
		uploads := []structs.ImageUpload{pngUpload("1.png"), pngUpload("2.png"), pngUpload("3.png"), pngUpload("4.png"), pngUpload("5.png")}
		_, err := svc.EditProduct(ctx, 1, structs.UpdateProductInput{
			ExistingImages: []string{"/uploads/a.png"},
			HasExisting:    true,
			Images:         uploads,
		})
		var ue *lib.UploadError
		assert.ErrorAs(t, err, &ue)
	})

	assert.Zero(t, updates, "no rejected edit may reach the repository")
}

func TestRemoveProduct(t *testing.T) {
	images := newLocalStore(t)
	ref := seedFile(t, images, "a.png")
	current := &tables.Product{ID: 1, SKU: "P1", Images: []string{ref, "https://example.com/b.jpg"}}

	deletedIDs := []int64{}
	repo := &mockProductRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*tables.Product, error) {
			if id == 1 && len(deletedIDs) == 0 {
				return current, nil
			}
			return nil, nil
		},
		DeleteFunc: func(ctx context.Context, id int64) (bool, error) {
			deletedIDs = append(deletedIDs, id)
			return true, nil
		},
	}
	svc := newServiceWithStore(t, repo, images)
	ctx := context.Background()

	deleted, err := svc.RemoveProduct(ctx, 1)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, storedFiles(t, images))

	// a second delete finds nothing
	deleted, err = svc.RemoveProduct(ctx, 1)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, []int64{1}, deletedIDs)
}

func TestGetProduct(t *testing.T) {
	repo := &mockProductRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*tables.Product, error) {
			if id == 3 {
				return &tables.Product{ID: 3, SKU: "P3", Images: []string{}}, nil
			}
			return nil, nil
		},
	}
	svc, _ := newService(t, repo)

	product, err := svc.GetProduct(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "P3", product.SKU)

	_, err = svc.GetProduct(context.Background(), 4)
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestListProducts_Defaults(t *testing.T) {
	// Setup
	var gotQuery string
	var gotPage, gotSize int
	repo := &mockProductRepository{
		SearchFunc: func(ctx context.Context, query string, page, pageSize int) (*repository.SearchResult, error) {
			gotQuery, gotPage, gotSize = query, page, pageSize
			return &repository.SearchResult{Total: 0, Page: page, PageSize: pageSize}, nil
		},
	}
	svc, _ := newService(t, repo)

	// Execute
	list, err := svc.ListProducts(context.Background(), structs.ListProductsInput{Search: "lamp", Page: 0, PageSize: -1})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "lamp", gotQuery)
	assert.Equal(t, 1, gotPage)
	assert.Equal(t, 10, gotSize)
	assert.NotNil(t, list.Products)
	assert.Empty(t, list.Products)
	assert.Equal(t, 0, list.TotalPages)
	assert.Equal(t, 1, list.CurrentPage)
}

func TestListProducts_PropagatesStorageErrors(t *testing.T) {
	repo := &mockProductRepository{
		SearchFunc: func(ctx context.Context, query string, page, pageSize int) (*repository.SearchResult, error) {
			return nil, &lib.StorageError{Op: "search products", Err: errors.New("boom")}
		},
	}
	svc, _ := newService(t, repo)

	_, err := svc.ListProducts(context.Background(), structs.ListProductsInput{})
	assert.Equal(t, 500, lib.StatusCode(err))
}
