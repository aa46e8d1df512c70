package services_test

import (
	"catalog_server/services"
	"catalog_server/structs"
	"catalog_server/structs/tables"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheService_DisabledIsNoop(t *testing.T) {
	cache := services.NewCacheService(testLogger(), &structs.CacheConfig{})
	ctx := context.Background()

	assert.False(t, cache.Enabled())
	require.NoError(t, cache.SetProduct(ctx, &tables.Product{ID: 1}))

	product, err := cache.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, product)

	list, err := cache.GetProductList(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Nil(t, list)

	assert.NoError(t, cache.InvalidateProduct(ctx, 1))
	assert.NoError(t, cache.Ping(ctx))
	assert.NoError(t, cache.Close())
	assert.Equal(t, false, cache.GetConnectionStats()["enabled"])
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "product:id:42", services.ProductKey(42))
	assert.Equal(t, "products:list:page:2:size:10:q:lamp", services.ProductListKey("  Lamp ", 2, 10))
	assert.Equal(t, services.ProductListKey("LAMP", 1, 10), services.ProductListKey("lamp", 1, 10))
}
