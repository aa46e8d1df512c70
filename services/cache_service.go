package services

import (
	"catalog_server/structs"
	"catalog_server/structs/tables"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/redis/go-redis/v9"
)

// CacheService caches products and list pages in Redis. With no address configured every
// operation is a no-op and every read is a miss.
type CacheService struct {
	logger *gecho.Logger
	config *structs.CacheConfig
	client *redis.Client
}

func NewCacheService(logger *gecho.Logger, cfg *structs.CacheConfig) *CacheService {
	cs := &CacheService{
		logger: logger,
		config: cfg,
	}
	if cfg == nil || cfg.Address == "" {
		logger.Info("Product cache disabled, CACHE_ADDRESS is empty")
		return cs
	}

	cs.client = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize: cfg.PoolSize,

		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	return cs
}

func (cs *CacheService) Enabled() bool {
	return cs.client != nil
}

// Close closes the Redis connection pool
func (cs *CacheService) Close() error {
	if cs.client != nil {
		return cs.client.Close()
	}
	return nil
}

// withRetry runs operation up to maxRetries+1 times with jittered exponential backoff.
func (cs *CacheService) withRetry(ctx context.Context, operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == maxRetries || !isRetryableError(err) {
			break
		}

		backoff := min(100*(1<<attempt), 2000)
		sleep := time.Duration(backoff/2+rand.IntN(backoff/2+1)) * time.Millisecond

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}

	return fmt.Errorf("redis operation failed: %w", lastErr)
}

// isRetryableError determines if an error is worth retrying
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := err.Error()
	for _, retryable := range []string{"connection refused", "connection reset", "broken pipe", "i/o timeout"} {
		if strings.Contains(errStr, retryable) {
			return true
		}
	}
	return false
}

// Set stores value under key with TTL
func (cs *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if cs.client == nil {
		return nil
	}
	return cs.withRetry(ctx, func() error {
		return cs.client.Set(ctx, key, value, ttl).Err()
	}, 2)
}

// Get returns the value of key, "" on a miss
func (cs *CacheService) Get(ctx context.Context, key string) (string, error) {
	if cs.client == nil {
		return "", nil
	}

	var result string
	err := cs.withRetry(ctx, func() error {
		val, err := cs.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			result = ""
			return nil
		}
		if err != nil {
			return err
		}
		result = val
		return nil
	}, 2)

	return result, err
}

func (cs *CacheService) Delete(ctx context.Context, keys ...string) error {
	if cs.client == nil || len(keys) == 0 {
		return nil
	}
	return cs.withRetry(ctx, func() error {
		return cs.client.Del(ctx, keys...).Err()
	}, 2)
}

// DeletePattern removes all keys matching a pattern using SCAN
func (cs *CacheService) DeletePattern(ctx context.Context, pattern string) error {
	if cs.client == nil {
		return nil
	}
	return cs.withRetry(ctx, func() error {
		var cursor uint64
		for {
			keys, next, err := cs.client.Scan(ctx, cursor, pattern, 100).Result()
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			if len(keys) > 0 {
				if err := cs.client.Del(ctx, keys...).Err(); err != nil {
					return fmt.Errorf("delete failed: %w", err)
				}
			}
			cursor = next
			if cursor == 0 {
				return nil
			}
		}
	}, 2)
}

// IncrementRateLimit counts one hit for key in a fixed window and returns the count so far.
// It returns 0 when caching is disabled.
func (cs *CacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	if cs.client == nil {
		return 0, nil
	}
	key = "ratelimit:" + key

	var count int64
	err := cs.withRetry(ctx, func() error {
		val, err := cs.client.Incr(ctx, key).Result()
		if err != nil {
			return err
		}
		count = val

		// first hit opens the window
		if val == 1 {
			return cs.client.Expire(ctx, key, window).Err()
		}
		return nil
	}, 2)
	return count, err
}

// ClearAll drops every cached product and list page. Rate limit counters are kept.
func (cs *CacheService) ClearAll(ctx context.Context) error {
	if err := cs.DeletePattern(ctx, "product:*"); err != nil {
		return err
	}
	return cs.DeletePattern(ctx, "products:*")
}

// Ping tests the Redis connection
func (cs *CacheService) Ping(ctx context.Context) error {
	if cs.client == nil {
		return nil
	}
	return cs.client.Ping(ctx).Err()
}

// GetConnectionStats returns Redis connection pool statistics
func (cs *CacheService) GetConnectionStats() map[string]any {
	if cs.client == nil {
		return map[string]any{"enabled": false}
	}
	stats := cs.client.PoolStats()

	return map[string]any{
		"enabled":     true,
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
}

// ============================================================================
// Product Caching Methods
// ============================================================================

func ProductKey(id int64) string {
	return fmt.Sprintf("product:id:%d", id)
}

// ProductListKey identifies one list page. The search term is lowercased since matching is case-insensitive.
func ProductListKey(search string, page, pageSize int) string {
	return fmt.Sprintf("products:list:page:%d:size:%d:q:%s", page, pageSize, strings.ToLower(strings.TrimSpace(search)))
}

func (cs *CacheService) GetProduct(ctx context.Context, id int64) (*tables.Product, error) {
	return getJSON[tables.Product](ctx, cs, ProductKey(id))
}

func (cs *CacheService) SetProduct(ctx context.Context, product *tables.Product) error {
	return setJSON(ctx, cs, ProductKey(product.ID), product, cs.productTTL())
}

func (cs *CacheService) GetProductList(ctx context.Context, search string, page, pageSize int) (*structs.ProductListResponse, error) {
	return getJSON[structs.ProductListResponse](ctx, cs, ProductListKey(search, page, pageSize))
}

func (cs *CacheService) SetProductList(ctx context.Context, search string, page, pageSize int, list *structs.ProductListResponse) error {
	return setJSON(ctx, cs, ProductListKey(search, page, pageSize), list, cs.listTTL())
}

// InvalidateProduct drops the cached product and every cached list page.
// Called on each create, update and delete.
func (cs *CacheService) InvalidateProduct(ctx context.Context, id int64) error {
	if cs.client == nil {
		return nil
	}

	if id > 0 {
		if err := cs.Delete(ctx, ProductKey(id)); err != nil {
			cs.logger.Warn("Failed to delete product cache", gecho.Field("product_id", id), gecho.Field("error", err))
		}
	}

	if err := cs.DeletePattern(ctx, "products:list:*"); err != nil {
		cs.logger.Warn("Failed to delete product list caches", gecho.Field("error", err))
		return err
	}

	cs.logger.Debug("Product caches invalidated", gecho.Field("product_id", id))
	return nil
}

// ============================================================================
// Helper Methods
// ============================================================================

func (cs *CacheService) productTTL() time.Duration {
	if cs.config != nil && cs.config.ProductTTL > 0 {
		return cs.config.ProductTTL
	}
	return 10 * time.Minute
}

func (cs *CacheService) listTTL() time.Duration {
	if cs.config != nil && cs.config.ListTTL > 0 {
		return cs.config.ListTTL
	}
	return time.Minute
}

func setJSON[T any](ctx context.Context, cs *CacheService, key string, value T, ttl time.Duration) error {
	if cs.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return cs.Set(ctx, key, data, ttl)
}

func getJSON[T any](ctx context.Context, cs *CacheService, key string) (*T, error) {
	val, err := cs.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if val == "" {
		return nil, nil // not found in cache
	}

	var result T
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
