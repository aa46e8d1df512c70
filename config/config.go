package config

import (
	"catalog_server/structs"
	"strings"
	"sync"
	"time"
)

var (
	configInstance *structs.Config
	configOnce     sync.Once
)

func GetConfig() *structs.Config {
	configOnce.Do(func() {
		configInstance = Load()
	})
	return configInstance
}

// Load reads the configuration from the environment without touching the singleton.
func Load() *structs.Config {
	return &structs.Config{
		Server: &structs.ServerConfig{
			AppName:         getEnvAsString("APP_NAME", "Catalog_no_env"),
			Environment:     getEnvAsString("APP_ENV", "development"),
			Port:            getEnvAsString("APP_PORT", ":5000"),
			LogLevel:        getEnvAsString("LOG_LEVEL", ""),
			ReadTimeout:     getEnvAsTimeDuration("SERVER_READ_TIME_OUT", 15*time.Second),
			WriteTimeout:    getEnvAsTimeDuration("SERVER_WRITE_TIME_OUT", 30*time.Second),
			IdleTimeout:     getEnvAsTimeDuration("SERVER_IDLE_TIME_OUT", 60*time.Second),
			ShutdownTimeout: getEnvAsTimeDuration("SERVER_SHUTDOWN_TIME_OUT", 10*time.Second),
			MaxHeaderBytes:  getEnvAsInt("SERVER_MAX_HEADER_BYTES", 1<<20), // 1 MB
			MaxBodyBytes:    getEnvAsInt64("SERVER_MAX_BODY_BYTES", 30<<20),
		},
		Cors: &structs.CorsConfig{
			AllowedOrigins:   getEnvAsSlice("CORS_ALLOW_ORIGINS", []string{"http://localhost:5173"}),
			AllowedMethods:   getEnvAsSlice("CORS_ALLOW_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getEnvAsSlice("CORS_ALLOW_HEADERS", []string{"Origin", "Content-Type", "Accept", "X-Request-Id"}),
			ExposedHeaders:   getEnvAsSlice("CORS_EXPOSED_HEADERS", []string{"Content-Length", "X-Request-Id"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 300),
		},
		RateLimit: &structs.RateLimitConfig{
			Enabled:     getEnvAsBool("RATE_LIMIT_ENABLED", false),
			ReadLimit:   getEnvAsInt("RATE_LIMIT_READ_LIMIT", 300),
			ReadWindow:  getEnvAsTimeDuration("RATE_LIMIT_READ_WINDOW", time.Minute),
			WriteLimit:  getEnvAsInt("RATE_LIMIT_WRITE_LIMIT", 30),
			WriteWindow: getEnvAsTimeDuration("RATE_LIMIT_WRITE_WINDOW", time.Minute),
		},
		Database: &structs.DatabaseConfig{
			Driver:       strings.ToLower(getEnvAsString("DB_DRIVER", "pg")),
			Host:         getEnvAsString("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnvAsString("DB_USER", "postgres"),
			Password:     getEnvAsString("DB_PASSWORD", "password"),
			Name:         getEnvAsString("DB_NAME", "catalog_db"),
			SSLMode:      getEnvAsString("DB_SSL_MODE", "disable"),
			MaxConns:     getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:     getEnvAsInt("DB_MIN_CONNS", 2),
			MaxLifetime:  getEnvAsTimeDuration("DB_MAX_LIFETIME", 30*time.Minute),
			MaxIdleTime:  getEnvAsTimeDuration("DB_MAX_IDLE_TIME", 5*time.Minute),
			ReadTimeout:  getEnvAsTimeDuration("DB_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getEnvAsTimeDuration("DB_WRITE_TIMEOUT", 5*time.Second),
			QueryTimeout: getEnvAsTimeDuration("DB_QUERY_TIMEOUT", 5*time.Second),
		},
		Cache: &structs.CacheConfig{
			Address:      getEnvAsString("CACHE_ADDRESS", ""),
			Username:     getEnvAsString("CACHE_USERNAME", ""),
			Password:     getEnvAsString("CACHE_PASSWORD", ""),
			DB:           getEnvAsInt("CACHE_DB", 0),
			PoolSize:     getEnvAsInt("CACHE_POOL_SIZE", 10),
			DialTimeout:  getEnvAsTimeDuration("CACHE_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsTimeDuration("CACHE_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsTimeDuration("CACHE_WRITE_TIMEOUT", 3*time.Second),
			ProductTTL:   getEnvAsTimeDuration("CACHE_PRODUCT_TTL", 10*time.Minute),
			ListTTL:      getEnvAsTimeDuration("CACHE_LIST_TTL", 1*time.Minute),
		},
		Uploads: &structs.UploadsConfig{
			Dir:          getEnvAsString("UPLOADS_DIR", "uploads"),
			PublicPrefix: strings.TrimRight(getEnvAsString("UPLOADS_PUBLIC_PREFIX", "/uploads"), "/"),
			FieldName:    getEnvAsString("UPLOADS_FIELD_NAME", "images"),
			MaxFileBytes: getEnvAsInt64("UPLOADS_MAX_FILE_BYTES", 5<<20),
			MaxFiles:     getEnvAsInt("UPLOADS_MAX_FILES", 5),
			AllowedTypes: getEnvAsSlice("UPLOADS_ALLOWED_TYPES", []string{"jpeg", "jpg", "png", "gif"}),
		},
		Storage: &structs.StorageConfig{
			Driver:     strings.ToLower(getEnvAsString("STORAGE_DRIVER", "local")),
			S3Bucket:   getEnvAsString("S3_BUCKET", ""),
			S3Region:   getEnvAsString("S3_REGION", "us-east-1"),
			S3Key:      getEnvAsString("S3_KEY", ""),
			S3Secret:   getEnvAsString("S3_SECRET", ""),
			S3Endpoint: getEnvAsString("S3_ENDPOINT", ""),
			S3URL:      getEnvAsString("S3_URL", ""),
			S3Prefix:   getEnvAsString("S3_PREFIX", "uploads"),
		},
		Client: &structs.ClientConfig{
			BaseURL:        getEnvAsString("CATALOG_API_URL", "http://localhost:5000"),
			AssetsURL:      getEnvAsString("CATALOG_ASSETS_URL", "http://localhost:5000"),
			Timeout:        getEnvAsTimeDuration("CATALOG_API_TIMEOUT", 15*time.Second),
			SearchDebounce: getEnvAsTimeDuration("CATALOG_SEARCH_DEBOUNCE", 500*time.Millisecond),
			PageSize:       getEnvAsInt("CATALOG_PAGE_SIZE", 10),
		},
	}
}

func GetLogLevel() string {
	if level := GetConfig().Server.LogLevel; level != "" {
		return level
	}
	if GetConfig().Server.Environment == "production" {
		return "info"
	}
	return "debug"
}

func IsProduction() bool {
	return GetConfig().Server.Environment == "production"
}
