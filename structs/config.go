package structs

import "time"

type Config struct {
	Server    *ServerConfig
	Cors      *CorsConfig
	RateLimit *RateLimitConfig
	Database  *DatabaseConfig
	Cache     *CacheConfig
	Uploads   *UploadsConfig
	Storage   *StorageConfig
	Client    *ClientConfig
}

type ServerConfig struct {
	AppName         string        // Catalog
	Environment     string        // development, production
	Port            string        // :5000
	LogLevel        string        // overrides the environment default when set
	ReadTimeout     time.Duration // in seconds
	WriteTimeout    time.Duration // in seconds
	IdleTimeout     time.Duration // in seconds
	ShutdownTimeout time.Duration // in seconds
	MaxHeaderBytes  int           // in bytes
	MaxBodyBytes    int64         // in bytes, covers all files of one multipart request
}

type CorsConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type DatabaseConfig struct {
	Driver       string // pg or pgx
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxConns     int
	MinConns     int
	MaxLifetime  time.Duration // in seconds
	MaxIdleTime  time.Duration // in seconds
	ReadTimeout  time.Duration // in seconds
	WriteTimeout time.Duration // in seconds
	QueryTimeout time.Duration
}

type CacheConfig struct {
	Address      string // empty disables caching
	Username     string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ProductTTL   time.Duration
	ListTTL      time.Duration
}

// RateLimitConfig sets fixed windows per client IP. Reads are GETs, writes everything else.
type RateLimitConfig struct {
	Enabled     bool
	ReadLimit   int
	ReadWindow  time.Duration
	WriteLimit  int
	WriteWindow time.Duration
}

type UploadsConfig struct {
	Dir          string   // local directory the files are written to
	PublicPrefix string   // /uploads
	FieldName    string   // images
	MaxFileBytes int64    // 5 MB
	MaxFiles     int      // 5
	AllowedTypes []string // jpeg, jpg, png, gif
}

type StorageConfig struct {
	Driver     string // local or s3
	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string
	S3URL      string
	S3Prefix   string
}

type ClientConfig struct {
	BaseURL        string
	AssetsURL      string
	Timeout        time.Duration
	SearchDebounce time.Duration
	PageSize       int
}
