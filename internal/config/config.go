// Package config loads server settings from the environment.
//
// Sources, lowest priority first:
//  1. defaults set below
//  2. a .env file in the working directory (optional, via godotenv)
//  3. real environment variables
//
// godotenv never overrides a variable that is already set, so step 3 wins.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Upload providers. An empty provider disables /api/upload.
const (
	UploadNone       = ""
	UploadCloudinary = "cloudinary"
	UploadMinIO      = "minio"
)

type Config struct {
	Port      int
	LogLevel  string
	LogFormat string

	DBDriver    string
	DBPath      string // sqlite only
	DatabaseURL string // postgres / mysql DSN

	// AdminToken enables signin with the shared admin secret. Empty disables it.
	AdminToken string

	CORSAllowedOrigins []string

	// AuthRateLimit is the number of requests per minute each client IP may
	// send to /api/auth/* and /api/upload. Zero disables rate limiting.
	AuthRateLimit int
	RedisAddr     string // empty → in-process limiter
	RedisPassword string

	UploadProvider string
	MaxUploadBytes int64
	Cloudinary     CloudinaryConfig
	MinIO          MinIOConfig
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base of the returned image URLs, e.g. a CDN in front
	// of the bucket. Empty means <scheme>://<endpoint>/<bucket>.
	PublicURL string
}

// Load reads .env (if present) and the environment, then validates.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_PATH", "data/articles.db")
	v.SetDefault("DATABASE_URL", "")

	v.SetDefault("ADMIN_TOKEN", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("AUTH_RATE_LIMIT", 20)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")

	v.SetDefault("UPLOAD_PROVIDER", UploadNone)
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)

	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("CLOUDINARY_FOLDER", "articles")

	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "article-images")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_PUBLIC_URL", "")

	v.AutomaticEnv()
	return v
}

// FromViper maps an already populated viper instance onto Config and
// validates it. Load uses it with the process environment; tests can pass
// their own instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:      v.GetInt("PORT"),
		LogLevel:  strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		LogFormat: strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),

		DBDriver:    strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DBPath:      v.GetString("DB_PATH"),
		DatabaseURL: v.GetString("DATABASE_URL"),

		AdminToken:         v.GetString("ADMIN_TOKEN"),
		CORSAllowedOrigins: splitCSV(v.GetString("CORS_ALLOWED_ORIGINS")),

		AuthRateLimit: v.GetInt("AUTH_RATE_LIMIT"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		UploadProvider: strings.ToLower(strings.TrimSpace(v.GetString("UPLOAD_PROVIDER"))),
		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
		Cloudinary: CloudinaryConfig{
			CloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:    v.GetString("CLOUDINARY_API_KEY"),
			APISecret: v.GetString("CLOUDINARY_API_SECRET"),
			Folder:    v.GetString("CLOUDINARY_FOLDER"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			PublicURL: v.GetString("MINIO_PUBLIC_URL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem at once so a misconfigured deployment can be
// fixed in one pass.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required when DB_DRIVER=sqlite"))
		}
	case DriverPostgres, DriverMySQL:
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("DATABASE_URL is required when DB_DRIVER=%s", c.DBDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite, postgres or mysql, got %q", c.DBDriver))
	}

	if c.AuthRateLimit < 0 {
		errs = append(errs, fmt.Errorf("AUTH_RATE_LIMIT must not be negative, got %d", c.AuthRateLimit))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes))
	}

	switch c.UploadProvider {
	case UploadNone:
	case UploadCloudinary:
		if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
			errs = append(errs, errors.New("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required when UPLOAD_PROVIDER=cloudinary"))
		}
	case UploadMinIO:
		if c.MinIO.Endpoint == "" || c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "" || c.MinIO.Bucket == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY and MINIO_BUCKET are required when UPLOAD_PROVIDER=minio"))
		}
	default:
		errs = append(errs, fmt.Errorf("UPLOAD_PROVIDER must be empty, cloudinary or minio, got %q", c.UploadProvider))
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
