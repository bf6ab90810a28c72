package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "data/articles.db", cfg.DBPath)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 20, cfg.AuthRateLimit)
	assert.Equal(t, UploadNone, cfg.UploadProvider)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Empty(t, cfg.AdminToken)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("ADMIN_TOKEN", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("UPLOAD_PROVIDER", "minio")
	t.Setenv("MINIO_ACCESS_KEY", "ak")
	t.Setenv("MINIO_SECRET_KEY", "sk")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "postgres://u:p@localhost/db", cfg.DatabaseURL)
	assert.Equal(t, "s3cret", cfg.AdminToken)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, UploadMinIO, cfg.UploadProvider)
	assert.Equal(t, "localhost:9000", cfg.MinIO.Endpoint)
	assert.Equal(t, "article-images", cfg.MinIO.Bucket)
	assert.True(t, cfg.MinIO.UseSSL)
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, ".env", "CLOUDINARY_FOLDER=from-dotenv\nADMIN_TOKEN=from-dotenv\n")

	// godotenv writes into the process environment. Register the key with
	// t.Setenv so it is restored, then unset it so the file can fill it.
	t.Setenv("CLOUDINARY_FOLDER", "")
	require.NoError(t, os.Unsetenv("CLOUDINARY_FOLDER"))

	// A real environment variable beats the file.
	t.Setenv("ADMIN_TOKEN", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.Cloudinary.Folder)
	assert.Equal(t, "from-env", cfg.AdminToken)
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(name, []byte(content), 0o600))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:           8080,
			LogFormat:      "text",
			DBDriver:       DriverSQLite,
			DBPath:         "x.db",
			MaxUploadBytes: 1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"port too low", func(c *Config) { c.Port = 0 }, "PORT must be between"},
		{"port too high", func(c *Config) { c.Port = 70000 }, "PORT must be between"},
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, "DB_DRIVER must be"},
		{"sqlite without path", func(c *Config) { c.DBPath = "" }, "DB_PATH is required"},
		{"postgres without dsn", func(c *Config) { c.DBDriver = DriverPostgres }, "DATABASE_URL is required"},
		{"negative rate limit", func(c *Config) { c.AuthRateLimit = -1 }, "AUTH_RATE_LIMIT"},
		{"zero upload size", func(c *Config) { c.MaxUploadBytes = 0 }, "MAX_UPLOAD_BYTES"},
		{"cloudinary without keys", func(c *Config) { c.UploadProvider = UploadCloudinary }, "CLOUDINARY_CLOUD_NAME"},
		{"minio without keys", func(c *Config) { c.UploadProvider = UploadMinIO }, "MINIO_ENDPOINT"},
		{"unknown provider", func(c *Config) { c.UploadProvider = "s3" }, "UPLOAD_PROVIDER must be"},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := &Config{Port: 0, DBDriver: "nope", LogFormat: "text", MaxUploadBytes: 1}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"*"}, splitCSV(""))
	assert.Equal(t, []string{"*"}, splitCSV(" , "))
	assert.Equal(t, []string{"a", "b"}, splitCSV("a,b"))
}
