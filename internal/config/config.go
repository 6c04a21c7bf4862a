package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the media service.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	MinIO    MinIOConfig
	Media    MediaConfig
	Admin    AdminConfig
	Metrics  MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	// PoolMaxConns caps the connection pool. Migrated blob rows can be
	// large, so the pool stays small by default.
	PoolMaxConns int
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MinIOConfig carries remote-origin connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	// PublicBaseURL is the externally reachable address assets are served
	// from. Empty means derive it from Endpoint and UseSSL.
	PublicBaseURL string
}

// MediaConfig groups upload limits and path layout for the media domain.
type MediaConfig struct {
	// Project is the logical folder prefix objects are stored under at the
	// remote origin, e.g. objects land in "{project}/images".
	Project string
	// UploadsRoot is the legacy on-disk upload tree consulted as the last
	// resolution tier and scanned by the migration job.
	UploadsRoot string
	// PublicPrefix is the path under which the retrieval endpoint serves
	// assets, e.g. "/v1/media".
	PublicPrefix string
	// AltImagePrefix replaces PublicPrefix in returned upload paths when the
	// caller flags an image for the alternate surface.
	AltImagePrefix string
	MaxImageBytes  int64
	MaxVideoBytes  int64
}

// AdminConfig guards the privileged migration endpoints.
type AdminConfig struct {
	Token string
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("MEDIA_API_HOST", "0.0.0.0"),
			Port:         getInt("MEDIA_API_PORT", 8080),
			ReadTimeout:  getDuration("MEDIA_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("MEDIA_API_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getDuration("MEDIA_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Postgres: PostgresConfig{
			Host:         getString("POSTGRES_HOST", "localhost"),
			Port:         getInt("POSTGRES_PORT", 5432),
			User:         getString("POSTGRES_USER", "media_app"),
			Password:     getString("POSTGRES_PASSWORD", "change-me"),
			Database:     getString("POSTGRES_DB", "media"),
			SSLMode:      strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
			PoolMaxConns: getInt("POSTGRES_POOL_MAX_CONNS", 4),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "media"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "media"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
			PublicBaseURL:   getString("MINIO_PUBLIC_BASE_URL", ""),
		},
		Media: MediaConfig{
			Project:        getString("MEDIA_PROJECT", "devotion"),
			UploadsRoot:    getString("MEDIA_UPLOADS_ROOT", "uploads"),
			PublicPrefix:   getString("MEDIA_PUBLIC_PREFIX", "/v1/media"),
			AltImagePrefix: getString("MEDIA_ALT_IMAGE_PREFIX", "/v1/media/gallery"),
			MaxImageBytes:  getInt64("MEDIA_MAX_IMAGE_BYTES", 5*1024*1024),
			MaxVideoBytes:  getInt64("MEDIA_MAX_VIDEO_BYTES", 50*1024*1024),
		},
		Admin: AdminConfig{
			Token: getString("MEDIA_ADMIN_TOKEN", ""),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("MEDIA_METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
