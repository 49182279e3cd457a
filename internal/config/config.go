package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for the remote-bucket backend.
// Bucket is the primary upload target; FallbackBucket is provisioned lazily
// and written to only when a write against the primary fails.
type MinIOConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Bucket         string
	FallbackBucket string
	UseSSL         bool
}

// UploadConfig holds settings for the upload gateway: where files land on
// disk, where the standalone gateway listens, and how the local-disk storage
// backend reaches it over HTTP.
type UploadConfig struct {
	// Dir is the root under which images/, documents/ and soundfiles/ are created.
	Dir string
	// Port is the standalone gateway listen port.
	Port string
	// GatewayURL is the base URL the local-disk backend posts uploads to.
	GatewayURL string
	// PublicBase is the path prefix served assets resolve under.
	PublicBase string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost string
	Port    string
	// StorageBackend selects the blob storage variant: bucket, disk or inline.
	// Read once at startup; the active variant never changes per call.
	StorageBackend string
	// EmbedUploadGateway mounts the upload gateway middleware inside the API
	// process instead of requiring the standalone listener (dev mode).
	EmbedUploadGateway bool
	Database           DatabaseConfig
	MinIO              MinIOConfig
	Upload             UploadConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:            getEnv("APP_HOST", "localhost:8080"),
		Port:               getEnv("PORT", "8080"), // default only for non-sensitive value
		StorageBackend:     getEnv("STORAGE_BACKEND", "bucket"),
		EmbedUploadGateway: getEnvBool("EMBED_UPLOAD_GATEWAY", false),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:       getEnv("MINIO_ENDPOINT", ""),
			AccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:      getEnv("MINIO_SECRET_KEY", ""),
			Bucket:         getEnv("MINIO_BUCKET", ""),
			FallbackBucket: getEnv("MINIO_FALLBACK_BUCKET", ""),
			UseSSL:         getEnvBool("MINIO_USE_SSL", false),
		},
		Upload: UploadConfig{
			Dir:        getEnv("UPLOAD_DIR", "uploads"),
			Port:       getEnv("UPLOAD_GW_PORT", "8081"),
			GatewayURL: getEnv("UPLOAD_GW_URL", "http://localhost:8081"),
			PublicBase: getEnv("UPLOAD_PUBLIC_BASE", "/uploads"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
