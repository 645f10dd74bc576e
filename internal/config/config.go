package config

import (
	"log"
	"os"
	"strings"
	"time"
)

// Storage backends for submitted reports.
const (
	StorageMongo  = "mongo"
	StorageSQLite = "sqlite"
)

// Config holds process configuration read from the environment.
type Config struct {
	HTTPPort string

	StorageBackend string
	MongoURI       string
	MongoDB        string
	SQLitePath     string

	RedisAddr string
	DraftTTL  time.Duration

	JWTSecret         string `json:"-"` // never serialize
	ClinicianUsername string
	ClinicianPassword string `json:"-"`

	CORSAllowedOrigins string

	// SchemaPath points at an external catalogue; empty uses the built-in one.
	SchemaPath string
}

// Load reads the configuration from environment variables, falling back to
// development defaults.
func Load() *Config {
	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		StorageBackend:     strings.ToLower(getEnv("STORAGE_BACKEND", StorageMongo)),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:            getEnv("MONGO_DB", "echodb"),
		SQLitePath:         getEnv("SQLITE_PATH", "echo_reports.db"),
		RedisAddr:          strings.TrimPrefix(getEnv("REDIS_URI", "localhost:6379"), "redis://"),
		DraftTTL:           getDuration("DRAFT_TTL", 24*time.Hour),
		JWTSecret:          getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		ClinicianUsername:  getEnv("CLINICIAN_USERNAME", "admin"),
		ClinicianPassword:  getEnv("CLINICIAN_PASSWORD", "password123"),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		SchemaPath:         os.Getenv("SCHEMA_PATH"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s %q, using %s", key, raw, defaultVal)
		return defaultVal
	}
	return d
}
