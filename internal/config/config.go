// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	IdentityProviderKeycloak = "keycloak"
	IdentityProviderFirebase = "firebase"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode          string        `mapstructure:"GIN_MODE"`
	ServerHost       string        `mapstructure:"SERVER_HOST"`
	ServerPort       string        `mapstructure:"SERVER_PORT"`
	ServerTimeout    time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`
	CORSAllowOrigins []string      `mapstructure:"CORS_ALLOW_ORIGINS"`
	AuthRequired     bool          `mapstructure:"AUTH_REQUIRED"`

	// Database Configuration
	MongoURI            string        `mapstructure:"MONGODB_URI"`
	MongoDatabase       string        `mapstructure:"MONGODB_DATABASE"`
	MongoConnectTimeout time.Duration `mapstructure:"MONGODB_CONNECT_TIMEOUT_SECONDS"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Bound applied to every call to the identity provider and the image host.
	ExternalCallTimeout time.Duration `mapstructure:"EXTERNAL_CALL_TIMEOUT_SECONDS"`

	// Identity provider
	IdentityProvider string `mapstructure:"IDENTITY_PROVIDER"`

	KeycloakBaseURL           string `mapstructure:"KEYCLOAK_BASE_URL"`
	KeycloakRealm             string `mapstructure:"KEYCLOAK_REALM"`
	KeycloakClientID          string `mapstructure:"KEYCLOAK_CLIENT_ID"`
	KeycloakAdminRealm        string `mapstructure:"KEYCLOAK_ADMIN_REALM"`
	KeycloakAdminClientID     string `mapstructure:"KEYCLOAK_ADMIN_CLIENT_ID"`
	KeycloakAdminClientSecret string `mapstructure:"KEYCLOAK_ADMIN_CLIENT_SECRET"`
	KeycloakAdminUsername     string `mapstructure:"KEYCLOAK_ADMIN_USERNAME"`
	KeycloakAdminPassword     string `mapstructure:"KEYCLOAK_ADMIN_PASSWORD"`
	KeycloakDefaultRole       string `mapstructure:"KEYCLOAK_DEFAULT_ROLE"`

	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`

	// Cloudinary
	CloudinaryCloudName      string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey         string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret      string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryUnsignedPreset string `mapstructure:"CLOUDINARY_UNSIGNED_PRESET"`
	CloudinaryUploadPreset   string `mapstructure:"CLOUDINARY_UPLOAD_PRESET"`
	CloudinaryFolder         string `mapstructure:"CLOUDINARY_FOLDER"`

	// Redis list cache; empty address disables it.
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	CatalogCacheTTL time.Duration `mapstructure:"CATALOG_CACHE_TTL_SECONDS"`

	// Cron Jobs
	IdentityReconcileSchedule string `mapstructure:"IDENTITY_RECONCILE_SCHEDULE"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("AUTH_REQUIRED", true)

	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "pcstore")
	v.SetDefault("MONGODB_CONNECT_TIMEOUT_SECONDS", 10)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("EXTERNAL_CALL_TIMEOUT_SECONDS", 10)

	v.SetDefault("IDENTITY_PROVIDER", IdentityProviderKeycloak)
	v.SetDefault("KEYCLOAK_BASE_URL", "http://localhost:8080")
	v.SetDefault("KEYCLOAK_REALM", "pcstore")
	v.SetDefault("KEYCLOAK_CLIENT_ID", "pcstore-frontend")
	v.SetDefault("KEYCLOAK_ADMIN_REALM", "master")
	v.SetDefault("KEYCLOAK_ADMIN_CLIENT_ID", "admin-cli")
	v.SetDefault("KEYCLOAK_ADMIN_CLIENT_SECRET", "")
	v.SetDefault("KEYCLOAK_ADMIN_USERNAME", "")
	v.SetDefault("KEYCLOAK_ADMIN_PASSWORD", "")
	v.SetDefault("KEYCLOAK_DEFAULT_ROLE", "user")

	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")

	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("CLOUDINARY_UNSIGNED_PRESET", "")
	v.SetDefault("CLOUDINARY_UPLOAD_PRESET", "")
	v.SetDefault("CLOUDINARY_FOLDER", "pcstore")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CATALOG_CACHE_TTL_SECONDS", 60)

	v.SetDefault("IDENTITY_RECONCILE_SCHEDULE", "@every 30m")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.MongoConnectTimeout = time.Duration(v.GetInt("MONGODB_CONNECT_TIMEOUT_SECONDS")) * time.Second
	cfg.ExternalCallTimeout = time.Duration(v.GetInt("EXTERNAL_CALL_TIMEOUT_SECONDS")) * time.Second
	cfg.CatalogCacheTTL = time.Duration(v.GetInt("CATALOG_CACHE_TTL_SECONDS")) * time.Second
	cfg.CORSAllowOrigins = splitList(v.GetString("CORS_ALLOW_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.MongoURI) == "" {
		return fmt.Errorf("FATAL: MONGODB_URI is not set")
	}
	if c.ExternalCallTimeout <= 0 {
		return fmt.Errorf("FATAL: EXTERNAL_CALL_TIMEOUT_SECONDS must be positive")
	}

	switch strings.ToLower(c.IdentityProvider) {
	case IdentityProviderKeycloak:
		if strings.TrimSpace(c.KeycloakBaseURL) == "" || strings.TrimSpace(c.KeycloakRealm) == "" {
			return fmt.Errorf("FATAL: KEYCLOAK_BASE_URL and KEYCLOAK_REALM are required when IDENTITY_PROVIDER=keycloak")
		}
		if c.KeycloakAdminUsername == "" && c.KeycloakAdminClientSecret == "" {
			return fmt.Errorf("FATAL: either KEYCLOAK_ADMIN_USERNAME or KEYCLOAK_ADMIN_CLIENT_SECRET must be set")
		}
	case IdentityProviderFirebase:
		if strings.TrimSpace(c.FirebaseServiceAccountKeyPath) == "" {
			return fmt.Errorf("FATAL: FIREBASE_SERVICE_ACCOUNT_KEY_PATH is not set. This is required for Firebase Admin SDK initialization")
		}
		if _, err := os.Stat(c.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
			return fmt.Errorf("FATAL: Firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", c.FirebaseServiceAccountKeyPath)
		}
	default:
		return fmt.Errorf("FATAL: unsupported IDENTITY_PROVIDER %q", c.IdentityProvider)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
