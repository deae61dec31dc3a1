package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	ImagePolicyUpload = "upload"
	ImagePolicyInline = "inline"

	StorageBackendGCS   = "gcs"
	StorageBackendLocal = "local"
)

type Config struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY" validate:"required"`
	GeminiModel  string `env:"GEMINI_MODEL" validate:"required"`

	DatabaseURL    string `env:"DATABASE_URL" validate:"required"`
	LocalStorePath string `env:"LOCAL_STORE_PATH" validate:"required"`
	HTTPPort       string `env:"HTTP_PORT" validate:"required,numeric"`
	LogLevel       string `env:"LOG_LEVEL" validate:"oneof=DEBUG INFO"`

	FirebaseAPIKey string `env:"FIREBASE_API_KEY" validate:"required"`
	AuthBaseURL    string `env:"AUTH_BASE_URL" validate:"required,url"`
	TokenBaseURL   string `env:"AUTH_TOKEN_URL" validate:"required,url"`

	StorageBackend       string `env:"STORAGE_BACKEND" validate:"oneof=gcs local"`
	StorageBucket        string `env:"STORAGE_BUCKET" validate:"required_if=StorageBackend gcs"`
	StorageLocalDir      string `env:"STORAGE_LOCAL_DIR" validate:"required_if=StorageBackend local"`
	StoragePublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL"`
	ImagePolicy          string `env:"IMAGE_POLICY" validate:"oneof=upload inline"`

	ReminderHour         int  `env:"REMINDER_HOUR" validate:"min=0,max=23"`
	ReminderMinute       int  `env:"REMINDER_MINUTE" validate:"min=0,max=59"`
	NotificationsEnabled bool `env:"NOTIFICATIONS_ENABLED"`

	QueryCacheTTLSeconds int `env:"QUERY_CACHE_TTL_SECONDS" validate:"min=0"`
	QueryRetryAttempts   int `env:"QUERY_RETRY_ATTEMPTS" validate:"min=1"`
}

// Load reads .env (when present) and the environment. It does not touch any
// package state; callers pass the returned Config around explicitly.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),

		DatabaseURL:    getEnv("DATABASE_URL", "dailymath.db"),
		LocalStorePath: getEnv("LOCAL_STORE_PATH", "device.db"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		LogLevel:       strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),

		FirebaseAPIKey: getEnv("FIREBASE_API_KEY", ""),
		AuthBaseURL:    getEnv("AUTH_BASE_URL", "https://identitytoolkit.googleapis.com/v1"),
		TokenBaseURL:   getEnv("AUTH_TOKEN_URL", "https://securetoken.googleapis.com/v1"),

		StorageBackend:       getEnv("STORAGE_BACKEND", StorageBackendLocal),
		StorageBucket:        getEnv("STORAGE_BUCKET", ""),
		StorageLocalDir:      getEnv("STORAGE_LOCAL_DIR", "uploads"),
		StoragePublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080/uploads"),
		ImagePolicy:          getEnv("IMAGE_POLICY", ImagePolicyUpload),

		ReminderHour:         getEnvAsInt("REMINDER_HOUR", 7),
		ReminderMinute:       getEnvAsInt("REMINDER_MINUTE", 0),
		NotificationsEnabled: getEnvAsBool("NOTIFICATIONS_ENABLED", true),

		QueryCacheTTLSeconds: getEnvAsInt("QUERY_CACHE_TTL_SECONDS", 30),
		QueryRetryAttempts:   getEnvAsInt("QUERY_RETRY_ATTEMPTS", 3),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and reports every problem at once.
func Validate(cfg *Config) error {
	validate, trans, err := newValidator()
	if err != nil {
		return err
	}
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fe.Translate(trans))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
