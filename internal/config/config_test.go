package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"GEMINI_API_KEY", "GEMINI_MODEL", "FIREBASE_API_KEY", "DATABASE_URL", "LOCAL_STORE_PATH",
	"HTTP_PORT", "LOG_LEVEL", "IMAGE_POLICY", "REMINDER_HOUR", "REMINDER_MINUTE",
	"NOTIFICATIONS_ENABLED", "STORAGE_BACKEND", "STORAGE_BUCKET", "QUERY_RETRY_ATTEMPTS", "AUTH_BASE_URL", "AUTH_TOKEN_URL",
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name              string
		env               map[string]string
		wantErr           bool
		wantErrorContains []string
		check             func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults with required keys",
			env: map[string]string{
				"GEMINI_API_KEY":   "gemini-key",
				"FIREBASE_API_KEY": "firebase-key",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "gemini-1.5-flash-latest", cfg.GeminiModel)
				assert.Equal(t, "dailymath.db", cfg.DatabaseURL)
				assert.Equal(t, "device.db", cfg.LocalStorePath)
				assert.Equal(t, "8080", cfg.HTTPPort)
				assert.Equal(t, ImagePolicyUpload, cfg.ImagePolicy)
				assert.Equal(t, StorageBackendLocal, cfg.StorageBackend)
				assert.Equal(t, 7, cfg.ReminderHour)
				assert.Equal(t, 0, cfg.ReminderMinute)
				assert.True(t, cfg.NotificationsEnabled)
				assert.Equal(t, 3, cfg.QueryRetryAttempts)
				assert.Equal(t, "https://securetoken.googleapis.com/v1", cfg.TokenBaseURL)
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"GEMINI_API_KEY":        "gemini-key",
				"FIREBASE_API_KEY":      "firebase-key",
				"IMAGE_POLICY":          "inline",
				"LOG_LEVEL":             "debug",
				"REMINDER_HOUR":         "19",
				"NOTIFICATIONS_ENABLED": "false",
				"STORAGE_BACKEND":       "gcs",
				"STORAGE_BUCKET":        "solutions-bucket",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ImagePolicyInline, cfg.ImagePolicy)
				assert.Equal(t, "DEBUG", cfg.LogLevel)
				assert.Equal(t, 19, cfg.ReminderHour)
				assert.False(t, cfg.NotificationsEnabled)
				assert.Equal(t, "solutions-bucket", cfg.StorageBucket)
			},
		},
		{
			name:              "missing keys are named by environment variable",
			env:               map[string]string{},
			wantErr:           true,
			wantErrorContains: []string{"GEMINI_API_KEY", "FIREBASE_API_KEY"},
		},
		{
			name: "gcs backend requires a bucket",
			env: map[string]string{
				"GEMINI_API_KEY":   "gemini-key",
				"FIREBASE_API_KEY": "firebase-key",
				"STORAGE_BACKEND":  "gcs",
			},
			wantErr:           true,
			wantErrorContains: []string{"STORAGE_BUCKET"},
		},
		{
			name: "negative retry attempts",
			env: map[string]string{
				"GEMINI_API_KEY":       "gemini-key",
				"FIREBASE_API_KEY":     "firebase-key",
				"QUERY_RETRY_ATTEMPTS": "-1",
			},
			wantErr:           true,
			wantErrorContains: []string{"QUERY_RETRY_ATTEMPTS must be 1 or greater"},
		},
		{
			name: "zero retry attempts",
			env: map[string]string{
				"GEMINI_API_KEY":       "gemini-key",
				"FIREBASE_API_KEY":     "firebase-key",
				"QUERY_RETRY_ATTEMPTS": "0",
			},
			wantErr:           true,
			wantErrorContains: []string{"QUERY_RETRY_ATTEMPTS"},
		},
		{
			name: "unknown image policy",
			env: map[string]string{
				"GEMINI_API_KEY":   "gemini-key",
				"FIREBASE_API_KEY": "firebase-key",
				"IMAGE_POLICY":     "sometimes",
			},
			wantErr:           true,
			wantErrorContains: []string{"IMAGE_POLICY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for _, key := range configKeys {
				if value, ok := tt.env[key]; ok {
					t.Setenv(key, value)
				} else {
					unsetEnv(t, key)
				}
			}

			cfg, err := Load()
			if tt.wantErr {
				require.Error(t, err)
				for _, s := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), s)
				}
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
