package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name: "valid config",
			env: map[string]string{
				"SERVER_PORT": "8080",
				"ENV":         "development",
				"LOG_LEVEL":   "info",
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"SERVER_PORT": "invalid"},
			wantErr: true,
		},
		{
			name:    "port out of range",
			env:     map[string]string{"SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "invalid environment",
			env:     map[string]string{"ENV": "invalid"},
			wantErr: true,
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"LOG_LEVEL": "invalid"},
			wantErr: true,
		},
		{
			name:    "invalid score policy",
			env:     map[string]string{"SCORE_POLICY": "guess"},
			wantErr: true,
		},
		{
			name:    "invalid rate limit ceiling",
			env:     map[string]string{"RATE_LIMIT_MAX": "-1"},
			wantErr: true,
		},
		{
			name:    "zero janitor interval",
			env:     map[string]string{"JANITOR_SHORT_CLEAN_INTERVAL": "0s"},
			wantErr: true,
		},
		{
			name:    "invalid chat id",
			env:     map[string]string{"ADMIN_CHAT_ID": "not-a-chat"},
			wantErr: true,
		},
		{
			name: "channel username chat id",
			env:  map[string]string{"ADMIN_CHAT_ID": "@csi_admins"},
		},
		{
			name: "negative group chat id",
			env:  map[string]string{"ADMIN_CHAT_ID": "-1001234567890"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Backup original environment
			originalEnv := backupEnv()
			defer restoreEnv(originalEnv)
			clearConfigEnv()

			// Set test environment
			for key, value := range tt.env {
				os.Setenv(key, value)
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, cfg)
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	originalEnv := backupEnv()
	defer restoreEnv(originalEnv)
	clearConfigEnv()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "data/survey.db", cfg.Database.Path)
	assert.Equal(t, "verify", cfg.Survey.ScorePolicy)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, time.Second, cfg.Telegram.ProbeDelay)
	assert.Equal(t, "http://localhost:3000", cfg.CORS.AllowedOrigin)
	assert.Equal(t, 5*time.Minute, cfg.Janitor.ShortCleanInterval)
	assert.Equal(t, time.Hour, cfg.Janitor.FullCleanInterval)
	assert.False(t, cfg.ChannelConfigured())
}

func TestConfig_Methods(t *testing.T) {
	// Backup original environment
	originalEnv := backupEnv()
	defer restoreEnv(originalEnv)
	clearConfigEnv()

	// Set test environment
	os.Setenv("ENV", "development")
	os.Setenv("SERVER_HOST", "127.0.0.1")
	os.Setenv("SERVER_PORT", "9000")

	cfg := MustLoad()

	// Test IsDevelopment
	if !cfg.IsDevelopment() {
		t.Error("Expected IsDevelopment() to return true")
	}

	// Test IsProduction
	if cfg.IsProduction() {
		t.Error("Expected IsProduction() to return false")
	}

	// Test GetServerAddress
	expectedAddr := "127.0.0.1:9000"
	if addr := cfg.GetServerAddress(); addr != expectedAddr {
		t.Errorf("Expected server address %s, got %s", expectedAddr, addr)
	}
}

func TestConfig_EnvironmentVariables(t *testing.T) {
	// Backup original environment
	originalEnv := backupEnv()
	defer restoreEnv(originalEnv)
	clearConfigEnv()

	// Set specific test values
	testValues := map[string]string{
		"SERVER_HOST":         "test-host",
		"SERVER_PORT":         "9999",
		"SERVER_READ_TIMEOUT": "30s",
		"APP_NAME":            "test-app",
		"APP_VERSION":         "2.0.0",
		"DEBUG":               "true",
		"DB_PATH":             "/tmp/survey-test.db",
		"LOG_LEVEL":           "debug",
		"TELEGRAM_BOT_TOKEN":  "123:abc",
		"ADMIN_CHAT_ID":       "42",
		"RATE_LIMIT_WINDOW":   "1m",
		"RATE_LIMIT_MAX":      "10",
		"SCORE_POLICY":        "trust",
	}

	for key, value := range testValues {
		os.Setenv(key, value)
	}

	cfg := MustLoad()

	assert.Equal(t, "test-host", cfg.Server.Host)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "test-app", cfg.App.Name)
	assert.Equal(t, "2.0.0", cfg.App.Version)
	assert.True(t, cfg.App.Debug)
	assert.Equal(t, "/tmp/survey-test.db", cfg.Database.Path)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 10, cfg.RateLimit.Max)
	assert.Equal(t, "trust", cfg.Survey.ScorePolicy)
	assert.True(t, cfg.ChannelConfigured())
}

func TestConfig_YAMLFileWithEnvOverride(t *testing.T) {
	originalEnv := backupEnv()
	defer restoreEnv(originalEnv)
	clearConfigEnv()

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  port: \"7070\"\nsurvey:\n  score_policy: recompute\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	os.Setenv("CONFIG_PATH", path)
	os.Setenv("SERVER_HOST", "0.0.0.0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "recompute", cfg.Survey.ScorePolicy)
}

// Helper functions for testing
func backupEnv() map[string]string {
	env := make(map[string]string)
	for _, pair := range os.Environ() {
		if idx := strings.Index(pair, "="); idx != -1 {
			key := pair[:idx]
			value := pair[idx+1:]
			env[key] = value
		}
	}
	return env
}

func restoreEnv(env map[string]string) {
	os.Clearenv()
	for key, value := range env {
		os.Setenv(key, value)
	}
}

func clearConfigEnv() {
	for _, key := range []string{
		"CONFIG_PATH", "SERVER_HOST", "SERVER_PORT", "SERVER_READ_TIMEOUT", "ENV", "LOG_LEVEL",
		"APP_NAME", "APP_VERSION", "DEBUG", "DB_PATH", "TELEGRAM_BOT_TOKEN", "ADMIN_CHAT_ID",
		"TELEGRAM_PROBE_DELAY", "EXPORT_TEMP_DIR", "CORS_ORIGIN", "RATE_LIMIT_WINDOW",
		"RATE_LIMIT_MAX", "SCORE_POLICY", "JANITOR_SHORT_CLEAN_INTERVAL", "JANITOR_FULL_CLEAN_INTERVAL", "EXPORT_STALE_AFTER",
	} {
		os.Unsetenv(key)
	}
}
