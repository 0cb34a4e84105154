package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"api_key": "test-key",
		"model": "gemini-2.5-flash",
		"port": 9090,
		"ai_timeout_seconds": 30,
		"rate_limit_enabled": false,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.AITimeout())
	assert.False(t, cfg.RateLimited())
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{Port: 8080, MaxUploadBytes: 1024}, ""},
		{"zero values", Config{}, ""},
		{"port too large", Config{Port: 70000}, "port"},
		{"negative upload", Config{MaxUploadBytes: -1}, "max_upload_bytes"},
		{"upload above cap", Config{MaxUploadBytes: DefaultMaxUploadBytes + 1}, "cannot exceed"},
		{"negative timeout", Config{AITimeoutSeconds: -5}, "ai_timeout_seconds"},
		{"negative concurrency", Config{Concurrency: -1}, "concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	disabled := false
	partial := Config{
		APIKey: "custom-key",
		Port:   9000,
	}
	defaults := Defaults()
	defaults.Model = "default-model"
	defaults.RateLimitEnabled = &disabled

	merged := partial.MergeWithDefaults(defaults)

	assert.Equal(t, "custom-key", merged.APIKey)
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "default-model", merged.Model)
	assert.Equal(t, int64(DefaultMaxUploadBytes), merged.MaxUploadBytes)
	assert.Equal(t, DefaultAITimeoutSeconds, merged.AITimeoutSeconds)
	assert.Equal(t, DefaultConcurrency, merged.Concurrency)
	assert.False(t, merged.RateLimited())
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{APIKey: "k"}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "k", merged.APIKey)
	assert.Equal(t, 0, merged.Port)
	assert.True(t, merged.RateLimited())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("GEMINI_MODEL", "env-model")
	t.Setenv("PORT", "7070")

	cfg := FromEnv()
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "env-model", cfg.Model)
	assert.Equal(t, 7070, cfg.Port)
}

func TestFromEnv_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, 0, cfg.Port)
}

func TestLoadConfig_YAML(t *testing.T) {
	content := "api_key: yaml-key\nport: 9191\nconcurrency: 8\nrate_limit_enabled: true\n"

	for _, name := range []string{"config.yaml", "config.YML"} {
		t.Run(name, func(t *testing.T) {
			tmpFile := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

			cfg, err := LoadConfig(tmpFile)
			require.NoError(t, err)
			assert.Equal(t, "yaml-key", cfg.APIKey)
			assert.Equal(t, 9191, cfg.Port)
			assert.Equal(t, 8, cfg.Concurrency)
			assert.True(t, cfg.RateLimited())
		})
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("port: [unterminated"), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}
