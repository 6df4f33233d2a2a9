package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.apify.com/v2", cfg.Apify.BaseURL)
	assert.Equal(t, "apify~instagram-scraper", cfg.Apify.ActorID)
	assert.Equal(t, 5, cfg.Apify.ResultsLimit)
	assert.Equal(t, []string{"RESIDENTIAL"}, cfg.Apify.ProxyGroups)
	assert.Equal(t, 5, cfg.Apify.MaxRequestRetries)
	assert.Equal(t, 1, cfg.Apify.MaxConcurrency)
	assert.Equal(t, 3*time.Second, cfg.Apify.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Apify.WaitTimeout)
	assert.Empty(t, cfg.Apify.Token)

	assert.True(t, cfg.Download.Enabled)
	assert.Equal(t, 5, cfg.Download.CarouselWorkers)
	assert.Zero(t, cfg.Download.RequestsPerMinute)

	assert.Equal(t, ".", cfg.Output.BaseDirectory)
	assert.True(t, cfg.Export.CommentsFile)
	assert.True(t, cfg.Export.EmbedReelComment)

	assert.True(t, cfg.Retry.Enabled)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(TokenEnvVar, "apify_api_test")
	t.Setenv("IGPROFILE_OUTPUT_DIR", "/tmp/profiles")
	t.Setenv("IGPROFILE_RESULTS_LIMIT", "12")
	t.Setenv("IGPROFILE_WAIT_TIMEOUT", "90s")
	t.Setenv("IGPROFILE_DOWNLOAD_ENABLED", "false")
	t.Setenv("IGPROFILE_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "apify_api_test", cfg.Apify.Token)
	assert.Equal(t, "/tmp/profiles", cfg.Output.BaseDirectory)
	assert.Equal(t, 12, cfg.Apify.ResultsLimit)
	assert.Equal(t, 90*time.Second, cfg.Apify.WaitTimeout)
	assert.False(t, cfg.Download.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidNumbers(t *testing.T) {
	t.Setenv("IGPROFILE_RESULTS_LIMIT", "five")
	t.Setenv("IGPROFILE_WAIT_TIMEOUT", "soon")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IGPROFILE_RESULTS_LIMIT")
	assert.Contains(t, err.Error(), "IGPROFILE_WAIT_TIMEOUT")
	assert.Equal(t, 5, cfg.Apify.ResultsLimit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			modify: func(c *Config) {},
		},
		{
			name:    "zero results limit",
			modify:  func(c *Config) { c.Apify.ResultsLimit = 0 },
			wantErr: "results limit must be positive",
		},
		{
			name:    "empty actor",
			modify:  func(c *Config) { c.Apify.ActorID = "" },
			wantErr: "actor ID is required",
		},
		{
			name:    "too many carousel workers",
			modify:  func(c *Config) { c.Download.CarouselWorkers = 6 },
			wantErr: "carousel workers cannot exceed 5",
		},
		{
			name:    "negative rpm",
			modify:  func(c *Config) { c.Download.RequestsPerMinute = -1 },
			wantErr: "requests per minute cannot be negative",
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "invalid log level",
		},
		{
			name:    "bad jitter",
			modify:  func(c *Config) { c.Retry.JitterFactor = 2 },
			wantErr: "jitter factor",
		},
		{
			name:   "retry disabled skips retry checks",
			modify: func(c *Config) { c.Retry.Enabled = false; c.Retry.MaxAttempts = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
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

func TestValidateJoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Apify.ResultsLimit = 0
	cfg.Output.BaseDirectory = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "results limit must be positive")
	assert.Contains(t, err.Error(), "output directory is required")
}

func TestValidateCredentials(t *testing.T) {
	cfg := DefaultConfig()
	assert.ErrorIs(t, cfg.ValidateCredentials(), ErrMissingToken)

	cfg.Apify.Token = "   "
	assert.ErrorIs(t, cfg.ValidateCredentials(), ErrMissingToken)

	cfg.Apify.Token = "apify_api_x"
	assert.NoError(t, cfg.ValidateCredentials())
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"token":        "flag-token",
		"output":       "/flag/out",
		"limit":        8,
		"wait-timeout": 2 * time.Minute,
		"no-download":  true,
		"save-raw":     true,
		"notify":       false,
		"log-level":    "warn",
	})

	assert.Equal(t, "flag-token", cfg.Apify.Token)
	assert.Equal(t, "/flag/out", cfg.Output.BaseDirectory)
	assert.Equal(t, 8, cfg.Apify.ResultsLimit)
	assert.Equal(t, 2*time.Minute, cfg.Apify.WaitTimeout)
	assert.False(t, cfg.Download.Enabled)
	assert.True(t, cfg.Output.SaveRaw)
	assert.False(t, cfg.Notifications.Enabled)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestSaveOmitsToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Apify.Token = "secret"
	cfg.Apify.ResultsLimit = 9
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")

	var loaded Config
	require.NoError(t, yaml.Unmarshal(data, &loaded))
	assert.Equal(t, 9, loaded.Apify.ResultsLimit)
	assert.Equal(t, "secret", cfg.Apify.Token)
}

func TestLoad(t *testing.T) {
	t.Run("precedence order", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := `
apify:
  results_limit: 7
  wait_timeout: 2m
output:
  base_directory: /file/output
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		t.Setenv("IGPROFILE_OUTPUT_DIR", "/env/output")
		t.Setenv(TokenEnvVar, "env-token")

		cfg, err := Load(path, map[string]interface{}{"token": "flag-token"})
		require.NoError(t, err)

		assert.Equal(t, "flag-token", cfg.Apify.Token)
		assert.Equal(t, 7, cfg.Apify.ResultsLimit)
		assert.Equal(t, 2*time.Minute, cfg.Apify.WaitTimeout)
		assert.Equal(t, "/env/output", cfg.Output.BaseDirectory)
	})

	t.Run("validation failure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("apify:\n  results_limit: -1\n"), 0644))

		cfg, err := Load(path, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration validation failed")
		assert.Nil(t, cfg)
	})

	t.Run("missing token is not a load error", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "")
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644))

		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, cfg.ValidateCredentials(), ErrMissingToken)
	})

	t.Run("loads .env file", func(t *testing.T) {
		dir := t.TempDir()
		oldDir, _ := os.Getwd()
		defer os.Chdir(oldDir)
		require.NoError(t, os.Chdir(dir))

		require.NoError(t, os.WriteFile(".env", []byte("APIFY_API_TOKEN=dotenv_token\n"), 0644))
		t.Setenv(TokenEnvVar, "")
		os.Unsetenv(TokenEnvVar)

		cfg, err := Load(filepath.Join(dir, "missing.yaml"), nil)
		require.Error(t, err)
		assert.Nil(t, cfg)

		cfg, err = Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, "dotenv_token", cfg.Apify.Token)
	})
}

func TestEnsureEnvTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	created, err := EnsureEnvTemplate(path)
	require.NoError(t, err)
	assert.True(t, created)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `APIFY_API_TOKEN="your_apify_token_here"`)

	created, err = EnsureEnvTemplate(path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestIsPlaceholderToken(t *testing.T) {
	assert.True(t, IsPlaceholderToken(""))
	assert.True(t, IsPlaceholderToken(TokenPlaceholder))
	assert.False(t, IsPlaceholderToken("apify_api_real"))
}
