package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"genchat/generation"
	"genchat/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every config location at temp dirs and clears overrides.
func isolate(t *testing.T) (configDir, dataDir string) {
	t.Helper()
	configDir = t.TempDir()
	dataDir = filepath.Join(t.TempDir(), "data")
	t.Setenv("GENCHAT_CONFIG_DIR", configDir)
	t.Setenv("GENCHAT_DATA_DIR", dataDir)
	for _, key := range []string{"GENCHAT_API_KEY", "GENCHAT_BASE_URL", "GENCHAT_PROVIDER", "GENCHAT_DEBUG", "GENCHAT_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	return configDir, dataDir
}

func TestLoadFirstRunWritesTemplates(t *testing.T) {
	configDir, dataDir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(configDir, "settings.toml"))
	assert.FileExists(t, filepath.Join(dataDir, "config.toml"))
	assert.Equal(t, dataDir, cfg.DataDir())
	assert.Equal(t, "siliconflow", cfg.Provider.Type)
	assert.Equal(t, generation.DefaultOptions(), cfg.GenerationOptions())

	info, err := os.Stat(dataDir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())

	// the written template parses back to the defaults
	userCfg, err := LoadUserConfig(dataDir)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserConfig(), userCfg)
}

func TestLoadEnvOverrides(t *testing.T) {
	_, _ = isolate(t)
	t.Setenv("GENCHAT_PROVIDER", "OpenAI")
	t.Setenv("GENCHAT_BASE_URL", "http://localhost:9999/v1")
	t.Setenv("GENCHAT_API_KEY", "sk-test")
	t.Setenv("GENCHAT_DEBUG", "1")

	cfg, err := Load()
	require.NoError(t, err)

	pc := cfg.ProviderConfig()
	assert.Equal(t, provider.ProviderTypeOpenAI, pc.Type)
	assert.Equal(t, "http://localhost:9999/v1", pc.BaseURL)
	assert.Equal(t, "sk-test", pc.APIKey)
	assert.True(t, cfg.Debug)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoadUserConfigPartialFile(t *testing.T) {
	dataDir := t.TempDir()
	content := `
[provider]
api_key = "sk-abc"

[generation]
poll_interval = "5s"
context_window = 8
download_videos = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte(content), 0600))

	cfg, err := LoadUserConfig(dataDir)
	require.NoError(t, err)
	assert.Equal(t, "sk-abc", cfg.Provider.APIKey)
	assert.Equal(t, "siliconflow", cfg.Provider.Type)

	c := &Config{UserConfig: *cfg}
	opts := c.GenerationOptions()
	assert.Equal(t, 5*time.Second, opts.PollInterval)
	assert.Equal(t, 8, opts.ContextWindow)
	assert.True(t, opts.DownloadVideos)
	assert.Equal(t, generation.DefaultMaxPolls, opts.MaxPolls)
	assert.Equal(t, generation.DefaultTextModel, opts.TextModel)
}

func TestLoadUserConfigRejectsUnknownKeys(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte("[generation]\nmax_pols = 3\n"), 0600))

	_, err := LoadUserConfig(dataDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_pols")
}

func TestSaveUserConfigRoundTrip(t *testing.T) {
	dataDir := t.TempDir()
	cfg := DefaultUserConfig()
	cfg.Provider.APIKey = "sk-round"
	cfg.Generation.MaxPolls = 42

	require.NoError(t, SaveUserConfig(cfg, dataDir))
	info, err := os.Stat(filepath.Join(dataDir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadUserConfig(dataDir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing api key", func(c *Config) { c.Provider.APIKey = "" }, true},
		{"ollama needs no key", func(c *Config) { c.Provider.Type = "ollama"; c.Provider.APIKey = "" }, false},
		{"unknown provider", func(c *Config) { c.Provider.Type = "gemini" }, true},
		{"negative window", func(c *Config) { c.Generation.ContextWindow = -1 }, true},
		{"negative poll errors", func(c *Config) { c.Generation.MaxPollErrors = -2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{DataDirectory: t.TempDir(), UserConfig: *DefaultUserConfig()}
			cfg.Provider.APIKey = "sk-valid"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLevel("warn", false))
	assert.Equal(t, slog.LevelError, parseLevel("ERROR", true))
	assert.Equal(t, slog.LevelInfo, parseLevel("", false))
	assert.Equal(t, slog.LevelDebug, parseLevel("", true))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose", false))
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, "/home/tester/.local/share/genchat", ExpandPath("~/.local/share/genchat"))
	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/a/b", ExpandPath("/a//b/"))
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var text, json bytes.Buffer
	logger := SetupLoggerWithWriters(&text, &json, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("video ready", "request_id", "r1")

	assert.Contains(t, text.String(), "request_id=r1")
	assert.NotContains(t, text.String(), "hidden")
	assert.Contains(t, json.String(), `"request_id":"r1"`)
}

func TestSetupLogger(t *testing.T) {
	dir := t.TempDir()

	logger, cleanup := SetupLogger(dir, false, slog.LevelDebug)
	logger.Info("discarded")
	require.NoError(t, cleanup())
	assert.NoFileExists(t, filepath.Join(dir, "debug.log"))

	logger, cleanup = SetupLogger(dir, true, slog.LevelDebug)
	logger.Info("kept")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(filepath.Join(dir, "debug.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept")
	assert.FileExists(t, filepath.Join(dir, "debug.jsonl"))
}
