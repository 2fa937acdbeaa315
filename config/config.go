package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"genchat/generation"
	"genchat/provider"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type ProviderSection struct {
	Type    string `toml:"type"`
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

type ModelsSection struct {
	Text       string `toml:"text"`
	Image      string `toml:"image"`
	VideoText  string `toml:"video_text"`
	VideoImage string `toml:"video_image"`
}

type GenerationSection struct {
	SystemPrompt    string        `toml:"system_prompt"`
	ContextWindow   int           `toml:"context_window"`
	SummaryMaxWidth int           `toml:"summary_max_width"`
	ImageSize       string        `toml:"image_size"`
	VideoTextSize   string        `toml:"video_text_size"`
	VideoImageSize  string        `toml:"video_image_size"`
	NegativePrompt  string        `toml:"negative_prompt"`
	PollInterval    time.Duration `toml:"poll_interval"`
	MaxPolls        int           `toml:"max_polls"`
	MaxPollErrors   int           `toml:"max_poll_errors"`
	DownloadVideos  bool          `toml:"download_videos"`
}

type UserConfig struct {
	Provider   ProviderSection   `toml:"provider"`
	Models     ModelsSection     `toml:"models"`
	Generation GenerationSection `toml:"generation"`
}

type Config struct {
	DataDirectory string
	UserConfig

	Debug    bool
	LogLevel slog.Level
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// ProviderConfig returns the settings for provider.NewProvider.
func (c *Config) ProviderConfig() provider.Config {
	t := provider.MapProviderIDToType(c.Provider.Type)
	baseURL := c.Provider.BaseURL
	if baseURL == "" {
		baseURL = provider.DefaultBaseURL(t)
	}
	return provider.Config{
		Type:    t,
		BaseURL: baseURL,
		APIKey:  c.Provider.APIKey,
	}
}

// GenerationOptions maps the [models] and [generation] sections onto the
// orchestrator settings. Zero values keep the built-in defaults.
func (c *Config) GenerationOptions() generation.Options {
	opts := generation.DefaultOptions()
	m, g := c.Models, c.Generation

	setString(&opts.TextModel, m.Text)
	setString(&opts.ImageModel, m.Image)
	setString(&opts.VideoTextModel, m.VideoText)
	setString(&opts.VideoImageModel, m.VideoImage)

	setString(&opts.SystemPrompt, g.SystemPrompt)
	setString(&opts.ImageSize, g.ImageSize)
	setString(&opts.VideoTextSize, g.VideoTextSize)
	setString(&opts.VideoImageSize, g.VideoImageSize)
	setString(&opts.NegativePrompt, g.NegativePrompt)

	if g.ContextWindow != 0 {
		opts.ContextWindow = g.ContextWindow
	}
	if g.SummaryMaxWidth != 0 {
		opts.SummaryMaxWidth = g.SummaryMaxWidth
	}
	if g.PollInterval != 0 {
		opts.PollInterval = g.PollInterval
	}
	if g.MaxPolls != 0 {
		opts.MaxPolls = g.MaxPolls
	}
	if g.MaxPollErrors != 0 {
		opts.MaxPollErrors = g.MaxPollErrors
	}
	opts.DownloadVideos = g.DownloadVideos
	return opts
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

// Validate rejects configurations the client cannot run with.
func (c *Config) Validate() error {
	t := provider.MapProviderIDToType(c.Provider.Type)
	if !provider.IsKnownType(t) {
		return fmt.Errorf("unknown provider type %q", c.Provider.Type)
	}
	if t != provider.ProviderTypeOllama && c.Provider.APIKey == "" {
		return fmt.Errorf("provider %s needs an api key: set api_key in %s or GENCHAT_API_KEY", t, userConfigPath(c.DataDir()))
	}
	if err := c.GenerationOptions().Validate(); err != nil {
		return fmt.Errorf("invalid [generation] settings: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GENCHAT_PROVIDER"); v != "" {
		c.Provider.Type = v
	}
	if v := os.Getenv("GENCHAT_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("GENCHAT_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	c.Debug = CheckDebug()
	c.LogLevel = parseLevel(os.Getenv("GENCHAT_LOG_LEVEL"), c.Debug)
}

func CheckDebug() bool {
	debug, _ := strconv.ParseBool(os.Getenv("GENCHAT_DEBUG"))
	return debug
}

func parseLevel(s string, debug bool) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		if debug {
			return slog.LevelDebug
		}
		return slog.LevelInfo
	}
	return level
}

// Load reads settings.toml and the user config, creating both from
// templates on first run, then applies GENCHAT_* overrides.
func Load() (*Config, error) {
	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	cfg := &Config{DataDirectory: systemCfg.DataDirectory}
	if dataDir := os.Getenv("GENCHAT_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}

	dataDir := cfg.DataDir()
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.UserConfig = *userCfg
	cfg.applyEnvOverrides()

	return cfg, nil
}
