package config

import (
	"genchat/generation"
	"genchat/provider"
)

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/genchat",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Provider: ProviderSection{
			Type:    string(provider.ProviderTypeSiliconFlow),
			BaseURL: provider.DefaultSiliconFlowURL,
		},
		Models: ModelsSection{
			Text:       generation.DefaultTextModel,
			Image:      generation.DefaultImageModel,
			VideoText:  generation.DefaultVideoTextModel,
			VideoImage: generation.DefaultVideoImageModel,
		},
		Generation: GenerationSection{
			SystemPrompt:    generation.DefaultSystemPrompt,
			ContextWindow:   generation.DefaultContextWindow,
			SummaryMaxWidth: generation.DefaultSummaryMaxWidth,
			ImageSize:       generation.DefaultImageSize,
			VideoTextSize:   generation.DefaultVideoTextSize,
			VideoImageSize:  generation.DefaultVideoImageSize,
			NegativePrompt:  generation.DefaultNegativePrompt,
			PollInterval:    generation.DefaultPollInterval,
			MaxPolls:        generation.DefaultMaxPolls,
			MaxPollErrors:   generation.DefaultMaxPollErrors,
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# genchat System Configuration
# Location: ~/.config/genchat/settings.toml
# This file uses TOML format: https://toml.io

# Directory where sessions, media and user config are stored
data_directory = "~/.local/share/genchat"
`
}

func GenerateUserConfigTemplate() string {
	return `# genchat User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[provider]
# siliconflow | openai | openrouter | ollama | anthropic
# Image and video generation need siliconflow (or another server with the same API).
type = "siliconflow"
base_url = "https://api.siliconflow.cn/v1"

# API key (GENCHAT_API_KEY overrides it)
api_key = ""

[models]
text = "Qwen/Qwen3-8B"
image = "Qwen/Qwen-Image"
video_text = "Lightricks/LTX-Video"
video_image = "Wan-AI/Wan2.2-I2V-A14B"

[generation]
system_prompt = "You are a helpful assistant. Keep answers concise and clear."

# Number of most recent successful messages sent as context
context_window = 20

# Display width of the history summary prepended to image/video prompts
summary_max_width = 600

image_size = "512x512"
video_text_size = "768x512"
video_image_size = "1280x720"

# Video jobs are polled every poll_interval, at most max_polls times.
# max_poll_errors consecutive failed status checks abort the job.
poll_interval = "3s"
max_polls = 500
max_poll_errors = 10

# Store finished videos in the data directory like images
download_videos = false
`
}
