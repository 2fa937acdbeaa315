package generation

import (
	"fmt"
	"time"
)

// Default generation settings.
const (
	DefaultTextModel       = "Qwen/Qwen3-8B"
	DefaultImageModel      = "Qwen/Qwen-Image"
	DefaultVideoTextModel  = "Lightricks/LTX-Video"
	DefaultVideoImageModel = "Wan-AI/Wan2.2-I2V-A14B"

	DefaultSystemPrompt    = "You are a helpful assistant. Keep answers concise and clear."
	DefaultContextWindow   = 20
	DefaultSummaryMaxWidth = 600

	DefaultImageSize      = "512x512"
	DefaultVideoTextSize  = "768x512"
	DefaultVideoImageSize = "1280x720"
	DefaultNegativePrompt = "oversaturated colors, overexposed, static, blurry details, subtitles, " +
		"still frame, grey tint, worst quality, low quality, JPEG artifacts, ugly, deformed, " +
		"extra fingers, poorly drawn hands, poorly drawn face, malformed limbs, fused fingers, " +
		"cluttered background, three legs, crowded background, walking backwards"

	DefaultPollInterval     = 3 * time.Second
	DefaultMaxPolls         = 500
	DefaultMaxPollErrors    = 10
	DefaultReconcileTimeout = 5 * time.Second

	maxSeed = 100000
)

// Options configures an Orchestrator.
type Options struct {
	TextModel       string
	ImageModel      string
	VideoTextModel  string
	VideoImageModel string

	SystemPrompt    string
	ContextWindow   int
	SummaryMaxWidth int

	ImageSize      string
	VideoTextSize  string
	VideoImageSize string
	NegativePrompt string

	PollInterval  time.Duration
	MaxPolls      int
	MaxPollErrors int

	// DownloadVideos stores finished videos locally like images.
	DownloadVideos bool

	// ReconcileTimeout bounds the terminal write made after the run's
	// context has been cancelled.
	ReconcileTimeout time.Duration
}

// DefaultOptions returns the stock settings.
func DefaultOptions() Options {
	return Options{
		TextModel:        DefaultTextModel,
		ImageModel:       DefaultImageModel,
		VideoTextModel:   DefaultVideoTextModel,
		VideoImageModel:  DefaultVideoImageModel,
		SystemPrompt:     DefaultSystemPrompt,
		ContextWindow:    DefaultContextWindow,
		SummaryMaxWidth:  DefaultSummaryMaxWidth,
		ImageSize:        DefaultImageSize,
		VideoTextSize:    DefaultVideoTextSize,
		VideoImageSize:   DefaultVideoImageSize,
		NegativePrompt:   DefaultNegativePrompt,
		PollInterval:     DefaultPollInterval,
		MaxPolls:         DefaultMaxPolls,
		MaxPollErrors:    DefaultMaxPollErrors,
		ReconcileTimeout: DefaultReconcileTimeout,
	}
}

// Validate rejects settings the poll loop or context builder cannot run with.
func (o Options) Validate() error {
	switch {
	case o.ContextWindow <= 0:
		return fmt.Errorf("context window must be positive, got %d", o.ContextWindow)
	case o.MaxPolls <= 0:
		return fmt.Errorf("max polls must be positive, got %d", o.MaxPolls)
	case o.MaxPollErrors < 0:
		return fmt.Errorf("max poll errors cannot be negative, got %d", o.MaxPollErrors)
	case o.PollInterval < 0:
		return fmt.Errorf("poll interval cannot be negative, got %s", o.PollInterval)
	case o.TextModel == "" || o.ImageModel == "" || o.VideoTextModel == "" || o.VideoImageModel == "":
		return fmt.Errorf("all model names must be set")
	}
	return nil
}

// VideoTimeout is the longest a video job can stay pending.
func (o Options) VideoTimeout() time.Duration {
	return time.Duration(o.MaxPolls) * o.PollInterval
}
