// Package config manages application configuration from default values,
// an optional config.yaml file, and BOT_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/go-telegram/bot/models"
)

// Config defines the application configuration for all components of the
// pressbot system. Values can be set in config.yaml or via environment
// variables prefixed with BOT_ (e.g. BOT_TELEGRAM_TOKEN).
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds bot credentials and the publication target.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
	// TargetChatID is the channel or group the approved posts are
	// published to.
	TargetChatID int64 `mapstructure:"target_chat_id" validate:"required"`
	// AdminUserID is allowed to run administrative commands like /reset.
	AdminUserID int64 `mapstructure:"admin_user_id" validate:"required,gt=0"`

	// BotInfo is filled at startup from GetMe, not from configuration.
	BotInfo *models.User `mapstructure:"-"`
}

// GeminiConfig holds the AI backend settings.
type GeminiConfig struct {
	APIKey     string        `mapstructure:"api_key"     validate:"required"`
	TextModel  string        `mapstructure:"text_model"  validate:"required"`
	ImageModel string        `mapstructure:"image_model" validate:"required"`
	// MaxAttempts bounds each backend call; RetryDelay is the first
	// backoff interval and doubles on every retry.
	MaxAttempts int           `mapstructure:"max_attempts" validate:"required,min=1,max=10"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"  validate:"required,min=100ms,max=1m"`
	Temperature float32       `mapstructure:"temperature"  validate:"min=0,max=2"`
}

// StorageConfig locates the pending-post snapshot file.
type StorageConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// DatabaseConfig locates the published-post archive database.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig controls background maintenance jobs.
type SchedulerConfig struct {
	// MaintenanceCron is the cron expression for the nightly archive
	// maintenance job.
	MaintenanceCron string `mapstructure:"maintenance_cron" validate:"required"`
}

// MessagesConfig holds every user-visible message template.
type MessagesConfig struct {
	Welcome          string `mapstructure:"welcome"            validate:"required"`
	NotAuthorized    string `mapstructure:"not_authorized"     validate:"required"`
	Processing       string `mapstructure:"processing"         validate:"required"`
	GeneratingImage  string `mapstructure:"generating_image"   validate:"required"`
	ProcessingError  string `mapstructure:"processing_error"   validate:"required"`
	PostNotFound     string `mapstructure:"post_not_found"     validate:"required"`
	PostPublished    string `mapstructure:"post_published"     validate:"required"`
	PostCancelled    string `mapstructure:"post_cancelled"     validate:"required"`
	SendError        string `mapstructure:"send_error"         validate:"required"`
	PromptAIEdit     string `mapstructure:"prompt_ai_edit"     validate:"required"`
	PromptManualEdit string `mapstructure:"prompt_manual_edit" validate:"required"`
	PromptImage      string `mapstructure:"prompt_image"       validate:"required"`
	NeedImage        string `mapstructure:"need_image"         validate:"required"`
	EditError        string `mapstructure:"edit_error"         validate:"required"`
	ImageError       string `mapstructure:"image_error"        validate:"required"`
	OperationDone    string `mapstructure:"operation_done"     validate:"required"`
	ResetDone        string `mapstructure:"reset_done"         validate:"required"`
	ResetError       string `mapstructure:"reset_error"        validate:"required"`
	RecentHeader     string `mapstructure:"recent_header"      validate:"required"`
	RecentEmpty      string `mapstructure:"recent_empty"       validate:"required"`
	RecentError      string `mapstructure:"recent_error"       validate:"required"`
}

// Load reads configuration in precedence order (defaults, config.yaml,
// BOT_* environment variables) and validates the result. A missing config
// file is fine; missing required values are not and abort startup.
func Load() (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("BOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.json", true)

	viper.SetDefault("gemini.text_model", "gemini-2.5-pro-preview-03-25")
	viper.SetDefault("gemini.image_model", "gemini-2.5-flash-image-preview")
	viper.SetDefault("gemini.max_attempts", 3)
	viper.SetDefault("gemini.retry_delay", time.Second)
	viper.SetDefault("gemini.temperature", 1.0)

	viper.SetDefault("storage.path", "post_storage.json")
	viper.SetDefault("database.path", "archive.db")
	viper.SetDefault("scheduler.maintenance_cron", "0 4 * * *")

	viper.SetDefault("messages.welcome", "👋 Send me a news item (text, or a photo/video with a caption) and I'll prepare a post for the channel.")
	viper.SetDefault("messages.not_authorized", "🚫 Access denied. Please contact the administrator.")
	viper.SetDefault("messages.processing", "⏳ Processing the news item...")
	viper.SetDefault("messages.generating_image", "⏳ Generating a new image...")
	viper.SetDefault("messages.processing_error", "❌ Failed to process the news item:\n%s\n\nPlease try sending it again.")
	viper.SetDefault("messages.post_not_found", "❌ Post data not found")
	viper.SetDefault("messages.post_published", "✅ Post published!\n\n%s")
	viper.SetDefault("messages.post_cancelled", "❌ Cancelled")
	viper.SetDefault("messages.send_error", "❌ Failed to publish: %s")
	viper.SetDefault("messages.prompt_ai_edit", "✏️ Describe how to change the text.\nFor example: 'make it shorter' or 'add emoji'")
	viper.SetDefault("messages.prompt_manual_edit", "✏️ Send the new post text")
	viper.SetDefault("messages.prompt_image", "📤 Send the image you want to use")
	viper.SetDefault("messages.need_image", "❌ Please send an image.")
	viper.SetDefault("messages.edit_error", "❌ Failed to edit the text: %s")
	viper.SetDefault("messages.image_error", "❌ Failed to generate an image: %s")
	viper.SetDefault("messages.operation_done", "✅ Operation cancelled")
	viper.SetDefault("messages.reset_done", "✅ All data has been reset. You can start over.")
	viper.SetDefault("messages.reset_error", "❌ Failed to reset data. Please try again.")
	viper.SetDefault("messages.recent_header", "🗞 Recently published posts:")
	viper.SetDefault("messages.recent_empty", "📭 Nothing has been published yet.")
	viper.SetDefault("messages.recent_error", "❌ Failed to load recent posts: %s")
}
