package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/merrkry/tgsweep/internal/telegram"
)

const (
	KeyBotToken      = "bot_token"
	KeyListenAddr    = "listen_addr"
	KeyWebhookPath   = "webhook_path"
	KeyPublicURL     = "public_url"
	KeyAPIURL        = "telegram_api_url"
	KeyDeleteTimeout = "delete_timeout"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
)

type Config struct {
	BotToken      string
	ListenAddr    string
	WebhookPath   string
	PublicURL     string
	APIURL        string
	DeleteTimeout time.Duration
	LogLevel      string
	LogFormat     string
}

// NewViper returns a viper instance with defaults set and environment
// variables bound, e.g. BOT_TOKEN for bot_token.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyListenAddr, ":8080")
	v.SetDefault(KeyWebhookPath, "/webhook")
	v.SetDefault(KeyAPIURL, telegram.DefaultBaseURL)
	v.SetDefault(KeyDeleteTimeout, telegram.DefaultDeleteTimeout)
	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault(KeyLogFormat, "text")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about.
	v.BindEnv(KeyBotToken)
	v.BindEnv(KeyPublicURL)
	return v
}

// Load reads the configuration once; the bot token may be empty, which the
// webhook handler reports as a configuration error.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = NewViper()
	}
	cfg := &Config{
		BotToken:      strings.TrimSpace(v.GetString(KeyBotToken)),
		ListenAddr:    v.GetString(KeyListenAddr),
		WebhookPath:   v.GetString(KeyWebhookPath),
		PublicURL:     v.GetString(KeyPublicURL),
		APIURL:        strings.TrimRight(v.GetString(KeyAPIURL), "/"),
		DeleteTimeout: v.GetDuration(KeyDeleteTimeout),
		LogLevel:      v.GetString(KeyLogLevel),
		LogFormat:     strings.ToLower(v.GetString(KeyLogFormat)),
	}

	if !strings.HasPrefix(cfg.WebhookPath, "/") {
		cfg.WebhookPath = "/" + cfg.WebhookPath
	}
	if cfg.DeleteTimeout <= 0 {
		return nil, fmt.Errorf("invalid %s %q", KeyDeleteTimeout, v.GetString(KeyDeleteTimeout))
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}
	return cfg, nil
}

// NewLogger builds the process logger from the configured level and format.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(c.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("unknown log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
