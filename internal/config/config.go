// Package config loads spybot settings from config.toml, .env and SPYBOT_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel  zerolog.Level
	LogFormat string

	BotToken       string
	HandlerTimeout time.Duration

	StorageDriver string
	StorageDSN    string

	InteractiveWorkers int
	NetworkWorkers     int
	QueueBuffer        int

	SocialAPIURL    string
	SocialWebURL    string
	SocialUserAgent string
	SocialTimeout   time.Duration

	CredentialSecret string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.log_level", "info")
	v.SetDefault("bot.log_format", "json")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("handler.timeout", "2m")
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "file:spybot.db")
	v.SetDefault("queue.interactive_workers", 1)
	v.SetDefault("queue.network_workers", 4)
	v.SetDefault("queue.buffer", 256)
	v.SetDefault("social.api_url", "https://api.twitter.com/1.1")
	v.SetDefault("social.web_url", "https://twitter.com")
	v.SetDefault("social.user_agent", "spybot")
	v.SetDefault("social.timeout", "20s")
	v.SetDefault("security.credential_secret", "")
}

// Load reads config.toml from dir if present. A missing file is fine; defaults and environment apply.
func Load(dir string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.SetEnvPrefix("spybot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	level, err := zerolog.ParseLevel(v.GetString("bot.log_level"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	handlerTimeout, err := time.ParseDuration(v.GetString("handler.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid handler.timeout: %w", err)
	}

	socialTimeout, err := time.ParseDuration(v.GetString("social.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid social.timeout: %w", err)
	}

	c := &Config{
		LogLevel:           level,
		LogFormat:          v.GetString("bot.log_format"),
		BotToken:           v.GetString("telegram.bot_token"),
		HandlerTimeout:     handlerTimeout,
		StorageDriver:      v.GetString("storage.driver"),
		StorageDSN:         v.GetString("storage.dsn"),
		InteractiveWorkers: v.GetInt("queue.interactive_workers"),
		NetworkWorkers:     v.GetInt("queue.network_workers"),
		QueueBuffer:        v.GetInt("queue.buffer"),
		SocialAPIURL:       v.GetString("social.api_url"),
		SocialWebURL:       strings.TrimRight(v.GetString("social.web_url"), "/"),
		SocialUserAgent:    v.GetString("social.user_agent"),
		SocialTimeout:      socialTimeout,
		CredentialSecret:   v.GetString("security.credential_secret"),
	}

	if c.InteractiveWorkers < 1 || c.NetworkWorkers < 1 {
		return nil, errors.New("queue worker counts must be at least 1")
	}
	if c.QueueBuffer < 1 {
		return nil, errors.New("queue.buffer must be at least 1")
	}

	return c, nil
}
