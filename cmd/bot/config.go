package main

import (
	"fmt"
	"strings"

	"referral_giveaway_bot/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`
	Telegram TelegramConfig    `yaml:"telegram"`
	Promo    PromoConfig       `yaml:"promo"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type TelegramConfig struct {
	BotToken string  `yaml:"botToken"`
	Channel  string  `yaml:"channel"`
	AdminIDs []int64 `yaml:"adminIds"`
	Debug    bool    `yaml:"debug"`
	// AuthDebug skips init-data signature validation on the HTTP API.
	// Local development only; never enable in production.
	AuthDebug bool `yaml:"authDebug"`
}

type PromoConfig struct {
	RequiredInvites int `yaml:"requiredInvites"`
	MaxGifts        int `yaml:"maxGifts"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.SetDefault("promo.requiredInvites", 4)
	viper.SetDefault("promo.maxGifts", 20)
	viper.SetDefault("logLevel", "info")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Promo.RequiredInvites < 1 {
		return nil, fmt.Errorf("promo.requiredInvites must be a positive integer")
	}

	return &cfg, nil
}
