package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Address       string `yaml:"address"`
		SessionSecret string `yaml:"session_secret"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Bootstrap struct {
		AdminUsername string `yaml:"admin_username"`
		AdminPassword string `yaml:"admin_password"`
	} `yaml:"bootstrap"`
	TOTP struct {
		Issuer string `yaml:"issuer"`
	} `yaml:"totp"`
	Notifications struct {
		Enabled          bool   `yaml:"enabled"`
		TelegramBotToken string `yaml:"telegram_bot_token"`
		ChatID           int64  `yaml:"chat_id"`
	} `yaml:"notifications"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if config.Server.Address == "" {
		config.Server.Address = ":5000"
	}
	if config.Database.Path == "" {
		config.Database.Path = "database.db"
	}
	if config.Bootstrap.AdminUsername == "" {
		config.Bootstrap.AdminUsername = "admin"
	}
	if config.Bootstrap.AdminPassword == "" {
		config.Bootstrap.AdminPassword = "admin123"
	}
	if config.TOTP.Issuer == "" {
		config.TOTP.Issuer = "otpdesk"
	}

	return config, nil
}
