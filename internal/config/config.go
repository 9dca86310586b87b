// Package config aggregates server configuration from environment
// variables. The .env file itself is loaded by main via godotenv.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every service setting.
type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	Store  StoreConfig
	Assist AssistConfig
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
}

// Addr normalizes PORT into a listen address; ":8080" and
// "127.0.0.1:8080" are accepted as-is.
func (c ServerConfig) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// AuthConfig describes the admin credential and token settings.
type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	AdminUser     string        `env:"ADMIN_USER" envDefault:"admin"`
	AdminPassword string        `env:"ADMIN_PASSWORD" envDefault:"admin"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
}

// StoreConfig locates the chat database.
type StoreConfig struct {
	Path string `env:"CHAT_DB_PATH" envDefault:"chat.db"`
}

// AssistConfig holds the Ark credentials for reply suggestions.
type AssistConfig struct {
	APIKey  string `env:"ARK_API_KEY"`
	Model   string `env:"ARK_MODEL"`
	BaseURL string `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	Region  string `env:"ARK_REGION" envDefault:"cn-beijing"`
}

// Enabled reports whether the required credentials were provided.
func (c AssistConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// NewChatModel builds a model instance from the configuration.
func (c AssistConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ARK_API_KEY and ARK_MODEL are required for reply suggestions")
	}
	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL: c.BaseURL,
		Region:  c.Region,
		APIKey:  c.APIKey,
		Model:   c.Model,
	})
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if strings.Contains(cfg.Server.Port, " ") {
		return nil, fmt.Errorf("invalid PORT value: %q", cfg.Server.Port)
	}
	if strings.TrimSpace(cfg.Store.Path) == "" {
		return nil, fmt.Errorf("CHAT_DB_PATH must not be empty")
	}
	return &cfg, nil
}
