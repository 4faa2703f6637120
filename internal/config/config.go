package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds server configuration loaded from environment variables.
type Config struct {
	Port            string
	DBPath          string
	SecretKey       string
	TokenTTLMinutes int
	RedisAddr       string
	RedisPassword   string
	LogLevel        string
	LogPretty       bool
}

// Load reads configuration from environment variables with sensible defaults.
// REDIS_ADDR is optional; when empty the chat history runs memory-only.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_PATH", "noteboard.db")
	v.SetDefault("SECRET_KEY", "dev-secret-change-me")
	v.SetDefault("TOKEN_TTL_MINUTES", 60)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)

	cfg := Config{
		Port:            v.GetString("PORT"),
		DBPath:          v.GetString("DB_PATH"),
		SecretKey:       v.GetString("SECRET_KEY"),
		TokenTTLMinutes: v.GetInt("TOKEN_TTL_MINUTES"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogPretty:       v.GetBool("LOG_PRETTY"),
	}
	if cfg.TokenTTLMinutes <= 0 {
		cfg.TokenTTLMinutes = 60
	}
	return cfg
}

// TokenTTL returns the access token lifetime as a duration.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}
