package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries every runtime setting. The signing secret is handed to the
// token codec at construction; nothing reads it from process globals later.
type Config struct {
	Addr        string        `mapstructure:"addr"`
	DatabaseDSN string        `mapstructure:"database_dsn"`
	AuthSecret  string        `mapstructure:"auth_secret"`
	Issuer      string        `mapstructure:"issuer"`
	AccessTTL   time.Duration `mapstructure:"access_ttl"`
	RefreshTTL  time.Duration `mapstructure:"refresh_ttl"`

	RateLimit struct {
		Burst     int `mapstructure:"burst"`
		PerSecond int `mapstructure:"per_second"`
	} `mapstructure:"rate_limit"`

	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
}

// Load reads configuration from an optional config.yaml plus AGENCYHUB_*
// environment variables and applies defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("AGENCYHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	// Registering defaults makes env-only values visible to Unmarshal.
	v.SetDefault("database_dsn", "")
	v.SetDefault("auth_secret", "")
	v.SetDefault("issuer", "agencyhub")
	v.SetDefault("access_ttl", 15*time.Minute)
	v.SetDefault("refresh_ttl", 7*24*time.Hour)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.per_second", 10)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
		// No file is fine; env vars and defaults still apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.AuthSecret) == "" {
		return Config{}, errors.New("config: auth_secret is required (AGENCYHUB_AUTH_SECRET)")
	}
	return cfg, nil
}
