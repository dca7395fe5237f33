package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL    string        `mapstructure:"database_url"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTExpiration  time.Duration `mapstructure:"jwt_expiration"`
	ServerPort     string        `mapstructure:"server_port"`
	MetricsEnabled bool          `mapstructure:"metrics_enabled"`
}

// Load reads configuration from the environment (LIVEADMIN_* variables)
// with local-dev defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LIVEADMIN")
	v.AutomaticEnv()

	v.SetDefault("database_url", "postgresql://postgres@localhost:5432/liveadmin")
	v.SetDefault("jwt_secret", "your-super-secret-key-change-in-production")
	v.SetDefault("jwt_expiration", 24*time.Hour)
	v.SetDefault("server_port", "8080")
	v.SetDefault("metrics_enabled", true)

	// AutomaticEnv alone does not surface env vars through Unmarshal, so
	// bind each key explicitly.
	for _, key := range []string{
		"database_url", "jwt_secret", "jwt_expiration", "server_port", "metrics_enabled",
	} {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
