package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadDotEnv reads .env into the process environment. A missing file is not
// an error for the caller to act on; it is returned so it can be logged.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load reads the optional YAML file at path and applies environment overrides.
// Nested keys map to upper-case env names with dots replaced by underscores,
// e.g. vapid.public_key -> VAPID_PUBLIC_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	v.SetDefault("port", 5555)
	v.SetDefault("static_dir", "public")
	v.SetDefault("data_dir", "data")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("metrics_addr", ":9090")
	v.SetDefault("database_url", "")

	v.SetDefault("vapid.public_key", "")
	v.SetDefault("vapid.private_key", "")
	v.SetDefault("vapid.subscriber", "https://github.com/devonfw-ng-adv-training")

	v.SetDefault("push.ttl", 30)
	v.SetDefault("push.timeout", "10s")
	v.SetDefault("push.rate_per_sec", 0)
	v.SetDefault("push.prune_expired", false)

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "secret")
	v.SetDefault("admin.password_hash", "")
	v.SetDefault("admin.totp_secret", "")

	v.SetDefault("session.secret", "secret-key-change-in-production")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("schedule.tick", "1s")
	v.SetDefault("schedule.catch_up", true)
	v.SetDefault("schedule.broadcasts", []map[string]any{})

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
