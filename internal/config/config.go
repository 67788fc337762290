package config

import (
	"errors"
	"fmt"
	"time"
)

type VAPIDCfg struct {
	PublicKey  string `mapstructure:"public_key"`
	PrivateKey string `mapstructure:"private_key"`
	Subscriber string `mapstructure:"subscriber"`
}

type PushCfg struct {
	TTL          int           `mapstructure:"ttl"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RatePerSec   int           `mapstructure:"rate_per_sec"`
	PruneExpired bool          `mapstructure:"prune_expired"`
}

type AdminCfg struct {
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	PasswordHash string `mapstructure:"password_hash"`
	TOTPSecret   string `mapstructure:"totp_secret"`
}

type SessionCfg struct {
	Secret string `mapstructure:"secret"`
}

type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// BroadcastCfg is one broadcast fired once at At (RFC3339).
type BroadcastCfg struct {
	At       string `mapstructure:"at"`
	Title    string `mapstructure:"title"`
	Body     string `mapstructure:"body"`
	Category string `mapstructure:"category"`
}

func (b BroadcastCfg) FireAt() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, b.At)
	if err != nil {
		return time.Time{}, fmt.Errorf("broadcast %q: invalid at %q: %w", b.Title, b.At, err)
	}
	return t.UTC(), nil
}

type ScheduleCfg struct {
	Tick       time.Duration  `mapstructure:"tick"`
	CatchUp    bool           `mapstructure:"catch_up"`
	Broadcasts []BroadcastCfg `mapstructure:"broadcasts"`
}

type Config struct {
	Port        int         `mapstructure:"port"`
	StaticDir   string      `mapstructure:"static_dir"`
	DataDir     string      `mapstructure:"data_dir"`
	LogLevel    string      `mapstructure:"log_level"`
	LogPretty   bool        `mapstructure:"log_pretty"`
	MetricsAddr string      `mapstructure:"metrics_addr"`
	DatabaseURL string      `mapstructure:"database_url"`
	VAPID       VAPIDCfg    `mapstructure:"vapid"`
	Push        PushCfg     `mapstructure:"push"`
	Admin       AdminCfg    `mapstructure:"admin"`
	Session     SessionCfg  `mapstructure:"session"`
	Redis       RedisCfg    `mapstructure:"redis"`
	Schedule    ScheduleCfg `mapstructure:"schedule"`
}

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Schedule.Tick <= 0 {
		errs = append(errs, fmt.Errorf("schedule.tick must be positive, got %s", c.Schedule.Tick))
	}
	if c.Admin.Username == "" {
		errs = append(errs, errors.New("admin.username is required"))
	}
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		errs = append(errs, errors.New("admin.password or admin.password_hash is required"))
	}
	for _, b := range c.Schedule.Broadcasts {
		if _, err := b.FireAt(); err != nil {
			errs = append(errs, err)
		}
		if b.Title == "" {
			errs = append(errs, fmt.Errorf("broadcast at %s has no title", b.At))
		}
	}
	return errors.Join(errs...)
}
