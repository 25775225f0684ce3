package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PRINTSHOP_ADMIN_PASSWORD.
const EnvPrefix = "PRINTSHOP"

// Transports accepted by server.transport.
const (
	TransportFiber = "fiber"
	TransportHTTP  = "http"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Admin    AdminConfig
	Session  SessionConfig
	Order    OrderConfig
	Charts   ChartsConfig
	Fixtures FixturesConfig
}

type ServerConfig struct {
	Address         string        `validate:"required"`
	Transport       string        `validate:"oneof=fiber http"`
	MaxUploadBytes  int64         `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gte=0s"`
}

type LogConfig struct {
	Level string
}

type AdminConfig struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type SessionConfig struct {
	TTL         time.Duration `validate:"gte=0s"`
	MaxSessions int           `validate:"gte=0"`
}

type OrderConfig struct {
	SubmitDelay time.Duration `validate:"gte=0s"`
}

type ChartsConfig struct {
	Theme      string
	AssetsHost string        `validate:"omitempty,url"`
	CacheTTL   time.Duration `validate:"gte=0s"`
}

type FixturesConfig struct {
	Path string
}

// Load reads defaults, an optional config file and PRINTSHOP_* environment
// overrides, in increasing precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.transport", TransportFiber)
	v.SetDefault("server.max_upload_bytes", 20<<20)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "password")
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.max_sessions", 10000)
	v.SetDefault("order.submit_delay", "2s")
	v.SetDefault("charts.theme", "westeros")
	v.SetDefault("charts.assets_host", "https://go-echarts.github.io/go-echarts-assets/assets/")
	v.SetDefault("charts.cache_ttl", "5m")
	v.SetDefault("fixtures.path", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			Transport:       strings.ToLower(v.GetString("server.transport")),
			MaxUploadBytes:  v.GetInt64("server.max_upload_bytes"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Admin: AdminConfig{
			Username: v.GetString("admin.username"),
			Password: v.GetString("admin.password"),
		},
		Session: SessionConfig{
			TTL:         v.GetDuration("session.ttl"),
			MaxSessions: v.GetInt("session.max_sessions"),
		},
		Order: OrderConfig{
			SubmitDelay: v.GetDuration("order.submit_delay"),
		},
		Charts: ChartsConfig{
			Theme:      v.GetString("charts.theme"),
			AssetsHost: v.GetString("charts.assets_host"),
			CacheTTL:   v.GetDuration("charts.cache_ttl"),
		},
		Fixtures: FixturesConfig{
			Path: v.GetString("fixtures.path"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
