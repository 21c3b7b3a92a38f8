package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	LogLevel       string        `mapstructure:"log_level"`
	StaticPath     string        `mapstructure:"static_path"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	Secret         string        `mapstructure:"secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	RoomCodeLength int           `mapstructure:"room_code_length"`
	Backpressure   string        `mapstructure:"backpressure"`

	RateLimit RateLimit `mapstructure:"rate_limit"`
	Store     Store     `mapstructure:"store"`
	Persist   Persist   `mapstructure:"persist"`
	Upload    Upload    `mapstructure:"upload"`
	CORS      CORS      `mapstructure:"cors"`
}

type RateLimit struct {
	Messages int           `mapstructure:"messages"`
	Interval time.Duration `mapstructure:"interval"`
}

type Store struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type Persist struct {
	Debounce      time.Duration `mapstructure:"debounce"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

type Upload struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
	BaseURL  string `mapstructure:"base_url"`
}

type CORS struct {
	Origins []string `mapstructure:"origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("token_ttl", "72h")
	v.SetDefault("room_code_length", 6)
	v.SetDefault("backpressure", "kick")
	v.SetDefault("rate_limit.messages", 10)
	v.SetDefault("rate_limit.interval", "5s")
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", "./data")
	v.SetDefault("store.dsn", "")
	v.SetDefault("persist.debounce", "200ms")
	v.SetDefault("persist.retry_interval", "5s")
	v.SetDefault("upload.dir", "./uploads")
	v.SetDefault("upload.max_bytes", 50<<20)
	v.SetDefault("upload.base_url", "/media")
	v.SetDefault("cors.origins", []string{"*"})
}

// Load reads .env, then config/config.<CONFIG_ENV>.yaml, then PUNK_*
// environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("module", "config").Msg("failed to read .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("PUNK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("config ready")
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Secret == "" {
		if c.Mode == "release" {
			return errors.New("secret must be set in release mode")
		}
		c.Secret = "dev-secret-change-me"
		log.Warn().Str("module", "config").Msg("using development secret")
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("send_buffer must be positive, got %d", c.SendBuffer)
	}
	if c.RateLimit.Messages <= 0 || c.RateLimit.Interval <= 0 {
		return errors.New("rate_limit needs positive messages and interval")
	}
	return nil
}
