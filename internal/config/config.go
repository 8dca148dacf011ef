package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// ConfigPathEnv names an optional YAML file; environment variables override its values.
const ConfigPathEnv = "RATE_CONVERTER_CONFIG"

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

type Config struct {
	RatesURL        string        `yaml:"rates_url" env:"NBU_API_URL" env-default:"https://bank.gov.ua/NBUStatService/v1/statdirectory/exchange?json"`
	HTTPTimeout     time.Duration `yaml:"http_timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	Timezone        string        `yaml:"timezone" env:"TIMEZONE" env-default:"Europe/Kyiv"`
	MetricsTextfile string        `yaml:"metrics_textfile" env:"METRICS_TEXTFILE"`
	Cache           CacheConfig   `yaml:"cache"`
	Log             LogConfig     `yaml:"log"`
}

type CacheConfig struct {
	Backend     string `yaml:"backend" env:"CACHE_BACKEND" env-default:"file"`
	Path        string `yaml:"path" env:"CACHE_PATH" env-default:"cache.json"`
	RedisURL    string `yaml:"redis_url" env:"REDIS_URL"`
	RedisKey    string `yaml:"redis_key" env:"REDIS_KEY" env-default:"rate-converter:nbu_rates"`
	StrictWrite bool   `yaml:"strict_write" env:"CACHE_STRICT_WRITE" env-default:"false"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"warn"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Load reads an optional .env file, then the YAML file at path (or $RATE_CONVERTER_CONFIG)
// if any, then the environment.
func Load(path string) (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to find config file: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	switch c.Cache.Backend {
	case BackendFile:
		if c.Cache.Path == "" {
			return errors.New("cache path is empty")
		}
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// NewLogger builds the process logger. "json" selects the JSON handler, "pretty" a
// styled human-readable handler, anything else plain text.
func (lc LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(lc.Level)
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(lc.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts))
	case "pretty":
		return slog.New(prettyHandler(w, level))
	default:
		return slog.New(slog.NewTextHandler(w, opts))
	}
}

func prettyHandler(w io.Writer, level slog.Level) *charmlog.Logger {
	styles := charmlog.DefaultStyles()
	styles.Levels[charmlog.ErrorLevel] = lipgloss.NewStyle().SetString("ERROR").Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"})
	styles.Levels[charmlog.WarnLevel] = lipgloss.NewStyle().SetString("WARN").Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"})
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	logger := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           charmlog.Level(level),
		Prefix:          "rate-converter",
	})
	logger.SetStyles(styles)
	return logger
}

// LogValue keeps the Redis password out of logs.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("rates_url", c.RatesURL),
		slog.Duration("http_timeout", c.HTTPTimeout),
		slog.String("timezone", c.Timezone),
		slog.String("cache_backend", c.Cache.Backend),
		slog.String("cache_path", c.Cache.Path),
		slog.String("redis_url", maskValue(c.Cache.RedisURL)),
		slog.Bool("strict_write", c.Cache.StrictWrite),
	)
}

func maskValue(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 6 {
		return "****"
	}
	return v[:2] + "****" + v[len(v)-4:]
}
