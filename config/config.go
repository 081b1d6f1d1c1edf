package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure returned by Load and Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration. Values come from defaults,
// then an optional YAML file, then environment variables, then CLI flags.
type Config struct {
	MaxConcurrency     int           `yaml:"max_concurrency" validate:"min=1"`
	CityDelay          time.Duration `yaml:"city_delay" validate:"gte=0"`
	MaxRetries         int           `yaml:"max_retries" validate:"min=1"`
	RetryBaseDelay     time.Duration `yaml:"retry_base_delay" validate:"gte=0"`
	MaxListingsPerCity int           `yaml:"max_listings_per_city" validate:"min=1,max=50"`

	Fetcher        string        `yaml:"fetcher" validate:"oneof=chrome static"`
	BaseURL        string        `yaml:"base_url" validate:"required,url"`
	Headless       bool          `yaml:"headless"`
	ChromeBin      string        `yaml:"chrome_bin"`
	UserAgent      string        `yaml:"user_agent" validate:"required"`
	AcceptLanguage string        `yaml:"accept_language"`
	PageTimeout    time.Duration `yaml:"page_timeout" validate:"gt=0"`
	PageSettle     time.Duration `yaml:"page_settle" validate:"gte=0"`

	OutputPath   string `yaml:"output_path" validate:"required"`
	OutputFormat string `yaml:"output_format" validate:"oneof=json csv yaml all"`

	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogJSON  bool   `yaml:"log_json"`

	Prices   PriceBounds    `yaml:"prices"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// PriceBounds are the plausibility ranges the price parser filters with.
type PriceBounds struct {
	NightlyMin    float64 `yaml:"nightly_min" validate:"gt=0"`
	NightlyMax    float64 `yaml:"nightly_max" validate:"gtfield=NightlyMin"`
	FallbackMin   float64 `yaml:"fallback_min" validate:"gt=0"`
	FallbackMax   float64 `yaml:"fallback_max" validate:"gtfield=FallbackMin"`
	MonthlyMin    float64 `yaml:"monthly_min" validate:"gt=0"`
	MonthlyMax    float64 `yaml:"monthly_max" validate:"gtfield=MonthlyMin"`
	TotalMin      float64 `yaml:"total_min" validate:"gt=0"`
	TotalMax      float64 `yaml:"total_max" validate:"gtfield=TotalMin"`
	MaxStayNights int     `yaml:"max_stay_nights" validate:"min=1"`
}

// TelegramConfig enables progress notifications to a Telegram chat.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token" validate:"required_if=Enabled true"`
	ChatID   int64  `yaml:"chat_id" validate:"required_if=Enabled true"`
}

// DefaultPriceBounds returns the stock plausibility ranges.
func DefaultPriceBounds() PriceBounds {
	return PriceBounds{
		NightlyMin:    30,
		NightlyMax:    400,
		FallbackMin:   50,
		FallbackMax:   300,
		MonthlyMin:    800,
		MonthlyMax:    5000,
		TotalMin:      100,
		TotalMax:      8000,
		MaxStayNights: 31,
	}
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrency:     1,
		CityDelay:          5 * time.Second,
		MaxRetries:         3,
		RetryBaseDelay:     2 * time.Second,
		MaxListingsPerCity: 10,

		Fetcher:  "chrome",
		BaseURL:  "https://www.airbnb.com",
		Headless: true,
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		AcceptLanguage: "en-US,en;q=0.9",
		PageTimeout:    90 * time.Second,
		PageSettle:     5 * time.Second,

		OutputPath:   "airbnb-price-analysis.json",
		OutputFormat: "all",

		LogLevel: "info",
		Prices:   DefaultPriceBounds(),
	}
}

// Load reads the .env file, the optional YAML file at path and environment
// overrides, and returns a validated Config.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.MaxConcurrency = getEnvInt("MAX_CONCURRENCY", c.MaxConcurrency)
	c.CityDelay = getEnvDuration("CITY_DELAY", c.CityDelay)
	c.MaxRetries = getEnvInt("MAX_RETRIES", c.MaxRetries)
	c.MaxListingsPerCity = getEnvInt("MAX_LISTINGS_PER_CITY", c.MaxListingsPerCity)

	c.Fetcher = getEnv("FETCHER", c.Fetcher)
	c.BaseURL = getEnv("BASE_URL", c.BaseURL)
	c.Headless = getEnvBool("HEADLESS", c.Headless)
	c.ChromeBin = getEnv("CHROME_BIN", c.ChromeBin)
	c.UserAgent = getEnv("USER_AGENT", c.UserAgent)
	c.PageTimeout = getEnvDuration("PAGE_TIMEOUT", c.PageTimeout)

	c.OutputPath = getEnv("OUTPUT_PATH", c.OutputPath)
	c.OutputFormat = getEnv("OUTPUT_FORMAT", c.OutputFormat)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", c.Telegram.BotToken)
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID != 0 {
		c.Telegram.Enabled = getEnvBool("TELEGRAM_ENABLED", true)
	}
}

// Validate checks field constraints. Every failure wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
