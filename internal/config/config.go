package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig       `toml:"app"`
	Auth      AuthConfig      `toml:"auth"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	RabbitMQ  RabbitMQConfig  `toml:"rabbitmq"`
	Listing   ListingConfig   `toml:"listing"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
}

type AppConfig struct {
	Name      string `toml:"name"`
	Env       string `toml:"env"`
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	GinMode   string `toml:"gin_mode"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// DatabaseConfig selects the gorm dialector. Driver is "mysql" or "postgres".
type DatabaseConfig struct {
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RabbitMQConfig with an empty URL disables review notices and the moderation worker.
type RabbitMQConfig struct {
	URL             string `toml:"url"`
	ReviewQueue     string `toml:"review_queue"`
	ModerationQueue string `toml:"moderation_queue"`
}

type AuthConfig struct {
	JWTSecret       string  `toml:"jwt_secret"`
	JWTExpireMinute int     `toml:"jwt_expire_minute"`
	CookieName      string  `toml:"cookie_name"`
	LoginRPS        float64 `toml:"login_rps"`
	LoginBurst      int     `toml:"login_burst"`
}

type ListingConfig struct {
	PageSize    int `toml:"page_size"`
	MaxPageSize int `toml:"max_page_size"`
	PageWindow  int `toml:"page_window"`
}

// RateLimitConfig controls the submission limiter. FailOpen decides what happens
// when the shared counter store cannot be reached: true admits the request,
// false rejects it.
type RateLimitConfig struct {
	SubmitRate string `toml:"submit_rate"`
	FailOpen   bool   `toml:"fail_open"`
	KeyPrefix  string `toml:"key_prefix"`
}

func Load() (*Config, error) {
	cfg := Default()

	// .env is optional; real environment variables still win over it.
	_ = godotenv.Load()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Listing.PageSize <= 0 {
		return fmt.Errorf("listing.page_size must be positive")
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) DatabaseDSN() string {
	if c.Database.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s %s",
			c.Database.Host,
			c.Database.Port,
			c.Database.User,
			c.Database.Password,
			c.Database.DB,
			c.Database.Params,
		)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DB,
		c.Database.Params,
	)
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:      "gopher-classifieds",
			Env:       "dev",
			Host:      "0.0.0.0",
			Port:      8080,
			GinMode:   "debug",
			LogLevel:  "info",
			LogFormat: "text",
		},
		Auth: AuthConfig{
			JWTSecret:       "change-me-in-production",
			JWTExpireMinute: 120,
			CookieName:      "classifieds_token",
			LoginRPS:        0.5,
			LoginBurst:      10,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "127.0.0.1",
			Port:     3306,
			User:     "root",
			Password: "",
			DB:       "classifieds",
			Params:   "parseTime=true&loc=Local&charset=utf8mb4",
		},
		Redis: RedisConfig{
			Addr:     "127.0.0.1:6379",
			Password: "",
			DB:       0,
		},
		RabbitMQ: RabbitMQConfig{
			URL:             "",
			ReviewQueue:     "posting.review",
			ModerationQueue: "posting.moderation",
		},
		Listing: ListingConfig{
			PageSize:    15,
			MaxPageSize: 100,
			PageWindow:  5,
		},
		RateLimit: RateLimitConfig{
			SubmitRate: "100/h",
			FailOpen:   true,
			KeyPrefix:  "ratelimit:commit",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.App.LogLevel = getEnv("LOG_LEVEL", cfg.App.LogLevel)
	cfg.App.LogFormat = getEnv("LOG_FORMAT", cfg.App.LogFormat)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTExpireMinute = getEnvAsInt("JWT_EXPIRE_MINUTE", cfg.Auth.JWTExpireMinute)
	cfg.Auth.CookieName = getEnv("AUTH_COOKIE_NAME", cfg.Auth.CookieName)
	cfg.Auth.LoginRPS = getEnvAsFloat("AUTH_LOGIN_RPS", cfg.Auth.LoginRPS)
	cfg.Auth.LoginBurst = getEnvAsInt("AUTH_LOGIN_BURST", cfg.Auth.LoginBurst)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvAsInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DB = getEnv("DB_NAME", cfg.Database.DB)
	cfg.Database.Params = getEnv("DB_PARAMS", cfg.Database.Params)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.ReviewQueue = getEnv("RABBITMQ_REVIEW_QUEUE", cfg.RabbitMQ.ReviewQueue)
	cfg.RabbitMQ.ModerationQueue = getEnv("RABBITMQ_MODERATION_QUEUE", cfg.RabbitMQ.ModerationQueue)

	cfg.Listing.PageSize = getEnvAsInt("LISTING_PAGE_SIZE", cfg.Listing.PageSize)
	cfg.Listing.MaxPageSize = getEnvAsInt("LISTING_MAX_PAGE_SIZE", cfg.Listing.MaxPageSize)
	cfg.Listing.PageWindow = getEnvAsInt("LISTING_PAGE_WINDOW", cfg.Listing.PageWindow)

	cfg.RateLimit.SubmitRate = getEnv("RATELIMIT_SUBMIT_RATE", cfg.RateLimit.SubmitRate)
	cfg.RateLimit.FailOpen = getEnvAsBool("RATELIMIT_FAIL_OPEN", cfg.RateLimit.FailOpen)
	cfg.RateLimit.KeyPrefix = getEnv("RATELIMIT_KEY_PREFIX", cfg.RateLimit.KeyPrefix)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
