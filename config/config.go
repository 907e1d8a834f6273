package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Log      LogConfig
	DB       DBConfig
	Redis    RedisConfig
	Session  SessionConfig
	Analysis AnalysisConfig
	Seed     SeedConfig
}

type AppConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type LogConfig struct {
	Level string
	File  string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the keyword/value connection string used by the gorm driver.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

// MigrateURL returns the URL form understood by the golang-migrate pgx/v5 driver.
func (c DBConfig) MigrateURL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SessionConfig struct {
	Secret        string
	CookieName    string
	TTL           time.Duration
	CookieSecure  bool
	StoreTimeout  time.Duration
	SweepInterval time.Duration
}

type AnalysisConfig struct {
	Command  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type SeedConfig struct {
	Password string
}

const (
	DefaultCookieName   = "mentalwell_current_user"
	DefaultSessionTTL   = 7 * 24 * time.Hour
	DefaultStoreTimeout = 3 * time.Second
	DefaultSweepPeriod  = 15 * time.Minute

	DefaultAnalysisTimeout  = 2 * time.Minute
	DefaultAnalysisCacheTTL = 5 * time.Minute
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_COOKIE_NAME", DefaultCookieName)
	v.SetDefault("SESSION_TTL", DefaultSessionTTL.String())
	v.SetDefault("SESSION_COOKIE_SECURE", true)
	v.SetDefault("STORE_TIMEOUT", DefaultStoreTimeout.String())
	v.SetDefault("SESSION_SWEEP_INTERVAL", DefaultSweepPeriod.String())
	v.SetDefault("ANALYSIS_COMMAND", "python scripts/data_analysis.py")
	v.SetDefault("ANALYSIS_TIMEOUT", "2m")
	v.SetDefault("ANALYSIS_CACHE_TTL", "5m")
}

// LoadConfig reads .env from the working directory when present and lets
// environment variables override it.
func LoadConfig() (*Config, error) {
	return Load(viper.GetViper(), ".env")
}

func Load(v *viper.Viper, file string) (*Config, error) {
	setDefaults(v)
	v.SetConfigFile(file)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	sessionTTL, err := time.ParseDuration(v.GetString("SESSION_TTL"))
	if err != nil || sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}

	storeTimeout, err := time.ParseDuration(v.GetString("STORE_TIMEOUT"))
	if err != nil || storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}

	sweepInterval, err := time.ParseDuration(v.GetString("SESSION_SWEEP_INTERVAL"))
	if err != nil || sweepInterval <= 0 {
		sweepInterval = DefaultSweepPeriod
	}

	analysisTimeout, err := time.ParseDuration(v.GetString("ANALYSIS_TIMEOUT"))
	if err != nil || analysisTimeout <= 0 {
		analysisTimeout = DefaultAnalysisTimeout
	}

	analysisCacheTTL, err := time.ParseDuration(v.GetString("ANALYSIS_CACHE_TTL"))
	if err != nil || analysisCacheTTL <= 0 {
		analysisCacheTTL = DefaultAnalysisCacheTTL
	}

	config := &Config{
		App: AppConfig{
			Port:           v.GetString("APP_PORT"),
			Env:            v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			Secret:        v.GetString("SESSION_SECRET"),
			CookieName:    v.GetString("SESSION_COOKIE_NAME"),
			TTL:           sessionTTL,
			CookieSecure:  v.GetBool("SESSION_COOKIE_SECURE"),
			StoreTimeout:  storeTimeout,
			SweepInterval: sweepInterval,
		},
		Analysis: AnalysisConfig{
			Command:  v.GetString("ANALYSIS_COMMAND"),
			Timeout:  analysisTimeout,
			CacheTTL: analysisCacheTTL,
		},
		Seed: SeedConfig{
			Password: v.GetString("SEED_PASSWORD"),
		},
	}

	return config, nil
}

// Validate checks the settings needed to serve traffic. Migrations and
// seeding do not need them.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if len(c.Session.Secret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 characters")
	}
	return nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
