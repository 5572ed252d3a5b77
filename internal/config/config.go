package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrInvalidConfig               = errors.New("invalid configuration")
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	ReviewRandom    = "random"
	ReviewWeakFirst = "weak_first"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env          string       `mapstructure:"env"`      // current application environment (local, dev, prod etc)
	Timezone     string       `mapstructure:"timezone"` // IANA name or UTC offset used for daily buckets
	Log          Log          `mapstructure:"log"`
	DB           DB           `mapstructure:"database"` // database configuration section
	Quiz         Quiz         `mapstructure:"quiz"`
	Stats        Stats        `mapstructure:"stats"`
	Housekeeping Housekeeping `mapstructure:"housekeeping"`
}

type Log struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// DB contains database-related configuration parameters.
type DB struct {
	Driver          string        `mapstructure:"driver"`            // sqlite or postgres
	SQLitePath      string        `mapstructure:"sqlite_path"`       // database file for the sqlite driver
	URL             string        `mapstructure:"-"`                 // postgres connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Quiz contains session defaults.
type Quiz struct {
	DefaultQuestionCount  int    `mapstructure:"default_question_count"`
	MockTestQuestionCount int    `mapstructure:"mock_test_question_count"`
	ReviewStrategy        string `mapstructure:"review_strategy"` // random or weak_first
}

// Stats contains defaults for the statistics reports.
type Stats struct {
	WeakThreshold float64 `mapstructure:"weak_threshold"` // percent
	WeakLimit     int     `mapstructure:"weak_limit"`
	TrendDays     int     `mapstructure:"trend_days"`
}

// Housekeeping configures the periodic maintenance job.
type Housekeeping struct {
	Schedule   string        `mapstructure:"schedule"`    // cron spec or descriptor such as @hourly
	StaleAfter time.Duration `mapstructure:"stale_after"` // active sessions older than this are abandoned
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return entities.ParseTimezoneLocation(c.Timezone)
}

// Load reads configuration from .env, config files and environment variables.
func Load() (*Config, error) {
	// Values already present in the environment win over .env.
	_ = godotenv.Load()

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("log.level", "info")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.sqlite_path", "itpass.db")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")

	v.SetDefault("quiz.default_question_count", 10)
	v.SetDefault("quiz.mock_test_question_count", 100)
	v.SetDefault("quiz.review_strategy", ReviewRandom)

	v.SetDefault("stats.weak_threshold", 60)
	v.SetDefault("stats.weak_limit", 10)
	v.SetDefault("stats.trend_days", 7)

	v.SetDefault("housekeeping.schedule", "@hourly")
	v.SetDefault("housekeeping.stale_after", "24h")
}

func decode(v *viper.Viper) (*Config, error) {
	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.DB.URL = v.GetString("database_url")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.SQLitePath == "" {
			return fmt.Errorf("%w: database.sqlite_path is empty", ErrInvalidConfig)
		}
	case DriverPostgres:
		// Sensitive values come from the environment only.
		if c.DB.URL == "" {
			return ErrMissingEnvironmentVariables
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.DB.Driver)
	}

	switch c.Quiz.ReviewStrategy {
	case ReviewRandom, ReviewWeakFirst:
	default:
		return fmt.Errorf("%w: unknown review strategy %q", ErrInvalidConfig, c.Quiz.ReviewStrategy)
	}

	if c.Quiz.DefaultQuestionCount <= 0 || c.Quiz.MockTestQuestionCount <= 0 {
		return fmt.Errorf("%w: question counts must be positive", ErrInvalidConfig)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}
