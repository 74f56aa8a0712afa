// Package config loads service settings from .env, an optional YAML file and
// the process environment, in that order of increasing precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string         `yaml:"port" validate:"required,numeric"`
	Timezone string         `yaml:"timezone"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Schedule ScheduleConfig `yaml:"schedule"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

type StorageConfig struct {
	Backend             string `yaml:"backend" validate:"oneof=memory file sqlite redis firestore"`
	FileDir             string `yaml:"file_dir" validate:"required_if=Backend file"`
	SQLitePath          string `yaml:"sqlite_path" validate:"required_if=Backend sqlite"`
	RedisAddr           string `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword       string `yaml:"redis_password"`
	RedisDB             int    `yaml:"redis_db" validate:"gte=0"`
	RedisPrefix         string `yaml:"redis_prefix"`
	FirestoreCredential string `yaml:"firestore_credentials" validate:"required_if=Backend firestore"`
	FirestoreCollection string `yaml:"firestore_collection" validate:"required_if=Backend firestore"`
}

type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	PassphraseHash string        `yaml:"passphrase_hash" validate:"required_with=JWTSecret"`
	TokenTTL       time.Duration `yaml:"token_ttl" validate:"gt=0"`
}

type ScheduleConfig struct {
	AutoSubmitAt string        `yaml:"auto_submit_at" validate:"required"`
	PollInterval time.Duration `yaml:"poll_interval" validate:"gt=0"`
	ChartDelay   time.Duration `yaml:"chart_delay" validate:"gte=0"`
}

func Default() *Config {
	return &Config{
		Port: "8080",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Backend:             "file",
			FileDir:             "./data",
			SQLitePath:          "./data/ledger.db",
			RedisPrefix:         "dailyledger:",
			FirestoreCollection: "DailyLedger",
		},
		Auth: AuthConfig{
			TokenTTL: 60 * time.Minute,
		},
		Schedule: ScheduleConfig{
			AutoSubmitAt: "23:59",
			PollInterval: 10 * time.Second,
			ChartDelay:   800 * time.Millisecond,
		},
	}
}

// Load builds the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using process environment")
	}

	cfg := Default()
	if path := os.Getenv("LEDGER_CONFIG"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.Timezone, "TIMEZONE")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")

	setString(&cfg.Storage.Backend, "LEDGER_BACKEND")
	setString(&cfg.Storage.FileDir, "LEDGER_FILE_DIR")
	setString(&cfg.Storage.SQLitePath, "LEDGER_SQLITE_PATH")
	setString(&cfg.Storage.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Storage.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.Storage.RedisPrefix, "REDIS_PREFIX")
	setString(&cfg.Storage.FirestoreCredential, "GOOGLE_APPLICATION_CREDENTIALS_1")
	setString(&cfg.Storage.FirestoreCollection, "FIRESTORE_COLLECTION")
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.Storage.RedisDB = db
	}

	setString(&cfg.Auth.JWTSecret, "JWT_SECRET_KEY")
	setString(&cfg.Auth.PassphraseHash, "LEDGER_PASSPHRASE_HASH")
	setString(&cfg.Schedule.AutoSubmitAt, "AUTO_SUBMIT_AT")

	durations := []struct {
		dst *time.Duration
		env string
	}{
		{&cfg.Auth.TokenTTL, "TOKEN_TTL"},
		{&cfg.Schedule.PollInterval, "AUTO_SUBMIT_POLL"},
		{&cfg.Schedule.ChartDelay, "CHART_DELAY"},
	}
	for _, d := range durations {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.env, err)
		}
		*d.dst = parsed
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := time.Parse("15:04", c.Schedule.AutoSubmitAt); err != nil {
		return fmt.Errorf("invalid config: auto_submit_at %q, want HH:MM", c.Schedule.AutoSubmitAt)
	}
	return nil
}

// Location resolves Timezone; empty means the host's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// NewLogger builds the process logger described by LogConfig.
func (c LogConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch c.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
