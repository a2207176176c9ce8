package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// FILMOTEKA_TELEGRAM_TOKEN -> telegram.token.
const envPrefix = "FILMOTEKA_"

// Config holds all application configuration.
type Config struct {
	Telegram TelegramConfig `koanf:"telegram"`
	Database DatabaseConfig `koanf:"database"`
	Sheets   SheetsConfig   `koanf:"sheets"`
	Sync     SyncConfig     `koanf:"sync"`
	Logger   LoggerConfig   `koanf:"logger"`
}

// TelegramConfig contains the bot credentials.
type TelegramConfig struct {
	Token string `koanf:"token"`
}

// DatabaseConfig contains catalog store connection settings.
type DatabaseConfig struct {
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// SheetsConfig contains the external spreadsheet source settings.
type SheetsConfig struct {
	SpreadsheetID   string `koanf:"spreadsheet_id"`
	CredentialsFile string `koanf:"credentials_file"`
	SheetName       string `koanf:"sheet_name"`
}

// SyncConfig contains sync scheduling settings.
type SyncConfig struct {
	Interval time.Duration `koanf:"interval"`
}

// LoggerConfig contains logging settings.
type LoggerConfig struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

func defaults() Config {
	return Config{
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
		},
		Sheets: SheetsConfig{
			SheetName: "Movies",
		},
		Sync: SyncConfig{
			Interval: 24 * time.Hour,
		},
		Logger: LoggerConfig{
			Level: "info",
		},
	}
}

// Load reads configuration with precedence env > file > defaults. The file
// path may be empty, in which case only defaults and environment apply.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// envTransform maps FILMOTEKA_TELEGRAM_TOKEN to telegram.token. Only the
// first underscore becomes a separator so multi-word keys survive
// (FILMOTEKA_DATABASE_MAX_OPEN_CONNS -> database.max_open_conns).
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// ValidateStore checks the settings needed to open the catalog store.
// Each required value is checked independently.
func (c *Config) ValidateStore() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	return nil
}

// ValidateBot checks the settings needed to run the Telegram front-end.
func (c *Config) ValidateBot() error {
	if err := c.ValidateStore(); err != nil {
		return err
	}
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	return nil
}

// ValidateSync checks the settings needed to run the sync engine.
func (c *Config) ValidateSync() error {
	if err := c.ValidateStore(); err != nil {
		return err
	}
	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("sheets.spreadsheet_id is required")
	}
	if c.Sheets.CredentialsFile == "" {
		return fmt.Errorf("sheets.credentials_file is required")
	}
	if c.Sheets.SheetName == "" {
		return fmt.Errorf("sheets.sheet_name is required")
	}
	return nil
}
