package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmoteka/filmoteka/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "Movies", cfg.Sheets.SheetName)
	assert.Equal(t, 24*time.Hour, cfg.Sync.Interval)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FILMOTEKA_TELEGRAM_TOKEN", "token-from-env")
	t.Setenv("FILMOTEKA_DATABASE_DSN", "catalog.db")
	t.Setenv("FILMOTEKA_SHEETS_SPREADSHEET_ID", "sheet-id")
	t.Setenv("FILMOTEKA_DATABASE_MAX_OPEN_CONNS", "3")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "token-from-env", cfg.Telegram.Token)
	assert.Equal(t, "catalog.db", cfg.Database.DSN)
	assert.Equal(t, "sheet-id", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, 3, cfg.Database.MaxOpenConns)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "telegram:\n  token: token-from-file\ndatabase:\n  dsn: file.db\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("FILMOTEKA_DATABASE_DSN", "env.db")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "token-from-file", cfg.Telegram.Token)
	assert.Equal(t, "env.db", cfg.Database.DSN)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("/does/not/exist.yaml")
	require.Error(t, err)
}

// Each required value must be validated on its own: a set telegram token
// must not mask a missing DSN and vice versa.
func TestValidate_IndependentChecks(t *testing.T) {
	cfg := &config.Config{}
	cfg.Telegram.Token = "set"

	err := cfg.ValidateBot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.dsn")

	cfg = &config.Config{}
	cfg.Database.DSN = "catalog.db"

	err = cfg.ValidateBot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram.token")
}

func TestValidateSync(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.DSN = "catalog.db"
	cfg.Sheets.SheetName = "Movies"

	err := cfg.ValidateSync()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spreadsheet_id")

	cfg.Sheets.SpreadsheetID = "sheet-id"
	err = cfg.ValidateSync()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials_file")

	cfg.Sheets.CredentialsFile = "creds.json"
	assert.NoError(t, cfg.ValidateSync())
}
