package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[app]
port = 9090

[listing]
page_size = 20

[ratelimit]
submit_rate = "5/m"
fail_open = false
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "9191")
	t.Setenv("RATELIMIT_FAIL_OPEN", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.App.Port)
	assert.Equal(t, 20, cfg.Listing.PageSize)
	assert.Equal(t, "5/m", cfg.RateLimit.SubmitRate)
	assert.True(t, cfg.RateLimit.FailOpen)
	assert.Equal(t, "mysql", cfg.Database.Driver)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Listing.PageSize)
	assert.Equal(t, "100/h", cfg.RateLimit.SubmitRate)
	assert.True(t, cfg.RateLimit.FailOpen)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Auth.JWTSecret = " "
	assert.Error(t, cfg.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "root:@tcp(127.0.0.1:3306)/classifieds?parseTime=true&loc=Local&charset=utf8mb4", cfg.DatabaseDSN())

	cfg.Database.Driver = "postgres"
	cfg.Database.Port = 5432
	cfg.Database.Params = "sslmode=disable"
	assert.Equal(t, "host=127.0.0.1 port=5432 user=root password= dbname=classifieds sslmode=disable", cfg.DatabaseDSN())
}
