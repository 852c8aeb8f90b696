package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileGroupedSections(t *testing.T) {
	path := writeFile(t, `{
		"app": {"AppPort": "9000", "JWTSecret": "s3cret", "AdminUsernames": ["root"], "RateLimitPerMinute": 30},
		"database": {"DBDriver": "postgres", "DBName": "forum", "AutoMigrate": true},
		"log": {"LogLevel": "debug"},
		"site": {"SiteName": "My Forum"}
	}`)

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", c.AppPort)
	assert.Equal(t, "s3cret", c.JWTSecret)
	assert.Equal(t, []string{"root"}, c.AdminUsernames)
	assert.Equal(t, 30, c.RateLimitPerMinute)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, "forum", c.DBName)
	assert.True(t, c.AutoMigrate)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "My Forum", c.SiteName)
}

func TestLoadFileFlatKeys(t *testing.T) {
	path := writeFile(t, `{"AppPort": "7000", "DBDriver": "mysql"}`)

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", c.AppPort)
	assert.Equal(t, "mysql", c.DBDriver)
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  AppPort: "9100"
  AdminUsernames: [root, ops]
  RateLimitPerMinute: 15
database:
  DBDriver: sqlite
  AutoMigrate: true
`), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", c.AppPort)
	assert.Equal(t, []string{"root", "ops"}, c.AdminUsernames)
	assert.Equal(t, 15, c.RateLimitPerMinute)
	assert.True(t, c.AutoMigrate)
}

func TestLoadFileEmptyIsDefaults(t *testing.T) {
	c, err := LoadFile(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "8080", c.AppPort)
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	c, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, 72, c.TokenTTLHours)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Empty(t, c.RedisHost)
}

func TestLoadFileInvalidJSON(t *testing.T) {
	path := writeFile(t, `{not json`)
	c, err := LoadFile(path)
	assert.Error(t, err)
	assert.Equal(t, "8080", c.AppPort)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "1234")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("ADMIN_USERNAMES", " alice , bob ,,")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("REDIS_PORT", "7000")

	path := writeFile(t, `{"AppPort": "9000"}`)
	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1234", c.AppPort)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, []string{"alice", "bob"}, c.AdminUsernames)
	assert.True(t, c.AutoMigrate)
	assert.Equal(t, 7000, c.RedisPort)
}

func TestValidateAndIsAdmin(t *testing.T) {
	assert.Error(t, AppConfig{}.Validate())
	assert.NoError(t, AppConfig{JWTSecret: "x"}.Validate())

	c := AppConfig{AdminUsernames: []string{" Admin "}}
	assert.True(t, c.IsAdmin("Admin"))
	assert.False(t, c.IsAdmin("admin"))
	assert.False(t, c.IsAdmin(""))
	assert.False(t, c.IsAdmin("other"))
}

func TestSetAppliesDefaults(t *testing.T) {
	Set(AppConfig{JWTSecret: "test"})
	got := Get()
	assert.Equal(t, "test", got.JWTSecret)
	assert.Equal(t, "8080", got.AppPort)
}

func TestOpenDatabaseSQLiteMemory(t *testing.T) {
	db, err := OpenDatabase(AppConfig{DBDriver: "sqlite", DatabaseURI: "file::memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY)").Error)
	assert.True(t, db.Migrator().HasTable("t"))
}

func TestOpenDatabaseUnsupportedDriver(t *testing.T) {
	_, err := OpenDatabase(AppConfig{DBDriver: "oracle"})
	assert.Error(t, err)
}
