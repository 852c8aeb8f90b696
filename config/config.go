package config

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	TokenTTLHours      int
	RateLimitPerMinute int
	AllowedOrigins     []string
	StaticDir          string
	AdminUsernames     []string
	// Database
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	AutoMigrate bool
	// Gin framework configuration
	GinMode string
	GinPath string
	// Site information served to clients
	SiteName    string
	NoticeTitle string
	NoticeHTML  string
	// Redis for caching and token revocation; empty host disables it
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Statistics
	PageViewRetentionDays int
}

// DefaultPath is where Load looks for the JSON configuration file.
var DefaultPath = filepath.Join("config", "config.json")

var (
	cfg    AppConfig
	loaded bool
	mu     sync.RWMutex
)

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> .env -> environment variable overrides.
func Load() AppConfig {
	mu.Lock()
	defer mu.Unlock()
	if loaded {
		return cfg
	}
	c, _ := LoadFile(DefaultPath)
	cfg = c
	loaded = true
	return cfg
}

// LoadFile builds a configuration from the given JSON file (missing files are
// ignored), then applies defaults, .env and environment overrides.
// The returned error is non-nil only for malformed JSON; defaults are still applied.
func LoadFile(path string) (AppConfig, error) {
	var c AppConfig
	err := loadConfigFile(path, &c)
	applyDefaults(&c)
	_ = godotenv.Load()
	applyEnvOverrides(&c)
	return c, err
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	mu.RLock()
	if loaded {
		defer mu.RUnlock()
		return cfg
	}
	mu.RUnlock()
	return Load()
}

// Set replaces the cached configuration. Intended for tests and tooling.
func Set(c AppConfig) {
	mu.Lock()
	defer mu.Unlock()
	applyDefaults(&c)
	cfg = c
	loaded = true
}

// Validate reports settings required to serve HTTP traffic.
func (c AppConfig) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in environment variables")
	}
	return nil
}

// IsAdmin reports whether username is configured as an administrator. Usernames
// are case-sensitive, matching how accounts are stored.
func (c AppConfig) IsAdmin(username string) bool {
	uname := strings.TrimSpace(username)
	if uname == "" {
		return false
	}
	for _, u := range c.AdminUsernames {
		if strings.TrimSpace(u) == uname {
			return true
		}
	}
	return false
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadConfigFile reads a config file into out if present. Returns error only for
// malformed content. Files ending in .yaml or .yml are parsed as YAML, anything
// else as JSON. Keys may be grouped by section ("app", "database", "redis",
// "log", "site") or flat.
func loadConfigFile(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(f).Decode(&raw)
	default:
		err = json.NewDecoder(f).Decode(&raw)
	}
	if errors.Is(err, io.EOF) {
		return nil // empty file
	}
	if err != nil {
		return err
	}

	section := func(name string) map[string]any {
		if m, ok := raw[name].(map[string]any); ok {
			return m
		}
		return raw
	}

	app := section("app")
	setString(app, "AppPort", &out.AppPort)
	setString(app, "JWTSecret", &out.JWTSecret)
	setInt(app, "TokenTTLHours", &out.TokenTTLHours)
	setInt(app, "RateLimitPerMinute", &out.RateLimitPerMinute)
	setStrings(app, "AllowedOrigins", &out.AllowedOrigins)
	setStrings(app, "AdminUsernames", &out.AdminUsernames)
	setString(app, "StaticDir", &out.StaticDir)
	setString(app, "GinMode", &out.GinMode)
	setString(app, "GinPath", &out.GinPath)
	setInt(app, "PageViewRetentionDays", &out.PageViewRetentionDays)

	db := section("database")
	setString(db, "DBDriver", &out.DBDriver)
	setString(db, "DatabaseURI", &out.DatabaseURI)
	setString(db, "DBHost", &out.DBHost)
	setString(db, "DBPort", &out.DBPort)
	setString(db, "DBUser", &out.DBUser)
	setString(db, "DBPassword", &out.DBPassword)
	setString(db, "DBName", &out.DBName)
	setBool(db, "AutoMigrate", &out.AutoMigrate)

	rd := section("redis")
	setString(rd, "RedisHost", &out.RedisHost)
	setInt(rd, "RedisPort", &out.RedisPort)
	setInt(rd, "RedisDB", &out.RedisDB)
	setString(rd, "RedisPassword", &out.RedisPassword)

	lg := section("log")
	setString(lg, "LogLevel", &out.LogLevel)
	setString(lg, "LogPath", &out.LogPath)
	setInt(lg, "LogMaxSizeMB", &out.LogMaxSizeMB)
	setInt(lg, "LogMaxBackups", &out.LogMaxBackups)
	setInt(lg, "LogMaxAgeDays", &out.LogMaxAgeDays)
	setBool(lg, "LogCompress", &out.LogCompress)

	site := section("site")
	setString(site, "SiteName", &out.SiteName)
	setString(site, "NoticeTitle", &out.NoticeTitle)
	setString(site, "NoticeHTML", &out.NoticeHTML)

	return nil
}

func setString(m map[string]any, key string, dst *string) {
	if s, ok := m[key].(string); ok {
		*dst = s
	}
}

func setInt(m map[string]any, key string, dst *int) {
	switch v := m[key].(type) {
	case float64: // JSON
		*dst = int(v)
	case int: // YAML
		*dst = v
	}
}

func setBool(m map[string]any, key string, dst *bool) {
	if b, ok := m[key].(bool); ok {
		*dst = b
	}
}

func setStrings(m map[string]any, key string, dst *[]string) {
	arr, ok := m[key].([]any)
	if !ok {
		return
	}
	res := make([]string, 0, len(arr))
	for _, it := range arr {
		if s, ok := it.(string); ok {
			res = append(res, s)
		}
	}
	*dst = res
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 72
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.StaticDir == "" {
		c.StaticDir = "./static"
	}
	if c.DBDriver == "" {
		c.DBDriver = "sqlite"
	}
	if c.DBName == "" {
		c.DBName = "forumapp"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.SiteName == "" {
		c.SiteName = "forumapp"
	}
	if c.PageViewRetentionDays == 0 {
		c.PageViewRetentionDays = 90
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("JWT_SECRET", ""); v != "" {
		c.JWTSecret = v
	}
	if v := getEnv("TOKEN_TTL_HOURS", ""); v != "" {
		c.TokenTTLHours = mustParseInt(v)
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	c.AllowedOrigins = readListEnv("ALLOWED_ORIGINS", c.AllowedOrigins)
	c.AdminUsernames = readListEnv("ADMIN_USERNAMES", c.AdminUsernames)
	if v := getEnv("STATIC_DIR", ""); v != "" {
		c.StaticDir = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("DB_DRIVER", ""); v != "" {
		c.DBDriver = strings.ToLower(v)
	}
	if v := getEnv("DATABASE_URI", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("DB_HOST", ""); v != "" {
		c.DBHost = v
	}
	if v := getEnv("DB_PORT", ""); v != "" {
		c.DBPort = v
	}
	if v := getEnv("DB_USER", ""); v != "" {
		c.DBUser = v
	}
	if v := getEnv("DB_PASSWORD", ""); v != "" {
		c.DBPassword = v
	}
	if v := getEnv("DB_NAME", ""); v != "" {
		c.DBName = v
	}
	if v := getEnv("AUTO_MIGRATE", ""); v != "" {
		c.AutoMigrate = parseBool(v)
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = parseBool(v)
	}
	if v := getEnv("SITE_NAME", ""); v != "" {
		c.SiteName = v
	}
	if v := getEnv("NOTICE_TITLE", ""); v != "" {
		c.NoticeTitle = v
	}
	if v := getEnv("NOTICE_HTML", ""); v != "" {
		c.NoticeHTML = v
	}
	if v := getEnv("PAGEVIEW_RETENTION_DAYS", ""); v != "" {
		c.PageViewRetentionDays = mustParseInt(v)
	}
}

func mustParseInt(val string) int {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0
	}
	return n
}

func parseBool(val string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	return err == nil && b
}

func readListEnv(key string, defaults []string) []string {
	if raw := os.Getenv(key); raw != "" {
		return splitAndTrim(raw)
	}
	return defaults
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
