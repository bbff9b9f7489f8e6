package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig holds environment driven configuration values.
// Secrets have no defaults in code and must come from the config file or the environment.
type AppConfig struct {
	AppPort   string
	SecretKey string
	// CSRFEnabled toggles form token checks on POST requests
	CSRFEnabled        bool
	RateLimitPerMinute int
	AllowedOrigins     []string
	RecentPostsLimit   int
	MetricsEnabled     bool
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database: DBDriver is one of mysql, postgres, sqlite
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Redis backs flash notices; empty host keeps them in memory
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
}

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "config/config.json"

// binding maps a config key to its grouped file key and environment variable.
type binding struct {
	key string
	env string
	def interface{}
}

var bindings = []binding{
	{"app.port", "APP_PORT", "8080"},
	{"app.secret_key", "SECRET_KEY", ""},
	{"app.csrf_enabled", "CSRF_ENABLED", true},
	{"app.rate_limit_per_minute", "RATE_LIMIT_PER_MINUTE", 60},
	{"app.allowed_origins", "CORS_ALLOWED_ORIGINS", []string{"*"}},
	{"app.recent_posts_limit", "RECENT_POSTS_LIMIT", 5},
	{"app.metrics_enabled", "METRICS_ENABLED", true},
	{"gin.mode", "GIN_MODE", "release"},
	{"gin.log_path", "GIN_PATH", "logs/go_gin.log"},
	{"database.driver", "DB_DRIVER", "postgres"},
	{"database.uri", "DATABASE_URI", ""},
	{"database.host", "DB_HOST", "127.0.0.1"},
	{"database.port", "DB_PORT", "5432"},
	{"database.user", "DB_USER", "postgres"},
	{"database.password", "DB_PASSWORD", ""},
	{"database.name", "DB_NAME", "blogly"},
	{"redis.host", "REDIS_HOST", ""},
	{"redis.port", "REDIS_PORT", 6379},
	{"redis.db", "REDIS_DB", 0},
	{"redis.password", "REDIS_PASSWORD", ""},
	{"log.level", "LOG_LEVEL", "info"},
	{"log.path", "LOG_PATH", "logs/blogly.log"},
	{"log.max_size_mb", "LOG_MAX_SIZE_MB", 100},
	{"log.max_backups", "LOG_MAX_BACKUPS", 3},
	{"log.max_age_days", "LOG_MAX_AGE_DAYS", 7},
	{"log.compress", "LOG_COMPRESS", false},
}

// Load reads configuration with precedence defaults -> JSON file -> environment.
// A missing file is not an error; an unreadable or malformed one is.
func Load(path string) (AppConfig, error) {
	v := viper.New()
	v.SetConfigType("json")
	for _, b := range bindings {
		v.SetDefault(b.key, b.def)
		if err := v.BindEnv(b.key, b.env); err != nil {
			return AppConfig{}, fmt.Errorf("bind %s: %w", b.env, err)
		}
	}

	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return AppConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("stat config %s: %w", path, err)
	}

	cfg := AppConfig{
		AppPort:            v.GetString("app.port"),
		SecretKey:          v.GetString("app.secret_key"),
		CSRFEnabled:        v.GetBool("app.csrf_enabled"),
		RateLimitPerMinute: v.GetInt("app.rate_limit_per_minute"),
		AllowedOrigins:     splitAndTrim(v.GetStringSlice("app.allowed_origins")),
		RecentPostsLimit:   v.GetInt("app.recent_posts_limit"),
		MetricsEnabled:     v.GetBool("app.metrics_enabled"),
		GinMode:            v.GetString("gin.mode"),
		GinPath:            v.GetString("gin.log_path"),
		DBDriver:           strings.ToLower(v.GetString("database.driver")),
		DatabaseURI:        v.GetString("database.uri"),
		DBHost:             v.GetString("database.host"),
		DBPort:             v.GetString("database.port"),
		DBUser:             v.GetString("database.user"),
		DBPassword:         v.GetString("database.password"),
		DBName:             v.GetString("database.name"),
		RedisHost:          v.GetString("redis.host"),
		RedisPort:          v.GetInt("redis.port"),
		RedisDB:            v.GetInt("redis.db"),
		RedisPassword:      v.GetString("redis.password"),
		LogLevel:           v.GetString("log.level"),
		LogPath:            v.GetString("log.path"),
		LogMaxSizeMB:       v.GetInt("log.max_size_mb"),
		LogMaxBackups:      v.GetInt("log.max_backups"),
		LogMaxAgeDays:      v.GetInt("log.max_age_days"),
		LogCompress:        v.GetBool("log.compress"),
	}

	if cfg.SecretKey == "" {
		return AppConfig{}, errors.New("SECRET_KEY must be set in the config file or environment")
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return cfg, nil
}

// splitAndTrim flattens comma separated entries, which is how list values
// arrive from the environment.
func splitAndTrim(raw []string) []string {
	items := []string{}
	for _, entry := range raw {
		for _, item := range strings.Split(entry, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return items
}
