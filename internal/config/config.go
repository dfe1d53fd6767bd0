package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the admin console and the dev backend.
type Config struct {
	App        AppConfig
	Backend    BackendConfig
	Session    SessionConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	DevBackend DevBackendConfig
}

// AppConfig controls client level behavior.
type AppConfig struct {
	Name        string
	Env         string
	Version     string
	DefaultView string
	LoginView   string
}

// BackendConfig describes the REST backend the console talks to.
type BackendConfig struct {
	BaseURL               string
	LoginPath             string
	RequestTimeoutSeconds int
	RateLimitRPS          float64
	RateLimitBurst        int
}

// SessionConfig selects where the session token is persisted.
type SessionConfig struct {
	Driver         string
	Key            string
	SQLitePath     string
	PollIntervalMS int
	RedisPrefix    string
	ActivityKey    string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// AuthConfig defines token issuing parameters used by the dev backend.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	SeedAdminEmail        string
	SeedAdminPassword     string
	SeedUserEmail         string
	SeedUserPassword      string
}

// DevBackendConfig controls the local stand-in backend.
type DevBackendConfig struct {
	Host string
	Port string
}

// Session drivers.
const (
	SessionDriverMemory   = "memory"
	SessionDriverSQLite   = "sqlite"
	SessionDriverRedis    = "redis"
	SessionDriverPostgres = "postgres"
)

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	rps, err := strconv.ParseFloat(getEnv("BACKEND_RATE_LIMIT_RPS", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_RATE_LIMIT_RPS: %w", err)
	}

	driver := strings.ToLower(getEnv("SESSION_DRIVER", SessionDriverSQLite))
	switch driver {
	case SessionDriverMemory, SessionDriverSQLite, SessionDriverRedis, SessionDriverPostgres:
	default:
		return nil, fmt.Errorf("invalid SESSION_DRIVER %q", driver)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "admin-console"),
			Env:         getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "dev"),
			DefaultView: getEnv("APP_DEFAULT_VIEW", "/products"),
			LoginView:   getEnv("APP_LOGIN_VIEW", "/auth/login"),
		},
		Backend: BackendConfig{
			BaseURL:               strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://localhost:8080"), "/"),
			LoginPath:             getEnv("BACKEND_LOGIN_PATH", "/auth/login"),
			RequestTimeoutSeconds: getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 30),
			RateLimitRPS:          rps,
			RateLimitBurst:        getEnvAsInt("BACKEND_RATE_LIMIT_BURST", 5),
		},
		Session: SessionConfig{
			Driver:         driver,
			Key:            getEnv("SESSION_KEY", "token"),
			SQLitePath:     getEnv("SESSION_SQLITE_PATH", defaultProfilePath()),
			PollIntervalMS: getEnvAsInt("SESSION_POLL_INTERVAL_MS", 500),
			RedisPrefix:    getEnv("SESSION_REDIS_PREFIX", "admin-console:storage"),
			ActivityKey:    getEnv("SESSION_ACTIVITY_KEY", "activity"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  getEnvAsInt("LOG_FILE_MAX_SIZE_MB", 50),
			MaxBackups: getEnvAsInt("LOG_FILE_MAX_BACKUPS", 3),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 10),
			SeedAdminEmail:        getEnv("AUTH_SEED_ADMIN_EMAIL", "admin@example.com"),
			SeedAdminPassword:     getEnv("AUTH_SEED_ADMIN_PASSWORD", "admin"),
			SeedUserEmail:         getEnv("AUTH_SEED_USER_EMAIL", "user@example.com"),
			SeedUserPassword:      getEnv("AUTH_SEED_USER_PASSWORD", "user"),
		},
		DevBackend: DevBackendConfig{
			Host: getEnv("DEV_HOST", "127.0.0.1"),
			Port: getEnv("DEV_PORT", "8080"),
		},
	}

	if cfg.Session.ActivityKey == cfg.Session.Key {
		return nil, fmt.Errorf("SESSION_ACTIVITY_KEY must differ from SESSION_KEY %q", cfg.Session.Key)
	}

	return cfg, nil
}

// Addr returns the dev backend bind address.
func (d DevBackendConfig) Addr() string {
	return fmt.Sprintf("%s:%s", d.Host, d.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (b BackendConfig) RequestTimeout() time.Duration {
	if b.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(b.RequestTimeoutSeconds) * time.Second
}

// PollInterval returns how often file-backed stores look for foreign writes.
func (s SessionConfig) PollInterval() time.Duration {
	if s.PollIntervalMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(s.PollIntervalMS) * time.Millisecond
}

// TokenTTL returns the lifetime of tokens issued by the dev backend.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.AccessTokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

func defaultProfilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "admin-console.db"
	}
	return dir + string(os.PathSeparator) + "admin-console" + string(os.PathSeparator) + "profile.db"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
