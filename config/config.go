package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/campusbridge/connect/internal/connect"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Connect  ConnectConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/connect?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing settings and the bridge API key exchanged
// for tokens.
type JWTConfig struct {
	Secret      string
	ExpireHours int
	APIKey      string
}

// ConnectConfig holds the Adobe Connect plugin settings. The required keys
// follow the host plugin validator: either all of domain, login, password
// and meeting_container are set, or none are (integration disabled).
type ConnectConfig struct {
	Domain           string
	Login            string
	Password         string
	MeetingContainer string
	UseSISIDs        string // "yes" or "no"
}

// Enabled reports whether any Connect settings were supplied.
func (c ConnectConfig) Enabled() bool {
	return c.Domain != "" || c.Login != "" || c.Password != "" || c.MeetingContainer != ""
}

// Validate enforces the all-or-nothing rule on required settings.
func (c ConnectConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Domain == "" || c.Login == "" || c.Password == "" || c.MeetingContainer == "" {
		return fmt.Errorf("connect settings: all of CONNECT_DOMAIN, CONNECT_LOGIN, CONNECT_PASSWORD and CONNECT_MEETING_CONTAINER are required")
	}
	return nil
}

// Settings returns the tenant settings tuple for the session client cache.
func (c ConnectConfig) Settings() connect.Settings {
	return connect.Settings{
		Domain:           c.Domain,
		Login:            c.Login,
		Password:         c.Password,
		MeetingContainer: c.MeetingContainer,
		UseSISIDs:        c.UseSISIDs == "yes",
	}
}

// DSN returns the PostgreSQL connection string. If DatabaseConfig.URL is
// set (e.g. DATABASE_URL env), it is used as-is; otherwise built from
// components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout: getEnvInt("WRITE_TIMEOUT_SEC", 30),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "connect_bridge"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
			APIKey:      getEnv("BRIDGE_API_KEY", ""),
		},
		Connect: ConnectConfig{
			Domain:           getEnv("CONNECT_DOMAIN", ""),
			Login:            getEnv("CONNECT_LOGIN", ""),
			Password:         getEnv("CONNECT_PASSWORD", ""),
			MeetingContainer: getEnv("CONNECT_MEETING_CONTAINER", ""),
			UseSISIDs:        getEnv("CONNECT_USE_SIS_IDS", "no"),
		},
	}

	if err := cfg.Connect.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
