package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig   `yaml:"server"`
	Database  DatabaseConfig `yaml:"database"`
	Redis     RedisConfig    `yaml:"redis"`
	NewRelic  NewRelicConfig `yaml:"new_relic"`
	Kafka     KafkaConfig    `yaml:"kafka"`
	Geocode   GeocodeConfig  `yaml:"geocode"`
	Matching  MatchingConfig `yaml:"matching"`
	Booking   BookingConfig  `yaml:"booking"`
	Auth      AuthConfig     `yaml:"auth"`
	Log       LogConfig      `yaml:"log"`
	SeedUsers []SeedUser     `yaml:"seed_users"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig holds PostgreSQL configuration.
// When disabled the service runs on the in-memory store.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	AutoMigrate bool   `yaml:"auto_migrate"`
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	DBName      string `yaml:"dbname"`
	SSLMode     string `yaml:"sslmode"`
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string `yaml:"app_name"`
	LicenseKey string `yaml:"license_key"`
	Enabled    bool   `yaml:"enabled"`
}

// KafkaConfig holds the domain event producer configuration.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// GeocodeConfig selects and tunes the place name resolver.
type GeocodeConfig struct {
	Provider    string        `yaml:"provider"` // static or nominatim
	Endpoint    string        `yaml:"endpoint"`
	UserAgent   string        `yaml:"user_agent"`
	CountryCode string        `yaml:"country_code"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	Timeout     time.Duration `yaml:"timeout"`
}

// MatchingConfig holds search defaults.
type MatchingConfig struct {
	DefaultRadiusKm float64 `yaml:"default_radius_km"`
}

// BookingConfig bounds retries of contended seat updates.
type BookingConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
}

// AuthConfig holds bearer token validation settings. With auth disabled the
// X-User-ID header is trusted, which is only suitable for local development.
type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// SeedUser is a user loaded into the in-memory store at startup.
type SeedUser struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Enabled:     true,
			AutoMigrate: true,
			Host:        "localhost",
			Port:        "5432",
			User:        "postgres",
			Password:    "postgres",
			DBName:      "carpool",
			SSLMode:     "disable",
		},
		Redis: RedisConfig{
			Enabled: true,
			Addr:    "localhost:6379",
		},
		NewRelic: NewRelicConfig{
			AppName: "carpool-service",
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "carpool.events",
		},
		Geocode: GeocodeConfig{
			Provider:    "static",
			UserAgent:   "carpool-service/1.0",
			CountryCode: "cz",
			CacheTTL:    24 * time.Hour,
			Timeout:     3 * time.Second,
		},
		Matching: MatchingConfig{DefaultRadiusKm: 30},
		Booking:  BookingConfig{MaxAttempts: 3, RetryDelay: 10 * time.Millisecond},
		Auth:     AuthConfig{Enabled: true},
		Log:      LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_PATH, and environment variables, in increasing precedence.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, cfg.validate()
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("SERVER_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)

	cfg.Database.Enabled = getBoolEnv("DB_ENABLED", cfg.Database.Enabled)
	cfg.Database.AutoMigrate = getBoolEnv("DB_AUTO_MIGRATE", cfg.Database.AutoMigrate)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Redis.Enabled = getBoolEnv("REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getIntEnv("REDIS_DB", cfg.Redis.DB)

	cfg.NewRelic.AppName = getEnv("NEW_RELIC_APP_NAME", cfg.NewRelic.AppName)
	cfg.NewRelic.LicenseKey = getEnv("NEW_RELIC_LICENSE_KEY", cfg.NewRelic.LicenseKey)
	cfg.NewRelic.Enabled = getBoolEnv("NEW_RELIC_ENABLED", cfg.NewRelic.Enabled)

	cfg.Kafka.Enabled = getBoolEnv("KAFKA_ENABLED", cfg.Kafka.Enabled)
	cfg.Kafka.Brokers = getListEnv("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", cfg.Kafka.Topic)

	cfg.Geocode.Provider = getEnv("GEOCODE_PROVIDER", cfg.Geocode.Provider)
	cfg.Geocode.Endpoint = getEnv("GEOCODE_ENDPOINT", cfg.Geocode.Endpoint)
	cfg.Geocode.UserAgent = getEnv("GEOCODE_USER_AGENT", cfg.Geocode.UserAgent)
	cfg.Geocode.CountryCode = getEnv("GEOCODE_COUNTRY_CODE", cfg.Geocode.CountryCode)
	cfg.Geocode.CacheTTL = getDurationEnv("GEOCODE_CACHE_TTL", cfg.Geocode.CacheTTL)
	cfg.Geocode.Timeout = getDurationEnv("GEOCODE_TIMEOUT", cfg.Geocode.Timeout)

	cfg.Matching.DefaultRadiusKm = getFloatEnv("MATCHING_DEFAULT_RADIUS_KM", cfg.Matching.DefaultRadiusKm)

	cfg.Booking.MaxAttempts = getIntEnv("BOOKING_MAX_ATTEMPTS", cfg.Booking.MaxAttempts)
	cfg.Booking.RetryDelay = getDurationEnv("BOOKING_RETRY_DELAY", cfg.Booking.RetryDelay)

	cfg.Auth.Enabled = getBoolEnv("AUTH_ENABLED", cfg.Auth.Enabled)
	cfg.Auth.JWTSecret = getEnv("AUTH_JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.Issuer = getEnv("AUTH_ISSUER", cfg.Auth.Issuer)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
}

func (c *Config) validate() error {
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth is enabled but AUTH_JWT_SECRET is empty")
	}
	if c.Geocode.CacheTTL < 24*time.Hour {
		return fmt.Errorf("geocode cache ttl must be at least 24h, got %s", c.Geocode.CacheTTL)
	}
	switch c.Geocode.Provider {
	case "static", "nominatim":
	default:
		return fmt.Errorf("unknown geocode provider %q", c.Geocode.Provider)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka is enabled but no brokers are configured")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
