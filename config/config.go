package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const developmentJWTSecret = "default_super_secret_key"

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Postgres  PostgresConfig
	JWT       JWTConfig
	Inventory InventoryConfig
	Tracing   TracingConfig
}

type ServerConfig struct {
	Port               string
	GinMode            string
	CORSAllowedOrigins []string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
	LockTimeoutMS   int
}

type JWTConfig struct {
	Secret   string
	TTLHours int
}

// InventoryConfig tunes the stock ledger.
type InventoryConfig struct {
	// OrderDerivationMode is "keyword" (default) or "flag".
	OrderDerivationMode string
	SaleKeywords        []string
	WalkInCustomerName  string
	BulkDefaultMinStock int
	EventBufferSize     int
}

type TracingConfig struct {
	Endpoint    string
	ServiceName string
}

// Load reads configs/.env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			GinMode:            getEnv("GIN_MODE", "debug"),
			CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "info"),
			Encoding:          getEnv("LOGGER_ENCODING", "json"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "clothing_store"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
			LockTimeoutMS:   getEnvInt("DB_LOCK_TIMEOUT_MS", 5000),
		},
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", ""),
			TTLHours: getEnvInt("JWT_TTL_HOURS", 24),
		},
		Inventory: InventoryConfig{
			OrderDerivationMode: strings.ToLower(getEnv("ORDER_DERIVATION_MODE", "keyword")),
			SaleKeywords:        getEnvSlice("ORDER_SALE_KEYWORDS", []string{"bán"}),
			WalkInCustomerName:  getEnv("WALK_IN_CUSTOMER_NAME", "Khách lẻ"),
			BulkDefaultMinStock: getEnvInt("BULK_DEFAULT_MIN_STOCK", 5),
			EventBufferSize:     getEnvInt("EVENT_BUFFER_SIZE", 256),
		},
		Tracing: TracingConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "clothing-store-api"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		if c.Server.GinMode == "release" {
			return errors.New("JWT_SECRET is required in release mode")
		}
		c.JWT.Secret = developmentJWTSecret
	}
	switch c.Inventory.OrderDerivationMode {
	case "keyword", "flag":
	default:
		return fmt.Errorf("invalid ORDER_DERIVATION_MODE %q: must be keyword or flag", c.Inventory.OrderDerivationMode)
	}
	if c.Inventory.BulkDefaultMinStock < 0 {
		return errors.New("BULK_DEFAULT_MIN_STOCK must not be negative")
	}
	if c.Postgres.LockTimeoutMS < 0 {
		return errors.New("DB_LOCK_TIMEOUT_MS must not be negative")
	}
	return nil
}

// DSN builds the postgres connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
