package config

import (
	"fmt"
	"time"

	"pub_pos_backend/pkg/utils"

	"github.com/joho/godotenv"
)

// Store drivers understood by STORE_DRIVER.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SchemaPath string
}

// DSN returns the lib/pq connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// TextGenConfig configures the promotional copy generator used by the menu editor.
type TextGenConfig struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Config holds all configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	StoreDriver    string
	DB             DBConfig
	JWTSecret      string
	SessionTTL     time.Duration
	CORSOrigins    []string
	CartTTL        time.Duration
	SeedMenu       bool
	TextGen        TextGenConfig
	MetricsEnabled bool
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Port:        utils.Getenv("PORT", "8080"),
		Env:         utils.Getenv("APP_ENV", "development"),
		LogLevel:    utils.Getenv("LOG_LEVEL", "info"),
		StoreDriver: utils.Getenv("STORE_DRIVER", StoreMemory),
		DB: DBConfig{
			Host:       utils.Getenv("DB_HOST", "localhost"),
			Port:       utils.Getenv("DB_PORT", "5432"),
			User:       utils.Getenv("DB_USER", "pub_pos_user"),
			Password:   utils.Getenv("DB_PASSWORD", "pub_pos_password"),
			Name:       utils.Getenv("DB_NAME", "pub_pos_db"),
			SSLMode:    utils.Getenv("DB_SSLMODE", "disable"),
			SchemaPath: utils.Getenv("DB_SCHEMA_PATH", ""),
		},
		JWTSecret:   utils.Getenv("JWT_SECRET", ""),
		SessionTTL:  utils.GetenvDuration("SESSION_TTL", 12*time.Hour),
		CORSOrigins: utils.GetenvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		CartTTL:     utils.GetenvDuration("CART_TTL", 2*time.Hour),
		SeedMenu:    utils.GetenvBool("SEED_MENU", false),
		TextGen: TextGenConfig{
			URL:     utils.Getenv("TEXTGEN_URL", "https://generativelanguage.googleapis.com/v1beta"),
			APIKey:  utils.Getenv("TEXTGEN_API_KEY", ""),
			Model:   utils.Getenv("TEXTGEN_MODEL", "gemini-2.5-flash"),
			Timeout: utils.GetenvDuration("TEXTGEN_TIMEOUT", 10*time.Second),
		},
		MetricsEnabled: utils.GetenvBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %q or %q)", c.StoreDriver, StoreMemory, StorePostgres)
	}
	if c.JWTSecret == "" {
		if c.Env == "production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		c.JWTSecret = "dev-only-pub-pos-secret"
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}
