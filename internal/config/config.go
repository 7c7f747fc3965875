package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the application configuration.
type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
	ServerPort int    `env:"PORT" envDefault:"8002"`

	// DatabaseURL selects the credential store: mongodb:// and mongodb+srv://
	// URLs use MongoDB, anything else is treated as a SQLite path.
	DatabaseURL  string `env:"DATABASE_URL" envDefault:"./auth.db"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"auth"`

	TokenSecret   string        `env:"TOKEN_SECRET,required"`
	LoginTokenTTL time.Duration `env:"LOGIN_TOKEN_TTL" envDefault:"0s"` // 0 means no expiry
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"2m"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10"`

	// Outbound email for password recovery links.
	EmailUser     string `env:"EMAIL_USER"`
	EmailPass     string `env:"EMAIL_PASS"`
	SMTPHost      string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"587"`
	ResetLinkBase string `env:"RESET_LINK_BASE"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://127.0.0.1:5501"`

	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()
	return Parse()
}

// Parse builds a Config from the current process environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the env tags cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TokenSecret) == "" {
		return fmt.Errorf("TOKEN_SECRET must not be empty")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("PORT %d out of range", c.ServerPort)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.LoginTokenTTL < 0 || c.ResetTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	return nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesMongo reports whether DatabaseURL points at a MongoDB deployment.
func (c *Config) UsesMongo() bool {
	return strings.HasPrefix(c.DatabaseURL, "mongodb://") || strings.HasPrefix(c.DatabaseURL, "mongodb+srv://")
}

// EmailEnabled reports whether recovery emails can be sent.
func (c *Config) EmailEnabled() bool {
	return c.EmailUser != "" && c.EmailPass != "" && c.ResetLinkBase != ""
}
