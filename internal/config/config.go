package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port            string
	StorageDriver   string
	DatabaseURL     string
	SQLitePath      string
	JWTSecret       string
	JWTIssuer       string
	JWTTTL          time.Duration
	CORSOrigins     []string
	PasswordHashing string
	LogLevel        string
	LogFormat       string
	SeedAdmin       AdminSeed
}

// AdminSeed is the account created on startup when both fields are set.
type AdminSeed struct {
	Username string
	Password string
}

// Enabled reports whether an admin account should be seeded.
func (a AdminSeed) Enabled() bool {
	return a.Username != "" && a.Password != ""
}

type rawEnv struct {
	Port              string `env:"PORT"                 envDefault:"8080"`
	StorageDriver     string `env:"STORAGE_DRIVER"       envDefault:"postgres"`
	DatabaseURL       string `env:"DATABASE_URL"`
	SQLitePath        string `env:"SQLITE_PATH"          envDefault:"users.db"`
	JWTSecret         string `env:"JWT_SECRET"`
	JWTIssuer         string `env:"JWT_ISSUER"           envDefault:"all-in-users"`
	JWTTTLMinutes     int    `env:"JWT_TTL_MINUTES"      envDefault:"60"`
	CORSOrigins       string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	PasswordHashing   string `env:"PASSWORD_HASHING"     envDefault:"bcrypt"`
	LogLevel          string `env:"LOG_LEVEL"            envDefault:"info"`
	LogFormat         string `env:"LOG_FORMAT"           envDefault:"json"`
	SeedAdminUsername string `env:"SEED_ADMIN_USERNAME"`
	SeedAdminPassword string `env:"SEED_ADMIN_PASSWORD"`
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	var raw rawEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := Config{
		Port:            fallback(raw.Port, "8080"),
		StorageDriver:   strings.ToLower(fallback(raw.StorageDriver, DriverPostgres)),
		DatabaseURL:     strings.TrimSpace(raw.DatabaseURL),
		SQLitePath:      fallback(raw.SQLitePath, "users.db"),
		JWTSecret:       strings.TrimSpace(raw.JWTSecret),
		JWTIssuer:       fallback(raw.JWTIssuer, "all-in-users"),
		CORSOrigins:     parseCSV(raw.CORSOrigins),
		PasswordHashing: strings.ToLower(strings.TrimSpace(raw.PasswordHashing)),
		LogLevel:        strings.TrimSpace(raw.LogLevel),
		LogFormat:       strings.TrimSpace(raw.LogFormat),
		SeedAdmin: AdminSeed{
			Username: strings.TrimSpace(raw.SeedAdminUsername),
			Password: raw.SeedAdminPassword,
		},
	}

	if raw.JWTTTLMinutes > 0 {
		cfg.JWTTTL = time.Duration(raw.JWTTTLMinutes) * time.Minute
	} else {
		cfg.JWTTTL = 60 * time.Minute
	}

	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
