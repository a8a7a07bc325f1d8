package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnv       = "development"
	defaultDBPath    = "./landed.db"
	defaultPort      = "8080"
	defaultLogLevel  = "info"
	defaultFXTimeout = 5 * time.Second
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env      string
	DBPath   string
	Port     string
	LogLevel string
	FX       FXConfig
}

// FXConfig configures the exchange-rate sources.
type FXConfig struct {
	PrimaryURL  string
	FallbackURL string
	Timeout     time.Duration
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	_ = godotenv.Load(".env")

	cfg := Config{
		Env:      os.Getenv("APP_ENV"),
		DBPath:   os.Getenv("DB_PATH"),
		Port:     os.Getenv("PORT"),
		LogLevel: os.Getenv("LOG_LEVEL"),
		FX: FXConfig{
			PrimaryURL:  os.Getenv("FX_PRIMARY_URL"),
			FallbackURL: os.Getenv("FX_FALLBACK_URL"),
			Timeout:     defaultFXTimeout,
		},
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if raw := os.Getenv("FX_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			log.Printf("warning: invalid FX_TIMEOUT %q, using %s", raw, defaultFXTimeout)
		} else {
			cfg.FX.Timeout = timeout
		}
	}

	if cfg.FX.PrimaryURL == "" && cfg.FX.FallbackURL == "" {
		log.Print("warning: FX_PRIMARY_URL and FX_FALLBACK_URL are not set, exchange rates come from the cache only")
	}

	return cfg
}

// IsDev reports whether the application runs in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
