package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Cfg struct {
	App        App
	Database   Database
	Logger     Logger
	Browser    Browser
	Callback   Callback
	Catalog    Catalog
	Migrations Migrations
}

type App struct {
	Host           string
	Port           string
	MaxSessions    int
	RequestTimeout time.Duration
}

type Database struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// Enabled сообщает, включен ли журнал запусков.
func (d Database) Enabled() bool {
	return d.Host != ""
}

type Migrations struct {
	Path string
}

type Logger struct {
	Env        string
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type Browser struct {
	Headless     bool
	Install      bool
	BrowsersPath string
	Locale       string
}

type Callback struct {
	Timeout time.Duration
}

type Catalog struct {
	Path string
}

func Load() (*Cfg, error) {
	_ = godotenv.Load()

	cfg := &Cfg{
		App: App{
			Host:           os.Getenv("HOST"),
			Port:           env("PORT", "3002"),
			MaxSessions:    envInt("MAX_SESSIONS", 4),
			RequestTimeout: envDuration("REQUEST_TIMEOUT", 180*time.Second),
		},
		Database: Database{
			Host:     os.Getenv("DB_HOST"),
			Port:     env("DB_PORT", "5432"),
			Name:     os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASS"),
		},
		Logger: Logger{
			Env:        env("ENV", "prod"),
			Level:      env("LOG_LEVEL", "info"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  envInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: envInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: envInt("LOG_MAX_AGE_DAYS", 14),
		},
		Browser: Browser{
			Headless:     envBoolDefault("PW_HEADLESS", true),
			Install:      envBoolDefault("PW_INSTALL", false),
			BrowsersPath: os.Getenv("PLAYWRIGHT_BROWSERS_PATH"),
			Locale:       env("BROWSER_LOCALE", "tr-TR"),
		},
		Callback: Callback{
			Timeout: envDuration("CALLBACK_TIMEOUT", 10*time.Second),
		},
		Catalog: Catalog{
			Path: os.Getenv("CATALOG_PATH"),
		},
		Migrations: Migrations{
			Path: env("MIGRATIONS_PATH", "file://migrations"),
		},
	}

	if cfg.App.MaxSessions < 1 {
		cfg.App.MaxSessions = 1
	}

	return cfg, nil
}

func env(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func envBoolDefault(key string, defaultValue bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}

// envDuration принимает как "15s", так и голое число секунд.
func envDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}
