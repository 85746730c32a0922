package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen   string    `yaml:"listen"`
	API      APIConfig `yaml:"api"`
	PageSize int       `yaml:"page_size"`

	// FrontendURL is sent with password-reset and bootstrap requests so emailed links point
	// back at the console UI.
	FrontendURL string        `yaml:"frontend_url"`
	CORSOrigin  string        `yaml:"cors_origin"`
	LogLevel    string        `yaml:"log_level"`
	GinMode     string        `yaml:"gin_mode"`
	Sandbox     SandboxConfig `yaml:"sandbox"`
}

type APIConfig struct {
	BaseURL  string        `yaml:"base_url"`
	BasePath string        `yaml:"base_path"`
	Timeout  time.Duration `yaml:"timeout"`
}

type SandboxConfig struct {
	Listen    string `yaml:"listen"`
	DSN       string `yaml:"dsn"`
	JWTSecret string `yaml:"jwt_secret"`
	// StrictDateRange makes the sandbox accept only "YYYY-MM-DD HH:MM:SS" date-range bounds.
	StrictDateRange bool `yaml:"strict_date_range"`
}

func defaults() Config {
	return Config{
		Listen: ":8080",
		API: APIConfig{
			BaseURL:  "http://localhost:8081",
			BasePath: "/api",
		},
		PageSize:    100,
		FrontendURL: "http://localhost:3000",
		CORSOrigin:  "http://localhost:3000",
		LogLevel:    "info",
		GinMode:     "debug",
		Sandbox: SandboxConfig{
			Listen:    ":8081",
			DSN:       "file::memory:?cache=shared",
			JWTSecret: "sandbox-secret",
		},
	}
}

// Load builds the configuration from defaults, then path (YAML, optional), then a .env file
// (optional), then the environment.
func Load(path string) (*Config, error) {
	c := defaults()

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, &c); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	// .env tidak wajib ada
	_ = godotenv.Load()

	c.Listen = getEnvOrDefault("LISTEN", c.Listen)
	c.API.BaseURL = getEnvOrDefault("API_BASE_URL", c.API.BaseURL)
	c.API.BasePath = getEnvOrDefault("API_BASE_PATH", c.API.BasePath)
	c.API.Timeout = getEnvAsDurationOrDefault("API_TIMEOUT", c.API.Timeout)
	c.PageSize = getEnvAsIntOrDefault("PAGE_SIZE", c.PageSize)
	c.FrontendURL = getEnvOrDefault("FRONTEND_URL", c.FrontendURL)
	c.CORSOrigin = getEnvOrDefault("CORS_ORIGIN", c.CORSOrigin)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.GinMode = getEnvOrDefault("GIN_MODE", c.GinMode)
	c.Sandbox.Listen = getEnvOrDefault("SANDBOX_LISTEN", c.Sandbox.Listen)
	c.Sandbox.DSN = getEnvOrDefault("SANDBOX_DSN", c.Sandbox.DSN)
	c.Sandbox.JWTSecret = getEnvOrDefault("JWT_SECRET", c.Sandbox.JWTSecret)
	if v := os.Getenv("SANDBOX_STRICT_DATE_RANGE"); v != "" {
		c.Sandbox.StrictDateRange = v == "true" || v == "1"
	}

	if c.PageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return nil, fmt.Errorf("API_BASE_URL must be an http(s) URL, got %q", c.API.BaseURL)
	}
	return &c, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
