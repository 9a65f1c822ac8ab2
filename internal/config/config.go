// Package config loads all runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// defaultHTTPTimeout is the client-side request bound when no override is
// configured; the flow contract itself does not define one.
const defaultHTTPTimeout = 30

// Config aggregates client and devserver settings.
type Config struct {
	Client    ClientConfig
	DevServer DevServerConfig
}

// Load reads the full configuration from environment variables.
func Load() (*Config, error) {
	client, err := loadClientConfig()
	if err != nil {
		return nil, err
	}

	devserver, err := loadDevServerConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Client: client, DevServer: devserver}, nil
}

// ClientConfig describes how the chat client reaches the flow backend.
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	HTTPTimeout time.Duration
	LogFile     string
}

func loadClientConfig() (ClientConfig, error) {
	timeout := defaultHTTPTimeout
	if override, err := parseOptionalIntEnv("WUFFCHAT_HTTP_TIMEOUT"); err != nil {
		return ClientConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return ClientConfig{}, fmt.Errorf("WUFFCHAT_HTTP_TIMEOUT must be positive, got %d", *override)
		}
		timeout = *override
	}

	return ClientConfig{
		BaseURL:     strings.TrimRight(getEnvOrDefault("WUFFCHAT_API_URL", "http://localhost:8000"), "/"),
		APIKey:      strings.TrimSpace(os.Getenv("WUFFCHAT_API_KEY")),
		HTTPTimeout: time.Duration(timeout) * time.Second,
		LogFile:     strings.TrimSpace(os.Getenv("WUFFCHAT_LOG_FILE")),
	}, nil
}

// DevServerConfig describes the local scripted backend.
type DevServerConfig struct {
	Addr   string
	APIKey string
}

func loadDevServerConfig() (DevServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8000"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8000" or "127.0.0.1:8000" directly.
		return DevServerConfig{Addr: port, APIKey: devServerAPIKey()}, nil
	}

	if strings.Contains(port, " ") {
		return DevServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return DevServerConfig{Addr: ":" + port, APIKey: devServerAPIKey()}, nil
}

func devServerAPIKey() string {
	return strings.TrimSpace(os.Getenv("DEVSERVER_API_KEY"))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
