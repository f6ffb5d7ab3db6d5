// Package config loads application configuration from the environment.
package config

import (
	"os"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// StorageConfig holds persistence settings. DatabaseURL selects the
// Postgres preset store; when empty, presets live as JSON files under
// PresetDir.
type StorageConfig struct {
	DatabaseURL string
	PresetDir   string
	ExportDir   string
}

// Load reads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Storage: StorageConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			PresetDir:   getEnvOrDefault("PRESET_DIR", "presets"),
			ExportDir:   getEnvOrDefault("EXPORT_DIR", "exports"),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
