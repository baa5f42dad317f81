package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Mail     MailConfig     `yaml:"mail"`
	CORS     CORSConfig     `yaml:"cors"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	DataDir string `yaml:"data_dir"`
}

type StorageConfig struct {
	UploadDir string `yaml:"upload_dir"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	// Base URL of the external identity provider that exchanges an opaque
	// session id for the user's profile and a session token.
	ProviderURL string `yaml:"provider_url"`
}

type MailConfig struct {
	ResendAPIKey string `yaml:"resend_api_key"`
	SenderEmail  string `yaml:"sender_email"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load builds the process configuration once at startup: defaults, then an
// optional YAML file, then environment variable overrides already applied as
// the defaults.
func Load(path string) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			DataDir: getEnv("DATA_DIR", "./data"),
		},
		Storage: StorageConfig{
			UploadDir: getEnv("UPLOAD_DIR", "./data/uploads"),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", "fallback-secret"),
			ProviderURL: getEnv("AUTH_SERVICE_URL", "https://demobackend.emergentagent.com/auth/v1/env/oauth"),
		},
		Mail: MailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			SenderEmail:  getEnv("SENDER_EMAIL", "onboarding@resend.dev"),
		},
		CORS: CORSConfig{
			Origins: splitOrigins(getEnv("CORS_ORIGINS", "*")),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			Console:    true,
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			// File doesn't exist, use env vars only
		} else if err := yaml.Unmarshal(data, config); err != nil {
			return nil, err
		}
	}

	if !filepath.IsAbs(config.Database.DataDir) {
		config.Database.DataDir, _ = filepath.Abs(config.Database.DataDir)
	}
	if !filepath.IsAbs(config.Storage.UploadDir) {
		config.Storage.UploadDir, _ = filepath.Abs(config.Storage.UploadDir)
	}

	return config, nil
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
