package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every setting the relay needs, resolved once at startup.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Upload UploadConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	upload, err := loadUploadConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Upload: upload}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the model backend.
type AIConfig struct {
	// Host is the base URL of the Ollama server.
	Host string
	// Model is the identifier generation requests are issued against.
	Model string
	// ModelPath is a filesystem manifest path used to register the model
	// with the backend when it is not already present. Optional.
	ModelPath string
	// GenerateTimeout bounds a single generation call.
	GenerateTimeout time.Duration
}

func loadAIConfig() (AIConfig, error) {
	timeout, err := parseOptionalIntEnv("GENERATE_TIMEOUT")
	if err != nil {
		return AIConfig{}, err
	}
	timeoutSeconds := 120
	if timeout != nil {
		if *timeout < 1 {
			return AIConfig{}, fmt.Errorf("GENERATE_TIMEOUT must be positive, got %d", *timeout)
		}
		timeoutSeconds = *timeout
	}

	return AIConfig{
		Host:            getEnvOrDefault("OLLAMA_HOST", "http://127.0.0.1:11434"),
		Model:           getEnvOrDefault("MODEL_NAME", "deepseek-r1:7b"),
		ModelPath:       strings.TrimSpace(os.Getenv("MODEL_PATH")),
		GenerateTimeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// UploadConfig describes attachment storage.
type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

func loadUploadConfig() (UploadConfig, error) {
	maxBytes, err := parseOptionalIntEnv("MAX_UPLOAD_BYTES")
	if err != nil {
		return UploadConfig{}, err
	}
	limit := int64(16 << 20)
	if maxBytes != nil {
		if *maxBytes < 1 {
			return UploadConfig{}, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", *maxBytes)
		}
		limit = int64(*maxBytes)
	}

	return UploadConfig{
		Dir:      getEnvOrDefault("UPLOAD_DIR", "uploads"),
		MaxBytes: limit,
	}, nil
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
