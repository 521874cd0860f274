package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultTopics is the topic list used when TOPICS is not set.
var DefaultTopics = []string{
	"Artificial Intelligence",
	"Machine Learning",
	"Tech Trends",
	"Startup News",
	"New Technology",
	"AI Innovation",
	"Blockchain",
	"Quantum Computing",
	"SaaS",
	"Cloud Computing",
	"Cybersecurity",
	"Web Development",
	"Mobile Technology",
	"Data Science",
	"Tech Gadgets",
	"IT Infrastructure",
	"IoT",
	"Digital Transformation",
	"AI Research",
	"Software Development",
	"Venture Capital",
	"Tech Investments",
	"Emerging Technologies",
	"Fintech",
	"Augmented Reality",
	"Tech Startup",
	"AI Tools",
	"Robotics",
	"Innovation Hub",
	"Tech Ecosystem",
}

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port" validate:"required,numeric"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" validate:"gt=0"`
	HTTPTimeout     time.Duration `json:"http_timeout" validate:"gt=0"`
	StaticDir       string        `json:"static_dir" validate:"required"`
	PublicBaseURL   string        `json:"public_base_url" validate:"omitempty,url"`

	// Feeds
	FeedsFile      string        `json:"feeds_file" validate:"required"`
	Topics         []string      `json:"topics" validate:"min=1,dive,required"`
	FetchTimeout   time.Duration `json:"fetch_timeout" validate:"gt=0"`
	MaxConcurrency int           `json:"max_concurrency" validate:"min=1,max=64"`
	UserAgent      string        `json:"user_agent"`

	// Redis configuration
	RedisURL    string `json:"redis_url"`
	RedisPrefix string `json:"redis_prefix"`

	// CloudFlare R2 Configuration
	R2Endpoint  string `json:"r2_endpoint" validate:"omitempty,url"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Region    string `json:"r2_region"`

	// Logging
	LogLevel  string `json:"log_level" validate:"omitempty,oneof=debug info warn error fatal panic disabled"`
	LogFile   string `json:"log_file"`
	LogPretty bool   `json:"log_pretty"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// FromEnv builds a Config from the current environment without validating it.
func FromEnv() *Config {
	env := getEnv("APP_ENV", "development")

	return &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		StaticDir:       getEnv("STATIC_DIR", "./web/static"),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),

		// Feeds
		FeedsFile:      getEnv("FEEDS_FILE", "feeds.txt"),
		Topics:         getEnvAsList("TOPICS", DefaultTopics),
		FetchTimeout:   getEnvAsDuration("FETCH_TIMEOUT", 30*time.Second),
		MaxConcurrency: getEnvAsInt("MAX_CONCURRENCY", 1),
		UserAgent:      getEnv("USER_AGENT", "news-cast/1.0"),

		// Redis configuration
		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "news-cast:"),

		// CloudFlare R2 Configuration
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Region:    getEnv("R2_REGION", "auto"),

		// Logging
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFile:   getEnv("LOG_FILE", ""),
		LogPretty: getEnvAsBool("LOG_PRETTY", env == "development"),

		// Security
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

// getEnvAsList splits a comma separated value, dropping empty items.
func getEnvAsList(name string, defaultVal []string) []string {
	valueStr := getEnv(name, "")
	if strings.TrimSpace(valueStr) == "" {
		return append([]string(nil), defaultVal...)
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
