package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment values used for the source_env guard field.
const (
	EnvProd    = "prod"
	EnvPreview = "preview"
	EnvDev     = "dev"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string
	PRRef         string

	// Record store configuration
	StoreBaseURL         string
	StoreBaseID          string
	StoreAPIKey          string
	StoreProfileTable    string
	StoreEducationTable  string
	StoreExperienceTable string

	// Generation configuration
	GenerationEndpoint string
	GenerationAPIKey   string
	GenerationModel    string
	GenerationTimeout  time.Duration

	// Rate limiting (generate routes only)
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Logging and features
	LogLevel   string
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", EnvDev),
		PRRef:         getEnv("PR_REF", "local"),

		StoreBaseURL:         getEnv("STORE_BASE_URL", "https://api.airtable.com"),
		StoreBaseID:          getEnv("STORE_BASE_ID", ""),
		StoreAPIKey:          getEnv("STORE_API_KEY", ""),
		StoreProfileTable:    getEnv("STORE_PROFILE_TABLE", "profiles"),
		StoreEducationTable:  getEnv("STORE_EDUCATION_TABLE", "education"),
		StoreExperienceTable: getEnv("STORE_EXPERIENCE_TABLE", "experience"),

		GenerationEndpoint: getEnv("GENERATION_ENDPOINT", ""),
		GenerationAPIKey:   getEnv("GENERATION_API_KEY", ""),
		GenerationModel:    getEnv("GENERATION_MODEL", "text-gen-1"),
		GenerationTimeout:  time.Duration(getEnvInt("GENERATION_TIMEOUT_MS", 12000)) * time.Millisecond,

		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 10),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MINUTES", 60)) * time.Minute,

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvProd, EnvPreview, EnvDev:
	default:
		return fmt.Errorf("ENVIRONMENT must be one of prod, preview, dev; got %q", c.Environment)
	}

	if c.Environment == EnvProd {
		if c.StoreBaseID == "" {
			return fmt.Errorf("STORE_BASE_ID is required in production")
		}
		if c.StoreAPIKey == "" {
			return fmt.Errorf("STORE_API_KEY is required in production")
		}
		if c.GenerationEndpoint == "" {
			return fmt.Errorf("GENERATION_ENDPOINT is required in production")
		}
		if c.GenerationAPIKey == "" {
			return fmt.Errorf("GENERATION_API_KEY is required in production")
		}
	}

	if c.RateLimitMax <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX must be positive")
	}

	return nil
}

// IsProduction checks if running in the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProd
}

// IsDevelopment checks if running in local development
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDev
}

// HasStore reports whether the hosted record store is configured.
// Outside production its absence selects the in-memory fallback; that
// choice belongs here, not in the store client.
func (c *Config) HasStore() bool {
	return c.StoreBaseID != "" && c.StoreAPIKey != ""
}

// HasGeneration reports whether the generation service is configured
func (c *Config) HasGeneration() bool {
	return c.GenerationEndpoint != "" && c.GenerationAPIKey != ""
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
