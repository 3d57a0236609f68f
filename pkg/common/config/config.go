package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Provider API
	APIBaseURL      string
	APITimeout      time.Duration
	APIMaxRetries   int
	APIBatchSize    int
	APIRequestDelay time.Duration
	APIUserAgent    string

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers         []string
	ExtractionEventTopic string

	// Pipeline
	ArtifactDir  string
	TaxonomyPath string

	// Analytics API
	ServerHost   string
	ServerPort   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func Load() *Config {
	return &Config{
		APIBaseURL:      getEnv("API_BASE_URL", "https://clinicaltrials.gov/api/v2/studies"),
		APITimeout:      getDuration("API_TIMEOUT", 30*time.Second),
		APIMaxRetries:   getIntEnv("API_MAX_RETRIES", 3),
		APIBatchSize:    getIntEnv("API_BATCH_SIZE", 1000),
		APIRequestDelay: getDuration("API_REQUEST_DELAY", time.Second),
		APIUserAgent:    getEnv("API_USER_AGENT", "TrialForge-ETL/1.0"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "trialforge"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "trialforge123"),
		PostgresDB:       getEnv("POSTGRES_DB", "clinical_trials"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:         getStringSliceEnv("KAFKA_BROKERS", nil),
		ExtractionEventTopic: getEnv("EXTRACTION_EVENT_TOPIC", "extraction-events"),

		ArtifactDir:  getEnv("ARTIFACT_DIR", "data/raw"),
		TaxonomyPath: getEnv("TAXONOMY_PATH", ""),

		ServerHost:   getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
	}
}

// PostgresDSN renders the gorm connection string for the warehouse.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.PostgresHost,
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresDB,
		c.PostgresPort,
		c.PostgresSSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
