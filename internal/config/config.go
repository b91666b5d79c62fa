// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port              string
	Environment       string
	InngestEventKey   string
	InngestSigningKey string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	DeepSeekAPIKey    string
	DoubaoAPIKey      string
	DoubaoBaseURL     string
	DatabaseURL       string
	Database          DatabaseConfig
	Detection         DetectionConfig
}

// DatabaseConfig holds the postgres connection settings.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// DetectionConfig carries every policy knob of the detection engine so the
// orchestrator is configured explicitly rather than through process-wide
// state. Confidence constants are policy defaults, not guarantees.
type DetectionConfig struct {
	MaxConcurrentCalls   int           // in-flight (provider, model) pairs per check
	CallTimeout          time.Duration // per provider call, per attempt
	MaxRetries           int           // retries after the first attempt, retryable kinds only
	RetryBackoff         time.Duration // linear: attempt * backoff
	Temperature          float64
	MaxTokens            int
	ExactConfidence      float64 // case-sensitive lexical match
	CaseFoldedConfidence float64 // match found only after case folding
	SnippetWindow        int     // characters either side of the first match
	AnalyticsCacheTTL    time.Duration
}

func Load() *Config {
	config := &Config{
		Port:              getEnv("PORT", "8000"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		InngestEventKey:   os.Getenv("INNGEST_EVENT_KEY"),
		InngestSigningKey: os.Getenv("INNGEST_SIGNING_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		DeepSeekAPIKey:    os.Getenv("DEEPSEEK_API_KEY"),
		DoubaoAPIKey:      os.Getenv("DOUBAO_API_KEY"),
		DoubaoBaseURL:     getEnv("DOUBAO_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
	}

	dbConfig, err := parseDatabaseConfig()
	if err != nil {
		// If DATABASE_URL parsing fails, fall back to individual env vars
		dbConfig = DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "brandlens"),
			SSLMode:         getEnv("DB_SSLMODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
		}
	}
	config.Database = dbConfig

	config.Detection = DetectionConfig{
		MaxConcurrentCalls:   getEnvInt("DETECTION_MAX_CONCURRENT_CALLS", 4),
		CallTimeout:          time.Duration(getEnvInt("DETECTION_CALL_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxRetries:           getEnvInt("DETECTION_MAX_RETRIES", 2),
		RetryBackoff:         time.Duration(getEnvInt("DETECTION_RETRY_BACKOFF_MS", 500)) * time.Millisecond,
		Temperature:          getEnvFloat("DETECTION_TEMPERATURE", 0.3),
		MaxTokens:            getEnvInt("DETECTION_MAX_TOKENS", 1000),
		ExactConfidence:      getEnvFloat("DETECTION_EXACT_CONFIDENCE", 1.0),
		CaseFoldedConfidence: getEnvFloat("DETECTION_CASEFOLDED_CONFIDENCE", 0.85),
		SnippetWindow:        getEnvInt("DETECTION_SNIPPET_WINDOW", 50),
		AnalyticsCacheTTL:    time.Duration(getEnvInt("ANALYTICS_CACHE_TTL_SECONDS", 3600)) * time.Second,
	}

	return config
}

func parseDatabaseConfig() (DatabaseConfig, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return DatabaseConfig{}, fmt.Errorf("DATABASE_URL not set")
	}

	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	config := DatabaseConfig{
		Host:            parsedURL.Hostname(),
		Port:            5432, // default
		User:            parsedURL.User.Username(),
		Name:            parsedURL.Path[1:], // remove leading slash
		SSLMode:         getEnv("DB_SSLMODE", "require"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
	}

	if password, ok := parsedURL.User.Password(); ok {
		config.Password = password
	}

	if parsedURL.Port() != "" {
		if port, err := strconv.Atoi(parsedURL.Port()); err == nil {
			config.Port = port
		}
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
