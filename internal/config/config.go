package config

import (
	"log"
	"os"
	"strconv"
)

const (
	AuthModeNone    = "none"
	AuthModeGateway = "gateway"

	defaultMaxPitchClasses       = 12
	defaultMaxFifthsPitchClasses = 8
	defaultBatchWorkers          = 4
	defaultMaxBatchSize          = 64
	defaultRateLimitRPS          = 20
	defaultRateLimitBurst        = 40
)

// Config holds the application configuration
// Note: This is a stateless service - no database or auth secrets needed
type Config struct {
	// Environment
	Environment string
	Port        string

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	CloudWatchEnabled bool   // Push request and spelling metrics to CloudWatch (production default)

	// Spelling
	SpellingStrategy              string // Strategy used when a request names none
	SpellingMaxPitchClasses       int    // Largest pitch-class set accepted per request
	SpellingMaxFifthsPitchClasses int    // Largest set the fifths search accepts; it scores up to 3^n spellings
	SpellingBatchWorkers          int    // Concurrent spellings per batch request
	SpellingMaxBatchSize          int    // Largest number of sets in one batch request

	// Per-client rate limit on /api/v1; RateLimitRPS <= 0 disables it
	RateLimitRPS   float64
	RateLimitBurst int

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from magda-cloud
	AuthMode string
}

func Load() *Config {
	environment := getEnv("ENVIRONMENT", "development")
	return &Config{
		Environment:                   environment,
		Port:                          getEnv("PORT", "8080"),
		SentryDSN:                     getEnv("SENTRY_DSN", ""),
		CloudWatchEnabled:             getEnv("CLOUDWATCH_ENABLED", strconv.FormatBool(environment == "production")) == "true",
		SpellingStrategy:              getEnv("SPELLING_STRATEGY", "sharps_or_flats"),
		SpellingMaxPitchClasses:       getEnvInt("SPELLING_MAX_PITCH_CLASSES", defaultMaxPitchClasses),
		SpellingMaxFifthsPitchClasses: getEnvInt("SPELLING_MAX_FIFTHS_PITCH_CLASSES", defaultMaxFifthsPitchClasses),
		SpellingBatchWorkers:          getEnvInt("SPELLING_BATCH_WORKERS", defaultBatchWorkers),
		SpellingMaxBatchSize:          getEnvInt("SPELLING_MAX_BATCH_SIZE", defaultMaxBatchSize),
		RateLimitRPS:                  getEnvFloat("RATE_LIMIT_RPS", defaultRateLimitRPS),
		RateLimitBurst:                getEnvInt("RATE_LIMIT_BURST", defaultRateLimitBurst),
		AuthMode:                      getEnv("AUTH_MODE", AuthModeNone), // Default to no auth for self-hosted
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("⚠️  Ignoring invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("⚠️  Ignoring invalid %s=%q, using %g", key, value, defaultValue)
		return defaultValue
	}
	return f
}

// IsGatewayMode returns true if running behind the Express gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == AuthModeGateway
}
