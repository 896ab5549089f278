package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds proxy configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Checkfront upstream. When host and token id are set the proxy
	// forwards /cf traffic upstream; otherwise it serves the mock catalog.
	CheckfrontHost        string
	CheckfrontTokenID     string
	CheckfrontTokenSecret string

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	SessionTTL         time.Duration
	CORSAllowedOrigins string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:                  getEnv("PORT", "3001"),
		Env:                   getEnv("ENV", "development"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		CheckfrontHost:        getEnv("CHECKFRONT_HOST", ""),
		CheckfrontTokenID:     getEnv("CHECKFRONT_TOKEN_ID", ""),
		CheckfrontTokenSecret: getEnv("CHECKFRONT_TOKEN_SECRET", ""),
		RazorpayKeyID:         getEnv("RAZORPAY_KEY_ID", "rzp_test_DEMO"),
		RazorpayKeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayBaseURL:       getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisTLS:              getEnvBool("REDIS_TLS", false),
		SessionTTL:            getEnvDuration("SESSION_TTL", 30*time.Minute),
		CORSAllowedOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}
}

// MockMode reports whether the proxy serves the built-in mock catalog
// instead of a real Checkfront account.
func (c *Config) MockMode() bool {
	return c.CheckfrontHost == "" || c.CheckfrontTokenID == ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
