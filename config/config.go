package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries everything read from the environment at startup.
type Config struct {
	Env  string
	Port string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	AppBaseURL     string
	AllowedOrigins string

	MagicLinkTTL        time.Duration
	RateLimitPerWindow  int
	RateLimitWindow     time.Duration
	EnumerationCooldown time.Duration

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	EmailGatewayURL    string
	EmailGatewayAPIKey string
	EmailGatewaySecret string

	RecurrenceSweepSpec string
	MessageSweepSpec    string
	ExtractionSweepSpec string
}

// Load reads the environment into a Config. godotenv runs before this
// in main, so .env values are already visible.
func Load() *Config {
	return &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DatabaseURL: getEnv("DB_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", ""),

		AppBaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		MagicLinkTTL:        getEnvDuration("MAGIC_LINK_TTL", 15*time.Minute),
		RateLimitPerWindow:  getEnvInt("RATE_LIMIT_PER_WINDOW", 5),
		RateLimitWindow:     getEnvDuration("RATE_LIMIT_WINDOW", time.Hour),
		EnumerationCooldown: getEnvDuration("ENUMERATION_COOLDOWN", 24*time.Hour),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),

		LLMBaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMModel:   getEnv("LLM_MODEL", "gpt-4o-mini"),

		EmailGatewayURL:    getEnv("EMAIL_GATEWAY_URL", ""),
		EmailGatewayAPIKey: getEnv("EMAIL_GATEWAY_API_KEY", ""),
		EmailGatewaySecret: getEnv("EMAIL_GATEWAY_SECRET", ""),

		RecurrenceSweepSpec: getEnv("RECURRENCE_SWEEP_SPEC", "*/10 * * * *"),
		MessageSweepSpec:    getEnv("MESSAGE_SWEEP_SPEC", "* * * * *"),
		ExtractionSweepSpec: getEnv("EXTRACTION_SWEEP_SPEC", "*/15 * * * *"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
