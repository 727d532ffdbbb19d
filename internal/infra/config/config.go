package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env      string
	HTTPAddr string

	LLMProvider      string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	ModelName        string
	ModelTemperature float32
	GeminiAPIKey     string
	GeminiModel      string

	TavilyAPIKey      string
	TavilyBaseURL     string
	OpenWeatherAPIKey string
	OpenWeatherURL    string

	BookingServiceURL string
	InternalAPIKey    string

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int

	SearchCacheTTL time.Duration
	RedisAddr      string
	RedisPassword  string

	MongoURI           string
	MongoDB            string
	IdempotencyTTL     time.Duration
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	KafkaGroupID       string
	BookingStatusTopic string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration

	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3UseSSL         bool
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var ErrMissingCredential = errors.New("config: missing credential")

// Load reads an optional .env file and then parses configuration from the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv parses configuration from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:                getEnv("APP_ENV", "dev"),
		HTTPAddr:           os.Getenv("HTTP_ADDR"),
		LLMProvider:        strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ModelName:          getEnv("MODEL_NAME", "gpt-3.5-turbo"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		TavilyAPIKey:       os.Getenv("TAVILY_API_KEY"),
		TavilyBaseURL:      getEnv("TAVILY_BASE_URL", "https://api.tavily.com"),
		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherURL:     getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"),
		BookingServiceURL:  strings.TrimRight(getEnv("BOOKING_SERVICE_URL", "http://localhost:3004"), "/"),
		InternalAPIKey:     getEnv("INTERNAL_API_KEY", "ai-agent-internal-key-2024"),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5002")),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDB:            getEnv("MONGO_DB", "concierge"),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix:   getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaGroupID:       getEnv("KAFKA_GROUP_ID", "ai-concierge"),
		BookingStatusTopic: getEnv("BOOKING_STATUS_TOPIC", "booking-status-updates"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		S3PublicEndpoint:   getEnv("S3_PUBLIC_ENDPOINT", ""),
		S3AccessKey:        getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:        getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:           getEnv("S3_BUCKET", "concierge-plans"),
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = getEnv("AI_AGENT_HOST", "0.0.0.0") + ":" + getEnv("AI_AGENT_PORT", "8000")
	}
	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}

	temperature, err := parseFloatEnv("MODEL_TEMPERATURE", 0.7)
	if err != nil {
		return Config{}, err
	}
	cfg.ModelTemperature = float32(temperature)

	rps, err := parseFloatEnv("RATE_LIMIT_RPS", 5)
	if err != nil {
		return Config{}, err
	}
	cfg.RateLimitRPS = rps
	burst, err := parseFloatEnv("RATE_LIMIT_BURST", 10)
	if err != nil {
		return Config{}, err
	}
	cfg.RateLimitBurst = int(burst)

	if cfg.SearchCacheTTL, err = parseDurationEnv("SEARCH_CACHE_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	for _, raw := range strings.Split(getEnv("RETRY_BACKOFF", "1s,5s,30s"), ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}
	if cfg.S3UseSSL, err = parseBoolEnv("S3_USE_SSL", false); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the credentials required before the server may start.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required", ErrMissingCredential)
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY is required", ErrMissingCredential)
		}
	default:
		return fmt.Errorf("config: unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.TavilyAPIKey == "" {
		return fmt.Errorf("%w: TAVILY_API_KEY is required", ErrMissingCredential)
	}
	return nil
}

func (c Config) ArchiveEnabled() bool { return c.S3Endpoint != "" }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseFloatEnv(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s number: %w", key, err)
	}
	return v, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
