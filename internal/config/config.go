package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Attempt store backends.
const (
	AttemptStoreRedis = "redis"
	AttemptStoreToken = "token"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	LogLevel            string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	NATSSubject         string
	JWTSecret           string
	AttemptStore        string
	AttemptSecret       string
	AttemptTTL          time.Duration
	DashboardCacheTTL   time.Duration
	SubmissionRateLimit int
	AllowOrigins        string
	SeedEnabled         bool
	SeedToken           string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TUTOR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Tutor API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("nats.subject", "tutor.submission.graded")
	v.SetDefault("attempt.store", AttemptStoreRedis)
	v.SetDefault("attempt.ttl", "2h")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("submission.rate_limit", 10)
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("seed.enabled", false)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	attemptTTL, err := parseDuration(v, "attempt.ttl", "2h")
	if err != nil {
		return Config{}, err
	}
	dashboardTTL, err := parseDuration(v, "dashboard.cache_ttl", "5m")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		LogLevel:            strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		NATSSubject:         v.GetString("nats.subject"),
		JWTSecret:           v.GetString("jwt.secret"),
		AttemptStore:        strings.ToLower(strings.TrimSpace(v.GetString("attempt.store"))),
		AttemptSecret:       v.GetString("attempt.secret"),
		AttemptTTL:          attemptTTL,
		DashboardCacheTTL:   dashboardTTL,
		SubmissionRateLimit: v.GetInt("submission.rate_limit"),
		AllowOrigins:        v.GetString("cors.allow_origins"),
		SeedEnabled:         v.GetBool("seed.enabled"),
		SeedToken:           v.GetString("seed.token"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.AttemptStore {
	case AttemptStoreRedis:
	case AttemptStoreToken:
		if cfg.AttemptSecret == "" {
			return Config{}, fmt.Errorf("attempt secret must be provided when attempt store is %q", AttemptStoreToken)
		}
	default:
		return Config{}, fmt.Errorf("unknown attempt store %q", cfg.AttemptStore)
	}

	if cfg.SeedEnabled && cfg.SeedToken == "" {
		return Config{}, fmt.Errorf("seed token must be provided when seeding is enabled")
	}

	if cfg.SubmissionRateLimit <= 0 {
		cfg.SubmissionRateLimit = 10
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key, fallback string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		raw = fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return value, nil
}
