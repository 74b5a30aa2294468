package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Token strategies understood by the auth package.
const (
	TokenStrategyHMAC = "hmac"
	TokenStrategyJWT  = "jwt"
)

// Config holds application level configuration loaded from environment, an
// optional .env file and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	RedisAddr   string
	NATSURL     string

	GeocoderURL string
	GeocoderRPS float64

	TokenSecret   string
	TokenStrategy string
	TokenTTL      time.Duration

	EventPollInterval time.Duration
	EventBatchSize    int
	WorkerPoolSize    int
	ShutdownTimeout   time.Duration
	SettingsCacheTTL  time.Duration
	LogLevel          string
}

const (
	defaultRunAddress        = ":8080"
	defaultGeocoderURL       = "https://nominatim.openstreetmap.org"
	defaultGeocoderRPS       = 1
	defaultTokenSecret       = "change-me-in-production"
	defaultTokenTTL          = 24 * time.Hour
	defaultEventPollInterval = time.Second
	defaultEventBatchSize    = 64
	defaultWorkerPoolSize    = 4
	defaultShutdownTimeout   = 10 * time.Second
	defaultSettingsCacheTTL  = 5 * time.Minute
	defaultLogLevel          = "info"
	defaultEnvFile           = ".env"
)

// Load parses configuration from flags, environment variables and the .env
// file named by ENV_FILE. Process environment wins over the file.
func Load() (*Config, error) {
	lookup, err := withEnvFile(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	return load(os.Args[1:], lookup)
}

type envLookup func(string) (string, bool)

func withEnvFile(lookup envLookup) (envLookup, error) {
	path := getString(lookup, "ENV_FILE", defaultEnvFile)
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return lookup, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}, nil
}

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		RedisAddr:         getString(lookup, "REDIS_ADDR", ""),
		NATSURL:           getString(lookup, "NATS_URL", ""),
		GeocoderURL:       getString(lookup, "GEOCODER_URL", defaultGeocoderURL),
		GeocoderRPS:       getFloat(lookup, "GEOCODER_RPS", defaultGeocoderRPS),
		TokenSecret:       getString(lookup, "TOKEN_SECRET", defaultTokenSecret),
		TokenStrategy:     getString(lookup, "TOKEN_STRATEGY", TokenStrategyHMAC),
		TokenTTL:          getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		EventPollInterval: getDuration(lookup, "EVENT_POLL_INTERVAL", defaultEventPollInterval),
		EventBatchSize:    getInt(lookup, "EVENT_BATCH_SIZE", defaultEventBatchSize),
		WorkerPoolSize:    getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		SettingsCacheTTL:  getDuration(lookup, "SETTINGS_CACHE_TTL", defaultSettingsCacheTTL),
		LogLevel:          getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	fs := flag.NewFlagSet("dispatchd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.EventPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		tokenTTLStr        = cfg.TokenTTL.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for the settings cache")
	fs.StringVar(&cfg.NATSURL, "nats", cfg.NATSURL, "NATS server URL for order events")
	fs.StringVar(&cfg.GeocoderURL, "geocoder", cfg.GeocoderURL, "Reverse geocoding service base URL")
	fs.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.TokenStrategy, "token-strategy", cfg.TokenStrategy, "Auth token format: hmac or jwt")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Auth token lifetime")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent event relay workers")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between outbox polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.EventBatchSize, "poll-batch", cfg.EventBatchSize, "Maximum events per outbox poll")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.EventPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if secretFile, ok := lookup("TOKEN_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read token secret file: %w", err)
		}
		cfg.TokenSecret = strings.TrimSpace(string(content))
	}

	cfg.TokenStrategy = strings.ToLower(cfg.TokenStrategy)
	if cfg.TokenStrategy != TokenStrategyHMAC && cfg.TokenStrategy != TokenStrategyJWT {
		return nil, fmt.Errorf("unknown token strategy %q", cfg.TokenStrategy)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.EventBatchSize <= 0 {
		cfg.EventBatchSize = defaultEventBatchSize
	}

	if cfg.EventPollInterval <= 0 {
		cfg.EventPollInterval = defaultEventPollInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.SettingsCacheTTL <= 0 {
		cfg.SettingsCacheTTL = defaultSettingsCacheTTL
	}

	if cfg.GeocoderRPS <= 0 {
		cfg.GeocoderRPS = defaultGeocoderRPS
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
