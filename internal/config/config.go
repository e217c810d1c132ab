// Package config loads server settings from a .env file, the environment and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config contains runtime configuration for the server.
type Config struct {
	HTTPAddr               string
	DBPath                 string
	LogLevel               string
	JWTSecret              string
	TokenTTL               time.Duration
	StoreTimeout           time.Duration
	JoinCodeLength         int
	JoinCodeAttempts       int
	RequireCreatorApproval bool
	RateLimitPerSecond     float64
	RateLimitBurst         int
	AllowedOrigins         []string
}

// Load reads configuration. The .env file named by ENV_FILE (default ".env")
// is loaded first if it exists; variables already set in the environment win
// over it, and flags in args win over both.
func Load(args []string) (Config, error) {
	if err := loadDotEnv(getOrDefault("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	env := &envReader{}
	cfg := Config{
		HTTPAddr:               getOrDefault("HTTP_ADDR", ":8080"),
		DBPath:                 getOrDefault("DB_PATH", "./data/splitvote.db"),
		LogLevel:               getOrDefault("LOG_LEVEL", "info"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		TokenTTL:               env.durationValue("TOKEN_TTL", 30*24*time.Hour),
		StoreTimeout:           env.durationValue("STORE_TIMEOUT", 5*time.Second),
		JoinCodeLength:         env.intValue("JOIN_CODE_LENGTH", 6),
		JoinCodeAttempts:       env.intValue("JOIN_CODE_ATTEMPTS", 5),
		RequireCreatorApproval: env.boolValue("REQUIRE_CREATOR_APPROVAL", false),
		RateLimitPerSecond:     env.floatValue("RATE_LIMIT_PER_SEC", 10),
		RateLimitBurst:         env.intValue("RATE_LIMIT_BURST", 20),
		AllowedOrigins:         splitList(os.Getenv("ALLOWED_ORIGINS")),
	}
	if err := errors.Join(env.errs...); err != nil {
		return Config{}, err
	}

	flags := pflag.NewFlagSet("splitvote", pflag.ContinueOnError)
	flags.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	flags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the SQLite database")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "secret used to sign session tokens")
	flags.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "session token lifetime")
	flags.DurationVar(&cfg.StoreTimeout, "store-timeout", cfg.StoreTimeout, "deadline for storage calls per operation")
	flags.IntVar(&cfg.JoinCodeLength, "join-code-length", cfg.JoinCodeLength, "length of generated join codes")
	flags.IntVar(&cfg.JoinCodeAttempts, "join-code-attempts", cfg.JoinCodeAttempts, "join codes tried before giving up on a collision")
	flags.BoolVar(&cfg.RequireCreatorApproval, "creator-approval", cfg.RequireCreatorApproval, "only let group creators approve join requests")
	flags.Float64Var(&cfg.RateLimitPerSecond, "rate-limit", cfg.RateLimitPerSecond, "RPCs per second allowed per caller")
	flags.IntVar(&cfg.RateLimitBurst, "rate-burst", cfg.RateLimitBurst, "RPC burst allowed per caller")
	flags.StringSliceVar(&cfg.AllowedOrigins, "allowed-origin", cfg.AllowedOrigins, "origin pattern accepted for websocket connections (repeatable)")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR must not be empty")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel)
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET is required and must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be > 0")
	}
	if c.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be > 0")
	}
	if c.JoinCodeLength < 4 {
		return errors.New("JOIN_CODE_LENGTH must be >= 4")
	}
	if c.JoinCodeAttempts <= 0 {
		return errors.New("JOIN_CODE_ATTEMPTS must be > 0")
	}
	if c.RateLimitPerSecond <= 0 {
		return errors.New("RATE_LIMIT_PER_SEC must be > 0")
	}
	if c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_BURST must be > 0")
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func getOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

// envReader parses typed environment variables, collecting malformed values
// instead of silently falling back to the default.
type envReader struct {
	errs []error
}

func (r *envReader) parse(key string, parse func(string) error) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	if err := parse(raw); err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s=%q is invalid: %w", key, raw, err))
	}
}

func (r *envReader) intValue(key string, fallback int) int {
	v := fallback
	r.parse(key, func(raw string) (err error) {
		v, err = strconv.Atoi(raw)
		return err
	})
	return v
}

func (r *envReader) floatValue(key string, fallback float64) float64 {
	v := fallback
	r.parse(key, func(raw string) (err error) {
		v, err = strconv.ParseFloat(raw, 64)
		return err
	})
	return v
}

func (r *envReader) boolValue(key string, fallback bool) bool {
	v := fallback
	r.parse(key, func(raw string) (err error) {
		v, err = strconv.ParseBool(raw)
		return err
	})
	return v
}

func (r *envReader) durationValue(key string, fallback time.Duration) time.Duration {
	v := fallback
	r.parse(key, func(raw string) (err error) {
		v, err = time.ParseDuration(raw)
		return err
	})
	return v
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
