package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123"

// isolate points ENV_FILE at a missing file and clears every variable Load reads.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, key := range []string{
		"HTTP_ADDR", "DB_PATH", "LOG_LEVEL", "JWT_SECRET", "TOKEN_TTL", "STORE_TIMEOUT",
		"JOIN_CODE_LENGTH", "JOIN_CODE_ATTEMPTS", "REQUIRE_CREATOR_APPROVAL",
		"RATE_LIMIT_PER_SEC", "RATE_LIMIT_BURST", "ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr: got %q", cfg.HTTPAddr)
	}
	if cfg.StoreTimeout != 5*time.Second {
		t.Errorf("StoreTimeout: got %v", cfg.StoreTimeout)
	}
	if cfg.JoinCodeLength != 6 || cfg.JoinCodeAttempts != 5 {
		t.Errorf("join code settings: got %d/%d", cfg.JoinCodeLength, cfg.JoinCodeAttempts)
	}
	if cfg.RequireCreatorApproval {
		t.Error("RequireCreatorApproval should default to false")
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins: got %v", cfg.AllowedOrigins)
	}
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DB_PATH", "/tmp/votes.db")
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("REQUIRE_CREATOR_APPROVAL", "true")
	t.Setenv("ALLOWED_ORIGINS", "example.com, *.example.org ,")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DBPath != "/tmp/votes.db" {
		t.Errorf("DBPath: got %q", cfg.DBPath)
	}
	if cfg.StoreTimeout != 250*time.Millisecond {
		t.Errorf("StoreTimeout: got %v", cfg.StoreTimeout)
	}
	if !cfg.RequireCreatorApproval {
		t.Error("RequireCreatorApproval: got false")
	}
	if strings.Join(cfg.AllowedOrigins, "|") != "example.com|*.example.org" {
		t.Errorf("AllowedOrigins: got %v", cfg.AllowedOrigins)
	}
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("RATE_LIMIT_BURST", "3")

	cfg, err := Load([]string{"--addr", ":7000", "--rate-burst=50", "--creator-approval", "--allowed-origin", "a.test"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPAddr != ":7000" {
		t.Errorf("HTTPAddr: got %q, want :7000", cfg.HTTPAddr)
	}
	if cfg.RateLimitBurst != 50 {
		t.Errorf("RateLimitBurst: got %d, want 50", cfg.RateLimitBurst)
	}
	if !cfg.RequireCreatorApproval {
		t.Error("RequireCreatorApproval: got false")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "a.test" {
		t.Errorf("AllowedOrigins: got %v", cfg.AllowedOrigins)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "test.env")
	content := "JWT_SECRET=" + testSecret + "\nLOG_LEVEL=debug\nJOIN_CODE_LENGTH=8\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	// Unset so godotenv may fill them; t.Setenv restores the originals.
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("JOIN_CODE_LENGTH")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.JoinCodeLength != 8 {
		t.Errorf("values from env file not applied: %+v", cfg)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
		want string
	}{
		{name: "missing secret", want: "JWT_SECRET"},
		{name: "short secret", env: map[string]string{"JWT_SECRET": "short"}, want: "JWT_SECRET"},
		{name: "bad log level", args: []string{"--log-level", "loud"}, want: "LOG_LEVEL"},
		{name: "zero attempts", args: []string{"--join-code-attempts", "0"}, want: "JOIN_CODE_ATTEMPTS"},
		{name: "tiny join code", args: []string{"--join-code-length", "2"}, want: "JOIN_CODE_LENGTH"},
		{name: "negative rate", args: []string{"--rate-limit", "-1"}, want: "RATE_LIMIT_PER_SEC"},
		{name: "unknown flag", args: []string{"--nope"}, want: "unknown flag"},
		{name: "malformed int env", env: map[string]string{"JOIN_CODE_ATTEMPTS": "abc"}, want: "JOIN_CODE_ATTEMPTS"},
		{name: "malformed duration env", env: map[string]string{"STORE_TIMEOUT": "soon"}, want: "STORE_TIMEOUT"},
		{name: "malformed bool env", env: map[string]string{"REQUIRE_CREATOR_APPROVAL": "maybe"}, want: "REQUIRE_CREATOR_APPROVAL"},
		{name: "malformed float env", env: map[string]string{"RATE_LIMIT_PER_SEC": "fast"}, want: "RATE_LIMIT_PER_SEC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			if tt.name != "missing secret" {
				t.Setenv("JWT_SECRET", testSecret)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
