package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/moltda/pkg/errors"
)

func TestDecode(t *testing.T) {
	cfg, err := Decode(`
[pipeline]
pixels = [20, 10]
spread = 0.0
weighting = "linear"
dims = [1, 2]

[cache]
redis_addr = "localhost:6379"

[server]
addr = ":9090"
shutdown_timeout = "3s"
`)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	opts := cfg.Options()
	if opts.Pixels != [2]int{20, 10} {
		t.Errorf("Pixels = %v, want [20 10]", opts.Pixels)
	}
	if opts.Spread == nil || *opts.Spread != 0 {
		t.Errorf("Spread = %v, want explicit 0", opts.Spread)
	}
	if opts.Weighting != "linear" {
		t.Errorf("Weighting = %q, want linear", opts.Weighting)
	}
	if len(opts.Dims) != 2 {
		t.Errorf("Dims = %v, want [1 2]", opts.Dims)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.Cache.RedisAddr)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout.Duration != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 3s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.MaxBodyBytes != Default().Server.MaxBodyBytes {
		t.Errorf("MaxBodyBytes = %d, want default", cfg.Server.MaxBodyBytes)
	}
}

func TestDecodeUnsetSpreadKeepsDefault(t *testing.T) {
	cfg, err := Decode(`[pipeline]
weighting = "identity"`)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Options().Spread != nil {
		t.Error("unset spread should stay nil so the pipeline default applies")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"syntax", `[pipeline`, errors.ErrCodeInvalidInput},
		{"bad weighting", "[pipeline]\nweighting = \"quadratic\"", errors.ErrCodeUnsupportedWeighting},
		{"bad format", "[pipeline]\nformats = [\"svg\"]", errors.ErrCodeInvalidFormat},
		{"bad duration", "[server]\nshutdown_timeout = \"soon\"", errors.ErrCodeInvalidInput},
		{"negative retries", "[cache]\nredis_retries = -1", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, tt.code) {
				t.Errorf("Decode() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moltda.toml")
	if err := os.WriteFile(path, []byte("[store]\ndir = \"/tmp/results\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvMongoURI, "mongodb://db:27017")
	t.Setenv(EnvRedisAddr, "")
	t.Setenv(EnvAddr, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Dir != "/tmp/results" {
		t.Errorf("Store.Dir = %q", cfg.Store.Dir)
	}
	if cfg.Store.MongoURI != "mongodb://db:27017" {
		t.Errorf("MongoURI = %q, want env override", cfg.Store.MongoURI)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.toml")
	if err := os.WriteFile(unknown, []byte("[pipeline]\npixel = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Load(unknown); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Load(unknown key) error = %v, want INVALID_INPUT", err)
	}
}
