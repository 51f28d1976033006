package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/moltda/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("HOME", "/home/chem")

	tests := []struct {
		name string
		xdg  string
		want string
	}{
		{"default", "", filepath.Join("/home/chem", ".cache", "moltda")},
		{"xdg", "/scratch/cache", filepath.Join("/scratch/cache", "moltda")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			got, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("cacheDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocalCacheDirPrefersConfig(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/scratch/cache")
	c := New(&bytes.Buffer{}, log.InfoLevel)

	got, err := c.localCacheDir()
	if err != nil {
		t.Fatalf("localCacheDir() error = %v", err)
	}
	if want := filepath.Join("/scratch/cache", "moltda"); got != want {
		t.Errorf("localCacheDir() = %q, want %q", got, want)
	}

	c.Config.Cache.Dir = "/data/moltda-cache"
	if got, _ := c.localCacheDir(); got != "/data/moltda-cache" {
		t.Errorf("localCacheDir() = %q, want the configured dir", got)
	}
}

func TestNewCacheSelection(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		disabled bool
		noCache  bool
		wantFile bool
	}{
		{"file cache", false, false, true},
		{"--no-cache", false, true, false},
		{"disabled in config", true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&bytes.Buffer{}, log.InfoLevel)
			c.Config.Cache.Dir = dir
			c.Config.Cache.Disabled = tt.disabled

			cc, err := c.newCache(context.Background(), tt.noCache)
			if err != nil {
				t.Fatalf("newCache() error = %v", err)
			}
			defer cc.Close()

			fc, isFile := cc.(*cache.FileCache)
			if isFile != tt.wantFile {
				t.Fatalf("newCache() = %T, want file cache %v", cc, tt.wantFile)
			}
			if isFile && fc.Dir() != dir {
				t.Errorf("Dir() = %q, want %q", fc.Dir(), dir)
			}
		})
	}
}

func TestRedisRetry(t *testing.T) {
	tests := []struct {
		attempts int
		want     int
	}{
		{0, cache.DefaultRetryPolicy.Attempts},
		{-2, cache.DefaultRetryPolicy.Attempts},
		{5, 5},
	}
	for _, tt := range tests {
		got := redisRetry(tt.attempts)
		if got.Attempts != tt.want {
			t.Errorf("redisRetry(%d).Attempts = %d, want %d", tt.attempts, got.Attempts, tt.want)
		}
		if got.BaseDelay != cache.DefaultRetryPolicy.BaseDelay {
			t.Errorf("redisRetry(%d).BaseDelay = %v, want %v", tt.attempts, got.BaseDelay, cache.DefaultRetryPolicy.BaseDelay)
		}
	}
}
