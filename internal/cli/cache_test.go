package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/faceaug/internal/config"
	"github.com/matzehuels/faceaug/pkg/cache"
)

func TestNewCache(t *testing.T) {
	c := New(io.Discard, LogInfo)
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		backend string
		noCache bool
		want    string
	}{
		{"no-cache flag", config.BackendFile, true, "null"},
		{"none", config.BackendNone, false, "null"},
		{"file", config.BackendFile, false, "file"},
		{"unreachable redis", config.BackendRedis, false, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache.Backend = tt.backend
			cfg.Cache.Dir = dir
			cfg.Cache.RedisAddr = "127.0.0.1:1"

			store, err := c.newCache(ctx, cfg, tt.noCache)
			if err != nil {
				t.Fatalf("newCache: %v", err)
			}
			defer store.Close()

			got := "null"
			if fc, ok := store.(*cache.FileCache); ok {
				got = "file"
				if fc.Dir() != dir {
					t.Errorf("Dir() = %s, want %s", fc.Dir(), dir)
				}
			}
			if got != tt.want {
				t.Errorf("backend = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewRunnerTTL(t *testing.T) {
	c := New(io.Discard, LogInfo)
	cfg := config.Default()
	cfg.Cache.TTL = config.Duration{Duration: time.Hour}

	runner, err := c.newRunner(context.Background(), cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	if runner.TTL != time.Hour {
		t.Errorf("TTL = %s, want 1h", runner.TTL)
	}
}

func TestCacheCommands(t *testing.T) {
	tmp := t.TempDir()
	cacheDir := filepath.Join(tmp, "cache")
	cfg := writeTestConfig(t, tmp, "[cache]\nbackend = \"file\"\ndir = \""+filepath.ToSlash(cacheDir)+"\"\n")

	_, out, err := newTestCLI(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out.String()) != cacheDir {
		t.Errorf("cache path = %q, want %q", out.String(), cacheDir)
	}

	fc, err := cache.NewFileCache(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"a", "b"} {
		if err := fc.Set(ctx, key, []byte(key), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	if _, _, err := newTestCLI(t, "--config", cfg, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, ok, _ := fc.Get(ctx, "a"); ok {
		t.Error("entries should be gone after clear")
	}
	if _, err := os.Stat(cacheDir); err != nil {
		t.Errorf("cache dir should remain: %v", err)
	}
}
