package config

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/faceaug/pkg/augment"
	"github.com/matzehuels/faceaug/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	aug, err := cfg.AugmentConfig()
	if err != nil {
		t.Fatal(err)
	}
	want := augment.Config{
		HFlip:            true,
		Scale:            augment.FloatRange{Min: 0.82, Max: 1.10},
		ScaleAxisEqually: true,
		Rotation:         augment.IntRange{Min: -8, Max: 8},
		TranslationX:     augment.IntRange{Min: -5, Max: 5},
		TranslationY:     augment.IntRange{Min: -5, Max: 5},
		Brightness:       0.1,
	}
	if aug != want {
		t.Errorf("AugmentConfig() = %+v, want %+v", aug, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Augment.Count != 19 || cfg.Augment.Seed != 43 {
		t.Errorf("missing file should yield defaults, got count=%d seed=%d", cfg.Augment.Count, cfg.Augment.Seed)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	text := `
[augment]
count = 5
scale = 1.2
rotation = [5, 20]
noise_std = 0.01

[output]
crop = []
format = "png"

[cache]
backend = "file"
ttl = "2h"
`
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Augment.Count != 5 {
		t.Errorf("count = %d, want 5", cfg.Augment.Count)
	}
	if cfg.Cache.TTL.Duration != 2*time.Hour {
		t.Errorf("ttl = %v, want 2h", cfg.Cache.TTL)
	}
	// Unset keys keep their defaults.
	if !cfg.Augment.HFlip || cfg.Augment.Seed != 43 {
		t.Error("defaults should survive a partial file")
	}

	aug, err := cfg.AugmentConfig()
	if err != nil {
		t.Fatal(err)
	}
	if aug.Scale.Min < 0.79 || aug.Scale.Min > 0.81 || aug.Scale.Max != 1.2 {
		t.Errorf("scale = %+v, want (0.8, 1.2)", aug.Scale)
	}
	if aug.Rotation != (augment.IntRange{Min: 5, Max: 20}) {
		t.Errorf("rotation = %+v, want (5, 20)", aug.Rotation)
	}
	if aug.NoiseStd != 0.01 {
		t.Errorf("noise_std = %g", aug.NoiseStd)
	}

	opts, err := cfg.PipelineOptions([]string{"lfw"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Crop != (image.Rectangle{}) || opts.Format != "png" || opts.Variants != 5 {
		t.Errorf("pipeline options = %+v", opts)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"syntax", "[augment\ncount = 1"},
		{"unknown key", "[augment]\ncolour = 1"},
		{"bad bound", "[augment]\nrotation = [1, 2, 3]"},
		{"scale", "[augment]\nscale = 2.5"},
		{"min over max", "[augment]\nshear = [10, -10]"},
		{"brightness", "[augment]\nbrightness = 1.5"},
		{"count", "[augment]\ncount = -1"},
		{"crop", "[output]\ncrop = [1, 2, 3]"},
		{"crop order", "[output]\ncrop = [100, 0, 50, 10]"},
		{"format", "[output]\nformat = \"gif\""},
		{"ttl", "[cache]\nttl = \"soon\""},
		{"cache backend", "[cache]\nbackend = \"memcached\""},
		{"redis addr", "[cache]\nbackend = \"redis\""},
		{"state backend", "[service]\nstate_backend = \"sqlite\""},
		{"mongo uri", "[service]\nstate_backend = \"mongo\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.text), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsInvalid(err) {
				t.Errorf("err = %v, want an INVALID_* code", err)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, Default()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	text := buf.String()
	for _, want := range []string{"[augment]", "scale = [0.82, 1.1]", "rotation = 8", `ttl = "168h0m0s"`} {
		if !strings.Contains(text, want) {
			t.Errorf("encoded config missing %q:\n%s", want, text)
		}
	}

	cfg := &Config{}
	if err := Decode(text, cfg); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	a, _ := Default().AugmentConfig()
	b, err := cfg.AugmentConfig()
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("round trip changed augment config: %+v != %+v", a, b)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if p != "/tmp/xdg/faceaug/config.toml" {
		t.Errorf("Path() = %s", p)
	}

	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")
	cfg := Default()
	if dir, _ := cfg.CacheDir(); dir != "/tmp/cache/faceaug" {
		t.Errorf("CacheDir() = %s", dir)
	}
	cfg.Cache.Dir = "/custom"
	if dir, _ := cfg.CacheDir(); dir != "/custom" {
		t.Errorf("CacheDir() with cache.dir = %s", dir)
	}
}
