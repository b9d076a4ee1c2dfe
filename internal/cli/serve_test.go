package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matzehuels/faceaug/internal/config"
	"github.com/matzehuels/faceaug/pkg/state"
)

func TestOpenStateStore(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Service.StatePath = filepath.Join(t.TempDir(), "state", "state.json")

	store, err := openStateStore(ctx, cfg)
	if err != nil {
		t.Fatalf("file backend: %v", err)
	}
	defer store.Close()
	fs, ok := store.(*state.FileStore)
	if !ok || fs.Path() != cfg.Service.StatePath {
		t.Errorf("store = %T, want *state.FileStore at %s", store, cfg.Service.StatePath)
	}

	cfg.Service.StateBackend = "sqlite"
	if _, err := openStateStore(ctx, cfg); err == nil {
		t.Error("unknown backend should fail")
	}
}
