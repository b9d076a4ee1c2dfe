package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnAugmentStart(ctx, "a.jpg", 19)
	p.OnAugmentComplete(ctx, "a.jpg", 19, false, time.Second, nil)
	p.OnPersistComplete(ctx, "a.jpg", 20, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "augment")
	c.OnCacheMiss(ctx, "augment")
	c.OnCacheSet(ctx, "augment", 1024)

	s := NoopServiceHooks{}
	s.OnAccept(ctx, "id", 2048, 19, time.Second, nil)
	s.OnRestore(ctx, 3, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Service().(NoopServiceHooks); !ok {
		t.Error("Service() should return NoopServiceHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customService := &testServiceHooks{}
	SetServiceHooks(customService)
	if Service() != customService {
		t.Error("SetServiceHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestLogHooks(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	h.Register()

	if Pipeline() != PipelineHooks(h) || Cache() != CacheHooks(h) || Service() != ServiceHooks(h) {
		t.Fatal("Register should install the hooks for every category")
	}

	ctx := context.Background()
	Pipeline().OnAugmentComplete(ctx, "face.jpg", 19, true, time.Millisecond, nil)
	Service().OnAccept(ctx, "abc", 10, 0, 0, errors.New("bad upload"))
	Cache().OnCacheMiss(ctx, "augment")

	out := buf.String()
	for _, want := range []string{"augment done", "face.jpg", "upload rejected", "bad upload", "cache miss"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testServiceHooks struct{ NoopServiceHooks }
