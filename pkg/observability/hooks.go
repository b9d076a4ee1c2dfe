// Package observability provides hooks for metrics, tracing, and logging.
//
// Library packages emit events through the hooks registered here and never
// depend on a metrics or tracing backend. Hooks default to no-ops; the
// binary registers real implementations at startup (see [LogHooks]).
//
//	observability.SetPipelineHooks(observability.NewLogHooks(logger))
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnAugmentStart(ctx, path, n)
//	// ... augment ...
//	observability.Pipeline().OnAugmentComplete(ctx, path, n, cached, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the augmentation pipeline.
type PipelineHooks interface {
	// OnAugmentStart fires before the variants of one source image are
	// generated or loaded from cache.
	OnAugmentStart(ctx context.Context, image string, count int)
	OnAugmentComplete(ctx context.Context, image string, count int, cached bool, duration time.Duration, err error)

	// OnPersistComplete fires after the files of one image were written.
	OnPersistComplete(ctx context.Context, image string, files int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Service Hooks
// =============================================================================

// ServiceHooks receives events from the image intake service.
type ServiceHooks interface {
	// OnAccept fires once per upload, after the state was saved or the
	// upload was rejected.
	OnAccept(ctx context.Context, id string, size int, variants int, duration time.Duration, err error)
	OnRestore(ctx context.Context, images int, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnAugmentStart(context.Context, string, int) {}
func (NoopPipelineHooks) OnAugmentComplete(context.Context, string, int, bool, time.Duration, error) {
}
func (NoopPipelineHooks) OnPersistComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServiceHooks is a no-op implementation of ServiceHooks.
type NoopServiceHooks struct{}

func (NoopServiceHooks) OnAccept(context.Context, string, int, int, time.Duration, error) {}
func (NoopServiceHooks) OnRestore(context.Context, int, error)                          {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	serviceHooks  ServiceHooks  = NoopServiceHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServiceHooks registers service hooks. Nil is ignored.
func SetServiceHooks(h ServiceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serviceHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Service returns the registered service hooks.
func Service() ServiceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serviceHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	serviceHooks = NoopServiceHooks{}
}
