package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event to a charm logger at debug level; failures
// are logged as warnings. It implements all hook interfaces, so one value
// can be passed to each Set function.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

// Register installs h for every event category.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetServiceHooks(h)
}

func (h *LogHooks) OnAugmentStart(_ context.Context, image string, count int) {
	h.Logger.Debug("augment start", "image", image, "variants", count)
}

func (h *LogHooks) OnAugmentComplete(_ context.Context, image string, count int, cached bool, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("augment failed", "image", image, "err", err)
		return
	}
	h.Logger.Debug("augment done", "image", image, "variants", count, "cached", cached, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnPersistComplete(_ context.Context, image string, files int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("write failed", "image", image, "err", err)
		return
	}
	h.Logger.Debug("wrote files", "image", image, "files", files, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnAccept(_ context.Context, id string, size, variants int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("upload rejected", "id", id, "bytes", size, "err", err)
		return
	}
	h.Logger.Info("upload accepted", "id", id, "bytes", size, "variants", variants, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnRestore(_ context.Context, images int, err error) {
	if err != nil {
		h.Logger.Warn("restore failed", "err", err)
		return
	}
	h.Logger.Info("restored state", "images", images)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ ServiceHooks  = (*LogHooks)(nil)
)
