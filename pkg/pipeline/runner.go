package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/faceaug/pkg/augment"
	"github.com/matzehuels/faceaug/pkg/cache"
	"github.com/matzehuels/faceaug/pkg/dataset"
	"github.com/matzehuels/faceaug/pkg/observability"
)

const keyTypeAugment = "augment"

// Runner executes the pipeline with caching.
// Both the CLI and the service use it to avoid duplicating caching logic.
//
// The Runner holds no per-run state; multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL applies to new cache entries. Zero means cache.TTLAugment.
	TTL time.Duration
}

// NewRunner creates a runner. A nil keyer uses the DefaultKeyer and a nil
// cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute augments every image in the configured window and writes the
// results.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	src, err := dataset.NewDirSource(opts.Dirs, dataset.SourceOptions{
		Extensions: opts.Extensions,
		Logger:     opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	sink := opts.Sink()
	if err := sink.Prepare(); err != nil {
		return nil, err
	}

	lo, hi, err := src.Window(opts.StartAt, opts.Count)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("found images", "total", src.Len(), "processing", hi-lo)
	if opts.OnStart != nil {
		opts.OnStart(hi - lo)
	}

	result := &Result{Stats: Stats{Found: src.Len()}}
	err = src.Each(ctx, opts.StartAt, opts.Count, func(index int, path string, img *augment.Image) error {
		res, err := r.process(ctx, index, path, img, sink, opts, &result.Stats)
		if err != nil {
			return fmt.Errorf("image %d (%s): %w", index, path, err)
		}
		result.Images++
		result.Variants += res.Variants
		result.Files = append(result.Files, res.Files...)
		if res.Cached {
			result.CacheHits++
		}
		if opts.OnImage != nil {
			opts.OnImage(*res)
		}
		return nil
	})
	result.Stats.TotalTime = time.Since(start)
	if err != nil {
		return result, err
	}

	r.Logger.Info("generated dataset",
		"images", result.Images,
		"variants", result.Variants,
		"files", len(result.Files),
		"cached", result.CacheHits,
		"duration", result.Stats.TotalTime.Round(time.Millisecond))
	return result, nil
}

// Process augments one image and writes it through sink. name identifies
// the image in logs and hooks.
func (r *Runner) Process(ctx context.Context, index int, name string, img *augment.Image, sink *dataset.Sink, opts Options) (*ImageResult, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForAugment(); err != nil {
		return nil, err
	}
	return r.process(ctx, index, name, img, sink, opts, &Stats{})
}

func (r *Runner) process(ctx context.Context, index int, name string, img *augment.Image, sink *dataset.Sink, opts Options, stats *Stats) (*ImageResult, error) {
	hooks := observability.Pipeline()

	hooks.OnAugmentStart(ctx, name, opts.Variants)
	augStart := time.Now()
	set, hit, err := r.AugmentWithCacheInfo(ctx, img, index, opts)
	took := time.Since(augStart)
	hooks.OnAugmentComplete(ctx, name, opts.Variants, hit, took, err)
	if err != nil {
		return nil, err
	}
	stats.AugmentTime += took

	writeStart := time.Now()
	files, err := sink.Write(index, set.Images())
	took = time.Since(writeStart)
	hooks.OnPersistComplete(ctx, name, len(files), took, err)
	if err != nil {
		return nil, err
	}
	stats.WriteTime += took

	opts.Logger.Debug("processed image", "index", index, "image", name, "files", len(files), "cached", hit)
	return &ImageResult{
		Index:    index,
		Path:     name,
		Variants: len(set.Variants),
		Files:    files,
		Cached:   hit,
	}, nil
}

// AugmentWithCacheInfo returns img and its variants, reporting whether they
// came from the cache. The variants depend only on the pixels of img,
// index and the augment options.
func (r *Runner) AugmentWithCacheInfo(ctx context.Context, img *augment.Image, index int, opts Options) (*AugmentedSet, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForAugment(); err != nil {
		return nil, false, err
	}
	if err := img.Validate(); err != nil {
		return nil, false, err
	}

	keyOpts, err := opts.AugmentKeyOpts(index)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.AugmentKey(imageHash(img), keyOpts)
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached AugmentedSet
			if err := json.Unmarshal(data, &cached); err == nil && cached.valid(img, opts.Variants) {
				hooks.OnCacheHit(ctx, keyTypeAugment)
				return &cached, true, nil
			}
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "err", err)
		}
		hooks.OnCacheMiss(ctx, keyTypeAugment)
	}

	variants, err := r.augment(ctx, img, index, opts)
	if err != nil {
		return nil, false, err
	}
	set := &AugmentedSet{Original: img, Variants: variants}

	if data, err := json.Marshal(set); err == nil {
		ttl := r.TTL
		if ttl == 0 {
			ttl = cache.TTLAugment
		}
		if err := r.Cache.Set(ctx, cacheKey, data, ttl); err != nil {
			opts.Logger.Warn("cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeAugment, len(data))
		}
	}
	return set, false, nil
}

// Augment is a convenience wrapper that discards the cache hit info.
func (r *Runner) Augment(ctx context.Context, img *augment.Image, index int, opts Options) (*AugmentedSet, error) {
	set, _, err := r.AugmentWithCacheInfo(ctx, img, index, opts)
	return set, err
}

func (r *Runner) augment(ctx context.Context, img *augment.Image, index int, opts Options) ([]*augment.Image, error) {
	rng := augment.NewSource(opts.Seed, uint64(index))
	if opts.Workers > 1 {
		return augment.Augmenter{Workers: opts.Workers}.Augment(ctx, img, opts.Variants, opts.Augment, rng)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return augment.Augment(img, opts.Variants, opts.Augment, rng)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
