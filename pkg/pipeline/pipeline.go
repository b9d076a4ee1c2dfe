// Package pipeline runs the dataset augmentation pipeline for faceaug.
//
// The CLI and the intake service share this package so that both produce
// byte-identical files for the same input and options.
//
// # Architecture
//
// Every source image passes through two stages:
//
//  1. Augment: derive N random variants with a source seeded by
//     (Seed, image index), cached by image content and options
//  2. Persist: crop, resize and write the original plus its variants
//
// Seeding per image makes each image's variants independent of the window
// being processed and of processing order, which is what allows caching.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Dirs:     []string{"lfw"},
//	    Variants: 19,
//	    Augment:  cfg,
//	    AugDir:   "out/aug",
//	    WriteAug: true,
//	}
//	result, err := runner.Execute(ctx, opts)
//
// Augment a single in-memory image:
//
//	set, err := runner.Augment(ctx, img, 0, opts)
package pipeline

import (
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/faceaug/pkg/augment"
	"github.com/matzehuels/faceaug/pkg/cache"
	"github.com/matzehuels/faceaug/pkg/dataset"
	"github.com/matzehuels/faceaug/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultVariants is the number of augmented variants per image.
	DefaultVariants = 19

	// DefaultSeed is used when Seed is zero.
	DefaultSeed = uint64(43)
)

// DefaultAugment returns the augmentation ranges used for the LFW face set.
func DefaultAugment() augment.Config {
	return augment.Config{
		HFlip:            true,
		Scale:            augment.FloatRange{Min: 0.82, Max: 1.10},
		ScaleAxisEqually: true,
		Rotation:         augment.IntRange{Min: -8, Max: 8},
		TranslationX:     augment.IntRange{Min: -5, Max: 5},
		TranslationY:     augment.IntRange{Min: -5, Max: 5},
		Brightness:       0.1,
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It supports JSON serialization so a
// run can be recorded next to its output.
type Options struct {
	// Source options
	Dirs       []string `json:"dirs,omitempty"`
	Extensions []string `json:"extensions,omitempty"`
	StartAt    int      `json:"start_at,omitempty"`
	Count      int      `json:"count,omitempty"` // 0 = through the last image

	// Augment options
	Variants int            `json:"variants"`
	Seed     uint64         `json:"seed,omitempty"`
	Augment  augment.Config `json:"augment"`
	Workers  int            `json:"workers,omitempty"` // 0 or 1 = serial
	Refresh  bool           `json:"refresh,omitempty"`

	// Output options
	AugDir     string          `json:"aug_dir,omitempty"`
	UnaugDir   string          `json:"unaug_dir,omitempty"`
	WriteAug   bool            `json:"write_aug"`
	WriteUnaug bool            `json:"write_unaug"`
	Crop       image.Rectangle `json:"crop"`
	Size       int             `json:"size,omitempty"`
	Format     string          `json:"format,omitempty"`
	Quality    int             `json:"quality,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
	// OnStart receives the number of images in the window before the first
	// one is processed.
	OnStart func(total int) `json:"-"`
	// OnImage receives every processed image in index order.
	OnImage func(ImageResult) `json:"-"`

	validated bool
}

// Result summarizes a pipeline run.
type Result struct {
	// Images is the number of source images processed.
	Images int
	// Variants is the number of generated variants, excluding originals.
	Variants int
	// Files lists every written path.
	Files []string
	// CacheHits counts images whose variants came from the cache.
	CacheHits int
	Stats     Stats
}

// Stats contains timing information.
type Stats struct {
	Found       int // images found in the source directories
	AugmentTime time.Duration
	WriteTime   time.Duration
	TotalTime   time.Duration
}

// ImageResult describes one processed source image.
type ImageResult struct {
	Index    int
	Path     string
	Variants int
	Files    []string
	Cached   bool
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options of a full run and applies
// defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Dirs) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one dataset directory is required")
	}
	if o.StartAt < 0 || o.Count < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "start_at and count must not be negative")
	}
	if !o.WriteAug && !o.WriteUnaug {
		return errors.New(errors.ErrCodeInvalidConfig, "nothing to write: enable write_aug or write_unaug")
	}
	if err := o.ValidateForAugment(); err != nil {
		return err
	}
	if len(o.Extensions) == 0 {
		o.Extensions = dataset.DefaultExtensions
	}
	if o.Format == "" {
		o.Format = dataset.DefaultFormat
	}
	if o.Quality == 0 {
		o.Quality = dataset.DefaultQuality
	}
	o.validated = true
	return nil
}

// ValidateForAugment checks the options needed to augment one image.
func (o *Options) ValidateForAugment() error {
	if err := augment.ValidateCount(o.Variants); err != nil {
		return err
	}
	if err := o.Augment.Validate(); err != nil {
		return err
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must not be negative, got %d", o.Workers)
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// Sink returns the output configuration as a dataset sink.
func (o *Options) Sink() *dataset.Sink {
	return &dataset.Sink{
		AugDir:     o.AugDir,
		UnaugDir:   o.UnaugDir,
		WriteAug:   o.WriteAug,
		WriteUnaug: o.WriteUnaug,
		Crop:       o.Crop,
		Size:       o.Size,
		Format:     o.Format,
		Quality:    o.Quality,
	}
}

// AugmentKeyOpts returns the cache key options for the image at index.
func (o *Options) AugmentKeyOpts(index int) (cache.AugmentKeyOpts, error) {
	fingerprint, err := cache.HashJSON(o.Augment)
	if err != nil {
		return cache.AugmentKeyOpts{}, err
	}
	return cache.AugmentKeyOpts{
		Config: fingerprint,
		Seed:   o.Seed,
		Index:  index,
		Count:  o.Variants,
	}, nil
}
