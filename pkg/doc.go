// Package pkg provides the core libraries of faceaug, a face image
// augmentation engine.
//
// # Overview
//
// faceaug turns each source face image into a set of randomly transformed
// variants for training a face model. The pkg directory is organized into
// these areas:
//
//  1. [augment] - The engine: range parsing, transform generation, per-image augmentation
//  2. [dataset] - Reading source directories and writing cropped, resized output
//  3. [pipeline] - Orchestration (source → augment → sink) with result caching
//  4. [cache] - File, Redis and null caches for augmented sets
//  5. [service] and [state] - The upload API and its persisted image set
//
// # Architecture
//
// The data flow of a generation run:
//
//	Source directories
//	         ↓
//	    [dataset] DirSource (sorted paths, decode)
//	         ↓
//	    [augment] Plan + Render (seeded per image index)
//	         ↓
//	    [dataset] Sink (crop, resize, encode)
//	         ↓
//	    {image:06d}_{variant:03d}.jpg
//
// # Quick Start
//
// Augment a single image:
//
//	import "github.com/matzehuels/faceaug/pkg/augment"
//
//	cfg := augment.Config{
//	    HFlip:      true,
//	    Scale:      augment.FloatRange{Min: 0.82, Max: 1.10},
//	    Rotation:   augment.IntRange{Min: -8, Max: 8},
//	    Brightness: 0.1,
//	}
//	rng := augment.NewSource(43, 0)
//	variants, err := augment.Augment(img, 19, cfg, rng)
//
// Run a full dataset through the pipeline:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Dirs:     []string{"data/lfw"},
//	    Variants: 19,
//	    Augment:  pipeline.DefaultAugment(),
//	    AugDir:   "out/aug",
//	    WriteAug: true,
//	    Crop:     dataset.DefaultCrop,
//	})
//
// # Determinism
//
// Every image draws from its own source, seeded by the run seed and the
// image index. Results therefore do not depend on processing order,
// windowing or worker count, and can be cached by content.
//
// # Observability
//
// The [observability] package exposes hooks for augment, persist, cache and
// service events. They are no-ops unless registered.
package pkg
