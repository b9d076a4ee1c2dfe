// Package augment expands one face image into a set of randomly perturbed
// variants.
//
// # Overview
//
// An augmentation run has three stages:
//
//  1. Generate: draw N random affine transforms (scale, rotation, shear,
//     translation) pivoted on the image center and store their inverses.
//  2. Perturb: for every transform, draw the photometric perturbations
//     (horizontal/vertical flip, brightness factor, Gaussian noise).
//  3. Render: apply flips, brightness and noise to a copy of the source,
//     clamp, then resample it through the inverse transform.
//
// Randomness comes exclusively from a caller-owned [Source]. Given the same
// seed, image and [Config], the generated transforms and every output pixel
// are reproducible.
//
// # Usage
//
//	cfg := augment.Config{
//	    HFlip:            true,
//	    Scale:            augment.FloatRange{Min: 0.82, Max: 1.10},
//	    ScaleAxisEqually: true,
//	    Rotation:         augment.IntRange{Min: -8, Max: 8},
//	    TranslationX:     augment.IntRange{Min: -5, Max: 5},
//	    TranslationY:     augment.IntRange{Min: -5, Max: 5},
//	    Brightness:       0.1,
//	}
//	variants, err := augment.Augment(img, 19, cfg, augment.NewSource(43))
//
// [Augment] never includes the unmodified source in its result; prepending
// it is left to the caller (see pipeline.AugmentedSet).
//
// # Concurrency
//
// A [Source] is not safe for concurrent use, and the order of draws defines
// the output. [Augmenter] therefore draws every random value serially and only
// fans out the pixel work, which keeps parallel results bit-identical to
// [Augment].
package augment
