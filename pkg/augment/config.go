package augment

import (
	"github.com/matzehuels/faceaug/pkg/errors"
)

// Config holds the ranges of every perturbation applied to a variant.
// A Config is a value: the engine never mutates it.
type Config struct {
	// HFlip and VFlip allow flipping left-right / top-bottom with probability 0.5.
	HFlip bool `json:"hflip"`
	VFlip bool `json:"vflip"`

	// Scale is the zoom multiplier range. Min must be positive.
	Scale FloatRange `json:"scale"`
	// ScaleAxisEqually uses the x scale for y instead of a second draw.
	ScaleAxisEqually bool `json:"scale_axis_equally"`

	// Rotation and Shear are in whole degrees.
	Rotation IntRange `json:"rotation"`
	Shear    IntRange `json:"shear"`

	// TranslationX and TranslationY are in whole pixels.
	TranslationX IntRange `json:"translation_x"`
	TranslationY IntRange `json:"translation_y"`

	// Brightness b multiplies every sample by a factor in [1-b, 1+b].
	Brightness float64 `json:"brightness"`

	// NoiseMean and NoiseStd parameterize additive Gaussian noise in units of
	// the full sample range. NoiseStd == 0 disables noise.
	NoiseMean float64 `json:"noise_mean"`
	NoiseStd  float64 `json:"noise_std"`
}

// Identity returns the fully degenerate configuration: no flips, unit
// scale, and zero rotation, shear, translation, brightness change and noise.
// Augmenting with it reproduces the source image exactly.
func Identity() Config {
	return Config{
		Scale:            FloatRange{Min: 1, Max: 1},
		ScaleAxisEqually: true,
	}
}

// Validate checks every range invariant.
func (c Config) Validate() error {
	if c.Scale.Min > c.Scale.Max {
		return errors.New(errors.ErrCodeInvalidConfig, "scale range min %g > max %g", c.Scale.Min, c.Scale.Max)
	}
	if c.Scale.Min <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scale minimum must be positive, got %g", c.Scale.Min)
	}
	ranges := []struct {
		name string
		r    IntRange
	}{
		{"rotation", c.Rotation},
		{"shear", c.Shear},
		{"translation_x", c.TranslationX},
		{"translation_y", c.TranslationY},
	}
	for _, tt := range ranges {
		if tt.r.Min > tt.r.Max {
			return errors.New(errors.ErrCodeInvalidConfig, "%s range min %d > max %d", tt.name, tt.r.Min, tt.r.Max)
		}
	}
	if c.Brightness < 0 || c.Brightness > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "brightness change must be within [0, 1], got %g", c.Brightness)
	}
	if c.NoiseStd < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "noise standard deviation must be non-negative, got %g", c.NoiseStd)
	}
	return nil
}

// BrightnessRange returns the multiplicative factor range [1-b, 1+b].
func (c Config) BrightnessRange() FloatRange {
	return FloatRange{Min: 1 - c.Brightness, Max: 1 + c.Brightness}
}
