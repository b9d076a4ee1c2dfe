package augment

import (
	"math"

	"github.com/matzehuels/faceaug/pkg/errors"
)

// TransformBatch holds inverse transforms generated together from one Config
// and one image size. Index i is used for variant i.
type TransformBatch []AffineTransform

// Params are the drawn geometric parameters of one transform.
type Params struct {
	ScaleX, ScaleY float64
	RotationDeg    int
	ShearDeg       int
	TranslateX     int
	TranslateY     int
}

// DrawParams draws one set of geometric parameters in the fixed order
// scale x, scale y, rotation, shear, translation x, translation y.
func DrawParams(cfg Config, rng Source) Params {
	var p Params
	p.ScaleX = uniform(rng, cfg.Scale.Min, cfg.Scale.Max)
	if cfg.ScaleAxisEqually {
		p.ScaleY = p.ScaleX
	} else {
		p.ScaleY = uniform(rng, cfg.Scale.Min, cfg.Scale.Max)
	}
	p.RotationDeg = randInt(rng, cfg.Rotation.Min, cfg.Rotation.Max)
	p.ShearDeg = randInt(rng, cfg.Shear.Min, cfg.Shear.Max)
	p.TranslateX = randInt(rng, cfg.TranslationX.Min, cfg.TranslationX.Max)
	p.TranslateY = randInt(rng, cfg.TranslationY.Min, cfg.TranslationY.Max)
	return p
}

// Forward returns the input→output transform: move the pivot
// (⌊width/2⌋, ⌊height/2⌋) to the origin, apply p, move the pivot back.
func (p Params) Forward(width, height int) AffineTransform {
	shiftX, shiftY := float64(width/2), float64(height/2)
	toOrigin := Translation(-shiftX, -shiftY)
	toCenter := Translation(shiftX, shiftY)
	t := Composite(p.ScaleX, p.ScaleY,
		deg2rad(p.RotationDeg), deg2rad(p.ShearDeg),
		float64(p.TranslateX), float64(p.TranslateY))
	return toCenter.Mul(t).Mul(toOrigin)
}

// Generate draws n independent transforms for images of the given size and
// returns their inverses, ready for resampling.
func Generate(n, width, height int, cfg Config, rng Source) (TransformBatch, error) {
	if err := ValidateCount(n); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidImage, "image dimensions must be positive, got %dx%d", width, height)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	batch := make(TransformBatch, n)
	for i := range batch {
		batch[i] = DrawParams(cfg, rng).Forward(width, height).Inverse()
	}
	return batch, nil
}

func deg2rad(d int) float64 {
	return float64(d) * math.Pi / 180
}
