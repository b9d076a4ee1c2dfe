package augment

// Perturbation holds the photometric random draws for one variant.
type Perturbation struct {
	HFlip      bool
	VFlip      bool
	Brightness float64
	// Noise holds one additive offset per sample, already scaled to the
	// 0-255 range. It is nil when noise is disabled.
	Noise []float64
}

// DrawPerturbation draws, in order: the horizontal flip (if allowed), the
// vertical flip (if allowed), the brightness factor, and, when NoiseStd > 0,
// one Gaussian value per sample of a width×height×channels image.
func DrawPerturbation(cfg Config, samples int, rng Source) Perturbation {
	var p Perturbation
	if cfg.HFlip && rng.Float64() > 0.5 {
		p.HFlip = true
	}
	if cfg.VFlip && rng.Float64() > 0.5 {
		p.VFlip = true
	}
	br := cfg.BrightnessRange()
	p.Brightness = uniform(rng, br.Min, br.Max)
	if cfg.NoiseStd > 0 {
		p.Noise = make([]float64, samples)
		for i := range p.Noise {
			p.Noise[i] = 255 * (cfg.NoiseMean + cfg.NoiseStd*rng.NormFloat64())
		}
	}
	return p
}

// Render applies p and then the geometric resample through inv to a copy
// of img. img is never modified.
//
// Stages: flips, brightness (clamped), noise (clamped and truncated to
// 8 bits), warp (rescaled, clamped and rounded to 8 bits).
func Render(img *Image, inv AffineTransform, p Perturbation) *Image {
	return Warp(Photometric(img, p), inv)
}

// Photometric applies the flips, brightness and noise of p and returns the
// clamped 8-bit intermediate image.
func Photometric(img *Image, p Perturbation) *Image {
	w, h, ch := img.Width, img.Height, img.Channels
	out := NewImage(w, h, ch)
	for y := 0; y < h; y++ {
		sy := y
		if p.VFlip {
			sy = h - 1 - y
		}
		for x := 0; x < w; x++ {
			sx := x
			if p.HFlip {
				sx = w - 1 - x
			}
			si := (sy*w + sx) * ch
			di := (y*w + x) * ch
			for c := 0; c < ch; c++ {
				v := clamp(float64(img.Pix[si+c]) * p.Brightness)
				if p.Noise != nil {
					v = clamp(v + p.Noise[di+c])
				}
				out.Pix[di+c] = uint8(v)
			}
		}
	}
	return out
}

// Apply produces one variant of img: it draws a perturbation from rng and
// renders it with the inverse transform inv.
func Apply(img *Image, inv AffineTransform, cfg Config, rng Source) (*Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := DrawPerturbation(cfg, len(img.Pix), rng)
	return Render(img, inv, p), nil
}
