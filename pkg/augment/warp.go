package augment

import "math"

// Warp resamples src through inv, which maps output coordinates to source
// coordinates, into a new image of the same size. Sampling is bilinear on
// samples normalized to [0, 1]; neighbours outside the source read as 0.
// Results are rescaled to [0, 255], clamped and rounded.
//
// A non-finite inv (e.g. the inverse of a singular matrix) produces an
// all-zero image.
func Warp(src *Image, inv AffineTransform) *Image {
	w, h, ch := src.Width, src.Height, src.Channels
	dst := NewImage(w, h, ch)
	if !inv.IsFinite() {
		return dst
	}

	fw, fh := float64(w), float64(h)
	sample := func(x, y, c int) float64 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return float64(src.Pix[(y*w+x)*ch+c]) / 255
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := inv.Apply(float64(x), float64(y))
			// Also rejects NaN: every comparison with NaN is false.
			if !(sx > -1 && sx < fw && sy > -1 && sy < fh) {
				continue
			}
			x0, y0 := int(math.Floor(sx)), int(math.Floor(sy))
			fx, fy := sx-float64(x0), sy-float64(y0)
			o := (y*w + x) * ch
			for c := 0; c < ch; c++ {
				v := (1-fy)*((1-fx)*sample(x0, y0, c)+fx*sample(x0+1, y0, c)) +
					fy*((1-fx)*sample(x0, y0+1, c)+fx*sample(x0+1, y0+1, c))
				dst.Pix[o+c] = toSample(v * 255)
			}
		}
	}
	return dst
}

// toSample clamps v to [0, 255] and rounds it to the nearest integer.
func toSample(v float64) uint8 {
	return uint8(math.Round(clamp(v)))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
