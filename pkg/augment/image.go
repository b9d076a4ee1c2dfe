package augment

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"

	"github.com/matzehuels/faceaug/pkg/errors"
)

// Image is a rectangular grid of 8-bit samples stored row-major with
// interleaved channels: the sample for channel c of pixel (x, y) lives at
// Pix[(y*Width+x)*Channels+c].
//
// Channels is 1 for grayscale and 3 for RGB images.
type Image struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Channels int     `json:"channels"`
	Pix      []uint8 `json:"pix"`
}

// NewImage allocates a zeroed image.
func NewImage(width, height, channels int) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// Validate checks that the dimensions are positive, the channel layout is
// supported and Pix has exactly the size the dimensions imply.
func (m *Image) Validate() error {
	if m == nil {
		return errors.New(errors.ErrCodeInvalidImage, "image is nil")
	}
	if m.Width <= 0 || m.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidImage, "image dimensions must be positive, got %dx%d", m.Width, m.Height)
	}
	if m.Channels != 1 && m.Channels != 3 {
		return errors.New(errors.ErrCodeInvalidImage, "unsupported channel count %d (must be 1 or 3)", m.Channels)
	}
	if want := m.Width * m.Height * m.Channels; len(m.Pix) != want {
		return errors.New(errors.ErrCodeInvalidImage, "pixel buffer holds %d samples, want %d", len(m.Pix), want)
	}
	return nil
}

// At returns the sample of channel c at (x, y).
func (m *Image) At(x, y, c int) uint8 {
	return m.Pix[(y*m.Width+x)*m.Channels+c]
}

// Clone returns a deep copy with independent storage.
func (m *Image) Clone() *Image {
	out := &Image{Width: m.Width, Height: m.Height, Channels: m.Channels, Pix: make([]uint8, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// Equal reports whether both images have the same shape and samples.
func (m *Image) Equal(o *Image) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.Width == o.Width && m.Height == o.Height && m.Channels == o.Channels && bytes.Equal(m.Pix, o.Pix)
}

// Bounds returns the image rectangle anchored at the origin.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// FromImage converts any decoded image into an Image. Grayscale sources keep
// one channel; everything else becomes RGB with alpha dropped.
func FromImage(src image.Image) (*Image, error) {
	if src == nil {
		return nil, errors.New(errors.ErrCodeInvalidImage, "image is nil")
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, errors.New(errors.ErrCodeInvalidImage, "image is empty")
	}

	switch s := src.(type) {
	case *image.Gray:
		out := NewImage(b.Dx(), b.Dy(), 1)
		for y := 0; y < b.Dy(); y++ {
			row := s.Pix[y*s.Stride : y*s.Stride+b.Dx()]
			copy(out.Pix[y*out.Width:(y+1)*out.Width], row)
		}
		return out, nil
	case *image.NRGBA:
		out := NewImage(b.Dx(), b.Dy(), 3)
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				i := y*s.Stride + x*4
				o := (y*out.Width + x) * 3
				out.Pix[o], out.Pix[o+1], out.Pix[o+2] = s.Pix[i], s.Pix[i+1], s.Pix[i+2]
			}
		}
		return out, nil
	}

	if src.ColorModel() == color.GrayModel {
		g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(g, g.Bounds(), src, b.Min, draw.Src)
		return FromImage(g)
	}
	n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(n, n.Bounds(), src, b.Min, draw.Src)
	return FromImage(n)
}

// ToImage converts back to the standard library representation:
// *image.Gray for one channel, opaque *image.NRGBA for three.
func (m *Image) ToImage() image.Image {
	if m.Channels == 1 {
		g := image.NewGray(m.Bounds())
		copy(g.Pix, m.Pix)
		return g
	}
	n := image.NewNRGBA(m.Bounds())
	for i, o := 0, 0; i < len(m.Pix); i, o = i+3, o+4 {
		n.Pix[o], n.Pix[o+1], n.Pix[o+2], n.Pix[o+3] = m.Pix[i], m.Pix[i+1], m.Pix[i+2], 0xFF
	}
	return n
}
