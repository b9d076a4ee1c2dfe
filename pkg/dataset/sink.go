package dataset

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/faceaug/pkg/augment"
	"github.com/matzehuels/faceaug/pkg/errors"
)

// Defaults for the LFW face crop (lfwcrop: inclusive corners (83, 92) and
// (166, 175) of a 250×250 image) scaled to 64×64 JPEG files.
const (
	DefaultSize    = 64
	DefaultFormat  = "jpg"
	DefaultQuality = 95
)

// DefaultCrop is the face region of an LFW image.
var DefaultCrop = CropRect(83, 92, 166, 175)

// CropRect converts inclusive corner coordinates to an image.Rectangle.
func CropRect(x0, y0, x1, y1 int) image.Rectangle {
	return image.Rect(x0, y0, x1+1, y1+1)
}

// Sink writes augmented sets to disk.
type Sink struct {
	// AugDir receives every element of a set when WriteAug is set.
	AugDir   string
	WriteAug bool
	// UnaugDir receives the original (element 0) when WriteUnaug is set.
	UnaugDir   string
	WriteUnaug bool

	// Crop is applied before resizing and clipped to the image bounds.
	// The zero rectangle keeps the whole image.
	Crop image.Rectangle
	// Size is the edge length of the square output. Zero keeps the
	// cropped size.
	Size int
	// Format is the output file extension, "jpg" or "png".
	Format  string
	Quality int
}

// FileName returns "{image:06d}_{variant:03d}.{ext}".
func FileName(imageIndex, variant int, ext string) string {
	return fmt.Sprintf("%06d_%03d.%s", imageIndex, variant, strings.TrimPrefix(ext, "."))
}

func (s *Sink) format() string {
	if s.Format == "" {
		return DefaultFormat
	}
	return s.Format
}

// Prepare validates the sink and creates its output directories.
func (s *Sink) Prepare() error {
	if err := errors.ValidateExtension(s.format()); err != nil {
		return err
	}
	if s.Size < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "output size must not be negative, got %d", s.Size)
	}
	if s.Quality < 0 || s.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidConfig, "jpeg quality must be in [0, 100], got %d", s.Quality)
	}
	for _, d := range []struct {
		enabled bool
		dir     string
		name    string
	}{
		{s.WriteAug, s.AugDir, "augmented"},
		{s.WriteUnaug, s.UnaugDir, "unaugmented"},
	} {
		if !d.enabled {
			continue
		}
		if d.dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "%s output directory is not set", d.name)
		}
		if err := os.MkdirAll(d.dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", d.dir)
		}
	}
	return nil
}

// Write stores set, whose element 0 is the original image, and returns
// the written paths in write order.
func (s *Sink) Write(imageIndex int, set []*augment.Image) ([]string, error) {
	var written []string
	for v, img := range set {
		if !(s.WriteAug || (s.WriteUnaug && v == 0)) {
			continue
		}
		data, err := EncodeImage(s.Process(img), s.format(), s.Quality)
		if err != nil {
			return written, err
		}
		name := FileName(imageIndex, v, s.format())
		if s.WriteUnaug && v == 0 {
			p := filepath.Join(s.UnaugDir, name)
			if err := os.WriteFile(p, data, 0o644); err != nil {
				return written, errors.Wrap(errors.ErrCodeStorage, err, "write %s", p)
			}
			written = append(written, p)
		}
		if s.WriteAug {
			p := filepath.Join(s.AugDir, name)
			if err := os.WriteFile(p, data, 0o644); err != nil {
				return written, errors.Wrap(errors.ErrCodeStorage, err, "write %s", p)
			}
			written = append(written, p)
		}
	}
	return written, nil
}

// Process crops and resizes img as configured.
func (s *Sink) Process(img *augment.Image) image.Image {
	var out image.Image = img.ToImage()
	if !s.Crop.Empty() {
		r := s.Crop.Intersect(out.Bounds())
		if !r.Empty() {
			out = imaging.Crop(out, r)
		}
	}
	if s.Size > 0 {
		out = imaging.Resize(out, s.Size, s.Size, imaging.Linear)
	}
	return out
}

// EncodeImage encodes img as format ("jpg", "jpeg" or "png"). quality
// applies to JPEG; zero means DefaultQuality.
func EncodeImage(img image.Image, format string, quality int) ([]byte, error) {
	f, err := imaging.FormatFromExtension(strings.TrimPrefix(format, "."))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "output format %q", format)
	}
	if quality == 0 {
		quality = DefaultQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f, imaging.JPEGQuality(quality)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", format)
	}
	return buf.Bytes(), nil
}
