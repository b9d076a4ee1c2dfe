// Package dataset reads source face images from directories and writes
// augmented sets back to disk as cropped, resized image files.
package dataset

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/faceaug/pkg/augment"
	"github.com/matzehuels/faceaug/pkg/errors"
)

// DefaultExtensions are the file extensions read when none are configured.
var DefaultExtensions = []string{"jpg"}

// SourceOptions configures a DirSource.
type SourceOptions struct {
	// Extensions lists accepted file extensions without the dot, compared
	// case-insensitively. Empty means DefaultExtensions.
	Extensions []string
	Logger     *log.Logger
}

// DirSource is an ordered list of image files found in a set of
// directories and their direct subdirectories (the LFW layout: one folder
// per person).
type DirSource struct {
	paths []string
}

// NewDirSource scans dirs. Files with other extensions are skipped with a
// warning per directory. Paths are sorted so that image indices are stable
// across runs.
func NewDirSource(dirs []string, opts SourceOptions) (*DirSource, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	accept := make(map[string]bool, len(exts))
	for _, e := range exts {
		if err := errors.ValidateExtension(e); err != nil {
			return nil, err
		}
		accept[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}

	var scan []string
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open dataset directory %s", dir)
		}
		if !info.IsDir() {
			return nil, errors.New(errors.ErrCodeInvalidPath, "%s is not a directory", dir)
		}
		scan = append(scan, dir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read dataset directory %s", dir)
		}
		for _, e := range entries {
			if e.IsDir() {
				scan = append(scan, filepath.Join(dir, e.Name()))
			}
		}
	}

	var paths []string
	for _, dir := range scan {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read dataset directory %s", dir)
		}
		skipped := 0
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(e.Name()), "."))
			if accept[ext] {
				paths = append(paths, filepath.Join(dir, e.Name()))
			} else {
				skipped++
			}
		}
		if skipped > 0 {
			logger.Warn("skipped files with other extensions", "dir", dir, "count", skipped, "accepted", exts)
		}
	}
	if len(paths) == 0 {
		logger.Warn("no images found", "dirs", dirs, "extensions", exts)
	}
	sort.Strings(paths)

	return &DirSource{paths: paths}, nil
}

// Len returns the number of images.
func (s *DirSource) Len() int { return len(s.paths) }

// Paths returns the image paths in index order.
func (s *DirSource) Paths() []string { return s.paths }

// Load decodes image i.
func (s *DirSource) Load(i int) (*augment.Image, error) {
	if i < 0 || i >= len(s.paths) {
		return nil, errors.New(errors.ErrCodeNotFound, "image index %d out of range [0, %d)", i, len(s.paths))
	}
	return LoadImage(s.paths[i])
}

// Window clamps [startAt, startAt+count) to the source. count == 0 means
// through the last image.
func (s *DirSource) Window(startAt, count int) (int, int, error) {
	if startAt < 0 || count < 0 {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "start and count must not be negative")
	}
	start := min(startAt, len(s.paths))
	end := len(s.paths)
	if count > 0 {
		end = min(start+count, end)
	}
	return start, end, nil
}

// Each calls fn for every image in the window [startAt, startAt+count),
// in index order. It stops at the first error, including cancellation
// of ctx.
func (s *DirSource) Each(ctx context.Context, startAt, count int, fn func(index int, path string, img *augment.Image) error) error {
	start, end, err := s.Window(startAt, count)
	if err != nil {
		return err
	}
	for i := start; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := s.Load(i)
		if err != nil {
			return err
		}
		if err := fn(i, s.paths[i], img); err != nil {
			return err
		}
	}
	return nil
}

// LoadImage decodes the file at path, honoring EXIF orientation.
func LoadImage(path string) (*augment.Image, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "decode %s", path)
	}
	return augment.FromImage(src)
}

// DecodeImage decodes an in-memory image, honoring EXIF orientation.
func DecodeImage(r io.Reader) (*augment.Image, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "decode image")
	}
	return augment.FromImage(src)
}
