package pipeline

import (
	"encoding/binary"

	"github.com/matzehuels/faceaug/pkg/augment"
	"github.com/matzehuels/faceaug/pkg/cache"
)

// AugmentedSet is a source image together with its variants.
type AugmentedSet struct {
	Original *augment.Image   `json:"original"`
	Variants []*augment.Image `json:"variants"`
}

// Images returns the original followed by the variants, the order in which
// they are numbered on disk.
func (s *AugmentedSet) Images() []*augment.Image {
	out := make([]*augment.Image, 0, 1+len(s.Variants))
	out = append(out, s.Original)
	return append(out, s.Variants...)
}

// Len returns 1 + the number of variants.
func (s *AugmentedSet) Len() int { return 1 + len(s.Variants) }

// valid reports whether s is a complete set of n variants shaped like img.
func (s *AugmentedSet) valid(img *augment.Image, n int) bool {
	if s.Original == nil || !s.Original.Equal(img) || len(s.Variants) != n {
		return false
	}
	for _, v := range s.Variants {
		if v.Validate() != nil || v.Width != img.Width || v.Height != img.Height || v.Channels != img.Channels {
			return false
		}
	}
	return true
}

// imageHash hashes the pixels and shape of img.
func imageHash(img *augment.Image) string {
	buf := make([]byte, 0, 24+len(img.Pix))
	buf = binary.BigEndian.AppendUint64(buf, uint64(img.Width))
	buf = binary.BigEndian.AppendUint64(buf, uint64(img.Height))
	buf = binary.BigEndian.AppendUint64(buf, uint64(img.Channels))
	return cache.Hash(append(buf, img.Pix...))
}
