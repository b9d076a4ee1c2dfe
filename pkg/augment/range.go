package augment

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/faceaug/pkg/errors"
)

// FloatRange is a closed interval of real parameter values.
type FloatRange struct {
	Min float64 `json:"min" toml:"min"`
	Max float64 `json:"max" toml:"max"`
}

// IntRange is a closed interval of integer parameter values.
type IntRange struct {
	Min int `json:"min" toml:"min"`
	Max int `json:"max" toml:"max"`
}

// NewFloatRange returns the pair verbatim, rejecting lo > hi.
func NewFloatRange(lo, hi float64) (FloatRange, error) {
	if lo > hi {
		return FloatRange{}, errors.New(errors.ErrCodeInvalidConfig, "range min %g > max %g", lo, hi)
	}
	return FloatRange{Min: lo, Max: hi}, nil
}

// NewIntRange returns the pair verbatim, rejecting lo > hi.
func NewIntRange(lo, hi int) (IntRange, error) {
	if lo > hi {
		return IntRange{}, errors.New(errors.ErrCodeInvalidConfig, "range min %d > max %d", lo, hi)
	}
	return IntRange{Min: lo, Max: hi}, nil
}

// SymmetricRange derives (-b, b) from a single rotation, shear or
// translation bound.
func SymmetricRange(b int) (IntRange, error) {
	if b < 0 {
		return IntRange{}, errors.New(errors.ErrCodeInvalidConfig, "bound must be non-negative, got %d", b)
	}
	return IntRange{Min: -b, Max: b}, nil
}

// ScaleRange derives a zoom range from a single scale bound b as (b, 2-b),
// ordered so that Min <= Max. A bound of 1.1 therefore means "zoom between 90%
// and 110%", and 0.8 means "between 80% and 120%".
func ScaleRange(b float64) (FloatRange, error) {
	if b <= 0 {
		return FloatRange{}, errors.New(errors.ErrCodeInvalidConfig, "scale bound must be positive, got %g", b)
	}
	lo, hi := b, 2-b
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo <= 0 {
		return FloatRange{}, errors.New(errors.ErrCodeInvalidConfig, "scale bound %g yields non-positive minimum scale %g", b, lo)
	}
	return FloatRange{Min: lo, Max: hi}, nil
}

// ValidateCount rejects negative variant counts.
func ValidateCount(n int) error {
	if n < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "number of augmentations must be non-negative, got %d", n)
	}
	return nil
}

// Bound is a parameter given either as a single scalar or as an explicit
// [min, max] pair. It decodes from TOML and JSON as a number or a
// two-element array.
type Bound struct {
	Value  float64
	Pair   [2]float64
	IsPair bool
}

// Scalar returns a Bound holding a single value.
func Scalar(v float64) Bound { return Bound{Value: v} }

// Pair returns a Bound holding an explicit range.
func Pair(lo, hi float64) Bound { return Bound{Pair: [2]float64{lo, hi}, IsPair: true} }

// Scale resolves the bound with the scale convention of [ScaleRange].
func (b Bound) Scale() (FloatRange, error) {
	if b.IsPair {
		r, err := NewFloatRange(b.Pair[0], b.Pair[1])
		if err != nil {
			return r, err
		}
		if r.Min <= 0 {
			return FloatRange{}, errors.New(errors.ErrCodeInvalidConfig, "scale minimum must be positive, got %g", r.Min)
		}
		return r, nil
	}
	return ScaleRange(b.Value)
}

// Symmetric resolves the bound as an integer range, truncating fractional
// values toward zero.
func (b Bound) Symmetric() (IntRange, error) {
	if b.IsPair {
		return NewIntRange(int(b.Pair[0]), int(b.Pair[1]))
	}
	return SymmetricRange(int(b.Value))
}

// String renders the bound in its configuration syntax.
func (b Bound) String() string {
	if b.IsPair {
		return fmt.Sprintf("[%g, %g]", b.Pair[0], b.Pair[1])
	}
	return fmt.Sprintf("%g", b.Value)
}

// UnmarshalTOML implements toml.Unmarshaler.
func (b *Bound) UnmarshalTOML(v any) error {
	return b.decode(v)
}

// MarshalTOML implements toml.Marshaler.
func (b Bound) MarshalTOML() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalJSON accepts a number or a two-element array.
func (b *Bound) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return b.decode(v)
}

// MarshalJSON encodes scalars as numbers and pairs as arrays.
func (b Bound) MarshalJSON() ([]byte, error) {
	if b.IsPair {
		return json.Marshal(b.Pair)
	}
	return json.Marshal(b.Value)
}

func (b *Bound) decode(v any) error {
	switch x := v.(type) {
	case []any:
		if len(x) != 2 {
			return errors.New(errors.ErrCodeInvalidConfig, "range must have exactly 2 elements, got %d", len(x))
		}
		lo, ok1 := toFloat(x[0])
		hi, ok2 := toFloat(x[1])
		if !ok1 || !ok2 {
			return errors.New(errors.ErrCodeInvalidConfig, "range elements must be numbers: %v", x)
		}
		*b = Pair(lo, hi)
		return nil
	default:
		f, ok := toFloat(v)
		if !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "bound must be a number or [min, max], got %T", v)
		}
		*b = Scalar(f)
		return nil
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	}
	return 0, false
}
