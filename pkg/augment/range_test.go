package augment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/faceaug/pkg/errors"
)

func TestScaleRange(t *testing.T) {
	r, err := ScaleRange(1.1)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, r.Min, 1e-12)
	assert.InDelta(t, 1.1, r.Max, 1e-12)

	r, err = ScaleRange(0.8)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, r.Min, 1e-12)
	assert.InDelta(t, 1.2, r.Max, 1e-12)

	r, err = ScaleRange(1.0)
	require.NoError(t, err)
	assert.Equal(t, FloatRange{Min: 1, Max: 1}, r)

	for _, b := range []float64{0, -1, 2, 3.5} {
		_, err := ScaleRange(b)
		require.Error(t, err, "ScaleRange(%g)", b)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
	}
}

func TestSymmetricRange(t *testing.T) {
	r, err := SymmetricRange(8)
	require.NoError(t, err)
	assert.Equal(t, IntRange{Min: -8, Max: 8}, r)

	r, err = SymmetricRange(0)
	require.NoError(t, err)
	assert.Equal(t, IntRange{}, r)

	_, err = SymmetricRange(-1)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestExplicitRanges(t *testing.T) {
	f, err := NewFloatRange(0.7, 1.05)
	require.NoError(t, err)
	assert.Equal(t, FloatRange{Min: 0.7, Max: 1.05}, f)

	i, err := NewIntRange(5, 20)
	require.NoError(t, err)
	assert.Equal(t, IntRange{Min: 5, Max: 20}, i)

	_, err = NewFloatRange(1.2, 1.1)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
	_, err = NewIntRange(3, -3)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestValidateCount(t *testing.T) {
	assert.NoError(t, ValidateCount(0))
	assert.NoError(t, ValidateCount(19))
	assert.True(t, errors.Is(ValidateCount(-1), errors.ErrCodeInvalidConfig))
}

func TestBoundResolve(t *testing.T) {
	r, err := Scalar(1.1).Scale()
	require.NoError(t, err)
	assert.InDelta(t, 0.9, r.Min, 1e-12)

	r, err = Pair(0.82, 1.10).Scale()
	require.NoError(t, err)
	assert.Equal(t, FloatRange{Min: 0.82, Max: 1.10}, r)

	_, err = Pair(0, 1.1).Scale()
	assert.Error(t, err)

	ir, err := Scalar(5).Symmetric()
	require.NoError(t, err)
	assert.Equal(t, IntRange{Min: -5, Max: 5}, ir)

	ir, err = Pair(5, 20).Symmetric()
	require.NoError(t, err)
	assert.Equal(t, IntRange{Min: 5, Max: 20}, ir)
}

func TestBoundJSON(t *testing.T) {
	var v struct {
		Scale    Bound `json:"scale"`
		Rotation Bound `json:"rotation"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"scale": [0.82, 1.1], "rotation": 8}`), &v))
	assert.Equal(t, Pair(0.82, 1.1), v.Scale)
	assert.Equal(t, Scalar(8), v.Rotation)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"scale": [0.82, 1.1], "rotation": 8}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"scale": [1, 2, 3]}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"scale": "big"}`), &v))
}
