package robust

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/robust-outliers/common"
)

func TestLinearQuantile(t *testing.T) {
	sorted := []float64{9, 10, 10, 10, 11, 11, 12, 1000}

	assert.Equal(t, 9.0, LinearQuantile(0, sorted))
	assert.Equal(t, 10.0, LinearQuantile(0.25, sorted))
	assert.Equal(t, 10.5, LinearQuantile(0.5, sorted))
	assert.Equal(t, 11.25, LinearQuantile(0.75, sorted))
	assert.Equal(t, 1000.0, LinearQuantile(1, sorted))

	assert.Equal(t, 7.0, LinearQuantile(0.3, []float64{7}))
	assert.True(t, math.IsNaN(LinearQuantile(0.5, nil)))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{1, 2, 3, 4, 5}))
	assert.Equal(t, 2.5, Median([]float64{1, 2, 3, 4}))
}

func TestQuartiles(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		method Method
		q1, q3 float64
	}{
		{"linear even", []float64{9, 10, 10, 10, 11, 11, 12, 1000}, MethodLinear, 10, 11.25},
		{"linear odd", []float64{1, 2, 3, 4, 5}, MethodLinear, 2, 4},
		{"empirical even", []float64{9, 10, 10, 10, 11, 11, 12, 1000}, MethodEmpirical, 10, 11},
		{"empirical odd", []float64{1, 2, 3, 4, 5}, MethodEmpirical, 2, 4},
		{"halves even", []float64{9, 10, 10, 10, 11, 11, 12, 1000}, MethodHalves, 10, 11.5},
		{"halves odd", []float64{1, 2, 3, 4, 5}, MethodHalves, 1.5, 4.5},
		{"halves single", []float64{4}, MethodHalves, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q1, q3, err := Quartiles(tt.sorted, tt.method)
			require.NoError(t, err)
			assert.InDelta(t, tt.q1, q1, 1e-12)
			assert.InDelta(t, tt.q3, q3, 1e-12)
		})
	}
}

func TestQuartilesErrors(t *testing.T) {
	_, _, err := Quartiles(nil, MethodLinear)
	assert.True(t, errors.Is(err, common.ErrorInvalidInput))

	_, _, err = Quartiles([]float64{1, 2}, Method(42))
	assert.True(t, errors.Is(err, common.ErrorInvalidParameter))
}

func TestMethodText(t *testing.T) {
	for _, m := range []Method{MethodLinear, MethodEmpirical, MethodHalves} {
		text, err := m.MarshalText()
		require.NoError(t, err)

		var parsed Method
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, m, parsed)
	}

	var m Method
	assert.Error(t, m.UnmarshalText([]byte("tukey")))
	_, err := Method(9).MarshalText()
	assert.Error(t, err)
}
