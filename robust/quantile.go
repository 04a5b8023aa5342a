package robust

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/uyouii/robust-outliers/common"
	"gonum.org/v1/gonum/stat"
)

// Method selects how quartiles are estimated from a sorted sample.
type Method int

const (
	// MethodLinear interpolates linearly between the closest ranks,
	// the numpy percentile default.
	MethodLinear Method = 0
	// MethodEmpirical uses the empirical inverse CDF, no interpolation.
	MethodEmpirical Method = 1
	// MethodHalves takes the medians of the lower and upper halves.
	MethodHalves Method = 2
)

func (m Method) Valid() bool {
	switch m {
	case MethodLinear, MethodEmpirical, MethodHalves:
		return true
	}
	return false
}

func (m Method) String() string {
	switch m {
	case MethodLinear:
		return "linear"
	case MethodEmpirical:
		return "empirical"
	case MethodHalves:
		return "halves"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

func (m Method) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, errors.Wrapf(common.ErrorInvalidParameter, "unknown quantile method %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(text []byte) error {
	switch string(text) {
	case "linear", "":
		*m = MethodLinear
	case "empirical":
		*m = MethodEmpirical
	case "halves":
		*m = MethodHalves
	default:
		return errors.Wrapf(common.ErrorInvalidParameter, "unknown quantile method %q", string(text))
	}
	return nil
}

// LinearQuantile returns the p quantile of sorted, interpolating between
// the two closest ranks.
func LinearQuantile(p float64, sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	h := p * float64(n-1)
	lower := int(math.Floor(h))
	if lower >= n-1 {
		return sorted[n-1]
	}
	if lower < 0 {
		return sorted[0]
	}
	weight := h - float64(lower)
	return sorted[lower] + weight*(sorted[lower+1]-sorted[lower])
}

// Median of sorted data, the mean of the two middle values for even lengths.
func Median(sorted []float64) float64 {
	return LinearQuantile(0.5, sorted)
}

// Quartiles returns q1 and q3 of sorted using method.
func Quartiles(sorted []float64, method Method) (float64, float64, error) {
	if len(sorted) == 0 {
		return 0, 0, errors.Wrap(common.ErrorInvalidInput, "quartiles of empty sample")
	}

	switch method {
	case MethodLinear:
		return LinearQuantile(LowerQuartile, sorted), LinearQuantile(UpperQuartile, sorted), nil
	case MethodEmpirical:
		q1 := stat.Quantile(LowerQuartile, stat.Empirical, sorted, nil)
		q3 := stat.Quantile(UpperQuartile, stat.Empirical, sorted, nil)
		return q1, q3, nil
	case MethodHalves:
		// the halves are empty for a single point
		if len(sorted) == 1 {
			return sorted[0], sorted[0], nil
		}
		quartiles, err := stats.Quartile(sorted)
		if err != nil {
			return 0, 0, errors.Wrap(err, "stats quartile")
		}
		return quartiles.Q1, quartiles.Q3, nil
	}
	return 0, 0, errors.Wrapf(common.ErrorInvalidParameter, "unknown quantile method %d", int(method))
}
