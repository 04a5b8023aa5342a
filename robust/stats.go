package robust

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/uyouii/robust-outliers/common"
	"github.com/uyouii/robust-outliers/model"
	"github.com/uyouii/robust-outliers/utils"
)

// Compute derives median and iqr scale of values. values is not modified.
func Compute(values []float64, method Method) (model.RobustStats, error) {
	if len(values) == 0 {
		return model.RobustStats{}, errors.Wrap(common.ErrorInvalidInput, "robust stats of empty sample")
	}
	if idx := utils.FirstNonFinite(values); idx >= 0 {
		return model.RobustStats{}, errors.Wrapf(common.ErrorInvalidInput,
			"non finite value %v at %d", values[idx], idx)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1, q3, err := Quartiles(sorted, method)
	if err != nil {
		return model.RobustStats{}, err
	}

	iqr := q3 - q1
	if iqr < 0 {
		iqr = -iqr
	}

	return model.RobustStats{
		Median:   Median(sorted),
		Q1:       q1,
		Q3:       q3,
		IQR:      iqr,
		IQRScale: iqr / IQRNormalizer,
		Count:    len(sorted),
	}, nil
}

// Collect returns the values inside window whose index is not excluded.
func Collect(values []float64, window model.Window, excluded model.FlagSet) []float64 {
	res := make([]float64, 0, window.Len())
	for i := window.Start; i <= window.End; i++ {
		if i < len(excluded) && excluded[i] {
			continue
		}
		res = append(res, values[i])
	}
	return res
}
