package outlier

import (
	"github.com/pkg/errors"
	"github.com/uyouii/robust-outliers/common"
	"github.com/uyouii/robust-outliers/model"
)

type Result struct {
	Flags  model.FlagSet `json:"flags"`
	Status model.Status  `json:"status"`
	// number of passes run, the last one found nothing new when converged
	Iterations int `json:"iterations"`
	// finite, non flagged points left when detection stopped
	Remaining int `json:"remaining"`
}

// Warning reports why detection stopped before a fixed point, nil if it
// converged. The flags are usable either way.
func (r *Result) Warning() error {
	if r == nil {
		return nil
	}
	switch r.Status {
	case model.StatusInsufficientData:
		return errors.Wrapf(common.ErrorInsufficientData, "%d points left after %d iterations",
			r.Remaining, r.Iterations)
	case model.StatusNonConvergence:
		return errors.Wrapf(common.ErrorNonConvergence, "stopped after %d iterations", r.Iterations)
	}
	return nil
}

func (r *Result) Converged() bool {
	return r != nil && r.Status == model.StatusConverged
}

func (r Result) clone() *Result {
	r.Flags = r.Flags.Clone()
	return &r
}
